package models

// User roles, in ascending order of privilege.
const (
	RoleCashier = "cashier"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// User is the signed-on operator of the terminal. PinHash carries the
// bcrypt hash of the elevation PIN for manager approvals.
type User struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	PinHash  string `json:"pin_hash,omitempty"`
}

// CanEditPricing reports whether the role may change unit prices,
// swap products on a line or toggle the VAT override.
func (u *User) CanEditPricing() bool {
	if u == nil {
		return false
	}
	return u.Role == RoleAdmin || u.Role == RoleManager
}
