package models

// CompanySettings is the seller identity printed on receipts and
// invoices, fetched from the back office and cached locally.
type CompanySettings struct {
	Name         string `json:"name"`
	LegalName    string `json:"legal_name"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	NUI          string `json:"nui"`
	FiscalNumber string `json:"fiscal_number"`
	VatNumber    string `json:"vat_number"`
	LogoURL      string `json:"logo_url"`
}

// CommentTemplate is a canned receipt footer comment. The default
// active template prefills the comment on every new receipt.
type CommentTemplate struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	IsDefault bool   `json:"is_default"`
	IsActive  bool   `json:"is_active"`
}
