package models

import "time"

// Drawer session status values.
const (
	DrawerOpen   = "open"
	DrawerClosed = "closed"
)

// DrawerSession is one open-to-close cycle of the cash drawer.
type DrawerSession struct {
	ID              uint      `json:"id"`
	OpenedBy        string    `json:"opened_by"`
	OpenedAt        time.Time `json:"opened_at"`
	OpeningBalance  float64   `json:"opening_balance"`
	CurrentBalance  float64   `json:"current_balance"`
	ExpectedBalance float64   `json:"expected_balance"`
	CashSalesTotal  float64   `json:"cash_sales_total"`
	SaleCount       int       `json:"sale_count"`
	Status          string    `json:"status"`
}

// DrawerCloseResult is the reconciliation outcome of closing a session.
// Discrepancy is actual minus expected: negative means the till is short.
type DrawerCloseResult struct {
	SessionID       uint      `json:"session_id"`
	ExpectedBalance float64   `json:"expected_balance"`
	ActualBalance   float64   `json:"actual_balance"`
	Discrepancy     float64   `json:"discrepancy"`
	ClosedAt        time.Time `json:"closed_at"`
}

// Drawer transaction kinds for manual cash movements.
const (
	DrawerCashIn  = "in"
	DrawerCashOut = "out"
)

// DrawerTransaction is a manual cash movement on an open drawer.
type DrawerTransaction struct {
	ID        uint      `json:"id"`
	SessionID uint      `json:"session_id"`
	Kind      string    `json:"kind"`
	Amount    float64   `json:"amount"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}
