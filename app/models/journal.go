package models

import "time"

// JournalSale is a locally journaled copy of a committed sale, kept so
// recent documents can be listed and reprinted without the back office.
type JournalSale struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ReceiptNumber string    `gorm:"uniqueIndex" json:"receipt_number"`
	SaleData      string    `json:"sale_data"` // JSON serialized Sale
	PaymentMethod string    `json:"payment_method"`
	GrandTotal    float64   `json:"grand_total"`
	CashierName   string    `json:"cashier_name"`
	CreatedAt     time.Time `json:"created_at"`
}

// PrintJob records one dispatch attempt so failed prints can be redone
// manually from the documents list.
type PrintJob struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ReceiptNumber string    `gorm:"index" json:"receipt_number"`
	Format        string    `json:"format"`
	Backend       string    `json:"backend"`
	Success       bool      `json:"success"`
	Error         string    `json:"error"`
	CreatedAt     time.Time `json:"created_at"`
}

// DrawerEvent is the local audit trail of drawer activity.
type DrawerEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID uint      `gorm:"index" json:"session_id"`
	Kind      string    `json:"kind"` // "open", "sale", "in", "out", "close"
	Amount    float64   `json:"amount"`
	Balance   float64   `json:"balance"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}
