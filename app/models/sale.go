package models

import "time"

// Payment methods accepted at the terminal.
const (
	PaymentCash = "cash"
	PaymentBank = "bank"
)

// SaleItem is a resolved cart line inside a sale payload. Amounts are
// computed once at settlement time and travel with the sale.
type SaleItem struct {
	ProductID       uint    `json:"product_id"`
	Name            string  `json:"name"`
	Quantity        float64 `json:"quantity"`
	UnitPrice       float64 `json:"unit_price"`
	DiscountPercent float64 `json:"discount_percent"`
	VatPercent      float64 `json:"vat_percent"`
	Subtotal        float64 `json:"subtotal"`
	DiscountAmount  float64 `json:"discount_amount"`
	VatAmount       float64 `json:"vat_amount"`
	Total           float64 `json:"total"`
}

// SaleRequest is the payload submitted to POST /sales.
type SaleRequest struct {
	Items          []SaleItem `json:"items"`
	Subtotal       float64    `json:"subtotal"`
	DiscountAmount float64    `json:"discount_amount"`
	VatAmount      float64    `json:"vat_amount"`
	GrandTotal     float64    `json:"grand_total"`
	PaymentMethod  string     `json:"payment_method"`
	AmountTendered float64    `json:"amount_tendered"`
	ChangeDue      float64    `json:"change_due"`
	CustomerName   string     `json:"customer_name,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	CashierName    string     `json:"cashier_name"`
	DrawerID       uint       `json:"drawer_id,omitempty"`
}

// Sale is a committed sale as returned by the service. ReceiptNumber is
// allocated server side (RCP-YYYYMMDD-NNNN) and never locally.
type Sale struct {
	ID             uint       `json:"id"`
	ReceiptNumber  string     `json:"receipt_number"`
	Items          []SaleItem `json:"items"`
	Subtotal       float64    `json:"subtotal"`
	DiscountAmount float64    `json:"discount_amount"`
	VatAmount      float64    `json:"vat_amount"`
	GrandTotal     float64    `json:"grand_total"`
	PaymentMethod  string     `json:"payment_method"`
	AmountTendered float64    `json:"amount_tendered"`
	ChangeDue      float64    `json:"change_due"`
	CustomerName   string     `json:"customer_name,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	CashierName    string     `json:"cashier_name"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Buyer carries the invoice recipient for the A4 fiscal-style layout.
// A nil buyer prints as the generic consumer.
type Buyer struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	TaxID   string `json:"tax_id"`
}
