package models

// CartItem is a single line in the working cart.
type CartItem struct {
	ProductID       uint    `json:"product_id"`
	Name            string  `json:"name"`
	Barcode         string  `json:"barcode"`
	Quantity        float64 `json:"quantity"`
	UnitPrice       float64 `json:"unit_price"`
	DiscountPercent float64 `json:"discount_percent"`
	VatPercent      float64 `json:"vat_percent"`
	Unit            string  `json:"unit"`
	// StockHint is the catalog stock level observed when the line was added.
	// It is advisory only; the service of record is the back office.
	StockHint float64 `json:"stock_hint"`
}

// LineTotals holds the derived amounts for one cart line.
type LineTotals struct {
	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discount_amount"`
	Taxable        float64 `json:"taxable"`
	VatAmount      float64 `json:"vat_amount"`
	Total          float64 `json:"total"`
}

// CartTotals holds the derived amounts for the whole cart.
type CartTotals struct {
	ItemCount      int     `json:"item_count"`
	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discount_amount"`
	VatAmount      float64 `json:"vat_amount"`
	GrandTotal     float64 `json:"grand_total"`
}

// CartView is the full cart state handed to the frontend and the
// customer display. SelectedIndex is nil when no line is selected.
type CartView struct {
	Items         []CartItem `json:"items"`
	SelectedIndex *int       `json:"selected_index"`
	CustomerName  string     `json:"customer_name"`
	Notes         string     `json:"notes"`
	NoVat         bool       `json:"no_vat"`
	Totals        CartTotals `json:"totals"`
}

// MutationResult reports the outcome of a cart mutation. Warning is
// non-empty when the operation succeeded but stock is short.
type MutationResult struct {
	Warning string   `json:"warning,omitempty"`
	View    CartView `json:"view"`
}
