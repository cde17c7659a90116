package models

import "time"

// Product is a catalog item as served by the back-office API.
type Product struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Barcode   string    `json:"barcode"`
	Price     float64   `json:"price"`
	VatRate   float64   `json:"vat_rate"`
	Stock     float64   `json:"stock"`
	Unit      string    `json:"unit"`
	IsActive  bool      `json:"is_active"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductQuery filters a catalog search.
type ProductQuery struct {
	Search      string `json:"search,omitempty"`
	Barcode     string `json:"barcode,omitempty"`
	InStockOnly bool   `json:"in_stock_only,omitempty"`
	Limit       int    `json:"limit,omitempty"`
}
