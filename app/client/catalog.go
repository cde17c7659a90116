package client

import (
	"fmt"
	"net/url"

	"DataPos/app/models"
)

// GetProducts searches the catalog. An empty query returns the first
// page of active products.
func (c *Client) GetProducts(query models.ProductQuery) ([]models.Product, error) {
	params := url.Values{}
	if query.Search != "" {
		params.Set("search", query.Search)
	}
	if query.Barcode != "" {
		params.Set("barcode", query.Barcode)
	}
	if query.InStockOnly {
		params.Set("in_stock_only", "true")
	}
	if query.Limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", query.Limit))
	}

	path := "/products"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var products []models.Product
	if err := c.doJSON("GET", path, nil, &products); err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, nil
}

// GetProductByBarcode resolves a scanned barcode to a single product.
func (c *Client) GetProductByBarcode(barcode string) (*models.Product, error) {
	products, err := c.GetProducts(models.ProductQuery{Barcode: barcode, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("no product with barcode %s", barcode)
	}
	return &products[0], nil
}
