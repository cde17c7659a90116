package client

import (
	"fmt"
	"net/url"

	"DataPos/app/models"
)

// CreateSale submits a settled sale. The service allocates the receipt
// number and returns the committed sale. A non-2xx response surfaces as
// *APIError so the settlement layer can relay the service message.
func (c *Client) CreateSale(req *models.SaleRequest) (*models.Sale, error) {
	var sale models.Sale
	if err := c.doJSON("POST", "/sales", req, &sale); err != nil {
		return nil, err
	}
	return &sale, nil
}

// GetSales lists sales for a day (YYYY-MM-DD). Used to rebuild the
// documents list when the local journal is empty.
func (c *Client) GetSales(date string) ([]models.Sale, error) {
	params := url.Values{}
	if date != "" {
		params.Set("date", date)
	}

	path := "/sales"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var sales []models.Sale
	if err := c.doJSON("GET", path, nil, &sales); err != nil {
		return nil, fmt.Errorf("failed to fetch sales: %w", err)
	}
	return sales, nil
}
