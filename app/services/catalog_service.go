package services

import (
	"fmt"
	"strings"

	"DataPos/app/models"
)

// CatalogAPI is the back-office catalog surface.
type CatalogAPI interface {
	GetProducts(query models.ProductQuery) ([]models.Product, error)
	GetProductByBarcode(barcode string) (*models.Product, error)
}

// CatalogService answers product lookups for the search dialog and the
// barcode scanner.
type CatalogService struct {
	api               CatalogAPI
	showNegativeStock bool
}

// NewCatalogService creates a catalog service. showNegativeStock keeps
// out-of-stock products visible in search results.
func NewCatalogService(api CatalogAPI, showNegativeStock bool) *CatalogService {
	return &CatalogService{api: api, showNegativeStock: showNegativeStock}
}

// Search finds products by name or barcode fragment.
func (s *CatalogService) Search(term string) ([]models.Product, error) {
	term = strings.TrimSpace(term)

	products, err := s.api.GetProducts(models.ProductQuery{
		Search:      term,
		InStockOnly: !s.showNegativeStock,
		Limit:       50,
	})
	if err != nil {
		return nil, fmt.Errorf("product search failed: %w", err)
	}
	return products, nil
}

// ByBarcode resolves an exact scanned barcode.
func (s *CatalogService) ByBarcode(barcode string) (*models.Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, fmt.Errorf("empty barcode")
	}

	product, err := s.api.GetProductByBarcode(barcode)
	if err != nil {
		return nil, fmt.Errorf("barcode lookup failed: %w", err)
	}
	return product, nil
}
