package client_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"DataPos/app/client"
	"DataPos/app/models"
)

func TestGetProductsQueryAndAuth(t *testing.T) {
	var gotAuth string
	var gotQuery string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode([]models.Product{{ID: 1, Name: "Djathë", Barcode: "123"}})
	}))
	defer server.Close()

	c := client.New(server.URL, "terminal-token", time.Second)
	products, err := c.GetProducts(models.ProductQuery{Search: "dja", InStockOnly: true, Limit: 50})
	if err != nil {
		t.Fatalf("GetProducts: %v", err)
	}

	if gotAuth != "Bearer terminal-token" {
		t.Errorf("Authorization = %q, want the bearer token", gotAuth)
	}
	if gotQuery != "in_stock_only=true&limit=50&search=dja" {
		t.Errorf("query = %q", gotQuery)
	}
	if len(products) != 1 || products[0].Name != "Djathë" {
		t.Errorf("products = %+v", products)
	}
}

func TestGetProductByBarcodeNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]models.Product{})
	}))
	defer server.Close()

	c := client.New(server.URL, "", time.Second)
	if _, err := c.GetProductByBarcode("000"); err == nil {
		t.Error("expected an error for an unknown barcode")
	}
}

func TestCreateSaleRelaysServiceDetail(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
	}{
		{
			name:       "fastapi detail wrapper",
			status:     409,
			body:       `{"detail":"Arka është mbyllur"}`,
			wantDetail: "Arka është mbyllur",
		},
		{
			name:       "plain text body",
			status:     500,
			body:       "internal error",
			wantDetail: "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := client.New(server.URL, "", time.Second)
			_, err := c.CreateSale(&models.SaleRequest{})

			apiErr, ok := err.(*client.APIError)
			if !ok {
				t.Fatalf("error type = %T, want *client.APIError", err)
			}
			if apiErr.Status != tt.status {
				t.Errorf("Status = %d, want %d", apiErr.Status, tt.status)
			}
			if apiErr.Detail != tt.wantDetail {
				t.Errorf("Detail = %q, want %q", apiErr.Detail, tt.wantDetail)
			}
		})
	}
}

func TestCurrentDrawer(t *testing.T) {
	t.Run("open session", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(models.DrawerSession{ID: 3, OpenedBy: "drita", Status: models.DrawerOpen})
		}))
		defer server.Close()

		c := client.New(server.URL, "", time.Second)
		session, err := c.CurrentDrawer()
		if err != nil {
			t.Fatalf("CurrentDrawer: %v", err)
		}
		if session == nil || session.ID != 3 {
			t.Errorf("session = %+v, want ID 3", session)
		}
	})

	t.Run("no session open", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail":"no open drawer"}`))
		}))
		defer server.Close()

		c := client.New(server.URL, "", time.Second)
		session, err := c.CurrentDrawer()
		if err != nil {
			t.Fatalf("CurrentDrawer on 404: %v", err)
		}
		if session != nil {
			t.Errorf("session = %+v, want nil", session)
		}
	})
}

func TestCreateSalePostsJSON(t *testing.T) {
	var gotMethod, gotPath, gotContentType string
	var gotReq models.SaleRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(models.Sale{ID: 42, ReceiptNumber: "RCP-20260901-0001", GrandTotal: gotReq.GrandTotal})
	}))
	defer server.Close()

	c := client.New(server.URL, "", time.Second)
	sale, err := c.CreateSale(&models.SaleRequest{GrandTotal: 23.6, PaymentMethod: models.PaymentCash})
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}

	if gotMethod != "POST" || gotPath != "/sales" {
		t.Errorf("request = %s %s, want POST /sales", gotMethod, gotPath)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if sale.ReceiptNumber != "RCP-20260901-0001" {
		t.Errorf("ReceiptNumber = %q", sale.ReceiptNumber)
	}
}
