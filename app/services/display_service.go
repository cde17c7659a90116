package services

import (
	"fmt"
	"time"

	"DataPos/app/models"
	"DataPos/app/websocket"
)

// DisplayService pushes cart and sale state to customer-facing displays
// over the WebSocket server. All publishing is fire-and-forget: a
// display being offline never affects checkout.
type DisplayService struct {
	server *websocket.Server
	logger *LoggerService
}

// NewDisplayService wires the display publisher. server may be nil when
// the customer display is disabled in settings.
func NewDisplayService(server *websocket.Server, logger *LoggerService) *DisplayService {
	return &DisplayService{server: server, logger: logger}
}

// displayCartPayload is the shape displays render while a sale is rung up.
type displayCartPayload struct {
	Items        []models.CartItem `json:"items"`
	Totals       models.CartTotals `json:"totals"`
	CustomerName string            `json:"customer_name,omitempty"`
}

// displaySalePayload is shown after a completed settlement.
type displaySalePayload struct {
	ReceiptNumber  string  `json:"receipt_number"`
	GrandTotal     float64 `json:"grand_total"`
	AmountTendered float64 `json:"amount_tendered"`
	ChangeDue      float64 `json:"change_due"`
	PaymentMethod  string  `json:"payment_method"`
	CompletedAt    string  `json:"completed_at"`
}

// PublishCart mirrors the current cart to connected displays. Wire it
// as the cart change callback.
func (s *DisplayService) PublishCart(view models.CartView) {
	if s.server == nil {
		return
	}
	if len(view.Items) == 0 {
		s.PublishIdle()
		return
	}
	s.server.Publish(websocket.TypeCartState, displayCartPayload{
		Items:        view.Items,
		Totals:       view.Totals,
		CustomerName: view.CustomerName,
	})
}

// PublishSaleComplete shows the settled sale with the change due.
func (s *DisplayService) PublishSaleComplete(sale *models.Sale) {
	if s.server == nil || sale == nil {
		return
	}
	s.server.Publish(websocket.TypeSaleComplete, displaySalePayload{
		ReceiptNumber:  sale.ReceiptNumber,
		GrandTotal:     sale.GrandTotal,
		AmountTendered: sale.AmountTendered,
		ChangeDue:      sale.ChangeDue,
		PaymentMethod:  sale.PaymentMethod,
		CompletedAt:    time.Now().Format(time.RFC3339),
	})
}

// PublishIdle returns displays to the idle screen.
func (s *DisplayService) PublishIdle() {
	if s.server == nil {
		return
	}
	s.server.Publish(websocket.TypeIdle, map[string]string{"state": "idle"})
}

// Status reports the display server state for the settings screen.
func (s *DisplayService) Status() map[string]interface{} {
	if s.server == nil {
		return map[string]interface{}{"running": false}
	}
	return s.server.GetServerStatus()
}

// ConnectedDisplays lists the connected display clients.
func (s *DisplayService) ConnectedDisplays() []map[string]interface{} {
	if s.server == nil {
		return nil
	}
	return s.server.GetConnectedClients()
}

// Start runs the display server in the background.
func (s *DisplayService) Start() {
	if s.server == nil {
		return
	}
	go func() {
		if s.logger != nil {
			defer s.logger.RecoverPanic()
		}
		if err := s.server.Start(); err != nil {
			if s.logger != nil {
				s.logger.LogError("Display server stopped", err, fmt.Sprintf("port %s", s.server.GetPort()))
			}
		}
	}()
}

// Stop shuts the display server down.
func (s *DisplayService) Stop() {
	if s.server != nil {
		s.server.Stop()
	}
}
