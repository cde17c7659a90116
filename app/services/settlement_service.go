package services

import (
	"fmt"
	"sync"

	"DataPos/app/client"
	"DataPos/app/models"
)

// SalesAPI is the back-office surface that records sales.
type SalesAPI interface {
	CreateSale(req *models.SaleRequest) (*models.Sale, error)
}

// SettlementService commits a cart into a sale. The commit is all or
// nothing: until the back office accepts the sale, no local state moves;
// once it accepts, the drawer, the cart and the journal are updated in
// that order.
type SettlementService struct {
	mu       sync.Mutex
	inFlight bool

	cart    *CartService
	drawer  *DrawerService
	session *SessionService
	api     SalesAPI
	journal *JournalService
	logger  *LoggerService

	lastSale  *models.Sale
	onSettled func(*models.Sale)
}

// NewSettlementService wires the settlement path. journal and logger
// may be nil.
func NewSettlementService(cart *CartService, drawer *DrawerService, session *SessionService, api SalesAPI, journal *JournalService, logger *LoggerService) *SettlementService {
	return &SettlementService{
		cart:    cart,
		drawer:  drawer,
		session: session,
		api:     api,
		journal: journal,
		logger:  logger,
	}
}

// SetOnSettled registers a callback invoked after every committed sale.
// The customer display and the auto-print path hook in here.
func (s *SettlementService) SetOnSettled(fn func(*models.Sale)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSettled = fn
}

// Settle validates, submits and commits the sale. For cash, tendered is
// the amount handed over; for bank, it is ignored and the sale settles
// at the exact total. A second Settle while one is in flight is refused.
func (s *SettlementService) Settle(method string, tendered float64) (*models.Sale, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, stateErr(CodeSettlementInFlight, "a settlement is already in progress")
	}
	s.inFlight = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	if method != models.PaymentCash && method != models.PaymentBank {
		return nil, fmt.Errorf("unknown payment method %q", method)
	}

	// Preconditions, in order: empty cart, drawer, then funds.
	if s.cart.IsEmpty() {
		return nil, validationErr(CodeEmptyCart, "the cart is empty")
	}
	if !s.drawer.IsOpen() {
		return nil, stateErr(CodeDrawerNotOpen, "the cash drawer is not open")
	}

	items := s.cart.Items()
	totals := ComputeCart(items)

	if method == models.PaymentCash && tendered < totals.GrandTotal {
		return nil, validationErr(CodeInsufficientPayment,
			fmt.Sprintf("tendered %.2f is less than the total %.2f", tendered, totals.GrandTotal))
	}
	if method == models.PaymentBank {
		tendered = totals.GrandTotal
	}

	req := s.buildRequest(method, tendered, items, totals)

	sale, err := s.api.CreateSale(req)
	if err != nil {
		// Nothing moved; relay the service message verbatim.
		if apiErr, ok := err.(*client.APIError); ok {
			return nil, &SettlementError{Message: apiErr.Detail, Err: err}
		}
		return nil, &SettlementError{Message: err.Error(), Err: err}
	}

	// Committed. Local follow-ups must not undo the sale; failures are
	// logged and the terminal carries on.
	if method == models.PaymentCash {
		if err := s.drawer.RecordCashSale(tendered); err != nil && s.logger != nil {
			s.logger.LogWarning("Drawer not updated after settlement", err.Error())
		}
	}
	s.cart.Clear()

	if s.journal != nil {
		if err := s.journal.RecordSale(sale); err != nil && s.logger != nil {
			s.logger.LogWarning("Sale not journaled", err.Error())
		}
	}

	s.mu.Lock()
	s.lastSale = sale
	settled := s.onSettled
	s.mu.Unlock()

	if settled != nil {
		settled(sale)
	}

	if s.logger != nil {
		s.logger.LogInfo("Sale settled", fmt.Sprintf("%s total %.2f via %s", sale.ReceiptNumber, sale.GrandTotal, method))
	}
	return sale, nil
}

// LastSale returns the most recently committed sale, or nil. Used for
// the reprint and A4 invoice shortcuts.
func (s *SettlementService) LastSale() *models.Sale {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSale
}

func (s *SettlementService) buildRequest(method string, tendered float64, items []models.CartItem, totals models.CartTotals) *models.SaleRequest {
	saleItems := make([]models.SaleItem, 0, len(items))
	for _, item := range items {
		line := ComputeLine(item)
		saleItems = append(saleItems, models.SaleItem{
			ProductID:       item.ProductID,
			Name:            item.Name,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			DiscountPercent: item.DiscountPercent,
			VatPercent:      item.VatPercent,
			Subtotal:        line.Subtotal,
			DiscountAmount:  line.DiscountAmount,
			VatAmount:       line.VatAmount,
			Total:           line.Total,
		})
	}

	var drawerID uint
	if current := s.drawer.Current(); current != nil {
		drawerID = current.ID
	}

	return &models.SaleRequest{
		Items:          saleItems,
		Subtotal:       totals.Subtotal,
		DiscountAmount: totals.DiscountAmount,
		VatAmount:      totals.VatAmount,
		GrandTotal:     totals.GrandTotal,
		PaymentMethod:  method,
		AmountTendered: tendered,
		ChangeDue:      ChangeDue(tendered, totals.GrandTotal),
		CustomerName:   s.cart.CustomerName(),
		Notes:          s.cart.Notes(),
		CashierName:    s.session.CashierName(),
		DrawerID:       drawerID,
	}
}
