package services_test

import (
	"errors"
	"testing"

	"DataPos/app/client"
	"DataPos/app/models"
	"DataPos/app/services"
)

// fakeSalesAPI plays the back office sales endpoint.
type fakeSalesAPI struct {
	err      error
	calls    int
	lastReq  *models.SaleRequest
	onCreate func() // runs inside CreateSale, for re-entrancy tests
}

func (f *fakeSalesAPI) CreateSale(req *models.SaleRequest) (*models.Sale, error) {
	f.calls++
	f.lastReq = req
	if f.onCreate != nil {
		f.onCreate()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &models.Sale{
		ID:             42,
		ReceiptNumber:  "RCP-20260901-0001",
		Subtotal:       req.Subtotal,
		DiscountAmount: req.DiscountAmount,
		VatAmount:      req.VatAmount,
		GrandTotal:     req.GrandTotal,
		PaymentMethod:  req.PaymentMethod,
		AmountTendered: req.AmountTendered,
		ChangeDue:      req.ChangeDue,
		CashierName:    req.CashierName,
	}, nil
}

type settleFixture struct {
	cart       *services.CartService
	drawer     *services.DrawerService
	api        *fakeSalesAPI
	settlement *services.SettlementService
}

func newSettleFixture(t *testing.T) *settleFixture {
	t.Helper()
	session := cashierSession()
	cart := services.NewCartService(session, true)
	drawer := services.NewDrawerService(&fakeCashierAPI{}, nil)
	api := &fakeSalesAPI{}
	settlement := services.NewSettlementService(cart, drawer, session, api, nil, nil)
	return &settleFixture{cart: cart, drawer: drawer, api: api, settlement: settlement}
}

func (f *settleFixture) fillCart(t *testing.T) {
	t.Helper()
	// 2 x 10.00 at 18% VAT: total 23.60
	if _, err := f.cart.AddItem(testProduct(1, "Djathë", 10)); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if _, err := f.cart.UpdateQuantity(1, 1); err != nil {
		t.Fatalf("UpdateQuantity: %v", err)
	}
}

func TestSettlePreconditionOrder(t *testing.T) {
	f := newSettleFixture(t)

	// Empty cart wins over the closed drawer
	_, err := f.settlement.Settle(models.PaymentCash, 100)
	if services.ErrorCode(err) != services.CodeEmptyCart {
		t.Errorf("empty cart + closed drawer: code = %q, want %q", services.ErrorCode(err), services.CodeEmptyCart)
	}

	f.fillCart(t)
	_, err = f.settlement.Settle(models.PaymentCash, 100)
	if services.ErrorCode(err) != services.CodeDrawerNotOpen {
		t.Errorf("closed drawer: code = %q, want %q", services.ErrorCode(err), services.CodeDrawerNotOpen)
	}

	f.drawer.Open(50, "arben")
	_, err = f.settlement.Settle(models.PaymentCash, 20)
	if services.ErrorCode(err) != services.CodeInsufficientPayment {
		t.Errorf("short payment: code = %q, want %q", services.ErrorCode(err), services.CodeInsufficientPayment)
	}

	if f.api.calls != 0 {
		t.Errorf("back office called %d times although every settle was refused", f.api.calls)
	}
	if f.cart.IsEmpty() {
		t.Error("cart cleared although no settlement went through")
	}
}

func TestSettleUnknownMethod(t *testing.T) {
	f := newSettleFixture(t)
	f.fillCart(t)
	f.drawer.Open(50, "arben")

	if _, err := f.settlement.Settle("voucher", 100); err == nil {
		t.Fatal("expected an error for an unknown payment method")
	}
}

func TestSettleCashCommit(t *testing.T) {
	f := newSettleFixture(t)
	f.fillCart(t)
	f.drawer.Open(50, "arben")

	var settled *models.Sale
	f.settlement.SetOnSettled(func(sale *models.Sale) { settled = sale })

	sale, err := f.settlement.Settle(models.PaymentCash, 30)
	if err != nil {
		t.Fatalf("Settle: %v", err)
	}

	if !almostEqual(sale.GrandTotal, 23.6) {
		t.Errorf("GrandTotal = %v, want 23.6", sale.GrandTotal)
	}
	if !almostEqual(f.api.lastReq.ChangeDue, 6.4) {
		t.Errorf("ChangeDue = %v, want 6.4", f.api.lastReq.ChangeDue)
	}

	// The full tendered amount lands in the drawer
	if got := f.drawer.Current().CurrentBalance; got != 80 {
		t.Errorf("drawer balance = %v, want 80", got)
	}
	if !f.cart.IsEmpty() {
		t.Error("cart not cleared after commit")
	}
	if f.settlement.LastSale() == nil || f.settlement.LastSale().ID != 42 {
		t.Error("LastSale not recorded")
	}
	if settled == nil || settled.ID != 42 {
		t.Error("onSettled hook not invoked")
	}
}

func TestSettleBankIgnoresTendered(t *testing.T) {
	f := newSettleFixture(t)
	f.fillCart(t)
	f.drawer.Open(50, "arben")

	if _, err := f.settlement.Settle(models.PaymentBank, 0); err != nil {
		t.Fatalf("Settle: %v", err)
	}

	if !almostEqual(f.api.lastReq.AmountTendered, 23.6) {
		t.Errorf("AmountTendered = %v, want the exact total 23.6", f.api.lastReq.AmountTendered)
	}
	if f.api.lastReq.ChangeDue != 0 {
		t.Errorf("ChangeDue = %v, want 0", f.api.lastReq.ChangeDue)
	}

	// Bank money never touches the till
	if got := f.drawer.Current().CurrentBalance; got != 50 {
		t.Errorf("drawer balance = %v, want untouched 50", got)
	}
}

func TestSettleFailureLeavesStateIntact(t *testing.T) {
	f := newSettleFixture(t)
	f.fillCart(t)
	f.drawer.Open(50, "arben")
	f.api.err = &client.APIError{Status: 409, Detail: "Arka është mbyllur në server"}

	_, err := f.settlement.Settle(models.PaymentCash, 30)
	if err == nil {
		t.Fatal("expected the settlement to fail")
	}

	var settleErr *services.SettlementError
	if !errors.As(err, &settleErr) {
		t.Fatalf("error type = %T, want *services.SettlementError", err)
	}
	if settleErr.Message != "Arka është mbyllur në server" {
		t.Errorf("Message = %q, want the service detail verbatim", settleErr.Message)
	}

	if f.cart.IsEmpty() {
		t.Error("cart cleared although the sale was refused")
	}
	if got := f.drawer.Current().CurrentBalance; got != 50 {
		t.Errorf("drawer balance = %v after refused sale, want 50", got)
	}
	if f.settlement.LastSale() != nil {
		t.Error("LastSale set although the sale was refused")
	}
}

func TestSettleRefusesReentry(t *testing.T) {
	f := newSettleFixture(t)
	f.fillCart(t)
	f.drawer.Open(50, "arben")

	var nestedErr error
	f.api.onCreate = func() {
		_, nestedErr = f.settlement.Settle(models.PaymentCash, 30)
	}

	if _, err := f.settlement.Settle(models.PaymentCash, 30); err != nil {
		t.Fatalf("outer Settle: %v", err)
	}
	if services.ErrorCode(nestedErr) != services.CodeSettlementInFlight {
		t.Errorf("nested settle: code = %q, want %q", services.ErrorCode(nestedErr), services.CodeSettlementInFlight)
	}
	if f.api.calls != 1 {
		t.Errorf("back office called %d times, want 1", f.api.calls)
	}
}
