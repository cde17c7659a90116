package services

import (
	"fmt"
	"sync"

	"DataPos/app/models"
)

// CartService owns the working cart of the terminal: its lines, the
// selected line, the customer fields and the VAT override. Totals are
// always recomputed from the lines, never cached.
type CartService struct {
	mu           sync.Mutex
	items        []models.CartItem
	selected     int // index into items, -1 = no selection
	customerName string
	notes        string

	noVat    bool
	savedVat map[uint]float64 // original VAT rates while the override is on

	allowNegativeStock bool
	session            *SessionService
	onChange           func(models.CartView)
}

// NewCartService creates an empty cart. allowNegativeStock selects
// whether short stock refuses the mutation or only warns.
func NewCartService(session *SessionService, allowNegativeStock bool) *CartService {
	return &CartService{
		selected:           -1,
		savedVat:           make(map[uint]float64),
		allowNegativeStock: allowNegativeStock,
		session:            session,
	}
}

// SetOnChange registers a hook invoked with the new cart view after
// every successful mutation. Used to feed the customer display.
func (s *CartService) SetOnChange(fn func(models.CartView)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// AddItem adds one unit of a product, merging into an existing line
// when the product is already in the cart.
func (s *CartService) AddItem(product models.Product) (*models.MutationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID == product.ID {
			newQty := s.items[i].Quantity + 1
			warning, err := s.checkStock(product.Name, newQty, s.items[i].StockHint)
			if err != nil {
				return nil, err
			}
			s.items[i].Quantity = newQty
			return s.mutated(warning), nil
		}
	}

	warning, err := s.checkStock(product.Name, 1, product.Stock)
	if err != nil {
		return nil, err
	}

	vat := product.VatRate
	if s.noVat {
		s.savedVat[product.ID] = product.VatRate
		vat = 0
	}

	s.items = append(s.items, models.CartItem{
		ProductID:  product.ID,
		Name:       product.Name,
		Barcode:    product.Barcode,
		Quantity:   1,
		UnitPrice:  product.Price,
		VatPercent: vat,
		Unit:       product.Unit,
		StockHint:  product.Stock,
	})
	return s.mutated(warning), nil
}

// UpdateQuantity adjusts a line quantity by delta, clamped at 1.
func (s *CartService) UpdateQuantity(productID uint, delta float64) (*models.MutationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.findLocked(productID)
	if item == nil {
		return nil, fmt.Errorf("product %d is not in the cart", productID)
	}

	newQty := item.Quantity + delta
	if newQty < 1 {
		newQty = 1
	}

	warning, err := s.checkStock(item.Name, newQty, item.StockHint)
	if err != nil {
		return nil, err
	}

	item.Quantity = newQty
	return s.mutated(warning), nil
}

// SetSelectedQuantity sets the quantity of the selected line directly.
func (s *CartService) SetSelectedQuantity(qty float64) (*models.MutationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected < 0 {
		return nil, validationErr(CodeNoSelection, "no line is selected")
	}
	if qty < 1 {
		qty = 1
	}

	item := &s.items[s.selected]
	warning, err := s.checkStock(item.Name, qty, item.StockHint)
	if err != nil {
		return nil, err
	}

	item.Quantity = qty
	return s.mutated(warning), nil
}

// UpdateDiscount sets a line discount percentage, clamped to [0,100].
func (s *CartService) UpdateDiscount(productID uint, pct float64) (*models.MutationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.findLocked(productID)
	if item == nil {
		return nil, fmt.Errorf("product %d is not in the cart", productID)
	}

	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	item.DiscountPercent = pct
	return s.mutated(""), nil
}

// UpdatePrice overrides the unit price of a line. Requires pricing
// privileges.
func (s *CartService) UpdatePrice(productID uint, price float64) (*models.MutationResult, error) {
	if !s.session.CanEditPricing() {
		return nil, validationErr(CodeNotAllowed, "price changes require manager approval")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.findLocked(productID)
	if item == nil {
		return nil, fmt.Errorf("product %d is not in the cart", productID)
	}
	if price < 0 {
		return nil, fmt.Errorf("price cannot be negative")
	}

	item.UnitPrice = price
	return s.mutated(""), nil
}

// ReplaceProduct swaps the product on a line, keeping quantity and
// discount. Requires pricing privileges.
func (s *CartService) ReplaceProduct(index int, product models.Product) (*models.MutationResult, error) {
	if !s.session.CanEditPricing() {
		return nil, validationErr(CodeNotAllowed, "product changes require manager approval")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.items) {
		return nil, fmt.Errorf("line %d does not exist", index)
	}

	vat := product.VatRate
	if s.noVat {
		s.savedVat[product.ID] = product.VatRate
		vat = 0
	}

	old := s.items[index]
	s.items[index] = models.CartItem{
		ProductID:       product.ID,
		Name:            product.Name,
		Barcode:         product.Barcode,
		Quantity:        old.Quantity,
		UnitPrice:       product.Price,
		DiscountPercent: old.DiscountPercent,
		VatPercent:      vat,
		Unit:            product.Unit,
		StockHint:       product.Stock,
	}
	return s.mutated(""), nil
}

// RemoveItem removes a line by product. The selection is re-clamped so
// it never points past the end.
func (s *CartService) RemoveItem(productID uint) (*models.MutationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.reclampSelection(i)
			return s.mutated(""), nil
		}
	}
	return nil, fmt.Errorf("product %d is not in the cart", productID)
}

// SelectLine sets the selected line. Selection only ever moves through
// this call or DeleteSelected.
func (s *CartService) SelectLine(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.items) {
		return fmt.Errorf("line %d does not exist", index)
	}
	s.selected = index
	s.notifyLocked()
	return nil
}

// ClearSelection drops the selection.
func (s *CartService) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = -1
	s.notifyLocked()
}

// DeleteSelected removes the selected line and clears the selection.
func (s *CartService) DeleteSelected() (*models.MutationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected < 0 {
		return nil, validationErr(CodeNoSelection, "no line is selected")
	}

	i := s.selected
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.selected = -1
	return s.mutated(""), nil
}

// SetCustomer sets the customer name and notes carried on the sale.
func (s *CartService) SetCustomer(name, notes string) *models.MutationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customerName = name
	s.notes = notes
	return s.mutated("")
}

// ToggleNoVat flips the global VAT override. Enabling zeroes every
// line's VAT rate; disabling restores the remembered per-product rates
// exactly. Requires pricing privileges.
func (s *CartService) ToggleNoVat() (*models.MutationResult, error) {
	if !s.session.CanEditPricing() {
		return nil, validationErr(CodeNotAllowed, "the VAT override requires manager approval")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.noVat {
		for i := range s.items {
			s.savedVat[s.items[i].ProductID] = s.items[i].VatPercent
			s.items[i].VatPercent = 0
		}
		s.noVat = true
	} else {
		for i := range s.items {
			if rate, ok := s.savedVat[s.items[i].ProductID]; ok {
				s.items[i].VatPercent = rate
			}
		}
		s.noVat = false
		s.savedVat = make(map[uint]float64)
	}
	return s.mutated(""), nil
}

// Clear resets the cart atomically: lines, selection, VAT override and
// customer fields all go together.
func (s *CartService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.selected = -1
	s.customerName = ""
	s.notes = ""
	s.noVat = false
	s.savedVat = make(map[uint]float64)
	s.notifyLocked()
}

// Totals recomputes the cart totals from the current lines.
func (s *CartService) Totals() models.CartTotals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ComputeCart(s.items)
}

// Items returns a copy of the cart lines.
func (s *CartService) Items() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]models.CartItem, len(s.items))
	copy(items, s.items)
	return items
}

// IsEmpty reports whether the cart has no lines.
func (s *CartService) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

// View returns the full cart state for the frontend and the display.
func (s *CartService) View() models.CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// CustomerName returns the customer field for the sale payload.
func (s *CartService) CustomerName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customerName
}

// Notes returns the notes field for the sale payload.
func (s *CartService) Notes() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notes
}

func (s *CartService) findLocked(productID uint) *models.CartItem {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			return &s.items[i]
		}
	}
	return nil
}

// checkStock applies the stock policy against the hint captured at add
// time. Permissive mode warns, strict mode refuses. A zero or negative
// hint means stock is not tracked for the product and never triggers.
func (s *CartService) checkStock(name string, qty, stockHint float64) (string, error) {
	if stockHint <= 0 || qty <= stockHint {
		return "", nil
	}
	msg := fmt.Sprintf("%s: sasia %.0f tejkalon stokun (%.0f)", name, qty, stockHint)
	if s.allowNegativeStock {
		return msg, nil
	}
	return "", validationErr(CodeStockShort, msg)
}

func (s *CartService) reclampSelection(removed int) {
	switch {
	case s.selected < 0:
	case s.selected == removed:
		s.selected = -1
	case s.selected > removed:
		s.selected--
	}
	if s.selected >= len(s.items) {
		s.selected = -1
	}
}

func (s *CartService) viewLocked() models.CartView {
	items := make([]models.CartItem, len(s.items))
	copy(items, s.items)

	var selected *int
	if s.selected >= 0 {
		idx := s.selected
		selected = &idx
	}

	return models.CartView{
		Items:         items,
		SelectedIndex: selected,
		CustomerName:  s.customerName,
		Notes:         s.notes,
		NoVat:         s.noVat,
		Totals:        ComputeCart(s.items),
	}
}

func (s *CartService) mutated(warning string) *models.MutationResult {
	s.notifyLocked()
	return &models.MutationResult{Warning: warning, View: s.viewLocked()}
}

func (s *CartService) notifyLocked() {
	if s.onChange != nil {
		s.onChange(s.viewLocked())
	}
}
