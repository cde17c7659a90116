package services

import (
	"fmt"
	"strconv"
	"sync"

	"DataPos/app/models"
)

// GuardFunc decides whether a command may run. Guards are evaluated
// against live state at dispatch time, never against a snapshot taken
// when the binding was registered.
type GuardFunc func() error

// ActionFunc executes a command. The payload carries command-specific
// input such as a barcode or a search term.
type ActionFunc func(payload string) (interface{}, error)

// Command is one key binding in the router table.
type Command struct {
	Key    string
	Name   string
	Guard  GuardFunc
	Action ActionFunc
}

// CommandRouter maps key chords to guarded actions. The frontend feeds
// every recognized chord through Dispatch; a failed guard returns the
// typed error and nothing executes.
type CommandRouter struct {
	mu     sync.RWMutex
	table  map[string]*Command
	logger *LoggerService
}

// NewCommandRouter creates an empty router.
func NewCommandRouter(logger *LoggerService) *CommandRouter {
	return &CommandRouter{
		table:  make(map[string]*Command),
		logger: logger,
	}
}

// Register adds or replaces a binding.
func (r *CommandRouter) Register(cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := cmd
	r.table[cmd.Key] = &c
}

// Bindings lists the registered chords and their names, for the help
// overlay.
func (r *CommandRouter) Bindings() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.table))
	for key, cmd := range r.table {
		out[key] = cmd.Name
	}
	return out
}

// Dispatch runs the binding for a key chord. The guard runs first,
// synchronously, against current state; a guard error aborts with no
// partial execution.
func (r *CommandRouter) Dispatch(key, payload string) (interface{}, error) {
	r.mu.RLock()
	cmd, ok := r.table[key]
	r.mu.RUnlock()

	if !ok {
		return nil, validationErr(CodeNotAllowed, fmt.Sprintf("no command bound to %q", key))
	}

	if cmd.Guard != nil {
		if err := cmd.Guard(); err != nil {
			return nil, err
		}
	}

	result, err := cmd.Action(payload)
	if err != nil && r.logger != nil {
		r.logger.LogWarning("Command failed", fmt.Sprintf("%s: %v", cmd.Name, err))
	}
	return result, err
}

// RouterDeps bundles the services the default bindings act on.
type RouterDeps struct {
	Cart       *CartService
	Drawer     *DrawerService
	Settlement *SettlementService
	Dispatcher *PrintDispatcher
	Catalog    *CatalogService
	Receipts   *ReceiptService
	Settings   *SettingsService
	Journal    *JournalService
}

// RegisterDefaultBindings installs the standard checkout key map:
//
//	F2      open payment (cart must have lines, drawer must be open)
//	F4      A4 invoice of the last sale
//	F6      recent documents
//	F12     product search
//	Delete  remove the selected line
//	Enter   barcode entry (payload = scanned code)
//	Ctrl+B  immediate bank settlement
//	0-9     quantity for the selected line (payload = digits typed)
//	Escape  clear the line selection
func (r *CommandRouter) RegisterDefaultBindings(deps RouterDeps) {
	payGuard := func() error {
		if deps.Cart.IsEmpty() {
			return validationErr(CodeEmptyCart, "the cart is empty")
		}
		if !deps.Drawer.IsOpen() {
			return stateErr(CodeDrawerNotOpen, "the cash drawer is not open")
		}
		return nil
	}

	r.Register(Command{
		Key:   "F2",
		Name:  "open-payment",
		Guard: payGuard,
		Action: func(string) (interface{}, error) {
			// The payment dialog itself lives in the frontend; the
			// command hands it the authoritative totals.
			return deps.Cart.Totals(), nil
		},
	})

	r.Register(Command{
		Key:  "F4",
		Name: "print-invoice",
		Guard: func() error {
			if deps.Settlement.LastSale() == nil {
				return validationErr(CodeNotAllowed, "no sale to print")
			}
			return nil
		},
		Action: func(string) (interface{}, error) {
			sale := deps.Settlement.LastSale()
			doc := deps.Receipts.ComposeA4(sale, deps.Settings.Company(), nil)
			return deps.Dispatcher.Print(doc, PrintOptions{Silent: false}), nil
		},
	})

	r.Register(Command{
		Key:  "F6",
		Name: "recent-documents",
		Action: func(string) (interface{}, error) {
			return deps.Journal.RecentSales(50)
		},
	})

	r.Register(Command{
		Key:  "F12",
		Name: "product-search",
		Action: func(payload string) (interface{}, error) {
			return deps.Catalog.Search(payload)
		},
	})

	r.Register(Command{
		Key:  "Delete",
		Name: "delete-selected-line",
		Action: func(string) (interface{}, error) {
			return deps.Cart.DeleteSelected()
		},
	})

	r.Register(Command{
		Key:  "Enter",
		Name: "barcode-entry",
		Action: func(payload string) (interface{}, error) {
			product, err := deps.Catalog.ByBarcode(payload)
			if err != nil {
				return nil, err
			}
			return deps.Cart.AddItem(*product)
		},
	})

	r.Register(Command{
		Key:   "Ctrl+B",
		Name:  "settle-bank",
		Guard: payGuard,
		Action: func(string) (interface{}, error) {
			return deps.Settlement.Settle(models.PaymentBank, 0)
		},
	})

	r.Register(Command{
		Key:  "Digits",
		Name: "set-quantity",
		Action: func(payload string) (interface{}, error) {
			qty, err := strconv.ParseFloat(payload, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid quantity %q", payload)
			}
			return deps.Cart.SetSelectedQuantity(qty)
		},
	})

	r.Register(Command{
		Key:  "Escape",
		Name: "clear-selection",
		Action: func(string) (interface{}, error) {
			deps.Cart.ClearSelection()
			return nil, nil
		},
	})
}
