package services

import (
	"errors"
	"fmt"
)

// Error codes for refused operations. Validation codes mean the request
// itself was bad; state codes mean the operation is not legal right now.
const (
	CodeEmptyCart           = "empty_cart"
	CodeInsufficientPayment = "insufficient_payment"
	CodeNoSelection         = "no_selection"
	CodeStockShort          = "stock_short"
	CodeNotAllowed          = "not_allowed"

	CodeDrawerNotOpen      = "drawer_not_open"
	CodeDrawerAlreadyOpen  = "drawer_already_open"
	CodeSettlementInFlight = "settlement_in_flight"
)

// ValidationError reports input the engine refused before touching any state.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// StateError reports an operation that is invalid in the current
// session state (drawer lifecycle, settlement in flight).
type StateError struct {
	Code    string
	Message string
}

func (e *StateError) Error() string {
	return e.Message
}

// SettlementError means the back office refused or failed to record the
// sale. Message carries the service response verbatim so the operator
// sees exactly what the service said. The sale did not happen.
type SettlementError struct {
	Message string
	Err     error
}

func (e *SettlementError) Error() string {
	return fmt.Sprintf("settlement failed: %s", e.Message)
}

func (e *SettlementError) Unwrap() error {
	return e.Err
}

// PrintError means a committed sale could not be printed. It is never
// fatal to the sale; the document stays reprintable from the journal.
type PrintError struct {
	Backend string
	Err     error
}

func (e *PrintError) Error() string {
	return fmt.Sprintf("print failed on %s backend: %v", e.Backend, e.Err)
}

func (e *PrintError) Unwrap() error {
	return e.Err
}

func validationErr(code, message string) error {
	return &ValidationError{Code: code, Message: message}
}

func stateErr(code, message string) error {
	return &StateError{Code: code, Message: message}
}

// ErrorCode extracts the machine-readable code from an engine error, or
// empty when the error carries none.
func ErrorCode(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code
	}
	var se *StateError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}
