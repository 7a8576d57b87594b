package models

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a dispatch failure kind. Codes are part of the wire
// contract with the dialogue layer.
type ErrorCode string

const (
	CodeInvalidQuery      ErrorCode = "invalid_query"
	CodeProductNotFound   ErrorCode = "product_not_found"
	CodeEmptyOrder        ErrorCode = "empty_order"
	CodeInvalidQuantity   ErrorCode = "invalid_quantity"
	CodeOrderNotFound     ErrorCode = "order_not_found"
	CodeUnknownOperation  ErrorCode = "unknown_operation"
	CodeMissingArgument   ErrorCode = "missing_argument"
	CodeInvalidArgument   ErrorCode = "invalid_argument"
	CodeStoreWriteFailure ErrorCode = "store_write_failure"
)

// Error carries a failure code plus enough structured detail for the
// upstream voice layer to phrase a sensible spoken response.
type Error struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	ProductID string    `json:"product_id,omitempty"`
	OrderID   int64     `json:"order_id,omitempty"`
	Field     string    `json:"field,omitempty"`
	Operation string    `json:"operation,omitempty"`

	cause error
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// CodeOf returns the code carried by err, or "" for untyped errors.
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

func ErrInvalidQuery() *Error {
	return &Error{
		Code:    CodeInvalidQuery,
		Message: "search needs a query or at least one filter",
	}
}

func ErrProductNotFound(productID string) *Error {
	return &Error{
		Code:      CodeProductNotFound,
		Message:   fmt.Sprintf("product %q not found", productID),
		ProductID: productID,
	}
}

func ErrEmptyOrder() *Error {
	return &Error{
		Code:    CodeEmptyOrder,
		Message: "cannot place an order with no line items",
	}
}

func ErrInvalidQuantity(productID string, quantity int) *Error {
	return &Error{
		Code:      CodeInvalidQuantity,
		Message:   fmt.Sprintf("quantity %d for product %q must be at least 1", quantity, productID),
		ProductID: productID,
	}
}

func ErrOrderNotFound(orderID int64) *Error {
	return &Error{
		Code:    CodeOrderNotFound,
		Message: fmt.Sprintf("order %d not found", orderID),
		OrderID: orderID,
	}
}

func ErrUnknownOperation(operation string) *Error {
	return &Error{
		Code:      CodeUnknownOperation,
		Message:   fmt.Sprintf("operation %q is not recognized", operation),
		Operation: operation,
	}
}

func ErrMissingArgument(field string) *Error {
	return &Error{
		Code:    CodeMissingArgument,
		Message: fmt.Sprintf("required argument %q is missing", field),
		Field:   field,
	}
}

func ErrInvalidArgument(field, reason string) *Error {
	return &Error{
		Code:    CodeInvalidArgument,
		Message: fmt.Sprintf("argument %q is invalid: %s", field, reason),
		Field:   field,
	}
}

func ErrStoreWriteFailure(cause error) *Error {
	return &Error{
		Code:    CodeStoreWriteFailure,
		Message: "order could not be written durably: " + cause.Error(),
		cause:   cause,
	}
}
