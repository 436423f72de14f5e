package constant

import "net/http"

type ErrorType int

const (
	Successful ErrorType = iota
	ErrInternal
	ErrNotFound
	ErrInvalidRequest
	ErrUnauthorize
	ErrForbidden
	ErrOrderNotFound
	ErrIllegalTransition
	ErrInsufficientStock
	ErrPaymentGateway
	ErrInvalidSignature
	ErrUnprocessableEvent
)

var ErrorTypeMessage = map[ErrorType]string{
	Successful:            "success",
	ErrInternal:           "error internal",
	ErrNotFound:           "data not found",
	ErrInvalidRequest:     "invalid request",
	ErrUnauthorize:        "unauthorize request",
	ErrForbidden:          "forbidden",
	ErrOrderNotFound:      "order not found",
	ErrIllegalTransition:  "illegal order status transition",
	ErrInsufficientStock:  "insufficient stock",
	ErrPaymentGateway:     "payment gateway error",
	ErrInvalidSignature:   "invalid webhook signature",
	ErrUnprocessableEvent: "event cannot be reconciled",
}

var ErrorTypeHTTPCode = map[ErrorType]int{
	Successful:            http.StatusOK,
	ErrInternal:           http.StatusInternalServerError,
	ErrNotFound:           http.StatusNotFound,
	ErrInvalidRequest:     http.StatusBadRequest,
	ErrUnauthorize:        http.StatusUnauthorized,
	ErrForbidden:          http.StatusForbidden,
	ErrOrderNotFound:      http.StatusNotFound,
	ErrIllegalTransition:  http.StatusBadRequest,
	ErrInsufficientStock:  http.StatusBadRequest,
	ErrPaymentGateway:     http.StatusInternalServerError,
	ErrInvalidSignature:   http.StatusBadRequest,
	ErrUnprocessableEvent: http.StatusBadRequest,
}

var ErrorTypeCode = map[ErrorType]string{
	Successful:            "0000",
	ErrInternal:           "0001",
	ErrNotFound:           "0002",
	ErrInvalidRequest:     "0003",
	ErrUnauthorize:        "0004",
	ErrForbidden:          "0005",
	ErrOrderNotFound:      "0006",
	ErrIllegalTransition:  "0007",
	ErrInsufficientStock:  "0008",
	ErrPaymentGateway:     "0009",
	ErrInvalidSignature:   "0010",
	ErrUnprocessableEvent: "0011",
}
