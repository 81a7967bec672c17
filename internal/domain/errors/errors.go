package errors

import (
	"errors"
	"net/http"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrVersionConflict    = errors.New("version conflict")
)

// KindError is a domain failure that knows which HTTP status the boundary should surface.
type KindError struct {
	msg    string
	status int
}

func newKind(msg string, status int) *KindError {
	return &KindError{msg: msg, status: status}
}

func (e *KindError) Error() string { return e.msg }

// StatusCode returns the HTTP status associated with the kind.
func (e *KindError) StatusCode() int { return e.status }

var (
	ErrInvalidOrder                = newKind("order must contain at least one valid item", http.StatusBadRequest)
	ErrUnsupportedPaymentMethod    = newKind("unsupported payment method", http.StatusBadRequest)
	ErrOrderNotFound               = newKind("order not found", http.StatusNotFound)
	ErrPaymentInitializationFailed = newKind("payment initialization failed", http.StatusInternalServerError)
	ErrPaymentConfirmationFailed   = newKind("payment confirmation failed", http.StatusInternalServerError)
	ErrWebhookVerificationFailed   = newKind("webhook verification failed", http.StatusBadRequest)
	ErrApprovalURLUnavailable      = newKind("unable to fetch approval url", http.StatusInternalServerError)
	ErrIllegalTransition           = newKind("illegal status transition", http.StatusConflict)
	ErrProviderUnavailable         = newKind("payment provider unavailable", http.StatusServiceUnavailable)
	ErrInvalidStatus               = newKind("unknown order status", http.StatusBadRequest)
	ErrMalformedWebhook            = newKind("malformed webhook payload", http.StatusBadRequest)
)

// StatusCode resolves the HTTP status carried by err, falling back to 500.
func StatusCode(err error) int {
	var coded interface{ StatusCode() int }
	if errors.As(err, &coded) {
		return coded.StatusCode()
	}
	return http.StatusInternalServerError
}
