package model

import "github.com/shopspring/decimal"

// Receipt is the outcome of a server-confirmed charge.
type Receipt struct {
	ProviderPaymentID string          `json:"paymentIntentId"`
	Amount            decimal.Decimal `json:"amount"`
	Status            string          `json:"status"`
}

// PaymentDetails is what the client needs to continue the payment. Exactly one field is set.
type PaymentDetails struct {
	ClientSecret   string   `json:"clientSecret,omitempty"`
	PaymentReceipt *Receipt `json:"paymentReceipt,omitempty"`
	ApprovalURL    string   `json:"approvalUrl,omitempty"`
}

// Provider names the origin of a webhook.
type Provider string

const (
	ProviderStripe Provider = "stripe"
	ProviderPaypal Provider = "paypal"
)

// PaymentOutcome is the provider-agnostic meaning of a webhook event.
type PaymentOutcome int

const (
	// OutcomeIgnored marks events that do not affect order state.
	OutcomeIgnored PaymentOutcome = iota
	OutcomeSucceeded
	OutcomeFailed
)

// PaymentEvent is a verified, parsed webhook notification.
type PaymentEvent struct {
	Provider Provider
	ID       string
	Type     string
	OrderID  string
	Outcome  PaymentOutcome
}

// Patch maps the outcome onto the status transition it requests.
func (e PaymentEvent) Patch() (StatusPatch, bool) {
	switch e.Outcome {
	case OutcomeSucceeded:
		return Settle(PaymentStatusPaid, OrderStatusProcessing), true
	case OutcomeFailed:
		return Settle(PaymentStatusFailed, OrderStatusCancelled), true
	default:
		return StatusPatch{}, false
	}
}
