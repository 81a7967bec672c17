package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod identifies the payment provider chosen at checkout.
type PaymentMethod string

const (
	PaymentMethodStripe PaymentMethod = "stripe"
	PaymentMethodPaypal PaymentMethod = "paypal"
)

// Valid reports whether the method belongs to the supported set.
func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodStripe || m == PaymentMethodPaypal
}

// PaymentFlow tells who completes the payment: the client with a provider secret or the server itself.
type PaymentFlow string

const (
	PaymentFlowFrontend PaymentFlow = "frontend"
	PaymentFlowBackend  PaymentFlow = "backend"
)

// Valid reports whether the flow belongs to the supported set.
func (f PaymentFlow) Valid() bool {
	return f == PaymentFlowFrontend || f == PaymentFlowBackend
}

// PaymentStatus describes the payment axis of an order.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// OrderStatus describes the fulfillment axis of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether the status is a known fulfillment state.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderItem is a purchased line. Items never change after the order is created.
type OrderItem struct {
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// Valid reports whether the line has a title, a positive whole-cent price and a positive quantity.
func (i OrderItem) Valid() bool {
	return i.Title != "" && i.Price.IsPositive() && i.Price.Equal(i.Price.Round(2)) && i.Quantity > 0
}

// Subtotal returns price multiplied by quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order describes a purchase with two independent status axes.
type Order struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	Items         []OrderItem     `json:"items"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	PaymentStatus PaymentStatus   `json:"paymentStatus"`
	OrderStatus   OrderStatus     `json:"orderStatus"`
	Version       int64           `json:"-"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Checkout is a request to create an order and start its payment.
type Checkout struct {
	Items         []OrderItem
	PaymentMethod PaymentMethod
	PaymentFlow   PaymentFlow
}

// CalculateTotal sums price*quantity over items.
func CalculateTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// StatusPatch carries the target state of a status update. Nil fields are left untouched.
type StatusPatch struct {
	PaymentStatus *PaymentStatus
	OrderStatus   *OrderStatus
}

// Settle builds a patch that moves both axes at once.
func Settle(payment PaymentStatus, order OrderStatus) StatusPatch {
	return StatusPatch{PaymentStatus: &payment, OrderStatus: &order}
}

// Fulfil builds a patch that only moves the fulfillment axis.
func Fulfil(order OrderStatus) StatusPatch {
	return StatusPatch{OrderStatus: &order}
}

// Differs reports whether applying the patch would change the order.
func (p StatusPatch) Differs(o *Order) bool {
	if p.PaymentStatus != nil && *p.PaymentStatus != o.PaymentStatus {
		return true
	}
	if p.OrderStatus != nil && *p.OrderStatus != o.OrderStatus {
		return true
	}
	return false
}

// Page is a window of a user's orders plus the overall count.
type Page struct {
	Orders []Order `json:"orders"`
	Total  int64   `json:"total"`
}
