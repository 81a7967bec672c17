package dto

import (
	"github.com/shopspring/decimal"

	"github.com/polkiloo/orderpay/internal/domain/model"
)

// OrderItemRequest is a single checkout line.
type OrderItemRequest struct {
	Title    string          `json:"title" validate:"required"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity" validate:"gt=0"`
}

// CreateOrderRequest describes checkout payload.
type CreateOrderRequest struct {
	Items         []OrderItemRequest `json:"items" validate:"required,dive"`
	PaymentMethod string             `json:"paymentMethod" validate:"required"`
	PaymentFlow   string             `json:"paymentFlow" validate:"required"`
}

// Checkout converts the request into the domain input.
func (r CreateOrderRequest) Checkout() model.Checkout {
	items := make([]model.OrderItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, model.OrderItem{Title: item.Title, Price: item.Price, Quantity: item.Quantity})
	}
	return model.Checkout{
		Items:         items,
		PaymentMethod: model.PaymentMethod(r.PaymentMethod),
		PaymentFlow:   model.PaymentFlow(r.PaymentFlow),
	}
}

// CreateOrderResponse is returned after checkout.
type CreateOrderResponse struct {
	Order          *model.Order          `json:"order"`
	PaymentDetails *model.PaymentDetails `json:"paymentDetails"`
}

// UpdateStatusRequest moves an order along the fulfillment axis.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// PageMeta describes a listing window.
type PageMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// OrderListResponse is a page of orders.
type OrderListResponse struct {
	Data []model.Order `json:"data"`
	Meta PageMeta      `json:"meta"`
}
