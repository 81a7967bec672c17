package model

// OrderUpdateEvent is the event name pushed to clients.
const OrderUpdateEvent = "orderUpdate"

// OrderUpdate is pushed to the owner of an order after its status changes.
type OrderUpdate struct {
	UserID  string      `json:"userId"`
	OrderID string      `json:"orderId"`
	Status  OrderStatus `json:"status"`
}
