package model

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending: {PaymentStatusPaid, PaymentStatusFailed},
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// CanMovePayment reports whether the payment axis may go from one state to another.
// Staying in place is always allowed.
func CanMovePayment(from, to PaymentStatus) bool {
	if from == to {
		return true
	}
	for _, next := range paymentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanMoveOrder reports whether the fulfillment axis may go from one state to another.
// Staying in place is always allowed.
func CanMoveOrder(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Allows reports whether every axis targeted by the patch is a legal move from the order's current state.
func (p StatusPatch) Allows(o *Order) bool {
	if p.PaymentStatus != nil && !CanMovePayment(o.PaymentStatus, *p.PaymentStatus) {
		return false
	}
	if p.OrderStatus != nil && !CanMoveOrder(o.OrderStatus, *p.OrderStatus) {
		return false
	}
	return true
}

// Apply returns a copy of the order with the patch applied.
func (p StatusPatch) Apply(o Order) Order {
	if p.PaymentStatus != nil {
		o.PaymentStatus = *p.PaymentStatus
	}
	if p.OrderStatus != nil {
		o.OrderStatus = *p.OrderStatus
	}
	return o
}
