package repository

import (
	"context"

	"github.com/polkiloo/orderpay/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	ListByUser(ctx context.Context, userID string, skip, take int) ([]model.Order, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	// UpdateStatus writes the patch only if the stored version still equals expectedVersion.
	UpdateStatus(ctx context.Context, id string, expectedVersion int64, patch model.StatusPatch) (*model.Order, error)
}
