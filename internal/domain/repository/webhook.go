package repository

import (
	"context"

	"github.com/polkiloo/orderpay/internal/domain/model"
)

// WebhookEventRepository remembers provider events that were already handled.
type WebhookEventRepository interface {
	Processed(ctx context.Context, provider model.Provider, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, provider model.Provider, eventID, eventType string) (bool, error)
}
