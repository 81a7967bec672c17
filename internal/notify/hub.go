package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/polkiloo/orderpay/internal/domain/model"
)

// ErrQueueFull is returned by Emit when the dispatch queue has no room left.
var ErrQueueFull = errors.New("notification queue is full")

const subscriberBuffer = 16

// Hub fans order updates out to the subscribers of the affected user.
// Emit never blocks the caller; dispatch happens on a pool of goroutines.
type Hub struct {
	workers int
	logger  *slog.Logger

	queue chan model.OrderUpdate

	subsMu sync.RWMutex
	subs   map[string]map[uint64]chan model.OrderUpdate
	nextID uint64

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewHub constructs a hub with the given dispatcher count and queue capacity.
func NewHub(workers, buffer int, logger *slog.Logger) *Hub {
	if workers <= 0 {
		workers = 1
	}
	if buffer <= 0 {
		buffer = 1
	}
	return &Hub{
		workers: workers,
		logger:  logger,
		queue:   make(chan model.OrderUpdate, buffer),
		subs:    make(map[string]map[uint64]chan model.OrderUpdate),
	}
}

// Start launches the dispatchers.
func (h *Hub) Start(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	h.cancel = cancel

	for i := 0; i < h.workers; i++ {
		h.wg.Add(1)
		go h.dispatch(runCtx)
	}
}

// Stop waits for all dispatchers to finish.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
	h.mu.Unlock()

	h.wg.Wait()
}

// Emit queues an update for delivery.
func (h *Hub) Emit(ctx context.Context, update model.OrderUpdate) error {
	select {
	case h.queue <- update:
		return nil
	default:
		h.logger.Warn("notification dropped",
			slog.String("user", update.UserID),
			slog.String("order", update.OrderID),
		)
		return ErrQueueFull
	}
}

// Subscribe registers interest in the updates of userID. The returned cancel
// function unregisters and closes the channel; it is safe to call twice.
func (h *Hub) Subscribe(userID string) (<-chan model.OrderUpdate, func()) {
	ch := make(chan model.OrderUpdate, subscriberBuffer)

	h.subsMu.Lock()
	h.nextID++
	id := h.nextID
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[uint64]chan model.OrderUpdate)
	}
	h.subs[userID][id] = ch
	h.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.subsMu.Lock()
			delete(h.subs[userID], id)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			h.subsMu.Unlock()
			close(ch)
		})
	}
}

func (h *Hub) dispatch(ctx context.Context) {
	defer h.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case update := <-h.queue:
			h.deliver(update)
		}
	}
}

func (h *Hub) deliver(update model.OrderUpdate) {
	h.subsMu.RLock()
	defer h.subsMu.RUnlock()

	for _, ch := range h.subs[update.UserID] {
		select {
		case ch <- update:
		default:
			h.logger.Warn("slow subscriber skipped",
				slog.String("user", update.UserID),
				slog.String("order", update.OrderID),
			)
		}
	}
}
