package test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/orderpay/internal/domain/errors"
	"github.com/polkiloo/orderpay/internal/domain/model"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	Users map[string]*model.User
	ByID  map[string]*model.User
	Err   error
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{
		Users: make(map[string]*model.User),
		ByID:  make(map[string]*model.User),
	}
}

// Create registers user unless already exists or stub has explicit error.
func (s *UserRepositoryStub) Create(ctx context.Context, email, passwordHash string, role model.Role) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Users == nil {
		s.Users = make(map[string]*model.User)
	}
	if s.ByID == nil {
		s.ByID = make(map[string]*model.User)
	}
	if _, exists := s.Users[email]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	user := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now(),
	}
	s.Users[email] = user
	s.ByID[user.ID] = user
	return user, nil
}

// GetByEmail fetches user by email or returns not found.
func (s *UserRepositoryStub) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.Users[email]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByID[id]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// OrderStore is an in-memory order repository with versioned conditional writes.
type OrderStore struct {
	CreateErr error
	GetErr    error
	ListErr   error
	UpdateErr error

	// BeforeUpdate runs before each conditional write without holding the store lock.
	BeforeUpdate func(id string, expectedVersion int64)

	mu        sync.Mutex
	orders    map[string]*model.Order
	seq       int
	writes    int
	conflicts int
	lists     int
}

// NewOrderStore constructs an empty store.
func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[string]*model.Order)}
}

func cloneOrder(o *model.Order) *model.Order {
	c := *o
	c.Items = append([]model.OrderItem(nil), o.Items...)
	return &c
}

// Create stores the order, assigning id, version and timestamps.
func (s *OrderStore) Create(ctx context.Context, order *model.Order) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.orders == nil {
		s.orders = make(map[string]*model.Order)
	}
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	s.seq++
	now := time.Unix(1_700_000_000, 0).Add(time.Duration(s.seq) * time.Millisecond)
	order.CreatedAt = now
	order.UpdatedAt = now
	order.Version = 1
	s.orders[order.ID] = cloneOrder(order)
	return nil
}

// Put seeds an order as is.
func (s *OrderStore) Put(order model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.orders == nil {
		s.orders = make(map[string]*model.Order)
	}
	if order.Version == 0 {
		order.Version = 1
	}
	s.orders[order.ID] = cloneOrder(&order)
}

// GetByID returns a copy of the stored order.
func (s *OrderStore) GetByID(ctx context.Context, id string) (*model.Order, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return cloneOrder(o), nil
}

// ListByUser returns the user's orders newest first.
func (s *OrderStore) ListByUser(ctx context.Context, userID string, skip, take int) ([]model.Order, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists++
	var out []model.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, *cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if skip >= len(out) {
		return []model.Order{}, nil
	}
	out = out[skip:]
	if take > 0 && take < len(out) {
		out = out[:take]
	}
	return out, nil
}

// CountByUser counts the user's orders.
func (s *OrderStore) CountByUser(ctx context.Context, userID string) (int64, error) {
	if s.ListErr != nil {
		return 0, s.ListErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, o := range s.orders {
		if o.UserID == userID {
			n++
		}
	}
	return n, nil
}

// UpdateStatus applies the patch only when the version still matches.
func (s *OrderStore) UpdateStatus(ctx context.Context, id string, expectedVersion int64, patch model.StatusPatch) (*model.Order, error) {
	if s.BeforeUpdate != nil {
		s.BeforeUpdate(id, expectedVersion)
	}
	if s.UpdateErr != nil {
		return nil, s.UpdateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if o.Version != expectedVersion {
		s.conflicts++
		return nil, domainErrors.ErrVersionConflict
	}
	next := patch.Apply(*o)
	next.Version++
	next.UpdatedAt = o.UpdatedAt.Add(time.Millisecond)
	s.orders[id] = cloneOrder(&next)
	s.writes++
	return cloneOrder(&next), nil
}

// Order returns the stored order or nil.
func (s *OrderStore) Order(id string) *model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.orders[id]; ok {
		return cloneOrder(o)
	}
	return nil
}

// Len returns the number of stored orders.
func (s *OrderStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// Writes returns the number of successful status writes.
func (s *OrderStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Conflicts returns the number of rejected stale writes.
func (s *OrderStore) Conflicts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conflicts
}

// Lists returns how many times the store was queried for a listing.
func (s *OrderStore) Lists() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lists
}

// WebhookLedgerStub remembers processed provider events.
type WebhookLedgerStub struct {
	ProcessedErr error
	MarkErr      error

	mu     sync.Mutex
	events map[string]string
}

// NewWebhookLedgerStub constructs an empty ledger.
func NewWebhookLedgerStub() *WebhookLedgerStub {
	return &WebhookLedgerStub{events: make(map[string]string)}
}

func ledgerKey(provider model.Provider, eventID string) string {
	return string(provider) + ":" + eventID
}

// Processed reports whether the event was already recorded.
func (s *WebhookLedgerStub) Processed(ctx context.Context, provider model.Provider, eventID string) (bool, error) {
	if s.ProcessedErr != nil {
		return false, s.ProcessedErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.events[ledgerKey(provider, eventID)]
	return ok, nil
}

// MarkProcessed records the event and reports whether it was new.
func (s *WebhookLedgerStub) MarkProcessed(ctx context.Context, provider model.Provider, eventID, eventType string) (bool, error) {
	if s.MarkErr != nil {
		return false, s.MarkErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.events == nil {
		s.events = make(map[string]string)
	}
	key := ledgerKey(provider, eventID)
	if _, ok := s.events[key]; ok {
		return false, nil
	}
	s.events[key] = eventType
	return true, nil
}

// Len returns the number of recorded events.
func (s *WebhookLedgerStub) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// CacheStub is an in-memory cache with call counters.
type CacheStub struct {
	GetErr    error
	SetErr    error
	DeleteErr error

	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]time.Duration
	hits    int
	sets    int
	deletes int
}

// NewCacheStub constructs an empty cache.
func NewCacheStub() *CacheStub {
	return &CacheStub{entries: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

// Get returns the stored value.
func (s *CacheStub) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.GetErr != nil {
		return nil, false, s.GetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entries[key]
	if ok {
		s.hits++
	}
	return v, ok, nil
}

// Set stores the value.
func (s *CacheStub) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.SetErr != nil {
		return s.SetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entries == nil {
		s.entries = make(map[string][]byte)
		s.ttls = make(map[string]time.Duration)
	}
	s.entries[key] = append([]byte(nil), value...)
	s.ttls[key] = ttl
	s.sets++
	return nil
}

// Delete removes the value.
func (s *CacheStub) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	s.deletes++
	s.mu.Unlock()
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Has reports whether key is present.
func (s *CacheStub) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[key]
	return ok
}

// TTL returns the lifetime the key was stored with.
func (s *CacheStub) TTL(key string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ttls[key]
}

// Hits returns the number of cache hits.
func (s *CacheStub) Hits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits
}

// Sets returns the number of writes.
func (s *CacheStub) Sets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets
}

// Deletes returns the number of delete calls, failed ones included.
func (s *CacheStub) Deletes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deletes
}
