package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/orderpay/internal/domain/errors"
	"github.com/polkiloo/orderpay/internal/domain/model"
	"github.com/polkiloo/orderpay/internal/domain/repository"
)

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

type userRepository struct {
	storage *Storage
}

type orderRepository struct {
	storage *Storage
}

type webhookEventRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Users() repository.UserRepository {
	return &userRepository{storage: s}
}

func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) WebhookEvents() repository.WebhookEventRepository {
	return &webhookEventRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id TEXT PRIMARY KEY,
            email TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL DEFAULT 'user',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL,
            items JSONB NOT NULL,
            total_amount NUMERIC(12,2) NOT NULL,
            payment_method TEXT NOT NULL,
            payment_status TEXT NOT NULL,
            order_status TEXT NOT NULL,
            version BIGINT NOT NULL DEFAULT 1,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS webhook_events (
            provider TEXT NOT NULL,
            event_id TEXT NOT NULL,
            event_type TEXT NOT NULL,
            processed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            PRIMARY KEY (provider, event_id)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id, created_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	s.logger.Debug("database schema ready", slog.Int("statements", len(statements)))
	return nil
}

// --- UserRepository implementation ---

func (r *userRepository) Create(ctx context.Context, email, passwordHash string, role model.Role) (*model.User, error) {
	const query = `INSERT INTO users (id, email, password_hash, role) VALUES ($1, $2, $3, $4) RETURNING created_at`
	u := model.User{ID: uuid.NewString(), Email: email, PasswordHash: passwordHash, Role: role}
	err := r.storage.pool.QueryRow(ctx, query, u.ID, email, passwordHash, string(role)).Scan(&u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const query = `SELECT id, email, password_hash, role, created_at FROM users WHERE email=$1`
	return r.scanUser(r.storage.pool.QueryRow(ctx, query, email))
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	const query = `SELECT id, email, password_hash, role, created_at FROM users WHERE id=$1`
	return r.scanUser(r.storage.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) scanUser(row pgx.Row) (*model.User, error) {
	var (
		u    model.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	u.Role = model.Role(role)
	return &u, nil
}

// --- OrderRepository implementation ---

const orderColumns = `id, user_id, items, total_amount::text, payment_method, payment_status, order_status, version, created_at, updated_at`

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	const query = `INSERT INTO orders (id, user_id, items, total_amount, payment_method, payment_status, order_status)
                   VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)
                   RETURNING version, created_at, updated_at`
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	err = r.storage.pool.QueryRow(ctx, query,
		order.ID,
		order.UserID,
		items,
		order.TotalAmount.StringFixed(2),
		string(order.PaymentMethod),
		string(order.PaymentStatus),
		string(order.OrderStatus),
	).Scan(&order.Version, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domainErrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID string, skip, take int) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + `
              FROM orders WHERE user_id=$1 ORDER BY created_at DESC OFFSET $2 LIMIT $3`
	var limit any
	if take > 0 {
		limit = take
	}
	if skip < 0 {
		skip = 0
	}
	rows, err := r.storage.pool.Query(ctx, query, userID, skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]model.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	const query = `SELECT COUNT(*) FROM orders WHERE user_id=$1`
	var total int64
	if err := r.storage.pool.QueryRow(ctx, query, userID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, expectedVersion int64, patch model.StatusPatch) (*model.Order, error) {
	updateQuery := `UPDATE orders
                    SET payment_status = COALESCE($3, payment_status),
                        order_status = COALESCE($4, order_status),
                        version = version + 1,
                        updated_at = NOW()
                    WHERE id = $1 AND version = $2
                    RETURNING ` + orderColumns

	var updated *model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		order, err := scanOrder(tx.QueryRow(ctx, updateQuery, id, expectedVersion, nullablePayment(patch.PaymentStatus), nullableOrder(patch.OrderStatus)))
		if err == nil {
			updated = order
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		var current int64
		if err := tx.QueryRow(ctx, `SELECT version FROM orders WHERE id=$1`, id).Scan(&current); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domainErrors.ErrNotFound
			}
			return err
		}
		return domainErrors.ErrVersionConflict
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o                                   model.Order
		items                               []byte
		total, method, payStatus, ordStatus string
	)
	if err := row.Scan(&o.ID, &o.UserID, &items, &total, &method, &payStatus, &ordStatus, &o.Version, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	amount, err := decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("decode total: %w", err)
	}
	o.TotalAmount = amount
	o.PaymentMethod = model.PaymentMethod(method)
	o.PaymentStatus = model.PaymentStatus(payStatus)
	o.OrderStatus = model.OrderStatus(ordStatus)
	return &o, nil
}

func nullablePayment(s *model.PaymentStatus) any {
	if s == nil {
		return nil
	}
	return string(*s)
}

func nullableOrder(s *model.OrderStatus) any {
	if s == nil {
		return nil
	}
	return string(*s)
}

// --- WebhookEventRepository implementation ---

func (r *webhookEventRepository) Processed(ctx context.Context, provider model.Provider, eventID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM webhook_events WHERE provider=$1 AND event_id=$2)`
	var exists bool
	if err := r.storage.pool.QueryRow(ctx, query, string(provider), eventID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *webhookEventRepository) MarkProcessed(ctx context.Context, provider model.Provider, eventID, eventType string) (bool, error) {
	const query = `INSERT INTO webhook_events (provider, event_id, event_type) VALUES ($1, $2, $3)
                   ON CONFLICT (provider, event_id) DO NOTHING`
	tag, err := r.storage.pool.Exec(ctx, query, string(provider), eventID, eventType)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}
