package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/devsu/transaction-service/internal/domain"
)

// AccountRepository defines data access for the Account aggregate and its ledger.
type AccountRepository interface {
	FindByAccountNumber(ctx context.Context, number string) (*domain.Account, error)
	// Save inserts or updates the account, persists its pending movements and
	// returns the reloaded aggregate.
	Save(ctx context.Context, tx Transaction, account *domain.Account) (*domain.Account, error)
	FindMovementsByAccountAndDateRange(ctx context.Context, accountID int64, from, to time.Time) ([]*domain.Movement, error)
	FindMovementByAccountAndIdentifier(ctx context.Context, accountID int64, identifier string) (*domain.Movement, error)
	FindByClientIDWithMovementsBetween(ctx context.Context, clientID string, from, to time.Time) ([]*domain.Account, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// ClientDirectory looks up clients owned by the user service.
type ClientDirectory interface {
	GetClient(ctx context.Context, clientID string) (*domain.ClientInfo, error)
}

// AccountNumberGenerator issues new account numbers.
type AccountNumberGenerator interface {
	Generate() (string, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// ErrCacheMiss is returned by Cache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyProcessingMarker is the stored value of a claimed key whose
// request has not completed yet.
const IdempotencyProcessingMarker = "processing"

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request did not complete successfully.
	Release(ctx context.Context, key string) error
}

// EventPublisher delivers outbox events to a message broker.
type EventPublisher interface {
	Publish(ctx context.Context, event *domain.OutboxEvent) error
}
