package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is the subset of pgxpool.Pool and pgx.Tx used by the repositories.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	pgErrUniqueViolation          = "23505"
	accountNumberUniqueConstraint = "accounts_account_number_key"
)

const accountColumns = `id, account_number, account_type, initial_balance::text, balance::text, active, client_id, created_at, version`

const movementColumns = `id, identifier, movement_type, amount::text, balance_after::text, created_at`

const (
	selectAccountByNumberSQL = `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1`

	selectAccountsByClientSQL = `SELECT ` + accountColumns + ` FROM accounts WHERE client_id = $1 ORDER BY id`

	insertAccountSQL = `INSERT INTO accounts
	(account_number, account_type, initial_balance, balance, active, client_id, created_at, updated_at, version)
VALUES ($1, $2, $3, $4, $5, $6, $7, $7, 1)
RETURNING id`

	updateAccountSQL = `UPDATE accounts
SET balance = $3, active = $4, updated_at = $5, version = version + 1
WHERE id = $1 AND version = $2`

	insertMovementSQL = `INSERT INTO movements
	(account_id, identifier, movement_type, amount, balance_after, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	selectMovementsByAccountSQL = `SELECT ` + movementColumns + ` FROM movements
WHERE account_id = $1 ORDER BY created_at, id`

	selectMovementsByRangeSQL = `SELECT ` + movementColumns + ` FROM movements
WHERE account_id = $1 AND created_at >= $2 AND created_at < $3
ORDER BY created_at, id`

	selectMovementByIdentifierSQL = `SELECT ` + movementColumns + ` FROM movements
WHERE account_id = $1 AND identifier = $2`

	selectMovementsByAccountsAndRangeSQL = `SELECT account_id, ` + movementColumns + ` FROM movements
WHERE account_id = ANY($1) AND created_at >= $2 AND created_at < $3
ORDER BY account_id, created_at, id`
)

const (
	insertOutboxEventSQL = `INSERT INTO outbox_events
	(id, aggregate_id, aggregate_type, event_type, payload, created_at, published)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	selectUnpublishedEventsSQL = `SELECT id, aggregate_id, aggregate_type, event_type, payload, created_at, published_at, published
FROM outbox_events WHERE published = false ORDER BY created_at LIMIT $1`

	markEventPublishedSQL = `UPDATE outbox_events SET published = true, published_at = $2 WHERE id = $1`

	deletePublishedEventsSQL = `DELETE FROM outbox_events WHERE published = true AND published_at < $1`
)
