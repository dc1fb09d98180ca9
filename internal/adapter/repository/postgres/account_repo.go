package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/devsu/transaction-service/internal/domain"
	"github.com/devsu/transaction-service/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	db querier
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return newAccountRepository(pool)
}

func newAccountRepository(db querier) *AccountRepository {
	return &AccountRepository{db: db}
}

// FindByAccountNumber loads an account with its full ledger.
func (r *AccountRepository) FindByAccountNumber(ctx context.Context, number string) (*domain.Account, error) {
	return findByNumber(ctx, r.db, number)
}

// Save inserts a new account or updates an existing one under its version,
// appends pending movements and returns the reloaded aggregate.
func (r *AccountRepository) Save(ctx context.Context, tx usecase.Transaction, account *domain.Account) (*domain.Account, error) {
	pgxTx, err := pgxTxFrom(tx)
	if err != nil {
		return nil, err
	}

	accountID := account.ID()
	now := time.Now().UTC()

	if !account.IsPersisted() {
		err := pgxTx.QueryRow(ctx, insertAccountSQL,
			account.Number(),
			account.Type().Code(),
			account.InitialBalance().Decimal(),
			account.Balance().Decimal(),
			account.IsActive(),
			account.ClientID(),
			account.CreatedAt(),
		).Scan(&accountID)
		if err != nil {
			if isUniqueViolation(err, accountNumberUniqueConstraint) {
				return nil, fmt.Errorf("%w: %s", domain.ErrAccountNumberConflict, account.Number())
			}
			return nil, fmt.Errorf("insert account: %w", err)
		}
	} else {
		tag, err := pgxTx.Exec(ctx, updateAccountSQL,
			accountID,
			account.Version(),
			account.Balance().Decimal(),
			account.IsActive(),
			now,
		)
		if err != nil {
			return nil, fmt.Errorf("update account: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil, fmt.Errorf("%w: account %s version %d", domain.ErrConcurrentModification, account.Number(), account.Version())
		}
	}

	for _, m := range account.PendingMovements() {
		_, err := pgxTx.Exec(ctx, insertMovementSQL,
			accountID,
			m.Identifier(),
			string(m.Type()),
			m.Amount().Decimal(),
			m.BalanceAfter().Decimal(),
			m.CreatedAt(),
		)
		if err != nil {
			return nil, fmt.Errorf("insert movement %s: %w", m.Identifier(), err)
		}
	}

	return findByNumber(ctx, pgxTx, account.Number())
}

// FindMovementsByAccountAndDateRange returns movements with from <= created_at < to.
func (r *AccountRepository) FindMovementsByAccountAndDateRange(ctx context.Context, accountID int64, from, to time.Time) ([]*domain.Movement, error) {
	rows, err := r.db.Query(ctx, selectMovementsByRangeSQL, accountID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMovements(rows)
}

// FindMovementByAccountAndIdentifier loads a single movement by its external identifier.
func (r *AccountRepository) FindMovementByAccountAndIdentifier(ctx context.Context, accountID int64, identifier string) (*domain.Movement, error) {
	m, err := scanMovement(r.db.QueryRow(ctx, selectMovementByIdentifierSQL, accountID, identifier))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMovementNotFound
		}
		return nil, err
	}
	return m, nil
}

// FindByClientIDWithMovementsBetween loads every account of a client, each
// carrying only the movements inside [from, to).
func (r *AccountRepository) FindByClientIDWithMovementsBetween(ctx context.Context, clientID string, from, to time.Time) ([]*domain.Account, error) {
	rows, err := r.db.Query(ctx, selectAccountsByClientSQL, clientID)
	if err != nil {
		return nil, err
	}
	states, err := collectAccountStates(rows)
	if err != nil {
		return nil, err
	}
	if len(states) == 0 {
		return []*domain.Account{}, nil
	}

	ids := make([]int64, len(states))
	for i, s := range states {
		ids[i] = s.ID
	}

	mrows, err := r.db.Query(ctx, selectMovementsByAccountsAndRangeSQL, ids, from, to)
	if err != nil {
		return nil, err
	}
	defer mrows.Close()

	byAccount := make(map[int64][]*domain.Movement, len(states))
	for mrows.Next() {
		var accountID int64
		m, err := scanMovementWith(mrows, &accountID)
		if err != nil {
			return nil, err
		}
		byAccount[accountID] = append(byAccount[accountID], m)
	}
	if err := mrows.Err(); err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0, len(states))
	for _, s := range states {
		s.Movements = byAccount[s.ID]
		acc, err := domain.RehydrateAccount(s)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}

	return accounts, nil
}

func findByNumber(ctx context.Context, db querier, number string) (*domain.Account, error) {
	state, err := scanAccountState(db.QueryRow(ctx, selectAccountByNumberSQL, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}

	rows, err := db.Query(ctx, selectMovementsByAccountSQL, state.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	state.Movements, err = collectMovements(rows)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateAccount(state)
}

func collectAccountStates(rows pgx.Rows) ([]domain.AccountState, error) {
	defer rows.Close()

	var states []domain.AccountState
	for rows.Next() {
		s, err := scanAccountState(rows)
		if err != nil {
			return nil, err
		}
		states = append(states, s)
	}
	return states, rows.Err()
}

func scanAccountState(row pgx.Row) (domain.AccountState, error) {
	var (
		s               domain.AccountState
		typeCode        string
		initial, amount string
	)

	if err := row.Scan(&s.ID, &s.Number, &typeCode, &initial, &amount, &s.Active, &s.ClientID, &s.CreatedAt, &s.Version); err != nil {
		return domain.AccountState{}, err
	}

	var err error
	if s.Type, err = domain.AccountTypeFromCode(typeCode); err != nil {
		return domain.AccountState{}, err
	}
	if s.InitialBalance, err = parseMoney(initial); err != nil {
		return domain.AccountState{}, err
	}
	if s.Balance, err = parseMoney(amount); err != nil {
		return domain.AccountState{}, err
	}

	return s, nil
}

func collectMovements(rows pgx.Rows) ([]*domain.Movement, error) {
	var movements []*domain.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

func scanMovement(row pgx.Row) (*domain.Movement, error) {
	return scanMovementWith(row)
}

// scanMovementWith scans leading columns into prefix before the movement columns.
func scanMovementWith(row pgx.Row, prefix ...any) (*domain.Movement, error) {
	var (
		s                    domain.MovementState
		movementType         string
		amount, balanceAfter string
	)

	dest := append(prefix, &s.ID, &s.Identifier, &movementType, &amount, &balanceAfter, &s.CreatedAt)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	s.Type = domain.MovementType(movementType)
	if !s.Type.Valid() {
		return nil, fmt.Errorf("unknown movement type %q", movementType)
	}

	var err error
	if s.Amount, err = parseMoney(amount); err != nil {
		return nil, err
	}
	if s.BalanceAfter, err = parseMoney(balanceAfter); err != nil {
		return nil, err
	}

	return domain.RehydrateMovement(s)
}

func parseMoney(s string) (domain.Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return domain.Money{}, fmt.Errorf("parse numeric %q: %w", s, err)
	}
	return domain.NewMoney(d), nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgErrUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
