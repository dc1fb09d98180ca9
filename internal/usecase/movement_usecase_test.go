package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/devsu/transaction-service/internal/domain"
	"github.com/devsu/transaction-service/internal/usecase"
)

func TestMovementUseCase_RegisterMovement(t *testing.T) {
	tests := []struct {
		name         string
		balance      string
		amount       string
		expectType   domain.MovementType
		expectAmount string
		expectAfter  string
	}{
		{name: "deposit", balance: "100", amount: "50", expectType: domain.MovementTypeDeposit, expectAmount: "50.00", expectAfter: "150.00"},
		{name: "withdrawal", balance: "100", amount: "-40", expectType: domain.MovementTypeWithdrawal, expectAmount: "40.00", expectAfter: "60.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.accounts.EXPECT().FindByAccountNumber(gomock.Any(), "478758712345").Return(storedAccount(t, 1, tt.balance, true), nil)
			f.expectCommittedTx()

			var saved *domain.Account
			f.accounts.EXPECT().Save(gomock.Any(), f.tx, gomock.Any()).DoAndReturn(
				func(_ context.Context, _ usecase.Transaction, a *domain.Account) (*domain.Account, error) {
					if len(a.PendingMovements()) != 1 {
						t.Errorf("expected one pending movement, got %d", len(a.PendingMovements()))
					}
					saved = a
					return a, nil
				},
			)
			f.outbox.EXPECT().Create(gomock.Any(), f.tx, gomock.Any()).DoAndReturn(
				func(_ context.Context, _ usecase.Transaction, e *domain.OutboxEvent) error {
					if e.EventType != domain.EventTypeMovementRegistered || e.Payload["movement_type"] != string(tt.expectType) {
						t.Errorf("unexpected event %+v", e)
					}
					return nil
				},
			)
			f.accounts.EXPECT().FindMovementByAccountAndIdentifier(gomock.Any(), int64(1), gomock.Any()).DoAndReturn(
				func(_ context.Context, _ int64, identifier string) (*domain.Movement, error) {
					m, ok := saved.FindMovement(identifier)
					if !ok {
						return nil, domain.ErrMovementNotFound
					}
					return storedMovement(t, 99, identifier, m.Type(), m.Amount().String(), m.BalanceAfter().String()), nil
				},
			)

			result, err := f.movementUseCase().RegisterMovement(context.Background(), usecase.RegisterMovementInput{
				AccountNumber: "478758712345",
				Amount:        decimal.RequireFromString(tt.amount),
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			m := result.Movement
			if m.ID() != 99 || m.Type() != tt.expectType {
				t.Errorf("unexpected movement %d %s", m.ID(), m.Type())
			}
			if m.Amount().String() != tt.expectAmount || m.BalanceAfter().String() != tt.expectAfter {
				t.Errorf("amount %s after %s", m.Amount(), m.BalanceAfter())
			}
			if result.Account.Balance().String() != tt.expectAfter {
				t.Errorf("account balance %s", result.Account.Balance())
			}
			if got := testutil.ToFloat64(f.metrics.MovementsRegistered.WithLabelValues(string(tt.expectType))); got != 1 {
				t.Errorf("movements metric = %v", got)
			}
		})
	}
}

func TestMovementUseCase_RegisterMovement_DomainErrors(t *testing.T) {
	tests := []struct {
		name        string
		account     func(t *testing.T) *domain.Account
		findErr     error
		amount      string
		expectError error
		reason      string
	}{
		{
			name:        "insufficient funds",
			account:     func(t *testing.T) *domain.Account { return storedAccount(t, 1, "30", true) },
			amount:      "-50",
			expectError: domain.ErrInsufficientFunds,
			reason:      "insufficient_funds",
		},
		{
			name:        "inactive account",
			account:     func(t *testing.T) *domain.Account { return storedAccount(t, 1, "30", false) },
			amount:      "5",
			expectError: domain.ErrInactiveAccount,
			reason:      "inactive_account",
		},
		{
			name:        "zero amount",
			account:     func(t *testing.T) *domain.Account { return storedAccount(t, 1, "30", true) },
			amount:      "0",
			expectError: domain.ErrInvalidAmount,
			reason:      "invalid_amount",
		},
		{
			name:        "unknown account",
			findErr:     domain.ErrAccountNotFound,
			amount:      "5",
			expectError: domain.ErrAccountNotFound,
			reason:      "account_not_found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.findErr != nil {
				f.accounts.EXPECT().FindByAccountNumber(gomock.Any(), "478758712345").Return(nil, tt.findErr)
			} else {
				f.accounts.EXPECT().FindByAccountNumber(gomock.Any(), "478758712345").Return(tt.account(t), nil)
			}
			// nothing is written on rejection

			_, err := f.movementUseCase().RegisterMovement(context.Background(), usecase.RegisterMovementInput{
				AccountNumber: "478758712345",
				Amount:        decimal.RequireFromString(tt.amount),
			})
			if !errors.Is(err, tt.expectError) {
				t.Fatalf("expected %v, got %v", tt.expectError, err)
			}
			if got := testutil.ToFloat64(f.metrics.MovementErrors.WithLabelValues(tt.reason)); got != 1 {
				t.Errorf("error metric %s = %v", tt.reason, got)
			}
		})
	}
}

func TestMovementUseCase_RegisterMovement_SaveFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.accounts.EXPECT().FindByAccountNumber(gomock.Any(), "478758712345").Return(storedAccount(t, 1, "10", true), nil)
	f.expectRolledBackTx()
	f.accounts.EXPECT().Save(gomock.Any(), f.tx, gomock.Any()).Return(nil, domain.ErrConcurrentModification)

	_, err := f.movementUseCase().RegisterMovement(context.Background(), usecase.RegisterMovementInput{
		AccountNumber: "478758712345",
		Amount:        decimal.NewFromInt(1),
	})
	if !errors.Is(err, domain.ErrConcurrentModification) {
		t.Fatalf("expected ErrConcurrentModification, got %v", err)
	}
}

// retryOnConflict runs op again after a concurrent modification, like the storage retrier.
type retryOnConflict struct {
	attempts int
}

func (r *retryOnConflict) Retry(_ context.Context, op func() error) error {
	var err error
	for i := 0; i < 3; i++ {
		r.attempts++
		if err = op(); !errors.Is(err, domain.ErrConcurrentModification) {
			return err
		}
	}
	return err
}

func TestMovementUseCase_RegisterMovement_RetriesAgainstFreshBalance(t *testing.T) {
	f := newFixture(t)
	retrier := &retryOnConflict{}
	uc := usecase.NewMovementUseCase(f.txManager, f.accounts, f.outbox, retrier, f.idGen, f.metrics, zerolog.Nop())

	// A concurrent deposit moves the balance from 100 to 130 between attempts.
	gomock.InOrder(
		f.accounts.EXPECT().FindByAccountNumber(gomock.Any(), "478758712345").Return(storedAccount(t, 1, "100", true), nil),
		f.accounts.EXPECT().FindByAccountNumber(gomock.Any(), "478758712345").Return(storedAccount(t, 1, "130", true), nil),
	)
	f.txManager.EXPECT().Begin(gomock.Any()).Return(f.tx, nil).Times(2)
	f.tx.EXPECT().Rollback(gomock.Any()).Return(nil).Times(2)
	f.tx.EXPECT().Commit(gomock.Any()).Return(nil)

	var identifiers []string
	var saved *domain.Account
	gomock.InOrder(
		f.accounts.EXPECT().Save(gomock.Any(), f.tx, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ usecase.Transaction, a *domain.Account) (*domain.Account, error) {
				identifiers = append(identifiers, a.PendingMovements()[0].Identifier())
				return nil, domain.ErrConcurrentModification
			},
		),
		f.accounts.EXPECT().Save(gomock.Any(), f.tx, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ usecase.Transaction, a *domain.Account) (*domain.Account, error) {
				identifiers = append(identifiers, a.PendingMovements()[0].Identifier())
				saved = a
				return a, nil
			},
		),
	)
	f.outbox.EXPECT().Create(gomock.Any(), f.tx, gomock.Any()).Return(nil)
	f.accounts.EXPECT().FindMovementByAccountAndIdentifier(gomock.Any(), int64(1), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ int64, identifier string) (*domain.Movement, error) {
			m, ok := saved.FindMovement(identifier)
			if !ok {
				return nil, domain.ErrMovementNotFound
			}
			return storedMovement(t, 7, identifier, m.Type(), m.Amount().String(), m.BalanceAfter().String()), nil
		},
	)

	result, err := uc.RegisterMovement(context.Background(), usecase.RegisterMovementInput{
		AccountNumber: "478758712345",
		Amount:        decimal.NewFromInt(-50),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if retrier.attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", retrier.attempts)
	}
	if len(identifiers) != 2 || identifiers[0] == identifiers[1] {
		t.Fatalf("expected a fresh identifier per attempt, got %v", identifiers)
	}
	if result.Movement.Identifier() != identifiers[1] {
		t.Errorf("returned movement %s, want %s", result.Movement.Identifier(), identifiers[1])
	}
	if got := result.Movement.BalanceAfter().String(); got != "80.00" {
		t.Errorf("balance after = %s, want 80.00", got)
	}
	if got := result.Account.Balance().String(); got != "80.00" {
		t.Errorf("account balance = %s, want 80.00", got)
	}
}

func TestMovementUseCase_RegisterMovement_BlankAccountNumber(t *testing.T) {
	f := newFixture(t)

	_, err := f.movementUseCase().RegisterMovement(context.Background(), usecase.RegisterMovementInput{
		AccountNumber: " ",
		Amount:        decimal.NewFromInt(1),
	})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestMovementUseCase_ListMovements(t *testing.T) {
	f := newFixture(t)
	acc := storedAccount(t, 5, "10", true)
	stored := []*domain.Movement{
		storedMovement(t, 1, "a", domain.MovementTypeDeposit, "5", "15"),
		storedMovement(t, 2, "b", domain.MovementTypeWithdrawal, "3", "12"),
	}

	from := time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 11, 8, 0, 0, 0, time.UTC)
	wantFrom := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	wantTo := time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)

	f.accounts.EXPECT().FindByAccountNumber(gomock.Any(), "478758712345").Return(acc, nil)
	f.accounts.EXPECT().FindMovementsByAccountAndDateRange(gomock.Any(), int64(5), wantFrom, wantTo).Return(stored, nil)

	list, err := f.movementUseCase().ListMovements(context.Background(), "478758712345", from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list.Movements) != 2 || list.Account != acc {
		t.Errorf("unexpected list %+v", list)
	}
	if !list.Range.From.Equal(wantFrom) || !list.Range.To.Equal(wantTo) {
		t.Errorf("range [%v, %v)", list.Range.From, list.Range.To)
	}
}

func TestMovementUseCase_ListMovements_InvalidRange(t *testing.T) {
	f := newFixture(t)

	_, err := f.movementUseCase().ListMovements(context.Background(), "478758712345",
		time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	)
	if !errors.Is(err, domain.ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
}
