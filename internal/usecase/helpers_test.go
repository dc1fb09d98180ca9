package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"

	"github.com/devsu/transaction-service/internal/domain"
	"github.com/devsu/transaction-service/internal/infrastructure/metrics"
	"github.com/devsu/transaction-service/internal/usecase"
	"github.com/devsu/transaction-service/internal/usecase/mocks"
)

type fixture struct {
	txManager *mocks.MockTransactionManager
	tx        *mocks.MockTransaction
	accounts  *mocks.MockAccountRepository
	outbox    *mocks.MockOutboxRepository
	clients   *mocks.MockClientDirectory
	numbers   *mocks.MockAccountNumberGenerator
	retrier   *mocks.MockRetrier
	idGen     *mocks.MockIDGenerator
	metrics   *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &fixture{
		txManager: mocks.NewMockTransactionManager(ctrl),
		tx:        mocks.NewMockTransaction(ctrl),
		accounts:  mocks.NewMockAccountRepository(ctrl),
		outbox:    mocks.NewMockOutboxRepository(ctrl),
		clients:   mocks.NewMockClientDirectory(ctrl),
		numbers:   mocks.NewMockAccountNumberGenerator(ctrl),
		retrier:   mocks.NewMockRetrier(ctrl),
		idGen:     mocks.NewMockIDGenerator(ctrl),
		metrics:   metrics.NewWithRegisterer(prometheus.NewRegistry()),
	}

	f.idGen.EXPECT().Generate().Return("01HZXEVENT").AnyTimes()
	f.retrier.EXPECT().Retry(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, op func() error) error { return op() },
	).AnyTimes()

	return f
}

func (f *fixture) accountUseCase() *usecase.AccountUseCase {
	return usecase.NewAccountUseCase(f.txManager, f.accounts, f.outbox, f.clients, f.numbers, f.retrier, f.idGen, f.metrics, zerolog.Nop())
}

func (f *fixture) movementUseCase() *usecase.MovementUseCase {
	return usecase.NewMovementUseCase(f.txManager, f.accounts, f.outbox, f.retrier, f.idGen, f.metrics, zerolog.Nop())
}

func (f *fixture) reportUseCase() *usecase.ReportUseCase {
	return usecase.NewReportUseCase(f.accounts, f.clients, f.metrics, zerolog.Nop())
}

// expectCommittedTx expects one transaction that commits.
func (f *fixture) expectCommittedTx() {
	f.txManager.EXPECT().Begin(gomock.Any()).Return(f.tx, nil)
	f.tx.EXPECT().Commit(gomock.Any()).Return(nil)
	f.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
}

// expectRolledBackTx expects one transaction that is only rolled back.
func (f *fixture) expectRolledBackTx() {
	f.txManager.EXPECT().Begin(gomock.Any()).Return(f.tx, nil)
	f.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
}

func money(t *testing.T, s string) domain.Money {
	t.Helper()
	m, err := domain.ParseMoney(s)
	if err != nil {
		t.Fatalf("ParseMoney(%q): %v", s, err)
	}
	return m
}

func storedAccount(t *testing.T, id int64, balance string, active bool, movements ...*domain.Movement) *domain.Account {
	t.Helper()
	acc, err := domain.RehydrateAccount(domain.AccountState{
		ID:             id,
		Number:         "478758712345",
		Type:           domain.AccountTypeSavings,
		InitialBalance: money(t, balance),
		Balance:        money(t, balance),
		Active:         active,
		ClientID:       "client-1",
		CreatedAt:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Version:        1,
		Movements:      movements,
	})
	if err != nil {
		t.Fatalf("RehydrateAccount: %v", err)
	}
	return acc
}

func storedMovement(t *testing.T, id int64, identifier string, typ domain.MovementType, amount, after string) *domain.Movement {
	t.Helper()
	m, err := domain.RehydrateMovement(domain.MovementState{
		ID:           id,
		Type:         typ,
		Amount:       money(t, amount),
		BalanceAfter: money(t, after),
		CreatedAt:    time.Now().UTC(),
		Identifier:   identifier,
	})
	if err != nil {
		t.Fatalf("RehydrateMovement: %v", err)
	}
	return m
}

// persistAs returns a Save stub that assigns id to a new account, like the storage adapter.
func persistAs(t *testing.T, id int64) func(context.Context, usecase.Transaction, *domain.Account) (*domain.Account, error) {
	return func(_ context.Context, _ usecase.Transaction, a *domain.Account) (*domain.Account, error) {
		if a.IsPersisted() {
			return a, nil
		}
		return domain.RehydrateAccount(domain.AccountState{
			ID:             id,
			Number:         a.Number(),
			Type:           a.Type(),
			InitialBalance: a.InitialBalance(),
			Balance:        a.Balance(),
			Active:         a.IsActive(),
			ClientID:       a.ClientID(),
			CreatedAt:      a.CreatedAt(),
			Version:        1,
		})
	}
}
