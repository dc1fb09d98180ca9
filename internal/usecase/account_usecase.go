package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/devsu/transaction-service/internal/domain"
	"github.com/devsu/transaction-service/internal/infrastructure/metrics"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	outboxRepo  OutboxRepository
	clients     ClientDirectory
	numbers     AccountNumberGenerator
	retrier     Retrier
	idGen       IDGenerator
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	clients ClientDirectory,
	numbers AccountNumberGenerator,
	retrier Retrier,
	idGen IDGenerator,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
		clients:     clients,
		numbers:     numbers,
		retrier:     retrier,
		idGen:       idGen,
		metrics:     metrics,
		logger:      logger.With().Str("component", "account_usecase").Logger(),
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	AccountType    string
	ClientID       string
	InitialBalance decimal.Decimal
}

// CreateAccount opens an account for an existing client under a freshly issued number.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	clientID, err := domain.ValidateClientID(input.ClientID)
	if err != nil {
		return nil, err
	}

	accountType, err := domain.ParseAccountType(input.AccountType)
	if err != nil {
		return nil, err
	}

	initial := domain.NewMoney(input.InitialBalance)
	if initial.IsNegative() {
		return nil, fmt.Errorf("%w: initial balance cannot be negative", domain.ErrInvalidAmount)
	}

	if _, err := uc.clients.GetClient(ctx, clientID); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= MaxAccountNumberAttempts; attempt++ {
		number, err := uc.numbers.Generate()
		if err != nil {
			return nil, fmt.Errorf("generate account number: %w", err)
		}

		account, err := domain.NewAccount(number, accountType, initial, clientID)
		if err != nil {
			return nil, err
		}

		event := newOutboxEvent(uc.idGen, account.Number(), domain.EventTypeAccountCreated, domain.AccountCreatedEvent{
			AccountNumber:  account.Number(),
			AccountType:    account.Type().Code(),
			ClientID:       account.ClientID(),
			InitialBalance: account.InitialBalance().String(),
		}.Payload())

		saved, err := saveWithEvent(ctx, uc.txManager, uc.accountRepo, uc.outboxRepo, account, event)
		if errors.Is(err, domain.ErrAccountNumberConflict) {
			if uc.metrics != nil {
				uc.metrics.AccountNumberCollisions.Inc()
			}
			uc.logger.Warn().Int("attempt", attempt).Str("account_number", number).Msg("account number collision, regenerating")
			continue
		}
		if err != nil {
			return nil, err
		}

		if uc.metrics != nil {
			uc.metrics.AccountsCreated.Inc()
		}
		uc.logger.Info().
			Str("account_number", saved.Number()).
			Str("client_id", saved.ClientID()).
			Str("type", string(saved.Type())).
			Msg("account created")

		return saved, nil
	}

	return nil, fmt.Errorf("%w: gave up after %d attempts", domain.ErrAccountNumberConflict, MaxAccountNumberAttempts)
}

// GetAccount retrieves an account by number.
func (uc *AccountUseCase) GetAccount(ctx context.Context, number string) (*domain.Account, error) {
	return uc.accountRepo.FindByAccountNumber(ctx, number)
}

// ChangeStatus activates or deactivates an account. Nothing is written when
// the account already has the requested status.
func (uc *AccountUseCase) ChangeStatus(ctx context.Context, number string, active bool) (*domain.Account, error) {
	var result *domain.Account

	err := uc.retrier.Retry(ctx, func() error {
		account, err := uc.accountRepo.FindByAccountNumber(ctx, number)
		if err != nil {
			return err
		}

		if !account.SetActive(active) {
			result = account
			return nil
		}

		event := newOutboxEvent(uc.idGen, account.Number(), domain.EventTypeAccountStatusChanged, domain.AccountStatusChangedEvent{
			AccountNumber: account.Number(),
			Active:        active,
		}.Payload())

		saved, err := saveWithEvent(ctx, uc.txManager, uc.accountRepo, uc.outboxRepo, account, event)
		if err != nil {
			return err
		}

		if uc.metrics != nil {
			uc.metrics.AccountStatusChanges.WithLabelValues(statusLabel(active)).Inc()
		}
		uc.logger.Info().Str("account_number", number).Bool("active", active).Msg("account status changed")

		result = saved
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func statusLabel(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}

// saveWithEvent persists the aggregate and its outbox event in one transaction.
func saveWithEvent(
	ctx context.Context,
	txManager TransactionManager,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	account *domain.Account,
	event *domain.OutboxEvent,
) (*domain.Account, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	saved, err := accountRepo.Save(txCtx, tx, account)
	if err != nil {
		return nil, err
	}

	if err := outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return saved, nil
}

func newOutboxEvent(idGen IDGenerator, aggregateID, eventType string, payload map[string]any) *domain.OutboxEvent {
	return &domain.OutboxEvent{
		ID:            idGen.Generate(),
		AggregateID:   aggregateID,
		AggregateType: domain.AggregateTypeAccount,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     time.Now().UTC(),
		Published:     false,
	}
}
