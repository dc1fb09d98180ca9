package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/devsu/transaction-service/internal/domain"
	"github.com/devsu/transaction-service/internal/infrastructure/metrics"
)

// MovementUseCase handles deposits, withdrawals and ledger queries.
type MovementUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	outboxRepo  OutboxRepository
	retrier     Retrier
	idGen       IDGenerator
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewMovementUseCase creates a new MovementUseCase.
func NewMovementUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	retrier Retrier,
	idGen IDGenerator,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *MovementUseCase {
	return &MovementUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
		retrier:     retrier,
		idGen:       idGen,
		metrics:     metrics,
		logger:      logger.With().Str("component", "movement_usecase").Logger(),
	}
}

// RegisterMovementInput represents input for registering a movement.
// A negative amount is a withdrawal.
type RegisterMovementInput struct {
	AccountNumber string
	Amount        decimal.Decimal
}

// MovementResult is the stored movement together with the account it changed.
type MovementResult struct {
	Account  *domain.Account
	Movement *domain.Movement
}

// RegisterMovement applies a deposit or withdrawal and returns the stored movement.
func (uc *MovementUseCase) RegisterMovement(ctx context.Context, input RegisterMovementInput) (*MovementResult, error) {
	start := time.Now()
	number := strings.TrimSpace(input.AccountNumber)
	if number == "" {
		return nil, fmt.Errorf("%w: account number is required", domain.ErrInvalidArgument)
	}

	var (
		saved      *domain.Account
		identifier string
	)

	err := uc.retrier.Retry(ctx, func() error {
		account, err := uc.accountRepo.FindByAccountNumber(ctx, number)
		if err != nil {
			return err
		}

		identifier, err = account.RegisterMovement(input.Amount)
		if err != nil {
			return err
		}

		m, _ := account.FindMovement(identifier)
		event := newOutboxEvent(uc.idGen, account.Number(), domain.EventTypeMovementRegistered, domain.MovementRegisteredEvent{
			AccountNumber: account.Number(),
			Identifier:    identifier,
			MovementType:  string(m.Type()),
			Amount:        m.Amount().String(),
			BalanceAfter:  m.BalanceAfter().String(),
			EventAt:       m.CreatedAt().Format(time.RFC3339Nano),
		}.Payload())

		saved, err = saveWithEvent(ctx, uc.txManager, uc.accountRepo, uc.outboxRepo, account, event)
		return err
	})
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.MovementErrors.WithLabelValues(errorReason(err)).Inc()
		}
		uc.logger.Debug().Err(err).Str("account_number", number).Str("amount", input.Amount.String()).Msg("movement rejected")
		return nil, err
	}

	movement, err := uc.accountRepo.FindMovementByAccountAndIdentifier(ctx, saved.ID(), identifier)
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.MovementsRegistered.WithLabelValues(string(movement.Type())).Inc()
		uc.metrics.MovementAmount.WithLabelValues(string(movement.Type())).Observe(movement.Amount().Decimal().InexactFloat64())
		uc.metrics.MovementDuration.Observe(time.Since(start).Seconds())
	}
	uc.logger.Info().
		Str("account_number", number).
		Str("identifier", identifier).
		Str("type", string(movement.Type())).
		Str("amount", movement.Amount().String()).
		Str("balance_after", movement.BalanceAfter().String()).
		Msg("movement registered")

	return &MovementResult{Account: saved, Movement: movement}, nil
}

// MovementList is the ledger of one account for a day range.
type MovementList struct {
	Account   *domain.Account
	Range     domain.DateRange
	Movements []*domain.Movement
}

// ListMovements returns an account's movements from fromDate through toDate, whole UTC days.
func (uc *MovementUseCase) ListMovements(ctx context.Context, number string, fromDate, toDate time.Time) (*MovementList, error) {
	dateRange, err := domain.NewDayRange(fromDate, toDate)
	if err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.FindByAccountNumber(ctx, strings.TrimSpace(number))
	if err != nil {
		return nil, err
	}

	movements, err := uc.accountRepo.FindMovementsByAccountAndDateRange(ctx, account.ID(), dateRange.From, dateRange.To)
	if err != nil {
		return nil, err
	}

	return &MovementList{Account: account, Range: dateRange, Movements: movements}, nil
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrInactiveAccount):
		return "inactive_account"
	case errors.Is(err, domain.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, domain.ErrConcurrentModification):
		return "concurrent_modification"
	default:
		return "internal"
	}
}
