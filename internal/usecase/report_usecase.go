package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/devsu/transaction-service/internal/domain"
	"github.com/devsu/transaction-service/internal/infrastructure/metrics"
)

// ReportUseCase builds account statements.
type ReportUseCase struct {
	accountRepo AccountRepository
	clients     ClientDirectory
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewReportUseCase creates a new ReportUseCase.
func NewReportUseCase(accountRepo AccountRepository, clients ClientDirectory, metrics *metrics.Metrics, logger zerolog.Logger) *ReportUseCase {
	return &ReportUseCase{
		accountRepo: accountRepo,
		clients:     clients,
		metrics:     metrics,
		logger:      logger.With().Str("component", "report_usecase").Logger(),
	}
}

// AccountStatement lists every account of a client with the movements
// registered from fromDate through toDate.
func (uc *ReportUseCase) AccountStatement(ctx context.Context, clientID string, fromDate, toDate time.Time) (*domain.AccountStatement, error) {
	clientID, err := domain.ValidateClientID(clientID)
	if err != nil {
		return nil, err
	}

	dateRange, err := domain.NewDayRange(fromDate, toDate)
	if err != nil {
		return nil, err
	}

	client, err := uc.clients.GetClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	accounts, err := uc.accountRepo.FindByClientIDWithMovementsBetween(ctx, clientID, dateRange.From, dateRange.To)
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.StatementsGenerated.Inc()
	}
	uc.logger.Debug().Str("client_id", clientID).Int("accounts", len(accounts)).Msg("account statement generated")

	return &domain.AccountStatement{
		Client:      *client,
		PeriodStart: dateRange.From,
		PeriodEnd:   dateRange.LastInstant(),
		Accounts:    accounts,
	}, nil
}
