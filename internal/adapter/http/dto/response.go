package dto

import (
	"time"

	"github.com/devsu/transaction-service/internal/domain"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID             int64        `json:"id"`
	AccountNumber  string       `json:"account_number"`
	AccountType    string       `json:"account_type"`
	ClientID       string       `json:"client_id"`
	CurrentBalance domain.Money `json:"current_balance"`
	InitialBalance domain.Money `json:"initial_balance"`
	Active         bool         `json:"active"`
	Version        int64        `json:"version"`
	CreatedAt      time.Time    `json:"created_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:             a.ID(),
		AccountNumber:  a.Number(),
		AccountType:    string(a.Type()),
		ClientID:       a.ClientID(),
		CurrentBalance: a.Balance(),
		InitialBalance: a.InitialBalance(),
		Active:         a.IsActive(),
		Version:        a.Version(),
		CreatedAt:      a.CreatedAt(),
	}
}

// MovementResponse represents a ledger movement in API responses.
type MovementResponse struct {
	ID            int64        `json:"id"`
	MovementID    string       `json:"movement_id"`
	AccountNumber string       `json:"account_number"`
	Type          string       `json:"type"`
	Amount        domain.Money `json:"amount"`
	BalanceAfter  domain.Money `json:"balance_after"`
	HappenedAt    time.Time    `json:"happened_at"`
}

// MovementFromDomain converts a movement of the given account to response.
func MovementFromDomain(accountNumber string, m *domain.Movement) *MovementResponse {
	return &MovementResponse{
		ID:            m.ID(),
		MovementID:    m.Identifier(),
		AccountNumber: accountNumber,
		Type:          string(m.Type()),
		Amount:        m.Amount(),
		BalanceAfter:  m.BalanceAfter(),
		HappenedAt:    m.CreatedAt(),
	}
}

// MovementsFromDomain converts domain movements to responses.
func MovementsFromDomain(accountNumber string, movements []*domain.Movement) []*MovementResponse {
	result := make([]*MovementResponse, len(movements))
	for i, m := range movements {
		result[i] = MovementFromDomain(accountNumber, m)
	}
	return result
}

// MovementListResponse is an account's ledger over a date range.
type MovementListResponse struct {
	AccountNumber string              `json:"account_number"`
	From          time.Time           `json:"from"`
	To            time.Time           `json:"to"`
	Movements     []*MovementResponse `json:"movements"`
}

// StatementAccount is an account section of a statement.
type StatementAccount struct {
	AccountResponse
	Movements []*MovementResponse `json:"movements"`
}

// StatementResponse is the account statement of a client for a period.
type StatementResponse struct {
	ClientID    string              `json:"client_id"`
	ClientName  string              `json:"client_name"`
	PeriodStart time.Time           `json:"period_start"`
	PeriodEnd   time.Time           `json:"period_end"`
	Accounts    []*StatementAccount `json:"accounts"`
}

// StatementFromDomain converts a statement to response.
func StatementFromDomain(s *domain.AccountStatement) *StatementResponse {
	accounts := make([]*StatementAccount, len(s.Accounts))
	for i, a := range s.Accounts {
		accounts[i] = &StatementAccount{
			AccountResponse: *AccountFromDomain(a),
			Movements:       MovementsFromDomain(a.Number(), a.Movements()),
		}
	}

	return &StatementResponse{
		ClientID:    s.Client.ClientID,
		ClientName:  s.Client.FullName(),
		PeriodStart: s.PeriodStart,
		PeriodEnd:   s.PeriodEnd,
		Accounts:    accounts,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
