package dto

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/devsu/transaction-service/internal/domain"
	"github.com/devsu/transaction-service/internal/usecase"
)

// MaxAccountNumberLength bounds the account number accepted in requests.
const MaxAccountNumberLength = 32

// CreateAccountRequest represents a request to open an account.
type CreateAccountRequest struct {
	AccountType    string           `json:"account_type"`
	ClientID       string           `json:"client_id"`
	InitialBalance *decimal.Decimal `json:"initial_balance"`
}

// ToUseCaseInput validates the request shape and converts it to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() (usecase.CreateAccountInput, error) {
	if strings.TrimSpace(r.AccountType) == "" {
		return usecase.CreateAccountInput{}, fmt.Errorf("%w: account_type is required", domain.ErrInvalidArgument)
	}
	if strings.TrimSpace(r.ClientID) == "" {
		return usecase.CreateAccountInput{}, fmt.Errorf("%w: client_id is required", domain.ErrInvalidArgument)
	}
	if r.InitialBalance == nil {
		return usecase.CreateAccountInput{}, fmt.Errorf("%w: initial_balance is required", domain.ErrInvalidArgument)
	}
	if r.InitialBalance.IsNegative() {
		return usecase.CreateAccountInput{}, fmt.Errorf("%w: initial_balance must be >= 0", domain.ErrInvalidAmount)
	}

	return usecase.CreateAccountInput{
		AccountType:    r.AccountType,
		ClientID:       r.ClientID,
		InitialBalance: *r.InitialBalance,
	}, nil
}

// ChangeStatusRequest activates or deactivates an account.
type ChangeStatusRequest struct {
	Active *bool `json:"active"`
}

// Validate checks that the flag is present.
func (r *ChangeStatusRequest) Validate() error {
	if r.Active == nil {
		return fmt.Errorf("%w: active is required", domain.ErrInvalidArgument)
	}
	return nil
}

// CreateMovementRequest registers a movement. The sign of Amount selects
// deposit (positive) or withdrawal (negative).
type CreateMovementRequest struct {
	AccountNumber string           `json:"account_number"`
	Amount        *decimal.Decimal `json:"amount"`
}

// ToUseCaseInput validates the request shape and converts it to use case input.
func (r *CreateMovementRequest) ToUseCaseInput() (usecase.RegisterMovementInput, error) {
	number := strings.TrimSpace(r.AccountNumber)
	switch {
	case number == "":
		return usecase.RegisterMovementInput{}, fmt.Errorf("%w: account_number is required", domain.ErrInvalidArgument)
	case len(number) > MaxAccountNumberLength:
		return usecase.RegisterMovementInput{}, fmt.Errorf("%w: account_number is too long", domain.ErrInvalidArgument)
	case r.Amount == nil:
		return usecase.RegisterMovementInput{}, fmt.Errorf("%w: amount is required", domain.ErrInvalidArgument)
	case r.Amount.IsZero():
		return usecase.RegisterMovementInput{}, fmt.Errorf("%w: amount must not be 0", domain.ErrInvalidAmount)
	case !r.Amount.Equal(r.Amount.Truncate(domain.MoneyScale)):
		return usecase.RegisterMovementInput{}, fmt.Errorf("%w: amount must have at most 2 decimals", domain.ErrInvalidAmount)
	}

	return usecase.RegisterMovementInput{
		AccountNumber: number,
		Amount:        *r.Amount,
	}, nil
}
