package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Account is the aggregate root for a bank account and its movement ledger.
// The balance changes only through RegisterMovement.
type Account struct {
	id             int64
	number         string
	accountType    AccountType
	initialBalance Money
	balance        Money
	active         bool
	clientID       string
	createdAt      time.Time
	version        int64
	movements      []*Movement
}

// NewAccount creates an active, not yet persisted account with an empty ledger.
func NewAccount(number string, accountType AccountType, initialBalance Money, clientID string) (*Account, error) {
	number = strings.TrimSpace(number)
	clientID = strings.TrimSpace(clientID)

	if err := validateAccountFields(number, accountType, initialBalance, clientID); err != nil {
		return nil, err
	}

	return &Account{
		number:         number,
		accountType:    accountType,
		initialBalance: initialBalance,
		balance:        initialBalance,
		active:         true,
		clientID:       clientID,
		createdAt:      time.Now().UTC(),
	}, nil
}

// AccountState is the persisted form of an Account.
type AccountState struct {
	ID             int64
	Number         string
	Type           AccountType
	InitialBalance Money
	Balance        Money
	Active         bool
	ClientID       string
	CreatedAt      time.Time
	Version        int64
	Movements      []*Movement
}

// RehydrateAccount rebuilds a stored account. The identity is required.
func RehydrateAccount(s AccountState) (*Account, error) {
	if s.ID == 0 {
		return nil, fmt.Errorf("%w: account id is required", ErrInvalidArgument)
	}

	number := strings.TrimSpace(s.Number)
	clientID := strings.TrimSpace(s.ClientID)
	if err := validateAccountFields(number, s.Type, s.InitialBalance, clientID); err != nil {
		return nil, err
	}
	if s.Balance.IsNegative() {
		return nil, fmt.Errorf("%w: balance cannot be negative", ErrInvalidAmount)
	}

	movements := make([]*Movement, len(s.Movements))
	copy(movements, s.Movements)

	return &Account{
		id:             s.ID,
		number:         number,
		accountType:    s.Type,
		initialBalance: s.InitialBalance,
		balance:        s.Balance,
		active:         s.Active,
		clientID:       clientID,
		createdAt:      s.CreatedAt.UTC(),
		version:        s.Version,
		movements:      movements,
	}, nil
}

func validateAccountFields(number string, accountType AccountType, initialBalance Money, clientID string) error {
	if number == "" {
		return fmt.Errorf("%w: account number is required", ErrInvalidArgument)
	}
	if clientID == "" {
		return fmt.Errorf("%w: client id is required", ErrInvalidArgument)
	}
	if !accountType.Valid() {
		return fmt.Errorf("%w: %q", ErrUnsupportedAccountType, accountType)
	}
	if initialBalance.IsNegative() {
		return fmt.Errorf("%w: initial balance cannot be negative", ErrInvalidAmount)
	}
	return nil
}

// RegisterMovement applies a signed amount to the balance and appends the
// resulting movement. Negative amounts are withdrawals. On error the account
// is left untouched. It returns the identifier of the new movement.
func (a *Account) RegisterMovement(signedAmount decimal.Decimal) (string, error) {
	if a.id == 0 {
		return "", ErrAccountNotPersisted
	}
	if !a.active {
		return "", ErrInactiveAccount
	}

	amount := NewMoney(signedAmount)
	if amount.IsZero() {
		return "", ErrInvalidAmount
	}

	newBalance := a.balance.Add(amount)
	movementType := MovementTypeDeposit
	if amount.IsNegative() {
		if newBalance.IsNegative() {
			return "", fmt.Errorf("%w: balance %s, requested %s", ErrInsufficientFunds, a.balance, amount.Abs())
		}
		movementType = MovementTypeWithdrawal
	}

	m, err := newMovement(movementType, amount.Abs(), newBalance)
	if err != nil {
		return "", err
	}

	a.balance = newBalance
	a.movements = append(a.movements, m)

	return m.identifier, nil
}

// Activate marks the account active and reports whether the flag changed.
func (a *Account) Activate() bool {
	if a.active {
		return false
	}
	a.active = true
	return true
}

// Deactivate marks the account inactive and reports whether the flag changed.
func (a *Account) Deactivate() bool {
	if !a.active {
		return false
	}
	a.active = false
	return true
}

// SetActive is a convenience over Activate/Deactivate.
func (a *Account) SetActive(active bool) bool {
	if active {
		return a.Activate()
	}
	return a.Deactivate()
}

func (a *Account) ID() int64             { return a.id }
func (a *Account) Number() string        { return a.number }
func (a *Account) Type() AccountType     { return a.accountType }
func (a *Account) InitialBalance() Money { return a.initialBalance }
func (a *Account) Balance() Money        { return a.balance }
func (a *Account) IsActive() bool        { return a.active }
func (a *Account) ClientID() string      { return a.clientID }
func (a *Account) CreatedAt() time.Time  { return a.createdAt }
func (a *Account) Version() int64        { return a.version }
func (a *Account) IsPersisted() bool     { return a.id != 0 }
func (a *Account) MovementCount() int    { return len(a.movements) }

// Movements returns the ledger in chronological order. The returned slice is a copy.
func (a *Account) Movements() []*Movement {
	out := make([]*Movement, len(a.movements))
	copy(out, a.movements)
	return out
}

// PendingMovements returns movements appended since the account was loaded.
func (a *Account) PendingMovements() []*Movement {
	var out []*Movement
	for _, m := range a.movements {
		if !m.IsPersisted() {
			out = append(out, m)
		}
	}
	return out
}

// FindMovement returns the movement with the given identifier, if present.
func (a *Account) FindMovement(identifier string) (*Movement, bool) {
	for _, m := range a.movements {
		if m.identifier == identifier {
			return m, true
		}
	}
	return nil, false
}
