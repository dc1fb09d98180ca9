package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MovementType is the direction of a ledger entry.
type MovementType string

const (
	MovementTypeDeposit    MovementType = "DEPOSIT"
	MovementTypeWithdrawal MovementType = "WITHDRAWAL"
)

// Valid reports whether t is a known movement type.
func (t MovementType) Valid() bool {
	return t == MovementTypeDeposit || t == MovementTypeWithdrawal
}

// Movement is an immutable ledger entry. Amount is always positive;
// the direction is carried by Type.
type Movement struct {
	id           int64
	movementType MovementType
	amount       Money
	balanceAfter Money
	createdAt    time.Time
	identifier   string
}

// newMovement is the only way to create a fresh ledger entry and is used by Account.
func newMovement(movementType MovementType, amount, balanceAfter Money) (*Movement, error) {
	if amount.IsZero() {
		return nil, ErrInvalidAmount
	}

	return &Movement{
		movementType: movementType,
		amount:       amount.Abs(),
		balanceAfter: balanceAfter,
		createdAt:    time.Now().UTC(),
		identifier:   uuid.NewString(),
	}, nil
}

// MovementState is the persisted form of a Movement.
type MovementState struct {
	ID           int64
	Type         MovementType
	Amount       Money
	BalanceAfter Money
	CreatedAt    time.Time
	Identifier   string
}

// RehydrateMovement rebuilds a stored movement. Input is trusted, so the
// zero-amount rule is not re-checked; only the identity is required.
func RehydrateMovement(s MovementState) (*Movement, error) {
	if s.ID == 0 {
		return nil, fmt.Errorf("%w: movement id is required", ErrInvalidArgument)
	}

	return &Movement{
		id:           s.ID,
		movementType: s.Type,
		amount:       s.Amount,
		balanceAfter: s.BalanceAfter,
		createdAt:    s.CreatedAt.UTC(),
		identifier:   s.Identifier,
	}, nil
}

func (m *Movement) ID() int64            { return m.id }
func (m *Movement) Type() MovementType   { return m.movementType }
func (m *Movement) Amount() Money        { return m.amount }
func (m *Movement) BalanceAfter() Money  { return m.balanceAfter }
func (m *Movement) CreatedAt() time.Time { return m.createdAt }
func (m *Movement) Identifier() string   { return m.identifier }

// IsPersisted reports whether the movement has been assigned an identity.
func (m *Movement) IsPersisted() bool { return m.id != 0 }

// SignedAmount returns the amount as a balance delta: negative for withdrawals.
func (m *Movement) SignedAmount() Money {
	if m.movementType == MovementTypeWithdrawal {
		return m.amount.Neg()
	}
	return m.amount
}
