package domain

import "time"

// Event types
const (
	EventTypeAccountCreated       = "account.created"
	EventTypeAccountStatusChanged = "account.status_changed"
	EventTypeMovementRegistered   = "movement.registered"
)

// Aggregate types
const (
	AggregateTypeAccount = "account"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// AccountCreatedEvent payload
type AccountCreatedEvent struct {
	AccountNumber  string `json:"account_number"`
	AccountType    string `json:"account_type"`
	ClientID       string `json:"client_id"`
	InitialBalance string `json:"initial_balance"`
}

// AccountStatusChangedEvent payload
type AccountStatusChangedEvent struct {
	AccountNumber string `json:"account_number"`
	Active        bool   `json:"active"`
}

// MovementRegisteredEvent payload
type MovementRegisteredEvent struct {
	AccountNumber string `json:"account_number"`
	Identifier    string `json:"identifier"`
	MovementType  string `json:"movement_type"`
	Amount        string `json:"amount"`
	BalanceAfter  string `json:"balance_after"`
	EventAt       string `json:"event_at"`
}

// Payload flattens the event into the generic outbox payload.
func (e AccountCreatedEvent) Payload() map[string]any {
	return map[string]any{
		"account_number":  e.AccountNumber,
		"account_type":    e.AccountType,
		"client_id":       e.ClientID,
		"initial_balance": e.InitialBalance,
	}
}

func (e AccountStatusChangedEvent) Payload() map[string]any {
	return map[string]any{
		"account_number": e.AccountNumber,
		"active":         e.Active,
	}
}

func (e MovementRegisteredEvent) Payload() map[string]any {
	return map[string]any{
		"account_number": e.AccountNumber,
		"identifier":     e.Identifier,
		"movement_type":  e.MovementType,
		"amount":         e.Amount,
		"balance_after":  e.BalanceAfter,
		"event_at":       e.EventAt,
	}
}
