package domain

import "errors"

var (
	// Account errors
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrInactiveAccount        = errors.New("account is inactive")
	ErrAccountNotPersisted    = errors.New("account has not been persisted")
	ErrUnsupportedAccountType = errors.New("unsupported account type")
	ErrInvalidArgument        = errors.New("invalid argument")

	// Lookup errors
	ErrAccountNotFound  = errors.New("account not found")
	ErrMovementNotFound = errors.New("movement not found")
	ErrClientNotFound   = errors.New("client not found")

	// Storage errors
	ErrAccountNumberConflict  = errors.New("account number already exists")
	ErrConcurrentModification = errors.New("account was modified concurrently")

	// Query errors
	ErrInvalidDateRange = errors.New("'from' date must not be after 'to' date")

	// Auth errors
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)
