package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/devsu/transaction-service/internal/adapter/http/dto"
	"github.com/devsu/transaction-service/internal/domain"
	"github.com/devsu/transaction-service/internal/usecase"
)

// MovementService defines the behavior needed by MovementHandler.
type MovementService interface {
	RegisterMovement(ctx context.Context, input usecase.RegisterMovementInput) (*usecase.MovementResult, error)
	ListMovements(ctx context.Context, number string, fromDate, toDate time.Time) (*usecase.MovementList, error)
}

// MovementHandler handles deposits, withdrawals and ledger queries.
type MovementHandler struct {
	movementUC MovementService
}

// NewMovementHandler creates a new MovementHandler.
func NewMovementHandler(movementUC MovementService) *MovementHandler {
	return &MovementHandler{movementUC: movementUC}
}

// Create registers a deposit or withdrawal.
func (h *MovementHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateMovementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	result, err := h.movementUC.RegisterMovement(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, "failed to register movement", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.MovementFromDomain(result.Account.Number(), result.Movement))
}

// List returns the movements of an account between two dates (YYYY-MM-DD, inclusive).
func (h *MovementHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	number := q.Get("account_number")
	if number == "" {
		writeError(w, http.StatusBadRequest, "missing account_number", "")
		return
	}

	from, to, err := parseDateQuery(r)
	if err != nil {
		writeDomainError(w, r, "invalid date range", err)
		return
	}

	list, err := h.movementUC.ListMovements(r.Context(), number, from, to)
	if err != nil {
		writeDomainError(w, r, "failed to list movements", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MovementListResponse{
		AccountNumber: list.Account.Number(),
		From:          list.Range.From,
		To:            list.Range.LastInstant(),
		Movements:     dto.MovementsFromDomain(list.Account.Number(), list.Movements),
	})
}

// parseDateQuery reads the from and to query parameters.
func parseDateQuery(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()
	from, err := domain.ParseDate(q.Get("from"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := domain.ParseDate(q.Get("to"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}
