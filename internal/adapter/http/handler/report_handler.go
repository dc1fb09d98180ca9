package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/devsu/transaction-service/internal/adapter/http/dto"
	"github.com/devsu/transaction-service/internal/domain"
)

// ReportService defines the behavior needed by ReportHandler.
type ReportService interface {
	AccountStatement(ctx context.Context, clientID string, fromDate, toDate time.Time) (*domain.AccountStatement, error)
}

// ReportHandler serves account statements.
type ReportHandler struct {
	reportUC ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportUC ReportService) *ReportHandler {
	return &ReportHandler{reportUC: reportUC}
}

// AccountStatement returns a client's accounts and movements for a period.
func (h *ReportHandler) AccountStatement(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		writeError(w, http.StatusBadRequest, "missing client_id", "")
		return
	}

	from, to, err := parseDateQuery(r)
	if err != nil {
		writeDomainError(w, r, "invalid date range", err)
		return
	}

	statement, err := h.reportUC.AccountStatement(r.Context(), clientID, from, to)
	if err != nil {
		writeDomainError(w, r, "failed to build account statement", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.StatementFromDomain(statement))
}
