package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/devsu/transaction-service/internal/adapter/http/dto"
	"github.com/devsu/transaction-service/internal/domain"
)

type reportServiceStub struct {
	statementFn func(ctx context.Context, clientID string, from, to time.Time) (*domain.AccountStatement, error)
}

func (s *reportServiceStub) AccountStatement(ctx context.Context, clientID string, from, to time.Time) (*domain.AccountStatement, error) {
	return s.statementFn(ctx, clientID, from, to)
}

func TestReportHandler_AccountStatement(t *testing.T) {
	handler := NewReportHandler(&reportServiceStub{
		statementFn: func(ctx context.Context, clientID string, from, to time.Time) (*domain.AccountStatement, error) {
			return &domain.AccountStatement{
				Client:      domain.ClientInfo{ClientID: clientID, FirstName: "Jose", LastName: "Lema"},
				PeriodStart: from,
				PeriodEnd:   to.AddDate(0, 0, 1).Add(-time.Millisecond),
				Accounts:    []*domain.Account{testAccount(t, true)},
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/reports?client_id=jlema&from=2024-01-01&to=2024-01-31", nil)
	rec := httptest.NewRecorder()
	handler.AccountStatement(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.StatementResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ClientName != "Jose Lema" || len(resp.Accounts) != 1 {
		t.Fatalf("unexpected statement %+v", resp)
	}
}

func TestReportHandler_AccountStatement_Errors(t *testing.T) {
	handler := NewReportHandler(&reportServiceStub{
		statementFn: func(ctx context.Context, clientID string, from, to time.Time) (*domain.AccountStatement, error) {
			return nil, domain.ErrClientNotFound
		},
	})

	tests := []struct {
		target string
		want   int
	}{
		{"/reports?from=2024-01-01&to=2024-01-31", http.StatusBadRequest},
		{"/reports?client_id=jlema&to=2024-01-31", http.StatusBadRequest},
		{"/reports?client_id=ghost&from=2024-01-01&to=2024-01-31", http.StatusNotFound},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		handler.AccountStatement(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))
		if rec.Code != tt.want {
			t.Fatalf("%s: expected %d, got %d", tt.target, tt.want, rec.Code)
		}
	}
}
