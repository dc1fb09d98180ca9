package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/devsu/transaction-service/internal/adapter/http/dto"
	"github.com/devsu/transaction-service/internal/domain"
	"github.com/devsu/transaction-service/internal/usecase"
)

type movementServiceStub struct {
	registerFn func(ctx context.Context, input usecase.RegisterMovementInput) (*usecase.MovementResult, error)
	listFn     func(ctx context.Context, number string, from, to time.Time) (*usecase.MovementList, error)
}

func (s *movementServiceStub) RegisterMovement(ctx context.Context, input usecase.RegisterMovementInput) (*usecase.MovementResult, error) {
	return s.registerFn(ctx, input)
}

func (s *movementServiceStub) ListMovements(ctx context.Context, number string, from, to time.Time) (*usecase.MovementList, error) {
	return s.listFn(ctx, number, from, to)
}

func testMovement(t *testing.T) *domain.Movement {
	t.Helper()
	m, err := domain.RehydrateMovement(domain.MovementState{
		ID:           5,
		Identifier:   "6f1c2f1e-0000-4000-8000-000000000005",
		Type:         domain.MovementTypeWithdrawal,
		Amount:       domain.NewMoney(decimal.NewFromInt(40)),
		BalanceAfter: domain.NewMoney(decimal.NewFromInt(60)),
		CreatedAt:    time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("RehydrateMovement: %v", err)
	}
	return m
}

func TestMovementHandler_Create(t *testing.T) {
	var captured usecase.RegisterMovementInput
	handler := NewMovementHandler(&movementServiceStub{
		registerFn: func(ctx context.Context, input usecase.RegisterMovementInput) (*usecase.MovementResult, error) {
			captured = input
			return &usecase.MovementResult{Account: testAccount(t, true), Movement: testMovement(t)}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/movements", strings.NewReader(`{"account_number":"478758712345","amount":-40}`))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !captured.Amount.Equal(decimal.NewFromInt(-40)) {
		t.Fatalf("expected signed amount to pass through, got %s", captured.Amount)
	}

	var resp dto.MovementResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Type != "WITHDRAWAL" || resp.BalanceAfter.String() != "60.00" || resp.AccountNumber != "478758712345" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestMovementHandler_Create_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"zero amount", `{"account_number":"478758712345","amount":0}`, nil, http.StatusBadRequest},
		{"unknown field", `{"account_number":"478758712345","amount":1,"currency":"USD"}`, nil, http.StatusBadRequest},
		{"insufficient funds", `{"account_number":"478758712345","amount":-500}`, domain.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{"inactive account", `{"account_number":"478758712345","amount":5}`, domain.ErrInactiveAccount, http.StatusConflict},
		{"account not found", `{"account_number":"000000000000","amount":5}`, domain.ErrAccountNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewMovementHandler(&movementServiceStub{
				registerFn: func(ctx context.Context, input usecase.RegisterMovementInput) (*usecase.MovementResult, error) {
					if tt.err == nil {
						t.Fatal("RegisterMovement should not be called")
					}
					return nil, tt.err
				},
			})

			req := httptest.NewRequest(http.MethodPost, "/movements", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			handler.Create(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestMovementHandler_List(t *testing.T) {
	var gotFrom, gotTo time.Time
	handler := NewMovementHandler(&movementServiceStub{
		listFn: func(ctx context.Context, number string, from, to time.Time) (*usecase.MovementList, error) {
			gotFrom, gotTo = from, to
			r, _ := domain.NewDayRange(from, to)
			return &usecase.MovementList{Account: testAccount(t, true), Range: r, Movements: []*domain.Movement{testMovement(t)}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/movements?account_number=478758712345&from=2024-03-01&to=2024-03-31", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotFrom != time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) || gotTo != time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("unexpected dates %v %v", gotFrom, gotTo)
	}

	var resp dto.MovementListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Movements) != 1 || !resp.To.Equal(time.Date(2024, 3, 31, 23, 59, 59, 999000000, time.UTC)) {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestMovementHandler_List_BadInput(t *testing.T) {
	handler := NewMovementHandler(&movementServiceStub{
		listFn: func(ctx context.Context, number string, from, to time.Time) (*usecase.MovementList, error) {
			return nil, domain.ErrInvalidDateRange
		},
	})

	for _, target := range []string{
		"/movements?from=2024-03-01&to=2024-03-31",
		"/movements?account_number=478758712345&from=03/01/2024&to=2024-03-31",
		"/movements?account_number=478758712345&from=2024-04-01&to=2024-03-31",
	} {
		rec := httptest.NewRecorder()
		handler.List(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}
