package domain

import (
	"errors"
	"testing"
	"time"
)

func TestParseDayRange(t *testing.T) {
	r, err := ParseDayRange("2024-01-10", "2024-01-12")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantFrom := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	wantTo := time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC)
	if !r.From.Equal(wantFrom) || !r.To.Equal(wantTo) {
		t.Errorf("got [%v, %v)", r.From, r.To)
	}
	if !r.LastInstant().Equal(wantTo.Add(-time.Millisecond)) {
		t.Errorf("last instant = %v", r.LastInstant())
	}

	if !r.Contains(time.Date(2024, 1, 12, 23, 59, 59, 0, time.UTC)) {
		t.Error("last day must be included")
	}
	if r.Contains(wantTo) {
		t.Error("upper bound must be exclusive")
	}
	if !r.Contains(wantFrom) {
		t.Error("lower bound must be inclusive")
	}
}

func TestParseDayRange_SameDay(t *testing.T) {
	r, err := ParseDayRange("2024-02-29", "2024-02-29")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.To.Sub(r.From) != 24*time.Hour {
		t.Errorf("expected one day, got %v", r.To.Sub(r.From))
	}
}

func TestParseDayRange_Errors(t *testing.T) {
	tests := []struct {
		name        string
		from, to    string
		expectError error
	}{
		{name: "from after to", from: "2024-01-02", to: "2024-01-01", expectError: ErrInvalidDateRange},
		{name: "missing from", from: "", to: "2024-01-01", expectError: ErrInvalidArgument},
		{name: "bad format", from: "01/02/2024", to: "2024-01-03", expectError: ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDayRange(tt.from, tt.to)
			if !errors.Is(err, tt.expectError) {
				t.Fatalf("expected %v, got %v", tt.expectError, err)
			}
		})
	}
}

func TestNewDayRange_NormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("ECT", -5*3600)
	// 2024-05-01 22:00 in UTC-5 is 2024-05-02 in UTC
	r, err := NewDayRange(time.Date(2024, 5, 1, 22, 0, 0, 0, loc), time.Date(2024, 5, 1, 22, 0, 0, 0, loc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.From.Equal(time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("from = %v", r.From)
	}
}

func TestValidateClientID(t *testing.T) {
	id, err := ValidateClientID("  c-1 ")
	if err != nil || id != "c-1" {
		t.Fatalf("got %q, %v", id, err)
	}

	if _, err := ValidateClientID(" "); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}

	long := make([]byte, MaxClientIDLength+1)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := ValidateClientID(string(long)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}
