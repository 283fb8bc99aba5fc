package service

import (
	"errors"
	"testing"
	"time"

	"valet/internal/domain"
)

func TestPricingFee(t *testing.T) {
	t.Parallel()
	pricing := NewPricingService(DefaultPricingConfig())

	tests := []struct {
		name   string
		parked time.Duration
		want   float64
	}{
		{"within base window", 30 * time.Minute, 15},
		{"exactly base window", 3 * time.Hour, 15},
		{"one minute over starts an hour", 3*time.Hour + time.Minute, 20},
		{"one extra hour", 4 * time.Hour, 20},
		{"partial second hour rounds up", 4*time.Hour + 30*time.Minute, 25},
		{"reaches daily max", 8 * time.Hour, 40},
		{"capped at daily max", 24 * time.Hour, 40},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := pricing.Fee(tt.parked); got != tt.want {
				t.Errorf("Fee(%v) = %v, want %v", tt.parked, got, tt.want)
			}
		})
	}
}

func TestPricingAmountPrioritySurcharge(t *testing.T) {
	t.Parallel()
	pricing := NewPricingService(DefaultPricingConfig())

	if got := pricing.Amount(time.Hour, false); got != 15 {
		t.Errorf("standard amount = %v, want 15", got)
	}
	if got := pricing.Amount(time.Hour, true); got != 25 {
		t.Errorf("priority amount = %v, want 25", got)
	}

	// The surcharge is added on top of the capped fee.
	if got := pricing.Amount(24*time.Hour, true); got != 50 {
		t.Errorf("capped priority amount = %v, want 50", got)
	}
}

func TestValidatePaymentMethod(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    domain.PaymentMethod
		wantErr error
	}{
		{"CASH", domain.PaymentMethodCash, nil},
		{"ONLINE", domain.PaymentMethodOnline, nil},
		{"", domain.PaymentMethodCash, nil},
		{"CRYPTO", "", ErrInvalidPaymentMethod},
	}

	for _, tt := range tests {
		got, err := ValidatePaymentMethod(tt.in)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("ValidatePaymentMethod(%q) err = %v, want %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ValidatePaymentMethod(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
