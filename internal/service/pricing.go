package service

import (
	"math"
	"time"

	"valet/internal/domain"
)

// PricingConfig contains the valet fee schedule.
type PricingConfig struct {
	BaseFee           float64       // Flat fee covering the base window
	BaseWindow        time.Duration // Parking time included in the base fee
	HourlyRate        float64       // Per started hour beyond the base window
	DailyMax          float64       // Cap on the parking fee per stay
	PrioritySurcharge float64       // Added for priority retrieval
}

// DefaultPricingConfig returns the default fee schedule.
func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		BaseFee:           15.0,
		BaseWindow:        3 * time.Hour,
		HourlyRate:        5.0,
		DailyMax:          40.0,
		PrioritySurcharge: 10.0,
	}
}

// PricingService computes retrieval fees from parking duration.
type PricingService struct {
	cfg PricingConfig
}

// NewPricingService creates a new PricingService.
func NewPricingService(cfg PricingConfig) *PricingService {
	return &PricingService{cfg: cfg}
}

// Fee returns the parking fee for the given duration. The base fee covers
// the base window; every started hour past it adds the hourly rate, capped
// at the daily max.
func (s *PricingService) Fee(parked time.Duration) float64 {
	if parked <= s.cfg.BaseWindow {
		return s.cfg.BaseFee
	}

	extraHours := math.Ceil((parked - s.cfg.BaseWindow).Hours())
	total := s.cfg.BaseFee + extraHours*s.cfg.HourlyRate

	return math.Min(total, s.cfg.DailyMax)
}

// Amount returns the total to charge for a retrieval: the parking fee plus
// the priority surcharge when the customer pays to jump the queue.
func (s *PricingService) Amount(parked time.Duration, isPriority bool) float64 {
	amount := s.Fee(parked)
	if isPriority {
		amount += s.cfg.PrioritySurcharge
	}
	return amount
}

// ValidatePaymentMethod validates a payment method string.
func ValidatePaymentMethod(method string) (domain.PaymentMethod, error) {
	switch domain.PaymentMethod(method) {
	case domain.PaymentMethodCash, domain.PaymentMethodOnline:
		return domain.PaymentMethod(method), nil
	case "":
		return domain.PaymentMethodCash, nil // Default to pay at counter
	default:
		return "", ErrInvalidPaymentMethod
	}
}
