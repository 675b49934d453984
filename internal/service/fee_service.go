package service

import (
	"github.com/shopspring/decimal"
)

const DefaultPlatformFeeRate = 0.10

var hundred = decimal.NewFromInt(100)

// FeeBreakdown is how a completed job's price is split.
type FeeBreakdown struct {
	Amount         float64
	PlatformFee    float64
	ProviderAmount float64
}

type FeeService interface {
	Split(amount float64) FeeBreakdown
	ToCents(amount float64) int64
}

type feeService struct {
	rate decimal.Decimal
}

func NewFeeService(rate float64) FeeService {
	return &feeService{rate: decimal.NewFromFloat(rate)}
}

// Split rounds the platform fee half-up to cents and gives the provider the
// remainder, so the two parts always add up to amount.
func (s *feeService) Split(amount float64) FeeBreakdown {
	total := decimal.NewFromFloat(amount)
	fee := total.Mul(s.rate).Round(2)
	return FeeBreakdown{
		Amount:         amount,
		PlatformFee:    fee.InexactFloat64(),
		ProviderAmount: total.Sub(fee).InexactFloat64(),
	}
}

// ToCents converts a currency amount to the smallest unit.
func (s *feeService) ToCents(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(hundred).Round(0).IntPart()
}
