package product

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultCommissionRate applies when a product carries no explicit rate.
const DefaultCommissionRate = 20.0

// Commission returns the commission amount and customer-facing final price
// for a base price and rate: final = price * (1 + rate/100). Rate <= 0 falls
// back to the platform default.
func Commission(price string, rate float64) (commission, final string, err error) {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return "", "", fmt.Errorf("invalid price %q: %w", price, err)
	}
	if rate <= 0 {
		rate = DefaultCommissionRate
	}
	c := p.Mul(decimal.NewFromFloat(rate)).Div(decimal.NewFromInt(100)).Round(2)
	f := p.Add(c).Round(2)
	return c.StringFixed(2), f.StringFixed(2), nil
}

// WithPricing projects a product into its priced form.
func WithPricing(p Product) (Priced, error) {
	commission, final, err := Commission(p.Price, p.CommissionRate)
	if err != nil {
		return Priced{}, err
	}
	return Priced{Product: p, FinalPrice: final, CommissionAmount: commission}, nil
}
