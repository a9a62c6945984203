// Package revenue computes the commission split between driver and office.
//
// The split is pure arithmetic with no I/O: 70% of the taxable base goes to
// the driver, 30% to the office, each rounded independently to the nearest
// thousand (the currency has no minor unit in this domain). Because the
// shares are rounded independently, their sum can differ from the base by up
// to one rounding step; the residual is exposed, not silently reallocated.
package revenue

import (
	"github.com/shopspring/decimal"

	"parceldesk/internal/core/apperror"
	"parceldesk/internal/core/types"
)

var (
	driverRate = decimal.RequireFromString("0.70")
	officeRate = decimal.RequireFromString("0.30")
	step       = decimal.NewFromInt(1000)
)

// Shares is the result of splitting a taxable base.
type Shares struct {
	// Driver is the driver commission, rounded to the nearest 1000.
	Driver types.Money `json:"driver"`

	// Office is the office revenue, rounded to the nearest 1000.
	Office types.Money `json:"office"`

	// Base is the unrounded taxable base (cost - tax).
	Base types.Money `json:"base"`
}

// Residual is the rounding leftover: Base - Driver - Office.
// It may be negative, zero or positive and feeds reconciliation reports.
func (s Shares) Residual() types.Money {
	return s.Base.Sub(s.Driver).Sub(s.Office)
}

// Split computes driver and office shares from shipping cost and tax.
// Tax exceeding cost would produce a negative commission and is rejected
// before any write happens.
func Split(shippingCost, shippingTax types.Money) (Shares, error) {
	if shippingCost.IsNegative() {
		return Shares{}, apperror.NewInvalidAmount("shipping cost must not be negative").
			WithDetail("shippingCost", shippingCost.String())
	}
	if shippingTax.IsNegative() {
		return Shares{}, apperror.NewInvalidAmount("shipping tax must not be negative").
			WithDetail("shippingTax", shippingTax.String())
	}

	base := shippingCost.Sub(shippingTax)
	if base.IsNegative() {
		return Shares{}, apperror.NewInvalidAmount("shipping tax exceeds shipping cost").
			WithDetail("shippingCost", shippingCost.String()).
			WithDetail("shippingTax", shippingTax.String())
	}

	return Shares{
		Driver: roundToThousand(base.Mul(driverRate)),
		Office: roundToThousand(base.Mul(officeRate)),
		Base:   base,
	}, nil
}

// roundToThousand rounds to the nearest multiple of 1000, half up.
// decimal.Round is half-away-from-zero, which equals half-up for the
// non-negative amounts this package accepts.
func roundToThousand(v types.Money) types.Money {
	return v.Div(step).Round(0).Mul(step)
}
