// Package commission computes the platform/vendor split for a sale.
package commission

import (
	"github.com/shopspring/decimal"

	pkgerrors "github.com/inkshelf/inkshelf-backend/pkg/errors"
)

// DefaultRatePercent is applied to vendors that never negotiated a custom rate.
const DefaultRatePercent = 10

// Split is the outcome of applying a commission rate to a gross amount.
// PlatformCents + VendorCents always equals TotalCents.
type Split struct {
	TotalCents    int64
	VendorCents   int64
	PlatformCents int64
	RatePercent   int
}

var oneHundred = decimal.NewFromInt(100)

// Calculate splits totalCents between platform and vendor. The platform share
// is rounded half-up to a whole cent and the vendor receives the remainder, so
// the two shares reassemble the total exactly.
func Calculate(totalCents int64, ratePercent int) (Split, error) {
	if totalCents < 0 {
		return Split{}, pkgerrors.New(pkgerrors.CodeValidation, "total amount must not be negative")
	}
	if ratePercent < 0 || ratePercent > 100 {
		return Split{}, pkgerrors.New(pkgerrors.CodeValidation, "commission rate must be between 0 and 100")
	}

	platform := decimal.NewFromInt(totalCents).
		Mul(decimal.NewFromInt(int64(ratePercent))).
		Div(oneHundred).
		Round(0).
		IntPart()

	return Split{
		TotalCents:    totalCents,
		VendorCents:   totalCents - platform,
		PlatformCents: platform,
		RatePercent:   ratePercent,
	}, nil
}

// PlatformOnly assigns the whole amount to the platform, used for ebooks that
// have no owning vendor.
func PlatformOnly(totalCents int64) (Split, error) {
	if totalCents < 0 {
		return Split{}, pkgerrors.New(pkgerrors.CodeValidation, "total amount must not be negative")
	}
	return Split{
		TotalCents:    totalCents,
		VendorCents:   0,
		PlatformCents: totalCents,
		RatePercent:   100,
	}, nil
}
