package settlement

import (
	"github.com/shopspring/decimal"

	pkgerrors "github.com/willowmarket/willow-backend/pkg/errors"
)

var (
	minRate = decimal.Zero
	maxRate = decimal.NewFromInt(100)
	hundred = decimal.NewFromInt(100)
)

// Split is the exact division of an order total between the marketplace and
// the seller. CommissionCents + SellerCents always equals the order total.
type Split struct {
	CommissionCents int64
	SellerCents     int64
}

// ComputeSplit derives the commission from the order total and rate. The
// commission rounds half-up to the nearest cent and the seller share is the
// remainder, so no cent is ever created or lost.
func ComputeSplit(totalCents int64, ratePercent decimal.Decimal) (Split, error) {
	if totalCents < 0 {
		return Split{}, pkgerrors.New(pkgerrors.CodeValidation, "order total must not be negative")
	}
	if err := ValidateRate(ratePercent); err != nil {
		return Split{}, err
	}

	commission := decimal.NewFromInt(totalCents).
		Mul(ratePercent).
		Div(hundred).
		Round(0)

	commissionCents := commission.IntPart()
	return Split{
		CommissionCents: commissionCents,
		SellerCents:     totalCents - commissionCents,
	}, nil
}

// ValidateRate enforces the commission rate contract: 0 to 100 percent with
// at most two decimal places.
func ValidateRate(ratePercent decimal.Decimal) error {
	if ratePercent.LessThan(minRate) || ratePercent.GreaterThan(maxRate) {
		return pkgerrors.New(pkgerrors.CodeValidation, "commission rate must be between 0 and 100")
	}
	if ratePercent.Exponent() < -2 {
		return pkgerrors.New(pkgerrors.CodeValidation, "commission rate allows at most two decimal places")
	}
	return nil
}
