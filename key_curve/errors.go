package key_curve

import "github.com/krazyTry/keycurve-go/key_curve/math"

var (
	ErrInvalidInput              = math.ErrInvalidInput
	ErrInvalidCurveConfiguration = math.ErrInvalidCurveConfiguration
)

// Advisory messages attached to quotes.
const (
	WarnHighImpactFormat = "High price impact: %s%%"
	WarnAmountTooSmall   = "Amount too small to buy meaningful keys"
	WarnNothingToSell    = "No keys available to sell"
	WarnSellClamped      = "Sell clamped to keep at least one key in circulation"
	WarnNotConverged     = "Inverse search did not converge; showing best estimate"
	WarnPriceMismatch    = "Current price does not match curve price at supply"
	WarnMinCostApplied   = "Minimum buy cost applied; cost exceeds the curve price for these keys"
)
