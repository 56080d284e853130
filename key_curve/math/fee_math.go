package math

import (
	"fmt"

	"github.com/krazyTry/keycurve-go/key_curve/shared"
	"github.com/shopspring/decimal"
)

// FeeTable holds the share of every trade routed to each destination.
// The four shares must sum to 1.
type FeeTable struct {
	Reserve  decimal.Decimal `json:"reserve"`
	Project  decimal.Decimal `json:"project"`
	Platform decimal.Decimal `json:"platform"`
	Referral decimal.Decimal `json:"referral"`
}

func DefaultFeeTable() FeeTable {
	return FeeTable{
		Reserve:  shared.DefaultFeeReserve,
		Project:  shared.DefaultFeeProject,
		Platform: shared.DefaultFeePlatform,
		Referral: shared.DefaultFeeReferral,
	}
}

func (t FeeTable) Sum() decimal.Decimal {
	return t.Reserve.Add(t.Project).Add(t.Platform).Add(t.Referral)
}

// Validate rejects negative shares and tables that do not sum to 1.
func (t FeeTable) Validate() error {
	shares := []struct {
		name string
		v    decimal.Decimal
	}{
		{"reserve", t.Reserve},
		{"project", t.Project},
		{"platform", t.Platform},
		{"referral", t.Referral},
	}
	for _, share := range shares {
		if share.v.IsNegative() {
			return fmt.Errorf("%w: fee %s must be >= 0, got %s", ErrInvalidCurveConfiguration, share.name, share.v)
		}
	}
	if t.Sum().Sub(shared.N1).Abs().GreaterThan(shared.FeeTableTolerance) {
		return fmt.Errorf("%w: fee table sums to %s, want 1", ErrInvalidCurveConfiguration, t.Sum())
	}
	return nil
}

// FeeBreakdown is the split of a trade's gross amount.
// Tax is only set on sells.
type FeeBreakdown struct {
	Reserve  decimal.Decimal `json:"reserve"`
	Project  decimal.Decimal `json:"project"`
	Platform decimal.Decimal `json:"platform"`
	Referral decimal.Decimal `json:"referral"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Sum of the four routed shares, excluding tax.
func (f FeeBreakdown) Sum() decimal.Decimal {
	return f.Reserve.Add(f.Project).Add(f.Platform).Add(f.Referral)
}

// SplitFees divides gross by table. The referral share absorbs rounding so the
// four shares always add back to gross exactly.
func SplitFees(gross decimal.Decimal, table FeeTable) FeeBreakdown {
	reserve := gross.Mul(table.Reserve).Round(shared.Precision)
	project := gross.Mul(table.Project).Round(shared.Precision)
	platform := gross.Mul(table.Platform).Round(shared.Precision)
	return FeeBreakdown{
		Reserve:  reserve,
		Project:  project,
		Platform: platform,
		Referral: gross.Sub(reserve).Sub(project).Sub(platform),
		Tax:      decimal.Zero,
		Total:    gross,
	}
}
