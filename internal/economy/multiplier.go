package economy

import (
	"github.com/shopspring/decimal"

	"github.com/dinofightergenesis/dinofighterg/internal/model"
)

// multiplierTiers is evaluated top-down; the first tier present wins.
var multiplierTiers = []struct {
	Tiers      []model.Tier
	Multiplier decimal.Decimal
}{
	{[]model.Tier{model.TierLegend}, decimal.RequireFromString("1.50")},
	{[]model.Tier{model.TierKing}, decimal.RequireFromString("1.30")},
	{[]model.Tier{model.TierUnique}, decimal.RequireFromString("1.15")},
	{[]model.Tier{model.TierCommon, model.TierRare}, decimal.RequireFromString("1.05")},
}

// BaseMultiplier applies when no eligible tier is staked.
var BaseMultiplier = decimal.NewFromInt(1)

// Multiplier returns the earning multiplier for a set of staked tiers. Only
// the highest tier present matters; counts are irrelevant.
func Multiplier(tiers map[model.Tier]struct{}) decimal.Decimal {
	for _, row := range multiplierTiers {
		for _, t := range row.Tiers {
			if _, ok := tiers[t]; ok {
				return row.Multiplier
			}
		}
	}
	return BaseMultiplier
}

// StakedTiers collects the tiers of staked assets.
func StakedTiers(assets []model.StakedAsset) map[model.Tier]struct{} {
	set := make(map[model.Tier]struct{}, len(assets))
	for _, a := range assets {
		if a.Staked {
			set[a.Tier] = struct{}{}
		}
	}
	return set
}
