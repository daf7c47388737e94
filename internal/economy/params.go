package economy

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dinofightergenesis/dinofighterg/internal/model"
)

// Params holds the reward-token economics.
type Params struct {
	// TierRates is the base daily reward for each tier.
	TierRates model.SeedRates

	SlotBaseCost  decimal.Decimal
	SlotFreeCount int // slots priced at SlotBaseCost before growth starts
	SlotGrowth    decimal.Decimal
	SlotBurnShare decimal.Decimal

	TicketPrice     decimal.Decimal
	TicketBurnShare decimal.Decimal

	// ReferralDailyReward is credited per referral per day.
	ReferralDailyReward decimal.Decimal
}

// DefaultParams returns the production economics.
func DefaultParams() Params {
	return Params{
		TierRates: model.SeedRates{
			model.TierCommon:     decimal.NewFromInt(1000),
			model.TierRare:       decimal.NewFromInt(2500),
			model.TierUnique:     decimal.NewFromInt(5000),
			model.TierKing:       decimal.NewFromInt(10000),
			model.TierLegend:     decimal.NewFromInt(25000),
			model.TierUnassigned: decimal.Zero,
		},
		SlotBaseCost:        decimal.NewFromInt(200000),
		SlotFreeCount:       3,
		SlotGrowth:          decimal.RequireFromString("1.5"),
		SlotBurnShare:       decimal.RequireFromString("0.5"),
		TicketPrice:         decimal.NewFromInt(50000),
		TicketBurnShare:     decimal.RequireFromString("0.10"),
		ReferralDailyReward: decimal.NewFromInt(1000),
	}
}

// Validate ensures the parameters are self-consistent.
func (p Params) Validate() error {
	if !p.SlotBaseCost.IsPositive() {
		return fmt.Errorf("slot base cost must be positive")
	}
	if p.SlotFreeCount < 0 {
		return fmt.Errorf("slot free count must not be negative")
	}
	if p.SlotGrowth.LessThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("slot growth must be at least 1")
	}
	if !p.TicketPrice.IsPositive() {
		return fmt.Errorf("ticket price must be positive")
	}
	for name, share := range map[string]decimal.Decimal{"slot": p.SlotBurnShare, "ticket": p.TicketBurnShare} {
		if share.IsNegative() || share.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("%s burn share must be within [0,1]", name)
		}
	}
	for tier, rate := range p.TierRates {
		if rate.IsNegative() {
			return fmt.Errorf("rate for tier %s must not be negative", tier)
		}
	}
	if p.ReferralDailyReward.IsNegative() {
		return fmt.Errorf("referral daily reward must not be negative")
	}
	return nil
}
