package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Tier is the rarity class of a staked asset.
type Tier string

const (
	TierCommon     Tier = "common"
	TierRare       Tier = "rare"
	TierUnique     Tier = "unique"
	TierKing       Tier = "king"
	TierLegend     Tier = "legend"
	TierUnassigned Tier = "unassigned"
)

// ParseTier maps a lowercase tier name to a Tier.
func ParseTier(s string) (Tier, error) {
	switch t := Tier(s); t {
	case TierCommon, TierRare, TierUnique, TierKing, TierLegend, TierUnassigned:
		return t, nil
	}
	return "", fmt.Errorf("unknown tier %q", s)
}

// StakedAsset is one collectible owned by a holder. Assets are never deleted;
// unstaking only clears Staked.
type StakedAsset struct {
	ID            int             `json:"id"`
	Tier          Tier            `json:"tier"`
	BaseDailyRate decimal.Decimal `json:"base_daily_rate"`
	Staked        bool            `json:"staked"`
	StakedAt      int64           `json:"staked_at_ms"`
}
