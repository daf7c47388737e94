package economy

import (
	"github.com/shopspring/decimal"

	"github.com/dinofightergenesis/dinofighterg/internal/model"
)

// SlotCost prices the next staking slot for a holder who owns slotCount slots.
func (p Params) SlotCost(slotCount int) decimal.Decimal {
	if slotCount <= p.SlotFreeCount {
		return p.SlotBaseCost
	}
	growth := p.SlotGrowth.Pow(decimal.NewFromInt(int64(slotCount - p.SlotFreeCount)))
	return p.SlotBaseCost.Mul(growth)
}

// SlotPurchase reports how a slot purchase was paid.
type SlotPurchase struct {
	Cost     decimal.Decimal
	Burn     decimal.Decimal
	Treasury decimal.Decimal
	Asset    model.StakedAsset
}

// PurchaseSlot debits the next slot's cost, credits the burn share to the
// holder's burn pool and appends an empty, unstaked slot. The treasury share
// is reported only. On error h is returned unchanged.
func (p Params) PurchaseSlot(h model.HolderAccount) (model.HolderAccount, SlotPurchase, error) {
	cost := p.SlotCost(len(h.Assets))
	if h.AccruedBalance.LessThan(cost) {
		return h, SlotPurchase{}, ErrInsufficientBalance
	}
	burn := cost.Mul(p.SlotBurnShare)
	asset := model.StakedAsset{
		ID:            nextAssetID(h.Assets),
		Tier:          model.TierUnassigned,
		BaseDailyRate: decimal.Zero,
	}

	next := h.Clone()
	next.AccruedBalance = next.AccruedBalance.Sub(cost)
	next.BurnPool = Credit(next.BurnPool, burn)
	next.Assets = append(next.Assets, asset)
	return next, SlotPurchase{Cost: cost, Burn: burn, Treasury: cost.Sub(burn), Asset: asset}, nil
}

func nextAssetID(assets []model.StakedAsset) int {
	last := 0
	for _, a := range assets {
		if a.ID > last {
			last = a.ID
		}
	}
	return last + 1
}
