package economy

import (
	"github.com/shopspring/decimal"

	"github.com/dinofightergenesis/dinofighterg/internal/model"
)

const millisPerDay = 24 * 60 * 60 * 1000

var dayMillis = decimal.NewFromInt(millisPerDay)

// DailyRate is the multiplied per-day reward of the staked set.
func DailyRate(assets []model.StakedAsset) decimal.Decimal {
	sum := decimal.Zero
	for _, a := range assets {
		if a.Staked {
			sum = sum.Add(a.BaseDailyRate)
		}
	}
	return sum.Mul(Multiplier(StakedTiers(assets)))
}

// Accrue settles rewards earned between the account's anchor and nowMillis
// and moves the anchor forward. Elapsed time is measured from the persisted
// anchor, so missed or late ticks do not change the result. A clock that
// went backwards accrues nothing.
func Accrue(h model.HolderAccount, nowMillis int64) model.HolderAccount {
	if h.LastAccrualAt == 0 {
		h.LastAccrualAt = nowMillis
		return h
	}
	elapsed := nowMillis - h.LastAccrualAt
	if elapsed <= 0 {
		return h
	}
	earned := DailyRate(h.Assets).Mul(decimal.NewFromInt(elapsed)).Div(dayMillis)
	h.AccruedBalance = h.AccruedBalance.Add(earned)
	h.LastAccrualAt = nowMillis
	return h
}

// Claim empties the accrued balance. ok is false when there was nothing to claim.
func Claim(h model.HolderAccount) (next model.HolderAccount, claimed decimal.Decimal, ok bool) {
	if !h.AccruedBalance.IsPositive() {
		return h, decimal.Zero, false
	}
	claimed = h.AccruedBalance
	h.AccruedBalance = decimal.Zero
	return h, claimed, true
}

// Stake marks an asset staked. Accrual is settled first so the new rate only
// applies going forward. Staking an already staked asset is a no-op.
func Stake(h model.HolderAccount, id int, nowMillis int64) (model.HolderAccount, error) {
	i := h.Asset(id)
	if i < 0 {
		return h, ErrUnknownAsset
	}
	if h.Assets[i].Tier == model.TierUnassigned {
		return h, ErrUnassignedAsset
	}
	if h.Assets[i].Staked {
		return h, nil
	}
	next := Accrue(h.Clone(), nowMillis)
	next.Assets[i].Staked = true
	next.Assets[i].StakedAt = nowMillis
	return next, nil
}

// Unstake clears the staked flag after settling accrual.
func Unstake(h model.HolderAccount, id int, nowMillis int64) (model.HolderAccount, error) {
	i := h.Asset(id)
	if i < 0 {
		return h, ErrUnknownAsset
	}
	if !h.Assets[i].Staked {
		return h, nil
	}
	next := Accrue(h.Clone(), nowMillis)
	next.Assets[i].Staked = false
	return next, nil
}
