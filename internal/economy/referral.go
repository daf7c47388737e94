package economy

import (
	"github.com/shopspring/decimal"

	"github.com/dinofightergenesis/dinofighterg/internal/model"
)

// AccrueReferral credits pending referral earnings up to nowMillis.
func (p Params) AccrueReferral(r model.ReferralAccount, nowMillis int64) model.ReferralAccount {
	if r.LastAccrualAt == 0 {
		r.LastAccrualAt = nowMillis
		return r
	}
	elapsed := nowMillis - r.LastAccrualAt
	if elapsed <= 0 {
		return r
	}
	if r.ReferralCount > 0 {
		earned := p.ReferralDailyReward.
			Mul(decimal.NewFromInt(int64(r.ReferralCount))).
			Mul(decimal.NewFromInt(elapsed)).
			Div(dayMillis)
		r.PendingEarnings = r.PendingEarnings.Add(earned)
	}
	r.LastAccrualAt = nowMillis
	return r
}

// ClaimReferral moves pending referral earnings into the accrued balance.
func ClaimReferral(h model.HolderAccount, r model.ReferralAccount) (model.HolderAccount, model.ReferralAccount, decimal.Decimal, bool) {
	if !r.PendingEarnings.IsPositive() {
		return h, r, decimal.Zero, false
	}
	claimed := r.PendingEarnings
	h.AccruedBalance = h.AccruedBalance.Add(claimed)
	r.PendingEarnings = decimal.Zero
	return h, r, claimed, true
}
