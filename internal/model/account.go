package model

import "github.com/shopspring/decimal"

// HolderAccount is the reward-token side of a holder's record.
type HolderAccount struct {
	Assets         []StakedAsset   `json:"assets"`
	AccruedBalance decimal.Decimal `json:"accrued_balance"`
	BurnPool
	// LastAccrualAt is the instant (unix ms) up to which AccruedBalance has been settled.
	LastAccrualAt int64 `json:"last_accrual_ms"`
}

// Clone returns a deep copy so callers can build a next state without
// touching the committed one.
func (h HolderAccount) Clone() HolderAccount {
	out := h
	out.Assets = append([]StakedAsset(nil), h.Assets...)
	return out
}

// Asset returns the index of the asset with the given id, or -1.
func (h HolderAccount) Asset(id int) int {
	for i, a := range h.Assets {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// BurnPool is the pair of counters shared by per-holder and global burn ledgers.
type BurnPool struct {
	ReadyToBurn decimal.Decimal `json:"ready_to_burn"`
	TotalBurnt  decimal.Decimal `json:"total_burnt"`
}

// GlobalBurnStats is the process-wide burn ledger.
type GlobalBurnStats struct {
	BurnPool
	UpdatedAt int64 `json:"updated_at_ms"`
}

// RaffleAccount counts unspent raffle tickets.
type RaffleAccount struct {
	TicketCount int `json:"ticket_count"`
}

// SaleAccount tracks USD spent in the token sale.
type SaleAccount struct {
	LifetimeUSDSpent  decimal.Decimal `json:"lifetime_usd_spent"`
	EpochUSDSpent     decimal.Decimal `json:"epoch_usd_spent"`
	LastRecordedEpoch int64           `json:"last_recorded_epoch"`
}

// ReferralAccount accrues earnings proportional to ReferralCount.
type ReferralAccount struct {
	ReferralCount   int             `json:"referral_count"`
	PendingEarnings decimal.Decimal `json:"pending_earnings"`
	LastAccrualAt   int64           `json:"last_accrual_ms"`
	// ReferredBy is the holder who referred this one, set at most once.
	ReferredBy string `json:"referred_by,omitempty"`
}
