package recorder

import "github.com/shopspring/decimal"

// BurnEvent records a burn-all on either ledger.
type BurnEvent struct {
	Holder     string // empty for the global ledger
	Target     string // "holder" or "global"
	Amount     decimal.Decimal
	TotalAfter decimal.Decimal
}

// PurchaseEvent records a reward-token spend.
type PurchaseEvent struct {
	Holder       string
	Kind         string // "SLOT" or "TICKETS"
	Quantity     int
	Cost         decimal.Decimal
	Burn         decimal.Decimal
	Treasury     decimal.Decimal
	BalanceAfter decimal.Decimal
}

// SpinEvent records one raffle draw.
type SpinEvent struct {
	Holder      string
	Reels       string
	Outcome     string
	TicketsLeft int
}

// SaleEvent records an accepted sale purchase.
type SaleEvent struct {
	Holder        string
	Epoch         int64
	Tokens        decimal.Decimal
	Price         decimal.Decimal
	Cost          decimal.Decimal
	LifetimeAfter decimal.Decimal
}

// ClaimEvent records a reward or referral claim.
type ClaimEvent struct {
	Holder string
	Kind   string // "REWARD" or "REFERRAL"
	Amount decimal.Decimal
}

// Recorder persists an append-only history of economic events.
type Recorder interface {
	RecordBurn(evt *BurnEvent) error
	RecordPurchase(evt *PurchaseEvent) error
	RecordSpin(evt *SpinEvent) error
	RecordSale(evt *SaleEvent) error
	RecordClaim(evt *ClaimEvent) error
	Close() error
}
