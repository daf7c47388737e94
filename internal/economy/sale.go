package economy

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dinofightergenesis/dinofighterg/internal/model"
)

// SaleParams configures the token sale.
type SaleParams struct {
	// StartAt pins the sale start. When zero, the start is StartDelay after
	// the first observation.
	StartAt       time.Time
	StartDelay    time.Duration
	EpochDuration time.Duration
	BasePrice     decimal.Decimal // USD per token in epoch 0
	PriceGrowth   decimal.Decimal // per-epoch price factor
	WalletCap     decimal.Decimal // lifetime USD per wallet
	EpochCap      decimal.Decimal // USD per wallet per epoch
}

// DefaultSaleParams returns the launch sale configuration.
func DefaultSaleParams() SaleParams {
	return SaleParams{
		StartDelay:    45 * 24 * time.Hour,
		EpochDuration: 7 * 24 * time.Hour,
		BasePrice:     decimal.RequireFromString("0.00005"),
		PriceGrowth:   decimal.RequireFromString("1.10"),
		WalletCap:     decimal.NewFromInt(1000),
		EpochCap:      decimal.NewFromInt(250),
	}
}

func (p SaleParams) Validate() error {
	if p.EpochDuration <= 0 {
		return fmt.Errorf("sale epoch duration must be positive")
	}
	if p.StartAt.IsZero() && p.StartDelay < 0 {
		return fmt.Errorf("sale start delay must not be negative")
	}
	if !p.BasePrice.IsPositive() {
		return fmt.Errorf("sale base price must be positive")
	}
	if p.PriceGrowth.LessThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("sale price growth must be at least 1")
	}
	if !p.WalletCap.IsPositive() || !p.EpochCap.IsPositive() {
		return fmt.Errorf("sale caps must be positive")
	}
	return nil
}

// Phase is the sale state.
type Phase string

const (
	PhasePending Phase = "pending"
	PhaseLive    Phase = "live"
)

// Sale determines phase, epoch and price from wall-clock time. The start
// instant is fixed on first observation and never moves afterwards.
type Sale struct {
	params SaleParams
	clock  Clock

	once  sync.Once
	start time.Time
}

func NewSale(params SaleParams, clock Clock) *Sale {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Sale{params: params, clock: clock}
}

// Params returns the sale configuration.
func (s *Sale) Params() SaleParams { return s.params }

// Start returns the sale start instant, fixing it on first call.
func (s *Sale) Start() time.Time {
	s.once.Do(func() {
		if !s.params.StartAt.IsZero() {
			s.start = s.params.StartAt
			return
		}
		s.start = s.clock.Now().Add(s.params.StartDelay)
	})
	return s.start
}

// Phase reports whether the sale is live at now.
func (s *Sale) Phase(now time.Time) Phase {
	if now.Before(s.Start()) {
		return PhasePending
	}
	return PhaseLive
}

// Epoch returns the epoch index at now, or -1 while pending.
func (s *Sale) Epoch(now time.Time) int64 {
	start := s.Start()
	if now.Before(start) {
		return -1
	}
	return int64(now.Sub(start) / s.params.EpochDuration)
}

// Price returns the USD price per token in epoch e.
func (s *Sale) Price(e int64) decimal.Decimal {
	if e <= 0 {
		return s.params.BasePrice
	}
	return s.params.BasePrice.Mul(s.params.PriceGrowth.Pow(decimal.NewFromInt(e)))
}

// Status is a point-in-time view of the sale.
type Status struct {
	Phase       Phase           `json:"phase"`
	Epoch       int64           `json:"epoch"`
	Price       decimal.Decimal `json:"price"`
	StartsAt    time.Time       `json:"starts_at"`
	NextEpochAt time.Time       `json:"next_epoch_at"`
}

func (s *Sale) Status(now time.Time) Status {
	start := s.Start()
	st := Status{Phase: s.Phase(now), Epoch: s.Epoch(now), StartsAt: start}
	if st.Epoch < 0 {
		st.Price = s.Price(0)
		st.NextEpochAt = start
		return st
	}
	st.Price = s.Price(st.Epoch)
	st.NextEpochAt = start.Add(time.Duration(st.Epoch+1) * s.params.EpochDuration)
	return st
}

// Observe resets the per-epoch counter when the live epoch differs from the
// last one recorded on the account. Pending sales leave the account alone.
func (s *Sale) Observe(a model.SaleAccount, now time.Time) model.SaleAccount {
	epoch := s.Epoch(now)
	if epoch < 0 || epoch == a.LastRecordedEpoch {
		return a
	}
	a.EpochUSDSpent = decimal.Zero
	a.LastRecordedEpoch = epoch
	return a
}

// Token amounts outside these bounds are rejected before any arithmetic.
const (
	MaxTokenScale    = 18
	maxTokenExponent = 15
)

// MaxTokenAmount is the largest token amount a single Buy accepts.
var MaxTokenAmount = decimal.New(1, maxTokenExponent)

// validTokenAmount checks sign, scale and magnitude of a purchase amount.
func validTokenAmount(v decimal.Decimal) bool {
	if !v.IsPositive() {
		return false
	}
	exp := v.Exponent()
	if exp < -MaxTokenScale || exp > maxTokenExponent {
		return false
	}
	return !v.GreaterThan(MaxTokenAmount)
}

// SalePurchase reports an accepted purchase.
type SalePurchase struct {
	Tokens decimal.Decimal
	Epoch  int64
	Price  decimal.Decimal
	Cost   decimal.Decimal
}

// Buy prices tokenAmount at the current epoch and applies both caps.
func (s *Sale) Buy(a model.SaleAccount, tokenAmount decimal.Decimal, now time.Time) (model.SaleAccount, SalePurchase, error) {
	if s.Phase(now) == PhasePending {
		return a, SalePurchase{}, ErrSaleNotLive
	}
	if !validTokenAmount(tokenAmount) {
		return a, SalePurchase{}, ErrInvalidAmount
	}
	next := s.Observe(a, now)
	epoch := s.Epoch(now)
	price := s.Price(epoch)
	cost := tokenAmount.Mul(price)
	if next.LifetimeUSDSpent.Add(cost).GreaterThan(s.params.WalletCap) {
		return a, SalePurchase{}, ErrWalletCapExceeded
	}
	if next.EpochUSDSpent.Add(cost).GreaterThan(s.params.EpochCap) {
		return a, SalePurchase{}, ErrEpochCapExceeded
	}
	next.LifetimeUSDSpent = next.LifetimeUSDSpent.Add(cost)
	next.EpochUSDSpent = next.EpochUSDSpent.Add(cost)
	next.LastRecordedEpoch = epoch
	return next, SalePurchase{Tokens: tokenAmount, Epoch: epoch, Price: price, Cost: cost}, nil
}
