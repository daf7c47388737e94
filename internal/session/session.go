package session

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/dinofightergenesis/dinofighterg/internal/economy"
	"github.com/dinofightergenesis/dinofighterg/internal/model"
	"github.com/dinofightergenesis/dinofighterg/internal/recorder"
)

// Session is the single writer for one holder's record.
type Session struct {
	id string
	m  *Manager

	mu  sync.Mutex
	rec model.UserRecord

	spinning atomic.Bool
	// lastSeen is the clock reading in unix millis of the last Open.
	lastSeen atomic.Int64
	watchers atomic.Int32
}

// ID returns the holder identity.
func (s *Session) ID() string { return s.id }

// Snapshot returns a copy of the committed record.
func (s *Session) Snapshot() model.UserRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec.Clone()
}

// settled returns a copy of the record with accrual settled up to nowMs.
// Callers hold s.mu.
func (s *Session) settled(nowMs int64) model.UserRecord {
	next := s.rec.Clone()
	next.Holder = economy.Accrue(next.Holder, nowMs)
	next.Referral = s.m.deps.Params.AccrueReferral(next.Referral, nowMs)
	return next
}

// commit writes next and adopts it. Callers hold s.mu.
func (s *Session) commit(ctx context.Context, next model.UserRecord) error {
	if err := s.m.deps.Repo.SaveUser(ctx, s.id, next); err != nil {
		return err
	}
	s.rec = next
	return nil
}

// update runs fn on a settled copy of the record and commits the result.
// fn returning an error aborts without writing.
func (s *Session) update(ctx context.Context, fn func(next *model.UserRecord, nowMs int64) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	nowMs := s.m.Now().UnixMilli()
	next := s.settled(nowMs)
	if err := fn(&next, nowMs); err != nil {
		return err
	}
	return s.commit(ctx, next)
}

// Tick settles reward and referral accrual up to now. Nothing is written
// when no balance moved.
func (s *Session) Tick(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.settled(s.m.Now().UnixMilli())
	if next.Holder.AccruedBalance.Equal(s.rec.Holder.AccruedBalance) &&
		next.Referral.PendingEarnings.Equal(s.rec.Referral.PendingEarnings) {
		return nil
	}
	return s.commit(ctx, next)
}

// ObserveSale resets the per-epoch spend when the sale epoch moved on.
func (s *Session) ObserveSale(ctx context.Context) error {
	s.mu.Lock()
	observed := s.m.deps.Sale.Observe(s.rec.Sale, s.m.Now())
	unchanged := observed.LastRecordedEpoch == s.rec.Sale.LastRecordedEpoch
	s.mu.Unlock()
	if unchanged {
		return nil
	}
	return s.update(ctx, func(next *model.UserRecord, _ int64) error {
		next.Sale = s.m.deps.Sale.Observe(next.Sale, s.m.Now())
		return nil
	})
}

// Claim empties the accrued reward balance. ok is false when there was
// nothing to claim.
func (s *Session) Claim(ctx context.Context) (claimed decimal.Decimal, ok bool, err error) {
	err = s.update(ctx, func(next *model.UserRecord, _ int64) error {
		next.Holder, claimed, ok = economy.Claim(next.Holder)
		return nil
	})
	if err != nil || !ok {
		return decimal.Zero, false, err
	}
	s.recordClaim("REWARD", claimed)
	return claimed, true, nil
}

func (s *Session) Stake(ctx context.Context, assetID int) error {
	return s.update(ctx, func(next *model.UserRecord, nowMs int64) error {
		h, err := economy.Stake(next.Holder, assetID, nowMs)
		if err != nil {
			return err
		}
		next.Holder = h
		return nil
	})
}

func (s *Session) Unstake(ctx context.Context, assetID int) error {
	return s.update(ctx, func(next *model.UserRecord, nowMs int64) error {
		h, err := economy.Unstake(next.Holder, assetID, nowMs)
		if err != nil {
			return err
		}
		next.Holder = h
		return nil
	})
}

// SlotPrice is the cost of the next slot.
func (s *Session) SlotPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.deps.Params.SlotCost(len(s.rec.Holder.Assets))
}

// PurchaseSlot buys one more staking slot.
func (s *Session) PurchaseSlot(ctx context.Context) (economy.SlotPurchase, error) {
	var res economy.SlotPurchase
	var balance decimal.Decimal
	err := s.update(ctx, func(next *model.UserRecord, _ int64) error {
		h, p, err := s.m.deps.Params.PurchaseSlot(next.Holder)
		if err != nil {
			return err
		}
		next.Holder, res, balance = h, p, h.AccruedBalance
		return nil
	})
	if err != nil {
		return economy.SlotPurchase{}, err
	}
	s.recordPurchase("SLOT", 1, res.Cost, res.Burn, res.Treasury, balance)
	log.WithFields(log.Fields{"holder": s.id, "cost": res.Cost.String(), "slot": res.Asset.ID}).Info("slot purchased")
	return res, nil
}

// BuyTickets buys quantity raffle tickets.
func (s *Session) BuyTickets(ctx context.Context, quantity int) (economy.TicketPurchase, error) {
	var res economy.TicketPurchase
	var balance decimal.Decimal
	err := s.update(ctx, func(next *model.UserRecord, _ int64) error {
		h, r, p, err := s.m.deps.Params.BuyTickets(next.Holder, next.Raffle, quantity)
		if err != nil {
			return err
		}
		next.Holder, next.Raffle, res, balance = h, r, p, h.AccruedBalance
		return nil
	})
	if err != nil {
		return economy.TicketPurchase{}, err
	}
	s.recordPurchase("TICKETS", quantity, res.TotalCost, res.Burn, res.TotalCost.Sub(res.Burn), balance)
	s.m.deps.Metrics.Tickets(quantity)
	return res, nil
}

// Spin draws once. A second Spin while one is outstanding is rejected, not queued.
func (s *Session) Spin(ctx context.Context) (economy.Draw, error) {
	if !s.spinning.CompareAndSwap(false, true) {
		return economy.Draw{}, ErrAlreadySpinning
	}
	defer s.spinning.Store(false)

	var draw economy.Draw
	var left int
	err := s.update(ctx, func(next *model.UserRecord, _ int64) error {
		r, d, err := economy.Spin(next.Raffle, s.m.deps.Rand)
		if err != nil {
			return err
		}
		next.Raffle, draw, left = r, d, r.TicketCount
		return nil
	})
	if err != nil {
		return economy.Draw{}, err
	}

	reels := make([]string, len(draw.Reels))
	for i, r := range draw.Reels {
		reels[i] = string(r)
	}
	if err := s.m.deps.Recorder.RecordSpin(&recorder.SpinEvent{
		Holder: s.id, Reels: strings.Join(reels, ","), Outcome: string(draw.Outcome), TicketsLeft: left,
	}); err != nil {
		log.WithError(err).Error("record spin")
	}
	s.m.deps.Metrics.Spin(string(draw.Outcome))
	if draw.Outcome == economy.OutcomeJackpot {
		s.m.deps.Observer.Jackpot(s.id, draw)
	}
	return draw, nil
}

// BuySale buys tokenAmount tokens in the current sale epoch.
func (s *Session) BuySale(ctx context.Context, tokenAmount decimal.Decimal) (economy.SalePurchase, error) {
	var res economy.SalePurchase
	var lifetime decimal.Decimal
	err := s.update(ctx, func(next *model.UserRecord, _ int64) error {
		a, p, err := s.m.deps.Sale.Buy(next.Sale, tokenAmount, s.m.Now())
		if err != nil {
			return err
		}
		next.Sale, res, lifetime = a, p, a.LifetimeUSDSpent
		return nil
	})
	if err != nil {
		return economy.SalePurchase{}, err
	}
	if err := s.m.deps.Recorder.RecordSale(&recorder.SaleEvent{
		Holder: s.id, Epoch: res.Epoch, Tokens: res.Tokens, Price: res.Price, Cost: res.Cost, LifetimeAfter: lifetime,
	}); err != nil {
		log.WithError(err).Error("record sale")
	}
	s.m.deps.Metrics.Sale(res.Cost)
	return res, nil
}

// Burn burns the holder's own ready-to-burn pool.
func (s *Session) Burn(ctx context.Context) (decimal.Decimal, error) {
	var burnt, total decimal.Decimal
	err := s.update(ctx, func(next *model.UserRecord, _ int64) error {
		pool, b, err := economy.BurnAll(next.Holder.BurnPool)
		if err != nil {
			return err
		}
		next.Holder.BurnPool, burnt, total = pool, b, pool.TotalBurnt
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	s.m.afterBurn(s.id, economy.TargetHolder, burnt, total)
	return burnt, nil
}

// ClaimReferral moves pending referral earnings into the reward balance.
func (s *Session) ClaimReferral(ctx context.Context) (claimed decimal.Decimal, ok bool, err error) {
	err = s.update(ctx, func(next *model.UserRecord, _ int64) error {
		next.Holder, next.Referral, claimed, ok = economy.ClaimReferral(next.Holder, next.Referral)
		return nil
	})
	if err != nil || !ok {
		return decimal.Zero, false, err
	}
	s.recordClaim("REFERRAL", claimed)
	return claimed, true, nil
}

// SetReferrer records who referred this holder and credits the referrer.
func (s *Session) SetReferrer(ctx context.Context, referrerID string) error {
	if referrerID == "" || referrerID == s.id {
		return ErrInvalidReferral
	}
	known, err := s.m.Exists(ctx, referrerID)
	if err != nil {
		return err
	}
	if !known {
		return ErrInvalidReferral
	}
	err = s.update(ctx, func(next *model.UserRecord, _ int64) error {
		if next.Referral.ReferredBy != "" {
			return ErrAlreadyReferred
		}
		next.Referral.ReferredBy = referrerID
		return nil
	})
	if err != nil {
		return err
	}
	referrer, err := s.m.Open(ctx, referrerID)
	if err != nil {
		return err
	}
	return referrer.update(ctx, func(next *model.UserRecord, _ int64) error {
		next.Referral.ReferralCount++
		return nil
	})
}

func (s *Session) recordClaim(kind string, amount decimal.Decimal) {
	if err := s.m.deps.Recorder.RecordClaim(&recorder.ClaimEvent{Holder: s.id, Kind: kind, Amount: amount}); err != nil {
		log.WithError(err).Error("record claim")
	}
}

func (s *Session) recordPurchase(kind string, qty int, cost, burn, treasury, balance decimal.Decimal) {
	if err := s.m.deps.Recorder.RecordPurchase(&recorder.PurchaseEvent{
		Holder: s.id, Kind: kind, Quantity: qty, Cost: cost, Burn: burn, Treasury: treasury, BalanceAfter: balance,
	}); err != nil {
		log.WithError(err).Error("record purchase")
	}
	s.m.deps.Metrics.Spent(strings.ToLower(kind), cost)
}
