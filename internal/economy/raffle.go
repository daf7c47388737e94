package economy

import (
	"github.com/shopspring/decimal"

	"github.com/dinofightergenesis/dinofighterg/internal/model"
)

// Symbol is one face of a raffle reel.
type Symbol string

// Symbols is the reel alphabet. Every reel samples it uniformly.
var Symbols = []Symbol{"egg", "bone", "claw", "fossil", "volcano", "dino"}

// Outcome classifies a draw.
type Outcome string

const (
	OutcomeNoWin        Outcome = "no_win"
	OutcomePartialMatch Outcome = "partial_match"
	OutcomeJackpot      Outcome = "jackpot"
)

// Rand is the randomness a spin needs; *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

// Draw is the full result of one spin.
type Draw struct {
	Reels   [3]Symbol `json:"reels"`
	Outcome Outcome   `json:"outcome"`
}

// TicketPurchase reports a ticket purchase.
type TicketPurchase struct {
	Quantity  int
	TotalCost decimal.Decimal
	Burn      decimal.Decimal
}

// BuyTickets debits quantity tickets at the fixed price and credits the burn
// share. Both accounts come back unchanged on error.
func (p Params) BuyTickets(h model.HolderAccount, r model.RaffleAccount, quantity int) (model.HolderAccount, model.RaffleAccount, TicketPurchase, error) {
	if quantity < 1 {
		return h, r, TicketPurchase{}, ErrInvalidAmount
	}
	total := p.TicketPrice.Mul(decimal.NewFromInt(int64(quantity)))
	if h.AccruedBalance.LessThan(total) {
		return h, r, TicketPurchase{}, ErrInsufficientBalance
	}
	burn := total.Mul(p.TicketBurnShare)

	next := h.Clone()
	next.AccruedBalance = next.AccruedBalance.Sub(total)
	next.BurnPool = Credit(next.BurnPool, burn)
	r.TicketCount += quantity
	return next, r, TicketPurchase{Quantity: quantity, TotalCost: total, Burn: burn}, nil
}

// Spin consumes one ticket and draws three reels.
func Spin(r model.RaffleAccount, rng Rand) (model.RaffleAccount, Draw, error) {
	if r.TicketCount <= 0 {
		return r, Draw{}, ErrNoTicketsAvailable
	}
	r.TicketCount--
	var d Draw
	for i := range d.Reels {
		d.Reels[i] = Symbols[rng.IntN(len(Symbols))]
	}
	d.Outcome = Classify(d.Reels)
	return r, d, nil
}

// Classify ranks a draw: three equal, then any pair, then nothing.
func Classify(reels [3]Symbol) Outcome {
	a, b, c := reels[0], reels[1], reels[2]
	switch {
	case a == b && b == c:
		return OutcomeJackpot
	case a == b || b == c || a == c:
		return OutcomePartialMatch
	default:
		return OutcomeNoWin
	}
}
