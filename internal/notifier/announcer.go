package notifier

import (
	"context"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/dinofightergenesis/dinofighterg/internal/economy"
)

// Announcer relays economy events to a chat. Sends run in the background so
// callers never wait on the network.
type Announcer struct {
	ctx        context.Context
	tn         *TelegramNotifier
	maxRetries int
	send       func(text string)
}

func NewAnnouncer(ctx context.Context, tn *TelegramNotifier, maxRetries int) *Announcer {
	a := &Announcer{ctx: ctx, tn: tn, maxRetries: maxRetries}
	a.send = a.sendAsync
	return a
}

func (a *Announcer) sendAsync(text string) {
	if !a.tn.Enabled() {
		return
	}
	go func() {
		if err := a.tn.SendWithRetry(a.ctx, text, a.maxRetries); err != nil {
			log.WithError(err).Error("send announcement")
		}
	}()
}

func (a *Announcer) Burned(holder string, target economy.BurnTarget, amount, totalAfter decimal.Decimal) {
	a.send(FormatBurn(holder, target, amount, totalAfter))
}

func (a *Announcer) Jackpot(holder string, draw economy.Draw) {
	a.send(FormatJackpot(holder, draw))
}

func (a *Announcer) EpochChanged(st economy.Status) {
	a.send(FormatSaleStatus(&st))
}
