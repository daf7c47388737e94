package session

import (
	"github.com/shopspring/decimal"

	"github.com/dinofightergenesis/dinofighterg/internal/economy"
)

// Observer is told about events worth announcing. Calls happen after the
// change is committed and must not block.
type Observer interface {
	Burned(holder string, target economy.BurnTarget, amount, totalAfter decimal.Decimal)
	Jackpot(holder string, draw economy.Draw)
	EpochChanged(status economy.Status)
}

type nopObserver struct{}

func (nopObserver) Burned(string, economy.BurnTarget, decimal.Decimal, decimal.Decimal) {}
func (nopObserver) Jackpot(string, economy.Draw)                                       {}
func (nopObserver) EpochChanged(economy.Status)                                        {}
