package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/dinofightergenesis/dinofighterg/internal/economy"
	"github.com/dinofightergenesis/dinofighterg/internal/model"
)

func amount(d decimal.Decimal) string {
	f, _ := d.Float64()
	return humanize.CommafWithDigits(f, 2)
}

// FormatBurnStats formats the global burn ledger.
func FormatBurnStats(g *model.GlobalBurnStats) string {
	var b strings.Builder
	b.WriteString("🔥 <b>Global burn</b>\n\n")
	b.WriteString(fmt.Sprintf("Ready to burn: %s\n", amount(g.ReadyToBurn)))
	b.WriteString(fmt.Sprintf("Total burnt: %s\n", amount(g.TotalBurnt)))
	if g.UpdatedAt > 0 {
		b.WriteString(fmt.Sprintf("Updated: %s\n", time.UnixMilli(g.UpdatedAt).UTC().Format("2006-01-02 15:04")))
	}
	return b.String()
}

// FormatBurn announces a completed burn.
func FormatBurn(holder string, target economy.BurnTarget, burnt, totalAfter decimal.Decimal) string {
	who := holder
	if who == "" {
		who = "operator"
	}
	return fmt.Sprintf("🔥 <b>%s burn</b> by %s\n\nBurnt: %s\nTotal burnt: %s",
		target, who, amount(burnt), amount(totalAfter))
}

// FormatJackpot announces a jackpot draw.
func FormatJackpot(holder string, draw economy.Draw) string {
	reels := make([]string, len(draw.Reels))
	for i, r := range draw.Reels {
		reels[i] = string(r)
	}
	return fmt.Sprintf("🎰 <b>JACKPOT</b> for %s\n\n[ %s ]", holder, strings.Join(reels, " | "))
}

// FormatSaleStatus formats the token sale state.
func FormatSaleStatus(st *economy.Status) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🦖 <b>Token sale</b> | %s\n\n", st.Phase))
	if st.Phase == economy.PhasePending {
		b.WriteString(fmt.Sprintf("Starts: %s (%s)\n", st.StartsAt.UTC().Format("2006-01-02 15:04"), humanize.Time(st.StartsAt)))
		b.WriteString(fmt.Sprintf("Opening price: $%s\n", st.Price.String()))
		return b.String()
	}
	b.WriteString(fmt.Sprintf("Epoch: %d\n", st.Epoch))
	b.WriteString(fmt.Sprintf("Price: $%s\n", st.Price.String()))
	b.WriteString(fmt.Sprintf("Next epoch: %s\n", st.NextEpochAt.UTC().Format("2006-01-02 15:04")))
	return b.String()
}
