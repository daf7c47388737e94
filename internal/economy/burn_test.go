package economy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dinofightergenesis/dinofighterg/internal/model"
)

func TestBurnAll(t *testing.T) {
	_, _, err := BurnAll(model.BurnPool{})
	require.ErrorIs(t, err, ErrNothingToBurn)

	pool := Credit(model.BurnPool{TotalBurnt: dec("10")}, dec("15000"))
	pool, burnt, err := BurnAll(pool)
	require.NoError(t, err)
	requireDec(t, "15000", burnt)
	require.True(t, pool.ReadyToBurn.IsZero())
	requireDec(t, "15010", pool.TotalBurnt)
}

func TestCredit_IgnoresNonPositive(t *testing.T) {
	pool := Credit(model.BurnPool{}, dec("-5"))
	require.True(t, pool.ReadyToBurn.IsZero())
}

// Spending reward balance never shrinks readyToBurn+totalBurnt, and totalBurnt
// never decreases.
func TestBurnInvariant_AcrossOperations(t *testing.T) {
	p := DefaultParams()
	h := model.HolderAccount{AccruedBalance: dec("2000000")}
	r := model.RaffleAccount{}
	sum := func(h model.HolderAccount) string { return h.ReadyToBurn.Add(h.TotalBurnt).String() }

	lastTotal := h.TotalBurnt
	lastSum := dec(sum(h))
	step := func(next model.HolderAccount) {
		require.False(t, next.TotalBurnt.LessThan(lastTotal))
		require.False(t, dec(sum(next)).LessThan(lastSum))
		lastTotal, lastSum = next.TotalBurnt, dec(sum(next))
		h = next
	}

	next, _, err := p.PurchaseSlot(h)
	require.NoError(t, err)
	step(next)
	next, r, _, err = p.BuyTickets(h, r, 4)
	require.NoError(t, err)
	step(next)
	pool, _, err := BurnAll(h.BurnPool)
	require.NoError(t, err)
	next = h.Clone()
	next.BurnPool = pool
	step(next)
	next, _, err = p.PurchaseSlot(h)
	require.NoError(t, err)
	step(next)
	require.Equal(t, 4, r.TicketCount)
}
