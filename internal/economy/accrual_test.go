package economy

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dinofightergenesis/dinofighterg/internal/model"
)

func stakedHolder(anchor int64) model.HolderAccount {
	return model.HolderAccount{
		Assets: []model.StakedAsset{
			{ID: 1, Tier: model.TierCommon, BaseDailyRate: dec("1000"), Staked: true},
			{ID: 2, Tier: model.TierUnique, BaseDailyRate: dec("5000"), Staked: true},
			{ID: 3, Tier: model.TierRare, BaseDailyRate: dec("2500"), Staked: false},
		},
		LastAccrualAt: anchor,
	}
}

func TestAccrue_FullDay(t *testing.T) {
	h := Accrue(stakedHolder(1_000), 1_000+millisPerDay)
	// (1000+5000) * 1.15
	requireDec(t, "6900", h.AccruedBalance)
	require.EqualValues(t, 1_000+millisPerDay, h.LastAccrualAt)
}

func TestAccrue_TickCountIndependent(t *testing.T) {
	start := int64(1_700_000_000_000)
	once := Accrue(stakedHolder(start), start+3_600_000)

	ticked := stakedHolder(start)
	for now := start + 1_000; now <= start+3_600_000; now += 1_000 {
		ticked = Accrue(ticked, now)
	}
	diff := once.AccruedBalance.Sub(ticked.AccruedBalance).Abs()
	require.True(t, diff.LessThan(dec("0.000001")), "drift %s", diff)
	requireDec(t, "287.5", once.AccruedBalance)
}

func TestAccrue_ClockBackwardsAndFirstObservation(t *testing.T) {
	h := Accrue(stakedHolder(5_000), 4_000)
	require.True(t, h.AccruedBalance.IsZero())
	require.EqualValues(t, 5_000, h.LastAccrualAt)

	fresh := stakedHolder(0)
	fresh = Accrue(fresh, 9_000)
	require.True(t, fresh.AccruedBalance.IsZero())
	require.EqualValues(t, 9_000, fresh.LastAccrualAt)
}

func TestClaim(t *testing.T) {
	h := model.HolderAccount{AccruedBalance: dec("12.5")}
	next, claimed, ok := Claim(h)
	require.True(t, ok)
	requireDec(t, "12.5", claimed)
	require.True(t, next.AccruedBalance.IsZero())

	_, claimed, ok = Claim(next)
	require.False(t, ok)
	require.True(t, claimed.IsZero())
}

func TestStake_SettlesBeforeRateChange(t *testing.T) {
	h := stakedHolder(0)
	h.LastAccrualAt = 1
	next, err := Stake(h, 3, 1+millisPerDay)
	require.NoError(t, err)
	// The first day accrues at the old rate only.
	requireDec(t, "6900", next.AccruedBalance)
	require.True(t, next.Assets[2].Staked)
	require.EqualValues(t, 1+millisPerDay, next.Assets[2].StakedAt)
	require.False(t, h.Assets[2].Staked, "input must not be mutated")

	next = Accrue(next, 1+2*millisPerDay)
	// second day: 8500 * 1.15
	requireDec(t, "16675", next.AccruedBalance)
}

func TestStake_Errors(t *testing.T) {
	h := stakedHolder(1)
	h.Assets = append(h.Assets, model.StakedAsset{ID: 4, Tier: model.TierUnassigned, BaseDailyRate: decimal.Zero})

	_, err := Stake(h, 99, 10)
	require.ErrorIs(t, err, ErrUnknownAsset)
	_, err = Stake(h, 4, 10)
	require.ErrorIs(t, err, ErrUnassignedAsset)

	next, err := Unstake(h, 1, 1+millisPerDay)
	require.NoError(t, err)
	require.False(t, next.Assets[0].Staked)
	requireDec(t, "6900", next.AccruedBalance)
}
