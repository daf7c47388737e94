package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dinofightergenesis/dinofighterg/internal/model"
)

var testRates = model.SeedRates{
	model.TierCommon: decimal.NewFromInt(1000),
	model.TierRare:   decimal.NewFromInt(2500),
	model.TierUnique: decimal.NewFromInt(5000),
}

func TestRepository_DefaultsForAbsentDocument(t *testing.T) {
	repo := NewRepository(NewMemoryStore(), testRates)
	rec, exists, err := repo.LoadUser(context.Background(), "alice", 42)
	require.NoError(t, err)
	require.False(t, exists)
	require.Len(t, rec.Holder.Assets, 3)
	require.Equal(t, model.TierUnique, rec.Holder.Assets[2].Tier)
	require.EqualValues(t, -1, rec.Sale.LastRecordedEpoch)
	require.EqualValues(t, 42, rec.Holder.LastAccrualAt)
}

func TestRepository_RoundTripAndPartialDocument(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	repo := NewRepository(s, testRates)

	rec := repo.Default(1)
	rec.Holder.AccruedBalance = decimal.RequireFromString("123.456")
	rec.Raffle.TicketCount = 4
	require.NoError(t, repo.SaveUser(ctx, "bob", rec))

	got, exists, err := repo.LoadUser(ctx, "bob", 99)
	require.NoError(t, err)
	require.True(t, exists)
	require.True(t, got.Holder.AccruedBalance.Equal(rec.Holder.AccruedBalance))
	require.Equal(t, 4, got.Raffle.TicketCount)

	// A document written by an older client with only the raffle section.
	require.NoError(t, s.Put(ctx, HolderKey("carol"), Document{model.FieldRaffle: raw(`{"ticket_count":2}`)}))
	got, _, err = repo.LoadUser(ctx, "carol", 5)
	require.NoError(t, err)
	require.Equal(t, 2, got.Raffle.TicketCount)
	require.Len(t, got.Holder.Assets, 3)
	require.EqualValues(t, -1, got.Sale.LastRecordedEpoch)
}

func TestRepository_GlobalBurn(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewMemoryStore(), testRates)
	g, err := repo.LoadGlobalBurn(ctx)
	require.NoError(t, err)
	require.True(t, g.ReadyToBurn.IsZero())

	g.ReadyToBurn = decimal.NewFromInt(10)
	require.NoError(t, repo.SaveGlobalBurn(ctx, g))
	g2, err := repo.LoadGlobalBurn(ctx)
	require.NoError(t, err)
	require.True(t, g2.ReadyToBurn.Equal(decimal.NewFromInt(10)))
}

func TestRepository_WatchUser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	repo := NewRepository(NewMemoryStore(), testRates)

	ch, err := repo.WatchUser(ctx, "dave", 1)
	require.NoError(t, err)
	first := <-ch
	require.Len(t, first.Holder.Assets, 3)

	rec := repo.Default(1)
	rec.Raffle.TicketCount = 9
	require.NoError(t, repo.SaveUser(ctx, "dave", rec))
	select {
	case got := <-ch:
		require.Equal(t, 9, got.Raffle.TicketCount)
	case <-time.After(time.Second):
		t.Fatal("no update")
	}
}
