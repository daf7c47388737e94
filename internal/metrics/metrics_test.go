package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.Burnt("holder", decimal.NewFromInt(100000))
	m.Burnt("holder", decimal.NewFromInt(5))
	m.Spent("slot", decimal.NewFromInt(200000))
	m.Tickets(3)
	m.Spin("jackpot")
	m.Sale(decimal.RequireFromString("50.5"))
	m.Epoch(2)

	require.InDelta(t, 100005, testutil.ToFloat64(m.TokensBurnt.WithLabelValues("holder")), 1e-9)
	require.InDelta(t, 200000, testutil.ToFloat64(m.TokensSpent.WithLabelValues("slot")), 1e-9)
	require.InDelta(t, 3, testutil.ToFloat64(m.TicketsSold), 1e-9)
	require.InDelta(t, 1, testutil.ToFloat64(m.Spins.WithLabelValues("jackpot")), 1e-9)
	require.InDelta(t, 50.5, testutil.ToFloat64(m.SaleUSD), 1e-9)
	require.InDelta(t, 2, testutil.ToFloat64(m.SaleEpoch), 1e-9)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.Burnt("global", decimal.NewFromInt(1))
		m.Spin("no_win")
		m.Sessions(3)
	})
}
