// Package metrics exposes economy counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// Metrics holds the economy collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	TokensBurnt    *prometheus.CounterVec
	TokensSpent    *prometheus.CounterVec
	TicketsSold    prometheus.Counter
	Spins          *prometheus.CounterVec
	SaleUSD        prometheus.Counter
	SaleEpoch      prometheus.Gauge
	ActiveSessions prometheus.Gauge
	TickDuration   prometheus.Histogram
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TokensBurnt: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dinofighter_tokens_burnt_total",
			Help: "Reward tokens moved from ready-to-burn into total burnt",
		}, []string{"target"}),
		TokensSpent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dinofighter_tokens_spent_total",
			Help: "Reward tokens spent by purchase kind",
		}, []string{"kind"}),
		TicketsSold: factory.NewCounter(prometheus.CounterOpts{
			Name: "dinofighter_raffle_tickets_sold_total",
			Help: "Raffle tickets sold",
		}),
		Spins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dinofighter_raffle_spins_total",
			Help: "Raffle spins by outcome",
		}, []string{"outcome"}),
		SaleUSD: factory.NewCounter(prometheus.CounterOpts{
			Name: "dinofighter_sale_usd_total",
			Help: "USD committed in the token sale",
		}),
		SaleEpoch: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dinofighter_sale_epoch",
			Help: "Current sale epoch, -1 while pending",
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dinofighter_active_sessions",
			Help: "Holder sessions currently open",
		}),
		TickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "dinofighter_accrual_tick_seconds",
			Help:    "Duration of one accrual tick across all sessions",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
	}
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func (m *Metrics) Burnt(target string, amount decimal.Decimal) {
	if m == nil {
		return
	}
	m.TokensBurnt.WithLabelValues(target).Add(toFloat(amount))
}

func (m *Metrics) Spent(kind string, amount decimal.Decimal) {
	if m == nil {
		return
	}
	m.TokensSpent.WithLabelValues(kind).Add(toFloat(amount))
}

func (m *Metrics) Tickets(n int) {
	if m == nil {
		return
	}
	m.TicketsSold.Add(float64(n))
}

func (m *Metrics) Spin(outcome string) {
	if m == nil {
		return
	}
	m.Spins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Sale(cost decimal.Decimal) {
	if m == nil {
		return
	}
	m.SaleUSD.Add(toFloat(cost))
}

func (m *Metrics) Epoch(e int64) {
	if m == nil {
		return
	}
	m.SaleEpoch.Set(float64(e))
}

func (m *Metrics) Sessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}

func (m *Metrics) ObserveTick(seconds float64) {
	if m == nil {
		return
	}
	m.TickDuration.Observe(seconds)
}
