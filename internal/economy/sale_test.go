package economy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dinofightergenesis/dinofighterg/internal/model"
)

var saleT0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func liveSale(p SaleParams) *Sale {
	p.StartAt = saleT0
	return NewSale(p, &fixedClock{t: saleT0})
}

func TestSale_StartFixedOnFirstObservation(t *testing.T) {
	clock := &fixedClock{t: saleT0}
	s := NewSale(DefaultSaleParams(), clock)
	start := s.Start()
	require.Equal(t, saleT0.Add(45*24*time.Hour), start)

	clock.t = saleT0.Add(10 * 24 * time.Hour)
	require.Equal(t, start, s.Start())
	require.Equal(t, PhasePending, s.Phase(clock.t))
	require.EqualValues(t, -1, s.Epoch(clock.t))
	require.Equal(t, PhaseLive, s.Phase(start))
}

func TestSale_EpochAndPrice(t *testing.T) {
	s := liveSale(DefaultSaleParams())
	week := 7 * 24 * time.Hour
	require.EqualValues(t, 0, s.Epoch(saleT0))
	require.EqualValues(t, 0, s.Epoch(saleT0.Add(week-time.Millisecond)))
	require.EqualValues(t, 1, s.Epoch(saleT0.Add(week)))
	require.EqualValues(t, 3, s.Epoch(saleT0.Add(3*week+time.Hour)))

	requireDec(t, "0.00005", s.Price(0))
	requireDec(t, "0.000055", s.Price(1))
	requireDec(t, "0.0000605", s.Price(2))

	prevEpoch, prevPrice := int64(-1), s.Price(0)
	for h := 0; h < 24*7*12; h += 5 {
		now := saleT0.Add(time.Duration(h) * time.Hour)
		e := s.Epoch(now)
		require.GreaterOrEqual(t, e, prevEpoch)
		require.False(t, s.Price(e).LessThan(prevPrice))
		prevEpoch, prevPrice = e, s.Price(e)
	}

	st := s.Status(saleT0.Add(week + time.Hour))
	require.Equal(t, PhaseLive, st.Phase)
	require.Equal(t, saleT0.Add(2*week), st.NextEpochAt)
}

func TestSale_BuyScenario(t *testing.T) {
	s := liveSale(DefaultSaleParams())
	acct := model.SaleAccount{LastRecordedEpoch: -1}
	now := saleT0.Add(time.Hour)

	for i := 0; i < 3; i++ {
		var res SalePurchase
		var err error
		acct, res, err = s.Buy(acct, dec("1000000"), now)
		require.NoError(t, err)
		requireDec(t, "50", res.Cost)
	}
	requireDec(t, "150", acct.EpochUSDSpent)
	require.EqualValues(t, 0, acct.LastRecordedEpoch)

	same, _, err := s.Buy(acct, dec("3000000"), now)
	require.ErrorIs(t, err, ErrEpochCapExceeded)
	requireDec(t, "150", same.EpochUSDSpent)

	// Next epoch: the epoch counter starts over, the lifetime counter does not.
	later := saleT0.Add(7*24*time.Hour + time.Minute)
	acct, res, err := s.Buy(acct, dec("4000000"), later)
	require.NoError(t, err)
	requireDec(t, "220", res.Cost)
	requireDec(t, "220", acct.EpochUSDSpent)
	requireDec(t, "370", acct.LifetimeUSDSpent)
	require.EqualValues(t, 1, acct.LastRecordedEpoch)
}

func TestSale_WalletCap(t *testing.T) {
	p := DefaultSaleParams()
	p.PriceGrowth = dec("1")
	s := liveSale(p)
	acct := model.SaleAccount{LastRecordedEpoch: -1}
	week := 7 * 24 * time.Hour

	for e := 0; e < 5; e++ {
		var err error
		acct, _, err = s.Buy(acct, dec("4000000"), saleT0.Add(time.Duration(e)*week))
		require.NoError(t, err)
	}
	requireDec(t, "1000", acct.LifetimeUSDSpent)
	_, _, err := s.Buy(acct, dec("1"), saleT0.Add(5*week))
	require.ErrorIs(t, err, ErrWalletCapExceeded)
}

func TestSale_Rejections(t *testing.T) {
	s := NewSale(DefaultSaleParams(), &fixedClock{t: saleT0})
	acct := model.SaleAccount{LastRecordedEpoch: -1}
	_, _, err := s.Buy(acct, dec("10"), saleT0)
	require.ErrorIs(t, err, ErrSaleNotLive)

	live := liveSale(DefaultSaleParams())
	_, _, err = live.Buy(acct, dec("0"), saleT0)
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, _, err = live.Buy(acct, dec("-1"), saleT0)
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestSale_BuyRejectsOutOfRangeAmounts(t *testing.T) {
	live := liveSale(DefaultSaleParams())
	acct := model.SaleAccount{LastRecordedEpoch: -1}

	tests := []struct {
		name   string
		tokens string
		want   error
	}{
		{"tiny exponent", "1e-20000000", ErrInvalidAmount},
		{"huge exponent", "1e20000000", ErrInvalidAmount},
		{"too many fractional digits", "0.0000000000000000001", ErrInvalidAmount},
		{"trailing zeros past scale", "1.0000000000000000000", ErrInvalidAmount},
		{"above max amount", "1000000000000001", ErrInvalidAmount},
		{"max amount hits wallet cap", "1e15", ErrWalletCapExceeded},
		{"smallest accepted unit", "0.000000000000000001", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, _, err := live.Buy(acct, dec(tt.tokens), saleT0)
			if tt.want == nil {
				require.NoError(t, err)
				require.True(t, next.LifetimeUSDSpent.IsPositive())
				require.GreaterOrEqual(t, next.LifetimeUSDSpent.Exponent(), int32(-MaxTokenScale-10))
				return
			}
			require.ErrorIs(t, err, tt.want)
			require.Equal(t, acct, next)
		})
	}
}

func TestSale_Observe(t *testing.T) {
	s := liveSale(DefaultSaleParams())
	acct := model.SaleAccount{EpochUSDSpent: dec("200"), LastRecordedEpoch: 0}
	require.Equal(t, acct, s.Observe(acct, saleT0.Add(time.Hour)))

	next := s.Observe(acct, saleT0.Add(8*24*time.Hour))
	require.True(t, next.EpochUSDSpent.IsZero())
	require.EqualValues(t, 1, next.LastRecordedEpoch)

	pending := NewSale(DefaultSaleParams(), &fixedClock{t: saleT0})
	fresh := model.SaleAccount{LastRecordedEpoch: -1}
	require.Equal(t, fresh, pending.Observe(fresh, saleT0))
}

func TestParamsValidate(t *testing.T) {
	require.NoError(t, DefaultParams().Validate())
	require.NoError(t, DefaultSaleParams().Validate())

	p := DefaultParams()
	p.TicketBurnShare = dec("1.5")
	require.Error(t, p.Validate())

	sp := DefaultSaleParams()
	sp.EpochDuration = 0
	require.Error(t, sp.Validate())
}
