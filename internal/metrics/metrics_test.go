package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradejournal/internal/models"
)

func closedTrade(pnl float64, exitDate time.Time) models.Trade {
	return models.Trade{
		Symbol:     "EURUSD",
		Type:       models.TradeLong,
		EntryPrice: 1.1,
		Quantity:   1,
		EntryDate:  exitDate.Add(-time.Hour),
		ExitPrice:  models.Float64Ptr(1.2),
		ExitDate:   models.TimePtr(exitDate),
		PnL:        models.Float64Ptr(pnl),
		Status:     models.StatusClosed,
	}
}

func openTrade() models.Trade {
	return models.Trade{
		Symbol:     "EURUSD",
		Type:       models.TradeLong,
		EntryPrice: 1.1,
		Quantity:   1,
		EntryDate:  time.Now(),
		Status:     models.StatusOpen,
	}
}

func TestWinRate(t *testing.T) {
	now := time.Now()

	t.Run("empty returns zero", func(t *testing.T) {
		assert.Equal(t, 0.0, WinRate(nil))
	})

	t.Run("only open trades returns zero", func(t *testing.T) {
		assert.Equal(t, 0.0, WinRate([]models.Trade{openTrade()}))
	})

	t.Run("wins over closed only", func(t *testing.T) {
		trades := []models.Trade{
			closedTrade(100, now),
			closedTrade(-50, now),
			closedTrade(25, now),
			closedTrade(-10, now),
			openTrade(),
		}
		assert.InDelta(t, 50.0, WinRate(trades), 1e-9)
	})

	t.Run("breakeven counts as loss", func(t *testing.T) {
		trades := []models.Trade{closedTrade(0, now)}
		assert.Equal(t, 0.0, WinRate(trades))
	})
}

func TestProfitFactor(t *testing.T) {
	now := time.Now()

	t.Run("no closed trades", func(t *testing.T) {
		assert.Equal(t, 0.0, ProfitFactor(nil))
	})

	t.Run("profits and losses", func(t *testing.T) {
		trades := []models.Trade{
			closedTrade(300, now),
			closedTrade(-100, now),
			closedTrade(-50, now),
		}
		assert.InDelta(t, 2.0, ProfitFactor(trades), 1e-9)
	})

	t.Run("no losses is infinite", func(t *testing.T) {
		trades := []models.Trade{closedTrade(100, now), closedTrade(50, now)}
		assert.True(t, math.IsInf(ProfitFactor(trades), 1))
	})

	t.Run("no profits and no losses", func(t *testing.T) {
		trades := []models.Trade{closedTrade(0, now)}
		assert.Equal(t, 0.0, ProfitFactor(trades))
	})
}

func TestAverages(t *testing.T) {
	now := time.Now()
	trades := []models.Trade{
		closedTrade(100, now),
		closedTrade(200, now),
		closedTrade(-60, now),
		closedTrade(-40, now),
	}

	assert.InDelta(t, 150, AverageWin(trades), 1e-9)
	// Average loss stays signed; display layers take the absolute value.
	assert.InDelta(t, -50, AverageLoss(trades), 1e-9)
	assert.InDelta(t, 300, GrossProfit(trades), 1e-9)
	assert.InDelta(t, 100, GrossLoss(trades), 1e-9)
	assert.InDelta(t, 200, BestTrade(trades), 1e-9)
	assert.InDelta(t, -60, WorstTrade(trades), 1e-9)
	assert.InDelta(t, 50, Expectancy(trades), 1e-9)
}

func TestBestWorstEmpty(t *testing.T) {
	assert.Equal(t, 0.0, BestTrade(nil))
	assert.Equal(t, 0.0, WorstTrade(nil))
	assert.Equal(t, 0.0, AverageWin(nil))
	assert.Equal(t, 0.0, AverageLoss(nil))
}

func TestMaxDrawdown(t *testing.T) {
	base := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, 0.0, MaxDrawdown(nil))
	})

	t.Run("monotonic gains have zero drawdown", func(t *testing.T) {
		trades := []models.Trade{
			closedTrade(100, base),
			closedTrade(50, base.Add(time.Hour)),
		}
		assert.Equal(t, 0.0, MaxDrawdown(trades))
	})

	t.Run("peak to trough", func(t *testing.T) {
		// Cumulative: 100, 300, 100, 50, 250 → peak 300, trough 50.
		trades := []models.Trade{
			closedTrade(100, base),
			closedTrade(200, base.Add(1*time.Hour)),
			closedTrade(-200, base.Add(2*time.Hour)),
			closedTrade(-50, base.Add(3*time.Hour)),
			closedTrade(200, base.Add(4*time.Hour)),
		}
		assert.InDelta(t, 250, MaxDrawdown(trades), 1e-9)
	})

	t.Run("order matters", func(t *testing.T) {
		// Same trades out of order give a different walk; callers sort first.
		shuffled := []models.Trade{
			closedTrade(-200, base.Add(2*time.Hour)),
			closedTrade(100, base),
			closedTrade(200, base.Add(1*time.Hour)),
			closedTrade(200, base.Add(4*time.Hour)),
			closedTrade(-50, base.Add(3*time.Hour)),
		}
		assert.InDelta(t, 250, MaxDrawdown(SortByCloseTime(shuffled)), 1e-9)
	})
}

func TestEquity(t *testing.T) {
	now := time.Now()
	trades := []models.Trade{
		closedTrade(200, now),
		closedTrade(-40, now),
		openTrade(), // open trades never move equity
	}
	txs := []models.Transaction{
		{Type: models.TransactionDeposit, Amount: 500, Date: now},
		{Type: models.TransactionWithdrawal, Amount: 400, Date: now},
	}

	// 1000 + 160 + 500 - 400 = 1260
	assert.InDelta(t, 1260, Equity(1000, trades, txs), 1e-9)
}

func TestEquityCurve(t *testing.T) {
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	trades := []models.Trade{
		closedTrade(100, base),
		closedTrade(-30, base.Add(time.Hour)),
	}

	curve := EquityCurve(1000, trades)
	require.Len(t, curve, 2)
	assert.InDelta(t, 1100, curve[0].Equity, 1e-9)
	assert.InDelta(t, 1070, curve[1].Equity, 1e-9)
}

func TestRiskRewardRatio(t *testing.T) {
	t.Run("long setup", func(t *testing.T) {
		assert.InDelta(t, 2.0, RiskRewardRatio(100, 95, 110), 1e-9)
	})

	t.Run("short setup", func(t *testing.T) {
		assert.InDelta(t, 3.0, RiskRewardRatio(100, 102, 94), 1e-9)
	})

	t.Run("zero risk distance", func(t *testing.T) {
		assert.Equal(t, 0.0, RiskRewardRatio(100, 100, 110))
	})

	t.Run("zero reward distance", func(t *testing.T) {
		assert.Equal(t, 0.0, RiskRewardRatio(100, 95, 100))
	})
}

func TestAutoPnL(t *testing.T) {
	t.Run("long with costs", func(t *testing.T) {
		// (1.25 - 1.20) * 1000 - 2 - 1 = 47
		pnl := AutoPnL(1.20, 1.25, 1000, models.TradeLong, 2, 1)
		assert.InDelta(t, 47, pnl, 1e-9)
	})

	t.Run("short profits when price falls", func(t *testing.T) {
		pnl := AutoPnL(1.25, 1.20, 1000, models.TradeShort, 0, 0)
		assert.InDelta(t, 50, pnl, 1e-9)
	})

	t.Run("short loses when price rises", func(t *testing.T) {
		pnl := AutoPnL(1.20, 1.25, 1000, models.TradeShort, 0, 0)
		assert.InDelta(t, -50, pnl, 1e-9)
	})
}

func TestShouldReplacePnL(t *testing.T) {
	assert.False(t, ShouldReplacePnL(47.0, 47.0005))
	assert.False(t, ShouldReplacePnL(47.0, 47.001))
	assert.True(t, ShouldReplacePnL(47.0, 47.01))
	assert.True(t, ShouldReplacePnL(-5, 5))
}

func TestComputeSummary(t *testing.T) {
	base := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	trades := []models.Trade{
		closedTrade(100, base),
		closedTrade(-50, base.Add(time.Hour)),
		openTrade(),
	}

	s := Compute(trades)
	assert.Equal(t, 3, s.TotalTrades)
	assert.Equal(t, 2, s.ClosedTrades)
	assert.Equal(t, 1, s.OpenTrades)
	assert.Equal(t, 1, s.Wins)
	assert.Equal(t, 1, s.Losses)
	assert.InDelta(t, 50, s.WinRate, 1e-9)
	assert.InDelta(t, 50, s.NetPnL, 1e-9)
	assert.InDelta(t, 2.0, s.ProfitFactor, 1e-9)
	assert.InDelta(t, 50, s.MaxDrawdown, 1e-9)
}

func TestBySymbolAndStrategy(t *testing.T) {
	now := time.Now()
	eur := closedTrade(100, now)
	gbp := closedTrade(-50, now)
	gbp.Symbol = "GBPUSD"
	tagged := closedTrade(30, now)
	tagged.StrategyID = "breakout"

	symbols := BySymbol([]models.Trade{eur, gbp, tagged})
	require.Len(t, symbols, 2)
	assert.Equal(t, "EURUSD", symbols[0].Key)
	assert.InDelta(t, 130, symbols[0].PnL, 1e-9)

	strategies := ByStrategy([]models.Trade{eur, tagged})
	require.Len(t, strategies, 2)
	// Untagged trades report under "manual".
	assert.Equal(t, "manual", strategies[0].Key)
	assert.Equal(t, "breakout", strategies[1].Key)
}

func TestByDay(t *testing.T) {
	day1 := time.Date(2026, 4, 6, 9, 30, 0, 0, time.UTC)
	day2 := time.Date(2026, 4, 7, 16, 0, 0, 0, time.UTC)
	trades := []models.Trade{
		closedTrade(100, day1),
		closedTrade(-20, day1.Add(2*time.Hour)),
		closedTrade(50, day2),
	}

	days := ByDay(trades)
	require.Len(t, days, 2)
	assert.Equal(t, 2, days[0].Trades)
	assert.InDelta(t, 80, days[0].PnL, 1e-9)
	assert.Equal(t, 1, days[1].Trades)
	assert.True(t, days[0].Day.Before(days[1].Day))
}

func TestPeriodStart(t *testing.T) {
	now := time.Date(2026, 5, 15, 13, 45, 0, 0, time.UTC)

	assert.Equal(t, now.AddDate(0, 0, -7), PeriodStart("weekly", now))
	assert.Equal(t, now.AddDate(0, -1, 0), PeriodStart("monthly", now))
	daily := PeriodStart("daily", now)
	assert.Equal(t, 0, daily.Hour())
	assert.Equal(t, now.Day(), daily.Day())
}

func TestEquityIgnoresOpenPnL(t *testing.T) {
	now := time.Now()
	open := openTrade()
	// A stored pnl on a trade that is not closed must not count.
	open.PnL = models.Float64Ptr(999)
	trades := []models.Trade{open, closedTrade(10, now)}
	assert.InDelta(t, 1010, Equity(1000, trades, nil), 1e-9)
}
