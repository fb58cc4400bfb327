package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"tradejournal/internal/models"
)

func tradesFromPnLs(pnls []float64) []models.Trade {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	trades := make([]models.Trade, len(pnls))
	for i, p := range pnls {
		trades[i] = closedTrade(p, base.Add(time.Duration(i)*time.Hour))
	}
	return trades
}

func TestProperty_WinRateBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("win rate stays within 0..100", prop.ForAll(
		func(pnls []float64) bool {
			rate := WinRate(tradesFromPnLs(pnls))
			return rate >= 0 && rate <= 100
		},
		gen.SliceOf(gen.Float64Range(-10000, 10000)),
	))

	properties.TestingRun(t)
}

func TestProperty_GrossDecomposition(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("net pnl equals gross profit minus gross loss", prop.ForAll(
		func(pnls []float64) bool {
			trades := tradesFromPnLs(pnls)
			net := TotalPnL(trades)
			decomposed := GrossProfit(trades) - GrossLoss(trades)
			return math.Abs(net-decomposed) < 1e-6
		},
		gen.SliceOf(gen.Float64Range(-10000, 10000)),
	))

	properties.TestingRun(t)
}

func TestProperty_DrawdownNonNegative(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("max drawdown is never negative and never exceeds gross loss", prop.ForAll(
		func(pnls []float64) bool {
			trades := tradesFromPnLs(pnls)
			dd := MaxDrawdown(trades)
			if dd < 0 {
				return false
			}
			// The walk can never lose more than the sum of all losses.
			return dd <= GrossLoss(trades)+1e-6
		},
		gen.SliceOf(gen.Float64Range(-10000, 10000)),
	))

	properties.TestingRun(t)
}

func TestProperty_EquityLinearInTransactions(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("a deposit and equal withdrawal cancel out", prop.ForAll(
		func(pnls []float64, initial, amount float64) bool {
			trades := tradesFromPnLs(pnls)
			txs := []models.Transaction{
				{Type: models.TransactionDeposit, Amount: amount},
				{Type: models.TransactionWithdrawal, Amount: amount},
			}
			with := Equity(initial, trades, txs)
			without := Equity(initial, trades, nil)
			return math.Abs(with-without) < 1e-6
		},
		gen.SliceOf(gen.Float64Range(-1000, 1000)),
		gen.Float64Range(0, 100000),
		gen.Float64Range(0, 50000),
	))

	properties.TestingRun(t)
}

func TestProperty_AutoPnLAntisymmetry(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("long and short pnl are opposite before costs", prop.ForAll(
		func(entry, exit, qty float64) bool {
			long := AutoPnL(entry, exit, qty, models.TradeLong, 0, 0)
			short := AutoPnL(entry, exit, qty, models.TradeShort, 0, 0)
			return math.Abs(long+short) < 1e-6
		},
		gen.Float64Range(0.01, 10000),
		gen.Float64Range(0.01, 10000),
		gen.Float64Range(0.01, 1000),
	))

	properties.TestingRun(t)
}
