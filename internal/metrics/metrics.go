// Package metrics derives P&L, risk and equity statistics from trade records.
//
// All functions are pure and total over well-typed floats: malformed input
// (NaN) is propagated, not validated here. Aggregates operate on closed
// trades only. Callers pre-filter to a single account and currency; mixing
// currencies produces a meaningless sum and is not corrected here.
package metrics

import (
	"math"
	"sort"
	"time"

	"tradejournal/internal/models"
)

// PnLEpsilon is the tolerance below which an auto-recomputed P&L must not
// overwrite a manually entered value, so live recalculation does not fight
// the user while they type.
const PnLEpsilon = 0.001

// ClosedOnly filters to trades with status closed and a non-nil pnl.
func ClosedOnly(trades []models.Trade) []models.Trade {
	var closed []models.Trade
	for _, t := range trades {
		if t.Status == models.StatusClosed && t.PnL != nil {
			closed = append(closed, t)
		}
	}
	return closed
}

// OpenCount returns the number of open trades.
func OpenCount(trades []models.Trade) int {
	n := 0
	for _, t := range trades {
		if t.Status == models.StatusOpen {
			n++
		}
	}
	return n
}

// TotalPnL sums pnl over closed trades.
func TotalPnL(trades []models.Trade) float64 {
	var total float64
	for _, t := range ClosedOnly(trades) {
		total += *t.PnL
	}
	return total
}

// WinRate returns the percentage of closed trades with positive pnl,
// or 0 when there are no closed trades.
func WinRate(trades []models.Trade) float64 {
	closed := ClosedOnly(trades)
	if len(closed) == 0 {
		return 0
	}
	wins := 0
	for _, t := range closed {
		if *t.PnL > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(closed)) * 100
}

// AverageWin returns the mean pnl over winning closed trades, 0 if none.
func AverageWin(trades []models.Trade) float64 {
	var sum float64
	n := 0
	for _, t := range ClosedOnly(trades) {
		if *t.PnL > 0 {
			sum += *t.PnL
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// AverageLoss returns the mean pnl over losing closed trades, 0 if none.
// The result is signed negative; display sites wanting magnitude take the
// absolute value themselves.
func AverageLoss(trades []models.Trade) float64 {
	var sum float64
	n := 0
	for _, t := range ClosedOnly(trades) {
		if *t.PnL < 0 {
			sum += *t.PnL
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// GrossProfit sums positive pnl over closed trades.
func GrossProfit(trades []models.Trade) float64 {
	var sum float64
	for _, t := range ClosedOnly(trades) {
		if *t.PnL > 0 {
			sum += *t.PnL
		}
	}
	return sum
}

// GrossLoss returns the absolute value of summed negative pnl.
func GrossLoss(trades []models.Trade) float64 {
	var sum float64
	for _, t := range ClosedOnly(trades) {
		if *t.PnL < 0 {
			sum += *t.PnL
		}
	}
	return -sum
}

// ProfitFactor returns gross profit divided by gross loss.
// With no losses and some profit it returns +Inf (rendered as "∞");
// with neither it returns 0.
func ProfitFactor(trades []models.Trade) float64 {
	profit := GrossProfit(trades)
	loss := GrossLoss(trades)
	if loss == 0 {
		if profit > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return profit / loss
}

// BestTrade returns the maximum pnl over closed trades, 0 if none.
// An account with zero trades therefore displays 0, not "N/A".
func BestTrade(trades []models.Trade) float64 {
	closed := ClosedOnly(trades)
	if len(closed) == 0 {
		return 0
	}
	best := *closed[0].PnL
	for _, t := range closed[1:] {
		if *t.PnL > best {
			best = *t.PnL
		}
	}
	return best
}

// WorstTrade returns the minimum pnl over closed trades, 0 if none.
func WorstTrade(trades []models.Trade) float64 {
	closed := ClosedOnly(trades)
	if len(closed) == 0 {
		return 0
	}
	worst := *closed[0].PnL
	for _, t := range closed[1:] {
		if *t.PnL < worst {
			worst = *t.PnL
		}
	}
	return worst
}

// Expectancy returns net pnl per closed trade, 0 if none.
func Expectancy(trades []models.Trade) float64 {
	closed := ClosedOnly(trades)
	if len(closed) == 0 {
		return 0
	}
	return TotalPnL(closed) / float64(len(closed))
}

// SortByCloseTime orders trades chronologically by exit date, falling back
// to entry date for open trades. MaxDrawdown and EquityCurve require this
// ordering; out-of-order input understates the drawdown.
func SortByCloseTime(trades []models.Trade) []models.Trade {
	sorted := make([]models.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CloseTime().Before(sorted[j].CloseTime())
	})
	return sorted
}

// MaxDrawdown walks closed trades in the given order, tracking the running
// cumulative pnl and its peak, and returns the largest peak-to-current
// decline observed. Trades must already be in chronological order.
func MaxDrawdown(trades []models.Trade) float64 {
	var cumulative, peak, maxDD float64
	for _, t := range ClosedOnly(trades) {
		cumulative += *t.PnL
		if cumulative > peak {
			peak = cumulative
		}
		if dd := peak - cumulative; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// Equity computes current account equity: initial balance plus realized pnl
// plus deposits minus withdrawals. Recomputed on every read, never stored
// as authoritative.
func Equity(initialBalance float64, trades []models.Trade, transactions []models.Transaction) float64 {
	equity := initialBalance + TotalPnL(trades)
	for _, tx := range transactions {
		switch tx.Type {
		case models.TransactionDeposit:
			equity += tx.Amount
		case models.TransactionWithdrawal:
			equity -= tx.Amount
		}
	}
	return equity
}

// EquityPoint is one step of the realized equity curve.
type EquityPoint struct {
	Time   time.Time
	Equity float64
}

// EquityCurve returns the running equity after each closed trade, starting
// from the initial balance. Trades must be in chronological order.
func EquityCurve(initialBalance float64, trades []models.Trade) []EquityPoint {
	closed := ClosedOnly(trades)
	points := make([]EquityPoint, 0, len(closed))
	equity := initialBalance
	for _, t := range closed {
		equity += *t.PnL
		points = append(points, EquityPoint{Time: t.CloseTime(), Equity: equity})
	}
	return points
}

// RiskRewardRatio computes |takeProfit − entry| / |entry − stopLoss|.
// Returns 0 if either distance is zero; callers treat 0 as "unset",
// not a legitimate ratio.
func RiskRewardRatio(entry, stopLoss, takeProfit float64) float64 {
	risk := math.Abs(entry - stopLoss)
	reward := math.Abs(takeProfit - entry)
	if risk == 0 || reward == 0 {
		return 0
	}
	return reward / risk
}

// AutoPnL computes net pnl from execution fields: gross direction-adjusted
// price delta times quantity, minus commission and swap.
func AutoPnL(entry, exit, quantity float64, tradeType models.TradeType, commission, swap float64) float64 {
	var gross float64
	if tradeType == models.TradeShort {
		gross = (entry - exit) * quantity
	} else {
		gross = (exit - entry) * quantity
	}
	return gross - commission - swap
}

// ShouldReplacePnL reports whether an auto-recomputed pnl should replace the
// currently displayed value. The displayed field is only updated when the
// delta exceeds PnLEpsilon, so live recalculation never fights user edits.
func ShouldReplacePnL(current, computed float64) bool {
	return math.Abs(computed-current) > PnLEpsilon
}
