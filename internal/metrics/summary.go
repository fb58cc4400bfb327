package metrics

import (
	"sort"
	"time"

	"tradejournal/internal/models"
)

// Summary aggregates the statistics shown on dashboards and reports.
type Summary struct {
	TotalTrades  int
	OpenTrades   int
	ClosedTrades int
	Wins         int
	Losses       int
	WinRate      float64
	NetPnL       float64
	GrossProfit  float64
	GrossLoss    float64
	ProfitFactor float64
	AverageWin   float64
	AverageLoss  float64
	BestTrade    float64
	WorstTrade   float64
	Expectancy   float64
	MaxDrawdown  float64
}

// Compute builds a Summary over the given trades. Drawdown is computed over
// the trades sorted chronologically by close time.
func Compute(trades []models.Trade) Summary {
	closed := ClosedOnly(trades)
	wins, losses := 0, 0
	for _, t := range closed {
		if *t.PnL > 0 {
			wins++
		} else {
			losses++
		}
	}

	return Summary{
		TotalTrades:  len(trades),
		OpenTrades:   OpenCount(trades),
		ClosedTrades: len(closed),
		Wins:         wins,
		Losses:       losses,
		WinRate:      WinRate(trades),
		NetPnL:       TotalPnL(trades),
		GrossProfit:  GrossProfit(trades),
		GrossLoss:    GrossLoss(trades),
		ProfitFactor: ProfitFactor(trades),
		AverageWin:   AverageWin(trades),
		AverageLoss:  AverageLoss(trades),
		BestTrade:    BestTrade(trades),
		WorstTrade:   WorstTrade(trades),
		Expectancy:   Expectancy(trades),
		MaxDrawdown:  MaxDrawdown(SortByCloseTime(trades)),
	}
}

// GroupStat is a per-symbol or per-strategy breakdown row.
type GroupStat struct {
	Key     string
	Trades  int
	Wins    int
	PnL     float64
	WinRate float64
}

// BySymbol aggregates closed trades per symbol, sorted by net pnl descending.
func BySymbol(trades []models.Trade) []GroupStat {
	return groupBy(trades, func(t models.Trade) string { return t.Symbol })
}

// ByStrategy aggregates closed trades per strategy id, sorted by net pnl
// descending. Trades with no strategy are grouped under "manual".
func ByStrategy(trades []models.Trade) []GroupStat {
	return groupBy(trades, func(t models.Trade) string {
		if t.StrategyID == "" {
			return "manual"
		}
		return t.StrategyID
	})
}

func groupBy(trades []models.Trade, key func(models.Trade) string) []GroupStat {
	groups := make(map[string]*GroupStat)
	for _, t := range ClosedOnly(trades) {
		k := key(t)
		g, ok := groups[k]
		if !ok {
			g = &GroupStat{Key: k}
			groups[k] = g
		}
		g.Trades++
		g.PnL += *t.PnL
		if *t.PnL > 0 {
			g.Wins++
		}
	}

	stats := make([]GroupStat, 0, len(groups))
	for _, g := range groups {
		if g.Trades > 0 {
			g.WinRate = float64(g.Wins) / float64(g.Trades) * 100
		}
		stats = append(stats, *g)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].PnL > stats[j].PnL })
	return stats
}

// DayBucket is one calendar cell: the day's closed trades and net pnl.
type DayBucket struct {
	Day    time.Time
	Trades int
	PnL    float64
}

// ByDay buckets closed trades by the calendar day of their close time,
// sorted ascending. Used by the calendar and daily report views.
func ByDay(trades []models.Trade) []DayBucket {
	buckets := make(map[time.Time]*DayBucket)
	for _, t := range ClosedOnly(trades) {
		ct := t.CloseTime()
		day := time.Date(ct.Year(), ct.Month(), ct.Day(), 0, 0, 0, 0, ct.Location())
		b, ok := buckets[day]
		if !ok {
			b = &DayBucket{Day: day}
			buckets[day] = b
		}
		b.Trades++
		b.PnL += *t.PnL
	}

	days := make([]DayBucket, 0, len(buckets))
	for _, b := range buckets {
		days = append(days, *b)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day.Before(days[j].Day) })
	return days
}

// PeriodStart returns the start date for a report period relative to now.
// Unknown periods fall back to daily.
func PeriodStart(period string, now time.Time) time.Time {
	switch period {
	case "weekly":
		return now.AddDate(0, 0, -7)
	case "monthly":
		return now.AddDate(0, -1, 0)
	default:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}
}
