package csvio

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"tradejournal/internal/models"
)

// Property: Export followed by Import reproduces every field that survives
// the day-granularity date columns.
func TestProperty_ExportImportRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	symbols := []string{"EURUSD", "GBPUSD", "XAUUSD", "US500", "BTCUSD", "USDJPY"}
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	properties.Property("export then import preserves trade fields", prop.ForAll(
		func(symbolIdx, dayOffset int, isShort, closed bool, entryPrice, quantity, pnl float64) bool {
			trade := models.Trade{
				Symbol:     symbols[symbolIdx%len(symbols)],
				Type:       models.TradeLong,
				EntryPrice: entryPrice,
				Quantity:   quantity,
				EntryDate:  base.AddDate(0, 0, dayOffset),
				Status:     models.StatusOpen,
			}
			if isShort {
				trade.Type = models.TradeShort
			}
			if closed {
				trade.Status = models.StatusClosed
				trade.ExitPrice = models.Float64Ptr(entryPrice * 1.02)
				trade.ExitDate = models.TimePtr(trade.EntryDate.AddDate(0, 0, 1))
				trade.PnL = models.Float64Ptr(pnl)
			}

			data, err := Export([]models.Trade{trade})
			if err != nil {
				t.Logf("Export failed: %v", err)
				return false
			}
			preview, err := Import(data)
			if err != nil {
				t.Logf("Import failed: %v", err)
				return false
			}
			if len(preview.Trades) != 1 {
				return false
			}

			got := preview.Trades[0]
			if got.Symbol != trade.Symbol || got.Type != trade.Type || got.Status != trade.Status {
				return false
			}
			if got.EntryPrice != trade.EntryPrice || got.Quantity != trade.Quantity {
				return false
			}
			if !got.EntryDate.Equal(trade.EntryDate) {
				return false
			}
			if !closed {
				return got.ExitPrice == nil && got.ExitDate == nil && got.PnL == nil
			}
			return got.ExitPrice != nil && *got.ExitPrice == *trade.ExitPrice &&
				got.ExitDate != nil && got.ExitDate.Equal(*trade.ExitDate) &&
				got.PnL != nil && *got.PnL == *trade.PnL
		},
		gen.IntRange(0, 5),
		gen.IntRange(0, 27),
		gen.Bool(),
		gen.Bool(),
		gen.Float64Range(0.01, 5000),
		gen.Float64Range(0.01, 100000),
		gen.Float64Range(-2000, 2000),
	))

	// Re-importing an export of the preview must not flip any status.
	properties.Property("status inference is stable across a second round trip", prop.ForAll(
		func(closed bool, entryPrice float64) bool {
			trade := models.Trade{
				Symbol:     "EURUSD",
				Type:       models.TradeLong,
				EntryPrice: entryPrice,
				Quantity:   1,
				EntryDate:  base,
				Status:     models.StatusOpen,
			}
			if closed {
				trade.Status = models.StatusClosed
				trade.ExitPrice = models.Float64Ptr(entryPrice * 1.01)
				trade.PnL = models.Float64Ptr(10)
			}

			data, err := Export([]models.Trade{trade})
			if err != nil {
				return false
			}
			first, err := Import(data)
			if err != nil || len(first.Trades) != 1 {
				return false
			}
			data, err = Export(first.Trades)
			if err != nil {
				return false
			}
			second, err := Import(data)
			if err != nil || len(second.Trades) != 1 {
				return false
			}
			return second.Trades[0].Status == first.Trades[0].Status &&
				first.Trades[0].Status == trade.Status
		},
		gen.Bool(),
		gen.Float64Range(0.01, 5000),
	))

	properties.TestingRun(t)
}
