package store

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"tradejournal/internal/models"
)

// Property: For any valid trade, saving it and reading it back produces an
// equivalent record, including nullable exit fields.
func TestProperty_TradeRoundTripConsistency(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "trades_property.db")
	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	symbols := []string{"EURUSD", "GBPUSD", "XAUUSD", "US500", "BTCUSD", "USDJPY"}

	properties.Property("trade round-trip: save then read produces equivalent data", prop.ForAll(
		func(symbolIdx int, isShort, closed bool, entryPrice, quantity, pnl float64) bool {
			ctx := context.Background()

			trade := &models.Trade{
				UserID:     "prop",
				AccountID:  "acct",
				Symbol:     symbols[symbolIdx%len(symbols)],
				Type:       models.TradeLong,
				EntryPrice: entryPrice,
				Quantity:   quantity,
				EntryDate:  time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC),
				Status:     models.StatusOpen,
			}
			if isShort {
				trade.Type = models.TradeShort
			}
			if closed {
				trade.Status = models.StatusClosed
				trade.ExitPrice = models.Float64Ptr(entryPrice * 1.01)
				trade.ExitDate = models.TimePtr(trade.EntryDate.Add(6 * time.Hour))
				trade.PnL = models.Float64Ptr(pnl)
			}

			if err := store.SaveTrade(ctx, trade); err != nil {
				t.Logf("Failed to save trade: %v", err)
				return false
			}

			got, err := store.GetTradeByID(ctx, trade.ID)
			if err != nil {
				t.Logf("Failed to read trade: %v", err)
				return false
			}

			if got.Symbol != trade.Symbol || got.Type != trade.Type || got.Status != trade.Status {
				return false
			}
			if math.Abs(got.EntryPrice-trade.EntryPrice) > 1e-9 {
				return false
			}
			if math.Abs(got.Quantity-trade.Quantity) > 1e-9 {
				return false
			}
			if closed {
				if got.ExitPrice == nil || got.PnL == nil || got.ExitDate == nil {
					return false
				}
				if math.Abs(*got.PnL-pnl) > 1e-9 {
					return false
				}
			} else if got.ExitPrice != nil || got.PnL != nil || got.ExitDate != nil {
				return false
			}

			return true
		},
		gen.IntRange(0, len(symbols)-1),
		gen.Bool(),
		gen.Bool(),
		gen.Float64Range(0.01, 10000),
		gen.Float64Range(0.01, 1000),
		gen.Float64Range(-5000, 5000),
	))

	properties.TestingRun(t)
}

// Property: Partial closes always conserve total quantity between the new
// closed record and the shrunk remainder.
func TestProperty_PartialCloseQuantityConservation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "partial_property.db")
	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("partial close conserves quantity", prop.ForAll(
		func(quantity, fraction float64) bool {
			ctx := context.Background()

			trade := &models.Trade{
				UserID:     "prop",
				AccountID:  "acct",
				Symbol:     "EURUSD",
				Type:       models.TradeLong,
				EntryPrice: 1.1,
				Quantity:   quantity,
				EntryDate:  time.Now(),
				Status:     models.StatusOpen,
			}
			if err := store.SaveTrade(ctx, trade); err != nil {
				return false
			}

			closeQty := quantity * fraction
			closedID, err := store.PartialCloseTrade(ctx, trade.ID, closeQty, 1.2, time.Now(), 10)
			if err != nil {
				t.Logf("Partial close failed: %v", err)
				return false
			}

			closed, err := store.GetTradeByID(ctx, closedID)
			if err != nil {
				return false
			}
			remainder, err := store.GetTradeByID(ctx, trade.ID)
			if err != nil {
				return false
			}

			return math.Abs(closed.Quantity+remainder.Quantity-quantity) < 1e-9 &&
				remainder.Status == models.StatusOpen &&
				closed.Status == models.StatusClosed
		},
		gen.Float64Range(1, 1000),
		gen.Float64Range(0.05, 0.95),
	))

	properties.TestingRun(t)
}
