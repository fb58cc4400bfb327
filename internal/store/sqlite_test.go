package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tradejournal/internal/errors"
	"tradejournal/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "journal_test.db")
	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testTrade() *models.Trade {
	return &models.Trade{
		UserID:     "u1",
		AccountID:  "a1",
		Symbol:     "EURUSD",
		Type:       models.TradeLong,
		EntryPrice: 1.0850,
		Quantity:   10,
		EntryDate:  time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
		Status:     models.StatusOpen,
		StopLoss:   models.Float64Ptr(1.08),
		TakeProfit: models.Float64Ptr(1.10),
		Commission: 1.5,
	}
}

func TestTradeRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	trade := testTrade()
	trade.Screenshots = []string{"https://img.example/1.png"}
	require.NoError(t, store.SaveTrade(ctx, trade))
	require.NotEmpty(t, trade.ID)

	got, err := store.GetTradeByID(ctx, trade.ID)
	require.NoError(t, err)

	assert.Equal(t, trade.Symbol, got.Symbol)
	assert.Equal(t, trade.Type, got.Type)
	assert.InDelta(t, trade.EntryPrice, got.EntryPrice, 1e-9)
	assert.InDelta(t, trade.Quantity, got.Quantity, 1e-9)
	require.NotNil(t, got.StopLoss)
	assert.InDelta(t, 1.08, *got.StopLoss, 1e-9)
	assert.Nil(t, got.ExitPrice)
	assert.Nil(t, got.PnL)
	assert.Equal(t, models.StatusOpen, got.Status)
	assert.Equal(t, []string{"https://img.example/1.png"}, got.Screenshots)
}

func TestGetTradeByIDNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetTradeByID(context.Background(), "nope")
	assert.ErrorIs(t, err, apperrors.ErrTradeNotFound)
}

func TestGetTradesFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	eur := testTrade()
	require.NoError(t, store.SaveTrade(ctx, eur))

	gbp := testTrade()
	gbp.Symbol = "GBPUSD"
	gbp.AccountID = "a2"
	gbp.Status = models.StatusClosed
	gbp.ExitPrice = models.Float64Ptr(1.30)
	gbp.PnL = models.Float64Ptr(42)
	require.NoError(t, store.SaveTrade(ctx, gbp))

	bySymbol, err := store.GetTrades(ctx, TradeFilter{Symbol: "GBPUSD"})
	require.NoError(t, err)
	require.Len(t, bySymbol, 1)
	assert.Equal(t, gbp.ID, bySymbol[0].ID)

	byStatus, err := store.GetTrades(ctx, TradeFilter{Status: models.StatusOpen})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, eur.ID, byStatus[0].ID)

	byAccount, err := store.GetTrades(ctx, TradeFilter{AccountID: "a2"})
	require.NoError(t, err)
	assert.Len(t, byAccount, 1)

	all, err := store.GetTrades(ctx, TradeFilter{UserID: "u1"})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCloseTrade(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	trade := testTrade()
	require.NoError(t, store.SaveTrade(ctx, trade))

	exitDate := time.Date(2026, 3, 3, 15, 0, 0, 0, time.UTC)
	require.NoError(t, store.CloseTrade(ctx, trade.ID, 1.0950, exitDate, 98.5))

	got, err := store.GetTradeByID(ctx, trade.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, got.Status)
	require.NotNil(t, got.ExitPrice)
	assert.InDelta(t, 1.0950, *got.ExitPrice, 1e-9)
	require.NotNil(t, got.PnL)
	assert.InDelta(t, 98.5, *got.PnL, 1e-9)

	// Closing twice is rejected.
	err = store.CloseTrade(ctx, trade.ID, 1.10, exitDate, 0)
	assert.ErrorIs(t, err, apperrors.ErrTradeAlreadyClosed)

	// Closing a missing trade reports not found.
	err = store.CloseTrade(ctx, "missing", 1.10, exitDate, 0)
	assert.ErrorIs(t, err, apperrors.ErrTradeNotFound)
}

func TestPartialCloseConservesQuantity(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	trade := testTrade()
	trade.Quantity = 10
	require.NoError(t, store.SaveTrade(ctx, trade))

	exitDate := time.Date(2026, 3, 3, 15, 0, 0, 0, time.UTC)
	closedID, err := store.PartialCloseTrade(ctx, trade.ID, 4, 1.0950, exitDate, 40)
	require.NoError(t, err)
	require.NotEmpty(t, closedID)
	require.NotEqual(t, trade.ID, closedID)

	closed, err := store.GetTradeByID(ctx, closedID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, closed.Status)
	assert.InDelta(t, 4, closed.Quantity, 1e-9)
	require.NotNil(t, closed.PnL)
	assert.InDelta(t, 40, *closed.PnL, 1e-9)
	assert.Equal(t, trade.Symbol, closed.Symbol)
	assert.InDelta(t, trade.EntryPrice, closed.EntryPrice, 1e-9)

	remainder, err := store.GetTradeByID(ctx, trade.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOpen, remainder.Status)
	assert.InDelta(t, 6, remainder.Quantity, 1e-9)
	assert.Nil(t, remainder.ExitPrice)

	// Total quantity across both records is conserved.
	assert.InDelta(t, 10, closed.Quantity+remainder.Quantity, 1e-9)
}

func TestPartialCloseRejectsBadQuantity(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	trade := testTrade()
	trade.Quantity = 5
	require.NoError(t, store.SaveTrade(ctx, trade))

	when := time.Now()
	_, err := store.PartialCloseTrade(ctx, trade.ID, 0, 1.1, when, 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidQuantity)

	_, err = store.PartialCloseTrade(ctx, trade.ID, 5, 1.1, when, 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidQuantity)

	_, err = store.PartialCloseTrade(ctx, trade.ID, 7, 1.1, when, 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidQuantity)

	// Original untouched after every rejection.
	got, err := store.GetTradeByID(ctx, trade.ID)
	require.NoError(t, err)
	assert.InDelta(t, 5, got.Quantity, 1e-9)
	assert.Equal(t, models.StatusOpen, got.Status)
}

func TestAccountLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	account := &models.TradingAccount{
		UserID:         "u1",
		Name:           "FTMO 100k",
		Broker:         "ctrader",
		InitialBalance: 100000,
		CurrentBalance: 100000,
		Currency:       "USD",
		EquityGoal:     models.Float64Ptr(110000),
		IsActive:       true,
	}
	require.NoError(t, store.SaveAccount(ctx, account))

	got, err := store.GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "FTMO 100k", got.Name)
	require.NotNil(t, got.EquityGoal)
	assert.InDelta(t, 110000, *got.EquityGoal, 1e-9)
	assert.True(t, got.IsActive)

	require.NoError(t, store.SetAccountActive(ctx, account.ID, false))

	active, err := store.GetAccounts(ctx, AccountFilter{UserID: "u1", ActiveOnly: true})
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := store.GetAccounts(ctx, AccountFilter{UserID: "u1"})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, store.DeleteAccount(ctx, account.ID))
	_, err = store.GetAccountByID(ctx, account.ID)
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)
}

func TestTransactions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	deposit := &models.Transaction{
		UserID:    "u1",
		AccountID: "a1",
		Type:      models.TransactionDeposit,
		Amount:    500,
		Date:      time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
	}
	withdrawal := &models.Transaction{
		UserID:    "u1",
		AccountID: "a1",
		Type:      models.TransactionWithdrawal,
		Amount:    200,
		Note:      "payout",
		Date:      time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveTransaction(ctx, deposit))
	require.NoError(t, store.SaveTransaction(ctx, withdrawal))

	txs, err := store.GetTransactions(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, txs, 2)
	// Oldest first.
	assert.Equal(t, models.TransactionDeposit, txs[0].Type)
	assert.Equal(t, "payout", txs[1].Note)
}

func TestConfluenceItemsAndSelections(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	item := &models.ConfluenceItem{
		UserID:   "u1",
		Name:     "Trend aligned",
		Weight:   2.5,
		Category: "Structure",
		IsActive: true,
	}
	require.NoError(t, store.SaveConfluenceItem(ctx, item))

	items, err := store.GetConfluenceItems(ctx, ConfluenceFilter{UserID: "u1", ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.InDelta(t, 2.5, items[0].Weight, 1e-9)

	trade := testTrade()
	require.NoError(t, store.SaveTrade(ctx, trade))

	selections := []models.TradeConfluence{
		{TradeID: trade.ID, ConfluenceItemID: item.ID, Present: true},
	}
	require.NoError(t, store.SaveTradeConfluence(ctx, trade.ID, selections))

	got, err := store.GetTradeConfluence(ctx, trade.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Present)

	// Re-saving replaces, not appends.
	selections[0].Present = false
	require.NoError(t, store.SaveTradeConfluence(ctx, trade.ID, selections))
	got, err = store.GetTradeConfluence(ctx, trade.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].Present)
}

func TestStrategies(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	strategy := &models.Strategy{
		UserID:        "u1",
		Name:          "London breakout",
		EntryCriteria: "break of Asia range",
		MinRiskReward: 2,
	}
	require.NoError(t, store.SaveStrategy(ctx, strategy))

	strategies, err := store.GetStrategies(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, strategies, 1)
	assert.Equal(t, "London breakout", strategies[0].Name)
	assert.InDelta(t, 2, strategies[0].MinRiskReward, 1e-9)

	require.NoError(t, store.DeleteStrategy(ctx, strategy.ID))
	err = store.DeleteStrategy(ctx, strategy.ID)
	assert.ErrorIs(t, err, apperrors.ErrStrategyNotFound)
}

func TestNotes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	note := &models.Note{
		UserID:  "u1",
		Content: "Overtraded the NY open again.",
		Tags:    []string{"discipline", "review"},
	}
	require.NoError(t, store.SaveNote(ctx, note))

	notes, err := store.GetNotes(ctx, NoteFilter{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, []string{"discipline", "review"}, notes[0].Tags)

	byTag, err := store.GetNotes(ctx, NoteFilter{UserID: "u1", Tag: "discipline"})
	require.NoError(t, err)
	assert.Len(t, byTag, 1)

	noMatch, err := store.GetNotes(ctx, NoteFilter{UserID: "u1", Tag: "missing"})
	require.NoError(t, err)
	assert.Empty(t, noMatch)
}
