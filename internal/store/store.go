// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"tradejournal/internal/models"
)

// DataStore defines the interface for journal persistence.
type DataStore interface {
	// Trades
	SaveTrade(ctx context.Context, trade *models.Trade) error
	GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error)
	GetTradeByID(ctx context.Context, id string) (*models.Trade, error)
	UpdateTrade(ctx context.Context, trade *models.Trade) error
	DeleteTrade(ctx context.Context, id string) error
	CloseTrade(ctx context.Context, id string, exitPrice float64, exitDate time.Time, pnl float64) error
	PartialCloseTrade(ctx context.Context, id string, closeQty, exitPrice float64, exitDate time.Time, pnl float64) (string, error)

	// Accounts & transactions
	SaveAccount(ctx context.Context, account *models.TradingAccount) error
	GetAccounts(ctx context.Context, filter AccountFilter) ([]models.TradingAccount, error)
	GetAccountByID(ctx context.Context, id string) (*models.TradingAccount, error)
	UpdateAccount(ctx context.Context, account *models.TradingAccount) error
	SetAccountActive(ctx context.Context, id string, active bool) error
	DeleteAccount(ctx context.Context, id string) error
	SaveTransaction(ctx context.Context, tx *models.Transaction) error
	GetTransactions(ctx context.Context, accountID string) ([]models.Transaction, error)

	// Strategies
	SaveStrategy(ctx context.Context, strategy *models.Strategy) error
	GetStrategies(ctx context.Context, userID string) ([]models.Strategy, error)
	DeleteStrategy(ctx context.Context, id string) error

	// Confluence
	SaveConfluenceItem(ctx context.Context, item *models.ConfluenceItem) error
	GetConfluenceItems(ctx context.Context, filter ConfluenceFilter) ([]models.ConfluenceItem, error)
	DeleteConfluenceItem(ctx context.Context, id string) error
	SaveTradeConfluence(ctx context.Context, tradeID string, selections []models.TradeConfluence) error
	GetTradeConfluence(ctx context.Context, tradeID string) ([]models.TradeConfluence, error)

	// Notes
	SaveNote(ctx context.Context, note *models.Note) error
	GetNotes(ctx context.Context, filter NoteFilter) ([]models.Note, error)
	DeleteNote(ctx context.Context, id string) error

	// Lifecycle
	Close() error
}

// TradeFilter represents filters for querying trades.
type TradeFilter struct {
	UserID     string
	AccountID  string
	Symbol     string
	Status     models.TradeStatus
	StrategyID string
	StartDate  time.Time
	EndDate    time.Time
	Limit      int
}

// AccountFilter represents filters for querying trading accounts.
type AccountFilter struct {
	UserID     string
	ActiveOnly bool
}

// ConfluenceFilter represents filters for querying confluence items.
type ConfluenceFilter struct {
	UserID     string
	Category   string
	ActiveOnly bool
}

// NoteFilter represents filters for querying notes.
type NoteFilter struct {
	UserID    string
	TradeID   string
	Tag       string
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}
