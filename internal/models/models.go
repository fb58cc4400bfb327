// Package models provides domain models for the trading journal.
package models

import (
	"strings"
	"time"
)

// TradeType represents the direction of a trade.
type TradeType string

const (
	TradeLong  TradeType = "long"
	TradeShort TradeType = "short"
)

// NormalizeTradeType maps broker/CSV direction tokens onto TradeType.
// "buy"/"long" map to long, "sell"/"short" map to short. Any other token is
// passed through lowercased; storage may still reject it.
func NormalizeTradeType(token string) TradeType {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "buy", "long":
		return TradeLong
	case "sell", "short":
		return TradeShort
	default:
		return TradeType(strings.ToLower(strings.TrimSpace(token)))
	}
}

// TradeStatus represents the lifecycle status of a trade.
type TradeStatus string

const (
	StatusOpen   TradeStatus = "open"
	StatusClosed TradeStatus = "closed"
)

// TransactionType represents the direction of an account ledger entry.
type TransactionType string

const (
	TransactionDeposit    TransactionType = "deposit"
	TransactionWithdrawal TransactionType = "withdrawal"
)

// MaxScreenshots is the maximum number of screenshot URLs per trade.
const MaxScreenshots = 5

// TradingAccount is a container for trades with a currency and balance baseline.
type TradingAccount struct {
	ID             string
	UserID         string
	Name           string
	Broker         string
	InitialBalance float64
	CurrentBalance float64
	Currency       string
	EquityGoal     *float64
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Transaction is a deposit or withdrawal against a trading account.
type Transaction struct {
	ID        string
	UserID    string
	AccountID string
	Type      TransactionType
	Amount    float64
	Note      string
	Date      time.Time
	CreatedAt time.Time
}

// Strategy is a named rule set attached to trades for grouping and analytics.
type Strategy struct {
	ID             string
	UserID         string
	Name           string
	Description    string
	EntryCriteria  string
	ExitCriteria   string
	PartialRules   string
	BreakEvenRules string
	MinRiskReward  float64
	MaxRiskReward  float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ConfluenceItem is a named, weighted checklist factor with a category.
// Weight must lie in (0.0, 10.0].
type ConfluenceItem struct {
	ID        string
	UserID    string
	Name      string
	Weight    float64
	Category  string
	IsActive  bool
	CreatedAt time.Time
}

// TradeConfluence links a trade to a confluence item with a present flag.
type TradeConfluence struct {
	TradeID          string
	ConfluenceItemID string
	Present          bool
}

// Note is a free-form journal note, optionally attached to a trade.
type Note struct {
	ID          string
	UserID      string
	TradeID     string
	Title       string
	Content     string
	Tags        []string
	Screenshots []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
