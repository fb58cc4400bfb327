package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsClosed(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name   string
		trade  Trade
		closed bool
	}{
		{"no exit fields", Trade{}, false},
		{"exit price only", Trade{ExitPrice: Float64Ptr(1.2)}, false},
		{"exit date only", Trade{ExitDate: TimePtr(now)}, false},
		{"pnl only", Trade{PnL: Float64Ptr(50)}, false},
		{"exit price and date", Trade{ExitPrice: Float64Ptr(1.2), ExitDate: TimePtr(now)}, true},
		{"exit price and pnl", Trade{ExitPrice: Float64Ptr(1.2), PnL: Float64Ptr(50)}, true},
		{"all three", Trade{ExitPrice: Float64Ptr(1.2), ExitDate: TimePtr(now), PnL: Float64Ptr(50)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.closed, tt.trade.IsClosed())
		})
	}
}

func TestInferStatus(t *testing.T) {
	trade := Trade{ExitPrice: Float64Ptr(1.2), PnL: Float64Ptr(10)}
	trade.InferStatus()
	assert.Equal(t, StatusClosed, trade.Status)

	open := Trade{}
	open.InferStatus()
	assert.Equal(t, StatusOpen, open.Status)
}

func TestCloseTime(t *testing.T) {
	entry := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	exit := entry.Add(4 * time.Hour)

	withExit := Trade{EntryDate: entry, ExitDate: TimePtr(exit)}
	assert.True(t, withExit.CloseTime().Equal(exit))

	withoutExit := Trade{EntryDate: entry}
	assert.True(t, withoutExit.CloseTime().Equal(entry))
}

func TestNormalizeTradeType(t *testing.T) {
	assert.Equal(t, TradeLong, NormalizeTradeType("buy"))
	assert.Equal(t, TradeLong, NormalizeTradeType(" LONG "))
	assert.Equal(t, TradeShort, NormalizeTradeType("Sell"))
	assert.Equal(t, TradeShort, NormalizeTradeType("SHORT"))
	assert.Equal(t, TradeType("spread"), NormalizeTradeType("Spread"))
}
