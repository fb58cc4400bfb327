package models

import "time"

// Trade represents one logged position.
//
// Nullable execution and risk fields are pointers: a nil ExitPrice means the
// position has no recorded exit, which is different from an exit at 0.
type Trade struct {
	ID        string
	UserID    string
	AccountID string

	Symbol string
	Type   TradeType

	EntryPrice float64
	Quantity   float64
	EntryDate  time.Time
	ExitPrice  *float64
	ExitDate   *time.Time

	StopLoss   *float64
	TakeProfit *float64
	RiskAmount *float64
	RiskReward *float64

	Status     TradeStatus
	PnL        *float64
	Commission float64
	Swap       float64

	Notes       string
	Emotions    string
	Screenshots []string
	StrategyID  string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsClosed reports whether the trade satisfies the closed invariant:
// a non-nil exit price and at least one of exit date or pnl.
func (t *Trade) IsClosed() bool {
	return t.ExitPrice != nil && (t.ExitDate != nil || t.PnL != nil)
}

// InferStatus derives the status from the closed invariant and stores it.
// Manual entry goes through here; CSV import is looser and treats any
// exit-related column as closing the row.
func (t *Trade) InferStatus() {
	if t.IsClosed() {
		t.Status = StatusClosed
	} else {
		t.Status = StatusOpen
	}
}

// CloseTime returns the best-known chronological close marker for ordering:
// the exit date when present, otherwise the entry date.
func (t *Trade) CloseTime() time.Time {
	if t.ExitDate != nil {
		return *t.ExitDate
	}
	return t.EntryDate
}

// Float64Ptr returns a pointer to v. Convenience for nullable trade fields.
func Float64Ptr(v float64) *float64 { return &v }

// TimePtr returns a pointer to t.
func TimePtr(t time.Time) *time.Time { return &t }
