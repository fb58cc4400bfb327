// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"tradejournal/internal/errors"
	"tradejournal/internal/logging"
	"tradejournal/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Trading accounts table
	CREATE TABLE IF NOT EXISTS trading_accounts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		broker TEXT,
		initial_balance REAL NOT NULL DEFAULT 0,
		current_balance REAL NOT NULL DEFAULT 0,
		currency TEXT NOT NULL DEFAULT 'USD',
		equity_goal REAL,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Trades table
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		account_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		trade_type TEXT NOT NULL,
		entry_price REAL NOT NULL,
		quantity REAL NOT NULL,
		entry_date DATETIME NOT NULL,
		exit_price REAL,
		exit_date DATETIME,
		stop_loss REAL,
		take_profit REAL,
		risk_amount REAL,
		risk_reward_ratio REAL,
		status TEXT NOT NULL DEFAULT 'open',
		pnl REAL,
		commission REAL NOT NULL DEFAULT 0,
		swap REAL NOT NULL DEFAULT 0,
		notes TEXT,
		emotions TEXT,
		screenshots TEXT,
		strategy_id TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Strategies table
	CREATE TABLE IF NOT EXISTS strategies (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		entry_criteria TEXT,
		exit_criteria TEXT,
		partial_rules TEXT,
		break_even_rules TEXT,
		min_risk_reward REAL,
		max_risk_reward REAL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Confluence items table
	CREATE TABLE IF NOT EXISTS confluence_items (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		weight REAL NOT NULL,
		category TEXT,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Trade <-> confluence item join table
	CREATE TABLE IF NOT EXISTS trade_confluence (
		trade_id TEXT NOT NULL,
		confluence_item_id TEXT NOT NULL,
		present INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (trade_id, confluence_item_id),
		FOREIGN KEY (trade_id) REFERENCES trades(id) ON DELETE CASCADE
	);

	-- Account ledger (deposits/withdrawals)
	CREATE TABLE IF NOT EXISTS account_transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		account_id TEXT NOT NULL,
		type TEXT NOT NULL,
		amount REAL NOT NULL,
		note TEXT,
		date DATETIME NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Notes table
	CREATE TABLE IF NOT EXISTS notes (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		trade_id TEXT,
		title TEXT,
		content TEXT NOT NULL,
		tags TEXT,
		screenshots TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Indexes
	CREATE INDEX IF NOT EXISTS idx_trades_user ON trades(user_id);
	CREATE INDEX IF NOT EXISTS idx_trades_account ON trades(account_id);
	CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol);
	CREATE INDEX IF NOT EXISTS idx_trades_entry_date ON trades(entry_date);
	CREATE INDEX IF NOT EXISTS idx_trades_status ON trades(status);
	CREATE INDEX IF NOT EXISTS idx_accounts_user ON trading_accounts(user_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_account ON account_transactions(account_id);
	CREATE INDEX IF NOT EXISTS idx_confluence_user ON confluence_items(user_id);
	CREATE INDEX IF NOT EXISTS idx_notes_user ON notes(user_id);
	CREATE INDEX IF NOT EXISTS idx_notes_trade ON notes(trade_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ============================================================================
// Trades
// ============================================================================

const tradeColumns = `id, user_id, account_id, symbol, trade_type, entry_price, quantity, entry_date,
	exit_price, exit_date, stop_loss, take_profit, risk_amount, risk_reward_ratio,
	status, pnl, commission, swap, notes, emotions, screenshots, strategy_id, created_at, updated_at`

// SaveTrade inserts a trade, assigning an id when missing.
func (s *SQLiteStore) SaveTrade(ctx context.Context, trade *models.Trade) error {
	if trade.ID == "" {
		trade.ID = uuid.NewString()
	}
	if trade.CreatedAt.IsZero() {
		trade.CreatedAt = time.Now()
	}
	trade.UpdatedAt = time.Now()
	screenshots, _ := json.Marshal(trade.Screenshots)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trades (`+tradeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, trade.ID, trade.UserID, trade.AccountID, trade.Symbol, string(trade.Type),
		trade.EntryPrice, trade.Quantity, trade.EntryDate,
		nullFloat(trade.ExitPrice), nullTime(trade.ExitDate),
		nullFloat(trade.StopLoss), nullFloat(trade.TakeProfit),
		nullFloat(trade.RiskAmount), nullFloat(trade.RiskReward),
		string(trade.Status), nullFloat(trade.PnL), trade.Commission, trade.Swap,
		trade.Notes, trade.Emotions, string(screenshots), trade.StrategyID,
		trade.CreatedAt, trade.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save trade: %w", err)
	}
	return nil
}

// GetTrades retrieves trades matching the filter, newest entry first.
func (s *SQLiteStore) GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error) {
	query := "SELECT " + tradeColumns + " FROM trades WHERE 1=1"
	args := []interface{}{}

	if filter.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filter.UserID)
	}
	if filter.AccountID != "" {
		query += " AND account_id = ?"
		args = append(args, filter.AccountID)
	}
	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, filter.Symbol)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}
	if filter.StrategyID != "" {
		query += " AND strategy_id = ?"
		args = append(args, filter.StrategyID)
	}
	if !filter.StartDate.IsZero() {
		query += " AND entry_date >= ?"
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		query += " AND entry_date <= ?"
		args = append(args, filter.EndDate)
	}

	query += " ORDER BY entry_date DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, *trade)
	}

	return trades, rows.Err()
}

// GetTradeByID retrieves a single trade, or ErrTradeNotFound.
func (s *SQLiteStore) GetTradeByID(ctx context.Context, id string) (*models.Trade, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+tradeColumns+" FROM trades WHERE id = ?", id)
	trade, err := scanTrade(row)
	if err == sql.ErrNoRows {
		return nil, errors.ErrTradeNotFound
	}
	if err != nil {
		return nil, err
	}
	return trade, nil
}

// UpdateTrade rewrites all mutable columns of a trade.
func (s *SQLiteStore) UpdateTrade(ctx context.Context, trade *models.Trade) error {
	trade.UpdatedAt = time.Now()
	screenshots, _ := json.Marshal(trade.Screenshots)

	result, err := s.db.ExecContext(ctx, `
		UPDATE trades SET symbol = ?, trade_type = ?, entry_price = ?, quantity = ?, entry_date = ?,
			exit_price = ?, exit_date = ?, stop_loss = ?, take_profit = ?, risk_amount = ?,
			risk_reward_ratio = ?, status = ?, pnl = ?, commission = ?, swap = ?,
			notes = ?, emotions = ?, screenshots = ?, strategy_id = ?, updated_at = ?
		WHERE id = ?
	`, trade.Symbol, string(trade.Type), trade.EntryPrice, trade.Quantity, trade.EntryDate,
		nullFloat(trade.ExitPrice), nullTime(trade.ExitDate),
		nullFloat(trade.StopLoss), nullFloat(trade.TakeProfit), nullFloat(trade.RiskAmount),
		nullFloat(trade.RiskReward), string(trade.Status), nullFloat(trade.PnL),
		trade.Commission, trade.Swap, trade.Notes, trade.Emotions, string(screenshots),
		trade.StrategyID, trade.UpdatedAt, trade.ID)
	if err != nil {
		return fmt.Errorf("failed to update trade: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.ErrTradeNotFound
	}
	return nil
}

// DeleteTrade removes a trade and, via cascade, its confluence selections.
func (s *SQLiteStore) DeleteTrade(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM trades WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete trade: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.ErrTradeNotFound
	}
	return nil
}

// CloseTrade marks an open trade closed with the given exit fields.
func (s *SQLiteStore) CloseTrade(ctx context.Context, id string, exitPrice float64, exitDate time.Time, pnl float64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE trades SET exit_price = ?, exit_date = ?, pnl = ?, status = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, exitPrice, exitDate, pnl, string(models.StatusClosed), time.Now(), id, string(models.StatusOpen))
	if err != nil {
		return fmt.Errorf("failed to close trade: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		// Either missing or already closed; look up to say which.
		if _, err := s.GetTradeByID(ctx, id); err != nil {
			return err
		}
		return errors.ErrTradeAlreadyClosed
	}
	return nil
}

// PartialCloseTrade splits an open position: a new closed record takes the
// partial quantity and the given exit fields, and the original keeps the
// remainder. The insert and update run in one transaction so quantity is
// conserved even on failure. Returns the new closed record's id.
func (s *SQLiteStore) PartialCloseTrade(ctx context.Context, id string, closeQty, exitPrice float64, exitDate time.Time, pnl float64) (string, error) {
	original, err := s.GetTradeByID(ctx, id)
	if err != nil {
		return "", err
	}
	if original.Status != models.StatusOpen {
		return "", errors.ErrTradeAlreadyClosed
	}
	if closeQty <= 0 || closeQty >= original.Quantity {
		return "", errors.ErrInvalidQuantity
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	closedID := uuid.NewString()
	now := time.Now()
	screenshots, _ := json.Marshal(original.Screenshots)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO trades (`+tradeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, closedID, original.UserID, original.AccountID, original.Symbol, string(original.Type),
		original.EntryPrice, closeQty, original.EntryDate,
		exitPrice, exitDate,
		nullFloat(original.StopLoss), nullFloat(original.TakeProfit),
		nullFloat(original.RiskAmount), nullFloat(original.RiskReward),
		string(models.StatusClosed), pnl, original.Commission, original.Swap,
		original.Notes, original.Emotions, string(screenshots), original.StrategyID,
		now, now)
	if err != nil {
		return "", fmt.Errorf("failed to insert partial close: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE trades SET quantity = ?, updated_at = ? WHERE id = ?
	`, original.Quantity-closeQty, now, id)
	if err != nil {
		return "", fmt.Errorf("failed to reduce original quantity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit partial close: %w", err)
	}

	logger := logging.FromContext(ctx)
	logger.Debug().
		Str("trade_id", id).
		Str("closed_id", closedID).
		Float64("closed_qty", closeQty).
		Float64("remaining_qty", original.Quantity-closeQty).
		Msg("Position split")
	return closedID, nil
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTrade(row scanner) (*models.Trade, error) {
	var t models.Trade
	var tradeType, status string
	var exitPrice, stopLoss, takeProfit, riskAmount, riskReward, pnl sql.NullFloat64
	var exitDate sql.NullTime
	var notes, emotions, screenshotsJSON, strategyID sql.NullString

	err := row.Scan(&t.ID, &t.UserID, &t.AccountID, &t.Symbol, &tradeType,
		&t.EntryPrice, &t.Quantity, &t.EntryDate,
		&exitPrice, &exitDate, &stopLoss, &takeProfit, &riskAmount, &riskReward,
		&status, &pnl, &t.Commission, &t.Swap,
		&notes, &emotions, &screenshotsJSON, &strategyID, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan trade: %w", err)
	}

	t.Type = models.TradeType(tradeType)
	t.Status = models.TradeStatus(status)
	t.ExitPrice = floatPtr(exitPrice)
	t.StopLoss = floatPtr(stopLoss)
	t.TakeProfit = floatPtr(takeProfit)
	t.RiskAmount = floatPtr(riskAmount)
	t.RiskReward = floatPtr(riskReward)
	t.PnL = floatPtr(pnl)
	if exitDate.Valid {
		d := exitDate.Time
		t.ExitDate = &d
	}
	t.Notes = notes.String
	t.Emotions = emotions.String
	t.StrategyID = strategyID.String
	if screenshotsJSON.String != "" {
		json.Unmarshal([]byte(screenshotsJSON.String), &t.Screenshots)
	}

	return &t, nil
}

// ============================================================================
// Accounts & transactions
// ============================================================================

// SaveAccount inserts a trading account, assigning an id when missing.
func (s *SQLiteStore) SaveAccount(ctx context.Context, account *models.TradingAccount) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}
	account.UpdatedAt = time.Now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trading_accounts (id, user_id, name, broker, initial_balance, current_balance, currency, equity_goal, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, account.ID, account.UserID, account.Name, account.Broker,
		account.InitialBalance, account.CurrentBalance, account.Currency,
		nullFloat(account.EquityGoal), boolInt(account.IsActive),
		account.CreatedAt, account.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

// GetAccounts retrieves accounts matching the filter.
func (s *SQLiteStore) GetAccounts(ctx context.Context, filter AccountFilter) ([]models.TradingAccount, error) {
	query := `SELECT id, user_id, name, broker, initial_balance, current_balance, currency, equity_goal, is_active, created_at, updated_at
		FROM trading_accounts WHERE 1=1`
	args := []interface{}{}

	if filter.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filter.UserID)
	}
	if filter.ActiveOnly {
		query += " AND is_active = 1"
	}
	query += " ORDER BY created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.TradingAccount
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
	}

	return accounts, rows.Err()
}

// GetAccountByID retrieves a single account, or ErrAccountNotFound.
func (s *SQLiteStore) GetAccountByID(ctx context.Context, id string) (*models.TradingAccount, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, broker, initial_balance, current_balance, currency, equity_goal, is_active, created_at, updated_at
		FROM trading_accounts WHERE id = ?
	`, id)
	account, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, errors.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

// UpdateAccount rewrites the mutable columns of an account.
func (s *SQLiteStore) UpdateAccount(ctx context.Context, account *models.TradingAccount) error {
	account.UpdatedAt = time.Now()
	result, err := s.db.ExecContext(ctx, `
		UPDATE trading_accounts SET name = ?, broker = ?, initial_balance = ?, current_balance = ?, currency = ?, equity_goal = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`, account.Name, account.Broker, account.InitialBalance, account.CurrentBalance,
		account.Currency, nullFloat(account.EquityGoal), boolInt(account.IsActive),
		account.UpdatedAt, account.ID)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.ErrAccountNotFound
	}
	return nil
}

// SetAccountActive soft-deactivates or reactivates an account.
func (s *SQLiteStore) SetAccountActive(ctx context.Context, id string, active bool) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE trading_accounts SET is_active = ?, updated_at = ? WHERE id = ?
	`, boolInt(active), time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update account status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.ErrAccountNotFound
	}
	return nil
}

// DeleteAccount hard-deletes an account with its trades and ledger.
// Deactivation is the normal flow; this is the destructive path.
func (s *SQLiteStore) DeleteAccount(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM trades WHERE account_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete account trades: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM account_transactions WHERE account_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete account transactions: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM trading_accounts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.ErrAccountNotFound
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logger := logging.FromContext(ctx)
	logger.Debug().Str("account_id", id).Msg("Account and history deleted")
	return nil
}

func scanAccount(row scanner) (*models.TradingAccount, error) {
	var a models.TradingAccount
	var equityGoal sql.NullFloat64
	var broker sql.NullString
	var isActive int

	err := row.Scan(&a.ID, &a.UserID, &a.Name, &broker, &a.InitialBalance,
		&a.CurrentBalance, &a.Currency, &equityGoal, &isActive, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}

	a.Broker = broker.String
	a.EquityGoal = floatPtr(equityGoal)
	a.IsActive = isActive == 1
	return &a, nil
}

// SaveTransaction inserts a deposit or withdrawal ledger entry.
func (s *SQLiteStore) SaveTransaction(ctx context.Context, tx *models.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO account_transactions (id, user_id, account_id, type, amount, note, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, tx.ID, tx.UserID, tx.AccountID, string(tx.Type), tx.Amount, tx.Note, tx.Date, tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	return nil
}

// GetTransactions retrieves ledger entries for an account, oldest first.
func (s *SQLiteStore) GetTransactions(ctx context.Context, accountID string) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, account_id, type, amount, note, date, created_at
		FROM account_transactions WHERE account_id = ? ORDER BY date ASC
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		var txType string
		var note sql.NullString
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.AccountID, &txType, &tx.Amount, &note, &tx.Date, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		tx.Type = models.TransactionType(txType)
		tx.Note = note.String
		txs = append(txs, tx)
	}

	return txs, rows.Err()
}

// ============================================================================
// Strategies
// ============================================================================

// SaveStrategy upserts a strategy.
func (s *SQLiteStore) SaveStrategy(ctx context.Context, strategy *models.Strategy) error {
	if strategy.ID == "" {
		strategy.ID = uuid.NewString()
	}
	if strategy.CreatedAt.IsZero() {
		strategy.CreatedAt = time.Now()
	}
	strategy.UpdatedAt = time.Now()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO strategies (id, user_id, name, description, entry_criteria, exit_criteria, partial_rules, break_even_rules, min_risk_reward, max_risk_reward, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, strategy.ID, strategy.UserID, strategy.Name, strategy.Description,
		strategy.EntryCriteria, strategy.ExitCriteria, strategy.PartialRules,
		strategy.BreakEvenRules, strategy.MinRiskReward, strategy.MaxRiskReward,
		strategy.CreatedAt, strategy.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save strategy: %w", err)
	}
	return nil
}

// GetStrategies retrieves a user's strategies by name.
func (s *SQLiteStore) GetStrategies(ctx context.Context, userID string) ([]models.Strategy, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, description, entry_criteria, exit_criteria, partial_rules, break_even_rules, min_risk_reward, max_risk_reward, created_at, updated_at
		FROM strategies WHERE user_id = ? ORDER BY name ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query strategies: %w", err)
	}
	defer rows.Close()

	var strategies []models.Strategy
	for rows.Next() {
		var st models.Strategy
		var description, entry, exit, partial, breakEven sql.NullString
		var minRR, maxRR sql.NullFloat64
		if err := rows.Scan(&st.ID, &st.UserID, &st.Name, &description, &entry, &exit,
			&partial, &breakEven, &minRR, &maxRR, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan strategy: %w", err)
		}
		st.Description = description.String
		st.EntryCriteria = entry.String
		st.ExitCriteria = exit.String
		st.PartialRules = partial.String
		st.BreakEvenRules = breakEven.String
		st.MinRiskReward = minRR.Float64
		st.MaxRiskReward = maxRR.Float64
		strategies = append(strategies, st)
	}

	return strategies, rows.Err()
}

// DeleteStrategy removes a strategy.
func (s *SQLiteStore) DeleteStrategy(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM strategies WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete strategy: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.ErrStrategyNotFound
	}
	return nil
}

// ============================================================================
// Confluence
// ============================================================================

// SaveConfluenceItem upserts a confluence checklist item.
func (s *SQLiteStore) SaveConfluenceItem(ctx context.Context, item *models.ConfluenceItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO confluence_items (id, user_id, name, weight, category, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, item.ID, item.UserID, item.Name, item.Weight, item.Category, boolInt(item.IsActive), item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save confluence item: %w", err)
	}
	return nil
}

// GetConfluenceItems retrieves confluence items matching the filter.
func (s *SQLiteStore) GetConfluenceItems(ctx context.Context, filter ConfluenceFilter) ([]models.ConfluenceItem, error) {
	query := "SELECT id, user_id, name, weight, category, is_active, created_at FROM confluence_items WHERE 1=1"
	args := []interface{}{}

	if filter.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filter.UserID)
	}
	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, filter.Category)
	}
	if filter.ActiveOnly {
		query += " AND is_active = 1"
	}
	query += " ORDER BY category ASC, name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query confluence items: %w", err)
	}
	defer rows.Close()

	var items []models.ConfluenceItem
	for rows.Next() {
		var item models.ConfluenceItem
		var category sql.NullString
		var isActive int
		if err := rows.Scan(&item.ID, &item.UserID, &item.Name, &item.Weight, &category, &isActive, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan confluence item: %w", err)
		}
		item.Category = category.String
		item.IsActive = isActive == 1
		items = append(items, item)
	}

	return items, rows.Err()
}

// DeleteConfluenceItem removes a confluence item.
func (s *SQLiteStore) DeleteConfluenceItem(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM confluence_items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete confluence item: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.ErrConfluenceNotFound
	}
	return nil
}

// SaveTradeConfluence replaces a trade's confluence selections.
func (s *SQLiteStore) SaveTradeConfluence(ctx context.Context, tradeID string, selections []models.TradeConfluence) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM trade_confluence WHERE trade_id = ?", tradeID); err != nil {
		return fmt.Errorf("failed to clear trade confluence: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trade_confluence (trade_id, confluence_item_id, present) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, sel := range selections {
		if _, err := stmt.ExecContext(ctx, tradeID, sel.ConfluenceItemID, boolInt(sel.Present)); err != nil {
			return fmt.Errorf("failed to insert trade confluence: %w", err)
		}
	}

	return tx.Commit()
}

// GetTradeConfluence retrieves a trade's confluence selections.
func (s *SQLiteStore) GetTradeConfluence(ctx context.Context, tradeID string) ([]models.TradeConfluence, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT trade_id, confluence_item_id, present FROM trade_confluence WHERE trade_id = ?
	`, tradeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trade confluence: %w", err)
	}
	defer rows.Close()

	var selections []models.TradeConfluence
	for rows.Next() {
		var sel models.TradeConfluence
		var present int
		if err := rows.Scan(&sel.TradeID, &sel.ConfluenceItemID, &present); err != nil {
			return nil, fmt.Errorf("failed to scan trade confluence: %w", err)
		}
		sel.Present = present == 1
		selections = append(selections, sel)
	}

	return selections, rows.Err()
}

// ============================================================================
// Notes
// ============================================================================

// SaveNote upserts a journal note.
func (s *SQLiteStore) SaveNote(ctx context.Context, note *models.Note) error {
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now()
	}
	note.UpdatedAt = time.Now()

	tags, _ := json.Marshal(note.Tags)
	screenshots, _ := json.Marshal(note.Screenshots)

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO notes (id, user_id, trade_id, title, content, tags, screenshots, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, note.ID, note.UserID, note.TradeID, note.Title, note.Content, string(tags), string(screenshots), note.CreatedAt, note.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save note: %w", err)
	}
	return nil
}

// GetNotes retrieves notes matching the filter, newest first.
func (s *SQLiteStore) GetNotes(ctx context.Context, filter NoteFilter) ([]models.Note, error) {
	query := "SELECT id, user_id, trade_id, title, content, tags, screenshots, created_at, updated_at FROM notes WHERE 1=1"
	args := []interface{}{}

	if filter.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filter.UserID)
	}
	if filter.TradeID != "" {
		query += " AND trade_id = ?"
		args = append(args, filter.TradeID)
	}
	if !filter.StartDate.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		query += " AND created_at <= ?"
		args = append(args, filter.EndDate)
	}

	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		var n models.Note
		var tradeID, title, tagsJSON, screenshotsJSON sql.NullString
		if err := rows.Scan(&n.ID, &n.UserID, &tradeID, &title, &n.Content, &tagsJSON, &screenshotsJSON, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		n.TradeID = tradeID.String
		n.Title = title.String
		if tagsJSON.String != "" {
			json.Unmarshal([]byte(tagsJSON.String), &n.Tags)
		}
		if screenshotsJSON.String != "" {
			json.Unmarshal([]byte(screenshotsJSON.String), &n.Screenshots)
		}

		// Tag filtering happens after tags are decoded from JSON.
		if filter.Tag != "" && !hasTag(n.Tags, filter.Tag) {
			continue
		}
		notes = append(notes, n)
	}

	return notes, rows.Err()
}

// DeleteNote removes a note.
func (s *SQLiteStore) DeleteNote(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.NewDataError("note", id, "not found", nil)
	}
	return nil
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ============================================================================
// Helpers
// ============================================================================

func nullFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
