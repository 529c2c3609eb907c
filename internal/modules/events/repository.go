// Package events persists trade and transaction history in SQLite.
// It is the reference implementation of the event-store contract the
// scoring pipeline consumes.
package events

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fraudwatch/fraudwatch/internal/database"
	"github.com/fraudwatch/fraudwatch/internal/domain"
)

// Repository handles event database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates an event repository and ensures its schema exists
func NewRepository(db *database.DB, log zerolog.Logger) (*Repository, error) {
	r := &Repository{
		db:  db.Conn(),
		log: log.With().Str("repo", "events").Logger(),
	}
	if err := r.ensureSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize events schema: %w", err)
	}
	return r, nil
}

func (r *Repository) ensureSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		timestamp INTEGER NOT NULL,
		trade_amount REAL NOT NULL,
		trade_duration_seconds REAL NOT NULL,
		profit_loss REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_trades_user ON trades(user_id);

	CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		timestamp INTEGER NOT NULL,
		transaction_type TEXT NOT NULL CHECK (transaction_type IN ('deposit', 'withdrawal')),
		amount REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions(user_id);

	CREATE TABLE IF NOT EXISTS labels (
		user_id INTEGER PRIMARY KEY,
		is_fraudulent INTEGER NOT NULL
	);`

	_, err := r.db.Exec(schema)
	return err
}

// SaveDataset stores a full generated dataset in one transaction.
// Existing rows are kept; callers wanting a fresh store should use Reset.
func (r *Repository) SaveDataset(trades []domain.Trade, txns []domain.Transaction, labels map[int64]bool) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin dataset transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	tradeStmt, err := tx.Prepare(`INSERT INTO trades (user_id, timestamp, trade_amount, trade_duration_seconds, profit_loss) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare trade insert: %w", err)
	}
	defer tradeStmt.Close()

	for _, t := range trades {
		if _, err := tradeStmt.Exec(t.UserID, t.Timestamp.Unix(), t.TradeAmount, t.TradeDurationSeconds, t.ProfitLoss); err != nil {
			return fmt.Errorf("failed to insert trade for user %d: %w", t.UserID, err)
		}
	}

	txnStmt, err := tx.Prepare(`INSERT INTO transactions (user_id, timestamp, transaction_type, amount) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare transaction insert: %w", err)
	}
	defer txnStmt.Close()

	for _, t := range txns {
		if _, err := txnStmt.Exec(t.UserID, t.Timestamp.Unix(), string(t.Type), t.Amount); err != nil {
			return fmt.Errorf("failed to insert transaction for user %d: %w", t.UserID, err)
		}
	}

	labelStmt, err := tx.Prepare(`INSERT OR REPLACE INTO labels (user_id, is_fraudulent) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare label insert: %w", err)
	}
	defer labelStmt.Close()

	for userID, fraudulent := range labels {
		if _, err := labelStmt.Exec(userID, fraudulent); err != nil {
			return fmt.Errorf("failed to insert label for user %d: %w", userID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit dataset: %w", err)
	}

	r.log.Info().
		Int("trades", len(trades)).
		Int("transactions", len(txns)).
		Int("users", len(labels)).
		Msg("Dataset persisted")

	return nil
}

// GetUserEvents loads one user's full trade and transaction history
func (r *Repository) GetUserEvents(userID int64) ([]domain.Trade, []domain.Transaction, error) {
	rows, err := r.db.Query(`SELECT user_id, timestamp, trade_amount, trade_duration_seconds, profit_loss FROM trades WHERE user_id = ? ORDER BY timestamp`, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query trades for user %d: %w", userID, err)
	}
	defer rows.Close()

	var trades []domain.Trade
	for rows.Next() {
		var t domain.Trade
		var ts int64
		if err := rows.Scan(&t.UserID, &ts, &t.TradeAmount, &t.TradeDurationSeconds, &t.ProfitLoss); err != nil {
			return nil, nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		t.Timestamp = time.Unix(ts, 0).UTC()
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate trades: %w", err)
	}

	txnRows, err := r.db.Query(`SELECT user_id, timestamp, transaction_type, amount FROM transactions WHERE user_id = ? ORDER BY timestamp`, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query transactions for user %d: %w", userID, err)
	}
	defer txnRows.Close()

	var txns []domain.Transaction
	for txnRows.Next() {
		var t domain.Transaction
		var ts int64
		var txType string
		if err := txnRows.Scan(&t.UserID, &ts, &txType, &t.Amount); err != nil {
			return nil, nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.Timestamp = time.Unix(ts, 0).UTC()
		t.Type = domain.TransactionType(txType)
		txns = append(txns, t)
	}
	if err := txnRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return trades, txns, nil
}

// GetLabel returns a user's ground-truth label if one is stored
func (r *Repository) GetLabel(userID int64) (fraudulent bool, found bool, err error) {
	err = r.db.QueryRow(`SELECT is_fraudulent FROM labels WHERE user_id = ?`, userID).Scan(&fraudulent)
	if err == sql.ErrNoRows {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("failed to query label for user %d: %w", userID, err)
	}
	return fraudulent, true, nil
}

// CountUsers returns the number of labeled users in the store
func (r *Repository) CountUsers() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM labels`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// Reset drops all stored events and labels
func (r *Repository) Reset() error {
	for _, table := range []string{"trades", "transactions", "labels"} {
		if _, err := r.db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}
