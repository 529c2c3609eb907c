// Package domain provides core domain models and the error taxonomy shared
// across the feature aggregation and scoring components.
package domain

import (
	"fmt"
	"math"
	"time"
)

// TransactionType represents the direction of a cash movement
type TransactionType string

const (
	TransactionDeposit    TransactionType = "deposit"
	TransactionWithdrawal TransactionType = "withdrawal"
)

// ParseTransactionType converts a wire string into a TransactionType
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(s) {
	case TransactionDeposit:
		return TransactionDeposit, nil
	case TransactionWithdrawal:
		return TransactionWithdrawal, nil
	default:
		return "", &InvalidInputError{Reason: fmt.Sprintf("unknown transaction type %q", s)}
	}
}

// Trade represents one executed trade. Immutable once created.
type Trade struct {
	Timestamp            time.Time `json:"timestamp"`
	UserID               int64     `json:"user_id"`
	TradeAmount          float64   `json:"trade_amount"`
	TradeDurationSeconds float64   `json:"trade_duration_seconds"`
	ProfitLoss           float64   `json:"profit_loss"`
}

// Validate checks that all required fields carry usable values
func (t Trade) Validate() error {
	if t.Timestamp.IsZero() {
		return &InvalidInputError{Reason: fmt.Sprintf("trade for user %d has no timestamp", t.UserID)}
	}
	if !isFinite(t.TradeAmount) || t.TradeAmount <= 0 {
		return &InvalidInputError{Reason: fmt.Sprintf("trade for user %d has invalid trade_amount %v", t.UserID, t.TradeAmount)}
	}
	if !isFinite(t.TradeDurationSeconds) || t.TradeDurationSeconds <= 0 {
		return &InvalidInputError{Reason: fmt.Sprintf("trade for user %d has invalid trade_duration_seconds %v", t.UserID, t.TradeDurationSeconds)}
	}
	if !isFinite(t.ProfitLoss) {
		return &InvalidInputError{Reason: fmt.Sprintf("trade for user %d has invalid profit_loss %v", t.UserID, t.ProfitLoss)}
	}
	return nil
}

// Transaction represents one deposit or withdrawal. Immutable once created.
type Transaction struct {
	Timestamp time.Time       `json:"timestamp"`
	Type      TransactionType `json:"transaction_type"`
	UserID    int64           `json:"user_id"`
	Amount    float64         `json:"amount"`
}

// Validate checks that all required fields carry usable values
func (t Transaction) Validate() error {
	if t.Timestamp.IsZero() {
		return &InvalidInputError{Reason: fmt.Sprintf("transaction for user %d has no timestamp", t.UserID)}
	}
	if t.Type != TransactionDeposit && t.Type != TransactionWithdrawal {
		return &InvalidInputError{Reason: fmt.Sprintf("transaction for user %d has unknown type %q", t.UserID, t.Type)}
	}
	if !isFinite(t.Amount) || t.Amount <= 0 {
		return &InvalidInputError{Reason: fmt.Sprintf("transaction for user %d has invalid amount %v", t.UserID, t.Amount)}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
