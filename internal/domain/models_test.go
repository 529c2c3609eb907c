package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestParseTransactionType(t *testing.T) {
	for _, s := range []string{"deposit", "withdrawal"} {
		got, err := ParseTransactionType(s)
		require.NoError(t, err)
		assert.Equal(t, TransactionType(s), got)
	}

	for _, s := range []string{"", "Deposit", "transfer", "withdraw"} {
		_, err := ParseTransactionType(s)
		var invalid *InvalidInputError
		assert.ErrorAs(t, err, &invalid, "input %q", s)
	}
}

func TestTradeValidate(t *testing.T) {
	valid := Trade{
		Timestamp:            validTime,
		UserID:               1,
		TradeAmount:          100,
		TradeDurationSeconds: 60,
		ProfitLoss:           -5,
	}
	require.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		mutate func(*Trade)
	}{
		{"zero timestamp", func(tr *Trade) { tr.Timestamp = time.Time{} }},
		{"zero amount", func(tr *Trade) { tr.TradeAmount = 0 }},
		{"negative amount", func(tr *Trade) { tr.TradeAmount = -1 }},
		{"NaN amount", func(tr *Trade) { tr.TradeAmount = math.NaN() }},
		{"infinite amount", func(tr *Trade) { tr.TradeAmount = math.Inf(1) }},
		{"zero duration", func(tr *Trade) { tr.TradeDurationSeconds = 0 }},
		{"NaN profit loss", func(tr *Trade) { tr.ProfitLoss = math.NaN() }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := valid
			tc.mutate(&tr)

			var invalid *InvalidInputError
			assert.ErrorAs(t, tr.Validate(), &invalid)
		})
	}
}

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{
		Timestamp: validTime,
		UserID:    1,
		Type:      TransactionDeposit,
		Amount:    500,
	}
	require.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		mutate func(*Transaction)
	}{
		{"zero timestamp", func(tx *Transaction) { tx.Timestamp = time.Time{} }},
		{"empty type", func(tx *Transaction) { tx.Type = "" }},
		{"unknown type", func(tx *Transaction) { tx.Type = "transfer" }},
		{"zero amount", func(tx *Transaction) { tx.Amount = 0 }},
		{"negative amount", func(tx *Transaction) { tx.Amount = -100 }},
		{"NaN amount", func(tx *Transaction) { tx.Amount = math.NaN() }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := valid
			tc.mutate(&tx)

			var invalid *InvalidInputError
			assert.ErrorAs(t, tx.Validate(), &invalid)
		})
	}
}
