package features

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fraudwatch/fraudwatch/internal/domain"
)

var testTime = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func makeTrade(userID int64, amount, duration, pnl float64) domain.Trade {
	return domain.Trade{
		UserID:               userID,
		Timestamp:            testTime,
		TradeAmount:          amount,
		TradeDurationSeconds: duration,
		ProfitLoss:           pnl,
	}
}

func makeTxn(userID int64, txType domain.TransactionType, amount float64) domain.Transaction {
	return domain.Transaction{
		UserID:    userID,
		Timestamp: testTime,
		Type:      txType,
		Amount:    amount,
	}
}

func TestCompute_TradeStatistics(t *testing.T) {
	trades := []domain.Trade{
		makeTrade(1, 100, 60, 10),
		makeTrade(1, 200, 120, -10),
	}

	vectors, err := Compute(trades, nil)
	require.NoError(t, err)
	require.Contains(t, vectors, int64(1))

	vec := vectors[1]
	assert.Equal(t, 2.0, vec[TradeAmountCount])
	assert.InDelta(t, 150.0, vec[TradeAmountMean], 1e-9)
	assert.InDelta(t, math.Sqrt(5000), vec[TradeAmountStd], 1e-9)
	assert.InDelta(t, 300.0, vec[TradeAmountSum], 1e-9)
	assert.InDelta(t, 90.0, vec[TradeDurationMean], 1e-9)
	assert.InDelta(t, 0.0, vec[ProfitLossMean], 1e-9)
	assert.InDelta(t, 0.0, vec[ProfitLossSum], 1e-9)
}

func TestCompute_RowPerUserAcrossInputs(t *testing.T) {
	// User 1 appears only in trades, user 2 only in transactions; both must
	// get a complete row.
	trades := []domain.Trade{makeTrade(1, 50, 30, 1)}
	txns := []domain.Transaction{makeTxn(2, domain.TransactionDeposit, 500)}

	vectors, err := Compute(trades, txns)
	require.NoError(t, err)
	require.Len(t, vectors, 2)

	for id, vec := range vectors {
		require.Len(t, vec, NumColumns, "user %d", id)
		for i, v := range vec {
			assert.False(t, math.IsNaN(v), "user %d column %s is NaN", id, columns[i])
			assert.False(t, math.IsInf(v, 0), "user %d column %s is Inf", id, columns[i])
		}
	}

	// Trade-only user has zero transaction features
	assert.Equal(t, 0.0, vectors[1][DepositAmountCount])
	assert.Equal(t, 0.0, vectors[1][WithdrawalAmountSum])

	// Transaction-only user has zero trade features
	assert.Equal(t, 0.0, vectors[2][TradeAmountCount])
	assert.Equal(t, 0.0, vectors[2][TradeAmountSum])
}

func TestCompute_SingleSampleStdIsZero(t *testing.T) {
	trades := []domain.Trade{makeTrade(7, 100, 60, 5)}

	vectors, err := Compute(trades, nil)
	require.NoError(t, err)

	vec := vectors[7]
	assert.Equal(t, 0.0, vec[TradeAmountStd])
	assert.Equal(t, 0.0, vec[TradeDurationStd])
	assert.Equal(t, 0.0, vec[ProfitLossStd])
}

func TestCompute_RatiosAlwaysFinite(t *testing.T) {
	// No withdrawals and no deposits: every ratio denominator would be zero
	// without the +1 offset.
	trades := []domain.Trade{makeTrade(3, 100, 60, 0)}

	vectors, err := Compute(trades, nil)
	require.NoError(t, err)

	vec := vectors[3]
	assert.Equal(t, 0.0, vec[DepositWithdrawalRatio])
	assert.InDelta(t, 100.0, vec[AvgTradeAmountPerDeposit], 1e-9) // 100 / (0+1)
	assert.InDelta(t, 1.0, vec[TradeFrequency], 1e-9)             // 1 / (0+1)
}

func TestCompute_RatioValues(t *testing.T) {
	trades := []domain.Trade{
		makeTrade(4, 300, 60, 0),
		makeTrade(4, 100, 60, 0),
	}
	txns := []domain.Transaction{
		makeTxn(4, domain.TransactionDeposit, 1000),
		makeTxn(4, domain.TransactionWithdrawal, 400),
	}

	vectors, err := Compute(trades, txns)
	require.NoError(t, err)

	vec := vectors[4]
	assert.InDelta(t, 1000.0/401.0, vec[DepositWithdrawalRatio], 1e-9)
	assert.InDelta(t, 400.0/1001.0, vec[AvgTradeAmountPerDeposit], 1e-9)
	assert.InDelta(t, 2.0/2.0, vec[TradeFrequency], 1e-9)
}

func TestCompute_Idempotent(t *testing.T) {
	trades := []domain.Trade{
		makeTrade(1, 100, 60, 10),
		makeTrade(2, 250, 90, -3),
	}
	txns := []domain.Transaction{
		makeTxn(1, domain.TransactionDeposit, 500),
		makeTxn(2, domain.TransactionWithdrawal, 120),
	}

	first, err := Compute(trades, txns)
	require.NoError(t, err)
	second, err := Compute(trades, txns)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCompute_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		trades []domain.Trade
		txns   []domain.Transaction
	}{
		{
			name:   "trade without timestamp",
			trades: []domain.Trade{{UserID: 1, TradeAmount: 10, TradeDurationSeconds: 5}},
		},
		{
			name:   "trade with NaN amount",
			trades: []domain.Trade{{UserID: 1, Timestamp: testTime, TradeAmount: math.NaN(), TradeDurationSeconds: 5}},
		},
		{
			name: "transaction with unknown type",
			txns: []domain.Transaction{{UserID: 1, Timestamp: testTime, Type: "transfer", Amount: 10}},
		},
		{
			name: "transaction with negative amount",
			txns: []domain.Transaction{{UserID: 1, Timestamp: testTime, Type: domain.TransactionDeposit, Amount: -5}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.trades, tt.txns)
			require.Error(t, err)

			var invalid *domain.InvalidInputError
			assert.ErrorAs(t, err, &invalid)
		})
	}
}

func TestSchemaMatchesColumns(t *testing.T) {
	schema := Schema()
	require.Len(t, schema, NumColumns)
	assert.Equal(t, "trade_amount_count", schema[TradeAmountCount])
	assert.Equal(t, "deposit_withdrawal_ratio", schema[DepositWithdrawalRatio])
	assert.Equal(t, "trade_frequency", schema[TradeFrequency])

	// Schema returns a copy; mutating it must not affect the canonical order
	schema[0] = "mutated"
	assert.Equal(t, "trade_amount_count", Schema()[0])
}

func TestMatrix_OrderedByUserID(t *testing.T) {
	vectors := map[int64]Vector{
		30: make(Vector, NumColumns),
		10: make(Vector, NumColumns),
		20: make(Vector, NumColumns),
	}
	vectors[10][TradeAmountSum] = 1
	vectors[20][TradeAmountSum] = 2
	vectors[30][TradeAmountSum] = 3

	ids, rows := Matrix(vectors)
	assert.Equal(t, []int64{10, 20, 30}, ids)
	assert.Equal(t, 1.0, rows[0][TradeAmountSum])
	assert.Equal(t, 3.0, rows[2][TradeAmountSum])
}
