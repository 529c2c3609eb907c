// Package features computes per-user behavioral feature vectors from raw
// trade and transaction history.
package features

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/fraudwatch/fraudwatch/internal/domain"
)

// Column indices into a Vector. Order is the fixed feature schema the model
// is trained on and must never be reordered without retraining.
const (
	TradeAmountCount = iota
	TradeAmountMean
	TradeAmountStd
	TradeAmountSum
	TradeDurationMean
	TradeDurationStd
	ProfitLossMean
	ProfitLossStd
	ProfitLossSum
	DepositAmountCount
	DepositAmountMean
	DepositAmountSum
	WithdrawalAmountCount
	WithdrawalAmountMean
	WithdrawalAmountSum
	DepositWithdrawalRatio
	AvgTradeAmountPerDeposit
	TradeFrequency

	NumColumns
)

// columns holds the canonical column names, indexed by the constants above.
var columns = [NumColumns]string{
	"trade_amount_count",
	"trade_amount_mean",
	"trade_amount_std",
	"trade_amount_sum",
	"trade_duration_seconds_mean",
	"trade_duration_seconds_std",
	"profit_loss_mean",
	"profit_loss_std",
	"profit_loss_sum",
	"deposit_amount_count",
	"deposit_amount_mean",
	"deposit_amount_sum",
	"withdrawal_amount_count",
	"withdrawal_amount_mean",
	"withdrawal_amount_sum",
	"deposit_withdrawal_ratio",
	"avg_trade_amount_per_deposit",
	"trade_frequency",
}

// Schema returns the ordered feature column names
func Schema() []string {
	s := make([]string, NumColumns)
	copy(s, columns[:])
	return s
}

// Vector is one user's feature row, indexed by the column constants
type Vector []float64

// tradeAccum collects one user's raw trade series before aggregation
type tradeAccum struct {
	amounts   []float64
	durations []float64
	pnls      []float64
}

// Compute aggregates trades and transactions into one feature vector per
// user. Every user appearing in either input gets a row; statistics for
// groups the user has no records in are zero-filled. Inputs are never
// mutated.
func Compute(trades []domain.Trade, txns []domain.Transaction) (map[int64]Vector, error) {
	tradeGroups := make(map[int64]*tradeAccum)
	for _, t := range trades {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		acc, ok := tradeGroups[t.UserID]
		if !ok {
			acc = &tradeAccum{}
			tradeGroups[t.UserID] = acc
		}
		acc.amounts = append(acc.amounts, t.TradeAmount)
		acc.durations = append(acc.durations, t.TradeDurationSeconds)
		acc.pnls = append(acc.pnls, t.ProfitLoss)
	}

	deposits := make(map[int64][]float64)
	withdrawals := make(map[int64][]float64)
	for _, tx := range txns {
		if err := tx.Validate(); err != nil {
			return nil, err
		}
		switch tx.Type {
		case domain.TransactionDeposit:
			deposits[tx.UserID] = append(deposits[tx.UserID], tx.Amount)
		case domain.TransactionWithdrawal:
			withdrawals[tx.UserID] = append(withdrawals[tx.UserID], tx.Amount)
		}
	}

	userIDs := make(map[int64]struct{})
	for id := range tradeGroups {
		userIDs[id] = struct{}{}
	}
	for id := range deposits {
		userIDs[id] = struct{}{}
	}
	for id := range withdrawals {
		userIDs[id] = struct{}{}
	}

	result := make(map[int64]Vector, len(userIDs))
	for id := range userIDs {
		vec := make(Vector, NumColumns)
		// Mark everything absent, then overwrite with computed statistics.
		// A single fill pass below coerces whatever stayed NaN (absent
		// groups, undefined single-sample std) to zero.
		for i := range vec {
			vec[i] = math.NaN()
		}

		if acc, ok := tradeGroups[id]; ok {
			vec[TradeAmountCount] = float64(len(acc.amounts))
			vec[TradeAmountMean] = stat.Mean(acc.amounts, nil)
			vec[TradeAmountStd] = stat.StdDev(acc.amounts, nil)
			vec[TradeAmountSum] = floats.Sum(acc.amounts)
			vec[TradeDurationMean] = stat.Mean(acc.durations, nil)
			vec[TradeDurationStd] = stat.StdDev(acc.durations, nil)
			vec[ProfitLossMean] = stat.Mean(acc.pnls, nil)
			vec[ProfitLossStd] = stat.StdDev(acc.pnls, nil)
			vec[ProfitLossSum] = floats.Sum(acc.pnls)
		}

		if amounts, ok := deposits[id]; ok {
			vec[DepositAmountCount] = float64(len(amounts))
			vec[DepositAmountMean] = stat.Mean(amounts, nil)
			vec[DepositAmountSum] = floats.Sum(amounts)
		}

		if amounts, ok := withdrawals[id]; ok {
			vec[WithdrawalAmountCount] = float64(len(amounts))
			vec[WithdrawalAmountMean] = stat.Mean(amounts, nil)
			vec[WithdrawalAmountSum] = floats.Sum(amounts)
		}

		for i := range vec {
			if math.IsNaN(vec[i]) || math.IsInf(vec[i], 0) {
				vec[i] = 0
			}
		}

		// Derived ratios. The +1 denominators keep them defined for users
		// with no deposits or withdrawals; the resulting bias is part of the
		// trained schema and must match between training and inference.
		vec[DepositWithdrawalRatio] = vec[DepositAmountSum] / (vec[WithdrawalAmountSum] + 1)
		vec[AvgTradeAmountPerDeposit] = vec[TradeAmountSum] / (vec[DepositAmountSum] + 1)
		vec[TradeFrequency] = vec[TradeAmountCount] / (vec[DepositAmountCount] + 1)

		result[id] = vec
	}

	return result, nil
}

// Matrix flattens a feature map into rows ordered by ascending user id.
// The returned ids slice is aligned with the rows.
func Matrix(vectors map[int64]Vector) (ids []int64, rows [][]float64) {
	ids = make([]int64, 0, len(vectors))
	for id := range vectors {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	rows = make([][]float64, len(ids))
	for i, id := range ids {
		rows[i] = vectors[id]
	}
	return ids, rows
}
