package events

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fraudwatch/fraudwatch/internal/database"
	"github.com/fraudwatch/fraudwatch/internal/domain"
)

func testRepository(t *testing.T) *Repository {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "events.db"),
		Profile: database.ProfileEvents,
		Name:    "events-test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo, err := NewRepository(db, zerolog.Nop())
	require.NoError(t, err)
	return repo
}

func sampleDataset(ts time.Time) ([]domain.Trade, []domain.Transaction, map[int64]bool) {
	trades := []domain.Trade{
		{UserID: 1, Timestamp: ts, TradeAmount: 100, TradeDurationSeconds: 60, ProfitLoss: 5},
		{UserID: 1, Timestamp: ts.Add(time.Hour), TradeAmount: 250, TradeDurationSeconds: 120, ProfitLoss: -12},
		{UserID: 2, Timestamp: ts, TradeAmount: 42, TradeDurationSeconds: 30, ProfitLoss: 1},
	}
	txns := []domain.Transaction{
		{UserID: 1, Timestamp: ts, Type: domain.TransactionDeposit, Amount: 1000},
		{UserID: 1, Timestamp: ts.Add(2 * time.Hour), Type: domain.TransactionWithdrawal, Amount: 900},
		{UserID: 2, Timestamp: ts, Type: domain.TransactionDeposit, Amount: 50},
	}
	labels := map[int64]bool{1: true, 2: false}
	return trades, txns, labels
}

func TestSaveAndGetUserEvents(t *testing.T) {
	repo := testRepository(t)
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	trades, txns, labels := sampleDataset(ts)

	require.NoError(t, repo.SaveDataset(trades, txns, labels))

	gotTrades, gotTxns, err := repo.GetUserEvents(1)
	require.NoError(t, err)
	require.Len(t, gotTrades, 2)
	require.Len(t, gotTxns, 2)

	assert.Equal(t, trades[0], gotTrades[0])
	assert.Equal(t, trades[1], gotTrades[1])
	assert.Equal(t, txns[0], gotTxns[0])
	assert.Equal(t, txns[1], gotTxns[1])

	gotTrades, gotTxns, err = repo.GetUserEvents(2)
	require.NoError(t, err)
	assert.Len(t, gotTrades, 1)
	assert.Len(t, gotTxns, 1)
}

func TestGetUserEvents_UnknownUser(t *testing.T) {
	repo := testRepository(t)

	trades, txns, err := repo.GetUserEvents(999)
	require.NoError(t, err)
	assert.Empty(t, trades)
	assert.Empty(t, txns)
}

func TestGetLabel(t *testing.T) {
	repo := testRepository(t)
	trades, txns, labels := sampleDataset(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.SaveDataset(trades, txns, labels))

	fraudulent, found, err := repo.GetLabel(1)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, fraudulent)

	fraudulent, found, err = repo.GetLabel(2)
	require.NoError(t, err)
	assert.True(t, found)
	assert.False(t, fraudulent)

	_, found, err = repo.GetLabel(999)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCountUsersAndReset(t *testing.T) {
	repo := testRepository(t)

	n, err := repo.CountUsers()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	trades, txns, labels := sampleDataset(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.SaveDataset(trades, txns, labels))

	n, err = repo.CountUsers()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, repo.Reset())

	n, err = repo.CountUsers()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	gotTrades, gotTxns, err := repo.GetUserEvents(1)
	require.NoError(t, err)
	assert.Empty(t, gotTrades)
	assert.Empty(t, gotTxns)
}
