package synth

import (
	"math/rand/v2"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/fraudwatch/fraudwatch/internal/domain"
)

// Fraction of users independently marked fraudulent in population mode
const populationFraudRate = 0.10

// dister is the draw surface shared by all distuv distributions we use
type dister interface {
	Rand() float64
}

// constDist yields a fixed value; used where an archetype has no variance
type constDist float64

func (c constDist) Rand() float64 { return float64(c) }

// profileParams parameterizes one archetype's distribution draws
type profileParams struct {
	minTrades int
	maxTrades int // inclusive

	tradeAmounts   dister
	tradeDurations dister

	// Profit/loss: Normal(0, pnlSigma) when pnlAmountScale is zero,
	// otherwise Normal(0, amount*pnlAmountScale).
	pnlSigma       float64
	pnlAmountScale float64

	minTxns      int
	maxTxns      int // inclusive
	txnAmounts   dister
	depositShare float64 // probability a generated transaction is a deposit

	// The deposit-then-drain pattern replaces the generic transaction draw
	drainPattern bool
}

// Generator produces deterministic synthetic data given a fixed seed.
// One PCG source drives the rng and every distribution, so all draws go
// through mu; a single Generator is safe for concurrent handlers.
type Generator struct {
	mu     sync.Mutex
	rng    *rand.Rand
	normal dister // standard normal, for amount-proportional P/L
	params [numProfiles]profileParams
	start  time.Time // history window start, 30 days back
}

// NewGenerator creates a generator with a deterministic random source
func NewGenerator(seed int64) *Generator {
	src := rand.NewPCG(uint64(seed), uint64(seed)+1)
	g := &Generator{
		rng:    rand.New(src),
		normal: distuv.Normal{Mu: 0, Sigma: 1, Src: src},
		start:  time.Now().UTC().Add(-30 * 24 * time.Hour),
	}

	g.params = [numProfiles]profileParams{
		RegularTrader: {
			minTrades: 10, maxTrades: 49,
			tradeAmounts:   distuv.LogNormal{Mu: 4, Sigma: 1, Src: src},
			tradeDurations: distuv.LogNormal{Mu: 5, Sigma: 1, Src: src},
			pnlAmountScale: 0.1,
			minTxns:        5, maxTxns: 14,
			txnAmounts:   distuv.LogNormal{Mu: 5, Sigma: 1, Src: src},
			depositShare: 0.6,
		},
		HighVolumeTrader: {
			minTrades: 40, maxTrades: 80,
			tradeAmounts:   distuv.LogNormal{Mu: 5.5, Sigma: 0.6, Src: src},
			tradeDurations: distuv.LogNormal{Mu: 3.5, Sigma: 0.8, Src: src},
			pnlAmountScale: 0.1,
			minTxns:        8, maxTxns: 20,
			txnAmounts:   distuv.LogNormal{Mu: 6, Sigma: 0.8, Src: src},
			depositShare: 0.6,
		},
		NewUser: {
			minTrades: 1, maxTrades: 5,
			tradeAmounts:   distuv.LogNormal{Mu: 3, Sigma: 0.5, Src: src},
			tradeDurations: distuv.LogNormal{Mu: 5, Sigma: 1, Src: src},
			pnlAmountScale: 0.1,
			minTxns:        1, maxTxns: 2,
			txnAmounts:   distuv.LogNormal{Mu: 4, Sigma: 0.5, Src: src},
			depositShare: 1.0, // deposits only, no withdrawals yet
		},
		SuspiciousPattern: {
			minTrades: 1, maxTrades: 4,
			tradeAmounts:   distuv.Normal{Mu: 15, Sigma: 10, Src: src},
			tradeDurations: distuv.Exponential{Rate: 1.0 / 30.0, Src: src},
			pnlSigma:       2,
			drainPattern:   true,
		},
		DayTrader: {
			minTrades: 20, maxTrades: 60,
			tradeAmounts:   distuv.LogNormal{Mu: 4, Sigma: 0.7, Src: src},
			tradeDurations: distuv.LogNormal{Mu: 2.5, Sigma: 0.7, Src: src},
			pnlAmountScale: 0.1,
			minTxns:        5, maxTxns: 12,
			txnAmounts:   distuv.LogNormal{Mu: 5, Sigma: 0.8, Src: src},
			depositShare: 0.6,
		},
		LongTermInvestor: {
			minTrades: 3, maxTrades: 9,
			tradeAmounts:   distuv.LogNormal{Mu: 5, Sigma: 0.8, Src: src},
			tradeDurations: distuv.LogNormal{Mu: 8, Sigma: 1, Src: src},
			pnlAmountScale: 0.1,
			minTxns:        2, maxTxns: 7,
			txnAmounts:   distuv.LogNormal{Mu: 6, Sigma: 0.7, Src: src},
			depositShare: 0.75,
		},
	}

	return g
}

// Generate synthesizes one user's trades and transactions for an archetype
// and returns them with the archetype's ground-truth fraud label.
func (g *Generator) Generate(profile Profile, userID int64) ([]domain.Trade, []domain.Transaction, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.generate(profile, userID)
}

func (g *Generator) generate(profile Profile, userID int64) ([]domain.Trade, []domain.Transaction, bool) {
	p := g.params[profile]

	trades := g.generateTrades(p, userID)

	var txns []domain.Transaction
	if p.drainPattern {
		txns = g.generateDrainTransactions(userID)
	} else {
		txns = g.generateTransactions(p, userID)
	}

	return trades, txns, profile.Fraudulent()
}

func (g *Generator) generateTrades(p profileParams, userID int64) []domain.Trade {
	n := g.intRange(p.minTrades, p.maxTrades)
	trades := make([]domain.Trade, 0, n)
	for i := 0; i < n; i++ {
		amount := p.tradeAmounts.Rand()
		if amount < 1 {
			amount = 1
		}
		duration := p.tradeDurations.Rand()
		if duration < 1 {
			duration = 1
		}

		var pnl float64
		if p.pnlAmountScale > 0 {
			pnl = g.normal.Rand() * amount * p.pnlAmountScale
		} else {
			pnl = g.normal.Rand() * p.pnlSigma
		}

		trades = append(trades, domain.Trade{
			UserID:               userID,
			Timestamp:            g.start.Add(time.Duration(g.intRange(1, 720)) * time.Hour),
			TradeAmount:          amount,
			TradeDurationSeconds: duration,
			ProfitLoss:           pnl,
		})
	}
	return trades
}

func (g *Generator) generateTransactions(p profileParams, userID int64) []domain.Transaction {
	n := g.intRange(p.minTxns, p.maxTxns)
	txns := make([]domain.Transaction, 0, n)
	for i := 0; i < n; i++ {
		txType := domain.TransactionWithdrawal
		if g.rng.Float64() < p.depositShare {
			txType = domain.TransactionDeposit
		}
		txns = append(txns, domain.Transaction{
			UserID:    userID,
			Timestamp: g.start.Add(time.Duration(g.intRange(1, 29)) * 24 * time.Hour),
			Type:      txType,
			Amount:    p.txnAmounts.Rand(),
		})
	}
	return txns
}

// generateDrainTransactions produces the fraud signature: one large deposit
// followed within days by a withdrawal of 85-98% of it, occasionally with a
// small movement in between.
func (g *Generator) generateDrainTransactions(userID int64) []domain.Transaction {
	deposit := distuv.LogNormal{Mu: 8, Sigma: 0.5, Src: g.rng}.Rand()
	delayDays := distuv.Exponential{Rate: 0.5, Src: g.rng}.Rand()
	fraction := 0.85 + g.rng.Float64()*(0.98-0.85)

	txns := []domain.Transaction{{
		UserID:    userID,
		Timestamp: g.start,
		Type:      domain.TransactionDeposit,
		Amount:    deposit,
	}}

	if g.rng.Float64() < 0.3 {
		txType := domain.TransactionDeposit
		if g.rng.Float64() < 0.5 {
			txType = domain.TransactionWithdrawal
		}
		txns = append(txns, domain.Transaction{
			UserID:    userID,
			Timestamp: g.start.Add(time.Duration(delayDays / 2 * 24 * float64(time.Hour))),
			Type:      txType,
			Amount:    deposit * 0.1,
		})
	}

	txns = append(txns, domain.Transaction{
		UserID:    userID,
		Timestamp: g.start.Add(time.Duration(delayDays * 24 * float64(time.Hour))),
		Type:      domain.TransactionWithdrawal,
		Amount:    deposit * fraction,
	})

	return txns
}

// Dataset is a population-mode training set
type Dataset struct {
	Trades       []domain.Trade
	Transactions []domain.Transaction
	Labels       map[int64]bool
}

// GeneratePopulation builds a labeled training population. Each user's
// fraud status is sampled independently at the base rate; fraudulent users
// get the drain signature, legitimate users the regular archetype.
func (g *Generator) GeneratePopulation(n int) *Dataset {
	g.mu.Lock()
	defer g.mu.Unlock()

	ds := &Dataset{Labels: make(map[int64]bool, n)}

	for userID := int64(0); userID < int64(n); userID++ {
		profile := RegularTrader
		if g.rng.Float64() < populationFraudRate {
			profile = SuspiciousPattern
		}

		trades, txns, fraudulent := g.generate(profile, userID)
		ds.Trades = append(ds.Trades, trades...)
		ds.Transactions = append(ds.Transactions, txns...)
		ds.Labels[userID] = fraudulent
	}

	return ds
}

// intRange draws uniformly from [lo, hi] inclusive
func (g *Generator) intRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + g.rng.IntN(hi-lo+1)
}
