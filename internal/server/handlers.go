package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fraudwatch/fraudwatch/internal/domain"
	"github.com/fraudwatch/fraudwatch/internal/modules/features"
	"github.com/fraudwatch/fraudwatch/internal/modules/risk"
)

// tradePayload is one trade in a scoring request
type tradePayload struct {
	Timestamp            string  `json:"timestamp"`
	TradeAmount          float64 `json:"trade_amount"`
	TradeDurationSeconds float64 `json:"trade_duration_seconds"`
	ProfitLoss           float64 `json:"profit_loss"`
}

// transactionPayload is one cash movement in a scoring request
type transactionPayload struct {
	Timestamp       string  `json:"timestamp"`
	TransactionType string  `json:"transaction_type"`
	Amount          float64 `json:"amount"`
}

// predictRequest is the scoring request body
type predictRequest struct {
	UserID       int64                `json:"user_id"`
	Trades       []tradePayload       `json:"trades"`
	Transactions []transactionPayload `json:"transactions"`
}

// predictResponse is the scoring verdict
type predictResponse struct {
	UserID           int64      `json:"user_id"`
	FraudProbability float64    `json:"fraud_probability"`
	RiskLevel        risk.Level `json:"risk_level"`
}

// handlePredict scores a user from event data supplied in the request.
// POST /api/predict
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	trades, txns, err := req.toDomain()
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", req.UserID).Msg("Rejected malformed scoring request")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp, err := s.scoreUser(req.UserID, trades, txns)
	if err != nil {
		s.writeScoringError(w, req.UserID, err)
		return
	}

	s.respondJSON(w, http.StatusOK, resp)
}

// handleScoreStoredUser scores a user from history held in the event store.
// GET /api/users/{userID}/score
func (s *Server) handleScoreStoredUser(w http.ResponseWriter, r *http.Request) {
	if s.eventRepo == nil {
		http.Error(w, "event store is not configured", http.StatusNotFound)
		return
	}

	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	trades, txns, err := s.eventRepo.GetUserEvents(userID)
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", userID).Msg("Failed to load user events")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(trades) == 0 && len(txns) == 0 {
		http.Error(w, fmt.Sprintf("no events stored for user %d", userID), http.StatusNotFound)
		return
	}

	resp, err := s.scoreUser(userID, trades, txns)
	if err != nil {
		s.writeScoringError(w, userID, err)
		return
	}

	s.respondJSON(w, http.StatusOK, resp)
}

// scoreUser runs the full pipeline for one user: aggregation, prediction,
// tiering.
func (s *Server) scoreUser(userID int64, trades []domain.Trade, txns []domain.Transaction) (*predictResponse, error) {
	vectors, err := features.Compute(trades, txns)
	if err != nil {
		return nil, err
	}

	vec, ok := vectors[userID]
	if !ok {
		return nil, &domain.InvalidInputError{Reason: fmt.Sprintf("no events for user %d", userID)}
	}

	model := s.snapshot.Current()
	if model == nil {
		return nil, &domain.ModelNotFittedError{}
	}

	probs, err := model.Predict([][]float64{vec}, features.Schema())
	if err != nil {
		return nil, err
	}

	return &predictResponse{
		UserID:           userID,
		FraudProbability: probs[0],
		RiskLevel:        risk.Tier(probs[0]),
	}, nil
}

// writeScoringError maps pipeline failures onto HTTP status codes. All
// aggregation, schema, and model errors surface with the underlying message;
// an unfitted model reports as unavailable rather than a server fault.
func (s *Server) writeScoringError(w http.ResponseWriter, userID int64, err error) {
	var notFitted *domain.ModelNotFittedError
	if errors.As(err, &notFitted) {
		http.Error(w, "no trained model is loaded", http.StatusServiceUnavailable)
		return
	}

	s.log.Error().Err(err).Int64("user_id", userID).Msg("Scoring failed")
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

// toDomain converts wire payloads into validated domain records
func (r *predictRequest) toDomain() ([]domain.Trade, []domain.Transaction, error) {
	trades := make([]domain.Trade, 0, len(r.Trades))
	for _, t := range r.Trades {
		ts, err := parseTimestamp(t.Timestamp)
		if err != nil {
			return nil, nil, &domain.InvalidInputError{Reason: fmt.Sprintf("trade timestamp %q: %v", t.Timestamp, err)}
		}
		trades = append(trades, domain.Trade{
			UserID:               r.UserID,
			Timestamp:            ts,
			TradeAmount:          t.TradeAmount,
			TradeDurationSeconds: t.TradeDurationSeconds,
			ProfitLoss:           t.ProfitLoss,
		})
	}

	txns := make([]domain.Transaction, 0, len(r.Transactions))
	for _, t := range r.Transactions {
		ts, err := parseTimestamp(t.Timestamp)
		if err != nil {
			return nil, nil, &domain.InvalidInputError{Reason: fmt.Sprintf("transaction timestamp %q: %v", t.Timestamp, err)}
		}
		txType, err := domain.ParseTransactionType(t.TransactionType)
		if err != nil {
			return nil, nil, err
		}
		txns = append(txns, domain.Transaction{
			UserID:    r.UserID,
			Timestamp: ts,
			Type:      txType,
			Amount:    t.Amount,
		})
	}

	return trades, txns, nil
}

// parseTimestamp accepts RFC3339 timestamps and the zone-less ISO form
// produced by common client serializers.
func parseTimestamp(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02T15:04:05.999999999", s)
}
