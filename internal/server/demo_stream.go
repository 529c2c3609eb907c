package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/fraudwatch/fraudwatch/internal/modules/synth"
)

const streamInterval = 2 * time.Second

// streamEvent is one scored synthetic user pushed over the demo stream
type streamEvent struct {
	ScoreID          string  `json:"score_id"`
	Profile          string  `json:"profile"`
	UserID           int64   `json:"user_id"`
	Label            bool    `json:"label"`
	FraudProbability float64 `json:"fraud_probability"`
	RiskLevel        string  `json:"risk_level"`
	GeneratedAt      string  `json:"generated_at"`
}

// handleDemoStream pushes a scored synthetic user over a websocket every few
// seconds, cycling through the archetypes. Intended for the visualization
// front-end; closes when the client disconnects.
// GET /api/demo/stream
func (s *Server) handleDemoStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to accept demo stream websocket")
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "stream closed")

	ctx := r.Context()
	profiles := synth.Profiles()
	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	var seq int64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		profile := profiles[seq%int64(len(profiles))]
		userID := 2000 + seq
		seq++

		trades, txns, label := s.generator.Generate(profile, userID)
		verdict, err := s.scoreUser(userID, trades, txns)
		if err != nil {
			// No model loaded yet; keep the connection open and retry
			s.log.Debug().Err(err).Msg("Demo stream scoring skipped")
			continue
		}

		event := streamEvent{
			ScoreID:          uuid.New().String(),
			Profile:          profile.String(),
			UserID:           userID,
			Label:            label,
			FraudProbability: verdict.FraudProbability,
			RiskLevel:        string(verdict.RiskLevel),
			GeneratedAt:      time.Now().UTC().Format(time.RFC3339),
		}

		if err := wsjson.Write(ctx, conn, event); err != nil {
			s.log.Debug().Err(err).Msg("Demo stream client disconnected")
			return
		}
	}
}
