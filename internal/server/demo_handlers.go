package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/fraudwatch/fraudwatch/internal/domain"
	"github.com/fraudwatch/fraudwatch/internal/modules/synth"
)

// demoProfile describes one archetype for the front-end profile picker
type demoProfile struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Fraudulent  bool   `json:"fraudulent"`
}

// handleDemoProfiles lists the synthetic archetypes.
// GET /api/demo/profiles
func (s *Server) handleDemoProfiles(w http.ResponseWriter, r *http.Request) {
	profiles := synth.Profiles()
	out := make([]demoProfile, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, demoProfile{
			Name:        p.String(),
			Description: p.Description(),
			Fraudulent:  p.Fraudulent(),
		})
	}
	s.respondJSON(w, http.StatusOK, out)
}

// demoScoreRequest selects an archetype to synthesize and score
type demoScoreRequest struct {
	Profile string `json:"profile"`
	UserID  int64  `json:"user_id"`
}

// demoScoreResponse carries the verdict plus the generated events so the
// front-end can render them.
type demoScoreResponse struct {
	ScoreID      string               `json:"score_id"`
	Profile      string               `json:"profile"`
	Label        bool                 `json:"label"`
	Verdict      *predictResponse     `json:"verdict"`
	Trades       []domain.Trade       `json:"trades"`
	Transactions []domain.Transaction `json:"transactions"`
}

// handleDemoScore generates one user for an archetype and scores it.
// POST /api/demo/score
func (s *Server) handleDemoScore(w http.ResponseWriter, r *http.Request) {
	var req demoScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	profile, err := synth.ParseProfile(req.Profile)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	userID := req.UserID
	if userID == 0 {
		// Stable demo ids per archetype, matching the front-end picker
		userID = 1001 + int64(profile)
	}

	trades, txns, label := s.generator.Generate(profile, userID)

	verdict, err := s.scoreUser(userID, trades, txns)
	if err != nil {
		s.writeScoringError(w, userID, err)
		return
	}

	s.respondJSON(w, http.StatusOK, demoScoreResponse{
		ScoreID:      uuid.New().String(),
		Profile:      profile.String(),
		Label:        label,
		Verdict:      verdict,
		Trades:       trades,
		Transactions: txns,
	})
}
