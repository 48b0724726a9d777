package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/oscillatelabsllc/sidequest/internal/models"
	"github.com/oscillatelabsllc/sidequest/internal/recommend"
	"github.com/oscillatelabsllc/sidequest/internal/stats"
	"github.com/oscillatelabsllc/sidequest/internal/tracker"
)

// LogAdventureRequest represents the request body for logging an adventure
type LogAdventureRequest struct {
	Participants []string `json:"participants"`
	Category     string   `json:"category"`
	Date         string   `json:"date,omitempty"`
}

// handleLogAdventure records an adventure; date defaults to today
func (s *Server) handleLogAdventure(w http.ResponseWriter, r *http.Request) {
	var req LogAdventureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	req.Date = tracker.DefaultDate(req.Date)

	if err := s.tracker.LogAdventure(r.Context(), req.Participants, req.Category, req.Date); err != nil {
		errorResponse(w, statusFor(err), err.Error())
		return
	}

	successResponse(w, map[string]interface{}{
		"success":      true,
		"date":         req.Date,
		"category":     req.Category,
		"participants": req.Participants,
	})
}

// handleHistory lists the entries recorded on a date
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	entries := s.tracker.AdventureHistory(date)
	successResponse(w, map[string]interface{}{
		"date":    date,
		"entries": entries,
		"count":   len(entries),
	})
}

// handleBuddies returns a user's most frequent partners; ?limit= overrides
// the configured top N and 0 returns everyone
func (s *Server) handleBuddies(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	limit := s.tracker.TopN()
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errorResponse(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	buddies := s.tracker.TopPartners(user, limit)
	successResponse(w, map[string]interface{}{
		"user":    user,
		"buddies": buddies,
	})
}

// handleTrend returns per-category totals for a user, largest first
func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	successResponse(w, map[string]interface{}{
		"user":  user,
		"trend": stats.Trend(s.tracker.CategoryTrend(user)),
	})
}

// handleBadge returns the highest tier and every tier unlocked
func (s *Server) handleBadge(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	tier := s.tracker.BadgeTier(user)
	successResponse(w, map[string]interface{}{
		"user":     user,
		"total":    s.tracker.TotalAdventures(user),
		"badge":    tier,
		"unlocked": tier.Unlocked(),
	})
}

// handleRecommend suggests activities for ?group=
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	group := r.URL.Query().Get("group")
	if strings.TrimSpace(group) == "" {
		errorResponse(w, http.StatusBadRequest, "group is required")
		return
	}

	recs, err := s.tracker.RecommendActivities(r.Context(), group)
	if err != nil {
		errorResponse(w, statusFor(err), "Recommendation failed: "+err.Error())
		return
	}

	resp := map[string]interface{}{
		"group":           group,
		"recommendations": recs,
	}
	if len(recs) == 0 {
		resp["recommendations"] = []models.Category{}
		resp["message"] = recommend.NoDataMessage
	}
	successResponse(w, resp)
}

// handleRebuildModel trains a fresh model from the current ledger
func (s *Server) handleRebuildModel(w http.ResponseWriter, r *http.Request) {
	m, err := s.tracker.RebuildModel(r.Context())
	if err != nil {
		errorResponse(w, statusFor(err), "Rebuild failed: "+err.Error())
		return
	}
	successResponse(w, map[string]interface{}{
		"success":  true,
		"model_id": m.ID,
		"records":  len(m.Records),
		"built_at": m.BuiltAt,
	})
}

// handleInvalidateModel deletes the persisted model
func (s *Server) handleInvalidateModel(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.InvalidateModel(); err != nil {
		errorResponse(w, statusFor(err), "Invalidate failed: "+err.Error())
		return
	}
	successResponse(w, map[string]interface{}{
		"success": true,
		"message": "Model invalidated",
	})
}

// handleGetStatus returns system status
func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	st := s.tracker.Status(r.Context())
	successResponse(w, map[string]interface{}{
		"status":      "operational",
		"backend":     st.Backend,
		"dates":       st.Dates,
		"entries":     st.Entries,
		"model_state": st.ModelState,
		"top_n":       st.TopN,
		"categories":  models.Categories(),
	})
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidCategory),
		errors.Is(err, models.ErrTooFewParticipants),
		errors.Is(err, models.ErrDuplicateParticipant),
		errors.Is(err, models.ErrEmptyName),
		errors.Is(err, models.ErrEmptyDate),
		errors.Is(err, models.ErrInvalidDate):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
