// Package tracker is the query façade used by the CLI, the REST API and the
// MCP server. It validates input, delegates writes to the ledger store, reads
// through the aggregation functions and routes group queries to the
// recommender.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/oscillatelabsllc/sidequest/internal/db"
	"github.com/oscillatelabsllc/sidequest/internal/logging"
	"github.com/oscillatelabsllc/sidequest/internal/metrics"
	"github.com/oscillatelabsllc/sidequest/internal/models"
	"github.com/oscillatelabsllc/sidequest/internal/recommend"
	"github.com/oscillatelabsllc/sidequest/internal/stats"
	"github.com/rs/zerolog"
)

// DefaultTopN is how many buddies and recommendations are returned by default
const DefaultTopN = 3

// LogRequest is a validated adventure log call
type LogRequest struct {
	Participants []string `validate:"min=2,unique,dive,required"`
	Category     string   `validate:"required"`
	Date         string   `validate:"required,datetime=2006-01-02"`
}

// Status summarizes the tracker for health and status endpoints
type Status struct {
	Backend    string `json:"backend"`
	Dates      int    `json:"dates"`
	Entries    int    `json:"entries"`
	ModelState string `json:"model_state"`
	TopN       int    `json:"top_n"`
}

// Option configures a Tracker
type Option func(*Tracker)

// WithTopN sets the default result size for buddies and recommendations
func WithTopN(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.topN = n
		}
	}
}

// WithInvalidateOnWrite drops the recommendation model after every logged
// adventure so the next query rebuilds it
func WithInvalidateOnWrite(enabled bool) Option {
	return func(t *Tracker) { t.invalidateOnWrite = enabled }
}

// Tracker ties the ledger store and the recommender together
type Tracker struct {
	store             *db.Store
	rec               *recommend.Recommender
	validate          *validator.Validate
	topN              int
	invalidateOnWrite bool
	log               zerolog.Logger
}

// New returns a tracker over store and rec
func New(store *db.Store, rec *recommend.Recommender, opts ...Option) *Tracker {
	t := &Tracker{
		store:    store,
		rec:      rec,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		topN:     DefaultTopN,
		log:      logging.Component("tracker"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TopN reports the configured default result size
func (t *Tracker) TopN() int {
	return t.topN
}

// now is replaced in tests
var now = time.Now

// DefaultDate returns date trimmed, or today's local date when it is blank
func DefaultDate(date string) string {
	if d := strings.TrimSpace(date); d != "" {
		return d
	}
	return now().Format(time.DateOnly)
}

// LogAdventure records that participants shared an adventure of category on
// date. Names are trimmed. Every unordered pair is credited in both
// directions.
func (t *Tracker) LogAdventure(ctx context.Context, participants []string, category, date string) error {
	req := LogRequest{
		Participants: make([]string, len(participants)),
		Category:     strings.TrimSpace(category),
		Date:         strings.TrimSpace(date),
	}
	for i, p := range participants {
		req.Participants[i] = strings.TrimSpace(p)
	}

	if err := t.check(req); err != nil {
		t.reject(ctx, err)
		return err
	}

	c, err := models.ParseCategory(req.Category)
	if err != nil {
		t.reject(ctx, err)
		return err
	}

	if err := t.store.RecordAdventure(ctx, req.Participants, c, req.Date); err != nil {
		return err
	}
	metrics.AdventuresLogged.WithLabelValues(c.String()).Inc()

	if t.invalidateOnWrite {
		if err := t.rec.Invalidate(); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Failed to invalidate recommendation model")
		}
	}
	return nil
}

// check maps validator failures onto the model sentinels
func (t *Tracker) check(req LogRequest) error {
	err := t.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate adventure: %w", err)
	}

	fe := verrs[0]
	switch {
	case fe.StructField() == "Participants" && fe.Tag() == "min":
		return fmt.Errorf("%w: got %d", models.ErrTooFewParticipants, len(req.Participants))
	case fe.StructField() == "Participants" && fe.Tag() == "unique":
		return models.ErrDuplicateParticipant
	case strings.HasPrefix(fe.StructField(), "Participants"):
		return models.ErrEmptyName
	case fe.StructField() == "Category":
		return fmt.Errorf("%w: empty", models.ErrInvalidCategory)
	case fe.StructField() == "Date" && fe.Tag() == "required":
		return models.ErrEmptyDate
	case fe.StructField() == "Date":
		return fmt.Errorf("%w: %q", models.ErrInvalidDate, req.Date)
	}
	return fmt.Errorf("validate adventure: %w", err)
}

func (t *Tracker) reject(ctx context.Context, err error) {
	reason := "invalid"
	switch {
	case errors.Is(err, models.ErrInvalidCategory):
		reason = "invalid_category"
	case errors.Is(err, models.ErrTooFewParticipants):
		reason = "too_few_participants"
	case errors.Is(err, models.ErrDuplicateParticipant):
		reason = "duplicate_participant"
	case errors.Is(err, models.ErrEmptyName):
		reason = "empty_name"
	case errors.Is(err, models.ErrEmptyDate), errors.Is(err, models.ErrInvalidDate):
		reason = "invalid_date"
	}
	metrics.AdventuresRejected.WithLabelValues(reason).Inc()
	logging.Ctx(ctx).Debug().Err(err).Str("reason", reason).Msg("Adventure rejected")
}

// TopAdventureBuddies returns the names of user's most frequent partners
func (t *Tracker) TopAdventureBuddies(user string) []string {
	return models.Names(t.TopPartners(user, t.topN))
}

// TopPartners returns up to n partners with their counts; n <= 0 returns all
func (t *Tracker) TopPartners(user string, n int) []models.Buddy {
	return stats.TopPartners(t.store.Snapshot(), strings.TrimSpace(user), n)
}

// AdventureHistory lists every entry recorded on date
func (t *Tracker) AdventureHistory(date string) []models.Entry {
	return stats.HistoryForDate(t.store.Snapshot(), strings.TrimSpace(date))
}

// CategoryTrend totals user's adventures per category
func (t *Tracker) CategoryTrend(user string) map[models.Category]int {
	return stats.CategoryTotals(t.store.Snapshot(), strings.TrimSpace(user))
}

// BadgeTier returns the highest badge user has earned
func (t *Tracker) BadgeTier(user string) models.BadgeTier {
	return stats.BadgeTier(t.store.Snapshot(), strings.TrimSpace(user))
}

// TotalAdventures is the badge input for user
func (t *Tracker) TotalAdventures(user string) int {
	return stats.TotalAdventures(t.store.Snapshot(), strings.TrimSpace(user))
}

// RecommendActivities suggests categories for groupKey, building the model on
// first use. An empty result means no data for the group.
func (t *Tracker) RecommendActivities(ctx context.Context, groupKey string) ([]models.Category, error) {
	return t.rec.Recommend(ctx, strings.TrimSpace(groupKey), t.topN)
}

// RebuildModel trains a fresh model from the current ledger
func (t *Tracker) RebuildModel(ctx context.Context) (*recommend.Model, error) {
	return t.rec.Rebuild(ctx)
}

// InvalidateModel deletes the persisted model
func (t *Tracker) InvalidateModel() error {
	return t.rec.Invalidate()
}

// Import merges a ledger read from the legacy flat format
func (t *Tracker) Import(ctx context.Context, src models.Ledger) error {
	if err := t.store.Import(ctx, src); err != nil {
		return err
	}
	if t.invalidateOnWrite {
		return t.rec.Invalidate()
	}
	return nil
}

// Status reports ledger size and model state
func (t *Tracker) Status(ctx context.Context) Status {
	l := t.store.Snapshot()
	entries := 0
	for _, day := range l {
		entries += len(day)
	}
	return Status{
		Backend:    t.store.BackendName(),
		Dates:      len(l),
		Entries:    entries,
		ModelState: t.rec.State().String(),
		TopN:       t.topN,
	}
}
