package recommend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/oscillatelabsllc/sidequest/internal/logging"
	"github.com/oscillatelabsllc/sidequest/internal/metrics"
	"github.com/oscillatelabsllc/sidequest/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// State of the recommender
type State int

const (
	StateNoModel State = iota
	StateModelReady
)

func (s State) String() string {
	if s == StateModelReady {
		return "model_ready"
	}
	return "no_model"
}

// LedgerSource supplies the ledger a model is built from
type LedgerSource interface {
	Snapshot() models.Ledger
}

// Option configures a Recommender
type Option func(*Recommender)

// WithIndicator shows ind while a model builds
func WithIndicator(ind Indicator) Option {
	return func(r *Recommender) { r.indicator = ind }
}

// WithProgress reports scoring progress during builds
func WithProgress(fn ProgressFunc) Option {
	return func(r *Recommender) { r.progress = fn }
}

// Recommender loads a persisted model lazily, building and saving one when
// none exists. Builds are serialized.
type Recommender struct {
	path      string
	source    LedgerSource
	indicator Indicator
	progress  ProgressFunc
	log       zerolog.Logger

	mu    sync.Mutex
	model *Model
}

// New returns a recommender persisting its model at path
func New(path string, source LedgerSource, opts ...Option) *Recommender {
	r := &Recommender{
		path:   path,
		source: source,
		log:    logging.Component("recommend"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State reports whether a model is cached in memory or on disk
func (r *Recommender) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.model != nil {
		return StateModelReady
	}
	if _, err := os.Stat(r.path); err == nil {
		return StateModelReady
	}
	return StateNoModel
}

// Model returns the current model, loading it from disk or building it on
// first use
func (r *Recommender) Model(ctx context.Context) (*Model, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.model != nil {
		return r.model, nil
	}

	m, err := LoadModel(r.path)
	switch {
	case err == nil:
		r.log.Debug().Str("model_id", m.ID).Int("records", len(m.Records)).Msg("Loaded saved model")
		metrics.ModelRecords.Set(float64(len(m.Records)))
		r.model = m
		return m, nil
	case errors.Is(err, os.ErrNotExist):
		r.log.Info().Msg("Saved model not found, training the recommendation model")
		return r.buildLocked(ctx)
	default:
		return nil, fmt.Errorf("%w: load model: %w", models.ErrPersistence, err)
	}
}

// Rebuild discards any cached model and builds a fresh one from the ledger
func (r *Recommender) Rebuild(ctx context.Context) (*Model, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buildLocked(ctx)
}

// buildLocked runs the indicator alongside the build and save, and waits for
// it to stop before returning
func (r *Recommender) buildLocked(ctx context.Context) (*Model, error) {
	start := time.Now()
	ledger := r.source.Snapshot()

	done := make(chan struct{})
	var g errgroup.Group
	if r.indicator != nil {
		g.Go(func() error {
			r.indicator.Run(done)
			return nil
		})
	}

	m := Build(ledger, r.progress)
	saveErr := SaveModel(r.path, m)

	close(done)
	_ = g.Wait()

	if saveErr != nil {
		return nil, fmt.Errorf("%w: save model: %w", models.ErrPersistence, saveErr)
	}

	metrics.ModelBuildDuration.Observe(time.Since(start).Seconds())
	metrics.ModelRecords.Set(float64(len(m.Records)))
	r.log.Info().
		Str("model_id", m.ID).
		Int("records", len(m.Records)).
		Int("vocabulary", len(m.Vocabulary)).
		Dur("took", time.Since(start)).
		Msg("Model training complete")

	r.model = m
	return m, nil
}

// Recommend returns up to topN categories for groupKey. An empty slice with a
// nil error means no recorded adventures match the group.
func (r *Recommender) Recommend(ctx context.Context, groupKey string, topN int) ([]models.Category, error) {
	m, err := r.Model(ctx)
	if err != nil {
		return nil, err
	}

	out := m.Recommend(groupKey, topN)
	if len(out) == 0 {
		metrics.Recommendations.WithLabelValues("no_data").Inc()
	} else {
		metrics.Recommendations.WithLabelValues("hit").Inc()
	}
	return out, nil
}

// Invalidate deletes the persisted model and the cached copy
func (r *Recommender) Invalidate() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.model = nil
	if err := DeleteModel(r.path); err != nil {
		return fmt.Errorf("%w: delete model: %w", models.ErrPersistence, err)
	}
	r.log.Debug().Msg("Model invalidated")
	return nil
}
