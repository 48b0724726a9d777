package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oscillatelabsllc/sidequest/internal/logging"
	"github.com/oscillatelabsllc/sidequest/internal/metrics"
	"github.com/oscillatelabsllc/sidequest/internal/models"
	"github.com/rs/zerolog"
)

// Backend persists a whole ledger. Load reports found=false when nothing has
// been saved yet. Save must replace the previous state atomically as seen by a
// reader. Backends are not safe across processes: the last writer wins.
type Backend interface {
	Name() string
	Load(ctx context.Context) (ledger models.Ledger, found bool, err error)
	Save(ctx context.Context, ledger models.Ledger) error
	Close() error
}

// Store keeps the ledger in memory and writes through to a Backend on every change
type Store struct {
	backend Backend
	log     zerolog.Logger

	mu     sync.RWMutex
	ledger models.Ledger
}

// NewStore wraps a backend; call Load before use
func NewStore(backend Backend) *Store {
	return &Store{
		backend: backend,
		log:     logging.Component("ledger"),
		ledger:  models.Ledger{},
	}
}

// Open creates the backend named by kind, wraps it and loads the persisted ledger
func Open(ctx context.Context, kind, path string) (*Store, error) {
	var (
		backend Backend
		err     error
	)
	switch kind {
	case "", "file":
		backend = NewFileBackend(path)
	case "duckdb":
		backend, err = NewDuckDB(path)
	case "badger":
		backend, err = NewBadger(path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", kind)
	}
	if err != nil {
		return nil, err
	}

	store := NewStore(backend)
	if _, err := store.Load(ctx); err != nil {
		backend.Close()
		return nil, err
	}
	return store, nil
}

// Load replaces the in-memory ledger with the persisted one. A missing store is
// not an error: the ledger starts empty and found is false.
func (s *Store) Load(ctx context.Context) (bool, error) {
	ledger, found, err := s.backend.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: load ledger: %w", models.ErrPersistence, err)
	}
	if ledger == nil {
		ledger = models.Ledger{}
	}

	s.mu.Lock()
	s.ledger = ledger
	s.mu.Unlock()

	if !found {
		s.log.Info().Str("backend", s.backend.Name()).Msg("Starting fresh, no previous adventure data found")
	} else {
		s.log.Debug().Int("dates", len(ledger)).Msg("Ledger loaded")
	}
	return found, nil
}

// Save writes the full ledger to the backend
func (s *Store) Save(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saveLocked(ctx)
}

func (s *Store) saveLocked(ctx context.Context) error {
	start := time.Now()
	defer metrics.ObserveLedgerSave(s.backend.Name(), start)

	if err := s.backend.Save(ctx, s.ledger); err != nil {
		return fmt.Errorf("%w: save ledger: %w", models.ErrPersistence, err)
	}
	return nil
}

// RecordAdventure increments both directional keys of every unordered pair of
// participants for date and category, then persists. Participants are assumed
// validated (two or more distinct names). If persisting fails the increments
// are undone so memory and storage stay in step.
func (s *Store) RecordAdventure(ctx context.Context, participants []string, category models.Category, date string) error {
	if !category.Valid() {
		return fmt.Errorf("%w: %d", models.ErrInvalidCategory, uint8(category))
	}

	var keys []models.PairKey
	for i := 0; i < len(participants); i++ {
		for j := i + 1; j < len(participants); j++ {
			k := models.PairKey{A: participants[i], B: participants[j], Category: category}
			keys = append(keys, k, k.Reverse())
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		s.ledger.Add(date, k, 1)
		s.log.Debug().Str("a", k.A).Str("b", k.B).Str("category", category.String()).Msg("Logging adventure")
	}

	if err := s.saveLocked(ctx); err != nil {
		for _, k := range keys {
			s.ledger.Add(date, k, -1)
		}
		return err
	}

	s.log.Info().
		Str("date", date).
		Str("category", category.String()).
		Int("participants", len(participants)).
		Msg("Adventure logged")
	return nil
}

// Import merges src into the ledger and persists, undoing the merge on failure
func (s *Store) Import(ctx context.Context, src models.Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.ledger.Clone()
	Merge(s.ledger, src)
	if err := s.saveLocked(ctx); err != nil {
		s.ledger = previous
		return err
	}
	return nil
}

// Snapshot returns a deep copy of the ledger
func (s *Store) Snapshot() models.Ledger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Clone()
}

// BackendName reports the configured backend
func (s *Store) BackendName() string {
	return s.backend.Name()
}

// Close closes the backend
func (s *Store) Close() error {
	return s.backend.Close()
}
