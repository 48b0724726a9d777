package db

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/oscillatelabsllc/sidequest/internal/models"
)

// fileEntry is one row of the JSON document. Pair members are separate fields
// so no delimiter parsing is involved.
type fileEntry struct {
	A        string          `json:"a"`
	B        string          `json:"b"`
	Category models.Category `json:"category"`
	Count    int             `json:"count"`
}

// FileBackend stores the ledger as a JSON document keyed by date
type FileBackend struct {
	path string
}

// NewFileBackend returns a backend writing to path
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (f *FileBackend) Name() string { return "file" }

// Load reads the JSON document; a missing file yields an empty ledger
func (f *FileBackend) Load(ctx context.Context) (models.Ledger, bool, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return models.Ledger{}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read ledger file: %w", err)
	}

	ledger, err := decodeLedger(data)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode ledger file %s: %w", f.path, err)
	}
	return ledger, true, nil
}

// Save writes to a temp file in the same directory, syncs it and renames it
// over the previous document so readers never observe a partial write
func (f *FileBackend) Save(ctx context.Context, ledger models.Ledger) error {
	data, err := encodeLedger(ledger)
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}
	return writeFileAtomic(f.path, data)
}

func (f *FileBackend) Close() error { return nil }

func encodeLedger(ledger models.Ledger) ([]byte, error) {
	doc := make(map[string][]fileEntry, len(ledger))
	for _, date := range ledger.Dates() {
		rows := ledger.Entries(date)
		entries := make([]fileEntry, len(rows))
		for i, r := range rows {
			entries[i] = fileEntry{A: r.A, B: r.B, Category: r.Category, Count: r.Count}
		}
		doc[date] = entries
	}
	return json.MarshalIndent(doc, "", "  ")
}

func decodeLedger(data []byte) (models.Ledger, error) {
	var doc map[string][]fileEntry
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	ledger := models.Ledger{}
	for date, entries := range doc {
		for _, e := range entries {
			if e.Count <= 0 {
				continue
			}
			ledger.Add(date, models.PairKey{A: e.A, B: e.B, Category: e.Category}, e.Count)
		}
	}
	return ledger, nil
}

// writeFileAtomic replaces path with data via a temp file and rename
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// ReadLegacyJSON parses the older flat format {"date": {"A-B-Category": count}}.
// Each key must split into exactly three fields on '-'; anything else is
// rejected rather than guessed at.
func ReadLegacyJSON(r io.Reader) (models.Ledger, error) {
	var doc map[string]map[string]int
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode legacy ledger: %w", err)
	}

	ledger := models.Ledger{}
	for date, counts := range doc {
		for key, count := range counts {
			parts := strings.Split(key, "-")
			if len(parts) != 3 {
				return nil, fmt.Errorf("legacy key %q on %s: expected A-B-Category", key, date)
			}
			category, err := models.ParseCategory(parts[2])
			if err != nil {
				return nil, fmt.Errorf("legacy key %q on %s: %w", key, date, err)
			}
			if count <= 0 {
				continue
			}
			ledger.Add(date, models.PairKey{A: parts[0], B: parts[1], Category: category}, count)
		}
	}
	return ledger, nil
}

// Merge adds every count from src into dst
func Merge(dst, src models.Ledger) {
	for date, day := range src {
		for k, v := range day {
			dst.Add(date, k, v)
		}
	}
}
