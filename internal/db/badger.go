package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/oscillatelabsllc/sidequest/internal/models"
)

// Key layout
const (
	dayKeyPrefix = "day:"
	metaSavedKey = "meta:saved"
)

// Badger stores one JSON value per date under "day:<date>"
type Badger struct {
	db *badger.DB
}

// NewBadger opens a badger database in dir
func NewBadger(dir string) (*Badger, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &Badger{db: db}, nil
}

func (b *Badger) Name() string { return "badger" }

// Load reads every day value back into a ledger
func (b *Badger) Load(ctx context.Context) (models.Ledger, bool, error) {
	ledger := models.Ledger{}
	found := false

	err := b.db.View(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(metaSavedKey)); err == nil {
			found = true
		} else if err != badger.ErrKeyNotFound {
			return fmt.Errorf("get save marker: %w", err)
		}

		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(dayKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			date := strings.TrimPrefix(string(item.Key()), dayKeyPrefix)
			err := item.Value(func(val []byte) error {
				var entries []fileEntry
				if err := json.Unmarshal(val, &entries); err != nil {
					return fmt.Errorf("decode %s: %w", date, err)
				}
				for _, e := range entries {
					ledger.Add(date, models.PairKey{A: e.A, B: e.B, Category: e.Category}, e.Count)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return ledger, found, nil
}

// Save rewrites all day values in one transaction
func (b *Badger) Save(ctx context.Context, ledger models.Ledger) error {
	return b.db.Update(func(txn *badger.Txn) error {
		var stale [][]byte
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: false})
		prefix := []byte(dayKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			stale = append(stale, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, k := range stale {
			if err := txn.Delete(k); err != nil {
				return fmt.Errorf("delete %s: %w", k, err)
			}
		}

		for _, date := range ledger.Dates() {
			rows := ledger.Entries(date)
			entries := make([]fileEntry, len(rows))
			for i, r := range rows {
				entries[i] = fileEntry{A: r.A, B: r.B, Category: r.Category, Count: r.Count}
			}
			data, err := json.Marshal(entries)
			if err != nil {
				return fmt.Errorf("marshal %s: %w", date, err)
			}
			if err := txn.Set([]byte(dayKeyPrefix+date), data); err != nil {
				return fmt.Errorf("set %s: %w", date, err)
			}
		}

		return txn.Set([]byte(metaSavedKey), []byte{1})
	})
}

// Close closes the database
func (b *Badger) Close() error {
	return b.db.Close()
}
