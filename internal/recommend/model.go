// Package recommend suggests activities for a group of friends from the
// categories they have already shared.
//
// A Model flattens the ledger into one Record per (date, pair, category) row,
// vectorizes each record's category label as a bag of words and scores every
// record by the mean cosine similarity of its vector against all records. For
// single-token labels this is the fraction of records sharing the category,
// so common categories rank first. Querying filters records whose pair label
// contains the group key and returns the best scored categories.
//
// The model is a snapshot. It does not see adventures logged after it was
// built unless the artifact is invalidated and rebuilt.
package recommend

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oscillatelabsllc/sidequest/internal/embedding"
	"github.com/oscillatelabsllc/sidequest/internal/models"
)

// NoDataMessage is the text presenters show when a group has no records
const NoDataMessage = "No data available for this group. Try adding more adventures!"

// Record is one flattened ledger row annotated with its similarity score
type Record struct {
	Date     string          `json:"date"`
	A        string          `json:"a"`
	B        string          `json:"b"`
	Category models.Category `json:"category"`
	Count    int             `json:"count"`
	Score    float64         `json:"similarity_score"`
}

// Group renders the pair label matched by Recommend
func (r Record) Group() string {
	return r.A + "-" + r.B
}

// Model is a built recommender
type Model struct {
	ID         string
	BuiltAt    time.Time
	Records    []Record
	Vocabulary map[string]int
}

// ProgressFunc receives the number of scored records out of total
type ProgressFunc func(done, total int)

// Build computes a model from the ledger. It runs to completion; there is no
// cancellation.
func Build(ledger models.Ledger, progress ProgressFunc) *Model {
	rows := ledger.Flatten()
	records := make([]Record, len(rows))
	labels := make([]string, len(rows))
	for i, e := range rows {
		records[i] = Record{Date: e.Date, A: e.A, B: e.B, Category: e.Category, Count: e.Count}
		labels[i] = e.Category.String()
	}

	vec := embedding.Fit(labels)

	// Records with the same label have identical vectors, so each row of the
	// similarity matrix is a weighted sum over distinct labels.
	type distinct struct {
		vector []float64
		n      int
	}
	var groups []*distinct
	byLabel := make(map[string]*distinct)
	vectors := make([][]float64, len(records))
	for i, label := range labels {
		d, ok := byLabel[label]
		if !ok {
			d = &distinct{vector: vec.Transform(label)}
			byLabel[label] = d
			groups = append(groups, d)
		}
		d.n++
		vectors[i] = d.vector
	}

	total := len(records)
	for i := range records {
		var sum float64
		for _, d := range groups {
			sum += float64(d.n) * embedding.Cosine(vectors[i], d.vector)
		}
		records[i].Score = sum / float64(total)
		if progress != nil {
			progress(i+1, total)
		}
	}

	return &Model{
		ID:         uuid.New().String(),
		BuiltAt:    time.Now().UTC(),
		Records:    records,
		Vocabulary: vec.Vocabulary,
	}
}

// Recommend returns up to topN category labels from records whose pair label
// contains groupKey, best score first. Repeated categories are kept. An empty
// result means the group has no data.
func (m *Model) Recommend(groupKey string, topN int) []models.Category {
	var matched []Record
	for _, r := range m.Records {
		if strings.Contains(r.Group(), groupKey) {
			matched = append(matched, r)
		}
	}
	if len(matched) == 0 {
		return nil
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Score > matched[j].Score
	})

	if topN > 0 && len(matched) > topN {
		matched = matched[:topN]
	}
	out := make([]models.Category, len(matched))
	for i, r := range matched {
		out[i] = r.Category
	}
	return out
}
