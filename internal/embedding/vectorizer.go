package embedding

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// tokenPattern matches runs of letters, digits and underscores. Runs shorter
// than two runes are dropped, so "Movie_Night" is the single token
// "movie_night".
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Tokenize lower-cases text and splits it into word tokens
func Tokenize(text string) []string {
	var tokens []string
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		if utf8.RuneCountInString(tok) >= 2 {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// Vectorizer turns short labels into bag-of-words count vectors
type Vectorizer struct {
	// Vocabulary maps each token to its dimension. Dimensions follow the
	// alphabetical order of tokens.
	Vocabulary map[string]int
}

// Fit builds the vocabulary from every token in docs
func Fit(docs []string) *Vectorizer {
	seen := make(map[string]struct{})
	for _, d := range docs {
		for _, tok := range Tokenize(d) {
			seen[tok] = struct{}{}
		}
	}

	terms := make([]string, 0, len(seen))
	for t := range seen {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	vocab := make(map[string]int, len(terms))
	for i, t := range terms {
		vocab[t] = i
	}
	return &Vectorizer{Vocabulary: vocab}
}

// Dim is the vector length
func (v *Vectorizer) Dim() int {
	return len(v.Vocabulary)
}

// Transform counts the vocabulary tokens in text. Unknown tokens are ignored.
func (v *Vectorizer) Transform(text string) []float64 {
	vec := make([]float64, len(v.Vocabulary))
	for _, tok := range Tokenize(text) {
		if i, ok := v.Vocabulary[tok]; ok {
			vec[i]++
		}
	}
	return vec
}

// Cosine returns the cosine similarity of a and b, or 0 when either is a zero
// vector or the lengths differ
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
