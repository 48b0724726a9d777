package embedding

import (
	"math"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Hiking", []string{"hiking"}},
		{"Movie_Night", []string{"movie_night"}},
		{"Beach Day", []string{"beach", "day"}},
		{"a b RoadTrip", []string{"roadtrip"}},
		{"", nil},
	}
	for _, tt := range tests {
		got := Tokenize(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Tokenize(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestFitAndTransform(t *testing.T) {
	v := Fit([]string{"Hiking", "Concert", "Beach Day", "Hiking"})

	if v.Dim() != 4 {
		t.Fatalf("Expected 4 terms, got %d (%v)", v.Dim(), v.Vocabulary)
	}
	// alphabetical: beach, concert, day, hiking
	if v.Vocabulary["beach"] != 0 || v.Vocabulary["hiking"] != 3 {
		t.Errorf("Unexpected vocabulary order: %v", v.Vocabulary)
	}

	vec := v.Transform("Beach Day")
	if vec[0] != 1 || vec[2] != 1 || vec[1] != 0 || vec[3] != 0 {
		t.Errorf("Unexpected vector: %v", vec)
	}

	unknown := v.Transform("Skydiving")
	for _, x := range unknown {
		if x != 0 {
			t.Errorf("Expected zero vector for unknown token, got %v", unknown)
		}
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 0}, []float64{1, 0}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"partial overlap", []float64{1, 1}, []float64{1, 0}, 1 / math.Sqrt2},
		{"zero vector", []float64{0, 0}, []float64{1, 0}, 0},
		{"length mismatch", []float64{1}, []float64{1, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cosine(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Cosine = %f, want %f", got, tt.want)
			}
		})
	}
}
