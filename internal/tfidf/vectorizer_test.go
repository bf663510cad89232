package tfidf

import (
	"math"
	"reflect"
	"testing"
)

func TestVocabularyIsSorted(t *testing.T) {
	t.Parallel()

	vocab := NewVocabulary([][]string{{"tree", "cat"}, {"bakery", "cat"}})
	if got, want := vocab.Terms(), []string{"bakery", "cat", "tree"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected vocabulary: got %q want %q", got, want)
	}
	if col, ok := vocab.Index("tree"); !ok || col != 2 {
		t.Fatalf("unexpected column for tree: %d %t", col, ok)
	}
	if _, ok := vocab.Index("dog"); ok {
		t.Fatalf("did not expect dog in vocabulary")
	}
}

func TestVectorizeIDFWithoutLog(t *testing.T) {
	t.Parallel()

	space := Vectorize([][]string{
		{"cat", "tree"},
		{"cat", "bakery"},
		{"cat", "cat", "award"},
		{"markets"},
	})

	want := map[string]float64{
		"award":   4,
		"bakery":  4,
		"cat":     4.0 / 3.0,
		"markets": 4,
		"tree":    4,
	}
	for term, idf := range want {
		col, ok := space.Vocabulary.Index(term)
		if !ok {
			t.Fatalf("missing term %q", term)
		}
		if space.IDF[col] != idf {
			t.Fatalf("unexpected idf for %q: got %v want %v", term, space.IDF[col], idf)
		}
	}
}

func TestVectorizeRowsAreUnitLength(t *testing.T) {
	t.Parallel()

	space := Vectorize([][]string{
		{"cat", "stuck", "tree", "rescued"},
		{"local", "bakery", "wins", "award", "award"},
		nil,
	})

	rows, cols := space.Weights.Dims()
	if rows != 3 || cols != space.Vocabulary.Len() {
		t.Fatalf("unexpected dims %dx%d", rows, cols)
	}
	for row := 0; row < 2; row++ {
		sum := 0.0
		for col := 0; col < cols; col++ {
			sum += space.Weights.At(row, col) * space.Weights.At(row, col)
		}
		if math.Abs(sum-1) > 1e-12 {
			t.Fatalf("row %d is not unit length: %v", row, sum)
		}
	}
	for col := 0; col < cols; col++ {
		if v := space.Weights.At(2, col); v != 0 {
			t.Fatalf("expected empty document row to stay zero, got %v at %d", v, col)
		}
	}
}

func TestSimilarityProperties(t *testing.T) {
	t.Parallel()

	space := Vectorize([][]string{
		{"cat", "stuck", "tree", "rescued"},
		{"cat", "stuck", "tree", "rescued"},
		{"local", "bakery", "wins", "award"},
		{"stock", "markets", "rally", "asia"},
		{"firefighters", "free", "cat", "stuck", "old", "oak", "tree"},
		nil,
	})
	sim := space.Similarity()

	if got := sim.At(0, 1); got != 1 {
		t.Fatalf("expected identical documents to have similarity exactly 1, got %v", got)
	}
	if got := sim.At(2, 3); got != 0 {
		t.Fatalf("expected disjoint documents to have similarity exactly 0, got %v", got)
	}
	if got := sim.At(0, 4); got <= 0 || got >= 1 {
		t.Fatalf("expected partial overlap in (0,1), got %v", got)
	}
	if got := sim.At(5, 5); got != 0 {
		t.Fatalf("expected empty document self-similarity 0, got %v", got)
	}
	for i := 0; i < 5; i++ {
		if got := sim.At(i, i); got != 1 {
			t.Fatalf("expected self-similarity 1 for doc %d, got %v", i, got)
		}
		for j := 0; j < 6; j++ {
			if sim.At(i, j) != sim.At(j, i) {
				t.Fatalf("similarity matrix not symmetric at %d,%d", i, j)
			}
		}
	}
}

func TestSimilarityIsDeterministic(t *testing.T) {
	t.Parallel()

	docs := [][]string{
		{"government", "falls", "after", "vote"},
		{"vote", "topples", "government"},
		{"coalition", "talks", "resume", "government"},
	}
	first := Vectorize(docs).Similarity()
	second := Vectorize(docs).Similarity()
	for i := 0; i < len(docs); i++ {
		for j := 0; j < len(docs); j++ {
			if first.At(i, j) != second.At(i, j) {
				t.Fatalf("similarity differs between runs at %d,%d", i, j)
			}
		}
	}
}

func TestVectorizeDegenerateSets(t *testing.T) {
	t.Parallel()

	if sim := Vectorize(nil).Similarity(); sim != nil {
		t.Fatalf("expected nil similarity for empty set")
	}

	space := Vectorize([][]string{nil, nil})
	if space.Weights != nil {
		t.Fatalf("expected nil weights when vocabulary is empty")
	}
	sim := space.Similarity()
	if sim == nil || sim.SymmetricDim() != 2 {
		t.Fatalf("expected 2x2 zero similarity matrix")
	}
	if got := sim.At(0, 1); got != 0 {
		t.Fatalf("expected zero similarity for empty documents, got %v", got)
	}
}
