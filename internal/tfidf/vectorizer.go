// Package tfidf builds row-normalized TF-IDF matrices over a shared, sorted
// vocabulary so that the dot product of two rows is their cosine similarity.
package tfidf

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Vocabulary is the sorted set of distinct tokens of a document set. The
// position of a token is its matrix column.
type Vocabulary struct {
	terms []string
	index map[string]int
}

// NewVocabulary collects the distinct tokens of docs in sorted order.
func NewVocabulary(docs [][]string) *Vocabulary {
	index := make(map[string]int)
	for _, doc := range docs {
		for _, token := range doc {
			index[token] = 0
		}
	}

	terms := make([]string, 0, len(index))
	for token := range index {
		terms = append(terms, token)
	}
	sort.Strings(terms)
	for i, token := range terms {
		index[token] = i
	}

	return &Vocabulary{terms: terms, index: index}
}

func (v *Vocabulary) Len() int {
	if v == nil {
		return 0
	}
	return len(v.terms)
}

// Terms returns the vocabulary in column order.
func (v *Vocabulary) Terms() []string {
	if v == nil {
		return nil
	}
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// Index returns the column of token.
func (v *Vocabulary) Index(token string) (int, bool) {
	if v == nil {
		return 0, false
	}
	i, ok := v.index[token]
	return i, ok
}

// Space is one vectorized document set.
type Space struct {
	Vocabulary *Vocabulary
	// IDF holds N / document_frequency per column.
	IDF []float64
	// Weights is the N×V matrix of L2-normalized TF-IDF rows; nil when N or V is zero.
	Weights *mat.Dense
	docs    int
}

// Docs returns the number of documents (rows) in the space.
func (s *Space) Docs() int {
	if s == nil {
		return 0
	}
	return s.docs
}

// Vectorize computes the TF-IDF space of docs. Documents without tokens get an
// all-zero row.
func Vectorize(docs [][]string) *Space {
	vocab := NewVocabulary(docs)
	space := &Space{Vocabulary: vocab, docs: len(docs)}
	n, v := len(docs), vocab.Len()
	if n == 0 || v == 0 {
		return space
	}

	tf := mat.NewDense(n, v, nil)
	docFreq := make([]float64, v)
	for row, doc := range docs {
		if len(doc) == 0 {
			continue
		}
		counts := make(map[int]float64, len(doc))
		for _, token := range doc {
			col, _ := vocab.Index(token)
			counts[col]++
		}
		total := float64(len(doc))
		for col, count := range counts {
			tf.Set(row, col, count/total)
			docFreq[col]++
		}
	}

	// Plain N/df without log dampening; scores downstream depend on it.
	idf := make([]float64, v)
	for col, df := range docFreq {
		idf[col] = float64(n) / df
	}
	space.IDF = idf

	weights := mat.NewDense(n, v, nil)
	weights.Apply(func(_, col int, value float64) float64 {
		return value * idf[col]
	}, tf)

	for row := 0; row < n; row++ {
		vec := weights.RowView(row)
		norm := mat.Norm(vec, 2)
		if norm == 0 {
			continue
		}
		for col := 0; col < v; col++ {
			weights.Set(row, col, weights.At(row, col)/norm)
		}
	}
	space.Weights = weights
	return space
}

// Similarity returns the N×N cosine similarity matrix W·Wᵀ. Scores are rounded
// to 12 decimal places so identical documents compare as exactly 1. It
// returns nil for an empty document set.
func (s *Space) Similarity() *mat.SymDense {
	n := s.Docs()
	if n == 0 {
		return nil
	}
	if s.Weights == nil {
		return mat.NewSymDense(n, nil)
	}

	var sym mat.SymDense
	sym.SymOuterK(1, s.Weights)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, roundScore(sym.At(i, j)))
		}
	}
	return &sym
}

const scorePrecision = 1e12

func roundScore(value float64) float64 {
	rounded := math.Round(value*scorePrecision) / scorePrecision
	switch {
	case rounded < 0:
		return 0
	case rounded > 1:
		return 1
	default:
		return rounded
	}
}
