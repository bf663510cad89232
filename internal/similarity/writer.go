package similarity

import (
	"context"
	"fmt"

	"horse.fit/newsfinder/internal/db"
)

// PairStore persists similar pairs with create-or-update semantics keyed on
// (id1, id2).
type PairStore interface {
	UpsertSimilarPairs(ctx context.Context, pairs []db.SimilarPair) error
}

type Writer struct {
	store PairStore
}

func NewWriter(store PairStore) *Writer {
	return &Writer{store: store}
}

// Write stores every match in both directions with the same similarity.
func (w *Writer) Write(ctx context.Context, docs []Document, matches []Match) (int, error) {
	pairs := ExpandPairs(docs, matches)
	if len(pairs) == 0 {
		return 0, nil
	}
	if err := w.store.UpsertSimilarPairs(ctx, pairs); err != nil {
		return 0, fmt.Errorf("write similar pairs: %w", err)
	}
	return len(pairs), nil
}

// ExpandPairs turns each match into its (a,b) and (b,a) rows.
func ExpandPairs(docs []Document, matches []Match) []db.SimilarPair {
	if len(matches) == 0 {
		return nil
	}
	pairs := make([]db.SimilarPair, 0, 2*len(matches))
	for _, m := range matches {
		a, b := docs[m.I].ArticleID, docs[m.J].ArticleID
		pairs = append(pairs,
			db.SimilarPair{ID1: a, ID2: b, Similarity: m.Similarity},
			db.SimilarPair{ID1: b, ID2: a, Similarity: m.Similarity},
		)
	}
	return pairs
}
