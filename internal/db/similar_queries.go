package db

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const similarPairBatchSize = 500

// UpsertSimilarPairs writes pairs in a single transaction, overwriting the
// similarity of rows that already exist. It never deletes.
func (p *Pool) UpsertSimilarPairs(ctx context.Context, pairs []SimilarPair) error {
	if len(pairs) == 0 {
		return nil
	}
	gdb := p.GORM()
	if gdb == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	err := gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id1"}, {Name: "id2"}},
			DoUpdates: clause.AssignmentColumns([]string{"similarity"}),
		}).CreateInBatches(pairs, similarPairBatchSize).Error
	})
	if err != nil {
		return fmt.Errorf("upsert %d similar pairs: %w", len(pairs), err)
	}
	return nil
}

// SimilarArticle is one side of a stored pair joined with its article.
type SimilarArticle struct {
	DisplayArticle
	Similarity float64 `json:"similarity"`
	SameSource bool    `json:"same_source"`
}

// ListSimilarPairs returns the articles paired with articleID, most similar first.
func (p *Pool) ListSimilarPairs(ctx context.Context, articleID int64) ([]SimilarArticle, error) {
	const q = `
SELECT
	a.article_id,
	a.source_id,
	s.name,
	a.url,
	a.title,
	a.description,
	a.language,
	a.photo,
	a.publication_date,
	sa.similarity,
	a.source_id = base.source_id
FROM news.similar_articles sa
JOIN news.articles base
	ON base.article_id = sa.id1
JOIN news.articles a
	ON a.article_id = sa.id2
JOIN news.sources s
	ON s.source_id = a.source_id
WHERE sa.id1 = $1
ORDER BY sa.similarity DESC, a.article_id
`
	rows, err := p.Query(ctx, q, articleID)
	if err != nil {
		return nil, fmt.Errorf("query similar articles article_id=%d: %w", articleID, err)
	}
	defer rows.Close()

	out := make([]SimilarArticle, 0, 8)
	for rows.Next() {
		var item SimilarArticle
		if err := rows.Scan(
			&item.ArticleID,
			&item.SourceID,
			&item.SourceName,
			&item.URL,
			&item.Title,
			&item.Description,
			&item.Language,
			&item.Photo,
			&item.PublicationDate,
			&item.Similarity,
			&item.SameSource,
		); err != nil {
			return nil, fmt.Errorf("scan similar article row: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate similar article rows: %w", err)
	}
	return out, nil
}

// ListSimilarArticlesByURL resolves url to an article and lists its pairs.
func (p *Pool) ListSimilarArticlesByURL(ctx context.Context, url string) ([]SimilarArticle, error) {
	article, err := p.GetArticleByURL(ctx, strings.TrimSpace(url))
	if err != nil {
		return nil, err
	}
	return p.ListSimilarPairs(ctx, article.ArticleID)
}

// CountSimilarPairs returns the number of stored directed pair rows.
func (p *Pool) CountSimilarPairs(ctx context.Context) (int64, error) {
	var count int64
	if err := p.QueryRow(ctx, `SELECT COUNT(*) FROM news.similar_articles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count similar pairs: %w", err)
	}
	return count, nil
}
