package db

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ArticleRecord is one corpus row as read by the similarity engine. SourceName
// is empty when the article's source row cannot be resolved.
type ArticleRecord struct {
	ArticleID       int64
	SourceID        int64
	SourceName      string
	URL             string
	Title           string
	Description     string
	Language        string
	PublicationDate *time.Time
}

// ListArticles returns the full corpus ordered by article_id.
func (p *Pool) ListArticles(ctx context.Context) ([]ArticleRecord, error) {
	const q = `
SELECT
	a.article_id,
	a.source_id,
	COALESCE(s.name, ''),
	a.url,
	a.title,
	COALESCE(a.description, ''),
	COALESCE(a.language, ''),
	a.publication_date
FROM news.articles a
LEFT JOIN news.sources s
	ON s.source_id = a.source_id
ORDER BY a.article_id
`
	rows, err := p.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	out := make([]ArticleRecord, 0, 256)
	for rows.Next() {
		var rec ArticleRecord
		if err := rows.Scan(
			&rec.ArticleID,
			&rec.SourceID,
			&rec.SourceName,
			&rec.URL,
			&rec.Title,
			&rec.Description,
			&rec.Language,
			&rec.PublicationDate,
		); err != nil {
			return nil, fmt.Errorf("scan article row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate article rows: %w", err)
	}
	return out, nil
}

// DisplayArticle is the read model served by the HTTP listing.
type DisplayArticle struct {
	ArticleID       int64      `json:"article_id"`
	SourceID        int64      `json:"source_id"`
	SourceName      string     `json:"source"`
	URL             string     `json:"url"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Language        string     `json:"language"`
	Photo           *string    `json:"photo,omitempty"`
	PublicationDate *time.Time `json:"publication_date,omitempty"`
}

type ListArticlesQuery struct {
	Limit  int
	Offset int
	Source string
}

// ListArticlesForDisplay returns newest articles first, leaving out any article
// that has a newer same-source similar article (an update of the same story).
func (p *Pool) ListArticlesForDisplay(ctx context.Context, query ListArticlesQuery) ([]DisplayArticle, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(query.Offset, 0)

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
	a.publication_date
FROM news.articles a
JOIN news.sources s
	ON s.source_id = a.source_id
WHERE ($1 = '' OR s.name = $1)
  AND NOT EXISTS (
	SELECT 1
	FROM news.similar_articles sa
	JOIN news.articles newer
		ON newer.article_id = sa.id2
	WHERE sa.id1 = a.article_id
	  AND newer.source_id = a.source_id
	  AND COALESCE(newer.publication_date, newer.created_at) > COALESCE(a.publication_date, a.created_at)
)
ORDER BY COALESCE(a.publication_date, a.created_at) DESC, a.article_id DESC
LIMIT $2 OFFSET $3
`
	rows, err := p.Query(ctx, q, strings.TrimSpace(query.Source), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query display articles: %w", err)
	}
	defer rows.Close()

	return scanDisplayArticles(rows)
}

// GetArticleByURL returns the article stored under url.
func (p *Pool) GetArticleByURL(ctx context.Context, url string) (*DisplayArticle, error) {
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
	a.publication_date
FROM news.articles a
JOIN news.sources s
	ON s.source_id = a.source_id
WHERE a.url = $1
`
	var out DisplayArticle
	err := p.QueryRow(ctx, q, strings.TrimSpace(url)).Scan(
		&out.ArticleID,
		&out.SourceID,
		&out.SourceName,
		&out.URL,
		&out.Title,
		&out.Description,
		&out.Language,
		&out.Photo,
		&out.PublicationDate,
	)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func scanDisplayArticles(rows *Rows) ([]DisplayArticle, error) {
	out := make([]DisplayArticle, 0, 64)
	for rows.Next() {
		var item DisplayArticle
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
		); err != nil {
			return nil, fmt.Errorf("scan display article row: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate display article rows: %w", err)
	}
	return out, nil
}
