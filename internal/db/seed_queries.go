package db

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// SeedArticle is one article to insert or refresh by URL.
type SeedArticle struct {
	SourceID        int64
	URL             string
	Title           string
	Description     string
	Language        string
	PublicationDate *time.Time
	Photo           *string
}

// UpsertSource returns the id of the source called name, inserting it when new.
func (p *Pool) UpsertSource(ctx context.Context, name, url string) (int64, error) {
	trimmedName := strings.TrimSpace(name)
	if trimmedName == "" {
		return 0, fmt.Errorf("source name is required")
	}

	const q = `
INSERT INTO news.sources (name, url)
VALUES ($1, $2)
ON CONFLICT (name) DO UPDATE
SET url = CASE WHEN EXCLUDED.url <> '' THEN EXCLUDED.url ELSE news.sources.url END
RETURNING source_id
`
	var sourceID int64
	if err := p.QueryRow(ctx, q, trimmedName, strings.TrimSpace(url)).Scan(&sourceID); err != nil {
		return 0, fmt.Errorf("upsert source %q: %w", trimmedName, err)
	}
	return sourceID, nil
}

// UpsertArticle inserts an article or refreshes the stored one with the same
// URL. It reports whether a new row was created.
func (p *Pool) UpsertArticle(ctx context.Context, in SeedArticle) (int64, bool, error) {
	url := strings.TrimSpace(in.URL)
	if url == "" {
		return 0, false, fmt.Errorf("article url is required")
	}

	const q = `
INSERT INTO news.articles (
	source_id,
	url,
	title,
	description,
	language,
	publication_date,
	photo
)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (url) DO UPDATE
SET
	source_id = EXCLUDED.source_id,
	title = EXCLUDED.title,
	description = EXCLUDED.description,
	language = EXCLUDED.language,
	publication_date = EXCLUDED.publication_date,
	photo = EXCLUDED.photo,
	updated_at = NOW()
RETURNING article_id, (xmax = 0) AS inserted
`
	var (
		articleID int64
		inserted  bool
	)
	err := p.QueryRow(ctx, q,
		in.SourceID,
		url,
		in.Title,
		in.Description,
		in.Language,
		in.PublicationDate,
		in.Photo,
	).Scan(&articleID, &inserted)
	if err != nil {
		return 0, false, fmt.Errorf("upsert article url=%q: %w", url, err)
	}
	return articleID, inserted, nil
}
