package db

import (
	"context"
	"fmt"
	"time"
)

// DeleteArticlesPublishedBefore removes articles published before cutoff.
// Similar pairs referencing them cascade.
func (p *Pool) DeleteArticlesPublishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `
DELETE FROM news.articles
WHERE publication_date IS NOT NULL
  AND publication_date < $1
`
	tag, err := p.Exec(ctx, q, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete articles published before %s: %w", cutoff.UTC().Format(time.RFC3339), err)
	}
	return tag.RowsAffected(), nil
}
