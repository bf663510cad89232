package db

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// SimilarityRunStats are the counters recorded when a run finishes.
type SimilarityRunStats struct {
	ArticleCount          int
	TitleVocabulary       int
	DescriptionVocabulary int
	Matches               int
	SameSourceMatches     int
}

func (p *Pool) StartSimilarityRun(ctx context.Context, runUUID string, forced bool, startedAt time.Time) error {
	const q = `
INSERT INTO news.similarity_runs (run_uuid, forced, status, started_at)
VALUES ($1::uuid, $2, $3, $4)
`
	if _, err := p.Exec(ctx, q, strings.TrimSpace(runUUID), forced, RunStatusRunning, startedAt.UTC()); err != nil {
		return fmt.Errorf("insert similarity run %s: %w", runUUID, err)
	}
	return nil
}

// FinishSimilarityRun marks a run completed, or failed when runErr is non-nil.
func (p *Pool) FinishSimilarityRun(ctx context.Context, runUUID string, stats SimilarityRunStats, runErr error, finishedAt time.Time) error {
	status := RunStatusCompleted
	var message *string
	if runErr != nil {
		status = RunStatusFailed
		text := runErr.Error()
		message = &text
	}

	const q = `
UPDATE news.similarity_runs
SET
	status = $2,
	article_count = $3,
	title_vocabulary = $4,
	description_vocabulary = $5,
	matches = $6,
	same_source_matches = $7,
	error_message = $8,
	finished_at = $9
WHERE run_uuid = $1::uuid
`
	tag, err := p.Exec(ctx, q,
		strings.TrimSpace(runUUID),
		status,
		stats.ArticleCount,
		stats.TitleVocabulary,
		stats.DescriptionVocabulary,
		stats.Matches,
		stats.SameSourceMatches,
		message,
		finishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("finish similarity run %s: %w", runUUID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("finish similarity run %s: run not found", runUUID)
	}
	return nil
}

// LatestSimilarityRun returns the most recently started run.
func (p *Pool) LatestSimilarityRun(ctx context.Context) (*SimilarityRun, error) {
	gdb := p.GORM()
	if gdb == nil {
		return nil, fmt.Errorf("database pool is not initialized")
	}
	var run SimilarityRun
	res := gdb.WithContext(ctx).Order("started_at DESC").Limit(1).Find(&run)
	if res.Error != nil {
		return nil, fmt.Errorf("query latest similarity run: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNoRows
	}
	return &run, nil
}
