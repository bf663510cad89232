// Package similarity finds articles that report the same story, either across
// outlets or as an outlet's own republished update, and stores them as
// symmetric similar pairs.
package similarity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"horse.fit/newsfinder/internal/db"
	"horse.fit/newsfinder/internal/globaltime"
	"horse.fit/newsfinder/internal/language"
	"horse.fit/newsfinder/internal/metrics"
	"horse.fit/newsfinder/internal/textnorm"
	"horse.fit/newsfinder/internal/tfidf"
)

const (
	DefaultConnectAttempts = 4
	DefaultRetryDelay      = 5 * time.Second
)

var (
	// ErrDatastoreUnavailable means reconnecting failed on every attempt.
	ErrDatastoreUnavailable = errors.New("datastore unavailable")
	// ErrMissingSource means an article references a source that does not exist.
	ErrMissingSource = errors.New("article source could not be resolved")
)

// Store is everything a cycle reads from and writes to the datastore.
type Store interface {
	PairStore
	IsConnected(ctx context.Context) bool
	Reconnect(ctx context.Context) error
	ListArticles(ctx context.Context) ([]db.ArticleRecord, error)
	GetFlag(ctx context.Context, name string) (bool, bool, error)
	CreateFlag(ctx context.Context, name string, value bool) error
	SetFlag(ctx context.Context, name string, value bool) error
	StartSimilarityRun(ctx context.Context, runUUID string, forced bool, startedAt time.Time) error
	FinishSimilarityRun(ctx context.Context, runUUID string, stats db.SimilarityRunStats, runErr error, finishedAt time.Time) error
}

type Options struct {
	ConnectAttempts int
	RetryDelay      time.Duration
	TitleThreshold  float64
}

type Engine struct {
	store      Store
	writer     *Writer
	normalizer *textnorm.Normalizer
	logger     zerolog.Logger
	opts       Options
	sleep      func(ctx context.Context, d time.Duration) error
}

// CycleResult summarizes one RunCycle call.
type CycleResult struct {
	RunUUID               string
	Skipped               bool
	Forced                bool
	Articles              int
	TitleVocabulary       int
	DescriptionVocabulary int
	Matches               int
	SameSourceMatches     int
	PairsWritten          int
	Duration              time.Duration
}

func NewEngine(store Store, normalizer *textnorm.Normalizer, logger zerolog.Logger, opts Options) *Engine {
	if opts.ConnectAttempts <= 0 {
		opts.ConnectAttempts = DefaultConnectAttempts
	}
	if opts.RetryDelay < 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.TitleThreshold <= 0 {
		opts.TitleThreshold = TitleThreshold
	}
	return &Engine{
		store:      store,
		writer:     NewWriter(store),
		normalizer: normalizer,
		logger:     logger,
		opts:       opts,
		sleep:      sleepContext,
	}
}

// RunCycle runs one similarity cycle. Unless force is set, the cycle is
// skipped when the articles_modified flag is false.
func (e *Engine) RunCycle(ctx context.Context, force bool) (CycleResult, error) {
	startedAt := globaltime.UTC()
	result := CycleResult{Forced: force}

	if err := e.ensureConnected(ctx); err != nil {
		metrics.RecordCycle(false, globaltime.Since(startedAt), 0, 0, 0, err)
		return result, err
	}

	modified, err := e.readModifiedFlag(ctx)
	if err != nil {
		metrics.RecordCycle(false, globaltime.Since(startedAt), 0, 0, 0, err)
		return result, err
	}
	if !modified && !force {
		result.Skipped = true
		result.Duration = globaltime.Since(startedAt)
		metrics.RecordCycle(true, result.Duration, 0, 0, 0, nil)
		e.logger.Debug().Msg("articles unchanged; similarity cycle skipped")
		return result, nil
	}

	result.RunUUID = uuid.NewString()
	if err := e.store.StartSimilarityRun(ctx, result.RunUUID, force, startedAt); err != nil {
		metrics.RecordCycle(false, globaltime.Since(startedAt), 0, 0, 0, err)
		return result, fmt.Errorf("start similarity run: %w", err)
	}

	runErr := e.compute(ctx, &result)
	result.Duration = globaltime.Since(startedAt)

	stats := db.SimilarityRunStats{
		ArticleCount:          result.Articles,
		TitleVocabulary:       result.TitleVocabulary,
		DescriptionVocabulary: result.DescriptionVocabulary,
		Matches:               result.Matches,
		SameSourceMatches:     result.SameSourceMatches,
	}
	if err := e.store.FinishSimilarityRun(ctx, result.RunUUID, stats, runErr, globaltime.UTC()); err != nil {
		if runErr == nil {
			runErr = fmt.Errorf("finish similarity run: %w", err)
		} else {
			e.logger.Warn().Err(err).Str("run_uuid", result.RunUUID).Msg("failed to record similarity run failure")
		}
	}

	metrics.RecordCycle(false, result.Duration, result.Articles, result.Matches, result.SameSourceMatches, runErr)
	if runErr != nil {
		return result, runErr
	}

	e.logger.Info().
		Str("run_uuid", result.RunUUID).
		Bool("forced", force).
		Int("articles", result.Articles).
		Int("title_vocabulary", result.TitleVocabulary).
		Int("description_vocabulary", result.DescriptionVocabulary).
		Int("matches", result.Matches).
		Int("same_source_matches", result.SameSourceMatches).
		Int("pairs_written", result.PairsWritten).
		Dur("duration", result.Duration).
		Msg("similarity cycle completed")
	return result, nil
}

func (e *Engine) compute(ctx context.Context, result *CycleResult) error {
	records, err := e.store.ListArticles(ctx)
	if err != nil {
		return fmt.Errorf("load articles: %w", err)
	}

	docs, err := e.prepare(records)
	if err != nil {
		return err
	}
	result.Articles = len(docs)

	titles := make([][]string, len(docs))
	descriptions := make([][]string, len(docs))
	for i, doc := range docs {
		titles[i] = doc.Title
		descriptions[i] = doc.Description
	}

	titleSpace := tfidf.Vectorize(titles)
	descriptionSpace := tfidf.Vectorize(descriptions)
	result.TitleVocabulary = titleSpace.Vocabulary.Len()
	result.DescriptionVocabulary = descriptionSpace.Vocabulary.Len()

	matches := MatchDocuments(docs, titleSpace.Similarity(), descriptionSpace.Similarity(), MatchOptions{
		Threshold: e.opts.TitleThreshold,
	})
	result.Matches = len(matches)
	for _, m := range matches {
		if m.SameSource {
			result.SameSourceMatches++
			e.logger.Debug().
				Int64("article_id", docs[m.I].ArticleID).
				Int64("other_article_id", docs[m.J].ArticleID).
				Float64("similarity", m.Similarity).
				Str("via", string(m.Via)).
				Msg("possible update from same source")
		}
	}

	written, err := e.writer.Write(ctx, docs, matches)
	if err != nil {
		return err
	}
	result.PairsWritten = written

	if err := e.store.SetFlag(ctx, db.FlagArticlesModified, false); err != nil {
		return fmt.Errorf("reset %s flag: %w", db.FlagArticlesModified, err)
	}
	return nil
}

func (e *Engine) prepare(records []db.ArticleRecord) ([]Document, error) {
	docs := make([]Document, 0, len(records))
	for _, rec := range records {
		if strings.TrimSpace(rec.SourceName) == "" {
			return nil, fmt.Errorf("%w: article_id=%d source_id=%d", ErrMissingSource, rec.ArticleID, rec.SourceID)
		}
		lang := language.Resolve(rec.Language)
		docs = append(docs, Document{
			ArticleID:   rec.ArticleID,
			SourceID:    rec.SourceID,
			Title:       e.normalizer.Tokens(rec.Title, lang),
			Description: e.normalizer.Tokens(rec.Description, lang),
		})
	}
	return docs, nil
}

func (e *Engine) readModifiedFlag(ctx context.Context) (bool, error) {
	value, found, err := e.store.GetFlag(ctx, db.FlagArticlesModified)
	if err != nil {
		return false, fmt.Errorf("read %s flag: %w", db.FlagArticlesModified, err)
	}
	if found {
		return value, nil
	}
	if err := e.store.CreateFlag(ctx, db.FlagArticlesModified, false); err != nil {
		return false, fmt.Errorf("create %s flag: %w", db.FlagArticlesModified, err)
	}
	return false, nil
}

func (e *Engine) ensureConnected(ctx context.Context) error {
	if e.store.IsConnected(ctx) {
		return nil
	}

	var lastErr error
	for attempt := 1; attempt <= e.opts.ConnectAttempts; attempt++ {
		err := e.store.Reconnect(ctx)
		if err == nil && e.store.IsConnected(ctx) {
			e.logger.Info().Int("attempt", attempt).Msg("datastore connection restored")
			return nil
		}
		if err == nil {
			err = errors.New("connection probe failed after reconnect")
		}
		lastErr = err
		e.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", e.opts.ConnectAttempts).
			Msg("datastore reconnect failed")

		if attempt < e.opts.ConnectAttempts {
			if err := e.sleep(ctx, e.opts.RetryDelay); err != nil {
				return err
			}
		}
	}
	return fmt.Errorf("%w after %d attempts: %v", ErrDatastoreUnavailable, e.opts.ConnectAttempts, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
