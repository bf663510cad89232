// Package seed loads fixture files of sources and articles into the corpus and
// raises the articles_modified flag so the next similarity cycle picks them up.
package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/newsfinder/internal/db"
	"horse.fit/newsfinder/internal/langdetect"
	"horse.fit/newsfinder/internal/language"
)

type corpusStore interface {
	UpsertSource(ctx context.Context, name, url string) (int64, error)
	UpsertArticle(ctx context.Context, in db.SeedArticle) (int64, bool, error)
	SetFlag(ctx context.Context, name string, value bool) error
}

type Importer struct {
	store  corpusStore
	logger zerolog.Logger
}

type ImportResult struct {
	Sources  int
	Inserted int
	Updated  int
}

func NewImporter(store corpusStore, logger zerolog.Logger) *Importer {
	return &Importer{store: store, logger: logger}
}

// Import upserts every source and article of fixture.
func (i *Importer) Import(ctx context.Context, fixture *Fixture) (ImportResult, error) {
	var result ImportResult
	if fixture == nil {
		return result, fmt.Errorf("fixture is nil")
	}

	sourceIDs := make(map[string]int64, len(fixture.Sources))
	for _, source := range fixture.Sources {
		id, err := i.store.UpsertSource(ctx, source.Name, source.URL)
		if err != nil {
			return result, err
		}
		sourceIDs[strings.TrimSpace(source.Name)] = id
		result.Sources++
	}

	for idx, article := range fixture.Articles {
		sourceName := strings.TrimSpace(article.Source)
		sourceID, ok := sourceIDs[sourceName]
		if !ok {
			id, err := i.store.UpsertSource(ctx, sourceName, "")
			if err != nil {
				return result, err
			}
			sourceIDs[sourceName] = id
			sourceID = id
			result.Sources++
		}

		in, err := buildSeedArticle(sourceID, article)
		if err != nil {
			return result, fmt.Errorf("articles[%d]: %w", idx, err)
		}

		_, inserted, err := i.store.UpsertArticle(ctx, in)
		if err != nil {
			return result, err
		}
		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
	}

	if result.Inserted+result.Updated > 0 {
		if err := i.store.SetFlag(ctx, db.FlagArticlesModified, true); err != nil {
			return result, err
		}
	}

	i.logger.Info().
		Int("sources", result.Sources).
		Int("inserted", result.Inserted).
		Int("updated", result.Updated).
		Msg("seed import completed")
	return result, nil
}

func buildSeedArticle(sourceID int64, article FixtureArticle) (db.SeedArticle, error) {
	title := strings.Join(strings.Fields(article.Title), " ")
	description := PlainText(article.Description)

	in := db.SeedArticle{
		SourceID:    sourceID,
		URL:         strings.TrimSpace(article.URL),
		Title:       title,
		Description: description,
		Language:    resolveLanguage(article.Language, title, description).String(),
		Photo:       article.Photo,
	}
	if article.PublicationDate != nil {
		published, err := time.Parse(time.RFC3339, strings.TrimSpace(*article.PublicationDate))
		if err != nil {
			return db.SeedArticle{}, fmt.Errorf("parse publication_date: %w", err)
		}
		published = published.UTC()
		in.PublicationDate = &published
	}
	return in, nil
}

// resolveLanguage prefers the declared tag, then detection, then english.
func resolveLanguage(declared, title, description string) language.Name {
	if lang := language.Resolve(declared); lang != language.Unknown {
		return lang
	}
	if lang := langdetect.Detect(strings.TrimSpace(title + " " + description)); lang != language.Unknown {
		return lang
	}
	return language.English
}
