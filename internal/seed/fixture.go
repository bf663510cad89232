package seed

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed fixture.schema.json
var fixtureSchemaJSON string

// Fixture is a batch of sources and articles to load into the corpus.
type Fixture struct {
	Sources  []FixtureSource  `json:"sources"`
	Articles []FixtureArticle `json:"articles"`
}

type FixtureSource struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

type FixtureArticle struct {
	Source          string  `json:"source"`
	URL             string  `json:"url"`
	Title           string  `json:"title"`
	Description     string  `json:"description,omitempty"`
	Language        string  `json:"language,omitempty"`
	PublicationDate *string `json:"publication_date,omitempty"`
	Photo           *string `json:"photo,omitempty"`
}

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// ParseFixture checks raw against the fixture schema and decodes it.
func ParseFixture(raw []byte) (*Fixture, error) {
	value, err := decodeStrictJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("decode fixture JSON: %w", err)
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize fixture JSON: %w", err)
	}

	var fixture Fixture
	if err := json.Unmarshal(normalized, &fixture); err != nil {
		return nil, fmt.Errorf("unmarshal fixture: %w", err)
	}
	if err := validateSemantics(&fixture); err != nil {
		return nil, err
	}
	return &fixture, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true

		if err := compiler.AddResource("fixture.schema.json", strings.NewReader(fixtureSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile("fixture.schema.json")
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}
		compiledSchema = schema
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	if compiledSchema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return compiledSchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("fixture is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("fixture contains trailing content")
	}
	return value, nil
}

func validateSemantics(fixture *Fixture) error {
	seenSources := make(map[string]struct{}, len(fixture.Sources))
	for i, source := range fixture.Sources {
		name := strings.TrimSpace(source.Name)
		if name == "" {
			return fmt.Errorf("sources[%d].name must not be empty", i)
		}
		if _, dup := seenSources[name]; dup {
			return fmt.Errorf("sources[%d]: duplicate source %q", i, name)
		}
		seenSources[name] = struct{}{}
	}

	seenURLs := make(map[string]struct{}, len(fixture.Articles))
	for i, article := range fixture.Articles {
		if strings.TrimSpace(article.Title) == "" {
			return fmt.Errorf("articles[%d].title must not be empty", i)
		}
		url := strings.TrimSpace(article.URL)
		if _, dup := seenURLs[url]; dup {
			return fmt.Errorf("articles[%d]: duplicate url %q", i, url)
		}
		seenURLs[url] = struct{}{}

		if article.PublicationDate != nil {
			if _, err := time.Parse(time.RFC3339, strings.TrimSpace(*article.PublicationDate)); err != nil {
				return fmt.Errorf("articles[%d].publication_date must be RFC3339: %w", i, err)
			}
		}
	}
	return nil
}
