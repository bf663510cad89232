// Package textnorm turns raw article titles and descriptions into the token
// sequences the vectorizer counts.
package textnorm

import (
	"bufio"
	"embed"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"

	"horse.fit/newsfinder/internal/language"
)

//go:embed stopwords/*.txt
var stopwordFiles embed.FS

// asciiPunctuation mirrors the classic ASCII punctuation set; several of these
// ($, +, <, =, >, ^, `, |, ~) are unicode symbols rather than punctuation.
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Normalizer holds the per-language stopword sets. It is immutable after New.
type Normalizer struct {
	stopwords map[language.Name]map[string]struct{}
}

var (
	defaultOnce       sync.Once
	defaultNormalizer *Normalizer
	defaultErr        error
)

// Default returns the process-wide normalizer, loading stopword lists once.
func Default() (*Normalizer, error) {
	defaultOnce.Do(func() {
		defaultNormalizer, defaultErr = New()
	})
	return defaultNormalizer, defaultErr
}

// New loads the embedded stopword list of every supported language.
func New() (*Normalizer, error) {
	n := &Normalizer{stopwords: make(map[language.Name]map[string]struct{}, len(language.Supported))}
	for _, lang := range language.Supported {
		words, err := loadStopwords(lang)
		if err != nil {
			return nil, err
		}
		n.stopwords[lang] = words
	}
	return n, nil
}

func loadStopwords(lang language.Name) (map[string]struct{}, error) {
	path := "stopwords/" + string(lang) + ".txt"
	f, err := stopwordFiles.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stopwords %s: %w", path, err)
	}
	defer f.Close()

	words := make(map[string]struct{}, 128)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" {
			continue
		}
		words[word] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stopwords %s: %w", path, err)
	}
	return words, nil
}

// IsStopword reports whether word is in the stopword list of lang.
func (n *Normalizer) IsStopword(word string, lang language.Name) bool {
	if n == nil {
		return false
	}
	_, ok := n.stopwords[lang][word]
	return ok
}

// Tokens collapses whitespace, strips punctuation, lowercases, splits, and
// drops numeric tokens and stopwords of lang, in that order. Empty input
// yields nil. An unknown language skips stopword filtering.
func (n *Normalizer) Tokens(text string, lang language.Name) []string {
	collapsed := strings.Join(strings.Fields(text), " ")
	if collapsed == "" {
		return nil
	}

	stripped := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || strings.ContainsRune(asciiPunctuation, r) {
			return -1
		}
		return r
	}, collapsed)

	lowered := cases.Lower(lang.Tag()).String(stripped)

	fields := strings.Fields(lowered)
	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		if isNumeric(field) {
			continue
		}
		if n.IsStopword(field, lang) {
			continue
		}
		tokens = append(tokens, field)
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

func isNumeric(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
