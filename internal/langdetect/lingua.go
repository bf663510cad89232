// Package langdetect guesses the language of article text when a feed does not
// declare one. Only languages with a stopword list are considered.
package langdetect

import (
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"

	"horse.fit/newsfinder/internal/language"
)

const minLetters = 6

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// Detect returns the supported language of text, or language.Unknown when the
// sample is too short or no supported language is a confident fit.
func Detect(text string) language.Name {
	sample := strings.TrimSpace(text)
	if sample == "" {
		return language.Unknown
	}

	letterCount := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letterCount++
		}
	}
	if letterCount < minLetters {
		return language.Unknown
	}

	detected, exists := getDetector().DetectLanguageOf(sample)
	if !exists {
		return language.Unknown
	}

	switch detected {
	case lingua.English:
		return language.English
	case lingua.Dutch:
		return language.Dutch
	default:
		return language.Unknown
	}
}

func getDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(lingua.English, lingua.Dutch).
			WithMinimumRelativeDistance(0.1).
			Build()
	})
	return detector
}
