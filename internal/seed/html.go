package seed

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PlainText flattens an RSS description that may contain HTML markup.
func PlainText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || !strings.ContainsAny(trimmed, "<&") {
		return strings.Join(strings.Fields(trimmed), " ")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(trimmed))
	if err != nil {
		return strings.Join(strings.Fields(trimmed), " ")
	}
	doc.Find("script, style").Remove()

	parts := make([]string, 0, 4)
	doc.Find("body").Each(func(_ int, s *goquery.Selection) {
		parts = append(parts, s.Text())
	})
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
