package bundle

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"gopkg.in/yaml.v3"

	"BookTriage/internal/domain"
)

// IndexFile is the primary text file inside every bundle.
const IndexFile = "index.md"

const delimiter = "---"

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type header struct {
	Title string    `yaml:"title"`
	Date  yaml.Node `yaml:"date"`
	Draft bool      `yaml:"draft"`
}

// Parse splits raw bundle text into header metadata and body. A malformed
// header yields an error together with the whole text as body.
func Parse(raw string) (domain.Meta, string, error) {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	if !strings.HasPrefix(text, delimiter+"\n") {
		return domain.Meta{}, text, nil
	}

	rest := text[len(delimiter)+1:]
	end := strings.Index(rest, "\n"+delimiter)
	var block string
	switch {
	case strings.HasPrefix(rest, delimiter):
		block, rest = "", rest[len(delimiter):]
	case end >= 0:
		block, rest = rest[:end], rest[end+1+len(delimiter):]
	default:
		return domain.Meta{}, text, fmt.Errorf("header is not terminated")
	}
	body := strings.TrimLeft(rest, "\n")

	var h header
	if err := yaml.Unmarshal([]byte(block), &h); err != nil {
		return domain.Meta{}, text, fmt.Errorf("decode header: %w", err)
	}

	meta := domain.Meta{Title: strings.TrimSpace(h.Title), Draft: h.Draft}
	if h.Date.Value != "" {
		date, err := parseDate(h.Date.Value)
		if err != nil {
			return meta, body, err
		}
		meta.Date = date
	}
	return meta, body, nil
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", value)
}

// PlainText flattens inline HTML left over from the export so the body
// reads cleanly on a terminal. Markdown is left as is.
func PlainText(body string) string {
	if !strings.ContainsAny(body, "<&") {
		return strings.TrimSpace(body)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return strings.TrimSpace(body)
	}
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("script, style").Remove()
	return strings.TrimSpace(doc.Text())
}
