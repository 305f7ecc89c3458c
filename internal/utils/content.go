package utils

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	ugcPolicy = bluemonday.UGCPolicy()
	markdown  = goldmark.New(goldmark.WithExtensions(extension.GFM))
)

// SanitizeHTML strips anything not allowed in user generated content.
func SanitizeHTML(html string) string {
	return ugcPolicy.Sanitize(html)
}

// StripTags removes all markup from s.
func StripTags(s string) string {
	return strings.TrimSpace(bluemonday.StrictPolicy().Sanitize(s))
}

// RenderMarkdown converts Markdown to sanitized HTML.
func RenderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return ugcPolicy.Sanitize(buf.String()), nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and joins its words with dashes.
func Slugify(s string) string {
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
	return strings.Trim(nonSlug.ReplaceAllString(s, "-"), "-")
}

// Excerpt returns the first n runes of the plain text of html.
func Excerpt(html string, n int) string {
	text := strings.Join(strings.Fields(StripTags(html)), " ")
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}
