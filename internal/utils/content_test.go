package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMarkdownSanitizes(t *testing.T) {
	html, err := RenderMarkdown("# Dry fruits\n\nSoaked **almonds** <script>alert(1)</script>")
	require.NoError(t, err)
	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "<strong>almonds</strong>")
	assert.NotContains(t, html, "<script>")
}

func TestSanitizeHTML(t *testing.T) {
	out := SanitizeHTML(`<p onclick="x()">Hi <a href="javascript:alert(1)">there</a></p>`)
	assert.NotContains(t, out, "onclick")
	assert.NotContains(t, out, "javascript:")
	assert.Contains(t, out, "Hi")
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "5-benefits-of-soaked-almonds", Slugify("5 Benefits of Soaked Almonds!"))
	assert.Equal(t, "cashews-w320", Slugify("  Cashews -- W320 "))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "Hello world", Excerpt("<p>Hello <b>world</b></p>", 50))
	assert.Equal(t, "Hello…", Excerpt("<p>Hello world</p>", 5))
}
