package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown(t *testing.T) {
	out := string(RenderMarkdown("# Exams\n\nThe **timetable** is out.\n\n![map](https://cdn.example.com/map.png)"))

	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "<strong>timetable</strong>")
	assert.Contains(t, out, `loading="lazy"`)
}

func TestRenderMarkdownStripsScripts(t *testing.T) {
	out := string(RenderMarkdown("hello <script>alert(1)</script>"))
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "hello")
}

func TestSanitizeHTMLKeepsLayoutClasses(t *testing.T) {
	out := string(SanitizeHTML(`<div class="p-4"><h2>Intro</h2><img src="https://x.test/a.png" onerror="boom()"></div>`))
	assert.Contains(t, out, `class="p-4"`)
	assert.Contains(t, out, "<h2>Intro</h2>")
	assert.NotContains(t, out, "onerror")
}

func TestEnhanceHTMLContentEmbedsYouTube(t *testing.T) {
	out := string(EnhanceHTMLContent(`<p>https://youtu.be/abc123?t=1</p>`))
	assert.Contains(t, out, "https://www.youtube.com/embed/abc123")
}

func TestContainsHTML(t *testing.T) {
	assert.True(t, ContainsHTML("<p>hi</p>"))
	assert.False(t, ContainsHTML("1 < 2"))
	assert.False(t, ContainsHTML("plain text"))
}

func TestPlainExcerptAndFirstImage(t *testing.T) {
	html := `<p>Hello   <b>campus</b></p><img src="/a.png"><p>` + strings.Repeat("x", 50) + `</p>`
	assert.Equal(t, "/a.png", FirstImage(html))

	assert.Equal(t, "Hello campus", PlainExcerpt("<p>Hello   <b>campus</b></p>", 100))
	assert.Equal(t, "Hello...", PlainExcerpt("<p>Hello campus</p>", 5))
}

func TestVideoEmbedRejectsCraftedLinks(t *testing.T) {
	payload := `<p>https://youtube.com/watch?v=x"onload="alert(1)</p>`

	out := string(SanitizeHTML(payload))
	assert.NotContains(t, out, "<iframe")
	assert.NotContains(t, out, `onload="`)

	out = string(RenderMarkdown(`https://youtu.be/x" onload="alert(1)`))
	assert.NotContains(t, out, "<iframe")
	assert.NotContains(t, out, `onload="`)

	out = string(SanitizeHTML(`<p>https://www.youtube.com/watch?v=dQw4w9WgXcQ</p>`))
	assert.Contains(t, out, `<iframe src="https://www.youtube.com/embed/dQw4w9WgXcQ"`)
}
