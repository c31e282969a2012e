package utils

import (
	"bytes"
	"html/template"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	mdParser = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
			// admin-authored posts may embed raw HTML; bluemonday strips anything unsafe
			html.WithUnsafe(),
		),
	)
	policy = bluemonday.UGCPolicy()

	htmlTag = regexp.MustCompile(`<[^>]*>`)
)

func init() {
	policy.AllowImages()
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	policy.RequireNoReferrerOnLinks(true)
	// generated notes use utility classes for layout
	policy.AllowAttrs("class").Globally()
}

// RenderMarkdown converts markdown to sanitized HTML.
func RenderMarkdown(source string) template.HTML {
	var buf bytes.Buffer
	if err := mdParser.Convert([]byte(source), &buf); err != nil {
		return template.HTML(policy.Sanitize(source)) // Fallback
	}

	sanitized := policy.SanitizeBytes(buf.Bytes())

	return EnhanceHTMLContent(string(sanitized))
}

// SanitizeHTML cleans author-supplied HTML without markdown conversion.
func SanitizeHTML(source string) template.HTML {
	return EnhanceHTMLContent(policy.Sanitize(source))
}

// ContainsHTML reports whether s contains anything that looks like a tag.
func ContainsHTML(s string) bool {
	return htmlTag.MatchString(s)
}
