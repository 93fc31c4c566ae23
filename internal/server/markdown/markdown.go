// Package markdown renders user-authored markdown (devotion bodies) to HTML.
package markdown

import (
	"bytes"
	"html"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// Raw HTML in the input is escaped: WithUnsafe is deliberately absent.
var renderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// Render converts md to HTML. On a renderer failure the escaped source is
// returned wrapped in a paragraph.
func Render(md string) string {
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(md), &buf); err != nil {
		return "<p>" + html.EscapeString(md) + "</p>"
	}
	return buf.String()
}
