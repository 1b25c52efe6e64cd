package render

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

var markdownEngine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Table,
		extension.Strikethrough,
		extension.Linkify,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
		htmlrenderer.WithXHTML(),
	),
)

// renderScript converts a display script (markdown, formulas verbatim) into
// an HTML fragment. A conversion failure degrades to escaped plain text.
func renderScript(markdownText string) string {
	text := strings.TrimSpace(markdownText)
	if text == "" {
		return ""
	}

	var out bytes.Buffer
	if err := markdownEngine.Convert([]byte(text), &out); err != nil {
		return "<pre>" + template.HTMLEscapeString(text) + "</pre>"
	}
	return out.String()
}

func renderHTMLDocument(title, bodyHTML string) string {
	escapedTitle := template.HTMLEscapeString(strings.TrimSpace(title))
	if escapedTitle == "" {
		escapedTitle = "Document"
	}

	var b strings.Builder
	b.Grow(2048 + len(bodyHTML))
	b.WriteString(`<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>`)
	b.WriteString(escapedTitle)
	b.WriteString(`</title>
  <style>
    body { margin: 0; padding: 24px; font: 16px/1.7 -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; color: #222; background: #fff; }
    main { max-width: 860px; margin: 0 auto; }
    h1 { margin: 0 0 20px; font-size: 28px; }
    pre { white-space: pre-wrap; word-break: break-word; border: 1px solid #eee; border-radius: 8px; padding: 16px; background: #fafafa; }
    table { border-collapse: collapse; }
    td, th { border: 1px solid #ddd; padding: 6px 10px; }
  </style>
</head>
<body>
  <main>
`)
	b.WriteString(bodyHTML)
	b.WriteString(`
  </main>
</body>
</html>`)
	return b.String()
}
