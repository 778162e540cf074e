package publish

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Exported checklists: GFM task lists for items, emoji shortcodes and hard line breaks in
// descriptions. Raw HTML is never passed through.
var checklistMarkdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		emoji.Emoji,
	),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

func markdownBody(md string) (template.HTML, error) {
	var b bytes.Buffer
	if err := checklistMarkdown.Convert([]byte(strings.TrimSpace(md)), &b); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return template.HTML(b.String()), nil
}

var pageTmpl = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 52rem; margin: 2rem auto; padding: 0 1rem; line-height: 1.5; }
li > ul { margin-top: .25rem; }
li:has(> input[type=checkbox]) { list-style: none; margin-left: -1.25rem; }
@media print { body { margin: 0; max-width: none; } }
code { background: #f3f3f3; padding: 0 .2rem; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// RenderHTML renders exported markdown as a standalone, printable page.
func RenderHTML(title, md string) (string, error) {
	body, err := markdownBody(md)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	err = pageTmpl.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{Title: title, Body: body})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
