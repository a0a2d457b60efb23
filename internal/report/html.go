// Package report renders the HTML fragments shared by both report
// pipelines: a count heading plus a table per fragment, concatenated
// with an optional external stylesheet into one email body.
package report

import (
	"fmt"
	"html/template"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Fragment is one rendered section of a report email
type Fragment struct {
	Heading string   // e.g. "4 RDS License KeyPacks"
	Headers []string // table column headers
	Rows    [][]string
}

var fragmentTmpl = template.Must(template.New("fragment").Parse(
	`<h1>{{.Heading}}</h1>
<table>
<tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</table>
`))

// HTML renders the fragment as an HTML heading plus table.
// Cell content is escaped by the template engine.
func (f Fragment) HTML() (string, error) {
	var b strings.Builder
	if err := fragmentTmpl.Execute(&b, f); err != nil {
		return "", fmt.Errorf("failed to render fragment %q: %w", f.Heading, err)
	}
	return b.String(), nil
}

// LoadStylesheet reads the external stylesheet. A missing or unreadable
// file is not fatal: the report goes out unstyled with a warning.
func LoadStylesheet(path string, logger *zap.Logger) string {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Stylesheet not found, sending unstyled report",
			zap.String("path", path),
			zap.Error(err))
		return ""
	}
	return string(data)
}

// BuildEmailBody assembles the final HTML document from the stylesheet
// and the rendered fragments, in order
func BuildEmailBody(style string, fragments ...string) string {
	var b strings.Builder
	b.WriteString("<html><head>")
	if style != "" {
		b.WriteString("<style>\n")
		b.WriteString(style)
		b.WriteString("\n</style>")
	}
	b.WriteString("</head><body>\n")
	for _, f := range fragments {
		b.WriteString(f)
	}
	b.WriteString("</body></html>")
	return b.String()
}
