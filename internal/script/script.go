package script

import (
	"strings"
	"text/template"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"morning-brief/internal/models"
)

const briefTemplate = `Morning Brief — {{.Date}}
{{range $i, $s := .Sections}}
{{inc $i}}. {{$s.Title}}
{{bullets $s}}
{{- if $s.Commentary}}

Conversation line: {{$s.Commentary}}
{{- end}}
{{end}}
{{inc (len .Sections)}}. Synthesis / Closing
Theme: Signals across markets, supply chains, and tech.
Red flag: Data quality and policy shifts can change fast.
Smart line: Controlled volatility rewards prepared operators.
`

var tmpl = template.Must(template.New("brief").Funcs(template.FuncMap{
	"inc":     func(i int) int { return i + 1 },
	"bullets": bullets,
}).Parse(briefTemplate))

// Compose renders the spoken script for day from the collected sections. The
// output depends only on its inputs.
func Compose(day time.Time, sections []models.Section) (string, error) {
	var b strings.Builder
	err := tmpl.Execute(&b, struct {
		Date     string
		Sections []models.Section
	}{
		Date:     day.Format("02 Jan 2006"),
		Sections: sections,
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

func bullets(s models.Section) string {
	if len(s.Headlines) == 0 {
		return " • —"
	}
	lines := make([]string, 0, len(s.Headlines)*2)
	for _, h := range s.Headlines {
		lines = append(lines, " • "+Clean(h.Title))
		if summary := Clean(h.Summary); summary != "" {
			lines = append(lines, "   "+summary)
		}
	}
	return strings.Join(lines, "\n")
}

// Clean normalises text for speech engines: NFKC, no control characters, single spaces.
func Clean(s string) string {
	s = norm.NFKC.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
