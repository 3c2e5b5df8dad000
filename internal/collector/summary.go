package collector

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const summaryLimit = 240

// Summarize strips markup from an item description, collapses whitespace and cuts
// the result to at most limit runes on a word boundary, adding an ellipsis when cut.
func Summarize(raw string, limit int) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	text := raw
	if strings.ContainsAny(raw, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw)); err == nil {
			text = doc.Text()
		}
	}
	text = collapseSpace(text)

	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:limit])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;:.-") + "…"
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
