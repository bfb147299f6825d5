// Package report renders a scrape run summary, as markdown for the
// terminal-minded and as standalone HTML for everyone else.
package report

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

type UnitStatus struct {
	Label  string
	OK     bool
	Detail string
}

// Run collects what one scrape run did to feed the summary.
type Run struct {
	Year           int
	Units          []UnitStatus
	Records        int
	AnswersMatched int
	Warnings       []string
	TagCounts      map[string]int
}

// BuildMarkdown renders the run as a GFM document.
func BuildMarkdown(r Run) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Gauss Scrape Run %d\n\n", r.Year)

	b.WriteString("| Unit | Status | Detail |\n|---|---|---|\n")
	for _, u := range r.Units {
		status := "ok"
		if !u.OK {
			status = "failed"
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", u.Label, status, u.Detail)
	}

	fmt.Fprintf(&b, "\n**Records:** %d  \n**Answers matched:** %d of %d\n", r.Records, r.AnswersMatched, r.Records)

	if len(r.Warnings) > 0 {
		b.WriteString("\n## Warnings\n\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	if len(r.TagCounts) > 0 {
		b.WriteString("\n## Tag Distribution\n\n| Tag | Problems |\n|---|---|\n")
		for _, tc := range sortedTagCounts(r.TagCounts) {
			fmt.Fprintf(&b, "| %s | %d |\n", tc.tag, tc.count)
		}
	}
	return b.String()
}

type tagCount struct {
	tag   string
	count int
}

// Highest count first, ties alphabetical.
func sortedTagCounts(counts map[string]int) []tagCount {
	out := make([]tagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, tagCount{tag: tag, count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].tag < out[j].tag
	})
	return out
}

// RenderHTML converts the run to a standalone HTML page.
func RenderHTML(r Run) (string, error) {
	var content strings.Builder
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert([]byte(BuildMarkdown(r)), &content); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}
	title := html.EscapeString(fmt.Sprintf("Gauss Scrape Run %d", r.Year))
	return "<!doctype html><html><head><meta charset='utf-8'><title>" + title + "</title>" +
		"<style>" +
		"body{font-family:system-ui,sans-serif;max-width:860px;margin:2rem auto;padding:0 1rem;color:#1c1917;}" +
		"table{border-collapse:collapse;width:100%;font-size:0.9rem;}" +
		"th,td{border:1px solid #a8a29e;padding:0.35rem 0.5rem;text-align:left;}" +
		"thead th{background:#f1f5f9;}" +
		"</style></head><body>" + content.String() + "</body></html>", nil
}
