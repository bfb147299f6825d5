// Package problem defines the assembled contest problem record and the
// flat JSON corpus it is stored in.
package problem

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gaolin1/math-olympic-question-search/internal/vocab"
)

const (
	Source      = "gauss"
	ChoiceSlots = 5
	MinNumber   = 1
	MaxNumber   = 25
)

// Record is one contest problem. Field names are stable; answer and
// solution stay absent until the answer key supplies them.
type Record struct {
	ID            string   `json:"id"`
	Source        string   `json:"source"`
	Grade         int      `json:"grade"`
	Year          int      `json:"year"`
	ProblemNumber int      `json:"problem_number"`
	Statement     string   `json:"statement"`
	Choices       []string `json:"choices"`
	Images        []string `json:"images"`
	Answer        *string  `json:"answer,omitempty"`
	Solution      *string  `json:"solution,omitempty"`
	Tags          []string `json:"tags"`
	URL           string   `json:"url"`
}

// RecordID derives the deterministic composite id, stable across re-runs.
func RecordID(year, grade, number int) string {
	return fmt.Sprintf("%s-%d-g%d-%d", Source, year, grade, number)
}

func (r *Record) Validate(v *vocab.Vocabulary) error {
	if r.ID != RecordID(r.Year, r.Grade, r.ProblemNumber) {
		return fmt.Errorf("record %s: id does not match (year=%d grade=%d number=%d)", r.ID, r.Year, r.Grade, r.ProblemNumber)
	}
	if r.Grade != 7 && r.Grade != 8 {
		return fmt.Errorf("record %s: grade %d out of range", r.ID, r.Grade)
	}
	if r.ProblemNumber < MinNumber || r.ProblemNumber > MaxNumber {
		return fmt.Errorf("record %s: problem_number %d out of range", r.ID, r.ProblemNumber)
	}
	if len(r.Choices) != ChoiceSlots {
		return fmt.Errorf("record %s: %d choices, want %d", r.ID, len(r.Choices), ChoiceSlots)
	}
	if strings.TrimSpace(r.Statement) == "" {
		return fmt.Errorf("record %s: empty statement", r.ID)
	}
	if r.Answer != nil {
		if a := *r.Answer; len(a) != 1 || a[0] < 'A' || a[0] > 'E' {
			return fmt.Errorf("record %s: answer %q not in A-E", r.ID, *r.Answer)
		}
	}
	for _, tag := range r.Tags {
		if !v.Contains(tag) {
			return fmt.Errorf("record %s: tag %q not in vocabulary", r.ID, tag)
		}
	}
	return nil
}

// SortRecords orders a corpus deterministically: year, grade, number.
func SortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Grade != b.Grade {
			return a.Grade < b.Grade
		}
		return a.ProblemNumber < b.ProblemNumber
	})
}

// Merge overlays incoming records onto an existing corpus, replacing by id,
// and returns the result in deterministic order. Re-running a scrape is
// idempotent under this merge.
func Merge(existing, incoming []Record) []Record {
	byID := make(map[string]int, len(existing))
	out := append([]Record(nil), existing...)
	for i, r := range out {
		byID[r.ID] = i
	}
	for _, r := range incoming {
		if i, ok := byID[r.ID]; ok {
			out[i] = r
			continue
		}
		byID[r.ID] = len(out)
		out = append(out, r)
	}
	SortRecords(out)
	return out
}
