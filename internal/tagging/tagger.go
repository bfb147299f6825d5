package tagging

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/gaolin1/math-olympic-question-search/internal/problem"
	"github.com/gaolin1/math-olympic-question-search/internal/vocab"
)

const defaultBatchSize = 4

type Tagger struct {
	classifier Classifier
	vocab      *vocab.Vocabulary
	batchSize  int
	force      bool
}

type TaggerOption func(*Tagger)

// WithBatchSize bounds how many classification calls run concurrently.
func WithBatchSize(n int) TaggerOption {
	return func(t *Tagger) {
		if n > 0 {
			t.batchSize = n
		}
	}
}

// WithForce retags records that already carry tags.
func WithForce(force bool) TaggerOption {
	return func(t *Tagger) { t.force = force }
}

func NewTagger(classifier Classifier, v *vocab.Vocabulary, opts ...TaggerOption) *Tagger {
	t := &Tagger{classifier: classifier, vocab: v, batchSize: defaultBatchSize}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// outcome is what one record's tagging pass ended with; the buckets are
// mutually exclusive.
type outcome int

const (
	// outcomeTagged: the classifier response yielded the tags.
	outcomeTagged outcome = iota
	// outcomeHeuristic: the keyword fallback yielded the tags.
	outcomeHeuristic
	// outcomeUntagged: no stage produced any tag.
	outcomeUntagged
	// outcomeFailed: the classifier call itself failed; any tags came
	// from the keyword fallback.
	outcomeFailed
)

type Stats struct {
	Tagged    int
	Heuristic int
	Untagged  int
	Failed    int
	Skipped   int
}

func (s *Stats) count(o outcome) {
	switch o {
	case outcomeTagged:
		s.Tagged++
	case outcomeHeuristic:
		s.Heuristic++
	case outcomeUntagged:
		s.Untagged++
	case outcomeFailed:
		s.Failed++
	}
}

// TagAll classifies records in place, a bounded batch at a time.
// Records that already carry tags are skipped unless force is set. A
// failed or absent classifier still gets the heuristic fallback so no
// record is left behind by a flaky call or a missing credential.
func (t *Tagger) TagAll(ctx context.Context, records []problem.Record) Stats {
	stats := Stats{}
	pending := make([]int, 0, len(records))
	for i := range records {
		if len(records[i].Tags) > 0 && !t.force {
			stats.Skipped++
			continue
		}
		pending = append(pending, i)
	}

	for start := 0; start < len(pending); start += t.batchSize {
		end := start + t.batchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		var wg sync.WaitGroup
		results := make([][]string, len(batch))
		outcomes := make([]outcome, len(batch))
		for bi, ri := range batch {
			wg.Add(1)
			go func(bi, ri int) {
				defer wg.Done()
				results[bi], outcomes[bi] = t.tagOne(ctx, &records[ri])
			}(bi, ri)
		}
		wg.Wait()

		for bi, ri := range batch {
			records[ri].Tags = results[bi]
			stats.count(outcomes[bi])
		}
		if ctx.Err() != nil {
			break
		}
	}
	return stats
}

func (t *Tagger) tagOne(ctx context.Context, r *problem.Record) ([]string, outcome) {
	text := problemText(r)
	if t.classifier == nil {
		return heuristicOutcome(t.vocab, text)
	}
	resp, err := t.classifier.Classify(ctx, t.BuildPrompt(r))
	if err != nil {
		log.Printf("tagging: classify %s: %v", r.ID, err)
		tags, _ := heuristicOutcome(t.vocab, text)
		return tags, outcomeFailed
	}
	return resolveStaged(t.vocab, resp, text)
}

func heuristicOutcome(v *vocab.Vocabulary, text string) ([]string, outcome) {
	tags := HeuristicTags(v, text)
	if len(tags) == 0 {
		return nil, outcomeUntagged
	}
	return tags, outcomeHeuristic
}

// BuildPrompt renders the classification request: the problem followed
// by the allowed vocabulary, grouped by category.
func (t *Tagger) BuildPrompt(r *problem.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Classify this grade %d math contest problem by topic.\n\n", r.Grade)
	b.WriteString("Problem:\n")
	b.WriteString(r.Statement)
	b.WriteString("\n")
	for i, c := range r.Choices {
		if strings.TrimSpace(c) == "" {
			continue
		}
		fmt.Fprintf(&b, "(%c) %s\n", 'A'+i, stripChoiceMarker(c))
	}
	b.WriteString("\nChoose 1 to 3 tags, ONLY from this list:\n")
	for _, cat := range t.vocab.Categories() {
		fmt.Fprintf(&b, "%s: %s\n", cat.Name, strings.Join(cat.Tags, ", "))
	}
	b.WriteString("\nRespond with JSON: {\"tags\": [{\"name\": \"<tag>\", \"confidence\": <0..1>}]}")
	return b.String()
}

// stripChoiceMarker drops a leading "(A) " style marker so the prompt
// does not letter choices twice.
func stripChoiceMarker(c string) string {
	c = strings.TrimSpace(c)
	if len(c) >= 3 && c[0] == '(' && c[1] >= 'A' && c[1] <= 'E' && c[2] == ')' {
		return strings.TrimSpace(c[3:])
	}
	return c
}

func problemText(r *problem.Record) string {
	parts := append([]string{r.Statement}, r.Choices...)
	return strings.Join(parts, "\n")
}
