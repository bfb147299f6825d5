package tagging

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/gaolin1/math-olympic-question-search/internal/vocab"
)

const defaultConfidence = 0.5

type scoredTag struct {
	name       string
	confidence float64
}

// ResolveTags runs the interpretation cascade over a classifier
// response. Stage one parses the JSON payload; stage two scans the
// response text and reasoning for vocabulary mentions; stage three
// falls back to keyword heuristics over the problem text itself. The
// first stage yielding at least one vocabulary tag wins.
func ResolveTags(v *vocab.Vocabulary, resp Response, problemText string) []string {
	tags, _ := resolveStaged(v, resp, problemText)
	return tags
}

func resolveStaged(v *vocab.Vocabulary, resp Response, problemText string) ([]string, outcome) {
	if tags := parseTagPayload(v, resp.Text); len(tags) > 0 {
		return tags, outcomeTagged
	}
	if tags := v.ScanText(resp.Text + "\n" + resp.Reasoning); len(tags) > 0 {
		return tags, outcomeTagged
	}
	return heuristicOutcome(v, problemText)
}

// parseTagPayload extracts a {"tags": [...]} object from raw model
// output. Entries are either bare tag strings or {name, confidence}
// objects; bare strings get a middling confidence so they sort after
// anything the model scored higher. Unresolvable names are dropped.
func parseTagPayload(v *vocab.Vocabulary, raw string) []string {
	clean := sliceJSONObject(stripCodeFences(raw))
	if clean == "" {
		return nil
	}
	var payload struct {
		Tags []json.RawMessage `json:"tags"`
	}
	if err := json.Unmarshal([]byte(clean), &payload); err != nil {
		return nil
	}

	scored := make([]scoredTag, 0, len(payload.Tags))
	for _, entry := range payload.Tags {
		var s string
		if err := json.Unmarshal(entry, &s); err == nil {
			scored = append(scored, scoredTag{name: s, confidence: defaultConfidence})
			continue
		}
		var obj struct {
			Name       string  `json:"name"`
			Tag        string  `json:"tag"`
			Confidence float64 `json:"confidence"`
		}
		if err := json.Unmarshal(entry, &obj); err != nil {
			continue
		}
		name := obj.Name
		if name == "" {
			name = obj.Tag
		}
		conf := obj.Confidence
		if conf == 0 {
			conf = defaultConfidence
		}
		scored = append(scored, scoredTag{name: name, confidence: conf})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].confidence > scored[j].confidence
	})

	var tags []string
	seen := map[string]bool{}
	for _, s := range scored {
		resolved, ok := v.Resolve(s.name)
		if !ok || seen[resolved] {
			continue
		}
		seen[resolved] = true
		tags = append(tags, resolved)
	}
	return tags
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		parts := strings.SplitN(s, "\n", 2)
		if len(parts) == 2 {
			s = parts[1]
		}
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}

// sliceJSONObject cuts the substring from the first '{' to the last
// '}', salvaging an object embedded in prose.
func sliceJSONObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

type heuristicRule struct {
	needles []string
	tags    []string
}

// Last-resort keyword rules. Every produced tag is a vocabulary member.
var heuristicRules = []heuristicRule{
	{[]string{"die ", "dice", "rolled", "coin", "spinner", "at random", "probability"}, []string{"probability"}},
	{[]string{"mean", "median", "mode"}, []string{"statistics"}},
	{[]string{"average"}, []string{"averages"}},
	{[]string{"how many ways", "arrange"}, []string{"counting", "arrangements"}},
	{[]string{"triangle"}, []string{"triangles"}},
	{[]string{"perimeter"}, []string{"perimeter"}},
	{[]string{"area"}, []string{"area"}},
	{[]string{"angle"}, []string{"angles"}},
	{[]string{"percent", "%"}, []string{"percentages"}},
	{[]string{"fraction"}, []string{"fractions"}},
	{[]string{"$", "dollar", "cent", "cost", "price"}, []string{"money"}},
	{[]string{"divisible", "divisor", "remainder"}, []string{"divisibility"}},
	{[]string{"prime"}, []string{"primes"}},
	{[]string{"sequence", "pattern"}, []string{"patterns"}},
	{[]string{"digit"}, []string{"digits"}},
	{[]string{"graph", "chart", "table below"}, []string{"tables-and-graphs"}},
	{[]string{"speed", "km/h", "per hour"}, []string{"rates"}},
	{[]string{"clock", "minutes", "hours"}, []string{"time"}},
	{[]string{"cube", "volume", "prism"}, []string{"3d-geometry"}},
}

// HeuristicTags maps statement keywords to tags when the classifier
// gave nothing usable.
func HeuristicTags(v *vocab.Vocabulary, text string) []string {
	lower := strings.ToLower(text)
	var tags []string
	seen := map[string]bool{}
	for _, rule := range heuristicRules {
		hit := false
		for _, needle := range rule.needles {
			if strings.Contains(lower, needle) {
				hit = true
				break
			}
		}
		if !hit {
			continue
		}
		for _, tag := range rule.tags {
			if !v.Contains(tag) || seen[tag] {
				continue
			}
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	return tags
}
