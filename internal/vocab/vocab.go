// Package vocab holds the controlled concept-tag vocabulary and the
// resolver that maps free-text tag candidates onto it. The vocabulary is
// built once at process start and never mutated; anything the resolver
// returns is guaranteed to be a canonical member.
package vocab

import (
	"sort"
	"strings"
)

// maxAliasHops bounds alias chain following so a cyclic table cannot loop.
const maxAliasHops = 4

type Category struct {
	Name string
	Tags []string
}

type Vocabulary struct {
	categories []Category
	members    map[string]struct{}
	aliases    map[string]string
	flat       []string
}

// Default returns the fixed Gauss concept vocabulary.
func Default() *Vocabulary {
	return build([]Category{
		{Name: "Number Theory", Tags: []string{
			"divisibility", "primes", "factors", "gcd-lcm", "remainders",
			"exponents", "powers-and-patterns", "digits", "parity", "modular-arithmetic",
		}},
		{Name: "Arithmetic & Algebra", Tags: []string{
			"fractions", "ratios", "percentages", "expressions", "equations",
			"substitution", "patterns", "sequences", "inequalities", "polynomials",
			"multiplication", "division", "linear-equations",
		}},
		{Name: "Geometry", Tags: []string{
			"triangles", "angles", "similarity", "circles", "coordinates",
			"distance", "area", "perimeter", "3d-geometry", "transformations",
			"reflections",
		}},
		{Name: "Combinatorics & Probability", Tags: []string{
			"counting", "arrangements", "casework", "probability", "paths",
		}},
		{Name: "Word Problems & Applications", Tags: []string{
			"rates", "averages", "money", "tables-and-graphs", "time", "calendar",
			"bar-graphs",
		}},
		{Name: "Problem-Solving Strategies", Tags: []string{
			"logic", "working-backwards", "guess-check", "symmetry", "invariants", "extremal",
		}},
		{Name: "Statistics", Tags: []string{
			"mean", "median", "mode", "statistics",
		}},
	}, map[string]string{
		"pct":                  "percent",
		"percent":              "percentages",
		"percentage":           "percentages",
		"gcd":                  "gcd-lcm",
		"lcm":                  "gcd-lcm",
		"lcm-gcd":              "gcd-lcm",
		"greatest-common-divisor": "gcd-lcm",
		"least-common-multiple":   "gcd-lcm",
		"divisible":            "divisibility",
		"modular":              "modular-arithmetic",
		"coordinate-geometry":  "coordinates",
		"solid-geometry":       "3d-geometry",
		"three-dimensional":    "3d-geometry",
		"volume":               "3d-geometry",
		"graphing":             "tables-and-graphs",
		"graphs":               "tables-and-graphs",
		"charts":               "tables-and-graphs",
		"speed":                "rates",
		"chance":               "probability",
		"combinatorics":        "counting",
		"permutations":         "arrangements",
		"combinations":         "counting",
		"clocks":               "time",
		"average":              "averages",
		"mean-median-mode":     "statistics",
		"work-backwards":       "working-backwards",
		"guess-and-check":      "guess-check",
	})
}

func build(categories []Category, aliases map[string]string) *Vocabulary {
	v := &Vocabulary{
		categories: categories,
		members:    map[string]struct{}{},
		aliases:    aliases,
	}
	for _, c := range categories {
		for _, t := range c.Tags {
			if _, seen := v.members[t]; seen {
				continue
			}
			v.members[t] = struct{}{}
			v.flat = append(v.flat, t)
		}
	}
	return v
}

// Normalize lower-cases the candidate, collapses every run of
// non-alphanumeric characters to a single hyphen, and trims hyphens.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastHyphen := false
	for _, r := range strings.ToLower(s) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if alnum {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen && b.Len() > 0 {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// Resolve maps a free-text candidate onto its canonical tag. It never
// returns a string outside the vocabulary; ok reports whether a canonical
// entry was found.
func (v *Vocabulary) Resolve(candidate string) (string, bool) {
	n := Normalize(candidate)
	if n == "" {
		return "", false
	}
	for hop := 0; hop < maxAliasHops; hop++ {
		target, ok := v.aliases[n]
		if !ok {
			break
		}
		n = Normalize(target)
	}
	if v.Contains(n) {
		return n, true
	}
	if strings.HasSuffix(n, "s") {
		if singular := n[:len(n)-1]; v.Contains(singular) {
			return singular, true
		}
	} else if v.Contains(n + "s") {
		return n + "s", true
	}
	return "", false
}

// ScanText returns every canonical tag whose normalized form appears as a
// substring of the normalized text, in first-occurrence order, deduplicated.
func (v *Vocabulary) ScanText(text string) []string {
	n := Normalize(text)
	if n == "" {
		return nil
	}
	type hit struct {
		tag string
		pos int
	}
	var hits []hit
	for _, tag := range v.flat {
		if pos := strings.Index(n, tag); pos >= 0 {
			hits = append(hits, hit{tag: tag, pos: pos})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.tag)
	}
	return out
}

// Contains reports exact membership of an already-normalized tag.
func (v *Vocabulary) Contains(tag string) bool {
	_, ok := v.members[tag]
	return ok
}

// All returns the flattened vocabulary in category order.
func (v *Vocabulary) All() []string {
	return append([]string(nil), v.flat...)
}

// Categories returns the vocabulary grouped by category, as served by the
// tags endpoint.
func (v *Vocabulary) Categories() []Category {
	out := make([]Category, len(v.categories))
	for i, c := range v.categories {
		out[i] = Category{Name: c.Name, Tags: append([]string(nil), c.Tags...)}
	}
	return out
}
