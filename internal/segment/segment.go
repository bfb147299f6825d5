// Package segment turns one contest document's HTML into ordered
// per-problem segments of statement, answer choices, and embedded images.
// Two strategies exist: a structured DOM walk for documents built from
// nested ordered lists, and a legacy flattened-text scan for everything
// else.
package segment

import "context"

// ChoiceSlots is the fixed number of answer choice slots per problem.
const ChoiceSlots = 5

// Segment is one extracted problem. Choices always holds exactly
// ChoiceSlots entries; empty strings mark missing choices. Images are
// self-contained data URI payloads in document order.
type Segment struct {
	Number    int
	Statement string
	Choices   []string
	Images    []string
}

// OCRFunc is the external image-recognition capability: best-effort text
// for decoded image bytes, or empty. Implementations must not panic past
// this boundary.
type OCRFunc func(ctx context.Context, image []byte) string

// ImageFetchFunc resolves a non-inline image reference (already made
// absolute) to raw bytes. A nil func or an error drops the payload.
type ImageFetchFunc func(ctx context.Context, url string) ([]byte, error)

// Strategy names a segmentation algorithm.
type Strategy string

const (
	StrategyStructured Strategy = "structured"
	StrategyLegacy     Strategy = "legacy"
)

// Options carries the external capabilities a segmentation run may use.
type Options struct {
	// BaseURL resolves relative image references.
	BaseURL string
	// OCR recovers text for image-only answer choices. Optional.
	OCR OCRFunc
	// FetchImage retrieves non-inline image payloads. Optional.
	FetchImage ImageFetchFunc
}

// Detect picks the strategy for a document: the nested-ordered-list
// pattern selects the structured segmenter, anything else falls back to
// the legacy text scan.
func Detect(html string) Strategy {
	if hasNestedOrderedLists(html) {
		return StrategyStructured
	}
	return StrategyLegacy
}

// Split runs the detected strategy over the document.
func Split(ctx context.Context, html string, opts Options) ([]Segment, Strategy, error) {
	switch Detect(html) {
	case StrategyStructured:
		segs, err := splitStructured(ctx, html, opts)
		return segs, StrategyStructured, err
	default:
		return splitLegacy(html), StrategyLegacy, nil
	}
}

func padChoices(choices []string) []string {
	if len(choices) > ChoiceSlots {
		choices = choices[:ChoiceSlots]
	}
	for len(choices) < ChoiceSlots {
		choices = append(choices, "")
	}
	return choices
}
