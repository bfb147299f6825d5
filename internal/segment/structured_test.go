package segment

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"testing"
)

func contestHTML(items ...string) string {
	var b strings.Builder
	b.WriteString("<html><body><ol>")
	for _, it := range items {
		b.WriteString(it)
	}
	b.WriteString("</ol></body></html>")
	return b.String()
}

func plainItem(statement string, choices ...string) string {
	var b strings.Builder
	b.WriteString("<li><p>" + statement + "</p><ol>")
	for _, c := range choices {
		b.WriteString("<li>" + c + "</li>")
	}
	b.WriteString("</ol></li>")
	return b.String()
}

func TestDetect(t *testing.T) {
	structured := contestHTML(plainItem("What is 2+3?", "4", "5", "6", "7", "8"))
	if got := Detect(structured); got != StrategyStructured {
		t.Fatalf("got %s", got)
	}
	flat := "<html><body><p>1. What is 2+3? (A) 4 (B) 5 (C) 6 (D) 7 (E) 8</p></body></html>"
	if got := Detect(flat); got != StrategyLegacy {
		t.Fatalf("got %s", got)
	}
}

func TestSplitStructuredBasics(t *testing.T) {
	html := contestHTML(
		plainItem("What is 2+3?", "4", "5", "6", "7", "8"),
		plainItem("Which number is prime?", "4", "6", "7", "8", "9"),
	)
	segs, strategy, err := Split(context.Background(), html, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if strategy != StrategyStructured {
		t.Fatalf("strategy %s", strategy)
	}
	if len(segs) != 2 {
		t.Fatalf("got %d segments", len(segs))
	}
	if segs[0].Number != 1 || segs[1].Number != 2 {
		t.Fatalf("positional numbering broken: %d, %d", segs[0].Number, segs[1].Number)
	}
	if segs[0].Statement != "What is 2+3?" {
		t.Fatalf("statement %q", segs[0].Statement)
	}
	if len(segs[0].Choices) != ChoiceSlots || segs[0].Choices[1] != "5" {
		t.Fatalf("choices %v", segs[0].Choices)
	}
}

func TestSplitStructuredTwentyFiveItems(t *testing.T) {
	items := make([]string, 0, 25)
	for i := 1; i <= 25; i++ {
		items = append(items, plainItem(fmt.Sprintf("Problem number %d statement.", i), "1", "2", "3", "4", "5"))
	}
	segs, _, err := Split(context.Background(), contestHTML(items...), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(segs) != 25 {
		t.Fatalf("got %d segments, want 25", len(segs))
	}
	for i, s := range segs {
		if s.Number != i+1 {
			t.Fatalf("segment %d numbered %d", i, s.Number)
		}
		if Normalize(s.Statement) == "" {
			t.Fatalf("segment %d has empty statement after normalization", i+1)
		}
	}
}

func TestSplitStructuredPadsAndTruncatesChoices(t *testing.T) {
	html := contestHTML(
		plainItem("Short choice list.", "only", "two"),
		plainItem("Long choice list.", "1", "2", "3", "4", "5", "6", "7"),
	)
	segs, _, err := Split(context.Background(), html, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := segs[0].Choices; len(got) != 5 || got[2] != "" || got[4] != "" {
		t.Fatalf("padding broken: %v", got)
	}
	if got := segs[1].Choices; len(got) != 5 || got[4] != "5" {
		t.Fatalf("truncation broken: %v", got)
	}
}

func TestSplitStructuredPrefersLastNestedList(t *testing.T) {
	html := contestHTML(
		"<li><p>Pick the list.</p>" +
			"<ol><li>descriptive one</li><li>descriptive two</li></ol>" +
			"<ol><li>A1</li><li>A2</li><li>A3</li><li>A4</li><li>A5</li></ol></li>",
	)
	segs, _, err := Split(context.Background(), html, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if segs[0].Choices[0] != "A1" {
		t.Fatalf("expected choices from the last nested list, got %v", segs[0].Choices)
	}
}

func TestSplitStructuredStripsLongDescriptions(t *testing.T) {
	html := contestHTML(
		"<li><p>How many circles?<span id=\"longdesc-p1\">A diagram showing circles arranged in rows.</span></p>" +
			"<ol><li>one circle</li><li>two circles</li><li>three circles</li><li>four circles</li><li>eight circles</li></ol></li>",
	)
	segs, _, err := Split(context.Background(), html, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(segs[0].Statement, "diagram") {
		t.Fatalf("long description leaked into statement: %q", segs[0].Statement)
	}
	if segs[0].Statement != "How many circles?" {
		t.Fatalf("statement %q", segs[0].Statement)
	}
}

func TestSplitStructuredFallsBackToItemText(t *testing.T) {
	html := contestHTML("<li>No paragraphs here at all.</li>")
	segs, err := splitStructuredForTest(html)
	if err != nil {
		t.Fatal(err)
	}
	if Normalize(segs[0].Statement) != "No paragraphs here at all." {
		t.Fatalf("statement %q", segs[0].Statement)
	}
}

// splitStructuredForTest forces the structured strategy for documents the
// detector would route to the legacy scan.
func splitStructuredForTest(html string) ([]Segment, error) {
	return splitStructured(context.Background(), html, Options{})
}

func TestSplitStructuredKeepsAccentsAfterASCIIHead(t *testing.T) {
	// A long pure-ASCII prefix must not steer charset detection away
	// from the UTF-8 content that follows it.
	head := "<!-- " + strings.Repeat("boilerplate header padding ", 50) + "-->"
	html := "<html><body>" + head + "<ol>" +
		plainItem("Quel est le périmètre?", "8", "15", "16", "30", "32") +
		"</ol></body></html>"

	segs, strategy, err := Split(context.Background(), html, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if strategy != StrategyStructured {
		t.Fatalf("strategy %s", strategy)
	}
	if segs[0].Statement != "Quel est le périmètre?" {
		t.Fatalf("statement %q", segs[0].Statement)
	}
}

func imageChoiceHTML(alt string) string {
	payload := base64.StdEncoding.EncodeToString([]byte("not-a-real-png"))
	return contestHTML(
		"<li><p>Which figure comes next?</p>" +
			"<ol><li>square</li><li>circle</li>" +
			"<li><img src=\"data:image/png;base64," + payload + "\" alt=\"" + alt + "\"></li>" +
			"<li>star</li><li>cross</li></ol></li>",
	)
}

func TestImageOnlyChoiceUsesOCR(t *testing.T) {
	var sawBytes []byte
	ocr := func(_ context.Context, img []byte) string {
		sawBytes = img
		return "triangle"
	}
	segs, _, err := Split(context.Background(), imageChoiceHTML("a triangle shape"), Options{OCR: ocr})
	if err != nil {
		t.Fatal(err)
	}
	if segs[0].Choices[2] != "triangle" {
		t.Fatalf("choices %v", segs[0].Choices)
	}
	if string(sawBytes) != "not-a-real-png" {
		t.Fatalf("ocr saw %q", sawBytes)
	}
}

func TestImageOnlyChoiceFallsBackToAltText(t *testing.T) {
	// No OCR capability at all.
	segs, _, err := Split(context.Background(), imageChoiceHTML("a triangle shape"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if segs[0].Choices[2] != "a triangle shape" {
		t.Fatalf("choices %v", segs[0].Choices)
	}

	// OCR present but recognizing nothing.
	blank := func(context.Context, []byte) string { return "" }
	segs, _, err = Split(context.Background(), imageChoiceHTML("a triangle shape"), Options{OCR: blank})
	if err != nil {
		t.Fatal(err)
	}
	if segs[0].Choices[2] != "a triangle shape" {
		t.Fatalf("choices %v", segs[0].Choices)
	}
}

func TestInlineImagesPassThrough(t *testing.T) {
	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("img-bytes"))
	html := contestHTML(
		"<li><p>See the figure.</p><img src=\"" + payload + "\" alt=\"figure\">" +
			"<ol><li>1</li><li>2</li><li>3</li><li>4</li><li>5</li></ol></li>",
	)
	segs, _, err := Split(context.Background(), html, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(segs[0].Images) != 1 || segs[0].Images[0] != payload {
		t.Fatalf("images %v", segs[0].Images)
	}
}

func TestRemoteImagesFetchedAndEncoded(t *testing.T) {
	fetched := ""
	fetch := func(_ context.Context, url string) ([]byte, error) {
		fetched = url
		return []byte("\x89PNG\r\n\x1a\nrest"), nil
	}
	html := contestHTML(
		"<li><p>See the figure.</p><img src=\"/images/fig1.png\">" +
			"<ol><li>1</li><li>2</li><li>3</li><li>4</li><li>5</li></ol></li>",
	)
	segs, _, err := Split(context.Background(), html, Options{
		BaseURL:    "https://example.org/contest/2025.html",
		FetchImage: fetch,
	})
	if err != nil {
		t.Fatal(err)
	}
	if fetched != "https://example.org/images/fig1.png" {
		t.Fatalf("fetched %q", fetched)
	}
	if len(segs[0].Images) != 1 || !strings.HasPrefix(segs[0].Images[0], "data:image/png;base64,") {
		t.Fatalf("images %v", segs[0].Images)
	}
}
