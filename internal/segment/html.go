package segment

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// detectCharset guesses the charset of raw HTML bytes, defaulting to utf-8.
func detectCharset(data []byte) string {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(data)
	if err != nil || result == nil {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}

// loadDocument parses HTML with charset detection and conversion, falling
// back to direct parsing when conversion is unavailable. NewReader takes a
// content type, not a bare charset name.
func loadDocument(htmlStr string) (*goquery.Document, error) {
	data := []byte(htmlStr)
	utf8Reader, err := charset.NewReader(bytes.NewReader(data), "text/html; charset="+detectCharset(data))
	if err != nil {
		return goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	}
	return goquery.NewDocumentFromReader(utf8Reader)
}

// FlattenText reduces an HTML document to its text content with one line
// per text node, the shape both the legacy segmenter and the answer-key
// matcher scan.
func FlattenText(htmlStr string) string {
	node, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return htmlStr
	}
	var lines []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				lines = append(lines, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)
	return strings.Join(lines, "\n")
}
