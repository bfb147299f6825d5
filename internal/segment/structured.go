package segment

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Hidden accessibility nodes whose text pollutes both statements and
// choices; removed before any extraction.
const longDescSelector = "[id^='longdesc'], [id^='long-desc'], .longdesc"

func hasNestedOrderedLists(htmlStr string) bool {
	doc, err := loadDocument(htmlStr)
	if err != nil {
		return false
	}
	return doc.Find("ol li ol li").Length() > 0
}

// splitStructured walks the document's top-level ordered lists. Each
// direct list item is one problem: statement from its direct child
// paragraphs, choices from its last nested ordered list, images from
// anywhere inside it. Numbering is 1-based document order; the markup's
// visible labels are not trusted.
func splitStructured(ctx context.Context, htmlStr string, opts Options) ([]Segment, error) {
	doc, err := loadDocument(htmlStr)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	doc.Find(longDescSelector).Remove()

	resolver := newImageResolver(opts)

	var segs []Segment
	doc.Find("ol").FilterFunction(func(_ int, ol *goquery.Selection) bool {
		return ol.ParentsFiltered("ol").Length() == 0
	}).Each(func(_ int, ol *goquery.Selection) {
		ol.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
			seg := extractItem(ctx, li, resolver, opts.OCR)
			seg.Number = len(segs) + 1
			segs = append(segs, seg)
		})
	})
	return segs, nil
}

func extractItem(ctx context.Context, li *goquery.Selection, resolver *imageResolver, ocr OCRFunc) Segment {
	seg := Segment{}

	choiceList := li.Find("ol").Last()

	if paras := li.ChildrenFiltered("p"); paras.Length() > 0 {
		var parts []string
		paras.Each(func(_ int, p *goquery.Selection) {
			if t := strings.TrimSpace(p.Text()); t != "" {
				parts = append(parts, t)
			}
		})
		seg.Statement = strings.Join(parts, " ")
	} else {
		seg.Statement = strings.TrimSpace(li.Text())
	}

	if choiceList.Length() > 0 {
		choiceList.ChildrenFiltered("li").Each(func(_ int, cli *goquery.Selection) {
			seg.Choices = append(seg.Choices, extractChoice(ctx, cli, resolver, ocr))
		})
	}
	seg.Choices = padChoices(seg.Choices)

	li.Find("img").Each(func(_ int, img *goquery.Selection) {
		if payload := resolver.resolve(ctx, img.AttrOr("src", "")); payload != "" {
			seg.Images = append(seg.Images, payload)
		}
	})
	return seg
}

// extractChoice returns the choice's text, falling back to OCR over its
// image and then to the image's alt text when the item carries no text of
// its own.
func extractChoice(ctx context.Context, cli *goquery.Selection, resolver *imageResolver, ocr OCRFunc) string {
	if t := strings.TrimSpace(cli.Text()); t != "" {
		return t
	}
	img := cli.Find("img").First()
	if img.Length() == 0 {
		return ""
	}
	if ocr != nil {
		if raw := resolver.fetchBytes(ctx, img.AttrOr("src", "")); len(raw) > 0 {
			if t := strings.TrimSpace(ocr(ctx, raw)); t != "" {
				return t
			}
		}
	}
	return strings.TrimSpace(img.AttrOr("alt", ""))
}
