// Package ocr extracts text from contest images, used for answer
// choices that are pictures instead of text. OCR is best effort
// throughout; every failure degrades to an empty string so a single bad
// image never fails a scrape.
package ocr

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"

	"github.com/gaolin1/math-olympic-question-search/internal/segment"
)

type Reader interface {
	ReadImage(ctx context.Context, img []byte) (string, error)
	Close() error
}

type annotator interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
	Close() error
}

type VisionReader struct {
	client  annotator
	timeout time.Duration
}

// NewVisionReader builds a Google Cloud Vision backed reader.
// Credentials come from the ambient environment.
func NewVisionReader(ctx context.Context) (*VisionReader, error) {
	client, err := vision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return &VisionReader{client: client, timeout: 30 * time.Second}, nil
}

func (v *VisionReader) Close() error {
	if v == nil || v.client == nil {
		return nil
	}
	return v.client.Close()
}

// ReadImage runs document text detection over one image and returns the
// collapsed annotation text. An empty image or empty annotation is an
// empty string, not an error.
func (v *VisionReader) ReadImage(ctx context.Context, img []byte) (string, error) {
	if len(img) == 0 {
		return "", nil
	}
	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}

	resp, err := v.client.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image:    &visionpb.Image{Content: img},
			Features: []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("vision BatchAnnotateImages: %w", err)
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return "", nil
	}
	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return "", fmt.Errorf("vision annotate error: %s", r0.Error.Message)
	}
	if r0.FullTextAnnotation == nil {
		return "", nil
	}
	return collapseWhitespace(r0.FullTextAnnotation.Text), nil
}

// AsSegmentOCR adapts a Reader to the segmenter's callback shape,
// swallowing errors into empty output.
func AsSegmentOCR(r Reader) segment.OCRFunc {
	return func(ctx context.Context, img []byte) string {
		text, err := r.ReadImage(ctx, img)
		if err != nil {
			log.Printf("ocr: read image: %v", err)
			return ""
		}
		return text
	}
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
