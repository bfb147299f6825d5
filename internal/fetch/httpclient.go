package fetch

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/gaolin1/math-olympic-question-search/internal/segment"
)

// maxImageBytes caps embedded figure downloads; contest figures are
// small line drawings.
const maxImageBytes = 4 << 20

// NewHTTPClient builds the retrying client used for asset downloads.
func NewHTTPClient() *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = 3
	c.RetryWaitMin = 500 * time.Millisecond
	c.RetryWaitMax = 5 * time.Second
	c.HTTPClient.Timeout = 30 * time.Second
	c.Logger = nil
	return c
}

// ImageFetcher adapts the retrying client to the segmenter's image
// download callback.
func ImageFetcher(c *retryablehttp.Client) segment.ImageFetchFunc {
	return func(ctx context.Context, url string) ([]byte, error) {
		req, err := retryablehttp.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return nil, fmt.Errorf("build image request: %w", err)
		}
		resp, err := c.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch image %s: %w", url, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != 200 {
			return nil, fmt.Errorf("fetch image %s: status %d", url, resp.StatusCode)
		}
		data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
		if err != nil {
			return nil, fmt.Errorf("read image %s: %w", url, err)
		}
		return data, nil
	}
}
