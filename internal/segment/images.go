package segment

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"
)

type imageResolver struct {
	base  *url.URL
	fetch ImageFetchFunc
}

func newImageResolver(opts Options) *imageResolver {
	r := &imageResolver{fetch: opts.FetchImage}
	if opts.BaseURL != "" {
		if u, err := url.Parse(opts.BaseURL); err == nil {
			r.base = u
		}
	}
	return r
}

// resolve turns an image reference into a self-contained data URI.
// Already-inline payloads pass through; remote references are made
// absolute, fetched, and encoded. Empty on any failure.
func (r *imageResolver) resolve(ctx context.Context, src string) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	if strings.HasPrefix(src, "data:") {
		return src
	}
	raw := r.fetchBytes(ctx, src)
	if len(raw) == 0 {
		return ""
	}
	mime := http.DetectContentType(raw)
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(raw)
}

// fetchBytes returns the raw bytes behind an image reference, decoding
// inline payloads and fetching remote ones.
func (r *imageResolver) fetchBytes(ctx context.Context, src string) []byte {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil
	}
	if strings.HasPrefix(src, "data:") {
		return decodeDataURI(src)
	}
	if r.fetch == nil {
		return nil
	}
	abs := src
	if r.base != nil {
		if ref, err := url.Parse(src); err == nil {
			abs = r.base.ResolveReference(ref).String()
		}
	}
	raw, err := r.fetch(ctx, abs)
	if err != nil {
		return nil
	}
	return raw
}

func decodeDataURI(uri string) []byte {
	i := strings.Index(uri, ",")
	if i < 0 {
		return nil
	}
	meta, payload := uri[:i], uri[i+1:]
	if !strings.Contains(meta, ";base64") {
		if unescaped, err := url.QueryUnescape(payload); err == nil {
			return []byte(unescaped)
		}
		return []byte(payload)
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil
	}
	return raw
}
