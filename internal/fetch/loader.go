package fetch

import (
	"context"
	"log"
)

// Loader serves document bodies cache-first. Fetched bodies are
// validated before they are cached so a bad fetch is retried on the
// next run instead of poisoning the cache.
type Loader struct {
	cache   *Cache
	fetcher Fetcher
	refresh bool
}

// NewLoader wires a cache to a fetcher. A nil cache always fetches;
// refresh bypasses cache reads but still writes.
func NewLoader(cache *Cache, fetcher Fetcher, refresh bool) *Loader {
	return &Loader{cache: cache, fetcher: fetcher, refresh: refresh}
}

// Contest returns one grade's contest HTML for a year.
func (l *Loader) Contest(ctx context.Context, year, grade int) (string, error) {
	return l.load(ctx, year, grade, KindContest, ContestURL(year, grade))
}

// Solutions returns the year's combined solutions HTML, cached under
// grade 0.
func (l *Loader) Solutions(ctx context.Context, year int) (string, error) {
	return l.load(ctx, year, 0, KindSolution, SolutionURL(year))
}

func (l *Loader) load(ctx context.Context, year, grade int, kind Kind, url string) (string, error) {
	if l.cache != nil && !l.refresh {
		body, ok, err := l.cache.Get(year, grade, kind)
		if err != nil {
			log.Printf("fetch: cache read %s: %v", url, err)
		} else if ok {
			return body, nil
		}
	}

	body, err := l.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	if err := ValidateDocument(url, body); err != nil {
		return "", err
	}
	if l.cache != nil {
		if err := l.cache.Put(year, grade, kind, url, body); err != nil {
			log.Printf("fetch: cache write %s: %v", url, err)
		}
	}
	return body, nil
}
