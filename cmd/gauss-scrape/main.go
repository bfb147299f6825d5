package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/gaolin1/math-olympic-question-search/internal/fetch"
	"github.com/gaolin1/math-olympic-question-search/internal/ocr"
	"github.com/gaolin1/math-olympic-question-search/internal/pipeline"
	"github.com/gaolin1/math-olympic-question-search/internal/problem"
	"github.com/gaolin1/math-olympic-question-search/internal/report"
	"github.com/gaolin1/math-olympic-question-search/internal/segment"
)

func main() {
	yearsFlag := flag.String("years", "", "contest year or range, e.g. 2023 or 2019-2023")
	corpusFlag := flag.String("corpus", "data/corpus.json", "path to the corpus JSON file")
	cacheFlag := flag.String("cache", "data/cache.db", "path to the HTML cache database, empty to disable")
	refresh := flag.Bool("refresh", false, "refetch documents even when cached")
	useOCR := flag.Bool("ocr", false, "run Cloud Vision OCR over image-only answer choices")
	reportFlag := flag.String("report", "", "write an HTML run report to this path")
	flag.Parse()

	years, err := parseYears(*yearsFlag)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var cache *fetch.Cache
	if *cacheFlag != "" {
		cache, err = fetch.OpenCache(*cacheFlag)
		if err != nil {
			log.Fatal(err)
		}
		defer cache.Close()
	}
	loader := fetch.NewLoader(cache, fetch.NewBrowserFetcher(), *refresh)

	opts := segment.Options{
		FetchImage: fetch.ImageFetcher(fetch.NewHTTPClient()),
	}
	if *useOCR {
		reader, err := ocr.NewVisionReader(ctx)
		if err != nil {
			log.Fatalf("vision reader: %v", err)
		}
		defer reader.Close()
		opts.OCR = ocr.AsSegmentOCR(reader)
	}

	corpus, err := problem.Load(*corpusFlag)
	if err != nil {
		log.Fatal(err)
	}

	p := pipeline.New(loader, opts)
	var lastRun report.Run
	for _, year := range years {
		log.Printf("scraping %d", year)
		res := p.ScrapeYear(ctx, year)
		corpus = problem.Merge(corpus, res.Records)
		lastRun = res.Run
		log.Printf("year %d: %d records, %d answers matched, %d warnings",
			year, res.Run.Records, res.Run.AnswersMatched, len(res.Run.Warnings))
		for _, w := range res.Run.Warnings {
			log.Printf("warning: %s", w)
		}
		if ctx.Err() != nil {
			log.Printf("interrupted, saving what we have")
			break
		}
	}

	if err := problem.Save(*corpusFlag, corpus); err != nil {
		log.Fatal(err)
	}
	log.Printf("corpus saved: %d records at %s", len(corpus), *corpusFlag)

	if *reportFlag != "" {
		html, err := report.RenderHTML(lastRun)
		if err != nil {
			log.Fatalf("render report: %v", err)
		}
		if err := os.WriteFile(*reportFlag, []byte(html), 0o644); err != nil {
			log.Fatalf("write report: %v", err)
		}
		log.Printf("report written to %s", *reportFlag)
	}
}

// parseYears accepts "2023" or "2019-2023" inclusive.
func parseYears(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("-years is required")
	}
	if start, end, ok := strings.Cut(s, "-"); ok {
		a, err := strconv.Atoi(strings.TrimSpace(start))
		if err != nil {
			return nil, fmt.Errorf("invalid year range %q", s)
		}
		b, err := strconv.Atoi(strings.TrimSpace(end))
		if err != nil || b < a {
			return nil, fmt.Errorf("invalid year range %q", s)
		}
		years := make([]int, 0, b-a+1)
		for y := a; y <= b; y++ {
			years = append(years, y)
		}
		return years, nil
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("invalid year %q", s)
	}
	return []int{y}, nil
}
