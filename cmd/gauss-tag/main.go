package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gaolin1/math-olympic-question-search/internal/problem"
	"github.com/gaolin1/math-olympic-question-search/internal/tagging"
	"github.com/gaolin1/math-olympic-question-search/internal/vocab"
)

func main() {
	corpusFlag := flag.String("corpus", "data/corpus.json", "path to the corpus JSON file")
	batch := flag.Int("batch", 4, "concurrent classification calls")
	force := flag.Bool("force", false, "retag records that already carry tags")
	flag.Parse()

	var classifier tagging.Classifier
	if c, err := tagging.NewAnthropicClassifierFromEnv(); err != nil {
		log.Printf("classifier unavailable (%v), tagging with keyword heuristics only", err)
	} else {
		classifier = c
	}

	records, err := problem.Load(*corpusFlag)
	if err != nil {
		log.Fatal(err)
	}
	if len(records) == 0 {
		log.Fatalf("no records in %s, run gauss-scrape first", *corpusFlag)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tagger := tagging.NewTagger(classifier, vocab.Default(),
		tagging.WithBatchSize(*batch), tagging.WithForce(*force))

	log.Printf("tagging %d records (batch=%d, force=%v)", len(records), *batch, *force)
	stats := tagger.TagAll(ctx, records)
	log.Printf("tagged=%d heuristic=%d untagged=%d failed=%d skipped=%d",
		stats.Tagged, stats.Heuristic, stats.Untagged, stats.Failed, stats.Skipped)

	if err := problem.Save(*corpusFlag, records); err != nil {
		log.Fatal(err)
	}
	log.Printf("corpus saved at %s", *corpusFlag)
}
