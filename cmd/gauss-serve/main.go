package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gaolin1/math-olympic-question-search/internal/httpapi"
	"github.com/gaolin1/math-olympic-question-search/internal/problem"
	"github.com/gaolin1/math-olympic-question-search/internal/vocab"
)

func main() {
	corpusFlag := flag.String("corpus", "data/corpus.json", "path to the corpus JSON file")
	flag.Parse()

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	records, err := problem.Load(*corpusFlag)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("serving %d problems from %s", len(records), *corpusFlag)

	srv := &http.Server{
		Addr:              addr,
		Handler:           httpapi.NewServer(records, vocab.Default()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
