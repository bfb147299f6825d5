// Package pipeline drives one scrape run end to end: fetch each
// grade's contest, segment it into problems, attach the year's answer
// key, and merge the result into the corpus. Units fail independently;
// a missing grade 8 document still yields grade 7 records.
package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/gaolin1/math-olympic-question-search/internal/answerkey"
	"github.com/gaolin1/math-olympic-question-search/internal/fetch"
	"github.com/gaolin1/math-olympic-question-search/internal/problem"
	"github.com/gaolin1/math-olympic-question-search/internal/report"
	"github.com/gaolin1/math-olympic-question-search/internal/segment"
)

var grades = []int{7, 8}

// DocumentLoader is the slice of fetch.Loader the pipeline needs.
type DocumentLoader interface {
	Contest(ctx context.Context, year, grade int) (string, error)
	Solutions(ctx context.Context, year int) (string, error)
}

type Pipeline struct {
	loader  DocumentLoader
	segOpts segment.Options
}

func New(loader DocumentLoader, segOpts segment.Options) *Pipeline {
	return &Pipeline{loader: loader, segOpts: segOpts}
}

type Result struct {
	Records []problem.Record
	Run     report.Run
}

// ScrapeYear builds records for one contest year. The returned records
// are already normalized and answer-matched where the solutions
// document allowed it.
func (p *Pipeline) ScrapeYear(ctx context.Context, year int) Result {
	run := report.Run{Year: year}
	var records []problem.Record

	for _, grade := range grades {
		recs, status := p.scrapeGrade(ctx, year, grade)
		run.Units = append(run.Units, status)
		if len(recs) != problem.MaxNumber {
			run.Warnings = append(run.Warnings,
				fmt.Sprintf("grade %d yielded %d problems, expected %d", grade, len(recs), problem.MaxNumber))
		}
		records = append(records, recs...)
	}

	matched := p.applySolutions(ctx, year, records, &run)
	run.Records = len(records)
	run.AnswersMatched = matched
	run.TagCounts = tagCounts(records)

	return Result{Records: records, Run: run}
}

func (p *Pipeline) scrapeGrade(ctx context.Context, year, grade int) ([]problem.Record, report.UnitStatus) {
	label := fmt.Sprintf("grade %d contest", grade)
	url := fetch.ContestURL(year, grade)

	html, err := p.loader.Contest(ctx, year, grade)
	if err != nil {
		log.Printf("pipeline: %s %d: %v", label, year, err)
		return nil, report.UnitStatus{Label: label, Detail: err.Error()}
	}

	opts := p.segOpts
	opts.BaseURL = url
	segs, strategy, err := segment.Split(ctx, html, opts)
	if err != nil {
		log.Printf("pipeline: segment %s %d: %v", label, year, err)
		return nil, report.UnitStatus{Label: label, Detail: err.Error()}
	}
	normalizeSegments(segs)

	recs := problem.Assemble(segs, year, grade, url)
	return recs, report.UnitStatus{
		Label:  label,
		OK:     true,
		Detail: fmt.Sprintf("%d problems (%s)", len(recs), strategy),
	}
}

func (p *Pipeline) applySolutions(ctx context.Context, year int, records []problem.Record, run *report.Run) int {
	html, err := p.loader.Solutions(ctx, year)
	if err != nil {
		log.Printf("pipeline: solutions %d: %v", year, err)
		run.Units = append(run.Units, report.UnitStatus{Label: "solutions", Detail: err.Error()})
		return 0
	}

	key := answerkey.Parse(html)
	matched := problem.ApplyAnswers(records, key)
	run.Units = append(run.Units, report.UnitStatus{
		Label:  "solutions",
		OK:     true,
		Detail: fmt.Sprintf("%d answers", len(key)),
	})
	if matched < len(records) {
		run.Warnings = append(run.Warnings,
			fmt.Sprintf("answer key matched %d of %d problems", matched, len(records)))
	}
	return matched
}

func normalizeSegments(segs []segment.Segment) {
	for i := range segs {
		segs[i].Statement = segment.Normalize(segs[i].Statement)
		for j := range segs[i].Choices {
			segs[i].Choices[j] = segment.Normalize(segs[i].Choices[j])
		}
	}
}

func tagCounts(records []problem.Record) map[string]int {
	counts := map[string]int{}
	for _, r := range records {
		for _, tag := range r.Tags {
			counts[tag]++
		}
	}
	if len(counts) == 0 {
		return nil
	}
	return counts
}
