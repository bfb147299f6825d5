package problem

import (
	"github.com/gaolin1/math-olympic-question-search/internal/answerkey"
	"github.com/gaolin1/math-olympic-question-search/internal/segment"
)

// Assemble turns a grade's segments into records for one contest year.
// Segments outside the valid problem range are dropped.
func Assemble(segs []segment.Segment, year, grade int, sourceURL string) []Record {
	records := make([]Record, 0, len(segs))
	for _, s := range segs {
		if s.Number < MinNumber || s.Number > MaxNumber {
			continue
		}
		choices := append([]string(nil), s.Choices...)
		for len(choices) < ChoiceSlots {
			choices = append(choices, "")
		}
		choices = choices[:ChoiceSlots]
		records = append(records, Record{
			ID:            RecordID(year, grade, s.Number),
			Source:        Source,
			Grade:         grade,
			Year:          year,
			ProblemNumber: s.Number,
			Statement:     s.Statement,
			Choices:       choices,
			Images:        append([]string{}, s.Images...),
			Tags:          []string{},
			URL:           sourceURL,
		})
	}
	return records
}

// ApplyAnswers copies answer and solution text onto matching records and
// reports how many records were filled. Records without a key entry are
// left untouched.
func ApplyAnswers(records []Record, key map[answerkey.Key]answerkey.Entry) int {
	filled := 0
	for i := range records {
		e, ok := key[answerkey.Key{Grade: records[i].Grade, Number: records[i].ProblemNumber}]
		if !ok {
			continue
		}
		answer := e.Answer
		records[i].Answer = &answer
		if e.Solution != "" {
			solution := e.Solution
			records[i].Solution = &solution
		}
		filled++
	}
	return filled
}
