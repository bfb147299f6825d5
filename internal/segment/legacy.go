package segment

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	problemHeadRe = regexp.MustCompile(`(?m)^\s*(\d{1,2})\.\s`)
	choiceMarkRe  = regexp.MustCompile(`\(([A-E])\)`)
)

// splitLegacy scans the flattened document text for "N. ..." problem
// spans and inline "(A) ... (E)" choice markers. Unlike the structured
// strategy, problem numbers come from the parsed digits; only 1..25 are
// accepted.
func splitLegacy(htmlStr string) []Segment {
	text := FlattenText(htmlStr)

	heads := problemHeadRe.FindAllStringSubmatchIndex(text, -1)
	byNumber := map[int]Segment{}
	for i, head := range heads {
		num, err := strconv.Atoi(text[head[2]:head[3]])
		if err != nil || num < 1 || num > 25 {
			continue
		}
		end := len(text)
		if i+1 < len(heads) {
			end = heads[i+1][0]
		}
		span := strings.TrimSpace(text[head[1]:end])
		statement, choices := splitChoices(span)
		byNumber[num] = Segment{
			Number:    num,
			Statement: statement,
			Choices:   padChoices(choices),
		}
	}

	nums := make([]int, 0, len(byNumber))
	for n := range byNumber {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	segs := make([]Segment, 0, len(nums))
	for _, n := range nums {
		segs = append(segs, byNumber[n])
	}
	return segs
}

// splitChoices separates a problem span into its statement and lettered
// choices. Without any "(A)" marker the whole span is the statement.
func splitChoices(span string) (string, []string) {
	marks := choiceMarkRe.FindAllStringSubmatchIndex(span, -1)
	if len(marks) == 0 {
		return span, nil
	}
	statement := strings.TrimSpace(span[:marks[0][0]])
	var choices []string
	for i, m := range marks {
		end := len(span)
		if i+1 < len(marks) {
			end = marks[i+1][0]
		}
		letter := span[m[2]:m[3]]
		body := strings.TrimSpace(span[m[1]:end])
		choices = append(choices, "("+letter+") "+body)
	}
	return statement, choices
}
