// Package fetch retrieves contest documents from the CEMC site and
// caches the raw HTML locally so re-runs never hammer the origin.
package fetch

import "fmt"

const documentBase = "https://cemc.uwaterloo.ca/sites/default/files/documents"

type Kind string

const (
	KindContest  Kind = "contest"
	KindSolution Kind = "solution"
)

// ContestURL points at one grade's contest document for a year.
func ContestURL(year, grade int) string {
	return fmt.Sprintf("%s/%d/%dGauss%dContest.html", documentBase, year, year, grade)
}

// SolutionURL points at the combined solutions document for a year.
// Both grades share one file.
func SolutionURL(year int) string {
	return fmt.Sprintf("%s/%d/%dGaussSolution.html", documentBase, year, year)
}

// DocumentError marks a fetched document that is not usable contest
// content, distinct from a transport failure.
type DocumentError struct {
	URL    string
	Reason string
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("document %s unusable: %s", e.URL, e.Reason)
}
