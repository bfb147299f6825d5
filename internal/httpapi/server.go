// Package httpapi serves the assembled corpus read-only: problem
// search by tag, grade, and year, plus the tag vocabulary itself.
package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gaolin1/math-olympic-question-search/internal/problem"
	"github.com/gaolin1/math-olympic-question-search/internal/vocab"
)

type Server struct {
	records []problem.Record
	byID    map[string]*problem.Record
	vocab   *vocab.Vocabulary
}

func NewServer(records []problem.Record, v *vocab.Vocabulary) http.Handler {
	s := &Server{
		records: records,
		byID:    make(map[string]*problem.Record, len(records)),
		vocab:   v,
	}
	for i := range records {
		s.byID[records[i].ID] = &records[i]
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/problems", s.handleListProblems)
	mux.HandleFunc("/api/problems/", s.handleGetProblem)
	mux.HandleFunc("/api/tags", s.handleTags)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, map[string]any{"error": fmt.Sprintf(format, args...)})
}

func methodOnly(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// listView is the search result shape: everything except the answer
// and solution, which stay behind the detail endpoint so a student can
// browse without spoilers.
type listView struct {
	ID            string   `json:"id"`
	Source        string   `json:"source"`
	Grade         int      `json:"grade"`
	Year          int      `json:"year"`
	ProblemNumber int      `json:"problem_number"`
	Statement     string   `json:"statement"`
	Choices       []string `json:"choices"`
	Images        []string `json:"images"`
	Tags          []string `json:"tags"`
	URL           string   `json:"url"`
}

func toListView(r *problem.Record) listView {
	return listView{
		ID:            r.ID,
		Source:        r.Source,
		Grade:         r.Grade,
		Year:          r.Year,
		ProblemNumber: r.ProblemNumber,
		Statement:     r.Statement,
		Choices:       r.Choices,
		Images:        r.Images,
		Tags:          r.Tags,
		URL:           r.URL,
	}
}

type problemFilter struct {
	tags     []string
	grade    int
	year     int
	matchAny bool
}

func (s *Server) parseFilter(r *http.Request) (problemFilter, error) {
	q := r.URL.Query()
	f := problemFilter{}

	for _, raw := range strings.Split(q.Get("tags"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		resolved, ok := s.vocab.Resolve(raw)
		if !ok {
			return f, fmt.Errorf("unknown tag %q", raw)
		}
		f.tags = append(f.tags, resolved)
	}

	for _, p := range []struct {
		name string
		dst  *int
	}{{"grade", &f.grade}, {"year", &f.year}} {
		if raw := strings.TrimSpace(q.Get(p.name)); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil {
				return f, fmt.Errorf("invalid %s %q", p.name, raw)
			}
			*p.dst = v
		}
	}

	switch q.Get("match") {
	case "", "all":
	case "any":
		f.matchAny = true
	default:
		return f, fmt.Errorf("invalid match %q, want all or any", q.Get("match"))
	}
	return f, nil
}

func (f problemFilter) matches(r *problem.Record) bool {
	if f.grade != 0 && r.Grade != f.grade {
		return false
	}
	if f.year != 0 && r.Year != f.year {
		return false
	}
	if len(f.tags) == 0 {
		return true
	}
	have := make(map[string]bool, len(r.Tags))
	for _, t := range r.Tags {
		have[t] = true
	}
	if f.matchAny {
		for _, t := range f.tags {
			if have[t] {
				return true
			}
		}
		return false
	}
	for _, t := range f.tags {
		if !have[t] {
			return false
		}
	}
	return true
}

func (s *Server) handleListProblems(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	filter, err := s.parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%s", err)
		return
	}

	out := []listView{}
	for i := range s.records {
		if filter.matches(&s.records[i]) {
			out = append(out, toListView(&s.records[i]))
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(out),
		"problems": out,
	})
}

func (s *Server) handleGetProblem(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/problems/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "problem not found")
		return
	}
	rec, ok := s.byID[id]
	if !ok {
		writeError(w, http.StatusNotFound, "problem %s not found", id)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	categories := s.vocab.Categories()
	out := make([]map[string]any, 0, len(categories))
	for _, c := range categories {
		out = append(out, map[string]any{"name": c.Name, "tags": c.Tags})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"categories": out,
		"tags":       s.vocab.All(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"problems": len(s.records),
	})
}
