package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gaolin1/math-olympic-question-search/internal/problem"
	"github.com/gaolin1/math-olympic-question-search/internal/vocab"
)

func testCorpus() []problem.Record {
	mk := func(year, grade, n int, statement string, tags []string, answer string) problem.Record {
		r := problem.Record{
			ID:            problem.RecordID(year, grade, n),
			Source:        problem.Source,
			Grade:         grade,
			Year:          year,
			ProblemNumber: n,
			Statement:     statement,
			Choices:       []string{"(A) 1", "(B) 2", "(C) 3", "(D) 4", "(E) 5"},
			Images:        []string{},
			Tags:          tags,
			URL:           "https://example.org/contest",
		}
		if answer != "" {
			r.Answer = &answer
		}
		return r
	}
	return []problem.Record{
		mk(2022, 7, 1, "Fractions one.", []string{"fractions"}, "A"),
		mk(2023, 7, 2, "Fractions and angles.", []string{"fractions", "angles"}, "B"),
		mk(2023, 8, 3, "Angles only.", []string{"angles"}, "C"),
	}
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	return NewServer(testCorpus(), vocab.Default())
}

func doGet(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %s response: %v\n%s", path, err, rec.Body.String())
	}
	return rec, body
}

func problemIDs(t *testing.T, body map[string]any) []string {
	t.Helper()
	raw, ok := body["problems"].([]any)
	if !ok {
		t.Fatalf("no problems array in %v", body)
	}
	ids := make([]string, 0, len(raw))
	for _, p := range raw {
		m := p.(map[string]any)
		ids = append(ids, m["id"].(string))
	}
	return ids
}

func TestListProblemsUnfiltered(t *testing.T) {
	h := newTestServer(t)
	rec, body := doGet(t, h, "/api/problems")
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["count"].(float64) != 3 {
		t.Fatalf("count = %v", body["count"])
	}
	raw := body["problems"].([]any)
	first := raw[0].(map[string]any)
	if _, ok := first["answer"]; ok {
		t.Fatal("list view leaked the answer")
	}
	if _, ok := first["solution"]; ok {
		t.Fatal("list view leaked the solution")
	}
}

func TestListProblemsFilters(t *testing.T) {
	h := newTestServer(t)
	cases := []struct {
		name string
		path string
		want []string
	}{
		{"by grade", "/api/problems?grade=8", []string{"gauss-2023-g8-3"}},
		{"by year", "/api/problems?year=2022", []string{"gauss-2022-g7-1"}},
		{"tag intersection default", "/api/problems?tags=fractions,angles", []string{"gauss-2023-g7-2"}},
		{"tag union", "/api/problems?tags=fractions,angles&match=any", []string{"gauss-2022-g7-1", "gauss-2023-g7-2", "gauss-2023-g8-3"}},
		{"tag with alias", "/api/problems?tags=fraction", []string{"gauss-2022-g7-1", "gauss-2023-g7-2"}},
		{"tag and grade", "/api/problems?tags=angles&grade=7", []string{"gauss-2023-g7-2"}},
		{"empty params ignored", "/api/problems?tags=&grade=&year=", []string{"gauss-2022-g7-1", "gauss-2023-g7-2", "gauss-2023-g8-3"}},
		{"no matches", "/api/problems?year=1999", []string{}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec, body := doGet(t, h, c.path)
			if rec.Code != 200 {
				t.Fatalf("status = %d", rec.Code)
			}
			got := problemIDs(t, body)
			if len(got) != len(c.want) {
				t.Fatalf("ids = %v, want %v", got, c.want)
			}
			for i := range got {
				if got[i] != c.want[i] {
					t.Fatalf("ids = %v, want %v", got, c.want)
				}
			}
		})
	}
}

func TestListProblemsBadParams(t *testing.T) {
	h := newTestServer(t)
	for _, path := range []string{
		"/api/problems?tags=quantum-chromodynamics",
		"/api/problems?grade=seven",
		"/api/problems?match=some",
	} {
		rec, body := doGet(t, h, path)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s status = %d, want 400", path, rec.Code)
		}
		if body["error"] == nil {
			t.Errorf("%s carried no error message", path)
		}
	}
}

func TestGetProblem(t *testing.T) {
	h := newTestServer(t)
	rec, body := doGet(t, h, "/api/problems/gauss-2023-g7-2")
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["id"] != "gauss-2023-g7-2" {
		t.Fatalf("id = %v", body["id"])
	}
	if body["answer"] != "B" {
		t.Fatalf("detail view answer = %v", body["answer"])
	}
}

func TestGetProblemNotFound(t *testing.T) {
	h := newTestServer(t)
	rec, _ := doGet(t, h, "/api/problems/gauss-1999-g7-1")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestTags(t *testing.T) {
	h := newTestServer(t)
	rec, body := doGet(t, h, "/api/tags")
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	categories := body["categories"].([]any)
	if len(categories) == 0 {
		t.Fatal("no categories")
	}
	first := categories[0].(map[string]any)
	if first["name"] != "Number Theory" {
		t.Fatalf("first category = %v", first["name"])
	}
	flat := body["tags"].([]any)
	if len(flat) == 0 || flat[0] != "divisibility" {
		t.Fatalf("flattened tags = %v", flat)
	}
}

func TestHealth(t *testing.T) {
	h := newTestServer(t)
	rec, body := doGet(t, h, "/health")
	if rec.Code != 200 || body["status"] != "ok" {
		t.Fatalf("health = %d %v", rec.Code, body)
	}
	if body["problems"].(float64) != 3 {
		t.Fatalf("problems = %v", body["problems"])
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/problems", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}
