package vocab

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	for _, tc := range []struct {
		in, want string
	}{
		{"Divisibility ", "divisibility"},
		{"GCD / LCM", "gcd-lcm"},
		{"  3D Geometry!!", "3d-geometry"},
		{"working   backwards", "working-backwards"},
		{"---", ""},
		{"", ""},
	} {
		if got := Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResolveExactAndAlias(t *testing.T) {
	v := Default()

	if got, ok := v.Resolve("Divisibility "); !ok || got != "divisibility" {
		t.Fatalf("got %q ok=%v", got, ok)
	}
	if got, ok := v.Resolve("percent"); !ok || got != "percentages" {
		t.Fatalf("alias: got %q ok=%v", got, ok)
	}
	// Alias chain: pct -> percent -> percentages.
	if got, ok := v.Resolve("pct"); !ok || got != "percentages" {
		t.Fatalf("alias chain: got %q ok=%v", got, ok)
	}
}

func TestResolvePluralFallback(t *testing.T) {
	v := Default()
	if got, ok := v.Resolve("triangle"); !ok || got != "triangles" {
		t.Fatalf("singular input: got %q ok=%v", got, ok)
	}
	if got, ok := v.Resolve("areas"); !ok || got != "area" {
		t.Fatalf("plural input: got %q ok=%v", got, ok)
	}
}

func TestResolveIsTotal(t *testing.T) {
	v := Default()
	for _, in := range []string{"", "   ", "nonsense-tag", "quantum phys", "!!!"} {
		got, ok := v.Resolve(in)
		if ok {
			t.Fatalf("Resolve(%q) unexpectedly matched %q", in, got)
		}
		if got != "" {
			t.Fatalf("Resolve(%q) returned non-empty %q on miss", in, got)
		}
	}
	// Every successful resolution must be a vocabulary member.
	for _, in := range []string{"percent", "Triangle", "MEAN", "paths"} {
		got, ok := v.Resolve(in)
		if !ok {
			t.Fatalf("Resolve(%q) missed", in)
		}
		if !v.Contains(got) {
			t.Fatalf("Resolve(%q) = %q, not in vocabulary", in, got)
		}
	}
}

func TestScanText(t *testing.T) {
	v := Default()
	got := v.ScanText("This requires angles and percentages reasoning.")
	want := map[string]bool{"angles": true, "percentages": true}
	for _, tag := range got {
		if !want[tag] {
			t.Fatalf("unexpected tag %q in %v", tag, got)
		}
		delete(want, tag)
	}
	if len(want) != 0 {
		t.Fatalf("missing tags %v from %v", want, got)
	}
}

func TestScanTextOrderAndDedup(t *testing.T) {
	v := Default()
	got := v.ScanText("perimeter then area then perimeter again")
	if !reflect.DeepEqual(got, []string{"perimeter", "area"}) {
		t.Fatalf("got %v", got)
	}
}

func TestScanTextEmpty(t *testing.T) {
	v := Default()
	if got := v.ScanText("   "); len(got) != 0 {
		t.Fatalf("got %v", got)
	}
}
