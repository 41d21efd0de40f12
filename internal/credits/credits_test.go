package credits

import (
	"testing"

	"github.com/melowntech/vtscore/internal/mapconfig"
)

func TestHitAccumulatesAndTracksMaxLod(t *testing.T) {
	a := New(2026)
	a.Hit(ScopeImagery, 1, 3)
	a.Hit(ScopeImagery, 1, 7)
	a.Hit(ScopeImagery, 1, 5)

	dict := map[int]mapconfig.Credit{1: {Notice: "Example"}}
	out := a.Resolve(dict)
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	if out[0].Hits != 3 {
		t.Errorf("Hits = %d, want 3", out[0].Hits)
	}
	if out[0].MaxLod != 7 {
		t.Errorf("MaxLod = %d, want 7", out[0].MaxLod)
	}
}

func TestResolveDropsIdsMissingFromDictionary(t *testing.T) {
	a := New(2026)
	a.Hit(ScopeImagery, 99, 0)

	out := a.Resolve(map[int]mapconfig.Credit{})
	if len(out) != 0 {
		t.Errorf("len(out) = %d, want 0 for an id absent from the dictionary", len(out))
	}
}

func TestResolveSortsByHitsDescending(t *testing.T) {
	a := New(2026)
	a.Hit(ScopeImagery, 1, 0)
	for i := 0; i < 5; i++ {
		a.Hit(ScopeData, 2, 0)
	}
	for i := 0; i < 3; i++ {
		a.Hit(ScopeImagery, 3, 0)
	}

	dict := map[int]mapconfig.Credit{1: {}, 2: {}, 3: {}}
	out := a.Resolve(dict)
	if len(out) != 3 {
		t.Fatalf("len(out) = %d, want 3", len(out))
	}
	for i := 1; i < len(out); i++ {
		if out[i-1].Hits < out[i].Hits {
			t.Errorf("out not sorted descending by hits: %+v", out)
		}
	}
	if out[0].ID != 2 {
		t.Errorf("out[0].ID = %d, want 2 (5 hits, the most)", out[0].ID)
	}
}

func TestSubstituteReplacesCopyAndYearTokens(t *testing.T) {
	a := New(2030)
	a.Hit(ScopeData, 1, 0)
	dict := map[int]mapconfig.Credit{1: {Notice: "{copy} {Y} Example Corp"}}

	out := a.Resolve(dict)
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	want := "© 2030 Example Corp"
	if out[0].Notice != want {
		t.Errorf("Notice = %q, want %q", out[0].Notice, want)
	}
}

func TestResetClearsAccumulatedHits(t *testing.T) {
	a := New(2026)
	a.Hit(ScopeImagery, 1, 0)
	a.Reset()

	out := a.Resolve(map[int]mapconfig.Credit{1: {}})
	if len(out) != 0 {
		t.Errorf("len(out) = %d, want 0 after Reset", len(out))
	}
}
