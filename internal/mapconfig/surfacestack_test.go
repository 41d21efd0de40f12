package mapconfig

import "testing"

func surfaces(ids ...string) []SurfaceInfo {
	out := make([]SurfaceInfo, len(ids))
	for i, id := range ids {
		out[i] = SurfaceInfo{Name: []string{id}}
	}
	return out
}

func TestGenerateSurfaceStackPlainOrderAndColors(t *testing.T) {
	surf := surfaces("base", "overlay")
	stack := GenerateSurfaceStack(surf, nil, []string{"base", "overlay"})

	if len(stack) != 2 {
		t.Fatalf("len(stack) = %d, want 2", len(stack))
	}
	// Declaration order is reversed so the first-declared surface ends up
	// on top (rendered last), matching generateSurfaceStack's sort+reverse.
	if stack[0].Surface.Name[0] != "overlay" || stack[1].Surface.Name[0] != "base" {
		t.Fatalf("stack order = %v, want [overlay base]", stack)
	}
	if stack[0].Color == stack[1].Color {
		t.Error("expected distinct HSV-derived colors per stack entry")
	}
}

func TestGenerateSurfaceStackDropsSurfacesNotInView(t *testing.T) {
	surf := surfaces("base", "hidden", "overlay")
	stack := GenerateSurfaceStack(surf, nil, []string{"base", "overlay"})
	for _, it := range stack {
		if it.Surface.Name[0] == "hidden" {
			t.Fatalf("surface outside the view set should be dropped, got %v", stack)
		}
	}
	if len(stack) != 2 {
		t.Fatalf("len(stack) = %d, want 2", len(stack))
	}
}

func TestGenerateSurfaceStackPlacesActiveGlueBeforeOwner(t *testing.T) {
	surf := surfaces("a", "b")
	glues := []Glue{
		{ID: []string{"a", "b"}, Surface: SurfaceInfo{Name: []string{"a", "b"}}},
	}
	stack := GenerateSurfaceStack(surf, glues, []string{"a", "b"})

	// Declaration order reversed: tileset "b" is processed first (glue
	// belongs to it as owner), then tileset "a".
	foundGlue, foundB := false, false
	for _, it := range stack {
		if it.Surface.IsGlue() && !it.Alien {
			foundGlue = true
			if foundB {
				t.Error("glue must precede its owning tileset in the stack")
			}
		}
		if !it.Surface.IsGlue() && it.Surface.Name[0] == "b" {
			foundB = true
		}
	}
	if !foundGlue {
		t.Fatal("expected the active glue to appear in the stack")
	}
}

func TestGenerateSurfaceStackInactiveGlueOmitted(t *testing.T) {
	surf := surfaces("a", "b")
	glues := []Glue{
		{ID: []string{"a", "b"}, Surface: SurfaceInfo{Name: []string{"a", "b"}}},
	}
	// "b" (the glue's owner) is not in view, so the glue cannot be active.
	stack := GenerateSurfaceStack(surf, glues, []string{"a"})
	for _, it := range stack {
		if it.Surface.IsGlue() {
			t.Fatalf("glue should be inactive when its owner is out of view, got %v", stack)
		}
	}
}

func TestGenerateSurfaceStackAlienInsertedBeforeConstituent(t *testing.T) {
	surf := surfaces("a", "b")
	glues := []Glue{
		{ID: []string{"a", "b"}, Surface: SurfaceInfo{Name: []string{"a", "b"}}},
	}
	stack := GenerateSurfaceStack(surf, glues, []string{"a", "b"})

	alienIdx, constituentIdx := -1, -1
	for i, it := range stack {
		if it.Alien {
			alienIdx = i
		}
		if !it.Surface.IsGlue() && !it.Alien && it.Surface.Name[0] == "a" {
			constituentIdx = i
		}
	}
	if alienIdx < 0 {
		t.Fatal("expected an alien entry for the glue's dropped-last-element constituent path")
	}
	if constituentIdx < 0 || alienIdx >= constituentIdx {
		t.Errorf("alien entry (idx %d) must precede its constituent surface (idx %d)", alienIdx, constituentIdx)
	}
	if stack[alienIdx].Color == ([3]float32{}) {
		t.Error("alien color must be computed, not zero-valued")
	}
}

func TestHsvRoundTrip(t *testing.T) {
	tests := []struct{ h, s, v float32 }{
		{0, 1, 1}, {0.3, 0.5, 0.8}, {0.99, 1, 0.2},
	}
	for _, tt := range tests {
		rgb := hsvToRGB(tt.h, tt.s, tt.v)
		back := rgbToHSV(rgb)
		if diff := back[2] - tt.v; diff > 1e-4 || diff < -1e-4 {
			t.Errorf("hsv(%v,%v,%v) -> rgb -> hsv: v = %v, want %v", tt.h, tt.s, tt.v, back[2], tt.v)
		}
	}
}
