package tileid

import "testing"

func TestChildParentRoundTrip(t *testing.T) {
	tests := []struct {
		id    ID
		index int
	}{
		{ID{0, 0, 0}, 0},
		{ID{5, 3, 7}, 3},
		{ID{12, 100, 200}, 2},
	}
	for _, tt := range tests {
		child := tt.id.Child(tt.index)
		if got := child.Parent(); got != tt.id {
			t.Errorf("Child(%d).Parent() = %v, want %v", tt.index, got, tt.id)
		}
		if got := child.ChildIndex(); got != tt.index {
			t.Errorf("ChildIndex() = %d, want %d", got, tt.index)
		}
	}
}

func TestChildrenCoverFourQuadrants(t *testing.T) {
	id := ID{3, 2, 2}
	children := id.Children()
	seen := map[ID]bool{}
	for i, c := range children {
		if c.Lod != id.Lod+1 {
			t.Fatalf("child %d lod = %d, want %d", i, c.Lod, id.Lod+1)
		}
		if seen[c] {
			t.Fatalf("child %d duplicate: %v", i, c)
		}
		seen[c] = true
		if c.Parent() != id {
			t.Fatalf("child %d parent = %v, want %v", i, c.Parent(), id)
		}
	}
}

func TestClampedLod(t *testing.T) {
	tests := []struct {
		lod  uint32
		want int
	}{
		{0, 0},
		{30, 30},
		{31, 30},
		{1000, 30},
	}
	for _, tt := range tests {
		id := ID{Lod: tt.lod}
		if got := id.ClampedLod(); got != tt.want {
			t.Errorf("ID{Lod:%d}.ClampedLod() = %d, want %d", tt.lod, got, tt.want)
		}
	}
}

func TestNodeInfoChildExtentsPartitionParent(t *testing.T) {
	n := NodeInfo{ID: Root, Extents: Extent2{0, 0, 100, 100}}
	children := n.ChildExtents()
	var area float64
	for _, c := range children {
		area += (c.MaxX - c.MinX) * (c.MaxY - c.MinY)
	}
	parentArea := (n.Extents.MaxX - n.Extents.MinX) * (n.Extents.MaxY - n.Extents.MinY)
	if area != parentArea {
		t.Errorf("sum of child areas = %v, want %v", area, parentArea)
	}
}

func TestRootString(t *testing.T) {
	if Root.String() != "0/0/0" {
		t.Errorf("Root.String() = %q, want %q", Root.String(), "0/0/0")
	}
}

func TestExpandTemplateSubstitutesAllTokens(t *testing.T) {
	id := ID{Lod: 12, X: 34, Y: 56}
	got := ExpandTemplate("tiles/{lod}/{x}-{y}.bin", id)
	want := "tiles/12/34-56.bin"
	if got != want {
		t.Errorf("ExpandTemplate = %q, want %q", got, want)
	}
}

func TestFromLonLatRoundTripsThroughMaptileBounds(t *testing.T) {
	id := FromLonLat(10, 45, 6)
	minLon, minLat, maxLon, maxLat := id.MaptileBounds()
	if !(10 >= minLon && 10 <= maxLon && 45 >= minLat && 45 <= maxLat) {
		t.Errorf("FromLonLat(10,45,6) = %v, whose bounds [%v,%v]-[%v,%v] don't contain the input point",
			id, minLon, minLat, maxLon, maxLat)
	}
}

func TestExpandTemplateIgnoresMissingTokens(t *testing.T) {
	got := ExpandTemplate("static/path.bin", ID{Lod: 1, X: 2, Y: 3})
	if got != "static/path.bin" {
		t.Errorf("ExpandTemplate = %q, want unchanged template", got)
	}
}
