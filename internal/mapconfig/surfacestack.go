package mapconfig

import "math"

// SurfaceStackItem is one ordered entry of the resolved surface stack (spec
// §3: "order defines compositing precedence; glues must precede their
// constituent surfaces; each stack entry has a unique HSV-derived debug
// color").
type SurfaceStackItem struct {
	Surface SurfaceInfo
	Color   [3]float32 // RGB, each in [0,1]
	Alien   bool
}

// tilesetGlues is the per-tileset working structure generateSurfaceStack
// builds before flattening: the tileset itself plus the glues that are
// active for it, in surface-declaration order (mirrors original_source
// resourceMapConfig.cpp's vtslibs::vts::TileSetGlues).
type tilesetGlues struct {
	tilesetID string
	glues     []Glue
}

// GenerateSurfaceStack resolves the view's surface list plus the available
// glues into an ordered, colorized SurfaceStackItem list, grounded directly
// on MapConfig::generateSurfaceStack (original_source
// resourceMapConfig.cpp). The glueOrder() tiebreak from vts-libs (an
// external dependency outside this pack) is not reproduced; glues already
// attached to the same tileset keep their declaration order, which is
// sufficient since at most one glue combination is active per tileset in
// the supported configurations (see DESIGN.md).
func GenerateSurfaceStack(surfaces []SurfaceInfo, glues []Glue, viewSurfaceIDs []string) []SurfaceStackItem {
	inView := make(map[string]bool, len(viewSurfaceIDs))
	for _, id := range viewSurfaceIDs {
		inView[id] = true
	}

	byID := make(map[string]SurfaceInfo, len(surfaces))
	for _, s := range surfaces {
		if len(s.Name) == 1 {
			byID[s.Name[0]] = s
		}
	}

	// Build one tilesetGlues entry per viewed surface, preserving the
	// surface declaration order from mapconfig (surfaces slice order).
	var order []string
	for _, s := range surfaces {
		if len(s.Name) != 1 {
			continue
		}
		id := s.Name[0]
		if inView[id] {
			order = append(order, id)
		}
	}

	lst := make([]tilesetGlues, 0, len(order))
	for _, id := range order {
		tg := tilesetGlues{tilesetID: id}
		for _, g := range glues {
			if g.active(id, inView) {
				tg.glues = append(tg.glues, g)
			}
		}
		lst = append(lst, tg)
	}

	// Reverse: later-declared surfaces render first (bottom of the stack),
	// so the first-declared surface ends up on top.
	for i, j := 0, len(lst)-1; i < j; i, j = i+1, j-1 {
		lst[i], lst[j] = lst[j], lst[i]
	}

	var stack []SurfaceStackItem
	for _, ts := range lst {
		for _, g := range ts.glues {
			stack = append(stack, SurfaceStackItem{Surface: g.Surface})
		}
		if s, ok := byID[ts.tilesetID]; ok {
			stack = append(stack, SurfaceStackItem{Surface: s})
		}
	}

	colorizeStack(stack)
	stack = insertAlienEntries(stack)
	return stack
}

// colorizeStack assigns each entry a unique HSV-derived color by its
// position in the stack (H = position/len, S=V=1), matching
// generateSurfaceStack's colorization pass.
func colorizeStack(stack []SurfaceStackItem) {
	n := len(stack)
	if n == 0 {
		return
	}
	for i := range stack {
		h := float32(i) / float32(n)
		stack[i].Color = hsvToRGB(h, 1, 1)
	}
}

// insertAlienEntries inserts a halved-brightness "alien" copy of each glue
// entry immediately before the plain rendering of its penultimate
// constituent path, so that surface can also render as a non-owning member
// of the glue (spec §3 MetaNode "alien flag"; original_source's
// "generate alien surface stack positions" pass).
func insertAlienEntries(stack []SurfaceStackItem) []SurfaceStackItem {
	type pending struct {
		at   int // insert before this index in the *original* stack
		item SurfaceStackItem
	}
	keyOf := func(s SurfaceInfo) string { return s.Key() }

	var inserts []pending
	for _, it := range stack {
		if !it.Surface.IsGlue() {
			continue
		}
		n2 := it.Surface.Name[:len(it.Surface.Name)-1]
		want := SurfaceInfo{Name: n2}.Key()
		for j, jt := range stack {
			if keyOf(jt.Surface) == want {
				alien := it
				alien.Alien = true
				c := rgbToHSV(alien.Color)
				c[2] *= 0.5
				alien.Color = hsvToRGB(c[0], c[1], c[2])
				inserts = append(inserts, pending{at: j, item: alien})
				break
			}
		}
	}
	if len(inserts) == 0 {
		return stack
	}

	out := make([]SurfaceStackItem, 0, len(stack)+len(inserts))
	insertsAt := make(map[int][]SurfaceStackItem)
	for _, p := range inserts {
		insertsAt[p.at] = append(insertsAt[p.at], p.item)
	}
	for i, it := range stack {
		out = append(out, insertsAt[i]...)
		out = append(out, it)
	}
	return out
}

// hsvToRGB converts HSV (each in [0,1]) to RGB (each in [0,1]), grounded on
// the original's convertHsvToRgb used for surface debug colors.
func hsvToRGB(h, s, v float32) [3]float32 {
	if s <= 0 {
		return [3]float32{v, v, v}
	}
	h = float32(math.Mod(float64(h), 1.0)) * 6
	i := int(h)
	f := h - float32(i)
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))
	switch i % 6 {
	case 0:
		return [3]float32{v, t, p}
	case 1:
		return [3]float32{q, v, p}
	case 2:
		return [3]float32{p, v, t}
	case 3:
		return [3]float32{p, q, v}
	case 4:
		return [3]float32{t, p, v}
	default:
		return [3]float32{v, p, q}
	}
}

// rgbToHSV is hsvToRGB's inverse, used only to halve brightness for alien
// colorization.
func rgbToHSV(rgb [3]float32) [3]float32 {
	r, g, b := rgb[0], rgb[1], rgb[2]
	max := math.Max(float64(r), math.Max(float64(g), float64(b)))
	min := math.Min(float64(r), math.Min(float64(g), float64(b)))
	v := max
	delta := max - min

	var h, s float64
	if max > 0 {
		s = delta / max
	}
	switch {
	case delta == 0:
		h = 0
	case max == float64(r):
		h = math.Mod((float64(g)-float64(b))/delta, 6)
	case max == float64(g):
		h = (float64(b)-float64(r))/delta + 2
	default:
		h = (float64(r)-float64(g))/delta + 4
	}
	h /= 6
	if h < 0 {
		h++
	}
	return [3]float32{float32(h), float32(s), float32(v)}
}
