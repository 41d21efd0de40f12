package traverse

import (
	"github.com/melowntech/vtscore/internal/boundlayer"
	"github.com/melowntech/vtscore/internal/credits"
	"github.com/melowntech/vtscore/internal/drawtask"
	"github.com/melowntech/vtscore/internal/mapconfig"
	"github.com/melowntech/vtscore/internal/meta"
	"github.com/melowntech/vtscore/internal/resource"
	"github.com/melowntech/vtscore/internal/tileid"
)

// defaultMetaGridOrder is the meta-tile grid's K (edge = 2^K tiles) this
// engine assumes when none is configured; matches the grid size used
// pack-wide for 3D meta-tiles in the original implementation.
const defaultMetaGridOrder = 5

// balancedClipSkirt is the Balanced mode's UV-clip overlap margin (spec
// §9 open question: "document as a deliberate overlap margin but do not
// change").
const balancedClipSkirt = 0.05

// Stats is a snapshot of one Traverse call's counters.
type Stats struct {
	Visited int
	ByLod   [tileid.MaxLod + 1]int
}

// Engine walks the quadtree rooted at Root once per render tick, folding
// meta-tiles across the surface stack, testing visibility/coarseness, and
// emitting DrawTasks (spec §4.2).
type Engine struct {
	cache   *resource.Cache
	mc      *mapconfig.MapConfig
	stack   []mapconfig.SurfaceStackItem
	credits *credits.Accumulator
	proj    Projector
	metaK   int

	Root *TraverseNode

	tick  int64
	stats Stats
}

// New constructs an Engine for one map config's surface stack. proj may be
// nil, in which case FlatProjector is used.
func New(cache *resource.Cache, mc *mapconfig.MapConfig, acc *credits.Accumulator, proj Projector) *Engine {
	if proj == nil {
		proj = FlatProjector{}
	}
	root := &TraverseNode{
		Info: tileid.NodeInfo{
			ID:      tileid.Root,
			SRS:     mc.ReferenceFrame.NavigationSrs,
			Extents: tileid.Extent2{MinX: -180, MinY: -90, MaxX: 180, MaxY: 90},
		},
	}
	return &Engine{
		cache:   cache,
		mc:      mc,
		stack:   mc.SurfaceStack,
		credits: acc,
		proj:    proj,
		metaK:   defaultMetaGridOrder,
		Root:    root,
	}
}

// Stats returns the counters from the most recent Traverse call.
func (e *Engine) Stats() Stats { return e.stats }

// Traverse runs one traversal tick (spec §4.2 entry point). loadOnly
// suppresses draw-task emission (and credit hits) while still priming the
// cache and resolving geometry — used by the data worker to warm up nodes
// ahead of the render worker's pass (spec §5).
func (e *Engine) Traverse(f Frustum, loadOnly bool) {
	e.tick++
	e.stats = Stats{}
	e.visit(e.Root, f, loadOnly)
	traverseClearing(e.Root, e.tick)
}

// visit resolves (if needed), tests, and either emits or descends into n,
// per spec §4.2 steps 1-5. Returns whether n ended up "renderable" this
// tick (rendered directly or fully covered by renderable children).
func (e *Engine) visit(n *TraverseNode, f Frustum, loadOnly bool) bool {
	e.stats.Visited++
	e.stats.ByLod[n.Info.ID.ClampedLod()]++

	n.LastAccessTick = e.tick
	n.Priority = e.priorityOf(n, f)

	if n.Meta == nil {
		mb, done := e.resolveMeta(n)
		if !done {
			return false
		}
		n.Meta = mb
		resolveGeometry(n, e.proj)
		e.spawnChildren(n)
	}

	if n.Empty() {
		return false
	}
	if !Visible(n, f) {
		return false
	}

	switch e.mc.Options.TraverseMode {
	case mapconfig.TraverseFlat:
		return e.visitFlat(n, f, loadOnly)
	case mapconfig.TraverseBalanced:
		return e.visitBalanced(n, f, loadOnly)
	default:
		return e.visitHierarchical(n, f, loadOnly)
	}
}

// priorityOf derives a dispatch priority favoring nodes closer to the
// camera (spec §4.1 "priority = f(node)" is left to the caller to
// define); falls back to a depth-based priority before the surrogate
// point is known.
func (e *Engine) priorityOf(n *TraverseNode, f Frustum) float64 {
	if n.Meta != nil && n.Meta.HasSurrogate {
		return 1.0 / (1.0 + distanceVec(n.Meta.SurrogatePhys, f.EyePhys))
	}
	return 1.0 / float64(n.Info.FromRoot+1)
}

func (e *Engine) spawnChildren(n *TraverseNode) {
	for i := 0; i < 4; i++ {
		if !n.Meta.ChildFlags.Has(i) {
			continue
		}
		if n.Children[i] == nil {
			n.Children[i] = newChild(n, i)
		}
	}
}

func (e *Engine) visitHierarchical(n *TraverseNode, f Frustum, loadOnly bool) bool {
	coarse := Coarseness(n, f)
	hasChildren := n.Meta.ChildFlags != 0

	anyChildNotRenderable := false
	if hasChildren && coarse > e.mc.Options.MaxTexelToPixelScale {
		for i := 0; i < 4; i++ {
			if !n.Meta.ChildFlags.Has(i) {
				continue
			}
			c := n.Children[i]
			if c == nil || !e.visit(c, f, loadOnly) {
				anyChildNotRenderable = true
			}
		}
	}

	if coarse <= e.mc.Options.MaxTexelToPixelScale || !hasChildren || anyChildNotRenderable {
		e.emit(n, f, loadOnly)
	}
	return true
}

func (e *Engine) visitFlat(n *TraverseNode, f Frustum, loadOnly bool) bool {
	hasChildren := n.Meta.ChildFlags != 0
	if Coarseness(n, f) <= e.mc.Options.MaxTexelToPixelScale || !hasChildren {
		e.emit(n, f, loadOnly)
		return true
	}
	renderedAny := false
	for i := 0; i < 4; i++ {
		if !n.Meta.ChildFlags.Has(i) {
			continue
		}
		c := n.Children[i]
		if c != nil && e.visit(c, f, loadOnly) {
			renderedAny = true
		}
	}
	return renderedAny
}

func (e *Engine) visitBalanced(n *TraverseNode, f Frustum, loadOnly bool) bool {
	coarse := Coarseness(n, f)
	hasChildren := n.Meta.ChildFlags != 0

	if coarse < e.mc.Options.MaxTexelToPixelScale || !hasChildren {
		e.emit(n, f, loadOnly)
		return true
	}

	if coarse > e.mc.Options.MaxBalancedCoarsenessScale {
		allRenderable := true
		any := false
		for i := 0; i < 4; i++ {
			if !n.Meta.ChildFlags.Has(i) {
				continue
			}
			c := n.Children[i]
			if c != nil && e.visit(c, f, loadOnly) {
				any = true
			} else {
				allRenderable = false
			}
		}
		return any && allRenderable
	}

	// Boundary band: descend into every child; any that isn't yet
	// renderable gets its screen quadrant filled by this node, clipped so
	// only the missing quadrant is covered (spec §4.2, §8 scenario 6).
	rendered := false
	for i := 0; i < 4; i++ {
		if !n.Meta.ChildFlags.Has(i) {
			continue
		}
		c := n.Children[i]
		if c != nil && e.visit(c, f, loadOnly) {
			rendered = true
			continue
		}
		e.emitClipped(n, f, quadrantClip(i), loadOnly)
		rendered = true
	}
	return rendered
}

// quadrantClip returns the UV-clip rectangle (uMin,vMin,uMax,vMax) for
// child index i, expanded by balancedClipSkirt on every edge (spec §8
// scenario 6: child index 1 — x=1,y=0, "upper-right" — yields exactly
// (0.45,-0.05,1.05,0.55)).
func quadrantClip(index int) [4]float64 {
	cx := float64(index & 1)
	cy := float64((index >> 1) & 1)
	return [4]float64{
		cx*0.5 - balancedClipSkirt,
		cy*0.5 - balancedClipSkirt,
		cx*0.5 + 0.5 + balancedClipSkirt,
		cy*0.5 + 0.5 + balancedClipSkirt,
	}
}

// surfaceOwnerID returns the view/bound-layer lookup key for a surface
// stack entry: the single tileset id, or a glue's owning (last) id.
func surfaceOwnerID(s mapconfig.SurfaceInfo) string {
	return s.Name[len(s.Name)-1]
}

// emit resolves the winning surface's texturing (internal texture or
// ordered bound layers) and appends one Task per result to n.Opaque or
// n.Transparent (spec §4.2 "Emission"). loadOnly primes the texture/mesh
// resources without appending any task or hitting credits, so the data
// worker can warm the cache ahead of the render worker's pass.
func (e *Engine) emit(n *TraverseNode, f Frustum, loadOnly bool) {
	e.emitClipped(n, f, [4]float64{0, 0, 1, 1}, loadOnly)
}

func (e *Engine) emitClipped(n *TraverseNode, f Frustum, clip [4]float64, loadOnly bool) {
	if n.Meta.StackIndex < 0 || n.Meta.StackIndex >= len(e.stack) {
		return
	}
	surf := e.stack[n.Meta.StackIndex].Surface

	meshRes := e.cache.Get(tileid.ExpandTemplate(surf.UrlMesh, n.Info.ID), resource.KindMesh)
	e.cache.Touch(meshRes, n.Priority)

	layers := e.mc.BoundLayersFor(surfaceOwnerID(surf))

	if len(layers) == 0 {
		var texRes *resource.Resource
		if surf.UrlIntTex != "" {
			texRes = e.cache.Get(tileid.ExpandTemplate(surf.UrlIntTex, n.Info.ID), resource.KindTexture)
			e.cache.Touch(texRes, n.Priority)
		}
		if loadOnly {
			return
		}
		task := drawtask.Task{
			Mesh:          meshRes,
			TexColor:      texRes,
			ModelViewProj: f.ViewProj,
			UV:            clipMatrix(clip),
			ExternalUV:    false,
			Color:         drawtask.White,
		}
		n.Opaque = append(n.Opaque, task)
		e.hitImageryCredits(n)
		return
	}

	candidates := e.resolveBoundLayers(n, layers)
	ordered := boundlayer.Order(candidates)
	if loadOnly {
		return
	}
	for _, info := range ordered {
		colorRes := e.cache.Get(tileid.ExpandTemplate(info.Layer.UrlColor, info.Vars), resource.KindTexture)
		e.cache.Touch(colorRes, n.Priority)

		var maskRes *resource.Resource
		if info.Layer.UrlMask != "" {
			maskRes = e.cache.Get(tileid.ExpandTemplate(info.Layer.UrlMask, info.Vars), resource.KindBoundMask)
			e.cache.Touch(maskRes, n.Priority)
		}

		task := drawtask.Task{
			Mesh:          meshRes,
			TexColor:      colorRes,
			TexMask:       maskRes,
			ModelViewProj: f.ViewProj,
			UV:            composeClip(boundlayer.UVMatrix(info), clip),
			ExternalUV:    true,
			Color:         drawtask.White,
		}
		if info.Layer.Transparent {
			n.Transparent = append(n.Transparent, task)
		} else {
			n.Opaque = append(n.Opaque, task)
		}
	}
	e.hitImageryCredits(n)
}

func (e *Engine) hitImageryCredits(n *TraverseNode) {
	for _, id := range n.Meta.Credits {
		e.credits.Hit(credits.ScopeImagery, id, n.Info.FromRoot)
	}
}

// resolveBoundLayers runs boundlayer.Resolve for each configured layer,
// fetching each layer's availability meta-tile first if it has one (spec
// §4.3 step 1). Layers still Indeterminate this tick are simply skipped
// rather than blocking the whole node.
func (e *Engine) resolveBoundLayers(n *TraverseNode, layers []mapconfig.BoundLayer) []boundlayer.BoundParamInfo {
	var out []boundlayer.BoundParamInfo
	for _, layer := range layers {
		var metaPayload *resource.BoundMetaPayload
		metaReady := true
		if layer.HasMeta() {
			origin := meta.Origin(n.Info.ID, e.metaK)
			url := tileid.ExpandTemplate(layer.UrlMeta, origin)
			res := e.cache.Get(url, resource.KindBoundMeta)
			e.cache.Touch(res, n.Priority)
			switch e.cache.Validity(url) {
			case resource.Valid:
				if p, ok := res.Payload().(*resource.BoundMetaPayload); ok {
					metaPayload = p
				}
			case resource.Indeterminate:
				metaReady = false
			}
		}
		info, status := boundlayer.Resolve(n.Info.ID, n.Info.ID, 0, layer, metaPayload, metaReady)
		if status == resource.Valid {
			out = append(out, info)
		}
	}
	return out
}

// clipMatrix builds a UV matrix that maps the full mesh UV unit square
// onto the [uMin,vMin]-[uMax,vMax] rectangle of clip, composed with the
// identity for internal textures (no bound-layer UV remap underneath).
func clipMatrix(clip [4]float64) drawtask.Mat3 {
	return composeClip(drawtask.Identity3(), clip)
}

// composeClip composes a bound-layer UV matrix with a balanced-mode clip
// rectangle: the clip scales/offsets the node's own local UV space before
// handing off to uv's existing scale/translate.
func composeClip(uv drawtask.Mat3, clip [4]float64) drawtask.Mat3 {
	if clip == [4]float64{0, 0, 1, 1} {
		return uv
	}
	sx := clip[2] - clip[0]
	sy := clip[3] - clip[1]
	clipM := drawtask.Mat3{
		sx, 0, 0,
		0, sy, 0,
		clip[0], clip[1], 1,
	}
	return uv.Mul(clipM)
}
