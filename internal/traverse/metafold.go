package traverse

import (
	"github.com/melowntech/vtscore/internal/mapconfig"
	"github.com/melowntech/vtscore/internal/meta"
	"github.com/melowntech/vtscore/internal/resource"
	"github.com/melowntech/vtscore/internal/tileid"
)

// resolveMeta requests this node's meta-tile from every surface-stack
// entry and folds the results (spec §4.2 step 3). Entries are walked from
// the end of the stack backwards, since GenerateSurfaceStack places the
// first-declared (topmost, highest-precedence) surface last (see
// internal/mapconfig/surfacestack.go's reversal pass). The winner is the
// first non-alien entry, in that topmost-first order, reporting geometry;
// child-availability bits and credit ids are merged across every entry
// regardless of which one wins.
//
// If any configured meta-tile is still Indeterminate, resolveMeta returns
// (nil, false): the caller must revisit this node next tick rather than
// guess at an incomplete fold.
func (e *Engine) resolveMeta(n *TraverseNode) (*MetaBlock, bool) {
	mb := &MetaBlock{StackIndex: -1}
	sawIndeterminate := false

	for i := len(e.stack) - 1; i >= 0; i-- {
		item := e.stack[i]
		if item.Surface.UrlMeta == "" {
			continue
		}

		origin := meta.Origin(n.Info.ID, e.metaK)
		url := tileid.ExpandTemplate(item.Surface.UrlMeta, origin)
		res := e.cache.Get(url, resource.KindMetaTile)
		res.SetMetaHint(origin, e.metaK)
		e.cache.Touch(res, n.Priority)

		switch e.cache.Validity(url) {
		case resource.Indeterminate:
			sawIndeterminate = true
			continue
		case resource.Invalid:
			continue
		}

		payload, ok := res.Payload().(*resource.MetaTilePayload)
		if !ok {
			continue
		}
		mn, ok := payload.Tile.At(n.Info.ID)
		if !ok {
			continue
		}

		mb.ChildFlags |= mn.ChildFlags
		if len(mn.CreditIDs) > 0 {
			mb.Credits = append(mb.Credits, mn.CreditIDs...)
		}
		if mb.StackIndex == -1 && !mn.Alien && mn.Geometry {
			mb.StackIndex = i
			fillFromWinner(mb, mn, e.stack)
		}
	}

	if sawIndeterminate {
		return nil, false
	}

	mb.Geometry = mb.StackIndex != -1
	return mb, true
}

// fillFromWinner copies the winning MetaNode's geometry/texel fields into
// mb, redirecting StackIndex through source-reference when the winner
// designates a virtual surface (spec §3 "source-reference (for virtual
// surfaces — an index into the surface stack)"; §9 keeps the source's
// assertion that source-reference must be > 0, so 0 is never treated as a
// valid redirect here).
func fillFromWinner(mb *MetaBlock, mn meta.Node, stack []mapconfig.SurfaceStackItem) {
	mb.GeomExtents = mn.GeomExtents
	mb.HasSurrogate = mn.HasSurrogate
	mb.surrogateHeight = mn.SurrogateHeight
	mb.TexelSize = mn.TexelSize
	mb.ApplyTexelSize = mn.ApplyTexelSize
	mb.DisplaySize = mn.DisplaySize
	mb.ApplyDisplaySize = mn.ApplyDisplaySize

	if mn.IsVirtual() {
		if idx := mn.SourceReference - 1; idx >= 0 && idx < len(stack) {
			mb.StackIndex = idx
		}
	}
}
