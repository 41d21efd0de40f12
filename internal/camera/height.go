package camera

import (
	"math"

	"github.com/melowntech/vtscore/internal/mapconfig"
	"github.com/melowntech/vtscore/internal/resource"
	"github.com/melowntech/vtscore/internal/tileid"
	"github.com/melowntech/vtscore/internal/traverse"
)

// heightRequestCap is the maximum number of queued height requests (spec
// §4.4: "at most 2 ... new requests replace the back of the queue").
const heightRequestCap = 2

// heightRequest asks for a bilinearly-interpolated terrain height at a
// navigation-SRS XY position, at a lod chosen so the traversal tree is
// likely to have already resolved that cell.
type heightRequest struct {
	lon, lat float64
	lod      uint32
}

type heightQueue struct {
	pending []heightRequest
}

func (q *heightQueue) push(r heightRequest) {
	if len(q.pending) >= heightRequestCap {
		q.pending[len(q.pending)-1] = r
		return
	}
	q.pending = append(q.pending, r)
}

// pinAltitude enqueues a height request for the current XY position and
// resolves the oldest queued request it can, feeding a completed height
// back into inertiaZ so altitude tracks terrain without teleporting (spec
// §4.4 "Altitude pinning").
func (s *State) pinAltitude(opt mapconfig.Options, root *traverse.TraverseNode) {
	lod := heightLod(opt, s.ViewExtent, root)
	s.heights.push(heightRequest{lon: s.Position[0], lat: s.Position[1], lod: lod})

	for len(s.heights.pending) > 0 {
		req := s.heights.pending[0]
		h, status := sampleHeight(root, req.lon, req.lat, req.lod)
		switch status {
		case resource.Indeterminate:
			return // defer: retry this same request next tick
		case resource.Invalid:
			s.heights.pending = s.heights.pending[1:] // poisoned: drop, try the next
			continue
		default:
			s.heights.pending = s.heights.pending[1:]
			s.inertiaZ += h - s.Position[2]
			return
		}
	}
}

// heightLod picks the lod so that
// navigationSamplesPerViewExtent * extent(node) / viewExtent >= 2^3 (spec
// §4.4), searching down from the root's resolved depth.
func heightLod(opt mapconfig.Options, viewExtent float64, root *traverse.TraverseNode) uint32 {
	lod := uint32(0)
	n := root
	for n != nil && n.Meta != nil {
		extent := n.Info.Extents.MaxX - n.Info.Extents.MinX
		if viewExtent <= 0 || opt.NavigationSamplesPerViewExtent*extent/viewExtent < 8 {
			break
		}
		lod = n.Info.ID.Lod
		// Descend along child 0 just to probe depth; the real lookup in
		// sampleHeight walks the tree fresh from the target lon/lat.
		n = n.Children[0]
	}
	return lod
}

// sampleHeight bilinearly interpolates the surrogate heights of the 4
// corner TraverseNodes of the SDS cell containing (lon,lat) at lod (spec
// §4.4). Indeterminate if any corner isn't resolved yet; Invalid if any
// corner resolved empty.
func sampleHeight(root *traverse.TraverseNode, lon, lat float64, lod uint32) (float64, resource.Validity) {
	id := tileid.FromLonLat(lon, lat, lod)
	minLon, minLat, maxLon, maxLat := id.MaptileBounds()

	corners := [4]tileid.ID{
		{Lod: lod, X: id.X, Y: id.Y},
		{Lod: lod, X: id.X + 1, Y: id.Y},
		{Lod: lod, X: id.X, Y: id.Y + 1},
		{Lod: lod, X: id.X + 1, Y: id.Y + 1},
	}
	var h [4]float64
	for i, c := range corners {
		n, ok := traverse.Find(root, c)
		if !ok {
			return 0, resource.Indeterminate
		}
		if n.Validity() == resource.Invalid {
			return 0, resource.Invalid
		}
		if n.Validity() == resource.Indeterminate || n.Meta == nil || !n.Meta.HasSurrogate {
			return 0, resource.Indeterminate
		}
		h[i] = n.Meta.SurrogatePhys[2]
	}

	u := (lon - minLon) / (maxLon - minLon)
	v := (lat - minLat) / (maxLat - minLat)
	u = math.Max(0, math.Min(1, u))
	v = math.Max(0, math.Min(1, v))

	top := h[0]*(1-u) + h[1]*u
	bottom := h[2]*(1-u) + h[3]*u
	return top*(1-v) + bottom*v, resource.Valid
}
