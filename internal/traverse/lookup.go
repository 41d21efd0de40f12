package traverse

import "github.com/melowntech/vtscore/internal/tileid"

// Find descends from root toward id, following only already-spawned
// children, and returns the deepest resolved node on that path along with
// whether it reached id exactly. Used by height-pinning (package camera)
// to read a surrogate height without triggering traversal itself.
func Find(root *TraverseNode, id tileid.ID) (*TraverseNode, bool) {
	n := root
	for n.Info.ID.Lod < id.Lod {
		idx := childIndexTowards(n.Info.ID, id)
		child := n.Children[idx]
		if child == nil {
			return n, false
		}
		n = child
	}
	return n, n.Info.ID == id
}

// childIndexTowards returns which of from's four children lies on the path
// to descendant id (id must be strictly deeper than from).
func childIndexTowards(from, id tileid.ID) int {
	shift := id.Lod - from.Lod - 1
	x := (id.X >> shift) & 1
	y := (id.Y >> shift) & 1
	return int(y<<1 | x)
}
