package traverse

// traverseClearing walks the tree every tick, releasing render tasks,
// children, and Meta for nodes that haven't been visited in the last 5
// ticks (spec §4.2 "Periodic clearing"). To bound the cost of walking
// every LOD-3 tile every tick, only 1 in 64 are visited per tick there,
// selected by (y*8+x) mod 64 == tickIndex mod 64; everything below LOD 3
// is reached only through a surviving LOD-3 ancestor, so skipping most of
// LOD 3 each tick also skips the (much larger) subtrees beneath it for
// that tick.
func traverseClearing(root *TraverseNode, tick int64) {
	clearWalk(root, tick)
}

func clearWalk(n *TraverseNode, tick int64) {
	if n.Info.ID.Lod == 3 {
		x, y := n.Info.ID.X, n.Info.ID.Y
		if int64((y*8+x)%64) != tick%64 {
			return
		}
	}

	if n.LastAccessTick+5 < tick {
		n.Opaque = nil
		n.Transparent = nil
		n.Meta = nil
		n.Children = [4]*TraverseNode{}
		return
	}

	for _, c := range n.Children {
		if c != nil {
			clearWalk(c, tick)
		}
	}
}
