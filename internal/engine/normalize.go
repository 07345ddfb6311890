package engine

import (
	"sort"

	"github.com/google/uuid"
	"github.com/piwi3910/ductcalc/internal/model"
)

// orthogonalize forces every segment onto its declared axis and onto the grid.
//
// The fixed axis takes the average of both endpoints, so float drift from
// drawing collapses onto one line. Endpoints are then replaced by the
// canonical point of their grid key; endpoints sharing a key therefore share
// identical coordinates. Segments that collapse to one node are dropped, as
// are exact duplicates. Endpoints are ordered low to high along the axis.
func orthogonalize(segs []model.Segment, pitch float64) (out []model.Segment, dropped int) {
	out = make([]model.Segment, 0, len(segs))
	seen := make(map[geometryKey]bool, len(segs))
	for _, s := range segs {
		p1, p2 := s.P1, s.P2
		if s.Orientation == model.Vertical {
			x := (p1.X + p2.X) / 2
			p1.X, p2.X = x, x
		} else {
			y := (p1.Y + p2.Y) / 2
			p1.Y, p2.Y = y, y
		}
		k1, k2 := model.KeyOf(p1, pitch), model.KeyOf(p2, pitch)
		if k1 == k2 {
			dropped++
			continue
		}
		if (s.Orientation == model.Horizontal && k1.I > k2.I) ||
			(s.Orientation == model.Vertical && k1.J > k2.J) {
			k1, k2 = k2, k1
		}
		s.P1, s.P2 = k1.Point(pitch), k2.Point(pitch)

		g := geometryOf(s, pitch)
		if seen[g] {
			dropped++
			continue
		}
		seen[g] = true
		out = append(out, s)
	}
	return out, dropped
}

// splitSegments inserts a node wherever a segment is crossed or touched in
// its interior: perpendicular crossings, other segments' endpoints, and the
// extra keys (terminal positions). Unaffected segments keep their identity.
func splitSegments(segs []model.Segment, extra []model.GridKey, pitch float64) (out []model.Segment, splits int) {
	spans := make([]keySpan, len(segs))
	for i, s := range segs {
		spans[i] = spanOf(s, pitch)
	}

	out = make([]model.Segment, 0, len(segs))
	for i, s := range segs {
		sp := spans[i]
		cuts := map[int]bool{}

		for j, other := range segs {
			if i == j {
				continue
			}
			osp := spans[j]
			if osp.horizontal != sp.horizontal {
				// Perpendicular: the crossing point is (other.fixed) along sp.
				if osp.lo <= sp.fixed && sp.fixed <= osp.hi && osp.fixed > sp.lo && osp.fixed < sp.hi {
					cuts[osp.fixed] = true
				}
			}
			a, b := endpointKeys(other, pitch)
			for _, k := range [2]model.GridKey{a, b} {
				if sp.strictlyInside(k) {
					v, _ := sp.along(k)
					cuts[v] = true
				}
			}
		}
		for _, k := range extra {
			if sp.strictlyInside(k) {
				v, _ := sp.along(k)
				cuts[v] = true
			}
		}

		if len(cuts) == 0 {
			out = append(out, s)
			continue
		}

		stops := make([]int, 0, len(cuts)+2)
		stops = append(stops, sp.lo)
		for v := range cuts {
			stops = append(stops, v)
		}
		stops = append(stops, sp.hi)
		sort.Ints(stops)

		for n := 0; n+1 < len(stops); n++ {
			piece := s
			piece.ID = uuid.New().String()[:8]
			piece.P1 = sp.key(stops[n]).Point(pitch)
			piece.P2 = sp.key(stops[n+1]).Point(pitch)
			out = append(out, piece)
		}
		splits += len(cuts)
	}
	return out, splits
}

// pruneDangling repeatedly removes segments that end in a leaf node not
// occupied by a terminal, until none remain.
func pruneDangling(segs []model.Segment, terminals map[model.GridKey]bool, pitch float64) (out []model.Segment, pruned int) {
	out = segs
	for {
		deg := make(map[model.GridKey]int, len(out)*2)
		for _, s := range out {
			a, b := endpointKeys(s, pitch)
			deg[a]++
			deg[b]++
		}
		kept := make([]model.Segment, 0, len(out))
		for _, s := range out {
			a, b := endpointKeys(s, pitch)
			if (deg[a] <= 1 && !terminals[a]) || (deg[b] <= 1 && !terminals[b]) {
				continue
			}
			kept = append(kept, s)
		}
		removed := len(out) - len(kept)
		out = kept
		pruned += removed
		if removed == 0 {
			return out, pruned
		}
	}
}

// mergeCollinear joins pairs of same-axis segments meeting at a pass-through
// node that carries no terminal. The merged run keeps the larger flow. Runs
// that leave the node on the same side overlap and are left alone.
func mergeCollinear(segs []model.Segment, terminals map[model.GridKey]bool, pitch float64) (out []model.Segment, merged int) {
	out = model.CopySegments(segs)
	for {
		adj := buildAdjacency(out, pitch)
		var node model.GridKey
		found := false
		for k, edges := range adj {
			if len(edges) != 2 || terminals[k] {
				continue
			}
			a, b := out[edges[0].seg], out[edges[1].seg]
			if a.Orientation != b.Orientation || !oppositeSides(k, edges[0].to, edges[1].to) {
				continue
			}
			node, found = k, true
			break
		}
		if !found {
			return out, merged
		}

		edges := adj[node]
		i, j := edges[0].seg, edges[1].seg
		joined := out[i]
		joined.P1 = edges[0].to.Point(pitch)
		joined.P2 = edges[1].to.Point(pitch)
		if out[j].Flow > joined.Flow {
			joined.Flow = out[j].Flow
		}

		next := make([]model.Segment, 0, len(out)-1)
		for n, s := range out {
			if n != i && n != j {
				next = append(next, s)
			}
		}
		next = append(next, joined)
		out, _ = orthogonalize(next, pitch)
		merged++
	}
}

// oppositeSides reports whether a and b lie in opposite directions from node.
func oppositeSides(node, a, b model.GridKey) bool {
	return (a.I-node.I)*(b.I-node.I)+(a.J-node.J)*(b.J-node.J) < 0
}
