package engine

import (
	"sort"

	"github.com/piwi3910/ductcalc/internal/model"
	"github.com/piwi3910/ductcalc/internal/sizing"
)

// maxRepairPasses bounds the repair loop; a clean network settles in two.
const maxRepairPasses = 8

// RepairReport summarizes what a topology repair changed.
type RepairReport struct {
	Merged    int // Degenerate or duplicate segments removed
	Split     int // Nodes inserted into existing segments
	Connected int // Connector segments added for orphan outlets
	Pruned    int // Dangling segments removed
	Risers    int // Segments added to reach the inlet
	Passes    int
}

// Changed reports whether the repair modified the segment set.
func (r RepairReport) Changed() bool {
	return r.Merged+r.Split+r.Connected+r.Pruned+r.Risers > 0
}

// RunTopologyRepair snaps, splits, connects and prunes the segment graph
// until a further pass would change nothing. Running it twice in a row
// leaves the second run without effect. It never fails.
func (n *Network) RunTopologyRepair() RepairReport {
	n.push("Run topology repair")
	for i := range n.terminals {
		n.terminals[i].Position = Snap(n.terminals[i].Position, n.pitch)
	}

	var rep RepairReport
	n.repairToFixedPoint(&rep)
	n.logger.Debug("topology repair",
		"merged", rep.Merged, "split", rep.Split, "connected", rep.Connected,
		"pruned", rep.Pruned, "risers", rep.Risers, "passes", rep.Passes)
	return rep
}

// repairToFixedPoint runs repair passes until the geometry stops changing
// or maxRepairPasses is reached.
func (n *Network) repairToFixedPoint(rep *RepairReport) {
	for rep.Passes < maxRepairPasses {
		before := n.segments
		n.segments = n.repairPass(rep)
		rep.Passes++
		if sameGeometry(before, n.segments, n.pitch) {
			return
		}
	}
}

func (n *Network) repairPass(rep *RepairReport) []model.Segment {
	tkeys := terminalKeys(n.terminals, n.pitch)
	extra := sortedKeys(tkeys)

	segs := n.normalize(n.segments, extra, rep)
	segs = n.connectOrphanOutlets(segs, rep)

	segs, pruned := pruneDangling(segs, tkeys, n.pitch)
	rep.Pruned += pruned

	segs = n.connectInlet(segs, rep)
	segs = n.normalize(segs, extra, rep)
	sortSegments(segs, n.pitch)
	return segs
}

// normalize orthogonalizes, splits at every interior node and drops the
// duplicates produced by overlapping runs.
func (n *Network) normalize(segs []model.Segment, extra []model.GridKey, rep *RepairReport) []model.Segment {
	segs, dropped := orthogonalize(segs, n.pitch)
	rep.Merged += dropped
	segs, splits := splitSegments(segs, extra, n.pitch)
	rep.Split += splits
	segs, dropped = orthogonalize(segs, n.pitch)
	rep.Merged += dropped
	return segs
}

// connectOrphanOutlets links every outlet that is not a segment endpoint to
// the nearest endpoint present when the pass began, or to the inlet when
// there are no segments, with an L-shaped connector.
func (n *Network) connectOrphanOutlets(segs []model.Segment, rep *RepairReport) []model.Segment {
	adj := buildAdjacency(segs, n.pitch)
	anchors := make([]model.GridKey, 0, len(adj))
	for k := range adj {
		anchors = append(anchors, k)
	}
	sortKeys(anchors)
	if len(anchors) == 0 {
		if inlet, ok := findInlet(n.terminals); ok {
			anchors = append(anchors, model.KeyOf(inlet.Position, n.pitch))
		}
	}
	if len(anchors) == 0 {
		return segs
	}

	for _, t := range n.terminals {
		if t.Kind != model.Outlet {
			continue
		}
		tk := model.KeyOf(t.Position, n.pitch)
		if _, onNetwork := adj[tk]; onNetwork {
			continue
		}
		anchor, found := nearestKey(anchors, tk, n.pitch)
		if !found || anchor == tk {
			continue
		}
		// Traverse the dominant axis first, starting from the anchor.
		corner := model.GridKey{I: tk.I, J: anchor.J}
		if abs(tk.I-anchor.I) < abs(tk.J-anchor.J) {
			corner = model.GridKey{I: anchor.I, J: tk.J}
		}
		for _, leg := range n.legs(anchor, corner, tk, t.Flow) {
			segs = append(segs, leg)
			rep.Connected++
		}
	}
	return segs
}

// connectInlet adds a riser from an inlet that sits off the network to the
// closest point of the nearest segment: horizontal leg first, then vertical.
func (n *Network) connectInlet(segs []model.Segment, rep *RepairReport) []model.Segment {
	inlet, ok := findInlet(n.terminals)
	if !ok || len(segs) == 0 {
		return segs
	}
	ik := model.KeyOf(inlet.Position, n.pitch)
	if _, onNetwork := buildAdjacency(segs, n.pitch)[ik]; onNetwork {
		return segs
	}

	var target model.GridKey
	best := -1.0
	for _, s := range segs {
		p := projectOnto(spanOf(s, n.pitch), ik)
		if d := gridDist(p, ik, n.pitch); best < 0 || d < best {
			best, target = d, p
		}
	}
	corner := model.GridKey{I: target.I, J: ik.J}
	for _, leg := range n.legs(ik, corner, target, 0) {
		segs = append(segs, leg)
		rep.Risers++
	}
	return segs
}

// legs builds the one or two segments of the path a → corner → b, skipping
// zero-length legs. Each leg carries flow and is sized for it.
func (n *Network) legs(a, corner, b model.GridKey, flow float64) []model.Segment {
	var out []model.Segment
	for _, pair := range [2][2]model.GridKey{{a, corner}, {corner, b}} {
		if pair[0] == pair[1] {
			continue
		}
		s := model.NewSegment(pair[0].Point(n.pitch), pair[1].Point(n.pitch))
		s.Flow = flow
		s.WidthMM, s.HeightMM, s.Label = sizing.PerformSizing(flow, n.policy)
		out = append(out, s)
	}
	return out
}

// projectOnto returns the point of the span closest to k.
func projectOnto(sp keySpan, k model.GridKey) model.GridKey {
	v, _ := sp.along(k)
	return sp.key(min(max(v, sp.lo), sp.hi))
}

func nearestKey(keys []model.GridKey, from model.GridKey, pitch float64) (model.GridKey, bool) {
	var best model.GridKey
	bestDist := -1.0
	for _, k := range keys {
		if d := gridDist(k, from, pitch); bestDist < 0 || d < bestDist {
			best, bestDist = k, d
		}
	}
	return best, bestDist >= 0
}

func sortedKeys(set map[model.GridKey]bool) []model.GridKey {
	out := make([]model.GridKey, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sortKeys(out)
	return out
}

func sortKeys(keys []model.GridKey) {
	sort.Slice(keys, func(a, b int) bool { return keyLess(keys[a], keys[b]) })
}

func keyLess(a, b model.GridKey) bool {
	if a.I != b.I {
		return a.I < b.I
	}
	return a.J < b.J
}

// sortSegments orders segments by geometry so each pass sees a stable input.
func sortSegments(segs []model.Segment, pitch float64) {
	sort.SliceStable(segs, func(a, b int) bool {
		ga, gb := geometryOf(segs[a], pitch), geometryOf(segs[b], pitch)
		if ga[0] != gb[0] {
			return keyLess(ga[0], gb[0])
		}
		return keyLess(ga[1], gb[1])
	})
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
