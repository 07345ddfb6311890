package engine

import (
	"math"

	"github.com/piwi3910/ductcalc/internal/model"
)

// Snap rounds each coordinate of p to the nearest multiple of pitch.
func Snap(p model.Point, pitch float64) model.Point {
	return model.KeyOf(p, pitch).Point(pitch)
}

// keySpan is a segment expressed in grid indices: it runs along one axis from
// lo to hi at the fixed index of the other axis.
type keySpan struct {
	horizontal bool
	lo, hi     int
	fixed      int
}

func spanOf(s model.Segment, pitch float64) keySpan {
	k1, k2 := model.KeyOf(s.P1, pitch), model.KeyOf(s.P2, pitch)
	if s.Orientation == model.Horizontal {
		return keySpan{horizontal: true, lo: min(k1.I, k2.I), hi: max(k1.I, k2.I), fixed: k1.J}
	}
	return keySpan{horizontal: false, lo: min(k1.J, k2.J), hi: max(k1.J, k2.J), fixed: k1.I}
}

// along returns the coordinate of k on the span's varying axis and whether
// k lies on the span's line.
func (sp keySpan) along(k model.GridKey) (int, bool) {
	if sp.horizontal {
		return k.I, k.J == sp.fixed
	}
	return k.J, k.I == sp.fixed
}

// key builds the grid key at position v along the span.
func (sp keySpan) key(v int) model.GridKey {
	if sp.horizontal {
		return model.GridKey{I: v, J: sp.fixed}
	}
	return model.GridKey{I: sp.fixed, J: v}
}

// strictlyInside reports whether k lies on the span strictly between its ends.
func (sp keySpan) strictlyInside(k model.GridKey) bool {
	v, ok := sp.along(k)
	return ok && v > sp.lo && v < sp.hi
}

func endpointKeys(s model.Segment, pitch float64) (model.GridKey, model.GridKey) {
	return model.KeyOf(s.P1, pitch), model.KeyOf(s.P2, pitch)
}

// edge is one adjacency entry: the neighbor node and the segment index.
type edge struct {
	to  model.GridKey
	seg int
}

// buildAdjacency maps every segment endpoint to its incident edges.
func buildAdjacency(segs []model.Segment, pitch float64) map[model.GridKey][]edge {
	adj := make(map[model.GridKey][]edge, len(segs)*2)
	for i, s := range segs {
		a, b := endpointKeys(s, pitch)
		adj[a] = append(adj[a], edge{to: b, seg: i})
		adj[b] = append(adj[b], edge{to: a, seg: i})
	}
	return adj
}

// reachableFrom returns every node connected to start.
func reachableFrom(adj map[model.GridKey][]edge, start model.GridKey) map[model.GridKey]bool {
	seen := map[model.GridKey]bool{start: true}
	queue := []model.GridKey{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range adj[cur] {
			if !seen[e.to] {
				seen[e.to] = true
				queue = append(queue, e.to)
			}
		}
	}
	return seen
}

// terminalKeys returns the set of grid nodes occupied by terminals.
func terminalKeys(ts []model.Terminal, pitch float64) map[model.GridKey]bool {
	keys := make(map[model.GridKey]bool, len(ts))
	for _, t := range ts {
		keys[model.KeyOf(t.Position, pitch)] = true
	}
	return keys
}

func findInlet(ts []model.Terminal) (model.Terminal, bool) {
	for _, t := range ts {
		if t.Kind == model.Inlet {
			return t, true
		}
	}
	return model.Terminal{}, false
}

// gridDist is the Euclidean distance between two nodes in meters.
func gridDist(a, b model.GridKey, pitch float64) float64 {
	return math.Hypot(float64(a.I-b.I), float64(a.J-b.J)) * pitch
}

// geometryKey identifies a segment by its canonical endpoints.
type geometryKey [2]model.GridKey

func geometryOf(s model.Segment, pitch float64) geometryKey {
	a, b := endpointKeys(s, pitch)
	if b.I < a.I || (b.I == a.I && b.J < a.J) {
		a, b = b, a
	}
	return geometryKey{a, b}
}

// sameGeometry reports whether two segment sets cover identical runs.
func sameGeometry(a, b []model.Segment, pitch float64) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[geometryKey]int, len(a))
	for _, s := range a {
		set[geometryOf(s, pitch)]++
	}
	for _, s := range b {
		g := geometryOf(s, pitch)
		if set[g] == 0 {
			return false
		}
		set[g]--
	}
	return true
}
