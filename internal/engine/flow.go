package engine

import (
	"github.com/piwi3910/ductcalc/internal/model"
	"github.com/piwi3910/ductcalc/internal/sizing"
)

// RecomputeFlows returns the airflow carried by each segment, indexed like
// segments, and the IDs of outlets with flow that cannot reach the inlet.
//
// Every outlet with positive flow is traced back to the inlet along the
// fewest-segment path and its flow is added to each segment on that path.
// Without an inlet every flow is zero and every such outlet is unreachable.
func RecomputeFlows(terminals []model.Terminal, segments []model.Segment, pitch float64) (flows []float64, unreachable []string) {
	flows = make([]float64, len(segments))
	inlet, ok := findInlet(terminals)
	if !ok {
		for _, t := range terminals {
			if t.Kind == model.Outlet && t.Flow > 0 {
				unreachable = append(unreachable, t.ID)
			}
		}
		return flows, unreachable
	}

	adj := buildAdjacency(segments, pitch)
	goal := model.KeyOf(inlet.Position, pitch)
	for _, t := range terminals {
		if t.Kind != model.Outlet || t.Flow <= 0 {
			continue
		}
		path, found := shortestPath(adj, model.KeyOf(t.Position, pitch), goal)
		if !found {
			unreachable = append(unreachable, t.ID)
			continue
		}
		for _, seg := range path {
			flows[seg] += t.Flow
		}
	}
	return flows, unreachable
}

// shortestPath runs a breadth-first search from start to goal and returns the
// segment indices along the path.
func shortestPath(adj map[model.GridKey][]edge, start, goal model.GridKey) ([]int, bool) {
	if start == goal {
		return nil, true
	}
	if _, ok := adj[start]; !ok {
		return nil, false
	}
	type step struct {
		from model.GridKey
		seg  int
	}
	parent := map[model.GridKey]step{start: {from: start, seg: -1}}
	queue := []model.GridKey{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == goal {
			break
		}
		for _, e := range adj[cur] {
			if _, seen := parent[e.to]; seen {
				continue
			}
			parent[e.to] = step{from: cur, seg: e.seg}
			queue = append(queue, e.to)
		}
	}
	if _, ok := parent[goal]; !ok {
		return nil, false
	}
	var path []int
	for k := goal; k != start; {
		p := parent[k]
		path = append(path, p.seg)
		k = p.from
	}
	return path, true
}

// reachableOutlets returns the IDs of positive-flow outlets connected to the inlet.
func reachableOutlets(terminals []model.Terminal, segments []model.Segment, pitch float64) map[string]bool {
	out := map[string]bool{}
	inlet, ok := findInlet(terminals)
	if !ok {
		return out
	}
	seen := reachableFrom(buildAdjacency(segments, pitch), model.KeyOf(inlet.Position, pitch))
	for _, t := range terminals {
		if t.Kind == model.Outlet && t.Flow > 0 && seen[model.KeyOf(t.Position, pitch)] {
			out[t.ID] = true
		}
	}
	return out
}

// UnreachableOutlets lists outlets with flow that have no path to the inlet.
func (n *Network) UnreachableOutlets() []string {
	_, unreachable := RecomputeFlows(n.terminals, n.segments, n.pitch)
	return unreachable
}

// RecomputeFlowsAndSizes assigns accumulated flows to every segment and
// resizes them under p, which becomes the network's policy. It returns the
// outlets that could not be reached.
func (n *Network) RecomputeFlowsAndSizes(p model.SizingPolicy) ([]string, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	n.push("Recompute flows")
	n.policy = p
	unreachable := n.applyFlows()
	return unreachable, nil
}

// applyFlows recomputes flows and sizes in place without touching history.
func (n *Network) applyFlows() []string {
	flows, unreachable := RecomputeFlows(n.terminals, n.segments, n.pitch)
	for i := range n.segments {
		n.segments[i].Flow = flows[i]
		n.segments[i].WidthMM, n.segments[i].HeightMM, n.segments[i].Label = sizing.PerformSizing(flows[i], n.policy)
	}
	if len(unreachable) > 0 {
		n.logger.Debug("outlets not connected to inlet", "count", len(unreachable))
	}
	return unreachable
}
