package engine

import (
	"math"

	"github.com/google/uuid"
	"github.com/piwi3910/ductcalc/internal/model"
	"github.com/piwi3910/ductcalc/internal/sizing"
)

// OptimizerConfig holds the thresholds of the connection optimizer.
type OptimizerConfig struct {
	MaxRounds  int     // Passes over all outlets before giving up
	MinLength  float64 // Outlets connected by less than this (m) are left alone
	MinSavings float64 // A reroute must save more than this (m)
}

// DefaultOptimizerConfig returns the standard thresholds.
func DefaultOptimizerConfig() OptimizerConfig {
	return OptimizerConfig{MaxRounds: 3, MinLength: 1.5, MinSavings: 1.0}
}

// OptimizerConfigFrom reads the optimizer thresholds from the application
// config, keeping defaults for unset values.
func OptimizerConfigFrom(cfg model.AppConfig) OptimizerConfig {
	c := DefaultOptimizerConfig()
	if cfg.OptimizerRounds > 0 {
		c.MaxRounds = cfg.OptimizerRounds
	}
	if cfg.OptimizerMinLength > 0 {
		c.MinLength = cfg.OptimizerMinLength
	}
	if cfg.OptimizerMinSavings > 0 {
		c.MinSavings = cfg.OptimizerMinSavings
	}
	return c
}

// shortcut is a candidate point an outlet can reach with one straight stub.
type shortcut struct {
	point model.GridKey
	seg   int // Segment the point lies on
	dist  float64
	split bool // Point is strictly inside seg
}

// OptimizeConnections replaces long outlet connections with a single
// straight stub to the nearest duct on the outlet's row or column.
//
// Every reroute is applied to a trial copy and kept only if each outlet that
// could reach the inlet before the call still can; otherwise it is dropped.
// It returns the number of accepted reroutes. Flows and sizes are
// recomputed under p before returning.
func (n *Network) OptimizeConnections(p model.SizingPolicy) (int, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	n.push("Optimize connections")
	n.policy = p

	if _, ok := findInlet(n.terminals); !ok {
		n.applyFlows()
		return 0, nil
	}

	baseline := reachableOutlets(n.terminals, n.segments, n.pitch)
	total := 0
	for round := 0; round < n.optimizer.MaxRounds; round++ {
		accepted := 0
		for _, t := range n.terminals {
			if t.Kind != model.Outlet || t.Flow <= 0 {
				continue
			}
			if n.shortenOutlet(t, baseline) {
				accepted++
			}
		}
		total += accepted
		n.logger.Debug("optimizer round", "round", round+1, "accepted", accepted)
		if accepted == 0 {
			break
		}
		n.applyFlows()
	}
	n.applyFlows()
	return total, nil
}

// shortenOutlet tries one reroute for t and reports whether it was kept.
func (n *Network) shortenOutlet(t model.Terminal, baseline map[string]bool) bool {
	tk := model.KeyOf(t.Position, n.pitch)
	incident := map[int]bool{}
	for _, e := range buildAdjacency(n.segments, n.pitch)[tk] {
		incident[e.seg] = true
	}
	if len(incident) == 0 {
		return false
	}
	current := 0.0
	for i := range incident {
		current += n.segments[i].Length()
	}
	if current < n.optimizer.MinLength {
		return false
	}

	best, ok := n.nearestShortcut(tk, incident)
	if !ok || current-best.dist <= n.optimizer.MinSavings {
		return false
	}

	trial := make([]model.Segment, 0, len(n.segments)+2)
	for i, s := range n.segments {
		switch {
		case incident[i]:
		case i == best.seg && best.split:
			a, b := s, s
			a.P2 = best.point.Point(n.pitch)
			b.P1 = best.point.Point(n.pitch)
			b.ID = uuid.New().String()[:8]
			trial = append(trial, a, b)
		default:
			trial = append(trial, s)
		}
	}
	stub := model.NewSegment(tk.Point(n.pitch), best.point.Point(n.pitch))
	stub.Flow = t.Flow
	stub.WidthMM, stub.HeightMM, stub.Label = sizing.PerformSizing(t.Flow, n.policy)
	trial = append(trial, stub)

	tkeys := terminalKeys(n.terminals, n.pitch)
	trial, _ = splitSegments(trial, sortedKeys(tkeys), n.pitch)
	trial, _ = orthogonalize(trial, n.pitch)
	trial, _ = pruneDangling(trial, tkeys, n.pitch)

	after := reachableOutlets(n.terminals, trial, n.pitch)
	for id := range baseline {
		if !after[id] {
			n.logger.Debug("optimizer rejected reroute", "outlet", t.ID, "disconnects", id)
			return false
		}
	}
	n.logger.Debug("optimizer rerouted outlet", "outlet", t.ID,
		"from", math.Round(current*100)/100, "to", best.dist)
	n.segments = trial
	return true
}

// nearestShortcut finds the closest point on a non-incident segment that
// shares the outlet's grid row or column.
func (n *Network) nearestShortcut(tk model.GridKey, incident map[int]bool) (shortcut, bool) {
	var best shortcut
	found := false
	for i, s := range n.segments {
		if incident[i] {
			continue
		}
		sp := spanOf(s, n.pitch)
		v, onLine := sp.along(tk)

		var c shortcut
		switch {
		case !onLine && v >= sp.lo && v <= sp.hi:
			c = shortcut{point: sp.key(v), seg: i, split: v > sp.lo && v < sp.hi}
		case onLine && v < sp.lo:
			c = shortcut{point: sp.key(sp.lo), seg: i}
		case onLine && v > sp.hi:
			c = shortcut{point: sp.key(sp.hi), seg: i}
		default:
			continue
		}
		c.dist = gridDist(c.point, tk, n.pitch)
		if c.dist <= 0 {
			continue
		}
		if !found || c.dist < best.dist {
			best, found = c, true
		}
	}
	return best, found
}
