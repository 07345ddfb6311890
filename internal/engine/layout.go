package engine

import (
	"math"
	"sort"

	"github.com/piwi3910/ductcalc/internal/model"
)

// groupTolerance is the distance (m) within which outlets share a header line.
const groupTolerance = 0.1

// axisFrame maps (along, cross) coordinates onto grid keys for a trunk that
// runs horizontally or vertically.
type axisFrame struct{ vertical bool }

func (f axisFrame) split(k model.GridKey) (along, cross int) {
	if f.vertical {
		return k.J, k.I
	}
	return k.I, k.J
}

func (f axisFrame) key(along, cross int) model.GridKey {
	if f.vertical {
		return model.GridKey{I: cross, J: along}
	}
	return model.GridKey{I: along, J: cross}
}

// outletGroup is a row of outlets served by one header.
type outletGroup struct {
	cross   int
	alongs  []int
	takeoff int
}

// AutoLayout replaces the drawn segments with a generated tree: a trunk from
// the inlet along the dominant axis, one riser per row of outlets and a
// header along each row. The result is repaired like RunTopologyRepair, so
// outlets left out of the rows are still connected, and sized under p.
func (n *Network) AutoLayout(p model.SizingPolicy) error {
	if err := p.Validate(); err != nil {
		return err
	}
	inlet, ok := findInlet(n.terminals)
	if !ok {
		return ErrNoInlet
	}
	var outlets []model.GridKey
	for _, t := range n.terminals {
		if t.Kind == model.Outlet && t.Flow > 0 {
			outlets = append(outlets, model.KeyOf(t.Position, n.pitch))
		}
	}
	if len(outlets) == 0 {
		return ErrNoOutlets
	}

	n.push("Auto layout")
	n.policy = p

	ik := model.KeyOf(inlet.Position, n.pitch)
	sumDx, sumDy := 0, 0
	for _, o := range outlets {
		sumDx += abs(o.I - ik.I)
		sumDy += abs(o.J - ik.J)
	}
	frame := axisFrame{vertical: sumDy > sumDx}
	inAlong, inCross := frame.split(ik)

	groups := groupOutlets(outlets, frame, inAlong, n.pitch)

	var segs []model.Segment
	add := func(a, b model.GridKey) {
		if a != b {
			segs = append(segs, model.NewSegment(a.Point(n.pitch), b.Point(n.pitch)))
		}
	}

	lo, hi := inAlong, inAlong
	for _, g := range groups {
		lo, hi = min(lo, g.takeoff), max(hi, g.takeoff)
	}
	add(frame.key(inAlong, inCross), frame.key(lo, inCross))
	add(frame.key(inAlong, inCross), frame.key(hi, inCross))

	for _, g := range groups {
		add(frame.key(g.takeoff, inCross), frame.key(g.takeoff, g.cross))
		add(frame.key(g.takeoff, g.cross), frame.key(g.alongs[0], g.cross))
		add(frame.key(g.takeoff, g.cross), frame.key(g.alongs[len(g.alongs)-1], g.cross))
	}

	var rep RepairReport
	n.segments = n.normalize(segs, sortedKeys(terminalKeys(n.terminals, n.pitch)), &rep)
	sortSegments(n.segments, n.pitch)
	n.repairToFixedPoint(&rep)
	n.applyFlows()
	n.logger.Debug("auto layout", "vertical", frame.vertical, "groups", len(groups),
		"segments", len(n.segments), "connected", rep.Connected, "pruned", rep.Pruned)
	return nil
}

// groupOutlets clusters outlets whose cross coordinates lie within
// groupTolerance of each other. Each group's takeoff is the outlet closest
// to the inlet along the trunk.
func groupOutlets(outlets []model.GridKey, frame axisFrame, inAlong int, pitch float64) []outletGroup {
	sorted := append([]model.GridKey(nil), outlets...)
	sort.Slice(sorted, func(a, b int) bool {
		_, ca := frame.split(sorted[a])
		_, cb := frame.split(sorted[b])
		return ca < cb
	})

	tol := int(math.Floor(groupTolerance/pitch + 1e-9))
	var groups []outletGroup
	for _, o := range sorted {
		along, cross := frame.split(o)
		if len(groups) > 0 && abs(cross-groups[len(groups)-1].cross) <= tol {
			g := &groups[len(groups)-1]
			g.alongs = append(g.alongs, along)
			continue
		}
		groups = append(groups, outletGroup{cross: cross, alongs: []int{along}})
	}

	for i := range groups {
		g := &groups[i]
		sort.Ints(g.alongs)
		g.takeoff = g.alongs[0]
		for _, a := range g.alongs {
			if abs(a-inAlong) < abs(g.takeoff-inAlong) {
				g.takeoff = a
			}
		}
	}
	return groups
}
