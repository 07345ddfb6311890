// Package engine maintains an orthogonal duct network: it snaps and repairs
// the segment graph, accumulates outlet flow toward the inlet, sizes every
// segment and shortens outlet connections without breaking reachability.
//
// A Network is a single-writer object. All methods run synchronously and it
// is not safe for concurrent use; confine each Network to one owner.
package engine

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/piwi3910/ductcalc/internal/model"
	"github.com/piwi3910/ductcalc/internal/sizing"
)

// Network owns the terminals and segments of one duct design.
type Network struct {
	name      string
	createdAt string

	terminals []model.Terminal
	segments  []model.Segment
	inletFlow float64
	policy    model.SizingPolicy
	pitch     float64

	// policyPinned is set by WithPolicy; FromProject then keeps it over
	// the project's stored policy.
	policyPinned bool

	history   *History
	optimizer OptimizerConfig
	logger    *log.Logger
}

// Option configures a Network.
type Option func(*Network)

// WithPitch sets the grid pitch in meters.
func WithPitch(pitch float64) Option {
	return func(n *Network) {
		if pitch > 0 {
			n.pitch = pitch
		}
	}
}

// WithPolicy sets the sizing policy used for connectors created during repair.
// It takes precedence over the policy stored in a project.
func WithPolicy(p model.SizingPolicy) Option {
	return func(n *Network) {
		n.policy = p
		n.policyPinned = true
	}
}

// WithUndoLimit bounds the undo history.
func WithUndoLimit(limit int) Option {
	return func(n *Network) { n.history = NewHistory(limit) }
}

// WithOptimizerConfig overrides the optimizer thresholds.
func WithOptimizerConfig(c OptimizerConfig) Option {
	return func(n *Network) { n.optimizer = c }
}

// WithLogger routes engine diagnostics to l.
func WithLogger(l *log.Logger) Option {
	return func(n *Network) {
		if l != nil {
			n.logger = l
		}
	}
}

// WithConfig applies the engine-related fields of an AppConfig.
func WithConfig(cfg model.AppConfig) Option {
	return func(n *Network) {
		if cfg.GridPitch > 0 {
			n.pitch = cfg.GridPitch
		}
		n.history = NewHistory(cfg.UndoLimit)
		n.optimizer = OptimizerConfigFrom(cfg)
		n.policy = cfg.Policy()
		n.inletFlow = cfg.DefaultInletFlow
	}
}

// New creates an empty network.
func New(opts ...Option) *Network {
	n := &Network{
		createdAt: time.Now().UTC().Format(time.RFC3339),
		policy:    model.DefaultPolicy(),
		pitch:     model.DefaultPitch,
		history:   NewHistory(DefaultUndoLimit),
		optimizer: DefaultOptimizerConfig(),
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// FromProject loads a persisted project. Terminal positions are snapped and
// segments are orthogonalized; no repair is run. The project's policy is
// used unless WithPolicy was given.
func FromProject(p model.Project, opts ...Option) *Network {
	n := New(opts...)
	n.name = p.Name
	if p.CreatedAt != "" {
		n.createdAt = p.CreatedAt
	}
	if p.Pitch > 0 {
		n.pitch = p.Pitch
	}
	if p.Policy.FrictionRate > 0 && !n.policyPinned {
		n.policy = p.Policy
	}
	n.inletFlow = p.InletFlow
	n.terminals = model.CopyTerminals(p.Terminals)
	for i := range n.terminals {
		n.terminals[i].Position = Snap(n.terminals[i].Position, n.pitch)
		if n.terminals[i].Kind == model.Inlet && n.terminals[i].Flow <= 0 {
			n.terminals[i].Flow = n.inletFlow
		}
	}
	n.segments, _ = orthogonalize(p.Segments, n.pitch)
	return n
}

// Project exports the current state for persistence.
func (n *Network) Project() model.Project {
	terms := model.CopyTerminals(n.terminals)
	if terms == nil {
		terms = []model.Terminal{}
	}
	segs := model.CopySegments(n.segments)
	if segs == nil {
		segs = []model.Segment{}
	}
	return model.Project{
		Name:      n.name,
		Terminals: terms,
		Segments:  segs,
		Policy:    n.policy,
		InletFlow: n.inletFlow,
		Pitch:     n.pitch,
		CreatedAt: n.createdAt,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// SetName sets the project name used on export.
func (n *Network) SetName(name string) { n.name = name }

// Name returns the project name.
func (n *Network) Name() string { return n.name }

// Terminals returns a copy of the terminal list.
func (n *Network) Terminals() []model.Terminal { return model.CopyTerminals(n.terminals) }

// Segments returns a copy of the segment list with derived sizes.
func (n *Network) Segments() []model.Segment { return model.CopySegments(n.segments) }

// Terminal looks up a terminal by ID.
func (n *Network) Terminal(id string) (model.Terminal, bool) {
	if i := n.terminalIndex(id); i >= 0 {
		return n.terminals[i], true
	}
	return model.Terminal{}, false
}

// Inlet returns the inlet terminal if one is placed.
func (n *Network) Inlet() (model.Terminal, bool) { return findInlet(n.terminals) }

// InletFlow returns the total supply flow.
func (n *Network) InletFlow() float64 { return n.inletFlow }

// Policy returns the active sizing policy.
func (n *Network) Policy() model.SizingPolicy { return n.policy }

// Pitch returns the grid pitch in meters.
func (n *Network) Pitch() float64 { return n.pitch }

// CanUndo reports whether Undo would restore anything.
func (n *Network) CanUndo() bool { return n.history.CanUndo() }

// UndoDepth returns the number of stored snapshots.
func (n *Network) UndoDepth() int { return n.history.Len() }

func (n *Network) push(label string) {
	snap := MakeSnapshot(n.terminals, n.segments, n.inletFlow, label)
	snap.Policy = n.policy
	n.history.Push(snap)
}

// Undo restores the state from before the last mutating call.
func (n *Network) Undo() bool {
	snap, ok := n.history.Pop()
	if !ok {
		return false
	}
	n.terminals = snap.Terminals
	n.segments = snap.Segments
	n.inletFlow = snap.InletFlow
	if snap.Policy.FrictionRate > 0 {
		n.policy = snap.Policy
	}
	n.logger.Debug("undo", "action", snap.Label)
	return true
}

func (n *Network) terminalIndex(id string) int {
	for i, t := range n.terminals {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (n *Network) segmentIndex(id string) int {
	for i, s := range n.segments {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// AddTerminal places a terminal at the snapped position. An inlet placed
// with no flow adopts the network's inlet flow; one placed with a flow sets it.
func (n *Network) AddTerminal(pos model.Point, kind model.TerminalKind, flow float64) (model.Terminal, error) {
	if flow < 0 {
		return model.Terminal{}, fmt.Errorf("add %s with %g m³/h: %w", kind, flow, ErrNegativeFlow)
	}
	if kind == model.Inlet {
		if _, ok := findInlet(n.terminals); ok {
			return model.Terminal{}, ErrInletExists
		}
	}

	n.push(fmt.Sprintf("Add %s", kind))
	t := model.NewTerminal(kind, Snap(pos, n.pitch), flow)
	if kind == model.Inlet {
		if flow > 0 {
			n.inletFlow = flow
		} else {
			t.Flow = n.inletFlow
		}
	}
	n.terminals = append(n.terminals, t)
	return t, nil
}

// RemoveTerminal deletes a terminal. Segments are left in place.
func (n *Network) RemoveTerminal(id string) error {
	i := n.terminalIndex(id)
	if i < 0 {
		return fmt.Errorf("terminal %s: %w", id, ErrNotFound)
	}
	n.push("Remove terminal")
	n.terminals = append(n.terminals[:i:i], n.terminals[i+1:]...)
	return nil
}

// SetTerminalFlow changes the design flow of a terminal.
func (n *Network) SetTerminalFlow(id string, flow float64) error {
	if flow < 0 {
		return fmt.Errorf("terminal %s flow %g m³/h: %w", id, flow, ErrNegativeFlow)
	}
	i := n.terminalIndex(id)
	if i < 0 {
		return fmt.Errorf("terminal %s: %w", id, ErrNotFound)
	}
	n.push("Set terminal flow")
	n.terminals[i].Flow = flow
	if n.terminals[i].Kind == model.Inlet {
		n.inletFlow = flow
	}
	return nil
}

// SetInletFlow sets the total supply flow and the inlet terminal's flow.
func (n *Network) SetInletFlow(flow float64) error {
	if flow < 0 {
		return fmt.Errorf("inlet flow %g m³/h: %w", flow, ErrNegativeFlow)
	}
	n.push("Set inlet flow")
	n.inletFlow = flow
	for i := range n.terminals {
		if n.terminals[i].Kind == model.Inlet {
			n.terminals[i].Flow = flow
		}
	}
	return nil
}

// RemainingFlow is the inlet flow not yet assigned to outlets.
func (n *Network) RemainingFlow() float64 {
	remaining := n.inletFlow
	for _, t := range n.terminals {
		if t.Kind == model.Outlet {
			remaining -= t.Flow
		}
	}
	return remaining
}

// DistributeEqualFlow divides the inlet flow equally among all outlets.
func (n *Network) DistributeEqualFlow() error {
	if n.inletFlow <= 0 {
		return fmt.Errorf("distribute flow: inlet flow is %g m³/h: %w", n.inletFlow, ErrNoInlet)
	}
	count := 0
	for _, t := range n.terminals {
		if t.Kind == model.Outlet {
			count++
		}
	}
	if count == 0 {
		return ErrNoOutlets
	}
	n.push("Distribute equal flow")
	each := n.inletFlow / float64(count)
	for i := range n.terminals {
		if n.terminals[i].Kind == model.Outlet {
			n.terminals[i].Flow = each
		}
	}
	return nil
}

// AddRawSegment adds a freehand stroke. Its orientation follows the dominant
// axis of the stroke and it is straightened and snapped onto the grid.
func (n *Network) AddRawSegment(p1, p2 model.Point) (model.Segment, error) {
	s := model.NewSegment(p1, p2)
	s.Orientation = model.ClassifyOrientation(p1, p2)
	norm, _ := orthogonalize([]model.Segment{s}, n.pitch)
	if len(norm) == 0 {
		return model.Segment{}, fmt.Errorf("segment %v-%v: %w", p1, p2, ErrDegenerateSegment)
	}
	s = norm[0]
	s.WidthMM, s.HeightMM, s.Label = sizing.PerformSizing(0, n.policy)

	n.push("Draw segment")
	n.segments = append(n.segments, s)
	return s, nil
}

// RemoveSegment erases a segment.
func (n *Network) RemoveSegment(id string) error {
	i := n.segmentIndex(id)
	if i < 0 {
		return fmt.Errorf("segment %s: %w", id, ErrNotFound)
	}
	n.push("Erase segment")
	n.segments = append(n.segments[:i:i], n.segments[i+1:]...)
	return nil
}

// Clear removes every terminal and segment.
func (n *Network) Clear() {
	n.push("Clear")
	n.terminals = nil
	n.segments = nil
}

// MergeCollinear joins straight pass-through runs into single segments and
// resizes them. It returns the number of merges.
func (n *Network) MergeCollinear() int {
	n.push("Merge collinear")
	merged, count := mergeCollinear(n.segments, terminalKeys(n.terminals, n.pitch), n.pitch)
	for i := range merged {
		merged[i].WidthMM, merged[i].HeightMM, merged[i].Label = sizing.PerformSizing(merged[i].Flow, n.policy)
	}
	n.segments = merged
	n.logger.Debug("merged collinear runs", "count", count)
	return count
}
