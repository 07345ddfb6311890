package engine

import "github.com/piwi3910/ductcalc/internal/model"

// DefaultUndoLimit is the number of snapshots kept before the oldest is dropped.
const DefaultUndoLimit = 100

// Snapshot captures the terminal and segment state at a point in time,
// together with the policy the segments were sized under.
type Snapshot struct {
	Terminals []model.Terminal
	Segments  []model.Segment
	InletFlow float64
	Policy    model.SizingPolicy
	Label     string // Human-readable description (e.g. "Run topology repair")
}

// History is a bounded undo stack of network snapshots.
type History struct {
	stack    []Snapshot
	maxDepth int
}

// NewHistory creates a History holding at most limit snapshots.
// A non-positive limit uses DefaultUndoLimit.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultUndoLimit
	}
	return &History{maxDepth: limit}
}

// Push saves a snapshot. It must be called before the modification is applied.
func (h *History) Push(s Snapshot) {
	h.stack = append(h.stack, s)
	if len(h.stack) > h.maxDepth {
		h.stack = h.stack[len(h.stack)-h.maxDepth:]
	}
}

// Pop removes and returns the most recent snapshot, or false if empty.
func (h *History) Pop() (Snapshot, bool) {
	if len(h.stack) == 0 {
		return Snapshot{}, false
	}
	last := h.stack[len(h.stack)-1]
	h.stack = h.stack[:len(h.stack)-1]
	return last, true
}

// CanUndo returns true if there is at least one snapshot to restore.
func (h *History) CanUndo() bool {
	return len(h.stack) > 0
}

// Len returns the number of stored snapshots.
func (h *History) Len() int {
	return len(h.stack)
}

// Labels returns the snapshot labels, oldest first.
func (h *History) Labels() []string {
	out := make([]string, len(h.stack))
	for i, s := range h.stack {
		out[i] = s.Label
	}
	return out
}

// Clear removes all history.
func (h *History) Clear() {
	h.stack = nil
}

// MakeSnapshot deep-copies the given state with a label.
func MakeSnapshot(terminals []model.Terminal, segments []model.Segment, inletFlow float64, label string) Snapshot {
	return Snapshot{
		Terminals: model.CopyTerminals(terminals),
		Segments:  model.CopySegments(segments),
		InletFlow: inletFlow,
		Label:     label,
	}
}
