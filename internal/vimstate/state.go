// Package vimstate implements the modal state machine shared by every
// editable grid: Normal / OperatorPending / Visual / VisualBlock, with a
// count accumulator, operator carry-over, and dot-repeat recording.
package vimstate

import "github.com/loopbyte/seqtrack/internal/types"

type Mode int

const (
	Normal Mode = iota
	OperatorPending
	Visual
	VisualBlock
)

func (m Mode) String() string {
	switch m {
	case Normal:
		return "normal"
	case OperatorPending:
		return "operator-pending"
	case Visual:
		return "visual"
	case VisualBlock:
		return "visual-block"
	default:
		return "unknown"
	}
}

// Op is one of the three vim verbs this core supports.
type Op int

const (
	OpNone Op = iota
	OpDelete
	OpYank
	OpChange
)

// RecordedAction is what "." replays: the operator, the motion that
// closed it (or the operator letter itself for a linewise dd/yy/cc), and
// the count it ran with.
type RecordedAction struct {
	Operator Op
	Motion   string
	Count    uint32
}

// Machine is one grid's modal state. Construct a fresh Machine per grid
// instance; there is no global singleton.
type Machine struct {
	Mode        Mode
	Count       uint32
	Operator    Op
	VisualStart *types.Position
	LastAction  *RecordedAction
}

func New() *Machine {
	return &Machine{Mode: Normal}
}

// EffectiveCount is max(Count,1), the count ordinary motions run with.
func (m *Machine) EffectiveCount() int {
	if m.Count == 0 {
		return 1
	}
	return int(m.Count)
}

// RawCount is the literal accumulated count, significant for gg/G.
func (m *Machine) RawCount() int { return int(m.Count) }

// Escape resets to Normal from any mode, clearing count, operator and
// visual_start. LastAction survives an Escape.
func (m *Machine) Escape() {
	m.Mode = Normal
	m.Count = 0
	m.Operator = OpNone
	m.VisualStart = nil
}

// Digit feeds a typed digit 0-9. It returns false when the digit should
// instead be treated as the "0" motion (digit 0 with no count yet
// accumulated), per the transition table.
func (m *Machine) Digit(d int) bool {
	if d == 0 && m.Count == 0 {
		return false
	}
	m.Count = m.Count*10 + uint32(d)
	return true
}

// OpOutcome reports what happened when an operator key was pressed.
type OpOutcome int

const (
	OpEnteredPending OpOutcome = iota
	OpSwitched
	OpClosedLinewise
	OpExecutedOverVisual
)

// PressOperator applies the Op(o) transition for the current mode.
func (m *Machine) PressOperator(o Op) OpOutcome {
	switch m.Mode {
	case Normal:
		m.Operator = o
		m.Mode = OperatorPending
		return OpEnteredPending
	case OperatorPending:
		if o == m.Operator {
			return OpClosedLinewise
		}
		m.Operator = o
		m.Count = 0
		return OpSwitched
	case Visual, VisualBlock:
		return OpExecutedOverVisual
	}
	return OpEnteredPending
}

// CloseOperator records the action and resets to Normal, clearing count
// and operator but preserving LastAction (the just-recorded one).
func (m *Machine) CloseOperator(motion string, count uint32) {
	m.LastAction = &RecordedAction{Operator: m.Operator, Motion: motion, Count: count}
	m.Mode = Normal
	m.Count = 0
	m.Operator = OpNone
}

// ClearAfterMotion clears count after an ordinary (non-operator) motion
// in Normal/Visual/VisualBlock mode, per the transition table.
func (m *Machine) ClearAfterMotion() {
	m.Count = 0
}

func (m *Machine) BeginVisual(cur types.Position) {
	m.Mode = Visual
	c := cur
	m.VisualStart = &c
}

func (m *Machine) BeginVisualBlock(cur types.Position) {
	m.Mode = VisualBlock
	c := cur
	m.VisualStart = &c
}

// ToggleVisual handles the `v` key while already in a visual mode:
// cancels from Visual, switches back from VisualBlock preserving start.
func (m *Machine) ToggleVisual() {
	switch m.Mode {
	case Visual:
		m.Mode = Normal
		m.VisualStart = nil
	case VisualBlock:
		m.Mode = Visual
	}
}

// ToggleVisualBlock handles Ctrl-v while already in a visual mode:
// switches to VisualBlock from Visual preserving start, cancels from
// VisualBlock.
func (m *Machine) ToggleVisualBlock() {
	switch m.Mode {
	case Visual:
		m.Mode = VisualBlock
	case VisualBlock:
		m.Mode = Normal
		m.VisualStart = nil
	}
}
