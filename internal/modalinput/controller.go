// Package modalinput wires key events through the vim state machine and
// the grid's motions into operator execution, register/jumplist effects,
// and dot-repeat.
package modalinput

import (
	"github.com/loopbyte/seqtrack/internal/jumplist"
	"github.com/loopbyte/seqtrack/internal/motion"
	"github.com/loopbyte/seqtrack/internal/register"
	"github.com/loopbyte/seqtrack/internal/types"
	"github.com/loopbyte/seqtrack/internal/vimstate"
)

// Key is one keypress, decoupled from any particular terminal library.
type Key struct {
	Rune  rune
	Name  string // "escape", "enter", "tab", "up", "down", "left", "right"; empty for a plain rune
	Ctrl  bool
	Shift bool
	Meta  bool
}

// Ops is what a focused grid exposes to the controller: reading/mutating
// its cells and handling events the controller itself has no opinion
// about.
type Ops interface {
	GetDataInRange(rng types.Range) types.RegisterContent
	DeleteRange(rng types.Range) types.RegisterContent
	InsertData(pos types.Position, content types.RegisterContent)
	OnEscape(prevMode vimstate.Mode)
	OnCustomAction(r rune, count int) bool
}

// Controller owns one grid's cursor and dispatches keys through the
// shared Machine, Motions, Registers and Jumplist.
type Controller struct {
	Machine   *vimstate.Machine
	Motions   *motion.Grid
	Registers *register.Store
	Jumplist  *jumplist.List
	Ops       Ops
	Cursor    types.Position

	pendingG bool
}

func New(motions *motion.Grid, regs *register.Store, jl *jumplist.List, ops Ops) *Controller {
	return &Controller{
		Machine:   vimstate.New(),
		Motions:   motions,
		Registers: regs,
		Jumplist:  jl,
		Ops:       ops,
	}
}

func opForRune(r rune) (vimstate.Op, bool) {
	switch r {
	case 'd':
		return vimstate.OpDelete, true
	case 'y':
		return vimstate.OpYank, true
	case 'c':
		return vimstate.OpChange, true
	}
	return vimstate.OpNone, false
}

func opLetter(op vimstate.Op) string {
	switch op {
	case vimstate.OpDelete:
		return "d"
	case vimstate.OpYank:
		return "y"
	case vimstate.OpChange:
		return "c"
	}
	return ""
}

// HandleKey runs the ordered key-handling algorithm against one keypress.
// Errors are always structural: an unhandled or malformed input resolves
// to a silent no-op, never a Go error value.
func (c *Controller) HandleKey(k Key) bool {
	// Step 1: Escape.
	if k.Name == "escape" {
		prev := c.Machine.Mode
		c.Machine.Escape()
		c.pendingG = false
		c.Ops.OnEscape(prev)
		return true
	}

	// Step 2: digit accumulation.
	if k.Rune >= '0' && k.Rune <= '9' {
		d := int(k.Rune - '0')
		if d != 0 || c.Machine.Count > 0 {
			c.Machine.Digit(d)
			return true
		}
	}

	// Step 3: operator letters d/y/c.
	if op, ok := opForRune(k.Rune); ok && !c.pendingG {
		return c.handleOperatorKey(op)
	}

	// Step 4: visual toggles.
	if k.Rune == 'v' && !k.Ctrl {
		switch c.Machine.Mode {
		case vimstate.Normal:
			c.Machine.BeginVisual(c.Cursor)
		default:
			c.Machine.ToggleVisual()
		}
		return true
	}
	if k.Ctrl && k.Rune == 'v' {
		switch c.Machine.Mode {
		case vimstate.Normal:
			c.Machine.BeginVisualBlock(c.Cursor)
		default:
			c.Machine.ToggleVisualBlock()
		}
		return true
	}

	// Step 5: paste.
	if k.Rune == 'p' || k.Rune == 'P' {
		content, ok := c.Registers.Get("")
		if !ok {
			return true
		}
		pos := c.Cursor
		if k.Rune == 'p' {
			pos.Col++
		}
		c.Ops.InsertData(pos, content)
		return true
	}

	// Step 6: jumplist navigation.
	if k.Ctrl && k.Rune == 'o' {
		if pos, ok := c.Jumplist.Back(); ok {
			c.Cursor = pos
		}
		return true
	}
	if k.Ctrl && k.Rune == 'i' {
		if pos, ok := c.Jumplist.Forward(); ok {
			c.Cursor = pos
		}
		return true
	}

	// Step 7: motion keys.
	if name, ok := c.motionName(k); ok {
		return c.handleMotion(name)
	}

	// Step 8: dot-repeat.
	if k.Rune == '.' {
		c.repeatLastAction()
		return true
	}

	// Step 9: offer to the grid.
	if c.Ops.OnCustomAction(k.Rune, c.Machine.EffectiveCount()) {
		c.Machine.Count = 0
		return true
	}
	return false
}

func (c *Controller) motionName(k Key) (string, bool) {
	switch k.Name {
	case "up":
		return "k", true
	case "down":
		return "j", true
	case "left":
		return "h", true
	case "right":
		return "l", true
	}
	switch k.Rune {
	case 'h', 'j', 'k', 'l', 'w', 'b', 'e':
		return string(k.Rune), true
	case '0', '$':
		return string(k.Rune), true
	case 'g':
		if c.pendingG {
			c.pendingG = false
			return "gg", true
		}
		c.pendingG = true
		return "", false
	case 'G':
		return "G", true
	}
	return "", false
}

func (c *Controller) handleOperatorKey(op vimstate.Op) bool {
	switch c.Machine.Mode {
	case vimstate.Visual, vimstate.VisualBlock:
		rng := c.visualRange()
		c.applyOperator(op, rng)
		c.Machine.Escape()
		return true
	case vimstate.OperatorPending:
		if op == c.Machine.Operator {
			count := c.Machine.EffectiveCount()
			rng := c.linewiseRows(count)
			c.applyOperator(op, rng)
			c.Machine.CloseOperator(opLetter(op), uint32(count))
			return true
		}
		c.Machine.PressOperator(op)
		return true
	default:
		c.Machine.PressOperator(op)
		return true
	}
}

func (c *Controller) linewiseRows(count int) types.Range {
	endRow := c.Cursor.Row + count - 1
	if endRow > c.Motions.Rows-1 {
		endRow = c.Motions.Rows - 1
	}
	return types.Range{
		Start: types.Position{Row: c.Cursor.Row, Col: 0},
		End:   types.Position{Row: endRow, Col: c.Motions.Cols - 1},
		Kind:  types.RangeLine,
	}
}

func (c *Controller) visualRange() types.Range {
	start := c.Cursor
	if c.Machine.VisualStart != nil {
		start = *c.Machine.VisualStart
	}
	kind := types.RangeChar
	if c.Machine.Mode == vimstate.VisualBlock {
		kind = types.RangeBlock
	}
	lo, hi := start, c.Cursor
	if hi.Less(lo) {
		lo, hi = hi, lo
	}
	return types.Range{Start: lo, End: hi, Kind: kind}
}

func (c *Controller) handleMotion(name string) bool {
	res := c.Motions.Execute(name, c.Cursor, c.Machine.EffectiveCount(), c.Machine.RawCount())
	if !res.Defined {
		c.Machine.Escape()
		return true
	}

	switch c.Machine.Mode {
	case vimstate.OperatorPending:
		rng := motion.BuildOperatorRange(c.Cursor, res, name, c.Motions.Cols)
		count := c.Machine.EffectiveCount()
		c.applyOperator(c.Machine.Operator, rng)
		c.Machine.CloseOperator(name, uint32(count))
		c.Cursor = rng.Start
	case vimstate.Visual, vimstate.VisualBlock:
		c.Cursor = res.Pos
		c.Machine.ClearAfterMotion()
	default:
		if name == "gg" || name == "G" {
			c.Jumplist.Push(c.Cursor)
		}
		c.Cursor = res.Pos
		c.Machine.ClearAfterMotion()
	}
	return true
}

func (c *Controller) applyOperator(op vimstate.Op, rng types.Range) {
	switch op {
	case vimstate.OpDelete, vimstate.OpChange:
		content := c.Ops.DeleteRange(rng)
		content.Kind = rng.Kind
		c.Registers.Delete(content)
	case vimstate.OpYank:
		content := c.Ops.GetDataInRange(rng)
		content.Kind = rng.Kind
		c.Registers.Yank(content, "")
	}
}

func (c *Controller) repeatLastAction() {
	la := c.Machine.LastAction
	if la == nil {
		return
	}
	count := la.Count
	if c.Machine.Count > 0 {
		count = c.Machine.Count
	}
	if letterOp, ok := opForRune(rune(la.Motion[0])); ok && la.Motion == opLetter(letterOp) {
		rng := c.linewiseRows(int(count))
		c.applyOperator(la.Operator, rng)
	} else {
		res := c.Motions.Execute(la.Motion, c.Cursor, int(count), int(count))
		if res.Defined {
			rng := motion.BuildOperatorRange(c.Cursor, res, la.Motion, c.Motions.Cols)
			c.applyOperator(la.Operator, rng)
			c.Cursor = rng.Start
		}
	}
	c.Machine.Count = 0
}
