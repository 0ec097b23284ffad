// Package motion implements the grid-semantics default motions
// (h/j/k/l/w/b/e/0/$/gg/G) parameterized by a grid's declared zones, and
// the construction of operator ranges from a motion result.
package motion

import "github.com/loopbyte/seqtrack/internal/types"

// Grid describes the dimensions and zone layout a set of motions runs
// over. Zones must be ordered by ascending column and partition
// [0, Cols-1]; exactly one zone should have IsMain set.
type Grid struct {
	Rows, Cols int
	Zones      []types.Zone
	// Custom overrides win over the corresponding default motion name.
	Custom map[string]func(cur types.Position, count, rawCount int) (Result, bool)
}

// Result is what executing a motion yields.
type Result struct {
	Pos       types.Position
	Linewise  bool
	Inclusive bool
	Defined   bool
}

func (g *Grid) mainZone() (types.Zone, int) {
	for i, z := range g.Zones {
		if z.IsMain {
			return z, i
		}
	}
	if len(g.Zones) > 0 {
		return g.Zones[0], 0
	}
	return types.Zone{C0: 0, C1: g.Cols - 1, IsMain: true}, 0
}

func (g *Grid) zoneAt(col int) (types.Zone, int) {
	for i, z := range g.Zones {
		if z.Contains(col) {
			return z, i
		}
	}
	return g.mainZone()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (g *Grid) stepH(cur types.Position, dir, count int) types.Position {
	col := cur.Col
	for i := 0; i < count; i++ {
		zone, idx := g.zoneAt(col)
		if dir < 0 {
			if col > zone.C0 {
				col--
			} else if idx > 0 {
				col = g.Zones[idx-1].C1
			}
		} else {
			if col < zone.C1 {
				col++
			} else if idx < len(g.Zones)-1 {
				col = g.Zones[idx+1].C0
			}
		}
	}
	return types.Position{Row: cur.Row, Col: col}
}

func isWordStart(z types.Zone, c int) bool {
	if c <= z.C0 {
		return false
	}
	if z.WordInterval > 0 && (c-z.C0)%z.WordInterval == 0 {
		return true
	}
	if z.HasContent != nil {
		return !z.HasContent(c-1) && z.HasContent(c)
	}
	return false
}

func (g *Grid) nextWordStart(z types.Zone, col int) int {
	for c := col + 1; c <= z.C1; c++ {
		if isWordStart(z, c) {
			return c
		}
	}
	return z.C1
}

func (g *Grid) prevWordStart(z types.Zone, col int) int {
	c := col
	if z.HasContent != nil && c > z.C0 && z.HasContent(c) {
		for c > z.C0 && z.HasContent(c-1) {
			c--
		}
		if c < col {
			return c
		}
	}
	for cc := col - 1; cc >= z.C0; cc-- {
		if isWordStart(z, cc) {
			return cc
		}
	}
	return z.C0
}

func (g *Grid) endOfWord(z types.Zone, col int) int {
	c := col
	if z.HasContent == nil {
		return clamp(col+1, z.C0, z.C1)
	}
	if z.HasContent(c) {
		for c < z.C1 && z.HasContent(c+1) {
			c++
		}
		return c
	}
	for c < z.C1 && !z.HasContent(c+1) {
		c++
	}
	if c < z.C1 {
		c++
	}
	for c < z.C1 && z.HasContent(c+1) {
		c++
	}
	return c
}

// Execute runs the named motion. rawCount is the literal accumulated
// count (0 if none typed); count is max(rawCount,1) except for gg/G,
// which consult rawCount directly to distinguish "no count" from "1".
func (g *Grid) Execute(name string, cur types.Position, count, rawCount int) Result {
	if g.Custom != nil {
		if fn, ok := g.Custom[name]; ok {
			return firstOf(fn(cur, count, rawCount))
		}
	}
	switch name {
	case "h":
		return Result{Pos: g.stepH(cur, -1, count), Defined: true}
	case "l":
		return Result{Pos: g.stepH(cur, 1, count), Defined: true}
	case "j":
		return Result{Pos: types.Position{Row: clamp(cur.Row+count, 0, g.Rows-1), Col: cur.Col}, Linewise: true, Defined: true}
	case "k":
		return Result{Pos: types.Position{Row: clamp(cur.Row-count, 0, g.Rows-1), Col: cur.Col}, Linewise: true, Defined: true}
	case "0":
		z, _ := g.mainZone()
		return Result{Pos: types.Position{Row: cur.Row, Col: z.C0}, Defined: true}
	case "$":
		z, _ := g.mainZone()
		return Result{Pos: types.Position{Row: cur.Row, Col: z.C1}, Inclusive: true, Defined: true}
	case "w":
		z, _ := g.zoneAt(cur.Col)
		col := cur.Col
		for i := 0; i < count; i++ {
			next := g.nextWordStart(z, col)
			if next == col {
				break
			}
			col = next
		}
		return Result{Pos: types.Position{Row: cur.Row, Col: col}, Defined: true}
	case "b":
		z, _ := g.zoneAt(cur.Col)
		col := cur.Col
		for i := 0; i < count; i++ {
			col = g.prevWordStart(z, col)
		}
		return Result{Pos: types.Position{Row: cur.Row, Col: col}, Defined: true}
	case "e":
		z, _ := g.zoneAt(cur.Col)
		col := cur.Col
		for i := 0; i < count; i++ {
			col = g.endOfWord(z, col)
		}
		return Result{Pos: types.Position{Row: cur.Row, Col: col}, Inclusive: true, Defined: true}
	case "gg":
		row := 0
		if rawCount > 0 {
			row = clamp(rawCount-1, 0, g.Rows-1)
		}
		return Result{Pos: types.Position{Row: row, Col: cur.Col}, Linewise: true, Defined: true}
	case "G":
		row := g.Rows - 1
		if rawCount > 0 {
			row = clamp(rawCount-1, 0, g.Rows-1)
		}
		return Result{Pos: types.Position{Row: row, Col: cur.Col}, Linewise: true, Defined: true}
	}
	return Result{Defined: false}
}

func firstOf(r Result, ok bool) Result {
	if !ok {
		return Result{Defined: false}
	}
	return r
}

// BuildOperatorRange turns a cursor position and a motion result into the
// Range an operator acts on, per the forward/backward/linewise rules and
// the dw-at-end-of-row vim-parity special case.
func BuildOperatorRange(cur types.Position, res Result, motionName string, cols int) types.Range {
	if res.Linewise {
		lo, hi := cur.Row, res.Pos.Row
		if lo > hi {
			lo, hi = hi, lo
		}
		return types.Range{
			Start: types.Position{Row: lo, Col: 0},
			End:   types.Position{Row: hi, Col: cols - 1},
			Kind:  types.RangeLine,
		}
	}

	forward := cur.Less(res.Pos) || cur == res.Pos

	if motionName == "w" && res.Pos.Row > cur.Row {
		return types.Range{
			Start: cur,
			End:   types.Position{Row: cur.Row, Col: cols - 1},
			Kind:  types.RangeChar,
		}
	}

	if forward {
		end := res.Pos
		if !res.Inclusive && end.Col > cur.Col {
			end.Col--
		}
		if end.Row == cur.Row && end.Col < cur.Col {
			end = cur
		}
		return types.Range{Start: cur, End: end, Kind: types.RangeChar}
	}

	return types.Range{Start: res.Pos, End: cur, Kind: types.RangeChar}
}
