// Package jumplist implements the bounded positional history used by
// Ctrl-o / Ctrl-i navigation.
package jumplist

import "github.com/loopbyte/seqtrack/internal/types"

const maxEntries = 100

// List is a process-wide (one per App) jump history with a cursor.
type List struct {
	entries []types.Position
	cursor  int // index of the "current" entry; -1 when empty
}

func New() *List {
	return &List{cursor: -1}
}

// Push appends p unless it equals the current entry, truncating any
// forward history. Oldest entries are dropped once the list exceeds
// maxEntries.
func (l *List) Push(p types.Position) {
	if l.cursor >= 0 && l.cursor < len(l.entries) && l.entries[l.cursor] == p {
		return
	}
	if l.cursor < len(l.entries)-1 {
		l.entries = l.entries[:l.cursor+1]
	}
	l.entries = append(l.entries, p)
	l.cursor = len(l.entries) - 1
	if len(l.entries) > maxEntries {
		drop := len(l.entries) - maxEntries
		l.entries = l.entries[drop:]
		l.cursor -= drop
	}
}

// Back moves the cursor one step back and returns the position there, or
// (zero, false) at the boundary.
func (l *List) Back() (types.Position, bool) {
	if l.cursor <= 0 {
		return types.Position{}, false
	}
	l.cursor--
	return l.entries[l.cursor], true
}

// Forward moves the cursor one step forward and returns the position
// there, or (zero, false) at the boundary.
func (l *List) Forward() (types.Position, bool) {
	if l.cursor < 0 || l.cursor >= len(l.entries)-1 {
		return types.Position{}, false
	}
	l.cursor++
	return l.entries[l.cursor], true
}

func (l *List) Len() int { return len(l.entries) }
