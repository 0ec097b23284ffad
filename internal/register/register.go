// Package register implements the process-wide vim-style register store:
// the unnamed register ("), the yank register (0) and the delete history
// (1-9), with the shift-on-delete semantics vim itself uses.
package register

import "github.com/loopbyte/seqtrack/internal/types"

const (
	Unnamed = `"`
	Yank    = "0"
)

// Store holds named register contents. It is not safe for concurrent use
// from more than one goroutine; the core touches it only from the UI
// thread, per the single-threaded editing model.
type Store struct {
	slots map[string]types.RegisterContent
}

// New constructs an empty register store. Callers build one per App
// instance rather than relying on a package-level singleton, so tests get
// a fresh store each time.
func New() *Store {
	return &Store{slots: make(map[string]types.RegisterContent)}
}

// Get reads a register by name, defaulting to the unnamed register when
// name is empty. The zero value is returned, with ok=false, if nothing
// has ever been written there.
func (s *Store) Get(name string) (types.RegisterContent, bool) {
	if name == "" {
		name = Unnamed
	}
	c, ok := s.slots[name]
	return c, ok
}

// Yank writes content to the unnamed and yank registers, and additionally
// to an explicitly selected register if one was named.
func (s *Store) Yank(content types.RegisterContent, explicit string) {
	s.slots[Unnamed] = content
	s.slots[Yank] = content
	if explicit != "" && explicit != Unnamed && explicit != Yank {
		s.slots[explicit] = content
	}
}

// Delete records deleted content: shifts 1->2, ..., 8->9 (dropping prior
// 9), writes the new content to 1 and the unnamed register. Register 0 is
// never touched by a delete.
func (s *Store) Delete(content types.RegisterContent) {
	for n := 9; n >= 2; n-- {
		prev, ok := s.slots[itoa(n-1)]
		if ok {
			s.slots[itoa(n)] = prev
		}
	}
	s.slots["1"] = content
	s.slots[Unnamed] = content
}

func itoa(n int) string {
	return string(rune('0' + n))
}
