package register

import (
	"testing"

	"github.com/loopbyte/seqtrack/internal/types"
	"github.com/stretchr/testify/assert"
)

func content(tag string, v int) types.RegisterContent {
	return types.RegisterContent{Data: v, Kind: types.RangeChar, TypeTag: tag}
}

func TestYankWritesUnnamedAndZero(t *testing.T) {
	s := New()
	s.Yank(content("steps", 1), "")

	unnamed, ok := s.Get(Unnamed)
	assert.True(t, ok)
	assert.Equal(t, content("steps", 1), unnamed)

	zero, ok := s.Get(Yank)
	assert.True(t, ok)
	assert.Equal(t, content("steps", 1), zero)
}

func TestYankExplicitRegister(t *testing.T) {
	s := New()
	s.Yank(content("steps", 5), "a")

	a, ok := s.Get("a")
	assert.True(t, ok)
	assert.Equal(t, content("steps", 5), a)
}

func TestDeleteShiftsHistory(t *testing.T) {
	s := New()
	s.Delete(content("steps", 1))
	s.Delete(content("steps", 2))
	s.Delete(content("steps", 3))

	one, _ := s.Get("1")
	two, _ := s.Get("2")
	three, _ := s.Get("3")
	assert.Equal(t, content("steps", 3), one)
	assert.Equal(t, content("steps", 2), two)
	assert.Equal(t, content("steps", 1), three)

	unnamed, _ := s.Get(Unnamed)
	assert.Equal(t, content("steps", 3), unnamed)
}

func TestDeleteNeverTouchesRegisterZero(t *testing.T) {
	s := New()
	s.Yank(content("steps", 9), "")
	s.Delete(content("steps", 1))

	zero, ok := s.Get(Yank)
	assert.True(t, ok)
	assert.Equal(t, content("steps", 9), zero)
}

func TestDeleteDropsRegisterNine(t *testing.T) {
	s := New()
	for i := 1; i <= 9; i++ {
		s.Delete(content("steps", i))
	}
	// after 9 deletes, register 9 should hold the first delete (value 1)
	nine, ok := s.Get("9")
	assert.True(t, ok)
	assert.Equal(t, content("steps", 1), nine)

	s.Delete(content("steps", 10))
	nine, ok = s.Get("9")
	assert.True(t, ok)
	assert.Equal(t, content("steps", 2), nine)
}

// Yank then delete leaves register 0 untouched, the unnamed register
// and register 1 equal the delete, and registers 2..9 equal the
// pre-delete 1..8.
func TestYankDeleteLaw(t *testing.T) {
	s := New()
	s.Yank(content("steps", 100), "")
	for i := 1; i <= 8; i++ {
		s.Delete(content("steps", i))
	}
	preDelete := make(map[string]types.RegisterContent)
	for i := 1; i <= 8; i++ {
		v, _ := s.Get(itoa(i))
		preDelete[itoa(i)] = v
	}

	s.Delete(content("steps", 999))

	unnamed, _ := s.Get(Unnamed)
	assert.Equal(t, content("steps", 999), unnamed)
	one, _ := s.Get("1")
	assert.Equal(t, content("steps", 999), one)
	zero, _ := s.Get(Yank)
	assert.Equal(t, content("steps", 100), zero)
	for i := 2; i <= 9; i++ {
		got, _ := s.Get(itoa(i))
		assert.Equal(t, preDelete[itoa(i-1)], got)
	}
}
