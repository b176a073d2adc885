package internal

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestStack(t *testing.T) {
	s := NewStack(2)
	assert.NoError(t, s.Push(0x202))
	assert.NoError(t, s.Push(0x304))

	err := s.Push(0x406)
	var fault *StackFault
	assert.True(t, errors.As(err, &fault))
	assert.True(t, fault.Overflow)
	assert.Equal(t, []uint16{0x202, 0x304}, s.Frames())

	addr, err := s.Pop()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x304), addr)
	addr, err = s.Pop()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x202), addr)

	_, err = s.Pop()
	assert.True(t, errors.As(err, &fault))
	assert.False(t, fault.Overflow)
}

func TestRegistersTickTimers(t *testing.T) {
	r := Registers{DT: 1, ST: 0}
	r.TickTimers()
	assert.Equal(t, uint8(0), r.DT)
	assert.Equal(t, uint8(0), r.ST)
	r.TickTimers()
	assert.Equal(t, uint8(0), r.DT)
}

func TestRandomSequence(t *testing.T) {
	a := NewRandom(7)
	b := NewRandom(7)
	for i := 0; i < 16; i++ {
		assert.Equal(t, a.Byte(), b.Byte())
	}

	first := a.Byte()
	a.Reseed(7)
	for i := 0; i < 16; i++ {
		a.Byte()
	}
	assert.Equal(t, first, a.Byte())
	assert.Equal(t, int64(7), a.Seed())
}
