// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package pool implements fixed-capacity slot pools addressed by
// generation-checked 32-bit IDs.
//
// A Pool never grows. Slot 0 is reserved so that the zero ID never
// resolves, and every slot carries a generation counter that is bumped
// when the slot is freed. An ID captured before its slot was freed and
// reused carries a stale generation and fails to resolve.
//
// Pools are not safe for concurrent use.
package pool

import (
	"errors"
	"fmt"
)

// MaxCapacity is the largest number of usable slots a Pool can hold.
// The index field of an ID is 16 bits wide and index 0 is reserved.
const MaxCapacity = 1<<indexBits - 1

const (
	indexBits = 16
	indexMask = 1<<indexBits - 1
)

var (
	// ErrExhausted is returned by Alloc when every slot is in use.
	ErrExhausted = errors.New("pool: exhausted")

	// ErrCapacity is returned by New for a capacity outside [1, MaxCapacity].
	ErrCapacity = errors.New("pool: invalid capacity")
)

// ID identifies one allocation of one slot. The low 16 bits hold the slot
// index and the high 16 bits the slot generation at allocation time.
type ID uint32

// Invalid is the zero ID. It never resolves.
const Invalid ID = 0

// MakeID packs a slot index and generation into an ID.
func MakeID(index, generation uint16) ID {
	return ID(uint32(generation)<<indexBits | uint32(index))
}

// Index returns the slot index.
func (id ID) Index() uint16 { return uint16(uint32(id) & indexMask) }

// Generation returns the generation the slot had when id was allocated.
func (id ID) Generation() uint16 { return uint16(uint32(id) >> indexBits) }

// IsZero reports whether id is the invalid ID.
func (id ID) IsZero() bool { return id == Invalid }

func (id ID) String() string {
	if id == Invalid {
		return "invalid"
	}
	return fmt.Sprintf("%d:%d", id.Index(), id.Generation())
}

// State is the lifecycle state of a slot.
type State uint8

const (
	// StateInitial marks an unused slot sitting in the free list.
	StateInitial State = iota
	// StateAlloc marks a reserved slot whose payload is not yet built.
	StateAlloc
	// StateValid marks a slot with a successfully built payload.
	StateValid
	// StateFailed marks a slot whose construction was rejected.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateAlloc:
		return "alloc"
	case StateValid:
		return "valid"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// NeverUpdated is the UpdateFrame value of a slot that has not been
// updated since it was allocated.
const NeverUpdated = ^uint64(0)

// Slot is a single pool entry.
type Slot[T any] struct {
	State      State
	Generation uint16
	Payload    T

	// UpdateFrame is the frame index of the last in-place update.
	UpdateFrame uint64
}

// Pool is a fixed array of slots plus a free list of unused indices.
type Pool[T any] struct {
	slots []Slot[T]
	free  []uint16
}

// New creates a pool with capacity usable slots.
func New[T any](capacity int) (*Pool[T], error) {
	if capacity < 1 || capacity > MaxCapacity {
		return nil, fmt.Errorf("%w: %d", ErrCapacity, capacity)
	}
	p := &Pool[T]{
		slots: make([]Slot[T], capacity+1),
		free:  make([]uint16, 0, capacity),
	}
	// Pushed in reverse so the first Alloc hands out index 1.
	for i := capacity; i >= 1; i-- {
		p.slots[i].Generation = 1
		p.free = append(p.free, uint16(i))
	}
	return p, nil
}

// Capacity returns the number of usable slots.
func (p *Pool[T]) Capacity() int { return len(p.slots) - 1 }

// Len returns the number of allocated slots.
func (p *Pool[T]) Len() int { return p.Capacity() - len(p.free) }

// Available returns the number of slots available to Alloc.
func (p *Pool[T]) Available() int { return len(p.free) }

// Alloc reserves a slot, moves it to StateAlloc and returns its ID.
// The slot generation is left unchanged.
func (p *Pool[T]) Alloc() (ID, error) {
	n := len(p.free)
	if n == 0 {
		return Invalid, ErrExhausted
	}
	index := p.free[n-1]
	p.free = p.free[:n-1]

	s := &p.slots[index]
	s.State = StateAlloc
	s.UpdateFrame = NeverUpdated
	return MakeID(index, s.Generation), nil
}

// Lookup resolves id to its slot. It returns nil if id is zero, its index
// is out of range, the slot is free, or the generation does not match.
func (p *Pool[T]) Lookup(id ID) *Slot[T] {
	index := int(id.Index())
	if index == 0 || index >= len(p.slots) {
		return nil
	}
	s := &p.slots[index]
	if s.State == StateInitial || s.Generation != id.Generation() {
		return nil
	}
	return s
}

// Free returns the slot addressed by id to the free list and hands the
// old payload back to the caller for disposal. It reports false and does
// nothing if id does not resolve, so freeing twice is harmless.
func (p *Pool[T]) Free(id ID) (T, bool) {
	var zero T
	s := p.Lookup(id)
	if s == nil {
		return zero, false
	}
	payload := s.Payload
	s.Payload = zero
	s.State = StateInitial
	s.UpdateFrame = NeverUpdated
	s.Generation++
	if s.Generation == 0 {
		s.Generation = 1
	}
	p.free = append(p.free, id.Index())
	return payload, true
}

// Each calls fn for every allocated slot in index order. fn must not
// allocate or free slots.
func (p *Pool[T]) Each(fn func(id ID, s *Slot[T])) {
	for i := 1; i < len(p.slots); i++ {
		s := &p.slots[i]
		if s.State == StateInitial {
			continue
		}
		fn(MakeID(uint16(i), s.Generation), s)
	}
}

// Count returns the number of slots in state st.
func (p *Pool[T]) Count(st State) int {
	if st == StateInitial {
		return len(p.free)
	}
	n := 0
	for i := 1; i < len(p.slots); i++ {
		if p.slots[i].State == st {
			n++
		}
	}
	return n
}
