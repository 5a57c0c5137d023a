// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pool

import (
	"errors"
	"testing"
)

func newPool(t *testing.T, capacity int) *Pool[string] {
	t.Helper()
	p, err := New[string](capacity)
	if err != nil {
		t.Fatalf("New(%d) error = %v", capacity, err)
	}
	return p
}

func TestNewCapacity(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		wantErr  bool
	}{
		{"zero", 0, true},
		{"negative", -1, true},
		{"one", 1, false},
		{"max", MaxCapacity, false},
		{"over max", MaxCapacity + 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New[int](tt.capacity)
			if tt.wantErr {
				if !errors.Is(err, ErrCapacity) {
					t.Fatalf("New(%d) error = %v, want ErrCapacity", tt.capacity, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New(%d) error = %v", tt.capacity, err)
			}
			if p.Capacity() != tt.capacity {
				t.Errorf("Capacity() = %d, want %d", p.Capacity(), tt.capacity)
			}
			if p.Available() != tt.capacity {
				t.Errorf("Available() = %d, want %d", p.Available(), tt.capacity)
			}
		})
	}
}

func TestIDPacking(t *testing.T) {
	id := MakeID(0x1234, 0xBEEF)
	if id.Index() != 0x1234 {
		t.Errorf("Index() = %#x, want 0x1234", id.Index())
	}
	if id.Generation() != 0xBEEF {
		t.Errorf("Generation() = %#x, want 0xbeef", id.Generation())
	}
	if uint32(id) != 0xBEEF1234 {
		t.Errorf("ID = %#x, want 0xbeef1234", uint32(id))
	}
	if !Invalid.IsZero() || id.IsZero() {
		t.Error("IsZero mismatch")
	}
	if Invalid.String() != "invalid" {
		t.Errorf("Invalid.String() = %q", Invalid.String())
	}
	if got := MakeID(3, 2).String(); got != "3:2" {
		t.Errorf("String() = %q, want 3:2", got)
	}
}

func TestZeroIDNeverResolves(t *testing.T) {
	p := newPool(t, 4)
	if p.Lookup(Invalid) != nil {
		t.Fatal("Lookup(Invalid) resolved on fresh pool")
	}
	for range 4 {
		if _, err := p.Alloc(); err != nil {
			t.Fatalf("Alloc() error = %v", err)
		}
	}
	if p.Lookup(Invalid) != nil {
		t.Fatal("Lookup(Invalid) resolved on full pool")
	}
	if p.Lookup(MakeID(0, 1)) != nil {
		t.Fatal("slot 0 resolved")
	}
}

func TestAllocSetsStateAndKeepsGeneration(t *testing.T) {
	p := newPool(t, 2)
	id, err := p.Alloc()
	if err != nil {
		t.Fatalf("Alloc() error = %v", err)
	}
	if id.IsZero() {
		t.Fatal("Alloc() returned zero ID")
	}
	if id.Index() == 0 {
		t.Fatal("Alloc() handed out slot 0")
	}
	s := p.Lookup(id)
	if s == nil {
		t.Fatal("Lookup() of fresh ID failed")
	}
	if s.State != StateAlloc {
		t.Errorf("State = %v, want alloc", s.State)
	}
	if s.Generation != id.Generation() {
		t.Errorf("slot generation %d != id generation %d", s.Generation, id.Generation())
	}
	if s.UpdateFrame != NeverUpdated {
		t.Errorf("UpdateFrame = %d, want NeverUpdated", s.UpdateFrame)
	}
}

func TestLookupOutOfRange(t *testing.T) {
	p := newPool(t, 2)
	if p.Lookup(MakeID(3, 1)) != nil {
		t.Error("out-of-range index resolved")
	}
	if p.Lookup(MakeID(1, 1)) != nil {
		t.Error("free slot resolved")
	}
}

func TestExhaustionAndRecovery(t *testing.T) {
	const n = 8
	p := newPool(t, n)
	ids := make([]ID, 0, n)
	for i := range n {
		id, err := p.Alloc()
		if err != nil {
			t.Fatalf("Alloc() #%d error = %v", i, err)
		}
		ids = append(ids, id)
	}
	if _, err := p.Alloc(); !errors.Is(err, ErrExhausted) {
		t.Fatalf("Alloc() on full pool error = %v, want ErrExhausted", err)
	}
	if p.Len() != n || p.Available() != 0 {
		t.Fatalf("Len/Available = %d/%d, want %d/0", p.Len(), p.Available(), n)
	}

	if _, ok := p.Free(ids[3]); !ok {
		t.Fatal("Free() of live ID reported false")
	}
	id, err := p.Alloc()
	if err != nil {
		t.Fatalf("Alloc() after Free error = %v", err)
	}
	if id == ids[3] {
		t.Error("reallocated ID equals freed ID")
	}
}

func TestNoIndexGenerationReuse(t *testing.T) {
	const n = 16
	p := newPool(t, n)
	seen := make(map[ID]bool)

	for round := range 3 {
		ids := make([]ID, 0, n)
		for range n {
			id, err := p.Alloc()
			if err != nil {
				t.Fatalf("round %d: Alloc() error = %v", round, err)
			}
			if seen[id] {
				t.Fatalf("round %d: ID %v handed out twice", round, id)
			}
			seen[id] = true
			ids = append(ids, id)
		}
		for _, id := range ids {
			p.Free(id)
		}
	}
}

func TestStaleIDFailsAfterReuse(t *testing.T) {
	p := newPool(t, 1)
	old, _ := p.Alloc()
	p.Free(old)
	fresh, err := p.Alloc()
	if err != nil {
		t.Fatalf("Alloc() error = %v", err)
	}
	if fresh.Index() != old.Index() {
		t.Fatalf("single-slot pool reused index %d, want %d", fresh.Index(), old.Index())
	}
	if fresh.Generation() == old.Generation() {
		t.Fatal("generation unchanged after free")
	}
	if p.Lookup(old) != nil {
		t.Fatal("stale ID resolved against reused slot")
	}
	if p.Lookup(fresh) == nil {
		t.Fatal("fresh ID did not resolve")
	}
}

func TestFreeIsIdempotent(t *testing.T) {
	p := newPool(t, 4)
	p.Alloc()
	id, _ := p.Alloc()
	s := p.Lookup(id)
	s.Payload = "payload"
	s.State = StateValid

	payload, ok := p.Free(id)
	if !ok || payload != "payload" {
		t.Fatalf("Free() = %q, %v; want payload, true", payload, ok)
	}
	avail, length := p.Available(), p.Len()

	if _, ok := p.Free(id); ok {
		t.Fatal("second Free() reported true")
	}
	if p.Available() != avail || p.Len() != length {
		t.Errorf("second Free() changed counts: %d/%d -> %d/%d",
			avail, length, p.Available(), p.Len())
	}
}

func TestFreeResetsSlot(t *testing.T) {
	p := newPool(t, 1)
	id, _ := p.Alloc()
	s := p.Lookup(id)
	s.Payload = "x"
	s.State = StateFailed
	s.UpdateFrame = 7
	p.Free(id)

	next, _ := p.Alloc()
	s = p.Lookup(next)
	if s.Payload != "" {
		t.Errorf("payload survived free: %q", s.Payload)
	}
	if s.UpdateFrame != NeverUpdated {
		t.Errorf("UpdateFrame = %d, want NeverUpdated", s.UpdateFrame)
	}
	if next.Generation() != id.Generation()+1 {
		t.Errorf("generation = %d, want %d", next.Generation(), id.Generation()+1)
	}
}

func TestGenerationWrapSkipsZero(t *testing.T) {
	p := newPool(t, 1)
	p.slots[1].Generation = 0xFFFF
	id, _ := p.Alloc()
	if id.Generation() != 0xFFFF {
		t.Fatalf("generation = %#x, want 0xffff", id.Generation())
	}
	p.Free(id)
	next, _ := p.Alloc()
	if next.Generation() != 1 {
		t.Errorf("generation after wrap = %d, want 1", next.Generation())
	}
	if next.IsZero() {
		t.Error("wrapped ID is zero")
	}
}

func TestEachAndCount(t *testing.T) {
	p := newPool(t, 5)
	a, _ := p.Alloc()
	b, _ := p.Alloc()
	c, _ := p.Alloc()
	p.Lookup(a).State = StateValid
	p.Lookup(b).State = StateFailed
	p.Free(c)

	var visited []ID
	p.Each(func(id ID, s *Slot[string]) {
		visited = append(visited, id)
	})
	if len(visited) != 2 || visited[0] != a || visited[1] != b {
		t.Errorf("Each visited %v, want [%v %v]", visited, a, b)
	}

	tests := []struct {
		state State
		want  int
	}{
		{StateInitial, 3},
		{StateAlloc, 0},
		{StateValid, 1},
		{StateFailed, 1},
	}
	for _, tt := range tests {
		if got := p.Count(tt.state); got != tt.want {
			t.Errorf("Count(%v) = %d, want %d", tt.state, got, tt.want)
		}
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{StateInitial, "initial"},
		{StateAlloc, "alloc"},
		{StateValid, "valid"},
		{StateFailed, "failed"},
		{State(9), "State(9)"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func BenchmarkAllocFree(b *testing.B) {
	p, _ := New[int](128)
	for b.Loop() {
		id, _ := p.Alloc()
		p.Free(id)
	}
}
