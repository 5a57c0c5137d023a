// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import (
	"errors"
	"fmt"

	"github.com/gogpu/gfx/internal/pool"
)

// The lifecycle helpers drive a slot through
//
//	Initial --alloc--> Alloc --init--> Valid | Failed --destroy--> Initial
//
// and are shared by every resource kind.

func allocSlot[T any](c *Context, kind ResourceKind, p *pool.Pool[T]) (pool.ID, error) {
	if !c.valid {
		return pool.Invalid, ErrContextShutdown
	}
	id, err := p.Alloc()
	if err != nil {
		if errors.Is(err, pool.ErrExhausted) {
			Logger().Warn("gfx: pool exhausted", "context", c.label, "kind", kind, "capacity", p.Capacity())
			return pool.Invalid, fmt.Errorf("alloc %s: %w", kind, ErrPoolExhausted)
		}
		return pool.Invalid, fmt.Errorf("alloc %s: %w", kind, err)
	}
	return id, nil
}

// initSlot moves an allocated slot to Valid when build succeeds and to
// Failed otherwise. Slots not in the Alloc state are left untouched.
func initSlot[T any](c *Context, kind ResourceKind, p *pool.Pool[T], id pool.ID, build func() (T, error)) error {
	if !c.valid {
		return ErrContextShutdown
	}
	s := p.Lookup(id)
	if s == nil {
		return fmt.Errorf("init %s %v: %w", kind, id, ErrInvalidHandle)
	}
	if s.State != pool.StateAlloc {
		return fmt.Errorf("init %s %v in state %v: %w", kind, id, stateOf(s.State), ErrOrderViolation)
	}
	payload, err := build()
	if err != nil {
		s.State = pool.StateFailed
		c.counters.failedInits++
		Logger().Warn("gfx: resource init failed", "context", c.label, "kind", kind, "id", id, "err", err)
		return fmt.Errorf("init %s %v: %w: %w", kind, id, ErrBackendConstructionFailed, err)
	}
	s.Payload = payload
	s.State = pool.StateValid
	return nil
}

// failSlot moves an allocated slot straight to Failed. It is used when the
// caller's asynchronous content load did not succeed.
func failSlot[T any](c *Context, kind ResourceKind, p *pool.Pool[T], id pool.ID) error {
	if !c.valid {
		return ErrContextShutdown
	}
	s := p.Lookup(id)
	if s == nil {
		return fmt.Errorf("fail %s %v: %w", kind, id, ErrInvalidHandle)
	}
	if s.State != pool.StateAlloc {
		return fmt.Errorf("fail %s %v in state %v: %w", kind, id, stateOf(s.State), ErrOrderViolation)
	}
	s.State = pool.StateFailed
	c.counters.failedInits++
	return nil
}

// destroySlot frees the slot and hands a valid payload to release. Unknown
// or stale handles are ignored.
func destroySlot[T any](c *Context, kind ResourceKind, p *pool.Pool[T], id pool.ID, release func(T)) {
	if !c.valid {
		return
	}
	s := p.Lookup(id)
	if s == nil {
		Logger().Debug("gfx: destroy ignored", "kind", kind, "id", id)
		return
	}
	wasValid := s.State == pool.StateValid
	payload, _ := p.Free(id)
	if wasValid {
		release(payload)
	}
}

func queryState[T any](c *Context, p *pool.Pool[T], id pool.ID) ResourceState {
	if !c.valid {
		return ResourceStateInvalid
	}
	s := p.Lookup(id)
	if s == nil {
		return ResourceStateInvalid
	}
	return stateOf(s.State)
}

// beginUpdate checks the update policy for one slot. It returns a nil slot
// and nil error for handles that do not resolve, which callers treat as a
// silent no-op.
func beginUpdate[T any](c *Context, kind ResourceKind, p *pool.Pool[T], id pool.ID) (*pool.Slot[T], error) {
	if !c.valid {
		return nil, ErrContextShutdown
	}
	s := p.Lookup(id)
	if s == nil {
		Logger().Debug("gfx: update ignored", "kind", kind, "id", id)
		return nil, nil
	}
	if s.State != pool.StateValid {
		return nil, fmt.Errorf("update %s %v in state %v: %w", kind, id, stateOf(s.State), ErrOrderViolation)
	}
	if s.UpdateFrame == c.frame {
		Logger().Warn("gfx: second update in frame", "kind", kind, "id", id, "frame", c.frame)
		return nil, fmt.Errorf("update %s %v: already updated in frame %d: %w", kind, id, c.frame, ErrUpdatePolicyViolation)
	}
	return s, nil
}

func policyError(kind ResourceKind, id pool.ID, format string, args ...any) error {
	return fmt.Errorf("update %s %v: %s: %w", kind, id, fmt.Sprintf(format, args...), ErrUpdatePolicyViolation)
}
