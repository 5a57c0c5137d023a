// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import "errors"

var (
	// ErrPoolExhausted is returned by the Alloc and Make functions when the
	// pool for that resource kind has no free slot. Pools never grow.
	ErrPoolExhausted = errors.New("gfx: pool exhausted")

	// ErrInvalidHandle is returned when a handle is zero, out of range or
	// refers to a slot that has since been destroyed.
	ErrInvalidHandle = errors.New("gfx: invalid handle")

	// ErrOrderViolation is returned when an operation is attempted against a
	// resource in the wrong lifecycle state, for example initializing a
	// resource twice or updating one that is not valid.
	ErrOrderViolation = errors.New("gfx: resource not in required state")

	// ErrBackendConstructionFailed is returned by Init and Make functions
	// when the descriptor was rejected or the device failed to build the
	// object. The resource is left in ResourceStateFailed.
	ErrBackendConstructionFailed = errors.New("gfx: backend construction failed")

	// ErrUpdatePolicyViolation is returned when a resource is updated more
	// than once per frame, is immutable, or receives more data than it holds.
	ErrUpdatePolicyViolation = errors.New("gfx: update policy violation")

	// ErrInvalidDesc is returned by descriptor validation. On init it is
	// reported wrapped together with ErrBackendConstructionFailed.
	ErrInvalidDesc = errors.New("gfx: invalid descriptor")

	// ErrContextShutdown is returned by operations on a Context after Shutdown.
	ErrContextShutdown = errors.New("gfx: context shut down")

	// ErrNilDevice is returned by NewContext when no device is supplied.
	ErrNilDevice = errors.New("gfx: nil device")
)
