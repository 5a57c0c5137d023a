// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import "github.com/gogpu/gfx/internal/pool"

// ResourceState is the lifecycle state of a resource.
//
//	Initial --alloc--> Alloc --init--> Valid | Failed --destroy--> Initial
type ResourceState uint8

const (
	// ResourceStateInitial means the slot is unused.
	ResourceStateInitial ResourceState = iota
	// ResourceStateAlloc means the handle is reserved but not initialized.
	ResourceStateAlloc
	// ResourceStateValid means the resource is ready for use.
	ResourceStateValid
	// ResourceStateFailed means initialization was rejected. The handle
	// stays allocated until destroyed.
	ResourceStateFailed
	// ResourceStateInvalid is returned by queries for a handle that does
	// not resolve: zero, out of range, or already destroyed.
	ResourceStateInvalid
)

func (s ResourceState) String() string {
	switch s {
	case ResourceStateInitial:
		return "initial"
	case ResourceStateAlloc:
		return "alloc"
	case ResourceStateValid:
		return "valid"
	case ResourceStateFailed:
		return "failed"
	case ResourceStateInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

func stateOf(s pool.State) ResourceState {
	switch s {
	case pool.StateAlloc:
		return ResourceStateAlloc
	case pool.StateValid:
		return ResourceStateValid
	case pool.StateFailed:
		return ResourceStateFailed
	default:
		return ResourceStateInitial
	}
}

// ResourceKind names one of the five resource pools.
type ResourceKind uint8

const (
	KindBuffer ResourceKind = iota
	KindImage
	KindShader
	KindPipeline
	KindPass

	numKinds
)

// ResourceKinds lists every kind in pool order.
var ResourceKinds = [numKinds]ResourceKind{KindBuffer, KindImage, KindShader, KindPipeline, KindPass}

func (k ResourceKind) String() string {
	switch k {
	case KindBuffer:
		return "buffer"
	case KindImage:
		return "image"
	case KindShader:
		return "shader"
	case KindPipeline:
		return "pipeline"
	case KindPass:
		return "pass"
	default:
		return "unknown"
	}
}
