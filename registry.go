// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import (
	"fmt"

	"github.com/gogpu/gfx/internal/pool"
)

// Slot payloads. desc is the normalized descriptor with content stripped;
// obj is the device object and is nil unless the slot is valid.
type (
	bufferRecord struct {
		desc BufferDesc
		obj  any
	}
	imageRecord struct {
		desc ImageDesc
		obj  any
	}
	shaderRecord struct {
		desc ShaderDesc
		obj  any
	}
	pipelineRecord struct {
		desc PipelineDesc
		obj  any
	}
	passRecord struct {
		desc          PassDesc
		obj           any
		width, height int
	}
)

// registry owns one pool per resource kind. Kinds never share index space.
type registry struct {
	buffers   *pool.Pool[bufferRecord]
	images    *pool.Pool[imageRecord]
	shaders   *pool.Pool[shaderRecord]
	pipelines *pool.Pool[pipelineRecord]
	passes    *pool.Pool[passRecord]
}

func newRegistry(sizes PoolSizes) (*registry, error) {
	var (
		r   registry
		err error
	)
	if r.buffers, err = pool.New[bufferRecord](sizes.Buffers); err != nil {
		return nil, fmt.Errorf("buffer pool: %w", err)
	}
	if r.images, err = pool.New[imageRecord](sizes.Images); err != nil {
		return nil, fmt.Errorf("image pool: %w", err)
	}
	if r.shaders, err = pool.New[shaderRecord](sizes.Shaders); err != nil {
		return nil, fmt.Errorf("shader pool: %w", err)
	}
	if r.pipelines, err = pool.New[pipelineRecord](sizes.Pipelines); err != nil {
		return nil, fmt.Errorf("pipeline pool: %w", err)
	}
	if r.passes, err = pool.New[passRecord](sizes.Passes); err != nil {
		return nil, fmt.Errorf("pass pool: %w", err)
	}
	return &r, nil
}

// PoolStats describes the occupancy of one pool.
type PoolStats struct {
	Capacity int
	Alloc    int
	Valid    int
	Failed   int
}

// Used returns the number of slots not in the free list.
func (s PoolStats) Used() int { return s.Alloc + s.Valid + s.Failed }

func poolStats[T any](p *pool.Pool[T]) PoolStats {
	return PoolStats{
		Capacity: p.Capacity(),
		Alloc:    p.Count(pool.StateAlloc),
		Valid:    p.Count(pool.StateValid),
		Failed:   p.Count(pool.StateFailed),
	}
}

func (r *registry) stats() [numKinds]PoolStats {
	return [numKinds]PoolStats{
		KindBuffer:   poolStats(r.buffers),
		KindImage:    poolStats(r.images),
		KindShader:   poolStats(r.shaders),
		KindPipeline: poolStats(r.pipelines),
		KindPass:     poolStats(r.passes),
	}
}

// Typed lookups. Each returns nil unless the handle resolves.

func (r *registry) buffer(h Buffer) *pool.Slot[bufferRecord]       { return r.buffers.Lookup(h.id) }
func (r *registry) image(h Image) *pool.Slot[imageRecord]          { return r.images.Lookup(h.id) }
func (r *registry) shader(h Shader) *pool.Slot[shaderRecord]       { return r.shaders.Lookup(h.id) }
func (r *registry) pipeline(h Pipeline) *pool.Slot[pipelineRecord] { return r.pipelines.Lookup(h.id) }
func (r *registry) pass(h Pass) *pool.Slot[passRecord]             { return r.passes.Lookup(h.id) }

// validSlot returns s only if it resolved and is in the valid state.
func validSlot[T any](s *pool.Slot[T]) *pool.Slot[T] {
	if s == nil || s.State != pool.StateValid {
		return nil
	}
	return s
}
