// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import (
	"fmt"

	"github.com/gogpu/gfx/internal/pool"
)

// Context owns the resource pools of one device and issues render
// commands to it. Contexts are independent: several may exist at once,
// each with its own device.
//
// A Context is not safe for concurrent use. All calls must come from the
// goroutine that owns the device; content for deferred initialization may
// be prepared elsewhere and handed over (see AllocImage and InitImage).
type Context struct {
	dev   Device
	label string
	reg   *registry
	valid bool

	// frame counts Commit calls. Slots remember the frame of their last
	// update to enforce one update per frame.
	frame uint64

	pass     passState
	counters counters
}

// passState tracks the render pass in progress.
type passState struct {
	active bool
	// valid is false when the pass itself could not be resolved; every
	// command until EndPass is then dropped.
	valid bool
	// drawValid is false when the last ApplyDrawState was rejected; draws
	// are dropped until the next successful one.
	drawValid bool
	pipeline  Pipeline
}

type counters struct {
	draws       uint64
	dropped     uint64
	failedInits uint64
	updates     uint64
}

// NewContext creates a context driving dev.
func NewContext(dev Device, opts ...ContextOption) (*Context, error) {
	if dev == nil {
		return nil, ErrNilDevice
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	sizes := o.sizes.withDefaults()
	reg, err := newRegistry(sizes)
	if err != nil {
		return nil, fmt.Errorf("gfx: new context: %w", err)
	}
	Logger().Info("gfx: context created",
		"context", o.label,
		"backend", dev.Name(),
		"buffers", sizes.Buffers,
		"images", sizes.Images,
		"shaders", sizes.Shaders,
		"pipelines", sizes.Pipelines,
		"passes", sizes.Passes,
	)
	return &Context{
		dev:   dev,
		label: o.label,
		reg:   reg,
		valid: true,
	}, nil
}

// IsValid reports whether the context is usable, i.e. Shutdown has not
// been called.
func (c *Context) IsValid() bool { return c.valid }

// Backend returns the name of the device.
func (c *Context) Backend() string { return c.dev.Name() }

// Frame returns the number of completed frames.
func (c *Context) Frame() uint64 { return c.frame }

// QueryFeature reports whether the device supports f.
func (c *Context) QueryFeature(f Feature) bool {
	if !c.valid || f >= NumFeatures {
		return false
	}
	return c.dev.QueryFeature(f)
}

// ResetStateCache makes the device forget cached native state. Call it
// after issuing native API calls outside of gfx.
func (c *Context) ResetStateCache() {
	if c.valid {
		c.dev.ResetStateCache()
	}
}

// Commit ends the frame. A pass left open is ended first. Every resource
// may be updated once more after Commit.
func (c *Context) Commit() {
	if !c.valid {
		return
	}
	if c.pass.active {
		Logger().Warn("gfx: commit inside pass, ending pass", "context", c.label)
		c.EndPass()
	}
	c.dev.Commit()
	c.frame++
}

// Shutdown destroys every live resource, then the device. The context
// cannot be used afterwards. Calling Shutdown twice is harmless.
func (c *Context) Shutdown() {
	if !c.valid {
		return
	}
	if c.pass.active {
		c.EndPass()
	}
	// Dependents first: passes reference images, pipelines reference shaders.
	for _, id := range liveIDs(c.reg.passes) {
		c.DestroyPass(Pass{id: id})
	}
	for _, id := range liveIDs(c.reg.pipelines) {
		c.DestroyPipeline(Pipeline{id: id})
	}
	for _, id := range liveIDs(c.reg.shaders) {
		c.DestroyShader(Shader{id: id})
	}
	for _, id := range liveIDs(c.reg.images) {
		c.DestroyImage(Image{id: id})
	}
	for _, id := range liveIDs(c.reg.buffers) {
		c.DestroyBuffer(Buffer{id: id})
	}

	c.dev.Shutdown()
	c.valid = false
	Logger().Info("gfx: context shut down", "context", c.label, "frames", c.frame)
}

// Stats is a snapshot of context counters.
type Stats struct {
	Frame           uint64
	Pools           [numKinds]PoolStats
	Draws           uint64
	DroppedCommands uint64
	FailedInits     uint64
	Updates         uint64
}

// Pool returns the stats of the pool for kind k.
func (s Stats) Pool(k ResourceKind) PoolStats {
	if k >= numKinds {
		return PoolStats{}
	}
	return s.Pools[k]
}

// Stats returns a snapshot of pool occupancy and command counters.
func (c *Context) Stats() Stats {
	return Stats{
		Frame:           c.frame,
		Pools:           c.reg.stats(),
		Draws:           c.counters.draws,
		DroppedCommands: c.counters.dropped,
		FailedInits:     c.counters.failedInits,
		Updates:         c.counters.updates,
	}
}

func liveIDs[T any](p *pool.Pool[T]) []pool.ID {
	var ids []pool.ID
	p.Each(func(id pool.ID, _ *pool.Slot[T]) { ids = append(ids, id) })
	return ids
}
