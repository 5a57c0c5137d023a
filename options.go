// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

// Default pool capacities.
const (
	DefaultBufferPoolSize   = 128
	DefaultImagePoolSize    = 128
	DefaultShaderPoolSize   = 32
	DefaultPipelinePoolSize = 64
	DefaultPassPoolSize     = 16
)

// PoolSizes holds the capacity of each resource pool. A zero field selects
// the default for that pool.
type PoolSizes struct {
	Buffers   int
	Images    int
	Shaders   int
	Pipelines int
	Passes    int
}

// DefaultPoolSizes returns the default capacity of every pool.
func DefaultPoolSizes() PoolSizes {
	return PoolSizes{
		Buffers:   DefaultBufferPoolSize,
		Images:    DefaultImagePoolSize,
		Shaders:   DefaultShaderPoolSize,
		Pipelines: DefaultPipelinePoolSize,
		Passes:    DefaultPassPoolSize,
	}
}

func (s PoolSizes) withDefaults() PoolSizes {
	d := DefaultPoolSizes()
	if s.Buffers == 0 {
		s.Buffers = d.Buffers
	}
	if s.Images == 0 {
		s.Images = d.Images
	}
	if s.Shaders == 0 {
		s.Shaders = d.Shaders
	}
	if s.Pipelines == 0 {
		s.Pipelines = d.Pipelines
	}
	if s.Passes == 0 {
		s.Passes = d.Passes
	}
	return s
}

// ContextOption configures a Context during creation.
//
// Example:
//
//	ctx, err := gfx.NewContext(dev,
//	    gfx.WithBufferPoolSize(512),
//	    gfx.WithLabel("editor"),
//	)
type ContextOption func(*contextOptions)

type contextOptions struct {
	sizes PoolSizes
	label string
}

func defaultOptions() contextOptions {
	return contextOptions{label: "gfx"}
}

// WithPoolSizes sets every pool capacity at once. Zero fields keep the
// default.
func WithPoolSizes(s PoolSizes) ContextOption {
	return func(o *contextOptions) {
		o.sizes = s
	}
}

// WithBufferPoolSize sets the buffer pool capacity.
func WithBufferPoolSize(n int) ContextOption {
	return func(o *contextOptions) { o.sizes.Buffers = n }
}

// WithImagePoolSize sets the image pool capacity.
func WithImagePoolSize(n int) ContextOption {
	return func(o *contextOptions) { o.sizes.Images = n }
}

// WithShaderPoolSize sets the shader pool capacity.
func WithShaderPoolSize(n int) ContextOption {
	return func(o *contextOptions) { o.sizes.Shaders = n }
}

// WithPipelinePoolSize sets the pipeline pool capacity.
func WithPipelinePoolSize(n int) ContextOption {
	return func(o *contextOptions) { o.sizes.Pipelines = n }
}

// WithPassPoolSize sets the pass pool capacity.
func WithPassPoolSize(n int) ContextOption {
	return func(o *contextOptions) { o.sizes.Passes = n }
}

// WithLabel names the context in log output.
func WithLabel(label string) ContextOption {
	return func(o *contextOptions) {
		if label != "" {
			o.label = label
		}
	}
}
