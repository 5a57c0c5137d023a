// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import (
	"fmt"

	"github.com/gogpu/gfx/internal/pool"
)

// Each handle type embeds a zero-size array of a distinct tag type. The tag
// gives every handle a different underlying type, so a Buffer can neither be
// passed as nor converted to an Image.
type (
	bufferTag   struct{}
	imageTag    struct{}
	shaderTag   struct{}
	pipelineTag struct{}
	passTag     struct{}
)

// Buffer is a handle to a vertex or index buffer.
// The zero value is the invalid handle.
type Buffer struct {
	_  [0]bufferTag
	id pool.ID
}

// Image is a handle to a texture or render target.
type Image struct {
	_  [0]imageTag
	id pool.ID
}

// Shader is a handle to a vertex/fragment shader pair.
type Shader struct {
	_  [0]shaderTag
	id pool.ID
}

// Pipeline is a handle to a render pipeline state object.
type Pipeline struct {
	_  [0]pipelineTag
	id pool.ID
}

// Pass is a handle to an offscreen render pass.
type Pass struct {
	_  [0]passTag
	id pool.ID
}

// ID returns the raw 32-bit handle value: slot index in the low 16 bits,
// generation in the high 16 bits.
func (h Buffer) ID() uint32 { return uint32(h.id) }

// IsZero reports whether h is the invalid handle.
func (h Buffer) IsZero() bool { return h.id.IsZero() }

func (h Buffer) String() string { return fmt.Sprintf("buffer(%v)", h.id) }

// ID returns the raw 32-bit handle value.
func (h Image) ID() uint32 { return uint32(h.id) }

// IsZero reports whether h is the invalid handle.
func (h Image) IsZero() bool { return h.id.IsZero() }

func (h Image) String() string { return fmt.Sprintf("image(%v)", h.id) }

// ID returns the raw 32-bit handle value.
func (h Shader) ID() uint32 { return uint32(h.id) }

// IsZero reports whether h is the invalid handle.
func (h Shader) IsZero() bool { return h.id.IsZero() }

func (h Shader) String() string { return fmt.Sprintf("shader(%v)", h.id) }

// ID returns the raw 32-bit handle value.
func (h Pipeline) ID() uint32 { return uint32(h.id) }

// IsZero reports whether h is the invalid handle.
func (h Pipeline) IsZero() bool { return h.id.IsZero() }

func (h Pipeline) String() string { return fmt.Sprintf("pipeline(%v)", h.id) }

// ID returns the raw 32-bit handle value.
func (h Pass) ID() uint32 { return uint32(h.id) }

// IsZero reports whether h is the invalid handle.
func (h Pass) IsZero() bool { return h.id.IsZero() }

func (h Pass) String() string { return fmt.Sprintf("pass(%v)", h.id) }
