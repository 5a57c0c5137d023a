// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

// Device is the backend a Context drives. One implementation exists per
// native graphics API; the Context never inspects which one is active.
//
// Create methods receive normalized, validated descriptors and return an
// opaque backend object. A Create method that fails must leave no side
// effects. Destroy methods receive objects previously returned by the
// matching Create method.
//
// Devices are driven from a single goroutine, the one that owns the Context.
type Device interface {
	// Name returns the backend identifier (e.g. "headless", "wgpu").
	Name() string

	// QueryFeature reports whether the device supports f.
	QueryFeature(f Feature) bool

	// ResetStateCache forgets any cached native pipeline state.
	ResetStateCache()

	CreateBuffer(desc *BufferDesc) (any, error)
	DestroyBuffer(obj any)
	// UpdateBuffer replaces the start of a dynamic or stream buffer.
	UpdateBuffer(obj any, data []byte) error

	CreateImage(desc *ImageDesc) (any, error)
	DestroyImage(obj any)
	// UpdateImage replaces the content of a dynamic or stream image.
	UpdateImage(obj any, desc *ImageDesc, content *ImageContent) error

	CreateShader(desc *ShaderDesc) (any, error)
	DestroyShader(obj any)

	// CreatePipeline receives the backend object of the pipeline's shader.
	CreatePipeline(desc *PipelineDesc, shader *ShaderObject) (any, error)
	DestroyPipeline(obj any)

	// CreatePass receives the resolved attachment images. depth is nil
	// when the pass has no depth-stencil attachment.
	CreatePass(desc *PassDesc, colors []Attachment, depth *Attachment) (any, error)
	DestroyPass(obj any)

	// BeginPass starts rendering into pass, or into the default
	// framebuffer when pass is nil.
	BeginPass(pass any, action *PassAction, width, height int)
	ApplyViewport(x, y, width, height int, originTopLeft bool)
	ApplyScissorRect(x, y, width, height int, originTopLeft bool)
	ApplyBindings(b *Bindings)
	ApplyUniformBlock(stage ShaderStage, index int, data []byte)
	Draw(baseElement, numElements, numInstances int)
	EndPass()

	// Commit ends the frame.
	Commit()

	// Shutdown releases the device. The Context destroys all resources
	// before calling it.
	Shutdown()
}

// ShaderObject pairs a shader's backend object with its descriptor.
type ShaderObject struct {
	Desc   *ShaderDesc
	Object any
}

// Attachment is a resolved pass attachment.
type Attachment struct {
	Image    any
	Desc     *ImageDesc
	MipLevel int
	Slice    int
}

// BufferBinding is a resolved buffer binding.
type BufferBinding struct {
	Object any
	Desc   *BufferDesc
}

// Bindings is a fully resolved draw state. Every entry refers to a valid
// resource; unused slots hold nil objects.
type Bindings struct {
	Pipeline      any
	PipelineDesc  *PipelineDesc
	Shader        ShaderObject
	VertexBuffers [MaxShaderStageBuffers]BufferBinding
	IndexBuffer   BufferBinding
	VSImages      [MaxShaderStageImages]any
	FSImages      [MaxShaderStageImages]any
}
