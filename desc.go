// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

// BufferDesc describes a buffer.
//
// Defaults: Type vertex, Usage immutable. Size is required; when it is zero
// and Content is set, the content length is used. Immutable buffers must
// provide Content.
type BufferDesc struct {
	Size    int
	Type    BufferType
	Usage   Usage
	Content []byte
	Label   string
}

// ImageContent holds the initial or updated texel data of an image.
//
// Subimage is indexed [face][mip]. Cube images use faces 0..5 in the order
// +X, -X, +Y, -Y, +Z, -Z. Every other image type uses face 0 only. For
// array and 3D images a single item per mip level holds all layers or
// slices back to back, layer 0 first.
type ImageContent struct {
	Subimage [CubeFaces][MaxMipmaps][]byte
}

// Empty reports whether c carries no data at all.
func (c *ImageContent) Empty() bool {
	for face := range c.Subimage {
		for mip := range c.Subimage[face] {
			if len(c.Subimage[face][mip]) > 0 {
				return false
			}
		}
	}
	return true
}

// ImageDesc describes an image.
//
// Defaults: Type 2D, Depth 1, NumMipmaps 1, Usage immutable, PixelFormat
// RGBA8, SampleCount 1, filters nearest, wraps repeat. Width and Height
// must be set. Depth is the slice count for 3D images and the layer count
// for array images.
type ImageDesc struct {
	Type         ImageType
	RenderTarget bool
	Width        int
	Height       int
	Depth        int
	NumMipmaps   int
	Usage        Usage
	PixelFormat  PixelFormat
	SampleCount  int
	MinFilter    Filter
	MagFilter    Filter
	WrapU        Wrap
	WrapV        Wrap
	WrapW        Wrap
	Content      ImageContent
	Label        string
}

// Faces returns the number of content faces the image type uses.
func (d *ImageDesc) Faces() int {
	if d.Type == ImageTypeCube {
		return CubeFaces
	}
	return 1
}

// UniformDesc describes one member of a uniform block.
type UniformDesc struct {
	Name       string
	Offset     int
	Type       UniformType
	ArrayCount int
}

// UniformBlockDesc describes a uniform block. A block with Size 0 is unused.
type UniformBlockDesc struct {
	Size     int
	Uniforms [MaxUBMembers]UniformDesc
}

// ShaderImageDesc describes an image slot of a shader stage. A slot with
// neither a name nor a type is unused.
type ShaderImageDesc struct {
	Name string
	Type ImageType
}

// Used reports whether the image slot is in use.
func (d *ShaderImageDesc) Used() bool { return d.Name != "" || d.Type != ImageTypeDefault }

// ShaderStageDesc describes one shader stage.
type ShaderStageDesc struct {
	// Source is the shader program text. Backends decide the language;
	// the wgpu backend expects WGSL.
	Source string
	// Entry is the entry point. Defaults to "vs_main" or "fs_main".
	Entry         string
	UniformBlocks [MaxShaderStageUBs]UniformBlockDesc
	Images        [MaxShaderStageImages]ShaderImageDesc
}

// ShaderDesc describes a vertex/fragment shader pair.
type ShaderDesc struct {
	VS    ShaderStageDesc
	FS    ShaderStageDesc
	Label string
}

// Stage returns the description of stage s.
func (d *ShaderDesc) Stage(s ShaderStage) *ShaderStageDesc {
	if s == ShaderStageVS {
		return &d.VS
	}
	return &d.FS
}

// VertexAttrDesc describes one vertex attribute. An attribute with
// VertexFormatInvalid is unused.
type VertexAttrDesc struct {
	Name string
	// Index is the shader input location. Zero selects the attribute's
	// position among all used attributes of the pipeline.
	Index  int
	Offset int
	Format VertexFormat
}

// VertexLayoutDesc describes the layout of one vertex buffer. A layout with
// Stride 0 is unused.
type VertexLayoutDesc struct {
	Stride   int
	StepFunc VertexStep
	StepRate int
	Attrs    [MaxVertexAttributes]VertexAttrDesc
}

// StencilState describes the stencil operations for one face.
type StencilState struct {
	FailOp      StencilOp
	DepthFailOp StencilOp
	PassOp      StencilOp
	CompareFunc CompareFunc
}

// DepthStencilState describes depth testing and stencil operations.
type DepthStencilState struct {
	StencilFront      StencilState
	StencilBack       StencilState
	DepthCompareFunc  CompareFunc
	DepthWriteEnabled bool
	StencilEnabled    bool
	StencilReadMask   uint8
	StencilWriteMask  uint8
	StencilRef        uint8
}

// BlendState describes color blending.
type BlendState struct {
	Enabled        bool
	SrcFactorRGB   BlendFactor
	DstFactorRGB   BlendFactor
	OpRGB          BlendOp
	SrcFactorAlpha BlendFactor
	DstFactorAlpha BlendFactor
	OpAlpha        BlendOp
	ColorWriteMask ColorMask
	BlendColor     [4]float32
}

// RasterizerState describes primitive rasterization.
type RasterizerState struct {
	ScissorTestEnabled     bool
	AlphaToCoverageEnabled bool
	CullMode               CullMode
	FaceWinding            FaceWinding
	SampleCount            int
}

// PipelineDesc describes a render pipeline.
//
// Defaults: primitives are triangles, no index buffer, depth and stencil
// compare always, stencil ops keep, blend one/zero add, write mask RGBA,
// no culling, clockwise front faces, sample count 1, step per vertex with
// rate 1. Shader and at least one vertex layout are required.
type PipelineDesc struct {
	Layouts       [MaxShaderStageBuffers]VertexLayoutDesc
	Shader        Shader
	PrimitiveType PrimitiveType
	IndexType     IndexType
	DepthStencil  DepthStencilState
	Blend         BlendState
	Rasterizer    RasterizerState
	Label         string
}

// AttachmentDesc selects the image and subimage a pass renders into.
// Slice is the cube face, array layer or 3D slice.
type AttachmentDesc struct {
	Image    Image
	MipLevel int
	Slice    int
}

// PassDesc describes an offscreen render pass with one to four color
// attachments and an optional depth-stencil attachment.
//
// All attachment images must be valid render targets of the same size and
// sample count, and all color attachments must share a pixel format.
type PassDesc struct {
	ColorAttachments       [MaxColorAttachments]AttachmentDesc
	DepthStencilAttachment AttachmentDesc
	Label                  string
}

// Default clear values used when a pass action is left at ActionDefault.
var (
	DefaultClearColor   = [4]float32{0.5, 0.5, 0.5, 1.0}
	DefaultClearDepth   = float32(1.0)
	DefaultClearStencil = uint8(0)
)

// ColorAttachmentAction is the begin-pass action for a color attachment.
type ColorAttachmentAction struct {
	Action Action
	Value  [4]float32
}

// DepthAttachmentAction is the begin-pass action for the depth buffer.
type DepthAttachmentAction struct {
	Action Action
	Value  float32
}

// StencilAttachmentAction is the begin-pass action for the stencil buffer.
type StencilAttachmentAction struct {
	Action Action
	Value  uint8
}

// PassAction describes how attachments are initialized when a pass begins.
// The zero value clears colors to DefaultClearColor, depth to 1 and
// stencil to 0.
type PassAction struct {
	Colors  [MaxColorAttachments]ColorAttachmentAction
	Depth   DepthAttachmentAction
	Stencil StencilAttachmentAction
}

// DrawState binds a pipeline and its resources for the following draws.
type DrawState struct {
	Pipeline      Pipeline
	VertexBuffers [MaxShaderStageBuffers]Buffer
	IndexBuffer   Buffer
	VSImages      [MaxShaderStageImages]Image
	FSImages      [MaxShaderStageImages]Image
}
