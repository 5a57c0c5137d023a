// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

// Resource limits. Descriptors use fixed-size arrays of these lengths.
const (
	NumShaderStages       = 2
	MaxColorAttachments   = 4
	MaxShaderStageBuffers = 4
	MaxShaderStageImages  = 12
	MaxShaderStageUBs     = 4
	MaxUBMembers          = 16
	MaxVertexAttributes   = 16
	MaxMipmaps            = 16
	CubeFaces             = 6
)

// Feature identifies an optional capability of the active device.
type Feature uint8

const (
	FeatureInstancedArrays Feature = iota
	FeatureTextureCompressionDXT
	FeatureTextureCompressionPVRTC
	FeatureTextureCompressionATC
	FeatureTextureCompressionETC2
	FeatureTextureFloat
	FeatureTextureHalfFloat
	FeatureOriginBottomLeft
	FeatureOriginTopLeft
	FeatureMSAARenderTargets
	FeaturePackedVertexFormat10_2
	FeatureMultipleRenderTarget
	FeatureImageType3D
	FeatureImageTypeArray

	NumFeatures
)

// Enum types below reserve the zero value for "use the default". The
// normalize step replaces it before a descriptor reaches a device.

// Usage describes how often a resource is updated.
type Usage uint8

const (
	UsageDefault   Usage = iota
	UsageImmutable       // never updated, content given at creation
	UsageDynamic         // updated infrequently
	UsageStream          // updated every frame
)

// BufferType is the binding role of a buffer.
type BufferType uint8

const (
	BufferTypeDefault BufferType = iota
	BufferTypeVertex
	BufferTypeIndex
)

// IndexType is the element type of an index buffer, or IndexTypeNone for
// non-indexed rendering.
type IndexType uint8

const (
	IndexTypeDefault IndexType = iota
	IndexTypeNone
	IndexTypeUint16
	IndexTypeUint32
)

// Size returns the byte size of one index, or 0 for IndexTypeNone.
func (t IndexType) Size() int {
	switch t {
	case IndexTypeUint16:
		return 2
	case IndexTypeUint32:
		return 4
	default:
		return 0
	}
}

// ImageType is the dimensionality of an image.
type ImageType uint8

const (
	ImageTypeDefault ImageType = iota
	ImageType2D
	ImageTypeCube
	ImageType3D
	ImageTypeArray
)

// ShaderStage selects the vertex or fragment stage.
type ShaderStage uint8

const (
	ShaderStageVS ShaderStage = iota
	ShaderStageFS
)

func (s ShaderStage) String() string {
	if s == ShaderStageVS {
		return "vs"
	}
	return "fs"
}

// PixelFormat is the texel format of an image.
type PixelFormat uint8

const (
	PixelFormatDefault PixelFormat = iota
	PixelFormatNone
	PixelFormatRGBA8
	PixelFormatRGB8
	PixelFormatRGBA4
	PixelFormatR5G6B5
	PixelFormatR5G5B5A1
	PixelFormatR10G10B10A2
	PixelFormatRGBA32F
	PixelFormatRGBA16F
	PixelFormatR32F
	PixelFormatR16F
	PixelFormatL8
	PixelFormatDXT1
	PixelFormatDXT3
	PixelFormatDXT5
	PixelFormatDepth
	PixelFormatDepthStencil
	PixelFormatPVRTC2RGB
	PixelFormatPVRTC4RGB
	PixelFormatPVRTC2RGBA
	PixelFormatPVRTC4RGBA
	PixelFormatETC2RGB8
	PixelFormatETC2SRGB8
)

// IsDepth reports whether f can only be used as a depth-stencil attachment.
func (f PixelFormat) IsDepth() bool {
	return f == PixelFormatDepth || f == PixelFormatDepthStencil
}

// IsCompressed reports whether f is a block-compressed format.
func (f PixelFormat) IsCompressed() bool {
	switch f {
	case PixelFormatDXT1, PixelFormatDXT3, PixelFormatDXT5,
		PixelFormatPVRTC2RGB, PixelFormatPVRTC4RGB, PixelFormatPVRTC2RGBA, PixelFormatPVRTC4RGBA,
		PixelFormatETC2RGB8, PixelFormatETC2SRGB8:
		return true
	}
	return false
}

// PrimitiveType is the topology used to assemble vertices.
type PrimitiveType uint8

const (
	PrimitiveTypeDefault PrimitiveType = iota
	PrimitiveTypePoints
	PrimitiveTypeLines
	PrimitiveTypeLineStrip
	PrimitiveTypeTriangles
	PrimitiveTypeTriangleStrip
)

// Filter is a texture sampling filter.
type Filter uint8

const (
	FilterDefault Filter = iota
	FilterNearest
	FilterLinear
	FilterNearestMipmapNearest
	FilterNearestMipmapLinear
	FilterLinearMipmapNearest
	FilterLinearMipmapLinear
)

// Wrap is a texture addressing mode.
type Wrap uint8

const (
	WrapDefault Wrap = iota
	WrapRepeat
	WrapClampToEdge
	WrapMirroredRepeat
)

// VertexFormat is the type of one vertex attribute. It has no default:
// VertexFormatInvalid marks an unused attribute slot.
type VertexFormat uint8

const (
	VertexFormatInvalid VertexFormat = iota
	VertexFormatFloat
	VertexFormatFloat2
	VertexFormatFloat3
	VertexFormatFloat4
	VertexFormatByte4
	VertexFormatByte4N
	VertexFormatUByte4
	VertexFormatUByte4N
	VertexFormatShort2
	VertexFormatShort2N
	VertexFormatShort4
	VertexFormatShort4N
	VertexFormatUInt10N2
)

// VertexStep selects per-vertex or per-instance attribute advance.
type VertexStep uint8

const (
	VertexStepDefault VertexStep = iota
	VertexStepPerVertex
	VertexStepPerInstance
)

// UniformType is the type of one uniform block member. UniformTypeInvalid
// marks an unused member slot.
type UniformType uint8

const (
	UniformTypeInvalid UniformType = iota
	UniformTypeFloat
	UniformTypeFloat2
	UniformTypeFloat3
	UniformTypeFloat4
	UniformTypeMat4
)

// CullMode selects which faces are discarded.
type CullMode uint8

const (
	CullModeDefault CullMode = iota
	CullModeNone
	CullModeFront
	CullModeBack
)

// FaceWinding selects the front-facing vertex order.
type FaceWinding uint8

const (
	FaceWindingDefault FaceWinding = iota
	FaceWindingCCW
	FaceWindingCW
)

// CompareFunc is a depth or stencil comparison.
type CompareFunc uint8

const (
	CompareFuncDefault CompareFunc = iota
	CompareFuncNever
	CompareFuncLess
	CompareFuncEqual
	CompareFuncLessEqual
	CompareFuncGreater
	CompareFuncNotEqual
	CompareFuncGreaterEqual
	CompareFuncAlways
)

// StencilOp is a stencil buffer operation.
type StencilOp uint8

const (
	StencilOpDefault StencilOp = iota
	StencilOpKeep
	StencilOpZero
	StencilOpReplace
	StencilOpIncrClamp
	StencilOpDecrClamp
	StencilOpInvert
	StencilOpIncrWrap
	StencilOpDecrWrap
)

// BlendFactor is a source or destination blend weight.
type BlendFactor uint8

const (
	BlendFactorDefault BlendFactor = iota
	BlendFactorZero
	BlendFactorOne
	BlendFactorSrcColor
	BlendFactorOneMinusSrcColor
	BlendFactorSrcAlpha
	BlendFactorOneMinusSrcAlpha
	BlendFactorDstColor
	BlendFactorOneMinusDstColor
	BlendFactorDstAlpha
	BlendFactorOneMinusDstAlpha
	BlendFactorSrcAlphaSaturated
	BlendFactorBlendColor
	BlendFactorOneMinusBlendColor
	BlendFactorBlendAlpha
	BlendFactorOneMinusBlendAlpha
)

// BlendOp combines weighted source and destination colors.
type BlendOp uint8

const (
	BlendOpDefault BlendOp = iota
	BlendOpAdd
	BlendOpSubtract
	BlendOpReverseSubtract
)

// ColorMask selects the color channels written by a pipeline.
// ColorMaskNone is distinct from the zero default.
type ColorMask uint8

const (
	ColorMaskDefault ColorMask = 0
	ColorMaskR       ColorMask = 1 << 0
	ColorMaskG       ColorMask = 1 << 1
	ColorMaskB       ColorMask = 1 << 2
	ColorMaskA       ColorMask = 1 << 3
	ColorMaskRGB     ColorMask = 0x7
	ColorMaskRGBA    ColorMask = 0xF
	ColorMaskNone    ColorMask = 0x10
)

// Action is what a pass does with an attachment when it begins.
type Action uint8

const (
	ActionDefault  Action = iota
	ActionClear           // clear to the action's value
	ActionLoad            // keep the previous content
	ActionDontCare        // content is undefined
)
