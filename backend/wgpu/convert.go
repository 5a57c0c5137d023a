// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfx"
)

// textureFormat maps a pixel format to its native format. RGB8 has no
// native equivalent and is expanded to RGBA8 on upload.
func textureFormat(f gfx.PixelFormat) (gputypes.TextureFormat, error) {
	switch f {
	case gfx.PixelFormatRGBA8, gfx.PixelFormatRGB8:
		return gputypes.TextureFormatRGBA8Unorm, nil
	case gfx.PixelFormatL8:
		return gputypes.TextureFormatR8Unorm, nil
	case gfx.PixelFormatR10G10B10A2:
		return gputypes.TextureFormatRGB10A2Unorm, nil
	case gfx.PixelFormatRGBA32F:
		return gputypes.TextureFormatRGBA32Float, nil
	case gfx.PixelFormatRGBA16F:
		return gputypes.TextureFormatRGBA16Float, nil
	case gfx.PixelFormatR32F:
		return gputypes.TextureFormatR32Float, nil
	case gfx.PixelFormatR16F:
		return gputypes.TextureFormatR16Float, nil
	case gfx.PixelFormatDepth:
		return gputypes.TextureFormatDepth32Float, nil
	case gfx.PixelFormatDepthStencil:
		return gputypes.TextureFormatDepth24PlusStencil8, nil
	case gfx.PixelFormatDXT1:
		return gputypes.TextureFormatBC1RGBAUnorm, nil
	case gfx.PixelFormatDXT3:
		return gputypes.TextureFormatBC2RGBAUnorm, nil
	case gfx.PixelFormatDXT5:
		return gputypes.TextureFormatBC3RGBAUnorm, nil
	case gfx.PixelFormatETC2RGB8:
		return gputypes.TextureFormatETC2RGB8Unorm, nil
	case gfx.PixelFormatETC2SRGB8:
		return gputypes.TextureFormatETC2RGB8UnormSrgb, nil
	}
	return gputypes.TextureFormatUndefined, fmt.Errorf("%w: pixel format %d", ErrUnsupported, f)
}

// rowBytes returns the upload pitch of one row of blocks or texels, and the
// number of such rows, for a w x h surface.
func rowBytes(f gfx.PixelFormat, w, h int) (pitch, rows int) {
	switch f {
	case gfx.PixelFormatDXT1, gfx.PixelFormatETC2RGB8, gfx.PixelFormatETC2SRGB8:
		return (w + 3) / 4 * 8, (h + 3) / 4
	case gfx.PixelFormatDXT3, gfx.PixelFormatDXT5:
		return (w + 3) / 4 * 16, (h + 3) / 4
	case gfx.PixelFormatRGB8:
		// expanded to 4 bytes per texel before upload
		return w * 4, h
	case gfx.PixelFormatL8:
		return w, h
	case gfx.PixelFormatR16F:
		return w * 2, h
	case gfx.PixelFormatRGBA16F:
		return w * 8, h
	case gfx.PixelFormatRGBA32F:
		return w * 16, h
	}
	return w * 4, h
}

// rgbToRGBA expands tightly packed RGB texels to RGBA with opaque alpha.
func rgbToRGBA(src []byte) []byte {
	n := len(src) / 3
	dst := make([]byte, n*4)
	for i := range n {
		dst[i*4+0] = src[i*3+0]
		dst[i*4+1] = src[i*3+1]
		dst[i*4+2] = src[i*3+2]
		dst[i*4+3] = 0xFF
	}
	return dst
}

func textureDimension(t gfx.ImageType) gputypes.TextureDimension {
	if t == gfx.ImageType3D {
		return gputypes.TextureDimension3D
	}
	return gputypes.TextureDimension2D
}

func viewDimension(t gfx.ImageType) gputypes.TextureViewDimension {
	switch t {
	case gfx.ImageTypeCube:
		return gputypes.TextureViewDimensionCube
	case gfx.ImageType3D:
		return gputypes.TextureViewDimension3D
	case gfx.ImageTypeArray:
		return gputypes.TextureViewDimension2DArray
	}
	return gputypes.TextureViewDimension2D
}

// layers returns the depth-or-array-layers extent of an image.
func layers(d *gfx.ImageDesc) int {
	switch d.Type {
	case gfx.ImageTypeCube:
		return gfx.CubeFaces
	case gfx.ImageType3D, gfx.ImageTypeArray:
		return d.Depth
	}
	return 1
}

func addressMode(w gfx.Wrap) gputypes.AddressMode {
	switch w {
	case gfx.WrapClampToEdge:
		return gputypes.AddressModeClampToEdge
	case gfx.WrapMirroredRepeat:
		return gputypes.AddressModeMirrorRepeat
	}
	return gputypes.AddressModeRepeat
}

// filterModes splits a min filter into its texel and mipmap components.
func filterModes(f gfx.Filter) (texel, mip gputypes.FilterMode) {
	switch f {
	case gfx.FilterLinear, gfx.FilterLinearMipmapNearest:
		return gputypes.FilterModeLinear, gputypes.FilterModeNearest
	case gfx.FilterLinearMipmapLinear:
		return gputypes.FilterModeLinear, gputypes.FilterModeLinear
	case gfx.FilterNearestMipmapLinear:
		return gputypes.FilterModeNearest, gputypes.FilterModeLinear
	}
	return gputypes.FilterModeNearest, gputypes.FilterModeNearest
}

func vertexFormat(f gfx.VertexFormat) (gputypes.VertexFormat, error) {
	switch f {
	case gfx.VertexFormatFloat:
		return gputypes.VertexFormatFloat32, nil
	case gfx.VertexFormatFloat2:
		return gputypes.VertexFormatFloat32x2, nil
	case gfx.VertexFormatFloat3:
		return gputypes.VertexFormatFloat32x3, nil
	case gfx.VertexFormatFloat4:
		return gputypes.VertexFormatFloat32x4, nil
	case gfx.VertexFormatByte4:
		return gputypes.VertexFormatSint8x4, nil
	case gfx.VertexFormatByte4N:
		return gputypes.VertexFormatSnorm8x4, nil
	case gfx.VertexFormatUByte4:
		return gputypes.VertexFormatUint8x4, nil
	case gfx.VertexFormatUByte4N:
		return gputypes.VertexFormatUnorm8x4, nil
	case gfx.VertexFormatShort2:
		return gputypes.VertexFormatSint16x2, nil
	case gfx.VertexFormatShort2N:
		return gputypes.VertexFormatSnorm16x2, nil
	case gfx.VertexFormatShort4:
		return gputypes.VertexFormatSint16x4, nil
	case gfx.VertexFormatShort4N:
		return gputypes.VertexFormatSnorm16x4, nil
	}
	var none gputypes.VertexFormat
	return none, fmt.Errorf("%w: vertex format %d", ErrUnsupported, f)
}

func stepMode(s gfx.VertexStep) gputypes.VertexStepMode {
	if s == gfx.VertexStepPerInstance {
		return gputypes.VertexStepModeInstance
	}
	return gputypes.VertexStepModeVertex
}

func topology(p gfx.PrimitiveType) gputypes.PrimitiveTopology {
	switch p {
	case gfx.PrimitiveTypePoints:
		return gputypes.PrimitiveTopologyPointList
	case gfx.PrimitiveTypeLines:
		return gputypes.PrimitiveTopologyLineList
	case gfx.PrimitiveTypeLineStrip:
		return gputypes.PrimitiveTopologyLineStrip
	case gfx.PrimitiveTypeTriangleStrip:
		return gputypes.PrimitiveTopologyTriangleStrip
	}
	return gputypes.PrimitiveTopologyTriangleList
}

func indexFormat(t gfx.IndexType) gputypes.IndexFormat {
	if t == gfx.IndexTypeUint32 {
		return gputypes.IndexFormatUint32
	}
	return gputypes.IndexFormatUint16
}

func cullMode(c gfx.CullMode) gputypes.CullMode {
	switch c {
	case gfx.CullModeFront:
		return gputypes.CullModeFront
	case gfx.CullModeBack:
		return gputypes.CullModeBack
	}
	return gputypes.CullModeNone
}

func frontFace(w gfx.FaceWinding) gputypes.FrontFace {
	if w == gfx.FaceWindingCCW {
		return gputypes.FrontFaceCCW
	}
	return gputypes.FrontFaceCW
}

func compareFunction(c gfx.CompareFunc) gputypes.CompareFunction {
	switch c {
	case gfx.CompareFuncNever:
		return gputypes.CompareFunctionNever
	case gfx.CompareFuncLess:
		return gputypes.CompareFunctionLess
	case gfx.CompareFuncEqual:
		return gputypes.CompareFunctionEqual
	case gfx.CompareFuncLessEqual:
		return gputypes.CompareFunctionLessEqual
	case gfx.CompareFuncGreater:
		return gputypes.CompareFunctionGreater
	case gfx.CompareFuncNotEqual:
		return gputypes.CompareFunctionNotEqual
	case gfx.CompareFuncGreaterEqual:
		return gputypes.CompareFunctionGreaterEqual
	}
	return gputypes.CompareFunctionAlways
}

func stencilOperation(op gfx.StencilOp) hal.StencilOperation {
	switch op {
	case gfx.StencilOpZero:
		return hal.StencilOperationZero
	case gfx.StencilOpReplace:
		return hal.StencilOperationReplace
	case gfx.StencilOpIncrClamp:
		return hal.StencilOperationIncrementClamp
	case gfx.StencilOpDecrClamp:
		return hal.StencilOperationDecrementClamp
	case gfx.StencilOpInvert:
		return hal.StencilOperationInvert
	case gfx.StencilOpIncrWrap:
		return hal.StencilOperationIncrementWrap
	case gfx.StencilOpDecrWrap:
		return hal.StencilOperationDecrementWrap
	}
	return hal.StencilOperationKeep
}

func stencilFace(s *gfx.StencilState) hal.StencilFaceState {
	return hal.StencilFaceState{
		Compare:     compareFunction(s.CompareFunc),
		FailOp:      stencilOperation(s.FailOp),
		DepthFailOp: stencilOperation(s.DepthFailOp),
		PassOp:      stencilOperation(s.PassOp),
	}
}

func blendFactor(f gfx.BlendFactor) gputypes.BlendFactor {
	switch f {
	case gfx.BlendFactorZero:
		return gputypes.BlendFactorZero
	case gfx.BlendFactorSrcColor:
		return gputypes.BlendFactorSrc
	case gfx.BlendFactorOneMinusSrcColor:
		return gputypes.BlendFactorOneMinusSrc
	case gfx.BlendFactorSrcAlpha:
		return gputypes.BlendFactorSrcAlpha
	case gfx.BlendFactorOneMinusSrcAlpha:
		return gputypes.BlendFactorOneMinusSrcAlpha
	case gfx.BlendFactorDstColor:
		return gputypes.BlendFactorDst
	case gfx.BlendFactorOneMinusDstColor:
		return gputypes.BlendFactorOneMinusDst
	case gfx.BlendFactorDstAlpha:
		return gputypes.BlendFactorDstAlpha
	case gfx.BlendFactorOneMinusDstAlpha:
		return gputypes.BlendFactorOneMinusDstAlpha
	case gfx.BlendFactorSrcAlphaSaturated:
		return gputypes.BlendFactorSrcAlphaSaturated
	case gfx.BlendFactorBlendColor, gfx.BlendFactorBlendAlpha:
		return gputypes.BlendFactorConstant
	case gfx.BlendFactorOneMinusBlendColor, gfx.BlendFactorOneMinusBlendAlpha:
		return gputypes.BlendFactorOneMinusConstant
	}
	return gputypes.BlendFactorOne
}

func blendOperation(op gfx.BlendOp) gputypes.BlendOperation {
	switch op {
	case gfx.BlendOpSubtract:
		return gputypes.BlendOperationSubtract
	case gfx.BlendOpReverseSubtract:
		return gputypes.BlendOperationReverseSubtract
	}
	return gputypes.BlendOperationAdd
}

// blendState returns nil when blending is disabled.
func blendState(b *gfx.BlendState) *gputypes.BlendState {
	if !b.Enabled {
		return nil
	}
	return &gputypes.BlendState{
		Color: gputypes.BlendComponent{
			SrcFactor: blendFactor(b.SrcFactorRGB),
			DstFactor: blendFactor(b.DstFactorRGB),
			Operation: blendOperation(b.OpRGB),
		},
		Alpha: gputypes.BlendComponent{
			SrcFactor: blendFactor(b.SrcFactorAlpha),
			DstFactor: blendFactor(b.DstFactorAlpha),
			Operation: blendOperation(b.OpAlpha),
		},
	}
}

func writeMask(m gfx.ColorMask) gputypes.ColorWriteMask {
	if m == gfx.ColorMaskNone {
		return gputypes.ColorWriteMaskNone
	}
	var w gputypes.ColorWriteMask
	if m&gfx.ColorMaskR != 0 {
		w |= gputypes.ColorWriteMaskRed
	}
	if m&gfx.ColorMaskG != 0 {
		w |= gputypes.ColorWriteMaskGreen
	}
	if m&gfx.ColorMaskB != 0 {
		w |= gputypes.ColorWriteMaskBlue
	}
	if m&gfx.ColorMaskA != 0 {
		w |= gputypes.ColorWriteMaskAlpha
	}
	return w
}

func loadOp(a gfx.Action) gputypes.LoadOp {
	if a == gfx.ActionClear {
		return gputypes.LoadOpClear
	}
	return gputypes.LoadOpLoad
}

func clearColor(v [4]float32) gputypes.Color {
	return gputypes.Color{R: float64(v[0]), G: float64(v[1]), B: float64(v[2]), A: float64(v[3])}
}
