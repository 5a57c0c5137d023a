// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

// The normalize functions replace default sentinels with concrete values.
// They are pure: the argument is copied and never modified.

func def[T comparable](v, zero, fallback T) T {
	if v == zero {
		return fallback
	}
	return v
}

func defInt(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

func normalizeBufferDesc(d BufferDesc) BufferDesc {
	d.Type = def(d.Type, BufferTypeDefault, BufferTypeVertex)
	d.Usage = def(d.Usage, UsageDefault, UsageImmutable)
	if d.Size == 0 {
		d.Size = len(d.Content)
	}
	return d
}

func normalizeImageDesc(d ImageDesc) ImageDesc {
	d.Type = def(d.Type, ImageTypeDefault, ImageType2D)
	d.Depth = defInt(d.Depth, 1)
	d.NumMipmaps = defInt(d.NumMipmaps, 1)
	d.Usage = def(d.Usage, UsageDefault, UsageImmutable)
	d.PixelFormat = def(d.PixelFormat, PixelFormatDefault, PixelFormatRGBA8)
	d.SampleCount = defInt(d.SampleCount, 1)
	d.MinFilter = def(d.MinFilter, FilterDefault, FilterNearest)
	d.MagFilter = def(d.MagFilter, FilterDefault, FilterNearest)
	d.WrapU = def(d.WrapU, WrapDefault, WrapRepeat)
	d.WrapV = def(d.WrapV, WrapDefault, WrapRepeat)
	d.WrapW = def(d.WrapW, WrapDefault, WrapRepeat)
	return d
}

func normalizeShaderDesc(d ShaderDesc) ShaderDesc {
	normalizeStage(&d.VS, "vs_main")
	normalizeStage(&d.FS, "fs_main")
	return d
}

func normalizeStage(s *ShaderStageDesc, entry string) {
	if s.Entry == "" {
		s.Entry = entry
	}
	for i := range s.UniformBlocks {
		ub := &s.UniformBlocks[i]
		for j := range ub.Uniforms {
			u := &ub.Uniforms[j]
			if u.Type != UniformTypeInvalid && u.ArrayCount <= 0 {
				u.ArrayCount = 1
			}
		}
	}
	for i := range s.Images {
		img := &s.Images[i]
		if img.Used() {
			img.Type = def(img.Type, ImageTypeDefault, ImageType2D)
		}
	}
}

func normalizePipelineDesc(d PipelineDesc) PipelineDesc {
	location := 0
	for i := range d.Layouts {
		l := &d.Layouts[i]
		if l.Stride == 0 {
			continue
		}
		l.StepFunc = def(l.StepFunc, VertexStepDefault, VertexStepPerVertex)
		l.StepRate = defInt(l.StepRate, 1)
		for j := range l.Attrs {
			a := &l.Attrs[j]
			if a.Format == VertexFormatInvalid {
				continue
			}
			if a.Index == 0 {
				a.Index = location
			}
			location++
		}
	}
	d.PrimitiveType = def(d.PrimitiveType, PrimitiveTypeDefault, PrimitiveTypeTriangles)
	d.IndexType = def(d.IndexType, IndexTypeDefault, IndexTypeNone)

	ds := &d.DepthStencil
	normalizeStencil(&ds.StencilFront)
	normalizeStencil(&ds.StencilBack)
	ds.DepthCompareFunc = def(ds.DepthCompareFunc, CompareFuncDefault, CompareFuncAlways)

	b := &d.Blend
	b.SrcFactorRGB = def(b.SrcFactorRGB, BlendFactorDefault, BlendFactorOne)
	b.DstFactorRGB = def(b.DstFactorRGB, BlendFactorDefault, BlendFactorZero)
	b.OpRGB = def(b.OpRGB, BlendOpDefault, BlendOpAdd)
	b.SrcFactorAlpha = def(b.SrcFactorAlpha, BlendFactorDefault, BlendFactorOne)
	b.DstFactorAlpha = def(b.DstFactorAlpha, BlendFactorDefault, BlendFactorZero)
	b.OpAlpha = def(b.OpAlpha, BlendOpDefault, BlendOpAdd)
	b.ColorWriteMask = def(b.ColorWriteMask, ColorMaskDefault, ColorMaskRGBA)

	r := &d.Rasterizer
	r.CullMode = def(r.CullMode, CullModeDefault, CullModeNone)
	r.FaceWinding = def(r.FaceWinding, FaceWindingDefault, FaceWindingCW)
	r.SampleCount = defInt(r.SampleCount, 1)
	return d
}

func normalizeStencil(s *StencilState) {
	s.FailOp = def(s.FailOp, StencilOpDefault, StencilOpKeep)
	s.DepthFailOp = def(s.DepthFailOp, StencilOpDefault, StencilOpKeep)
	s.PassOp = def(s.PassOp, StencilOpDefault, StencilOpKeep)
	s.CompareFunc = def(s.CompareFunc, CompareFuncDefault, CompareFuncAlways)
}

func normalizePassAction(a PassAction) PassAction {
	for i := range a.Colors {
		c := &a.Colors[i]
		if c.Action == ActionDefault {
			c.Action = ActionClear
			c.Value = DefaultClearColor
		}
	}
	if a.Depth.Action == ActionDefault {
		a.Depth.Action = ActionClear
		a.Depth.Value = DefaultClearDepth
	}
	if a.Stencil.Action == ActionDefault {
		a.Stencil.Action = ActionClear
		a.Stencil.Value = DefaultClearStencil
	}
	return a
}
