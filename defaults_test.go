// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import (
	"reflect"
	"testing"
)

func TestNormalizeBufferDesc(t *testing.T) {
	tests := []struct {
		name string
		in   BufferDesc
		want BufferDesc
	}{
		{
			name: "defaults",
			in:   BufferDesc{Size: 16},
			want: BufferDesc{Size: 16, Type: BufferTypeVertex, Usage: UsageImmutable},
		},
		{
			name: "size from content",
			in:   BufferDesc{Content: make([]byte, 12)},
			want: BufferDesc{Size: 12, Type: BufferTypeVertex, Usage: UsageImmutable},
		},
		{
			name: "explicit values kept",
			in:   BufferDesc{Size: 8, Type: BufferTypeIndex, Usage: UsageStream},
			want: BufferDesc{Size: 8, Type: BufferTypeIndex, Usage: UsageStream},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeBufferDesc(tt.in)
			if got.Size != tt.want.Size || got.Type != tt.want.Type || got.Usage != tt.want.Usage {
				t.Errorf("normalizeBufferDesc() = {%d %v %v}, want {%d %v %v}",
					got.Size, got.Type, got.Usage, tt.want.Size, tt.want.Type, tt.want.Usage)
			}
		})
	}
}

func TestNormalizeImageDesc(t *testing.T) {
	got := normalizeImageDesc(ImageDesc{Width: 4, Height: 4})
	want := ImageDesc{
		Type:        ImageType2D,
		Width:       4,
		Height:      4,
		Depth:       1,
		NumMipmaps:  1,
		Usage:       UsageImmutable,
		PixelFormat: PixelFormatRGBA8,
		SampleCount: 1,
		MinFilter:   FilterNearest,
		MagFilter:   FilterNearest,
		WrapU:       WrapRepeat,
		WrapV:       WrapRepeat,
		WrapW:       WrapRepeat,
	}
	// ImageDesc holds content slices; compare with content cleared.
	got.Content, want.Content = ImageContent{}, ImageContent{}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("normalizeImageDesc() = %+v, want %+v", got, want)
	}

	kept := normalizeImageDesc(ImageDesc{Type: ImageType3D, Depth: 8, PixelFormat: PixelFormatR32F, MinFilter: FilterLinear})
	if kept.Type != ImageType3D || kept.Depth != 8 || kept.PixelFormat != PixelFormatR32F || kept.MinFilter != FilterLinear {
		t.Errorf("explicit values overwritten: %+v", kept)
	}
}

func TestNormalizeShaderDesc(t *testing.T) {
	in := ShaderDesc{VS: ShaderStageDesc{Source: "v"}, FS: ShaderStageDesc{Source: "f", Entry: "main"}}
	in.VS.UniformBlocks[0].Size = 16
	in.VS.UniformBlocks[0].Uniforms[0] = UniformDesc{Name: "color", Type: UniformTypeFloat4}
	in.FS.Images[2] = ShaderImageDesc{Name: "tex"}

	got := normalizeShaderDesc(in)
	if got.VS.Entry != "vs_main" || got.FS.Entry != "main" {
		t.Errorf("entries = %q, %q", got.VS.Entry, got.FS.Entry)
	}
	if got.VS.UniformBlocks[0].Uniforms[0].ArrayCount != 1 {
		t.Errorf("ArrayCount = %d, want 1", got.VS.UniformBlocks[0].Uniforms[0].ArrayCount)
	}
	if got.VS.UniformBlocks[0].Uniforms[1].ArrayCount != 0 {
		t.Error("unused uniform was given an array count")
	}
	if got.FS.Images[2].Type != ImageType2D {
		t.Errorf("image type = %v, want 2D", got.FS.Images[2].Type)
	}
	if got.FS.Images[0].Type != ImageTypeDefault {
		t.Error("unused image slot was given a type")
	}
}

func TestNormalizePipelineDesc(t *testing.T) {
	var in PipelineDesc
	in.Layouts[0].Stride = 24
	in.Layouts[0].Attrs[0] = NamedAttr("position", 0, VertexFormatFloat3)
	in.Layouts[0].Attrs[1] = NamedAttr("normal", 12, VertexFormatFloat3)
	in.Layouts[1].Stride = 16
	in.Layouts[1].StepFunc = VertexStepPerInstance
	in.Layouts[1].Attrs[0] = VertexAttrDesc{Name: "offset", Index: 7, Format: VertexFormatFloat4}
	in.Layouts[1].Attrs[1] = NamedAttr("tint", 0, VertexFormatUByte4N)

	got := normalizePipelineDesc(in)

	locs := []int{
		got.Layouts[0].Attrs[0].Index,
		got.Layouts[0].Attrs[1].Index,
		got.Layouts[1].Attrs[0].Index,
		got.Layouts[1].Attrs[1].Index,
	}
	// First attribute keeps 0, explicit 7 is kept, the rest follow their ordinal.
	wantLocs := []int{0, 1, 7, 3}
	for i := range locs {
		if locs[i] != wantLocs[i] {
			t.Errorf("attribute locations = %v, want %v", locs, wantLocs)
			break
		}
	}
	if got.Layouts[0].StepFunc != VertexStepPerVertex || got.Layouts[0].StepRate != 1 {
		t.Errorf("layout 0 step = %v/%d", got.Layouts[0].StepFunc, got.Layouts[0].StepRate)
	}
	if got.Layouts[1].StepFunc != VertexStepPerInstance {
		t.Errorf("layout 1 step = %v, want per-instance", got.Layouts[1].StepFunc)
	}
	if got.Layouts[2].StepFunc != VertexStepDefault {
		t.Error("unused layout was normalized")
	}
	if got.PrimitiveType != PrimitiveTypeTriangles || got.IndexType != IndexTypeNone {
		t.Errorf("primitive/index = %v/%v", got.PrimitiveType, got.IndexType)
	}
	if got.Blend.SrcFactorRGB != BlendFactorOne || got.Blend.DstFactorRGB != BlendFactorZero ||
		got.Blend.ColorWriteMask != ColorMaskRGBA {
		t.Errorf("blend = %+v", got.Blend)
	}
	if got.DepthStencil.DepthCompareFunc != CompareFuncAlways ||
		got.DepthStencil.StencilFront.PassOp != StencilOpKeep ||
		got.DepthStencil.StencilBack.CompareFunc != CompareFuncAlways {
		t.Errorf("depth stencil = %+v", got.DepthStencil)
	}
	if got.Rasterizer.CullMode != CullModeNone || got.Rasterizer.SampleCount != 1 {
		t.Errorf("rasterizer = %+v", got.Rasterizer)
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	var in PipelineDesc
	in.Layouts[0].Stride = 12
	in.Layouts[0].Attrs[0] = NamedAttr("a", 0, VertexFormatFloat2)
	in.Layouts[0].Attrs[1] = NamedAttr("b", 8, VertexFormatFloat)
	before := in
	_ = normalizePipelineDesc(in)
	if in != before {
		t.Error("normalizePipelineDesc modified its argument")
	}

	sd := ShaderDesc{VS: ShaderStageDesc{Source: "v"}, FS: ShaderStageDesc{Source: "f"}}
	sdBefore := sd
	_ = normalizeShaderDesc(sd)
	if sd != sdBefore {
		t.Error("normalizeShaderDesc modified its argument")
	}

	// Normalizing twice gives the same result.
	once := normalizePipelineDesc(in)
	if twice := normalizePipelineDesc(once); twice != once {
		t.Error("normalizePipelineDesc is not idempotent")
	}
}

func TestNormalizePassAction(t *testing.T) {
	var a PassAction
	a.Colors[1] = ColorAttachmentAction{Action: ActionLoad}
	a.Depth = DepthAttachmentAction{Action: ActionClear, Value: 0.25}

	got := normalizePassAction(a)
	if got.Colors[0].Action != ActionClear || got.Colors[0].Value != DefaultClearColor {
		t.Errorf("color 0 = %+v", got.Colors[0])
	}
	if got.Colors[1].Action != ActionLoad {
		t.Errorf("color 1 action = %v, want load", got.Colors[1].Action)
	}
	if got.Depth.Value != 0.25 {
		t.Errorf("depth value = %v, want 0.25", got.Depth.Value)
	}
	if got.Stencil.Action != ActionClear || got.Stencil.Value != DefaultClearStencil {
		t.Errorf("stencil = %+v", got.Stencil)
	}
	if a.Colors[0].Action != ActionDefault {
		t.Error("normalizePassAction modified its argument")
	}
}
