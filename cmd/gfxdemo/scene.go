// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gfx"
)

const quadWGSL = `
struct Params {
    // xy offset, z scale, w rotation in radians
    transform: vec4<f32>,
}

@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(32) var tex: texture_2d<f32>;
@group(0) @binding(33) var smp: sampler;

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
}

@vertex
fn vs_main(@location(0) pos: vec2<f32>, @location(1) uv: vec2<f32>) -> VertexOutput {
    let c = cos(params.transform.w);
    let s = sin(params.transform.w);
    let p = vec2<f32>(pos.x * c - pos.y * s, pos.x * s + pos.y * c) * params.transform.z;
    var out: VertexOutput;
    out.position = vec4<f32>(p + params.transform.xy, 0.0, 1.0);
    out.uv = uv;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return textureSample(tex, smp, in.uv);
}
`

// scene is a textured quad drawn into the default pass, plus an offscreen
// pass whose color target is cleared every frame and sampled by a second
// quad.
type scene struct {
	shader   gfx.Shader
	pipeline gfx.Pipeline
	vertices gfx.Buffer
	indices  gfx.Buffer
	texture  gfx.Image
	target   gfx.Image
	pass     gfx.Pass
}

func quadVertices() []byte {
	// x, y, u, v
	v := []float32{
		-0.5, -0.5, 0, 1,
		0.5, -0.5, 1, 1,
		0.5, 0.5, 1, 0,
		-0.5, 0.5, 0, 0,
	}
	return float32Bytes(v)
}

func float32Bytes(v []float32) []byte {
	b := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(f))
	}
	return b
}

// checker returns an RGBA8 checkerboard descriptor used when no texture
// file is given.
func checker(size, cell int) *gfx.ImageDesc {
	pix := make([]byte, size*size*4)
	for y := range size {
		for x := range size {
			c := byte(60)
			if (x/cell+y/cell)%2 == 0 {
				c = 230
			}
			o := (y*size + x) * 4
			pix[o], pix[o+1], pix[o+2], pix[o+3] = c, c, c, 255
		}
	}
	d := &gfx.ImageDesc{
		Width:     size,
		Height:    size,
		MinFilter: gfx.FilterNearest,
		MagFilter: gfx.FilterNearest,
		Label:     "checker",
	}
	d.Content.Subimage[0][0] = pix
	return d
}

// newScene builds the scene's resources. texture may be a handle still in
// the alloc state; draws using it are dropped until it becomes valid.
func newScene(ctx *gfx.Context, texture gfx.Image, targetSize int) (*scene, error) {
	s := &scene{texture: texture}
	var err error

	sd := &gfx.ShaderDesc{
		VS:    gfx.ShaderStageDesc{Source: quadWGSL},
		FS:    gfx.ShaderStageDesc{Source: quadWGSL},
		Label: "quad",
	}
	sd.VS.UniformBlocks[0].Size = 16
	sd.VS.UniformBlocks[0].Uniforms[0] = gfx.NamedUniform("transform", 0, gfx.UniformTypeFloat4, 0)
	sd.FS.Images[0] = gfx.NamedImage("tex", gfx.ImageType2D)
	if s.shader, err = ctx.MakeShader(sd); err != nil {
		return nil, fmt.Errorf("shader: %w", err)
	}

	pd := &gfx.PipelineDesc{
		Shader:    s.shader,
		IndexType: gfx.IndexTypeUint16,
		Label:     "quad",
	}
	pd.Layouts[0].Stride = 16
	pd.Layouts[0].Attrs[0] = gfx.NamedAttr("pos", 0, gfx.VertexFormatFloat2)
	pd.Layouts[0].Attrs[1] = gfx.NamedAttr("uv", 8, gfx.VertexFormatFloat2)
	pd.Blend.Enabled = true
	pd.Blend.SrcFactorRGB = gfx.BlendFactorSrcAlpha
	pd.Blend.DstFactorRGB = gfx.BlendFactorOneMinusSrcAlpha
	if s.pipeline, err = ctx.MakePipeline(pd); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	if s.vertices, err = ctx.MakeBuffer(&gfx.BufferDesc{Content: quadVertices(), Label: "quad"}); err != nil {
		return nil, fmt.Errorf("vertices: %w", err)
	}
	idx := []byte{0, 0, 1, 0, 2, 0, 0, 0, 2, 0, 3, 0}
	if s.indices, err = ctx.MakeBuffer(&gfx.BufferDesc{Type: gfx.BufferTypeIndex, Content: idx, Label: "quad"}); err != nil {
		return nil, fmt.Errorf("indices: %w", err)
	}

	if s.target, err = ctx.MakeImage(&gfx.ImageDesc{
		RenderTarget: true,
		Width:        targetSize,
		Height:       targetSize,
		MinFilter:    gfx.FilterLinear,
		MagFilter:    gfx.FilterLinear,
		Label:        "offscreen",
	}); err != nil {
		return nil, fmt.Errorf("offscreen target: %w", err)
	}
	var passDesc gfx.PassDesc
	passDesc.ColorAttachments[0].Image = s.target
	passDesc.Label = "offscreen"
	if s.pass, err = ctx.MakePass(&passDesc); err != nil {
		return nil, fmt.Errorf("offscreen pass: %w", err)
	}
	return s, nil
}

func (s *scene) drawState(img gfx.Image) gfx.DrawState {
	ds := gfx.DrawState{Pipeline: s.pipeline, IndexBuffer: s.indices}
	ds.VertexBuffers[0] = s.vertices
	ds.FSImages[0] = img
	return ds
}

// frame renders frame n at width x height.
func (s *scene) frame(ctx *gfx.Context, n, width, height int) {
	t := float32(n) / 60

	var offscreen gfx.PassAction
	offscreen.Colors[0].Action = gfx.ActionClear
	offscreen.Colors[0].Value = [4]float32{0.5 + 0.5*float32(math.Sin(float64(t))), 0.3, 0.6, 1}
	ctx.BeginPass(s.pass, offscreen)
	ctx.EndPass()

	var action gfx.PassAction
	action.Colors[0].Action = gfx.ActionClear
	action.Colors[0].Value = [4]float32{0.1, 0.1, 0.15, 1}
	ctx.BeginDefaultPass(action, width, height)
	ctx.ApplyViewport(0, 0, width, height, true)

	ctx.ApplyDrawState(s.drawState(s.texture))
	ctx.ApplyUniformBlock(gfx.ShaderStageVS, 0, float32Bytes([]float32{-0.45, 0, 1, t}))
	ctx.Draw(0, 6, 1)

	ctx.ApplyDrawState(s.drawState(s.target))
	ctx.ApplyUniformBlock(gfx.ShaderStageVS, 0, float32Bytes([]float32{0.45, 0, 0.8, -t}))
	ctx.Draw(0, 6, 1)

	ctx.EndPass()
	ctx.Commit()
}

func (s *scene) destroy(ctx *gfx.Context) {
	ctx.DestroyPass(s.pass)
	ctx.DestroyImage(s.target)
	ctx.DestroyBuffer(s.indices)
	ctx.DestroyBuffer(s.vertices)
	ctx.DestroyPipeline(s.pipeline)
	ctx.DestroyShader(s.shader)
}
