// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfx"
)

// targetKey identifies the attachment formats a native pipeline renders to.
// A gfx pipeline is not tied to a pass, so native variants are built on
// demand for each target layout it is used with.
type targetKey struct {
	colors  [gfx.MaxColorAttachments]gputypes.TextureFormat
	count   int
	depth   gputypes.TextureFormat
	samples int
}

type pipeline struct {
	desc     gfx.PipelineDesc
	shader   *shader
	buffers  []gputypes.VertexBufferLayout
	variants map[targetKey]hal.RenderPipeline
}

func (d *Device) defaultTarget() targetKey {
	k := targetKey{count: 1, depth: d.cfg.DepthFormat, samples: 1}
	k.colors[0] = d.cfg.ColorFormat
	return k
}

// CreatePipeline builds the variant for the default framebuffer so that
// descriptor and shader errors surface at creation.
func (d *Device) CreatePipeline(desc *gfx.PipelineDesc, shd *gfx.ShaderObject) (any, error) {
	s, ok := shd.Object.(*shader)
	if !ok {
		return nil, fmt.Errorf("wgpu: shader object %T not created by this device", shd.Object)
	}
	buffers, err := vertexBuffers(desc)
	if err != nil {
		return nil, err
	}
	p := &pipeline{
		desc:     *desc,
		shader:   s,
		buffers:  buffers,
		variants: make(map[targetKey]hal.RenderPipeline),
	}
	key := d.defaultTarget()
	key.samples = max(desc.Rasterizer.SampleCount, 1)
	if _, err := d.variant(p, key); err != nil {
		return nil, err
	}
	return p, nil
}

func vertexBuffers(desc *gfx.PipelineDesc) ([]gputypes.VertexBufferLayout, error) {
	last := -1
	for i := range desc.Layouts {
		if desc.Layouts[i].Stride > 0 {
			last = i
		}
	}
	buffers := make([]gputypes.VertexBufferLayout, last+1)
	for i := range buffers {
		l := &desc.Layouts[i]
		if l.Stride == 0 {
			continue
		}
		buffers[i].ArrayStride = uint64(l.Stride)
		buffers[i].StepMode = stepMode(l.StepFunc)
		for j := range l.Attrs {
			a := &l.Attrs[j]
			if a.Format == gfx.VertexFormatInvalid {
				continue
			}
			f, err := vertexFormat(a.Format)
			if err != nil {
				return nil, fmt.Errorf("attribute %q: %w", a.Name, err)
			}
			buffers[i].Attributes = append(buffers[i].Attributes, gputypes.VertexAttribute{
				Format:         f,
				Offset:         uint64(a.Offset),
				ShaderLocation: uint32(a.Index),
			})
		}
	}
	return buffers, nil
}

// variant returns the native pipeline of p for target, building it on
// first use.
func (d *Device) variant(p *pipeline, key targetKey) (hal.RenderPipeline, error) {
	if rp, ok := p.variants[key]; ok {
		return rp, nil
	}
	desc := &p.desc
	blend := blendState(&desc.Blend)
	targets := make([]gputypes.ColorTargetState, key.count)
	for i := range targets {
		targets[i] = gputypes.ColorTargetState{
			Format:    key.colors[i],
			Blend:     blend,
			WriteMask: writeMask(desc.Blend.ColorWriteMask),
		}
	}

	var depthStencil *hal.DepthStencilState
	if key.depth != gputypes.TextureFormatUndefined {
		ds := &desc.DepthStencil
		depthStencil = &hal.DepthStencilState{
			Format:            key.depth,
			DepthWriteEnabled: ds.DepthWriteEnabled,
			DepthCompare:      compareFunction(ds.DepthCompareFunc),
		}
		if ds.StencilEnabled {
			depthStencil.StencilFront = stencilFace(&ds.StencilFront)
			depthStencil.StencilBack = stencilFace(&ds.StencilBack)
			depthStencil.StencilReadMask = uint32(ds.StencilReadMask)
			depthStencil.StencilWriteMask = uint32(ds.StencilWriteMask)
		} else {
			keep := stencilFace(&gfx.StencilState{})
			depthStencil.StencilFront = keep
			depthStencil.StencilBack = keep
		}
	}

	primitive := gputypes.PrimitiveState{
		Topology:  topology(desc.PrimitiveType),
		FrontFace: frontFace(desc.Rasterizer.FaceWinding),
		CullMode:  cullMode(desc.Rasterizer.CullMode),
	}

	rp, err := d.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  d.label("pipeline", desc.Label),
		Layout: p.shader.layout,
		Vertex: hal.VertexState{
			Module:     p.shader.vs,
			EntryPoint: p.shader.desc.VS.Entry,
			Buffers:    p.buffers,
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader.fs,
			EntryPoint: p.shader.desc.FS.Entry,
			Targets:    targets,
		},
		DepthStencil: depthStencil,
		Primitive:    primitive,
		Multisample: gputypes.MultisampleState{
			Count:                  uint32(key.samples),
			Mask:                   0xFFFFFFFF,
			AlphaToCoverageEnabled: desc.Rasterizer.AlphaToCoverageEnabled,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create render pipeline: %w", err)
	}
	p.variants[key] = rp
	d.stats.PipelineBuilds++
	return rp, nil
}

func (d *Device) DestroyPipeline(obj any) {
	p := obj.(*pipeline)
	for key, rp := range p.variants {
		d.device.DestroyRenderPipeline(rp)
		delete(p.variants, key)
	}
	if d.frame.pipeline == p {
		d.frame.pipeline = nil
	}
}
