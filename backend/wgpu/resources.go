// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfx"
)

// WGSL binding slots in bind group 0. Uniform block i of a stage binds at
// the stage's uniform base plus i. Image i binds its texture at the stage's
// image base plus 2i and its sampler at the next slot.
const (
	vsUniformBinding = 0
	fsUniformBinding = vsUniformBinding + gfx.MaxShaderStageUBs
	vsImageBinding   = 8
	fsImageBinding   = vsImageBinding + 2*gfx.MaxShaderStageImages
)

func uniformBinding(stage gfx.ShaderStage, index int) uint32 {
	if stage == gfx.ShaderStageVS {
		return uint32(vsUniformBinding + index)
	}
	return uint32(fsUniformBinding + index)
}

func imageBinding(stage gfx.ShaderStage, index int) (texture, sampler uint32) {
	base := vsImageBinding
	if stage == gfx.ShaderStageFS {
		base = fsImageBinding
	}
	t := uint32(base + 2*index)
	return t, t + 1
}

func align(n, to int) int { return (n + to - 1) / to * to }

type buffer struct {
	buf  hal.Buffer
	size int
}

type texture struct {
	desc    gfx.ImageDesc
	format  gputypes.TextureFormat
	tex     hal.Texture
	view    hal.TextureView
	sampler hal.Sampler
}

type shader struct {
	desc   gfx.ShaderDesc
	vs, fs hal.ShaderModule
	bgl    hal.BindGroupLayout
	layout hal.PipelineLayout
}

type pass struct {
	colors []hal.TextureView
	depth  hal.TextureView
	target targetKey
	width  int
	height int
}

func (d *Device) CreateBuffer(desc *gfx.BufferDesc) (any, error) {
	usage := gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst
	if desc.Type == gfx.BufferTypeIndex {
		usage = gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst
	}
	size := align(desc.Size, 4)
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: d.label("buffer", desc.Label),
		Size:  uint64(size),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create buffer: %w", err)
	}
	b := &buffer{buf: buf, size: size}
	if len(desc.Content) > 0 {
		d.writeBuffer(b, desc.Content)
	}
	return b, nil
}

// writeBuffer uploads data at offset 0, padding it to a multiple of four
// bytes as queue writes require.
func (d *Device) writeBuffer(b *buffer, data []byte) {
	if n := align(len(data), 4); n != len(data) {
		padded := make([]byte, n)
		copy(padded, data)
		data = padded
	}
	d.queue.WriteBuffer(b.buf, 0, data)
}

func (d *Device) DestroyBuffer(obj any) {
	d.device.DestroyBuffer(obj.(*buffer).buf)
}

func (d *Device) UpdateBuffer(obj any, data []byte) error {
	d.writeBuffer(obj.(*buffer), data)
	return nil
}

func (d *Device) CreateImage(desc *gfx.ImageDesc) (any, error) {
	format, err := textureFormat(desc.PixelFormat)
	if err != nil {
		return nil, err
	}
	usage := gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst
	if desc.RenderTarget {
		usage |= gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc
	}
	label := d.label("image", desc.Label)
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label: label,
		Size: hal.Extent3D{
			Width:              uint32(desc.Width),
			Height:             uint32(desc.Height),
			DepthOrArrayLayers: uint32(layers(desc)),
		},
		MipLevelCount: uint32(desc.NumMipmaps),
		SampleCount:   uint32(desc.SampleCount),
		Dimension:     textureDimension(desc.Type),
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create texture: %w", err)
	}
	im := &texture{desc: *desc, format: format, tex: tex}
	im.desc.Content = gfx.ImageContent{}

	im.view, err = d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        format,
		Dimension:     viewDimension(desc.Type),
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: uint32(desc.NumMipmaps),
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return nil, fmt.Errorf("wgpu: create texture view: %w", err)
	}

	minFilter, mipFilter := filterModes(desc.MinFilter)
	magFilter, _ := filterModes(desc.MagFilter)
	im.sampler, err = d.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        label + "_sampler",
		AddressModeU: addressMode(desc.WrapU),
		AddressModeV: addressMode(desc.WrapV),
		AddressModeW: addressMode(desc.WrapW),
		MagFilter:    magFilter,
		MinFilter:    minFilter,
		MipmapFilter: mipFilter,
	})
	if err != nil {
		d.device.DestroyTextureView(im.view)
		d.device.DestroyTexture(tex)
		return nil, fmt.Errorf("wgpu: create sampler: %w", err)
	}

	d.writeImage(im, &desc.Content)
	return im, nil
}

// writeImage uploads every present subimage of c.
func (d *Device) writeImage(im *texture, c *gfx.ImageContent) {
	desc := &im.desc
	for face := range desc.Faces() {
		for mip := range desc.NumMipmaps {
			data := c.Subimage[face][mip]
			if len(data) == 0 {
				continue
			}
			if desc.PixelFormat == gfx.PixelFormatRGB8 {
				data = rgbToRGBA(data)
			}
			w := max(desc.Width>>mip, 1)
			h := max(desc.Height>>mip, 1)
			depth := 1
			switch desc.Type {
			case gfx.ImageTypeArray:
				depth = desc.Depth
			case gfx.ImageType3D:
				depth = max(desc.Depth>>mip, 1)
			}
			pitch, rows := rowBytes(desc.PixelFormat, w, h)
			d.queue.WriteTexture(
				&hal.ImageCopyTexture{
					Texture:  im.tex,
					MipLevel: uint32(mip),
					Origin:   hal.Origin3D{Z: uint32(face)},
				},
				data,
				&hal.ImageDataLayout{
					Offset:       0,
					BytesPerRow:  uint32(pitch),
					RowsPerImage: uint32(rows),
				},
				&hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: uint32(depth)},
			)
		}
	}
}

func (d *Device) DestroyImage(obj any) {
	im := obj.(*texture)
	d.device.DestroySampler(im.sampler)
	d.device.DestroyTextureView(im.view)
	d.device.DestroyTexture(im.tex)
}

func (d *Device) UpdateImage(obj any, _ *gfx.ImageDesc, content *gfx.ImageContent) error {
	d.writeImage(obj.(*texture), content)
	return nil
}

func (d *Device) CreateShader(desc *gfx.ShaderDesc) (any, error) {
	s := &shader{desc: *desc}
	var err error
	if s.vs, err = d.shaderModule(d.label("shader_vs", desc.Label), desc.VS.Source); err != nil {
		return nil, err
	}
	if desc.FS.Source == desc.VS.Source {
		s.fs = s.vs
	} else if s.fs, err = d.shaderModule(d.label("shader_fs", desc.Label), desc.FS.Source); err != nil {
		d.device.DestroyShaderModule(s.vs)
		return nil, err
	}

	s.bgl, err = d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   d.label("bind_group_layout", desc.Label),
		Entries: bindGroupLayoutEntries(desc),
	})
	if err != nil {
		d.destroyModules(s)
		return nil, fmt.Errorf("wgpu: create bind group layout: %w", err)
	}
	s.layout, err = d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            d.label("pipeline_layout", desc.Label),
		BindGroupLayouts: []hal.BindGroupLayout{s.bgl},
	})
	if err != nil {
		d.device.DestroyBindGroupLayout(s.bgl)
		d.destroyModules(s)
		return nil, fmt.Errorf("wgpu: create pipeline layout: %w", err)
	}
	return s, nil
}

func (d *Device) shaderModule(label, source string) (hal.ShaderModule, error) {
	src := hal.ShaderSource{WGSL: source}
	if d.cfg.CompileSPIRV {
		code, err := compileSPIRV(source)
		if err != nil {
			return nil, err
		}
		src = hal.ShaderSource{SPIRV: code}
	}
	mod, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{Label: label, Source: src})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create shader module %s: %w", label, err)
	}
	return mod, nil
}

// compileSPIRV translates WGSL to little-endian SPIR-V words.
func compileSPIRV(source string) ([]uint32, error) {
	spirv, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("wgpu: compile shader: %w", err)
	}
	if len(spirv)%4 != 0 {
		return nil, fmt.Errorf("wgpu: compile shader: SPIR-V length %d not a multiple of 4", len(spirv))
	}
	code := make([]uint32, len(spirv)/4)
	for i := range code {
		code[i] = uint32(spirv[i*4]) |
			uint32(spirv[i*4+1])<<8 |
			uint32(spirv[i*4+2])<<16 |
			uint32(spirv[i*4+3])<<24
	}
	return code, nil
}

func bindGroupLayoutEntries(desc *gfx.ShaderDesc) []gputypes.BindGroupLayoutEntry {
	var entries []gputypes.BindGroupLayoutEntry
	for _, stage := range []gfx.ShaderStage{gfx.ShaderStageVS, gfx.ShaderStageFS} {
		visibility := gputypes.ShaderStageVertex
		if stage == gfx.ShaderStageFS {
			visibility = gputypes.ShaderStageFragment
		}
		sd := desc.Stage(stage)
		for i := range sd.UniformBlocks {
			if sd.UniformBlocks[i].Size == 0 {
				continue
			}
			entries = append(entries, gputypes.BindGroupLayoutEntry{
				Binding:    uniformBinding(stage, i),
				Visibility: visibility,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			})
		}
		for i := range sd.Images {
			if !sd.Images[i].Used() {
				continue
			}
			tb, sb := imageBinding(stage, i)
			entries = append(entries,
				gputypes.BindGroupLayoutEntry{
					Binding:    tb,
					Visibility: visibility,
					Texture: &gputypes.TextureBindingLayout{
						SampleType:    gputypes.TextureSampleTypeFloat,
						ViewDimension: viewDimension(sd.Images[i].Type),
					},
				},
				gputypes.BindGroupLayoutEntry{
					Binding:    sb,
					Visibility: visibility,
					Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
				},
			)
		}
	}
	return entries
}

func (d *Device) destroyModules(s *shader) {
	if s.fs != nil && s.fs != s.vs {
		d.device.DestroyShaderModule(s.fs)
	}
	if s.vs != nil {
		d.device.DestroyShaderModule(s.vs)
	}
}

func (d *Device) DestroyShader(obj any) {
	s := obj.(*shader)
	d.device.DestroyPipelineLayout(s.layout)
	d.device.DestroyBindGroupLayout(s.bgl)
	d.destroyModules(s)
}

func (d *Device) CreatePass(desc *gfx.PassDesc, colors []gfx.Attachment, depth *gfx.Attachment) (any, error) {
	p := &pass{}
	for i := range colors {
		view, format, err := d.attachmentView(d.label("pass_color", desc.Label), &colors[i])
		if err != nil {
			d.destroyPassViews(p)
			return nil, err
		}
		p.colors = append(p.colors, view)
		p.target.colors[i] = format
	}
	p.target.count = len(colors)
	if depth != nil {
		view, format, err := d.attachmentView(d.label("pass_depth", desc.Label), depth)
		if err != nil {
			d.destroyPassViews(p)
			return nil, err
		}
		p.depth = view
		p.target.depth = format
	}
	first := colors[0]
	p.width = max(first.Desc.Width>>first.MipLevel, 1)
	p.height = max(first.Desc.Height>>first.MipLevel, 1)
	p.target.samples = max(first.Desc.SampleCount, 1)
	return p, nil
}

// attachmentView creates a single-subresource view of an attachment image.
func (d *Device) attachmentView(label string, a *gfx.Attachment) (hal.TextureView, gputypes.TextureFormat, error) {
	im := a.Image.(*texture)
	view, err := d.device.CreateTextureView(im.tex, &hal.TextureViewDescriptor{
		Label:           label,
		Format:          im.format,
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          gputypes.TextureAspectAll,
		BaseMipLevel:    uint32(a.MipLevel),
		MipLevelCount:   1,
		BaseArrayLayer:  uint32(a.Slice),
		ArrayLayerCount: 1,
	})
	if err != nil {
		return nil, gputypes.TextureFormatUndefined, fmt.Errorf("wgpu: create attachment view: %w", err)
	}
	return view, im.format, nil
}

func (d *Device) destroyPassViews(p *pass) {
	for _, v := range p.colors {
		d.device.DestroyTextureView(v)
	}
	if p.depth != nil {
		d.device.DestroyTextureView(p.depth)
	}
}

func (d *Device) DestroyPass(obj any) {
	d.destroyPassViews(obj.(*pass))
}
