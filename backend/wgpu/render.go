// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfx"
)

// uniformAlignment is the minimum offset alignment of uniform bindings.
const uniformAlignment = 256

// framebuffer is the offscreen target of the default pass. When a surface
// view is set it replaces the color texture.
type framebuffer struct {
	width, height int
	color         hal.Texture
	colorView     hal.TextureView
	depth         hal.Texture
	depthView     hal.TextureView
	surface       hal.TextureView
}

func (fb *framebuffer) release(device hal.Device) {
	if fb.colorView != nil {
		device.DestroyTextureView(fb.colorView)
		device.DestroyTexture(fb.color)
	}
	if fb.depthView != nil {
		device.DestroyTextureView(fb.depthView)
		device.DestroyTexture(fb.depth)
	}
	*fb = framebuffer{surface: fb.surface}
}

type frameState struct {
	encoder hal.CommandEncoder
	rp      hal.RenderPassEncoder
	target  targetKey
	height  int

	bindings *gfx.Bindings
	pipeline *pipeline
	// native is false when the bound pipeline has no variant for the
	// current target; draws are skipped.
	native bool

	uniformCursor  int
	uniformOffsets [gfx.NumShaderStages][gfx.MaxShaderStageUBs]int
	bindGroupDirty bool
	garbage        []hal.BindGroup
}

// SetSurface makes the default pass render into view, typically the
// current swapchain image of a host window. A nil view restores the
// offscreen framebuffer.
func (d *Device) SetSurface(view hal.TextureView) {
	d.fb.surface = view
}

// ensureFramebuffer (re)creates the offscreen default framebuffer when its
// size changes.
func (d *Device) ensureFramebuffer(w, h int) error {
	if d.fb.width == w && d.fb.height == h && d.fb.depthView != nil {
		return nil
	}
	d.fb.release(d.device)
	size := hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1}

	color, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         d.label("framebuffer", "color"),
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        d.cfg.ColorFormat,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create framebuffer: %w", err)
	}
	colorView, err := d.device.CreateTextureView(color, &hal.TextureViewDescriptor{Label: d.label("framebuffer", "color_view")})
	if err != nil {
		d.device.DestroyTexture(color)
		return fmt.Errorf("wgpu: create framebuffer view: %w", err)
	}
	depth, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         d.label("framebuffer", "depth"),
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        d.cfg.DepthFormat,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		d.device.DestroyTextureView(colorView)
		d.device.DestroyTexture(color)
		return fmt.Errorf("wgpu: create depth buffer: %w", err)
	}
	depthView, err := d.device.CreateTextureView(depth, &hal.TextureViewDescriptor{Label: d.label("framebuffer", "depth_view")})
	if err != nil {
		d.device.DestroyTexture(depth)
		d.device.DestroyTextureView(colorView)
		d.device.DestroyTexture(color)
		return fmt.Errorf("wgpu: create depth view: %w", err)
	}
	d.fb = framebuffer{
		width: w, height: h,
		color: color, colorView: colorView,
		depth: depth, depthView: depthView,
		surface: d.fb.surface,
	}
	return nil
}

func (d *Device) ensureEncoder() error {
	if d.frame.encoder != nil {
		return nil
	}
	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: d.label("encoder", "")})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(d.label("frame", "")); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}
	d.frame.encoder = encoder
	return nil
}

// BeginPass opens a native render pass. Failures are logged and leave the
// device outside a pass, so the commands that follow are ignored.
func (d *Device) BeginPass(obj any, action *gfx.PassAction, width, height int) {
	if err := d.ensureEncoder(); err != nil {
		gfx.Logger().Error("wgpu: begin pass", "err", err)
		return
	}
	var (
		colors []hal.TextureView
		depth  hal.TextureView
		target targetKey
	)
	if obj == nil {
		if err := d.ensureFramebuffer(width, height); err != nil {
			gfx.Logger().Error("wgpu: begin pass", "err", err)
			return
		}
		view := d.fb.colorView
		if d.fb.surface != nil {
			view = d.fb.surface
		}
		colors = []hal.TextureView{view}
		depth = d.fb.depthView
		target = d.defaultTarget()
	} else {
		p := obj.(*pass)
		colors, depth, target = p.colors, p.depth, p.target
	}

	desc := &hal.RenderPassDescriptor{Label: d.label("pass", "")}
	for i, view := range colors {
		c := &action.Colors[i]
		desc.ColorAttachments = append(desc.ColorAttachments, hal.RenderPassColorAttachment{
			View:       view,
			LoadOp:     loadOp(c.Action),
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: clearColor(c.Value),
		})
	}
	if depth != nil {
		desc.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
			View:              depth,
			DepthLoadOp:       loadOp(action.Depth.Action),
			DepthStoreOp:      gputypes.StoreOpStore,
			DepthClearValue:   action.Depth.Value,
			StencilLoadOp:     loadOp(action.Stencil.Action),
			StencilStoreOp:    gputypes.StoreOpStore,
			StencilClearValue: uint32(action.Stencil.Value),
		}
	}

	d.frame.rp = d.frame.encoder.BeginRenderPass(desc)
	d.frame.target = target
	d.frame.height = height
	d.frame.pipeline = nil
	d.frame.bindings = nil
	d.frame.native = false
	d.stats.Passes++
}

// Optional render pass encoder capabilities.
type (
	viewportSetter interface {
		SetViewport(x, y, width, height, minDepth, maxDepth float32)
	}
	scissorSetter interface {
		SetScissorRect(x, y, width, height uint32)
	}
	stencilReferenceSetter interface {
		SetStencilReference(reference uint32)
	}
	blendConstantSetter interface {
		SetBlendConstant(color *gputypes.Color)
	}
)

// flipY converts a bottom-left origin rectangle to the native top-left
// origin.
func (d *Device) flipY(y, h int, originTopLeft bool) int {
	if originTopLeft {
		return y
	}
	return d.frame.height - (y + h)
}

func (d *Device) ApplyViewport(x, y, width, height int, originTopLeft bool) {
	if vs, ok := d.frame.rp.(viewportSetter); ok {
		y = d.flipY(y, height, originTopLeft)
		vs.SetViewport(float32(x), float32(y), float32(width), float32(height), 0, 1)
	}
}

func (d *Device) ApplyScissorRect(x, y, width, height int, originTopLeft bool) {
	if ss, ok := d.frame.rp.(scissorSetter); ok {
		y = d.flipY(y, height, originTopLeft)
		x, y = max(x, 0), max(y, 0)
		ss.SetScissorRect(uint32(x), uint32(y), uint32(max(width, 0)), uint32(max(height, 0)))
	}
}

func (d *Device) ApplyBindings(b *gfx.Bindings) {
	if d.frame.rp == nil {
		return
	}
	p := b.Pipeline.(*pipeline)
	key := d.frame.target
	key.samples = max(p.desc.Rasterizer.SampleCount, 1)
	native, err := d.variant(p, key)
	if err != nil {
		gfx.Logger().Warn("wgpu: pipeline variant unavailable, skipping draws", "pipeline", p.desc.Label, "err", err)
		d.frame.native = false
		return
	}
	rp := d.frame.rp
	rp.SetPipeline(native)
	for i := range b.VertexBuffers {
		if vb, ok := b.VertexBuffers[i].Object.(*buffer); ok {
			rp.SetVertexBuffer(uint32(i), vb.buf, 0)
		}
	}
	if ib, ok := b.IndexBuffer.Object.(*buffer); ok && p.desc.IndexType != gfx.IndexTypeNone {
		rp.SetIndexBuffer(ib.buf, indexFormat(p.desc.IndexType), 0)
	}
	if sr, ok := rp.(stencilReferenceSetter); ok && p.desc.DepthStencil.StencilEnabled {
		sr.SetStencilReference(uint32(p.desc.DepthStencil.StencilRef))
	}
	if bc, ok := rp.(blendConstantSetter); ok && p.desc.Blend.Enabled {
		c := clearColor(p.desc.Blend.BlendColor)
		bc.SetBlendConstant(&c)
	}
	d.frame.bindings = b
	d.frame.pipeline = p
	d.frame.native = true
	d.frame.bindGroupDirty = true
}

// ApplyUniformBlock copies data into the frame's uniform buffer. The block
// is bound at the next draw.
func (d *Device) ApplyUniformBlock(stage gfx.ShaderStage, index int, data []byte) {
	off := align(d.frame.uniformCursor, uniformAlignment)
	n := align(len(data), 4)
	if off+n > d.cfg.UniformBufferSize {
		d.stats.UniformOverrun++
		gfx.Logger().Warn("wgpu: uniform buffer full, block dropped", "stage", stage, "index", index, "bytes", len(data))
		return
	}
	if n != len(data) {
		padded := make([]byte, n)
		copy(padded, data)
		data = padded
	}
	d.queue.WriteBuffer(d.uniforms, uint64(off), data)
	d.frame.uniformCursor = off + n
	d.frame.uniformOffsets[stage][index] = off
	d.frame.bindGroupDirty = true
}

// bindGroup builds the group 0 bind group of the current draw state.
func (d *Device) bindGroup() (hal.BindGroup, error) {
	b := d.frame.bindings
	s := d.frame.pipeline.shader
	var entries []gputypes.BindGroupEntry
	for _, stage := range []gfx.ShaderStage{gfx.ShaderStageVS, gfx.ShaderStageFS} {
		sd := s.desc.Stage(stage)
		for i := range sd.UniformBlocks {
			size := sd.UniformBlocks[i].Size
			if size == 0 {
				continue
			}
			entries = append(entries, gputypes.BindGroupEntry{
				Binding: uniformBinding(stage, i),
				Resource: gputypes.BufferBinding{
					Buffer: d.uniforms.NativeHandle(),
					Offset: uint64(d.frame.uniformOffsets[stage][i]),
					Size:   uint64(size),
				},
			})
		}
		images := &b.VSImages
		if stage == gfx.ShaderStageFS {
			images = &b.FSImages
		}
		for i := range sd.Images {
			im, ok := images[i].(*texture)
			if !sd.Images[i].Used() || !ok {
				continue
			}
			tb, sb := imageBinding(stage, i)
			entries = append(entries,
				gputypes.BindGroupEntry{Binding: tb, Resource: gputypes.TextureViewBinding{TextureView: im.view.NativeHandle()}},
				gputypes.BindGroupEntry{Binding: sb, Resource: gputypes.SamplerBinding{Sampler: im.sampler.NativeHandle()}},
			)
		}
	}
	if len(entries) == 0 {
		return nil, nil
	}
	bg, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   d.label("bind_group", s.desc.Label),
		Layout:  s.bgl,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create bind group: %w", err)
	}
	d.frame.garbage = append(d.frame.garbage, bg)
	d.stats.BindGroups++
	return bg, nil
}

func (d *Device) Draw(baseElement, numElements, numInstances int) {
	if d.frame.rp == nil || !d.frame.native {
		return
	}
	if d.frame.bindGroupDirty {
		bg, err := d.bindGroup()
		if err != nil {
			gfx.Logger().Warn("wgpu: draw skipped", "err", err)
			return
		}
		if bg != nil {
			d.frame.rp.SetBindGroup(0, bg, nil)
		}
		d.frame.bindGroupDirty = false
	}
	if d.frame.pipeline.desc.IndexType != gfx.IndexTypeNone {
		d.frame.rp.DrawIndexed(uint32(numElements), uint32(numInstances), uint32(baseElement), 0, 0)
	} else {
		d.frame.rp.Draw(uint32(numElements), uint32(numInstances), uint32(baseElement), 0)
	}
	d.stats.Draws++
}

func (d *Device) EndPass() {
	if d.frame.rp == nil {
		return
	}
	d.frame.rp.End()
	d.frame.rp = nil
	d.frame.native = false
}

// Commit submits the frame's commands and waits for them to complete.
// Bind groups of the frame are released afterwards.
func (d *Device) Commit() {
	d.stats.Frames++
	if err := d.submit(); err != nil {
		d.stats.SubmitErrors++
		gfx.Logger().Error("wgpu: submit frame", "err", err)
	}
	d.releaseGarbage()
	d.frame.uniformCursor = 0
	d.frame.bindGroupDirty = true
}

func (d *Device) submit() error {
	encoder := d.frame.encoder
	if encoder == nil {
		return nil
	}
	d.frame.encoder = nil
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)
	return d.submitAndWait(cmdBuf)
}

func (d *Device) submitAndWait(cmdBuf hal.CommandBuffer) error {
	fence, err := d.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer d.device.DestroyFence(fence)

	if err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	ok, err := d.device.Wait(fence, 1, d.cfg.FenceTimeout)
	if err != nil || !ok {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", ok, err)
	}
	return nil
}

func (d *Device) releaseGarbage() {
	for _, bg := range d.frame.garbage {
		d.device.DestroyBindGroup(bg)
	}
	d.frame.garbage = d.frame.garbage[:0]
}
