// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import "fmt"

// Render commands never fail loudly. A command that refers to a resource
// which is not valid, or that is issued out of order, is dropped and
// counted in Stats.DroppedCommands. A rejected BeginPass drops every
// command up to EndPass; a rejected ApplyDrawState drops the uniform
// updates and draws that follow it.

func (c *Context) drop(cmd string, args ...any) {
	c.counters.dropped++
	Logger().Debug("gfx: command dropped", append([]any{"context", c.label, "cmd", cmd}, args...)...)
}

// BeginDefaultPass starts rendering into the default framebuffer.
func (c *Context) BeginDefaultPass(action PassAction, width, height int) {
	if !c.valid {
		return
	}
	if c.pass.active {
		c.drop("begin_default_pass", "reason", "pass already active")
		return
	}
	a := normalizePassAction(action)
	c.pass = passState{active: true, valid: true}
	c.dev.BeginPass(nil, &a, width, height)
}

// BeginPass starts rendering into an offscreen pass. If the pass or any of
// its attachment images is not valid, the pass is entered but every command
// until EndPass is dropped.
func (c *Context) BeginPass(pass Pass, action PassAction) {
	if !c.valid {
		return
	}
	if c.pass.active {
		c.drop("begin_pass", "reason", "pass already active")
		return
	}
	c.pass = passState{active: true}
	p := validSlot(c.reg.pass(pass))
	if p == nil {
		c.drop("begin_pass", "pass", pass)
		return
	}
	if _, _, err := c.resolveAttachments(&p.Payload.desc); err != nil {
		c.drop("begin_pass", "pass", pass, "err", err)
		return
	}
	a := normalizePassAction(action)
	c.pass.valid = true
	c.dev.BeginPass(p.Payload.obj, &a, p.Payload.width, p.Payload.height)
}

// ApplyViewport sets the viewport rectangle of the current pass.
func (c *Context) ApplyViewport(x, y, width, height int, originTopLeft bool) {
	if !c.valid {
		return
	}
	if !c.pass.valid {
		c.drop("apply_viewport")
		return
	}
	c.dev.ApplyViewport(x, y, width, height, originTopLeft)
}

// ApplyScissorRect sets the scissor rectangle of the current pass.
func (c *Context) ApplyScissorRect(x, y, width, height int, originTopLeft bool) {
	if !c.valid {
		return
	}
	if !c.pass.valid {
		c.drop("apply_scissor_rect")
		return
	}
	c.dev.ApplyScissorRect(x, y, width, height, originTopLeft)
}

// ApplyDrawState binds a pipeline with its vertex buffers, index buffer and
// images. Each vertex layout of the pipeline needs a valid vertex buffer,
// an indexed pipeline needs a valid index buffer, and each image slot of
// the shader needs a valid image. Otherwise the draw state is dropped along
// with the draws that follow it.
func (c *Context) ApplyDrawState(ds DrawState) {
	if !c.valid {
		return
	}
	if !c.pass.valid {
		c.drop("apply_draw_state", "reason", "no valid pass")
		return
	}
	c.pass.drawValid = false
	b, err := c.resolveDrawState(&ds)
	if err != nil {
		c.drop("apply_draw_state", "err", err)
		return
	}
	c.pass.drawValid = true
	c.pass.pipeline = ds.Pipeline
	c.dev.ApplyBindings(b)
}

func (c *Context) resolveDrawState(ds *DrawState) (*Bindings, error) {
	pip := validSlot(c.reg.pipeline(ds.Pipeline))
	if pip == nil {
		return nil, fmt.Errorf("pipeline %v: %w", ds.Pipeline, ErrInvalidHandle)
	}
	pd := &pip.Payload.desc
	shd := validSlot(c.reg.shader(pd.Shader))
	if shd == nil {
		return nil, fmt.Errorf("pipeline shader %v: %w", pd.Shader, ErrInvalidHandle)
	}
	b := &Bindings{
		Pipeline:     pip.Payload.obj,
		PipelineDesc: pd,
		Shader:       ShaderObject{Desc: &shd.Payload.desc, Object: shd.Payload.obj},
	}

	for i := range pd.Layouts {
		h := ds.VertexBuffers[i]
		if pd.Layouts[i].Stride == 0 {
			if !h.IsZero() {
				return nil, fmt.Errorf("vertex buffer %d bound to unused layout", i)
			}
			continue
		}
		buf := validSlot(c.reg.buffer(h))
		if buf == nil {
			return nil, fmt.Errorf("vertex buffer %d %v: %w", i, h, ErrInvalidHandle)
		}
		if buf.Payload.desc.Type != BufferTypeVertex {
			return nil, fmt.Errorf("vertex buffer %d %v is not a vertex buffer", i, h)
		}
		b.VertexBuffers[i] = BufferBinding{Object: buf.Payload.obj, Desc: &buf.Payload.desc}
	}

	if pd.IndexType == IndexTypeNone {
		if !ds.IndexBuffer.IsZero() {
			return nil, fmt.Errorf("index buffer bound to non-indexed pipeline")
		}
	} else {
		buf := validSlot(c.reg.buffer(ds.IndexBuffer))
		if buf == nil {
			return nil, fmt.Errorf("index buffer %v: %w", ds.IndexBuffer, ErrInvalidHandle)
		}
		if buf.Payload.desc.Type != BufferTypeIndex {
			return nil, fmt.Errorf("index buffer %v is not an index buffer", ds.IndexBuffer)
		}
		b.IndexBuffer = BufferBinding{Object: buf.Payload.obj, Desc: &buf.Payload.desc}
	}

	sd := &shd.Payload.desc
	if err := c.resolveImages(ShaderStageVS, &sd.VS, &ds.VSImages, &b.VSImages); err != nil {
		return nil, err
	}
	if err := c.resolveImages(ShaderStageFS, &sd.FS, &ds.FSImages, &b.FSImages); err != nil {
		return nil, err
	}
	return b, nil
}

func (c *Context) resolveImages(stage ShaderStage, sd *ShaderStageDesc, in *[MaxShaderStageImages]Image, out *[MaxShaderStageImages]any) error {
	for i := range sd.Images {
		h := in[i]
		slot := &sd.Images[i]
		if !slot.Used() {
			if !h.IsZero() {
				return fmt.Errorf("%s image %d bound to unused slot", stage, i)
			}
			continue
		}
		img := validSlot(c.reg.image(h))
		if img == nil {
			return fmt.Errorf("%s image %d %v: %w", stage, i, h, ErrInvalidHandle)
		}
		if img.Payload.desc.Type != slot.Type {
			return fmt.Errorf("%s image %d %v has wrong image type", stage, i, h)
		}
		out[i] = img.Payload.obj
	}
	return nil
}

// ApplyUniformBlock uploads data to uniform block index of stage for the
// bound pipeline. data must be exactly the declared block size.
func (c *Context) ApplyUniformBlock(stage ShaderStage, index int, data []byte) {
	if !c.valid {
		return
	}
	if !c.pass.valid || !c.pass.drawValid {
		c.drop("apply_uniform_block", "reason", "no valid draw state")
		return
	}
	if index < 0 || index >= MaxShaderStageUBs || stage > ShaderStageFS {
		c.drop("apply_uniform_block", "stage", stage, "index", index)
		return
	}
	pip := validSlot(c.reg.pipeline(c.pass.pipeline))
	if pip == nil {
		c.drop("apply_uniform_block", "reason", "pipeline destroyed")
		return
	}
	shd := validSlot(c.reg.shader(pip.Payload.desc.Shader))
	if shd == nil {
		c.drop("apply_uniform_block", "reason", "shader destroyed")
		return
	}
	ub := &shd.Payload.desc.Stage(stage).UniformBlocks[index]
	if ub.Size == 0 || len(data) != ub.Size {
		c.drop("apply_uniform_block", "stage", stage, "index", index, "size", len(data), "want", ub.Size)
		return
	}
	c.dev.ApplyUniformBlock(stage, index, data)
}

// Draw issues numInstances instances of numElements vertices or indices
// starting at baseElement.
func (c *Context) Draw(baseElement, numElements, numInstances int) {
	if !c.valid {
		return
	}
	if !c.pass.valid || !c.pass.drawValid {
		c.drop("draw", "reason", "no valid draw state")
		return
	}
	if baseElement < 0 || numElements <= 0 || numInstances <= 0 {
		return
	}
	c.dev.Draw(baseElement, numElements, numInstances)
	c.counters.draws++
}

// EndPass finishes the current pass.
func (c *Context) EndPass() {
	if !c.valid {
		return
	}
	if !c.pass.active {
		c.drop("end_pass", "reason", "no active pass")
		return
	}
	if c.pass.valid {
		c.dev.EndPass()
	}
	c.pass = passState{}
}
