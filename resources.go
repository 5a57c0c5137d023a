// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import "fmt"

// Every resource kind offers the same operations:
//
//	Alloc    reserve a handle without doing any device work
//	Init     build the resource for an allocated handle
//	Make     Alloc followed by Init
//	Fail     mark an allocated handle as failed without building it
//	Destroy  release the resource and recycle the handle
//	Query    report the lifecycle state
//
// Init and Make leave the handle in ResourceStateFailed when the
// descriptor is rejected or the device cannot build the object; the
// returned error then wraps ErrBackendConstructionFailed. Destroy ignores
// handles that do not resolve.

// AllocBuffer reserves a buffer handle in ResourceStateAlloc.
func (c *Context) AllocBuffer() (Buffer, error) {
	id, err := allocSlot(c, KindBuffer, c.reg.buffers)
	return Buffer{id: id}, err
}

// InitBuffer builds an allocated buffer.
func (c *Context) InitBuffer(h Buffer, desc *BufferDesc) error {
	return initSlot(c, KindBuffer, c.reg.buffers, h.id, func() (bufferRecord, error) {
		if desc == nil {
			return bufferRecord{}, invalid("nil buffer descriptor")
		}
		d := normalizeBufferDesc(*desc)
		if err := validateBufferDesc(&d); err != nil {
			return bufferRecord{}, err
		}
		obj, err := c.dev.CreateBuffer(&d)
		if err != nil {
			return bufferRecord{}, fmt.Errorf("%s: %w", c.dev.Name(), err)
		}
		d.Content = nil
		return bufferRecord{desc: d, obj: obj}, nil
	})
}

// MakeBuffer allocates and builds a buffer. On a construction failure the
// returned handle is valid to destroy and reports ResourceStateFailed.
func (c *Context) MakeBuffer(desc *BufferDesc) (Buffer, error) {
	h, err := c.AllocBuffer()
	if err != nil {
		return h, err
	}
	return h, c.InitBuffer(h, desc)
}

// FailBuffer marks an allocated buffer as failed.
func (c *Context) FailBuffer(h Buffer) error {
	return failSlot(c, KindBuffer, c.reg.buffers, h.id)
}

// DestroyBuffer releases a buffer.
func (c *Context) DestroyBuffer(h Buffer) {
	destroySlot(c, KindBuffer, c.reg.buffers, h.id, func(r bufferRecord) {
		c.dev.DestroyBuffer(r.obj)
	})
}

// QueryBufferState returns the lifecycle state of a buffer.
func (c *Context) QueryBufferState(h Buffer) ResourceState {
	return queryState(c, c.reg.buffers, h.id)
}

// UpdateBuffer replaces the start of a dynamic or stream buffer with data.
// A buffer can be updated once per frame. Unknown handles are ignored.
func (c *Context) UpdateBuffer(h Buffer, data []byte) error {
	s, err := beginUpdate(c, KindBuffer, c.reg.buffers, h.id)
	if s == nil {
		return err
	}
	r := &s.Payload
	if r.desc.Usage == UsageImmutable {
		return policyError(KindBuffer, h.id, "buffer is immutable")
	}
	if len(data) > r.desc.Size {
		return policyError(KindBuffer, h.id, "%d bytes exceed buffer size %d", len(data), r.desc.Size)
	}
	if len(data) == 0 {
		return nil
	}
	if err := c.dev.UpdateBuffer(r.obj, data); err != nil {
		return fmt.Errorf("update buffer %v: %w", h.id, err)
	}
	s.UpdateFrame = c.frame
	c.counters.updates++
	return nil
}

// AllocImage reserves an image handle in ResourceStateAlloc.
func (c *Context) AllocImage() (Image, error) {
	id, err := allocSlot(c, KindImage, c.reg.images)
	return Image{id: id}, err
}

// InitImage builds an allocated image.
func (c *Context) InitImage(h Image, desc *ImageDesc) error {
	return initSlot(c, KindImage, c.reg.images, h.id, func() (imageRecord, error) {
		if desc == nil {
			return imageRecord{}, invalid("nil image descriptor")
		}
		d := normalizeImageDesc(*desc)
		if err := validateImageDesc(&d); err != nil {
			return imageRecord{}, err
		}
		obj, err := c.dev.CreateImage(&d)
		if err != nil {
			return imageRecord{}, fmt.Errorf("%s: %w", c.dev.Name(), err)
		}
		d.Content = ImageContent{}
		return imageRecord{desc: d, obj: obj}, nil
	})
}

// MakeImage allocates and builds an image.
func (c *Context) MakeImage(desc *ImageDesc) (Image, error) {
	h, err := c.AllocImage()
	if err != nil {
		return h, err
	}
	return h, c.InitImage(h, desc)
}

// FailImage marks an allocated image as failed, for example when loading
// its content did not succeed.
func (c *Context) FailImage(h Image) error {
	return failSlot(c, KindImage, c.reg.images, h.id)
}

// DestroyImage releases an image. Passes rendering into it become
// unusable and are skipped by BeginPass.
func (c *Context) DestroyImage(h Image) {
	destroySlot(c, KindImage, c.reg.images, h.id, func(r imageRecord) {
		c.dev.DestroyImage(r.obj)
	})
}

// QueryImageState returns the lifecycle state of an image.
func (c *Context) QueryImageState(h Image) ResourceState {
	return queryState(c, c.reg.images, h.id)
}

// UpdateImage replaces the content of a dynamic or stream image. Only the
// subimages present in content are written. An image can be updated once
// per frame. Unknown handles are ignored.
func (c *Context) UpdateImage(h Image, content *ImageContent) error {
	s, err := beginUpdate(c, KindImage, c.reg.images, h.id)
	if s == nil {
		return err
	}
	r := &s.Payload
	if r.desc.Usage == UsageImmutable {
		return policyError(KindImage, h.id, "image is immutable")
	}
	if content == nil || content.Empty() {
		return nil
	}
	if err := validateImageContent(&r.desc, content, false); err != nil {
		return fmt.Errorf("update image %v: %w", h.id, err)
	}
	if err := c.dev.UpdateImage(r.obj, &r.desc, content); err != nil {
		return fmt.Errorf("update image %v: %w", h.id, err)
	}
	s.UpdateFrame = c.frame
	c.counters.updates++
	return nil
}

// AllocShader reserves a shader handle in ResourceStateAlloc.
func (c *Context) AllocShader() (Shader, error) {
	id, err := allocSlot(c, KindShader, c.reg.shaders)
	return Shader{id: id}, err
}

// InitShader builds an allocated shader.
func (c *Context) InitShader(h Shader, desc *ShaderDesc) error {
	return initSlot(c, KindShader, c.reg.shaders, h.id, func() (shaderRecord, error) {
		if desc == nil {
			return shaderRecord{}, invalid("nil shader descriptor")
		}
		d := normalizeShaderDesc(*desc)
		if err := validateShaderDesc(&d); err != nil {
			return shaderRecord{}, err
		}
		obj, err := c.dev.CreateShader(&d)
		if err != nil {
			return shaderRecord{}, fmt.Errorf("%s: %w", c.dev.Name(), err)
		}
		return shaderRecord{desc: d, obj: obj}, nil
	})
}

// MakeShader allocates and builds a shader.
func (c *Context) MakeShader(desc *ShaderDesc) (Shader, error) {
	h, err := c.AllocShader()
	if err != nil {
		return h, err
	}
	return h, c.InitShader(h, desc)
}

// FailShader marks an allocated shader as failed.
func (c *Context) FailShader(h Shader) error {
	return failSlot(c, KindShader, c.reg.shaders, h.id)
}

// DestroyShader releases a shader. Pipelines using it stay allocated but
// are rejected by ApplyDrawState.
func (c *Context) DestroyShader(h Shader) {
	destroySlot(c, KindShader, c.reg.shaders, h.id, func(r shaderRecord) {
		c.dev.DestroyShader(r.obj)
	})
}

// QueryShaderState returns the lifecycle state of a shader.
func (c *Context) QueryShaderState(h Shader) ResourceState {
	return queryState(c, c.reg.shaders, h.id)
}

// AllocPipeline reserves a pipeline handle in ResourceStateAlloc.
func (c *Context) AllocPipeline() (Pipeline, error) {
	id, err := allocSlot(c, KindPipeline, c.reg.pipelines)
	return Pipeline{id: id}, err
}

// InitPipeline builds an allocated pipeline. The pipeline's shader must be
// valid.
func (c *Context) InitPipeline(h Pipeline, desc *PipelineDesc) error {
	return initSlot(c, KindPipeline, c.reg.pipelines, h.id, func() (pipelineRecord, error) {
		if desc == nil {
			return pipelineRecord{}, invalid("nil pipeline descriptor")
		}
		d := normalizePipelineDesc(*desc)
		if err := validatePipelineDesc(&d); err != nil {
			return pipelineRecord{}, err
		}
		shd := validSlot(c.reg.shader(d.Shader))
		if shd == nil {
			return pipelineRecord{}, invalid("pipeline shader %v is not valid", d.Shader)
		}
		obj, err := c.dev.CreatePipeline(&d, &ShaderObject{Desc: &shd.Payload.desc, Object: shd.Payload.obj})
		if err != nil {
			return pipelineRecord{}, fmt.Errorf("%s: %w", c.dev.Name(), err)
		}
		return pipelineRecord{desc: d, obj: obj}, nil
	})
}

// MakePipeline allocates and builds a pipeline.
func (c *Context) MakePipeline(desc *PipelineDesc) (Pipeline, error) {
	h, err := c.AllocPipeline()
	if err != nil {
		return h, err
	}
	return h, c.InitPipeline(h, desc)
}

// FailPipeline marks an allocated pipeline as failed.
func (c *Context) FailPipeline(h Pipeline) error {
	return failSlot(c, KindPipeline, c.reg.pipelines, h.id)
}

// DestroyPipeline releases a pipeline.
func (c *Context) DestroyPipeline(h Pipeline) {
	destroySlot(c, KindPipeline, c.reg.pipelines, h.id, func(r pipelineRecord) {
		c.dev.DestroyPipeline(r.obj)
	})
}

// QueryPipelineState returns the lifecycle state of a pipeline.
func (c *Context) QueryPipelineState(h Pipeline) ResourceState {
	return queryState(c, c.reg.pipelines, h.id)
}

// AllocPass reserves a pass handle in ResourceStateAlloc.
func (c *Context) AllocPass() (Pass, error) {
	id, err := allocSlot(c, KindPass, c.reg.passes)
	return Pass{id: id}, err
}

// InitPass builds an allocated pass. Every attachment image must be valid.
func (c *Context) InitPass(h Pass, desc *PassDesc) error {
	return initSlot(c, KindPass, c.reg.passes, h.id, func() (passRecord, error) {
		if desc == nil {
			return passRecord{}, invalid("nil pass descriptor")
		}
		d := *desc
		if err := validatePassDesc(&d); err != nil {
			return passRecord{}, err
		}
		colors, depth, err := c.resolveAttachments(&d)
		if err != nil {
			return passRecord{}, err
		}
		descs := make([]*ImageDesc, len(colors))
		for i := range colors {
			descs[i] = colors[i].Desc
		}
		var depthDesc *ImageDesc
		if depth != nil {
			depthDesc = depth.Desc
		}
		if err := validatePassImages(&d, descs, depthDesc); err != nil {
			return passRecord{}, err
		}
		obj, err := c.dev.CreatePass(&d, colors, depth)
		if err != nil {
			return passRecord{}, fmt.Errorf("%s: %w", c.dev.Name(), err)
		}
		first := colors[0]
		return passRecord{
			desc:   d,
			obj:    obj,
			width:  mipExtent(first.Desc.Width, first.MipLevel),
			height: mipExtent(first.Desc.Height, first.MipLevel),
		}, nil
	})
}

// resolveAttachments looks up every attachment image of d. Any image that
// is not valid rejects the pass.
func (c *Context) resolveAttachments(d *PassDesc) ([]Attachment, *Attachment, error) {
	colors := make([]Attachment, 0, MaxColorAttachments)
	for i := range d.ColorAttachments {
		a := &d.ColorAttachments[i]
		if a.Image.IsZero() {
			break
		}
		img := validSlot(c.reg.image(a.Image))
		if img == nil {
			return nil, nil, invalid("color attachment %d image %v is not valid", i, a.Image)
		}
		colors = append(colors, Attachment{
			Image:    img.Payload.obj,
			Desc:     &img.Payload.desc,
			MipLevel: a.MipLevel,
			Slice:    a.Slice,
		})
	}
	ds := &d.DepthStencilAttachment
	if ds.Image.IsZero() {
		return colors, nil, nil
	}
	img := validSlot(c.reg.image(ds.Image))
	if img == nil {
		return nil, nil, invalid("depth attachment image %v is not valid", ds.Image)
	}
	return colors, &Attachment{
		Image:    img.Payload.obj,
		Desc:     &img.Payload.desc,
		MipLevel: ds.MipLevel,
		Slice:    ds.Slice,
	}, nil
}

func mipExtent(size, level int) int {
	return max(size>>level, 1)
}

// MakePass allocates and builds a pass.
func (c *Context) MakePass(desc *PassDesc) (Pass, error) {
	h, err := c.AllocPass()
	if err != nil {
		return h, err
	}
	return h, c.InitPass(h, desc)
}

// FailPass marks an allocated pass as failed.
func (c *Context) FailPass(h Pass) error {
	return failSlot(c, KindPass, c.reg.passes, h.id)
}

// DestroyPass releases a pass. Its attachment images are not affected.
func (c *Context) DestroyPass(h Pass) {
	destroySlot(c, KindPass, c.reg.passes, h.id, func(r passRecord) {
		c.dev.DestroyPass(r.obj)
	})
}

// QueryPassState returns the lifecycle state of a pass.
func (c *Context) QueryPassState(h Pass) ResourceState {
	return queryState(c, c.reg.passes, h.id)
}
