// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import "fmt"

// Validation runs on normalized descriptors. Every failure wraps
// ErrInvalidDesc.

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidDesc}, args...)...)
}

func validateBufferDesc(d *BufferDesc) error {
	if d.Size <= 0 {
		return invalid("buffer size must be > 0")
	}
	if d.Type != BufferTypeVertex && d.Type != BufferTypeIndex {
		return invalid("unknown buffer type %d", d.Type)
	}
	switch d.Usage {
	case UsageImmutable:
		if len(d.Content) == 0 {
			return invalid("immutable buffer requires content")
		}
		if len(d.Content) > d.Size {
			return invalid("buffer content (%d bytes) exceeds size %d", len(d.Content), d.Size)
		}
	case UsageDynamic, UsageStream:
		if len(d.Content) > 0 {
			return invalid("dynamic and stream buffers take content through UpdateBuffer")
		}
	default:
		return invalid("unknown usage %d", d.Usage)
	}
	return nil
}

func validateImageDesc(d *ImageDesc) error {
	if d.Width <= 0 || d.Height <= 0 {
		return invalid("image size %dx%d must be > 0", d.Width, d.Height)
	}
	if d.Type < ImageType2D || d.Type > ImageTypeArray {
		return invalid("unknown image type %d", d.Type)
	}
	if (d.Type == ImageType2D || d.Type == ImageTypeCube) && d.Depth != 1 {
		return invalid("depth %d given for a 2D or cube image", d.Depth)
	}
	if d.Type == ImageTypeCube && d.Width != d.Height {
		return invalid("cube image must be square, got %dx%d", d.Width, d.Height)
	}
	if d.NumMipmaps > MaxMipmaps {
		return invalid("%d mipmaps exceed limit %d", d.NumMipmaps, MaxMipmaps)
	}
	if d.PixelFormat < PixelFormatRGBA8 || d.PixelFormat > PixelFormatETC2SRGB8 {
		return invalid("unknown pixel format %d", d.PixelFormat)
	}
	if d.Usage < UsageImmutable || d.Usage > UsageStream {
		return invalid("unknown usage %d", d.Usage)
	}
	if d.MinFilter > FilterLinearMipmapLinear || d.MagFilter > FilterLinearMipmapLinear {
		return invalid("unknown filter")
	}
	if d.WrapU > WrapMirroredRepeat || d.WrapV > WrapMirroredRepeat || d.WrapW > WrapMirroredRepeat {
		return invalid("unknown wrap mode")
	}

	if d.RenderTarget {
		if d.Usage != UsageImmutable {
			return invalid("render target must be immutable")
		}
		if !d.Content.Empty() {
			return invalid("render target cannot have content")
		}
		if d.PixelFormat.IsCompressed() {
			return invalid("compressed format cannot be a render target")
		}
		return nil
	}

	if d.PixelFormat.IsDepth() {
		return invalid("depth format requires a render target")
	}
	if d.SampleCount > 1 {
		return invalid("sample count > 1 requires a render target")
	}
	if d.Usage == UsageImmutable {
		return validateImageContent(d, &d.Content, true)
	}
	if !d.Content.Empty() {
		return invalid("dynamic and stream images take content through UpdateImage")
	}
	return nil
}

// validateImageContent checks that content only touches subimages the image
// has. With complete set, every face and mip must be present.
func validateImageContent(d *ImageDesc, c *ImageContent, complete bool) error {
	faces := d.Faces()
	for face := range c.Subimage {
		for mip := range c.Subimage[face] {
			has := len(c.Subimage[face][mip]) > 0
			inRange := face < faces && mip < d.NumMipmaps
			switch {
			case has && !inRange:
				return invalid("content for face %d mip %d outside image", face, mip)
			case !has && inRange && complete:
				return invalid("missing content for face %d mip %d", face, mip)
			}
		}
	}
	return nil
}

func validateShaderDesc(d *ShaderDesc) error {
	for _, stage := range []ShaderStage{ShaderStageVS, ShaderStageFS} {
		s := d.Stage(stage)
		if s.Source == "" {
			return invalid("%s stage has no source", stage)
		}
		for i := range s.UniformBlocks {
			ub := &s.UniformBlocks[i]
			if ub.Size < 0 {
				return invalid("%s uniform block %d has negative size", stage, i)
			}
			for j := range ub.Uniforms {
				u := &ub.Uniforms[j]
				if u.Type == UniformTypeInvalid {
					continue
				}
				if ub.Size == 0 {
					return invalid("%s uniform block %d has members but no size", stage, i)
				}
				if u.Type > UniformTypeMat4 {
					return invalid("%s uniform %q has unknown type %d", stage, u.Name, u.Type)
				}
				if u.Offset < 0 || u.Offset >= ub.Size {
					return invalid("%s uniform %q offset %d outside block size %d", stage, u.Name, u.Offset, ub.Size)
				}
			}
		}
		for i := range s.Images {
			img := &s.Images[i]
			if img.Used() && img.Type > ImageTypeArray {
				return invalid("%s image slot %d has unknown type %d", stage, i, img.Type)
			}
		}
	}
	return nil
}

func validatePipelineDesc(d *PipelineDesc) error {
	if d.Shader.IsZero() {
		return invalid("pipeline requires a shader")
	}
	if d.Layouts[0].Stride == 0 {
		return invalid("pipeline requires a vertex layout in slot 0")
	}
	var locations [MaxVertexAttributes]bool
	unused := false
	for i := range d.Layouts {
		l := &d.Layouts[i]
		if l.Stride == 0 {
			unused = true
			continue
		}
		if unused {
			return invalid("vertex layout %d follows an unused slot", i)
		}
		if l.Stride < 0 {
			return invalid("vertex layout %d has negative stride", i)
		}
		if l.StepFunc > VertexStepPerInstance {
			return invalid("vertex layout %d has unknown step function", i)
		}
		attrs := 0
		for j := range l.Attrs {
			a := &l.Attrs[j]
			if a.Format == VertexFormatInvalid {
				continue
			}
			attrs++
			if a.Format > VertexFormatUInt10N2 {
				return invalid("attribute %d.%d has unknown format %d", i, j, a.Format)
			}
			if a.Offset < 0 || a.Offset >= l.Stride {
				return invalid("attribute %d.%d offset %d outside stride %d", i, j, a.Offset, l.Stride)
			}
			if a.Index < 0 || a.Index >= MaxVertexAttributes {
				return invalid("attribute %d.%d location %d out of range", i, j, a.Index)
			}
			if locations[a.Index] {
				return invalid("attribute location %d used twice", a.Index)
			}
			locations[a.Index] = true
		}
		if attrs == 0 {
			return invalid("vertex layout %d has no attributes", i)
		}
	}
	if d.PrimitiveType > PrimitiveTypeTriangleStrip {
		return invalid("unknown primitive type %d", d.PrimitiveType)
	}
	if d.IndexType > IndexTypeUint32 {
		return invalid("unknown index type %d", d.IndexType)
	}
	if d.Rasterizer.CullMode > CullModeBack || d.Rasterizer.FaceWinding > FaceWindingCW {
		return invalid("unknown rasterizer state")
	}
	if d.DepthStencil.DepthCompareFunc > CompareFuncAlways {
		return invalid("unknown depth compare function")
	}
	b := &d.Blend
	if b.SrcFactorRGB > BlendFactorOneMinusBlendAlpha || b.DstFactorRGB > BlendFactorOneMinusBlendAlpha ||
		b.SrcFactorAlpha > BlendFactorOneMinusBlendAlpha || b.DstFactorAlpha > BlendFactorOneMinusBlendAlpha {
		return invalid("unknown blend factor")
	}
	if b.OpRGB > BlendOpReverseSubtract || b.OpAlpha > BlendOpReverseSubtract {
		return invalid("unknown blend operation")
	}
	return nil
}

// validatePassDesc checks the attachment layout. Image checks happen in
// validatePassImages once the handles are resolved.
func validatePassDesc(d *PassDesc) error {
	if d.ColorAttachments[0].Image.IsZero() {
		return invalid("pass requires color attachment 0")
	}
	unused := false
	for i := range d.ColorAttachments {
		a := &d.ColorAttachments[i]
		if a.Image.IsZero() {
			unused = true
			continue
		}
		if unused {
			return invalid("color attachment %d follows an unused slot", i)
		}
		if a.MipLevel < 0 || a.Slice < 0 {
			return invalid("color attachment %d has negative subimage index", i)
		}
	}
	return nil
}

// validatePassImages checks the resolved attachment images. depth may be nil.
func validatePassImages(d *PassDesc, colors []*ImageDesc, depth *ImageDesc) error {
	first := colors[0]
	for i, img := range colors {
		a := &d.ColorAttachments[i]
		if err := validateAttachment("color", i, a, img); err != nil {
			return err
		}
		if img.PixelFormat.IsDepth() {
			return invalid("color attachment %d uses a depth format", i)
		}
		if img.PixelFormat != first.PixelFormat {
			return invalid("color attachment %d format differs from attachment 0", i)
		}
		if img.Width != first.Width || img.Height != first.Height {
			return invalid("color attachment %d size differs from attachment 0", i)
		}
		if img.SampleCount != first.SampleCount {
			return invalid("color attachment %d sample count differs from attachment 0", i)
		}
	}
	if depth != nil {
		a := &d.DepthStencilAttachment
		if err := validateAttachment("depth", 0, a, depth); err != nil {
			return err
		}
		if !depth.PixelFormat.IsDepth() {
			return invalid("depth attachment requires a depth format")
		}
		if depth.Width != first.Width || depth.Height != first.Height {
			return invalid("depth attachment size differs from color attachments")
		}
		if depth.SampleCount != first.SampleCount {
			return invalid("depth attachment sample count differs from color attachments")
		}
	}
	return nil
}

func validateAttachment(kind string, i int, a *AttachmentDesc, img *ImageDesc) error {
	if !img.RenderTarget {
		return invalid("%s attachment %d is not a render target", kind, i)
	}
	if a.MipLevel >= img.NumMipmaps {
		return invalid("%s attachment %d mip level %d out of range", kind, i, a.MipLevel)
	}
	slices := img.Depth
	if img.Type == ImageTypeCube {
		slices = CubeFaces
	}
	if a.Slice >= slices {
		return invalid("%s attachment %d slice %d out of range", kind, i, a.Slice)
	}
	return nil
}
