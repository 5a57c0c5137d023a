// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package headless

import "github.com/gogpu/gfx"

// bytesPerPixel returns the texel size of an uncompressed format, or 0.
func bytesPerPixel(f gfx.PixelFormat) int {
	switch f {
	case gfx.PixelFormatRGBA8, gfx.PixelFormatR10G10B10A2, gfx.PixelFormatR32F,
		gfx.PixelFormatDepth, gfx.PixelFormatDepthStencil:
		return 4
	case gfx.PixelFormatRGB8:
		return 3
	case gfx.PixelFormatRGBA4, gfx.PixelFormatR5G6B5, gfx.PixelFormatR5G5B5A1, gfx.PixelFormatR16F:
		return 2
	case gfx.PixelFormatL8:
		return 1
	case gfx.PixelFormatRGBA32F:
		return 16
	case gfx.PixelFormatRGBA16F:
		return 8
	}
	return 0
}

// surfaceSize returns the byte size of one w x h surface in format f.
func surfaceSize(f gfx.PixelFormat, w, h int) int {
	blocks := func(n, dim int) int { return (n + dim - 1) / dim }
	switch f {
	case gfx.PixelFormatDXT1, gfx.PixelFormatETC2RGB8, gfx.PixelFormatETC2SRGB8:
		return blocks(w, 4) * blocks(h, 4) * 8
	case gfx.PixelFormatDXT3, gfx.PixelFormatDXT5:
		return blocks(w, 4) * blocks(h, 4) * 16
	case gfx.PixelFormatPVRTC2RGB, gfx.PixelFormatPVRTC2RGBA:
		return max(w, 16) * max(h, 8) * 2 / 8
	case gfx.PixelFormatPVRTC4RGB, gfx.PixelFormatPVRTC4RGBA:
		return max(w, 8) * max(h, 8) * 4 / 8
	}
	return w * h * bytesPerPixel(f)
}

// subimageSize returns the expected byte length of one content item for
// mip level mip of d. Array and 3D images pack every layer into one item.
func subimageSize(d *gfx.ImageDesc, mip int) int {
	w := max(d.Width>>mip, 1)
	h := max(d.Height>>mip, 1)
	layers := 1
	switch d.Type {
	case gfx.ImageTypeArray:
		layers = d.Depth
	case gfx.ImageType3D:
		layers = max(d.Depth>>mip, 1)
	}
	return surfaceSize(d.PixelFormat, w, h) * layers
}

// imageSize returns the total byte size of every subimage of d.
func imageSize(d *gfx.ImageDesc) int {
	n := 0
	for mip := range d.NumMipmaps {
		n += subimageSize(d, mip) * d.Faces()
	}
	return n
}

func formatFeature(f gfx.PixelFormat) (gfx.Feature, bool) {
	switch f {
	case gfx.PixelFormatDXT1, gfx.PixelFormatDXT3, gfx.PixelFormatDXT5:
		return gfx.FeatureTextureCompressionDXT, true
	case gfx.PixelFormatPVRTC2RGB, gfx.PixelFormatPVRTC4RGB, gfx.PixelFormatPVRTC2RGBA, gfx.PixelFormatPVRTC4RGBA:
		return gfx.FeatureTextureCompressionPVRTC, true
	case gfx.PixelFormatETC2RGB8, gfx.PixelFormatETC2SRGB8:
		return gfx.FeatureTextureCompressionETC2, true
	case gfx.PixelFormatRGBA32F, gfx.PixelFormatR32F:
		return gfx.FeatureTextureFloat, true
	case gfx.PixelFormatRGBA16F, gfx.PixelFormatR16F:
		return gfx.FeatureTextureHalfFloat, true
	}
	return 0, false
}
