// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package stream

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math/bits"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/gogpu/gfx"
)

var (
	// ErrEmptyImage is returned for images with no pixels.
	ErrEmptyImage = errors.New("stream: empty image")

	// ErrTooLarge is returned when an image exceeds the loader's size limit.
	ErrTooLarge = errors.New("stream: image too large")
)

// DecodeOptions control how a decoded image is turned into a descriptor.
type DecodeOptions struct {
	// Mipmaps builds the full mip chain, capped at gfx.MaxMipmaps levels.
	Mipmaps bool
	// MaxDimension rejects images wider or taller than this. 0 means no limit.
	MaxDimension int
	// Filter is the sampling filter for the image. Mipmapped images use
	// the mipmapped variant of the filter.
	Filter gfx.Filter
	Wrap   gfx.Wrap
}

// Decode reads an encoded image and returns an immutable RGBA8 image
// descriptor carrying its pixels.
func Decode(r io.Reader, opts DecodeOptions) (*gfx.ImageDesc, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("stream: read: %w", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("stream: decode config: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, format, ErrEmptyImage
	}
	if opts.MaxDimension > 0 && (cfg.Width > opts.MaxDimension || cfg.Height > opts.MaxDimension) {
		return nil, format, fmt.Errorf("%w: %s %dx%d exceeds %d", ErrTooLarge, format, cfg.Width, cfg.Height, opts.MaxDimension)
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, format, fmt.Errorf("stream: decode %s: %w", format, err)
	}
	return Describe(src, opts), format, nil
}

// Describe converts img to RGBA8 and wraps it in an image descriptor.
func Describe(img image.Image, opts DecodeOptions) *gfx.ImageDesc {
	base := toRGBA(img)
	w, h := base.Rect.Dx(), base.Rect.Dy()

	desc := &gfx.ImageDesc{
		Type:        gfx.ImageType2D,
		Width:       w,
		Height:      h,
		NumMipmaps:  1,
		Usage:       gfx.UsageImmutable,
		PixelFormat: gfx.PixelFormatRGBA8,
		MinFilter:   opts.Filter,
		MagFilter:   opts.Filter,
		WrapU:       opts.Wrap,
		WrapV:       opts.Wrap,
	}
	desc.Content.Subimage[0][0] = base.Pix

	if opts.Mipmaps {
		levels := mipLevels(w, h)
		prev := base
		for mip := 1; mip < levels; mip++ {
			prev = downsample(prev)
			desc.Content.Subimage[0][mip] = prev.Pix
		}
		desc.NumMipmaps = levels
		desc.MinFilter = mipmapFilter(opts.Filter)
	}
	return desc
}

// toRGBA returns img as a tightly packed *image.RGBA anchored at the origin.
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) && rgba.Stride == 4*b.Dx() {
		return rgba
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// mipLevels returns the length of the full mip chain of a w x h image.
func mipLevels(w, h int) int {
	n := bits.Len(uint(max(w, h)))
	return min(n, gfx.MaxMipmaps)
}

// downsample halves src in each dimension, never below one texel.
func downsample(src *image.RGBA) *image.RGBA {
	w := max(1, src.Rect.Dx()/2)
	h := max(1, src.Rect.Dy()/2)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

func mipmapFilter(f gfx.Filter) gfx.Filter {
	switch f {
	case gfx.FilterLinear:
		return gfx.FilterLinearMipmapLinear
	case gfx.FilterDefault, gfx.FilterNearest:
		return gfx.FilterNearestMipmapNearest
	}
	return f
}
