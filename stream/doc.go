// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package stream decodes image files on background workers so that image
// resources can be allocated up front and initialized once their pixels
// are available.
//
// The usual flow is:
//
//	img, _ := ctx.AllocImage()
//	loader.Load(bg, uint64(img.ID()), file)
//	...
//	for res := range loader.Results() {
//	    stream.Apply(ctx, imagesByID[res.ID], res) // InitImage or FailImage
//	}
//
// Decoding runs concurrently; Apply must be called from the goroutine that
// owns the gfx.Context. Supported formats are PNG, JPEG, GIF, BMP, TIFF and
// WebP. Every image is converted to RGBA8.
package stream
