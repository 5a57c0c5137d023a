// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu implements gfx.Device on top of the gogpu/wgpu HAL.
//
// Importing the package registers the "wgpu" backend, which opens the
// first Vulkan adapter found. Applications that already own a GPU device
// can share it through NewFromHAL or NewFromProvider.
//
// # Shader Interface
//
// Shader sources are WGSL. All resources of a shader live in bind group 0:
//
//	@binding(0..3)    vertex uniform blocks 0..3
//	@binding(4..7)    fragment uniform blocks 0..3
//	@binding(8+2i)    vertex image i texture, @binding(9+2i) its sampler
//	@binding(32+2i)   fragment image i texture, @binding(33+2i) its sampler
//
// Vertex attributes use @location(n) where n is the attribute index of
// the pipeline. Entry points default to vs_main and fs_main.
//
// # Frames
//
// Passes of a frame are recorded into one command encoder. Commit submits
// it and waits on a fence, so resources destroyed after Commit are never
// in flight. Uniform blocks are copied into a per-frame uniform buffer
// whose size is set by Config.UniformBufferSize.
//
// Render pipelines are compiled per attachment layout: the variant for the
// default framebuffer is built by CreatePipeline, variants for offscreen
// passes on first use.
package wgpu
