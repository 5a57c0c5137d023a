// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gfx is a thin cross-backend 3D rendering API built around pooled,
// generation-checked resource handles.
//
// # Overview
//
// Callers create buffers, images, shaders, pipelines and passes, receive
// small opaque handles for them, and issue per-frame render commands that
// refer to those handles. A [Device] translates the commands to a native
// graphics API; see the backend packages for implementations.
//
// # Quick Start
//
//	dev := headless.New()
//	ctx, err := gfx.NewContext(dev)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer ctx.Shutdown()
//
//	vbuf, _ := ctx.MakeBuffer(&gfx.BufferDesc{Content: vertices})
//	shd, _ := ctx.MakeShader(&gfx.ShaderDesc{VS: vs, FS: fs})
//	pip, _ := ctx.MakePipeline(&gfx.PipelineDesc{Shader: shd, Layouts: layouts})
//
//	for running {
//		ctx.BeginDefaultPass(gfx.PassAction{}, width, height)
//		ctx.ApplyDrawState(gfx.DrawState{Pipeline: pip, VertexBuffers: [4]gfx.Buffer{vbuf}})
//		ctx.Draw(0, 3, 1)
//		ctx.EndPass()
//		ctx.Commit()
//	}
//
// # Handles
//
// A handle is a 32-bit value holding a slot index and the slot generation.
// Each resource kind has its own fixed-capacity pool and its own handle
// type, so handles of different kinds cannot be mixed up. Destroying a
// resource bumps the slot generation: handles kept past destruction stop
// resolving instead of aliasing whatever reuses the slot. The zero handle
// never resolves.
//
// # Lifecycle
//
// Every resource moves through
//
//	Initial --Alloc--> Alloc --Init--> Valid | Failed --Destroy--> Initial
//
// Make combines Alloc and Init. Splitting them lets a caller hand out a
// handle right away and build the resource later, for example once image
// data has been loaded on another goroutine. A resource whose descriptor is
// rejected ends up Failed; it is reported but does not affect anything
// else and can be destroyed like any other.
//
// # Dropped Commands
//
// Render commands referring to resources that are not valid are dropped
// silently and produce no rendering. Stats reports how many were dropped.
//
// # Updates
//
// Dynamic and stream buffers and images can be updated at most once per
// frame. Commit marks the frame boundary.
//
// # Logging
//
// gfx is silent by default. See [SetLogger].
package gfx
