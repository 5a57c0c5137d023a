// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package backend selects the device a gfx.Context drives.
//
// # Backend Registration
//
// Backend packages register a factory from their init functions, so
// importing a backend is enough to make it available:
//
//	import (
//		_ "github.com/gogpu/gfx/backend/headless"
//		_ "github.com/gogpu/gfx/backend/wgpu"
//	)
//
// # Backend Selection
//
// Use Default to open the best available backend, or Get to open a
// specific one by name:
//
//	dev, err := backend.Default()
//	dev, err := backend.Get(backend.BackendHeadless)
//
// Open combines selection with context creation:
//
//	ctx, err := backend.Open("", gfx.WithLabel("main"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer ctx.Shutdown()
//
// # Available Backends
//
//   - "wgpu": GPU rendering through gogpu/wgpu HAL (Vulkan)
//   - "headless": CPU-only device that records commands, always available
package backend
