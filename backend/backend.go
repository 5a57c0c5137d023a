// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"errors"

	"github.com/gogpu/gfx"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered or none of the registered backends could open a device.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Backend name constants.
const (
	// BackendWGPU is the GPU backend built on gogpu/wgpu HAL.
	BackendWGPU = "wgpu"
	// BackendHeadless is the CPU backend that records commands without a GPU.
	BackendHeadless = "headless"
)

// Factory opens a new device. Factories are registered by backend packages
// from their init functions.
type Factory func() (gfx.Device, error)
