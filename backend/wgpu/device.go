// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/vulkan" // register the Vulkan HAL backend

	"github.com/gogpu/gfx"
	"github.com/gogpu/gfx/backend"
)

// Errors returned by the wgpu device.
var (
	// ErrNoAdapter is returned when no GPU adapter could be opened.
	ErrNoAdapter = errors.New("wgpu: no GPU adapter available")

	// ErrUnsupported is returned for formats and features the device cannot
	// express natively.
	ErrUnsupported = errors.New("wgpu: unsupported")

	// ErrNotHAL is returned by NewFromProvider when the provider does not
	// expose HAL device and queue objects.
	ErrNotHAL = errors.New("wgpu: provider does not expose HAL types")
)

func init() {
	backend.Register(backend.BackendWGPU, func() (gfx.Device, error) {
		return New(DefaultConfig())
	})
}

// Config configures a Device.
type Config struct {
	// Label prefixes native object labels.
	Label string

	// ColorFormat and DepthFormat describe the default framebuffer.
	ColorFormat gputypes.TextureFormat
	DepthFormat gputypes.TextureFormat

	// UniformBufferSize is the per-frame uniform storage in bytes.
	// ApplyUniformBlock calls beyond it are dropped until the next Commit.
	UniformBufferSize int

	// CompileSPIRV translates WGSL sources to SPIR-V with naga before
	// handing them to the driver.
	CompileSPIRV bool

	// FenceTimeout bounds how long Commit waits for the GPU.
	FenceTimeout time.Duration
}

// DefaultConfig returns the configuration used by the registered factory.
func DefaultConfig() Config {
	return Config{
		Label:             "gfx",
		ColorFormat:       gputypes.TextureFormatBGRA8Unorm,
		DepthFormat:       gputypes.TextureFormatDepth24PlusStencil8,
		UniformBufferSize: 4 << 20,
		FenceTimeout:      5 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Label == "" {
		c.Label = d.Label
	}
	if c.ColorFormat == gputypes.TextureFormatUndefined {
		c.ColorFormat = d.ColorFormat
	}
	if c.DepthFormat == gputypes.TextureFormatUndefined {
		c.DepthFormat = d.DepthFormat
	}
	if c.UniformBufferSize <= 0 {
		c.UniformBufferSize = d.UniformBufferSize
	}
	if c.FenceTimeout <= 0 {
		c.FenceTimeout = d.FenceTimeout
	}
	return c
}

// Device is a gfx.Device backed by a gogpu/wgpu HAL device.
type Device struct {
	cfg      Config
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	// external devices belong to the caller and survive Shutdown.
	external bool
	features [gfx.NumFeatures]bool

	fb       framebuffer
	uniforms hal.Buffer
	frame    frameState
	stats    Stats
}

var _ gfx.Device = (*Device)(nil)

// Stats counts submitted work.
type Stats struct {
	Frames         uint64
	Passes         uint64
	Draws          uint64
	BindGroups     uint64
	PipelineBuilds uint64
	UniformOverrun uint64
	SubmitErrors   uint64
}

// New opens the first discrete or integrated GPU through the Vulkan HAL.
func New(cfg Config) (*Device, error) {
	halBackend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan backend not registered", ErrNoAdapter)
	}
	instance, err := halBackend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: open device: %w", err)
	}
	d, err := newDevice(cfg, openDev.Device, openDev.Queue, false)
	if err != nil {
		openDev.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	d.instance = instance
	gfx.Logger().Info("wgpu: device opened", "adapter", selected.Info.Name)
	return d, nil
}

// NewFromHAL wraps an existing HAL device and queue. The caller keeps
// ownership: Shutdown releases only the objects the Device created.
func NewFromHAL(cfg Config, device hal.Device, queue hal.Queue) (*Device, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("wgpu: nil HAL device or queue")
	}
	return newDevice(cfg, device, queue, true)
}

// NewFromProvider shares the GPU device of a host application. The provider
// must implement HalDevice() any and HalQueue() any returning hal.Device
// and hal.Queue. The provider's surface format becomes the default
// framebuffer format.
func NewFromProvider(cfg Config, provider gpucontext.DeviceProvider) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNotHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is %T", ErrNotHAL, hp.HalDevice())
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is %T", ErrNotHAL, hp.HalQueue())
	}
	if f := provider.SurfaceFormat(); f != gputypes.TextureFormatUndefined {
		cfg.ColorFormat = f
	}
	return newDevice(cfg, device, queue, true)
}

func newDevice(cfg Config, device hal.Device, queue hal.Queue, external bool) (*Device, error) {
	cfg = cfg.withDefaults()
	uniforms, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: cfg.Label + "_uniforms",
		Size:  uint64(cfg.UniformBufferSize),
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create uniform buffer: %w", err)
	}
	d := &Device{
		cfg:      cfg,
		device:   device,
		queue:    queue,
		external: external,
		uniforms: uniforms,
	}
	for _, f := range []gfx.Feature{
		gfx.FeatureInstancedArrays,
		gfx.FeatureTextureFloat,
		gfx.FeatureTextureHalfFloat,
		gfx.FeatureOriginTopLeft,
		gfx.FeatureMSAARenderTargets,
		gfx.FeatureMultipleRenderTarget,
		gfx.FeatureImageType3D,
		gfx.FeatureImageTypeArray,
	} {
		d.features[f] = true
	}
	return d, nil
}

// Name returns backend.BackendWGPU.
func (d *Device) Name() string { return backend.BackendWGPU }

func (d *Device) QueryFeature(f gfx.Feature) bool { return f < gfx.NumFeatures && d.features[f] }

// ResetStateCache forgets the bound pipeline so the next ApplyBindings
// rebinds everything.
func (d *Device) ResetStateCache() {
	d.frame.pipeline = nil
	d.frame.bindings = nil
}

// Stats returns the submission counters.
func (d *Device) Stats() Stats { return d.stats }

// HAL returns the underlying device and queue.
func (d *Device) HAL() (hal.Device, hal.Queue) { return d.device, d.queue }

// Shutdown discards any unsubmitted work and releases the device. Devices
// passed in by the caller are left open.
func (d *Device) Shutdown() {
	if d.frame.encoder != nil {
		if d.frame.rp != nil {
			d.frame.rp.End()
			d.frame.rp = nil
		}
		d.frame.encoder.DiscardEncoding()
		d.frame.encoder = nil
	}
	d.releaseGarbage()
	d.fb.release(d.device)
	if d.uniforms != nil {
		d.device.DestroyBuffer(d.uniforms)
		d.uniforms = nil
	}
	if d.external {
		return
	}
	if d.device != nil {
		d.device.Destroy()
		d.device = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
}

func (d *Device) label(kind, name string) string {
	if name == "" {
		return d.cfg.Label + "_" + kind
	}
	return d.cfg.Label + "_" + kind + "_" + name
}
