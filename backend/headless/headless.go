// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package headless provides a gfx.Device that runs without a GPU.
//
// The device keeps CPU copies of buffer and image content, clears render
// targets with x/image/draw, and counts every command it receives. It is
// meant for tests, servers and tools that exercise resource management
// without a display. Draw calls are recorded but not rasterized.
package headless

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gfx/backend"
)

// Errors returned by resource creation.
var (
	// ErrOutOfMemory is returned when a resource would exceed the memory
	// limit set with WithMemoryLimit.
	ErrOutOfMemory = errors.New("headless: out of memory")

	// ErrUnsupportedFormat is returned for pixel formats whose feature is
	// disabled.
	ErrUnsupportedFormat = errors.New("headless: unsupported pixel format")

	// ErrContentSize is returned when image content is shorter than the
	// subimage it fills.
	ErrContentSize = errors.New("headless: content too small")
)

func init() {
	backend.Register(backend.BackendHeadless, func() (gfx.Device, error) {
		return New(), nil
	})
}

// Option configures a Device.
type Option func(*Device)

// WithFeatures replaces the supported feature set.
func WithFeatures(features ...gfx.Feature) Option {
	return func(d *Device) {
		d.features = [gfx.NumFeatures]bool{}
		for _, f := range features {
			if f < gfx.NumFeatures {
				d.features[f] = true
			}
		}
	}
}

// WithMemoryLimit caps the bytes of buffer and image storage the device
// hands out. Zero means unlimited.
func WithMemoryLimit(bytes int) Option {
	return func(d *Device) { d.memLimit = bytes }
}

// WithFramebuffer sets the size of the default framebuffer.
func WithFramebuffer(width, height int) Option {
	return func(d *Device) { d.fb = image.NewRGBA(image.Rect(0, 0, width, height)) }
}

// Stats counts the work a Device has received.
type Stats struct {
	Frames       int
	Passes       int
	Draws        int
	Elements     int
	Instances    int
	Bindings     int
	UniformBytes int
	Updates      int
	MemoryBytes  int
	Live         [len(gfx.ResourceKinds)]int
}

// Device is a CPU-only gfx.Device.
type Device struct {
	features [gfx.NumFeatures]bool
	memLimit int
	fb       *image.RGBA

	// fail makes the next Create of a kind return the stored error.
	fail map[gfx.ResourceKind]error

	inPass   bool
	target   *pass
	viewport image.Rectangle
	scissor  image.Rectangle
	stats    Stats
	closed   bool
}

var _ gfx.Device = (*Device)(nil)

// New returns a device with every non-compression feature enabled and a
// 640x480 default framebuffer.
func New(opts ...Option) *Device {
	d := &Device{
		fb:   image.NewRGBA(image.Rect(0, 0, 640, 480)),
		fail: make(map[gfx.ResourceKind]error),
	}
	WithFeatures(
		gfx.FeatureInstancedArrays,
		gfx.FeatureTextureFloat,
		gfx.FeatureTextureHalfFloat,
		gfx.FeatureOriginTopLeft,
		gfx.FeatureMSAARenderTargets,
		gfx.FeaturePackedVertexFormat10_2,
		gfx.FeatureMultipleRenderTarget,
		gfx.FeatureImageType3D,
		gfx.FeatureImageTypeArray,
	)(d)
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// FailNext makes the next Create call for kind fail with err.
func (d *Device) FailNext(kind gfx.ResourceKind, err error) {
	d.fail[kind] = err
}

// Stats returns the device counters.
func (d *Device) Stats() Stats { return d.stats }

// Framebuffer returns the default framebuffer.
func (d *Device) Framebuffer() *image.RGBA { return d.fb }

// Viewport returns the last viewport applied in the current pass.
func (d *Device) Viewport() image.Rectangle { return d.viewport }

// Scissor returns the last scissor rectangle applied in the current pass.
func (d *Device) Scissor() image.Rectangle { return d.scissor }

type buffer struct {
	data []byte
}

type img struct {
	desc gfx.ImageDesc
	// sub holds CPU copies of the content, [face][mip].
	sub  [gfx.CubeFaces][gfx.MaxMipmaps][]byte
	size int
	// rgba is the drawable surface of an RGBA8 render target.
	rgba *image.RGBA
}

type shader struct {
	desc gfx.ShaderDesc
}

type pipeline struct {
	desc gfx.PipelineDesc
}

type pass struct {
	colors []*img
	depth  *img
}

func (d *Device) Name() string { return backend.BackendHeadless }

func (d *Device) QueryFeature(f gfx.Feature) bool { return f < gfx.NumFeatures && d.features[f] }

func (d *Device) ResetStateCache() {}

func (d *Device) takeFailure(kind gfx.ResourceKind) error {
	if err, ok := d.fail[kind]; ok {
		delete(d.fail, kind)
		return err
	}
	return nil
}

func (d *Device) reserve(n int) error {
	if d.memLimit > 0 && d.stats.MemoryBytes+n > d.memLimit {
		return fmt.Errorf("%w: %d bytes requested, %d of %d in use", ErrOutOfMemory, n, d.stats.MemoryBytes, d.memLimit)
	}
	d.stats.MemoryBytes += n
	return nil
}

func (d *Device) CreateBuffer(desc *gfx.BufferDesc) (any, error) {
	if err := d.takeFailure(gfx.KindBuffer); err != nil {
		return nil, err
	}
	if err := d.reserve(desc.Size); err != nil {
		return nil, err
	}
	b := &buffer{data: make([]byte, desc.Size)}
	copy(b.data, desc.Content)
	d.stats.Live[gfx.KindBuffer]++
	return b, nil
}

func (d *Device) DestroyBuffer(obj any) {
	b := obj.(*buffer)
	d.stats.MemoryBytes -= len(b.data)
	d.stats.Live[gfx.KindBuffer]--
}

func (d *Device) UpdateBuffer(obj any, data []byte) error {
	b := obj.(*buffer)
	copy(b.data, data)
	d.stats.Updates++
	return nil
}

func (d *Device) CreateImage(desc *gfx.ImageDesc) (any, error) {
	if err := d.takeFailure(gfx.KindImage); err != nil {
		return nil, err
	}
	if f, ok := formatFeature(desc.PixelFormat); ok && !d.features[f] {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedFormat, desc.PixelFormat)
	}
	if desc.Type == gfx.ImageType3D && !d.features[gfx.FeatureImageType3D] ||
		desc.Type == gfx.ImageTypeArray && !d.features[gfx.FeatureImageTypeArray] {
		return nil, fmt.Errorf("headless: image type %d not supported", desc.Type)
	}
	if desc.RenderTarget && desc.SampleCount > 1 && !d.features[gfx.FeatureMSAARenderTargets] {
		return nil, errors.New("headless: multisampled render targets not supported")
	}

	im := &img{desc: *desc, size: imageSize(desc)}
	im.desc.Content = gfx.ImageContent{}
	if err := im.write(&desc.Content); err != nil {
		return nil, err
	}
	if err := d.reserve(im.size); err != nil {
		return nil, err
	}
	if desc.RenderTarget && desc.PixelFormat == gfx.PixelFormatRGBA8 {
		im.rgba = image.NewRGBA(image.Rect(0, 0, desc.Width, desc.Height))
	}
	d.stats.Live[gfx.KindImage]++
	return im, nil
}

// write copies every present subimage of c, checking its length.
func (im *img) write(c *gfx.ImageContent) error {
	for face := range im.desc.Faces() {
		for mip := range im.desc.NumMipmaps {
			src := c.Subimage[face][mip]
			if len(src) == 0 {
				continue
			}
			want := subimageSize(&im.desc, mip)
			if len(src) < want {
				return fmt.Errorf("%w: face %d mip %d has %d bytes, want %d", ErrContentSize, face, mip, len(src), want)
			}
			im.sub[face][mip] = append(im.sub[face][mip][:0], src[:want]...)
		}
	}
	return nil
}

func (d *Device) DestroyImage(obj any) {
	im := obj.(*img)
	d.stats.MemoryBytes -= im.size
	d.stats.Live[gfx.KindImage]--
}

func (d *Device) UpdateImage(obj any, _ *gfx.ImageDesc, content *gfx.ImageContent) error {
	if err := obj.(*img).write(content); err != nil {
		return err
	}
	d.stats.Updates++
	return nil
}

func (d *Device) CreateShader(desc *gfx.ShaderDesc) (any, error) {
	if err := d.takeFailure(gfx.KindShader); err != nil {
		return nil, err
	}
	d.stats.Live[gfx.KindShader]++
	return &shader{desc: *desc}, nil
}

func (d *Device) DestroyShader(any) { d.stats.Live[gfx.KindShader]-- }

func (d *Device) CreatePipeline(desc *gfx.PipelineDesc, shd *gfx.ShaderObject) (any, error) {
	if err := d.takeFailure(gfx.KindPipeline); err != nil {
		return nil, err
	}
	if _, ok := shd.Object.(*shader); !ok {
		return nil, fmt.Errorf("headless: shader object %T not created by this device", shd.Object)
	}
	for i := range desc.Layouts {
		l := &desc.Layouts[i]
		if l.StepFunc == gfx.VertexStepPerInstance && !d.features[gfx.FeatureInstancedArrays] {
			return nil, errors.New("headless: instanced arrays not supported")
		}
	}
	d.stats.Live[gfx.KindPipeline]++
	return &pipeline{desc: *desc}, nil
}

func (d *Device) DestroyPipeline(any) { d.stats.Live[gfx.KindPipeline]-- }

func (d *Device) CreatePass(_ *gfx.PassDesc, colors []gfx.Attachment, depth *gfx.Attachment) (any, error) {
	if err := d.takeFailure(gfx.KindPass); err != nil {
		return nil, err
	}
	if len(colors) > 1 && !d.features[gfx.FeatureMultipleRenderTarget] {
		return nil, errors.New("headless: multiple render targets not supported")
	}
	p := &pass{colors: make([]*img, len(colors))}
	for i := range colors {
		p.colors[i] = colors[i].Image.(*img)
	}
	if depth != nil {
		p.depth = depth.Image.(*img)
	}
	d.stats.Live[gfx.KindPass]++
	return p, nil
}

func (d *Device) DestroyPass(any) { d.stats.Live[gfx.KindPass]-- }

func (d *Device) BeginPass(obj any, action *gfx.PassAction, width, height int) {
	d.inPass = true
	d.stats.Passes++
	full := image.Rect(0, 0, width, height)
	d.viewport, d.scissor = full, full

	if obj == nil {
		d.target = nil
		if action.Colors[0].Action == gfx.ActionClear {
			fill(d.fb, action.Colors[0].Value)
		}
		return
	}
	d.target = obj.(*pass)
	for i, c := range d.target.colors {
		if c.rgba != nil && action.Colors[i].Action == gfx.ActionClear {
			fill(c.rgba, action.Colors[i].Value)
		}
	}
}

func fill(dst *image.RGBA, v [4]float32) {
	c := color.NRGBA{R: unorm8(v[0]), G: unorm8(v[1]), B: unorm8(v[2]), A: unorm8(v[3])}
	draw.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

func unorm8(f float32) uint8 {
	switch {
	case f <= 0:
		return 0
	case f >= 1:
		return 255
	}
	return uint8(f*255 + 0.5)
}

func rect(x, y, w, h int, originTopLeft bool, fbHeight int) image.Rectangle {
	if !originTopLeft {
		y = fbHeight - (y + h)
	}
	return image.Rect(x, y, x+w, y+h)
}

func (d *Device) passHeight() int {
	if d.target != nil && len(d.target.colors) > 0 {
		return d.target.colors[0].desc.Height
	}
	return d.fb.Bounds().Dy()
}

func (d *Device) ApplyViewport(x, y, width, height int, originTopLeft bool) {
	d.viewport = rect(x, y, width, height, originTopLeft, d.passHeight())
}

func (d *Device) ApplyScissorRect(x, y, width, height int, originTopLeft bool) {
	d.scissor = rect(x, y, width, height, originTopLeft, d.passHeight())
}

func (d *Device) ApplyBindings(*gfx.Bindings) { d.stats.Bindings++ }

func (d *Device) ApplyUniformBlock(_ gfx.ShaderStage, _ int, data []byte) {
	d.stats.UniformBytes += len(data)
}

func (d *Device) Draw(_, numElements, numInstances int) {
	d.stats.Draws++
	d.stats.Elements += numElements
	d.stats.Instances += numInstances
}

func (d *Device) EndPass() {
	d.inPass = false
	d.target = nil
}

func (d *Device) Commit() { d.stats.Frames++ }

func (d *Device) Shutdown() { d.closed = true }

// Closed reports whether Shutdown has been called.
func (d *Device) Closed() bool { return d.closed }
