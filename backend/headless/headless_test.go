// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package headless

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gfx/backend"
)

func newContext(t *testing.T, opts ...Option) (*gfx.Context, *Device) {
	t.Helper()
	dev := New(opts...)
	ctx, err := gfx.NewContext(dev, gfx.WithLabel(t.Name()))
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	t.Cleanup(ctx.Shutdown)
	return ctx, dev
}

func quad(t *testing.T, ctx *gfx.Context) (gfx.Pipeline, gfx.Buffer) {
	t.Helper()
	sd := &gfx.ShaderDesc{
		VS: gfx.ShaderStageDesc{Source: "vs"},
		FS: gfx.ShaderStageDesc{Source: "fs"},
	}
	sd.VS.UniformBlocks[0] = gfx.UniformBlockDesc{Size: 16}
	shd, err := ctx.MakeShader(sd)
	if err != nil {
		t.Fatalf("MakeShader: %v", err)
	}
	pd := &gfx.PipelineDesc{Shader: shd}
	pd.Layouts[0].Stride = 8
	pd.Layouts[0].Attrs[0] = gfx.NamedAttr("pos", 0, gfx.VertexFormatFloat2)
	pip, err := ctx.MakePipeline(pd)
	if err != nil {
		t.Fatalf("MakePipeline: %v", err)
	}
	vb, err := ctx.MakeBuffer(&gfx.BufferDesc{Content: make([]byte, 48)})
	if err != nil {
		t.Fatalf("MakeBuffer: %v", err)
	}
	return pip, vb
}

func TestRegistered(t *testing.T) {
	if !backend.IsRegistered(backend.BackendHeadless) {
		t.Fatal("headless backend not registered")
	}
	dev, err := backend.Get(backend.BackendHeadless)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if dev.Name() != backend.BackendHeadless {
		t.Errorf("Name() = %q", dev.Name())
	}
}

func TestFeatures(t *testing.T) {
	dev := New()
	if !dev.QueryFeature(gfx.FeatureInstancedArrays) {
		t.Error("instanced arrays should be enabled by default")
	}
	if dev.QueryFeature(gfx.FeatureTextureCompressionDXT) {
		t.Error("DXT should be disabled by default")
	}
	if dev.QueryFeature(gfx.NumFeatures) {
		t.Error("out of range feature reported")
	}

	dev = New(WithFeatures(gfx.FeatureTextureCompressionDXT))
	if !dev.QueryFeature(gfx.FeatureTextureCompressionDXT) || dev.QueryFeature(gfx.FeatureInstancedArrays) {
		t.Error("WithFeatures should replace the feature set")
	}
}

func TestRenderFrame(t *testing.T) {
	ctx, dev := newContext(t, WithFramebuffer(8, 8))
	pip, vb := quad(t, ctx)

	var action gfx.PassAction
	action.Colors[0] = gfx.ColorAttachmentAction{Action: gfx.ActionClear, Value: [4]float32{1, 0, 0, 1}}
	ctx.BeginDefaultPass(action, 8, 8)
	ds := gfx.DrawState{Pipeline: pip}
	ds.VertexBuffers[0] = vb
	ctx.ApplyDrawState(ds)
	ctx.ApplyUniformBlock(gfx.ShaderStageVS, 0, make([]byte, 16))
	ctx.Draw(0, 6, 2)
	ctx.EndPass()
	ctx.Commit()

	st := dev.Stats()
	want := Stats{Frames: 1, Passes: 1, Draws: 1, Elements: 6, Instances: 2, Bindings: 1, UniformBytes: 16}
	if st.Frames != want.Frames || st.Passes != want.Passes || st.Draws != want.Draws ||
		st.Elements != want.Elements || st.Instances != want.Instances ||
		st.Bindings != want.Bindings || st.UniformBytes != want.UniformBytes {
		t.Errorf("Stats() = %+v, want %+v", st, want)
	}
	if got := dev.Framebuffer().RGBAAt(3, 3); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("framebuffer pixel = %v, want red", got)
	}
}

func TestClearOffscreen(t *testing.T) {
	ctx, dev := newContext(t)
	rt, err := ctx.MakeImage(&gfx.ImageDesc{RenderTarget: true, Width: 4, Height: 4})
	if err != nil {
		t.Fatalf("MakeImage: %v", err)
	}
	var pd gfx.PassDesc
	pd.ColorAttachments[0].Image = rt
	pass, err := ctx.MakePass(&pd)
	if err != nil {
		t.Fatalf("MakePass: %v", err)
	}

	var action gfx.PassAction
	action.Colors[0] = gfx.ColorAttachmentAction{Action: gfx.ActionClear, Value: [4]float32{0, 0.5, 1, 1}}
	ctx.BeginPass(pass, action)
	ctx.EndPass()

	if dev.Stats().Passes != 1 {
		t.Fatalf("Passes = %d, want 1", dev.Stats().Passes)
	}
	if dev.Framebuffer().RGBAAt(0, 0) != (color.RGBA{}) {
		t.Error("offscreen clear touched the default framebuffer")
	}
}

func TestViewportOrigin(t *testing.T) {
	tests := []struct {
		name      string
		topLeft   bool
		wantRect  image.Rectangle
		wantScis  image.Rectangle
		scissorXY [2]int
	}{
		{"top-left", true, image.Rect(10, 20, 110, 70), image.Rect(0, 0, 5, 5), [2]int{0, 0}},
		{"bottom-left", false, image.Rect(10, 410, 110, 460), image.Rect(0, 475, 5, 480), [2]int{0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, dev := newContext(t)
			ctx.BeginDefaultPass(gfx.PassAction{}, 640, 480)
			ctx.ApplyViewport(10, 20, 100, 50, tt.topLeft)
			ctx.ApplyScissorRect(tt.scissorXY[0], tt.scissorXY[1], 5, 5, tt.topLeft)
			if dev.Viewport() != tt.wantRect {
				t.Errorf("Viewport() = %v, want %v", dev.Viewport(), tt.wantRect)
			}
			if dev.Scissor() != tt.wantScis {
				t.Errorf("Scissor() = %v, want %v", dev.Scissor(), tt.wantScis)
			}
			ctx.EndPass()
		})
	}
}

func TestMemoryLimit(t *testing.T) {
	ctx, dev := newContext(t, WithMemoryLimit(100))

	a, err := ctx.MakeBuffer(&gfx.BufferDesc{Size: 64, Usage: gfx.UsageDynamic})
	if err != nil {
		t.Fatalf("first buffer: %v", err)
	}
	b, err := ctx.MakeBuffer(&gfx.BufferDesc{Size: 64, Usage: gfx.UsageDynamic})
	if !errors.Is(err, ErrOutOfMemory) {
		t.Fatalf("second buffer err = %v, want ErrOutOfMemory", err)
	}
	if ctx.QueryBufferState(b) != gfx.ResourceStateFailed {
		t.Errorf("state = %v, want failed", ctx.QueryBufferState(b))
	}

	ctx.DestroyBuffer(a)
	if dev.Stats().MemoryBytes != 0 {
		t.Errorf("MemoryBytes = %d after destroy", dev.Stats().MemoryBytes)
	}
	if _, err := ctx.MakeBuffer(&gfx.BufferDesc{Size: 64, Usage: gfx.UsageDynamic}); err != nil {
		t.Errorf("buffer after release: %v", err)
	}
}

func TestFailNext(t *testing.T) {
	ctx, dev := newContext(t)
	injected := errors.New("lost device")
	dev.FailNext(gfx.KindShader, injected)

	sd := &gfx.ShaderDesc{VS: gfx.ShaderStageDesc{Source: "vs"}, FS: gfx.ShaderStageDesc{Source: "fs"}}
	shd, err := ctx.MakeShader(sd)
	if !errors.Is(err, injected) || !errors.Is(err, gfx.ErrBackendConstructionFailed) {
		t.Fatalf("err = %v, want injected construction failure", err)
	}
	if ctx.QueryShaderState(shd) != gfx.ResourceStateFailed {
		t.Errorf("state = %v, want failed", ctx.QueryShaderState(shd))
	}
	if _, err := ctx.MakeShader(sd); err != nil {
		t.Errorf("failure should apply once, got %v", err)
	}
}

func TestImageFormats(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		desc    gfx.ImageDesc
		content int
		wantErr error
	}{
		{"rgba8", nil, gfx.ImageDesc{Width: 4, Height: 4}, 64, nil},
		{"short content", nil, gfx.ImageDesc{Width: 4, Height: 4}, 63, ErrContentSize},
		{"dxt1 disabled", nil, gfx.ImageDesc{Width: 8, Height: 8, PixelFormat: gfx.PixelFormatDXT1}, 32, ErrUnsupportedFormat},
		{
			"dxt1 enabled",
			[]Option{WithFeatures(gfx.FeatureTextureCompressionDXT)},
			gfx.ImageDesc{Width: 8, Height: 8, PixelFormat: gfx.PixelFormatDXT1}, 32, nil,
		},
		{"float", nil, gfx.ImageDesc{Width: 2, Height: 2, PixelFormat: gfx.PixelFormatRGBA32F}, 64, nil},
		{"array", nil, gfx.ImageDesc{Type: gfx.ImageTypeArray, Width: 2, Height: 2, Depth: 3}, 48, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := newContext(t, tt.opts...)
			d := tt.desc
			d.Content.Subimage[0][0] = make([]byte, tt.content)
			_, err := ctx.MakeImage(&d)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("MakeImage: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestUpdates(t *testing.T) {
	ctx, dev := newContext(t)
	buf, err := ctx.MakeBuffer(&gfx.BufferDesc{Size: 16, Usage: gfx.UsageStream})
	if err != nil {
		t.Fatalf("MakeBuffer: %v", err)
	}
	if err := ctx.UpdateBuffer(buf, []byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("UpdateBuffer: %v", err)
	}
	ctx.Commit()

	im, err := ctx.MakeImage(&gfx.ImageDesc{Width: 2, Height: 2, Usage: gfx.UsageDynamic})
	if err != nil {
		t.Fatalf("MakeImage: %v", err)
	}
	var c gfx.ImageContent
	c.Subimage[0][0] = make([]byte, 8)
	if err := ctx.UpdateImage(im, &c); !errors.Is(err, ErrContentSize) {
		t.Errorf("short image update err = %v, want ErrContentSize", err)
	}
	c.Subimage[0][0] = make([]byte, 16)
	if err := ctx.UpdateImage(im, &c); err != nil {
		t.Errorf("UpdateImage: %v", err)
	}
	if dev.Stats().Updates != 2 {
		t.Errorf("Updates = %d, want 2", dev.Stats().Updates)
	}
}

func TestShutdownReleasesEverything(t *testing.T) {
	dev := New()
	ctx, err := gfx.NewContext(dev)
	if err != nil {
		t.Fatal(err)
	}
	quad(t, ctx)
	ctx.Shutdown()

	if !dev.Closed() {
		t.Error("device not shut down")
	}
	st := dev.Stats()
	for i, n := range st.Live {
		if n != 0 {
			t.Errorf("%v: %d live objects after shutdown", gfx.ResourceKinds[i], n)
		}
	}
	if st.MemoryBytes != 0 {
		t.Errorf("MemoryBytes = %d after shutdown", st.MemoryBytes)
	}
}

func TestSizes(t *testing.T) {
	tests := []struct {
		name string
		desc gfx.ImageDesc
		mip  int
		want int
	}{
		{"rgba8", gfx.ImageDesc{Width: 4, Height: 4, PixelFormat: gfx.PixelFormatRGBA8}, 0, 64},
		{"rgba8 mip2", gfx.ImageDesc{Width: 4, Height: 4, PixelFormat: gfx.PixelFormatRGBA8}, 2, 4},
		{"dxt1 rounds up", gfx.ImageDesc{Width: 5, Height: 5, PixelFormat: gfx.PixelFormatDXT1}, 0, 32},
		{"dxt5", gfx.ImageDesc{Width: 8, Height: 8, PixelFormat: gfx.PixelFormatDXT5}, 0, 64},
		{"pvrtc2 minimum", gfx.ImageDesc{Width: 4, Height: 4, PixelFormat: gfx.PixelFormatPVRTC2RGB}, 0, 32},
		{"3d halves depth", gfx.ImageDesc{Type: gfx.ImageType3D, Width: 4, Height: 4, Depth: 4, PixelFormat: gfx.PixelFormatL8}, 1, 8},
		{"array keeps layers", gfx.ImageDesc{Type: gfx.ImageTypeArray, Width: 4, Height: 4, Depth: 4, PixelFormat: gfx.PixelFormatL8}, 1, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := subimageSize(&tt.desc, tt.mip); got != tt.want {
				t.Errorf("subimageSize() = %d, want %d", got, tt.want)
			}
		})
	}

	cube := gfx.ImageDesc{Type: gfx.ImageTypeCube, Width: 2, Height: 2, NumMipmaps: 2, PixelFormat: gfx.PixelFormatRGBA8}
	if got := imageSize(&cube); got != 6*(16+4) {
		t.Errorf("imageSize(cube) = %d, want %d", got, 6*(16+4))
	}
}
