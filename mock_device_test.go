// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import (
	"errors"
	"testing"
)

var errMockRejected = errors.New("mock: rejected")

type mockObject struct {
	kind ResourceKind
	seq  int
}

// mockDevice records every call it receives and can reject construction
// per resource kind.
type mockDevice struct {
	seq      int
	live     map[*mockObject]bool
	reject   map[ResourceKind]error
	features map[Feature]bool
	calls    []string

	bindings    *Bindings
	uniforms    [][]byte
	draws       int
	updates     int
	commits     int
	resets      int
	shutdown    bool
	passObj     any
	passAction  *PassAction
	passW       int
	passH       int
	failUpdates bool
}

func newMockDevice() *mockDevice {
	return &mockDevice{
		live:     make(map[*mockObject]bool),
		reject:   make(map[ResourceKind]error),
		features: map[Feature]bool{FeatureInstancedArrays: true},
	}
}

func (d *mockDevice) create(kind ResourceKind) (any, error) {
	d.calls = append(d.calls, "create_"+kind.String())
	if err := d.reject[kind]; err != nil {
		return nil, err
	}
	d.seq++
	o := &mockObject{kind: kind, seq: d.seq}
	d.live[o] = true
	return o, nil
}

func (d *mockDevice) destroy(kind ResourceKind, obj any) {
	d.calls = append(d.calls, "destroy_"+kind.String())
	delete(d.live, obj.(*mockObject))
}

func (d *mockDevice) liveCount(kind ResourceKind) int {
	n := 0
	for o := range d.live {
		if o.kind == kind {
			n++
		}
	}
	return n
}

func (d *mockDevice) Name() string                { return "mock" }
func (d *mockDevice) QueryFeature(f Feature) bool { return d.features[f] }
func (d *mockDevice) ResetStateCache()            { d.resets++ }

func (d *mockDevice) CreateBuffer(*BufferDesc) (any, error) { return d.create(KindBuffer) }
func (d *mockDevice) DestroyBuffer(obj any)                 { d.destroy(KindBuffer, obj) }
func (d *mockDevice) UpdateBuffer(any, []byte) error {
	if d.failUpdates {
		return errMockRejected
	}
	d.updates++
	return nil
}

func (d *mockDevice) CreateImage(*ImageDesc) (any, error) { return d.create(KindImage) }
func (d *mockDevice) DestroyImage(obj any)                { d.destroy(KindImage, obj) }
func (d *mockDevice) UpdateImage(any, *ImageDesc, *ImageContent) error {
	if d.failUpdates {
		return errMockRejected
	}
	d.updates++
	return nil
}

func (d *mockDevice) CreateShader(*ShaderDesc) (any, error) { return d.create(KindShader) }
func (d *mockDevice) DestroyShader(obj any)                 { d.destroy(KindShader, obj) }

func (d *mockDevice) CreatePipeline(_ *PipelineDesc, shd *ShaderObject) (any, error) {
	if shd == nil || shd.Object == nil {
		return nil, errors.New("mock: pipeline without shader")
	}
	return d.create(KindPipeline)
}
func (d *mockDevice) DestroyPipeline(obj any) { d.destroy(KindPipeline, obj) }

func (d *mockDevice) CreatePass(_ *PassDesc, colors []Attachment, _ *Attachment) (any, error) {
	if len(colors) == 0 {
		return nil, errors.New("mock: pass without attachments")
	}
	return d.create(KindPass)
}
func (d *mockDevice) DestroyPass(obj any) { d.destroy(KindPass, obj) }

func (d *mockDevice) BeginPass(pass any, action *PassAction, width, height int) {
	d.calls = append(d.calls, "begin_pass")
	d.passObj, d.passAction, d.passW, d.passH = pass, action, width, height
}
func (d *mockDevice) ApplyViewport(int, int, int, int, bool) {
	d.calls = append(d.calls, "viewport")
}
func (d *mockDevice) ApplyScissorRect(int, int, int, int, bool) {
	d.calls = append(d.calls, "scissor")
}
func (d *mockDevice) ApplyBindings(b *Bindings) {
	d.calls = append(d.calls, "bindings")
	d.bindings = b
}
func (d *mockDevice) ApplyUniformBlock(_ ShaderStage, _ int, data []byte) {
	d.uniforms = append(d.uniforms, data)
}
func (d *mockDevice) Draw(int, int, int) { d.draws++ }
func (d *mockDevice) EndPass()           { d.calls = append(d.calls, "end_pass") }
func (d *mockDevice) Commit()            { d.commits++ }
func (d *mockDevice) Shutdown()          { d.shutdown = true }

var _ Device = (*mockDevice)(nil)

func newTestContext(t *testing.T, opts ...ContextOption) (*Context, *mockDevice) {
	t.Helper()
	dev := newMockDevice()
	ctx, err := NewContext(dev, opts...)
	if err != nil {
		t.Fatalf("NewContext() error = %v", err)
	}
	t.Cleanup(ctx.Shutdown)
	return ctx, dev
}

// Descriptor fixtures.

func vertexBufferDesc() *BufferDesc {
	return &BufferDesc{Content: make([]byte, 36), Label: "triangle"}
}

func indexBufferDesc() *BufferDesc {
	return &BufferDesc{Type: BufferTypeIndex, Content: make([]byte, 6)}
}

func dynamicBufferDesc(size int) *BufferDesc {
	return &BufferDesc{Size: size, Usage: UsageDynamic}
}

func textureDesc() *ImageDesc {
	d := &ImageDesc{Width: 4, Height: 4}
	d.Content.Subimage[0][0] = make([]byte, 4*4*4)
	return d
}

func renderTargetDesc(w, h int, format PixelFormat) *ImageDesc {
	return &ImageDesc{RenderTarget: true, Width: w, Height: h, PixelFormat: format}
}

func shaderDesc() *ShaderDesc {
	d := &ShaderDesc{
		VS: ShaderStageDesc{Source: "vertex source"},
		FS: ShaderStageDesc{Source: "fragment source"},
	}
	d.VS.UniformBlocks[0] = UniformBlockDesc{Size: 64}
	d.VS.UniformBlocks[0].Uniforms[0] = NamedUniform("mvp", 0, UniformTypeMat4, 0)
	d.FS.Images[0] = NamedImage("tex", ImageType2D)
	return d
}

func pipelineDesc(shd Shader) *PipelineDesc {
	d := &PipelineDesc{Shader: shd}
	d.Layouts[0].Stride = 20
	d.Layouts[0].Attrs[0] = NamedAttr("position", 0, VertexFormatFloat3)
	d.Layouts[0].Attrs[1] = NamedAttr("texcoord0", 12, VertexFormatFloat2)
	return d
}

func mustMake[H any](t *testing.T, what string) func(H, error) H {
	t.Helper()
	return func(h H, err error) H {
		t.Helper()
		if err != nil {
			t.Fatalf("make %s: %v", what, err)
		}
		return h
	}
}
