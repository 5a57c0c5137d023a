// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import (
	"slices"
	"testing"
)

type scene struct {
	shd Shader
	pip Pipeline
	vb  Buffer
	tex Image
}

func newScene(t *testing.T, ctx *Context) scene {
	t.Helper()
	var s scene
	s.shd = mustMake[Shader](t, "shader")(ctx.MakeShader(shaderDesc()))
	s.pip = mustMake[Pipeline](t, "pipeline")(ctx.MakePipeline(pipelineDesc(s.shd)))
	s.vb = mustMake[Buffer](t, "buffer")(ctx.MakeBuffer(vertexBufferDesc()))
	s.tex = mustMake[Image](t, "image")(ctx.MakeImage(textureDesc()))
	return s
}

func (s scene) drawState() DrawState {
	ds := DrawState{Pipeline: s.pip}
	ds.VertexBuffers[0] = s.vb
	ds.FSImages[0] = s.tex
	return ds
}

func TestRenderFrame(t *testing.T) {
	ctx, dev := newTestContext(t)
	s := newScene(t, ctx)

	ctx.BeginDefaultPass(PassAction{}, 640, 480)
	ctx.ApplyViewport(0, 0, 640, 480, true)
	ctx.ApplyScissorRect(0, 0, 320, 240, true)
	ctx.ApplyDrawState(s.drawState())
	ctx.ApplyUniformBlock(ShaderStageVS, 0, make([]byte, 64))
	ctx.Draw(0, 3, 1)
	ctx.EndPass()
	ctx.Commit()

	want := []string{"begin_pass", "viewport", "scissor", "bindings", "end_pass"}
	var got []string
	for _, c := range dev.calls {
		if !slices.Contains([]string{"create_buffer", "create_image", "create_shader", "create_pipeline"}, c) {
			got = append(got, c)
		}
	}
	if !slices.Equal(got, want) {
		t.Errorf("device calls = %v, want %v", got, want)
	}
	if dev.draws != 1 || len(dev.uniforms) != 1 || dev.commits != 1 {
		t.Errorf("draws=%d uniforms=%d commits=%d, want 1 each", dev.draws, len(dev.uniforms), dev.commits)
	}
	if dev.passObj != nil || dev.passW != 640 || dev.passH != 480 {
		t.Errorf("default pass = (%v, %dx%d)", dev.passObj, dev.passW, dev.passH)
	}
	if a := dev.passAction; a.Colors[0].Action != ActionClear || a.Colors[0].Value != DefaultClearColor {
		t.Errorf("default pass action not normalized: %+v", a.Colors[0])
	}
	if dev.bindings.FSImages[0] == nil || dev.bindings.VertexBuffers[0].Object == nil {
		t.Error("bindings missing resolved objects")
	}

	st := ctx.Stats()
	if st.Frame != 1 || st.Draws != 1 || st.DroppedCommands != 0 {
		t.Errorf("stats = %+v", st)
	}
}

func TestDrawStateDropped(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(t *testing.T, ctx *Context, s scene, ds *DrawState)
	}{
		{"zero pipeline", func(_ *testing.T, _ *Context, _ scene, ds *DrawState) {
			ds.Pipeline = Pipeline{}
		}},
		{"destroyed pipeline", func(_ *testing.T, ctx *Context, s scene, _ *DrawState) {
			ctx.DestroyPipeline(s.pip)
		}},
		{"destroyed shader", func(_ *testing.T, ctx *Context, s scene, _ *DrawState) {
			ctx.DestroyShader(s.shd)
		}},
		{"destroyed vertex buffer", func(_ *testing.T, ctx *Context, s scene, _ *DrawState) {
			ctx.DestroyBuffer(s.vb)
		}},
		{"missing vertex buffer", func(_ *testing.T, _ *Context, _ scene, ds *DrawState) {
			ds.VertexBuffers[0] = Buffer{}
		}},
		{"index buffer as vertex buffer", func(t *testing.T, ctx *Context, _ scene, ds *DrawState) {
			ds.VertexBuffers[0] = mustMake[Buffer](t, "buffer")(ctx.MakeBuffer(indexBufferDesc()))
		}},
		{"buffer on unused layout", func(_ *testing.T, _ *Context, s scene, ds *DrawState) {
			ds.VertexBuffers[1] = s.vb
		}},
		{"index buffer on non-indexed pipeline", func(t *testing.T, ctx *Context, _ scene, ds *DrawState) {
			ds.IndexBuffer = mustMake[Buffer](t, "buffer")(ctx.MakeBuffer(indexBufferDesc()))
		}},
		{"destroyed image", func(_ *testing.T, ctx *Context, s scene, _ *DrawState) {
			ctx.DestroyImage(s.tex)
		}},
		{"failed image", func(t *testing.T, ctx *Context, _ scene, ds *DrawState) {
			img, _ := ctx.AllocImage()
			if err := ctx.FailImage(img); err != nil {
				t.Fatal(err)
			}
			ds.FSImages[0] = img
		}},
		{"image on unused slot", func(_ *testing.T, _ *Context, s scene, ds *DrawState) {
			ds.VSImages[0] = s.tex
		}},
		{"cube image in 2D slot", func(t *testing.T, ctx *Context, _ scene, ds *DrawState) {
			d := &ImageDesc{Type: ImageTypeCube, Width: 1, Height: 1}
			for face := range CubeFaces {
				d.Content.Subimage[face][0] = make([]byte, 4)
			}
			ds.FSImages[0] = mustMake[Image](t, "image")(ctx.MakeImage(d))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, dev := newTestContext(t)
			s := newScene(t, ctx)
			ds := s.drawState()
			tt.mutate(t, ctx, s, &ds)

			ctx.BeginDefaultPass(PassAction{}, 64, 64)
			ctx.ApplyDrawState(ds)
			ctx.ApplyUniformBlock(ShaderStageVS, 0, make([]byte, 64))
			ctx.Draw(0, 3, 1)
			ctx.EndPass()
			ctx.Commit()

			if dev.bindings != nil || dev.draws != 0 || len(dev.uniforms) != 0 {
				t.Errorf("dropped draw state reached the device: bindings=%v draws=%d uniforms=%d",
					dev.bindings != nil, dev.draws, len(dev.uniforms))
			}
			if got := ctx.Stats().DroppedCommands; got != 3 {
				t.Errorf("DroppedCommands = %d, want 3", got)
			}
		})
	}
}

func TestDrawStateRecovers(t *testing.T) {
	ctx, dev := newTestContext(t)
	s := newScene(t, ctx)

	ctx.BeginDefaultPass(PassAction{}, 64, 64)
	ctx.ApplyDrawState(DrawState{})
	ctx.Draw(0, 3, 1)
	ctx.ApplyDrawState(s.drawState())
	ctx.Draw(0, 3, 1)
	ctx.EndPass()

	if dev.draws != 1 {
		t.Errorf("device draws = %d, want 1", dev.draws)
	}
}

func TestUniformBlockSize(t *testing.T) {
	tests := []struct {
		name  string
		stage ShaderStage
		index int
		size  int
		ok    bool
	}{
		{"exact", ShaderStageVS, 0, 64, true},
		{"short", ShaderStageVS, 0, 48, false},
		{"long", ShaderStageVS, 0, 80, false},
		{"undeclared block", ShaderStageVS, 1, 64, false},
		{"undeclared stage block", ShaderStageFS, 0, 64, false},
		{"negative index", ShaderStageVS, -1, 64, false},
		{"index past limit", ShaderStageVS, MaxShaderStageUBs, 64, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, dev := newTestContext(t)
			s := newScene(t, ctx)
			ctx.BeginDefaultPass(PassAction{}, 64, 64)
			ctx.ApplyDrawState(s.drawState())
			ctx.ApplyUniformBlock(tt.stage, tt.index, make([]byte, tt.size))
			ctx.EndPass()

			if got := len(dev.uniforms) == 1; got != tt.ok {
				t.Errorf("uniform applied = %v, want %v", got, tt.ok)
			}
		})
	}
}

func TestUniformAfterPipelineDestroyed(t *testing.T) {
	ctx, dev := newTestContext(t)
	s := newScene(t, ctx)
	ctx.BeginDefaultPass(PassAction{}, 64, 64)
	ctx.ApplyDrawState(s.drawState())
	ctx.DestroyPipeline(s.pip)
	ctx.ApplyUniformBlock(ShaderStageVS, 0, make([]byte, 64))
	ctx.EndPass()
	if len(dev.uniforms) != 0 {
		t.Error("uniform applied for a destroyed pipeline")
	}
}

func TestCommandsOutsidePass(t *testing.T) {
	ctx, dev := newTestContext(t)
	s := newScene(t, ctx)

	ctx.ApplyViewport(0, 0, 1, 1, true)
	ctx.ApplyScissorRect(0, 0, 1, 1, true)
	ctx.ApplyDrawState(s.drawState())
	ctx.ApplyUniformBlock(ShaderStageVS, 0, make([]byte, 64))
	ctx.Draw(0, 3, 1)
	ctx.EndPass()

	if got := ctx.Stats().DroppedCommands; got != 6 {
		t.Errorf("DroppedCommands = %d, want 6", got)
	}
	if dev.draws != 0 || dev.bindings != nil {
		t.Error("commands outside a pass reached the device")
	}
}

func TestNestedBeginPassDropped(t *testing.T) {
	ctx, dev := newTestContext(t)
	ctx.BeginDefaultPass(PassAction{}, 8, 8)
	ctx.BeginDefaultPass(PassAction{}, 8, 8)
	ctx.EndPass()

	n := 0
	for _, c := range dev.calls {
		if c == "begin_pass" {
			n++
		}
	}
	if n != 1 {
		t.Errorf("device saw %d begin_pass calls, want 1", n)
	}
	if ctx.Stats().DroppedCommands != 1 {
		t.Errorf("DroppedCommands = %d, want 1", ctx.Stats().DroppedCommands)
	}
}

func TestDrawSkipsEmptyRanges(t *testing.T) {
	ctx, dev := newTestContext(t)
	s := newScene(t, ctx)
	ctx.BeginDefaultPass(PassAction{}, 8, 8)
	ctx.ApplyDrawState(s.drawState())
	ctx.Draw(0, 0, 1)
	ctx.Draw(0, 3, 0)
	ctx.Draw(-1, 3, 1)
	ctx.EndPass()
	if dev.draws != 0 {
		t.Errorf("device draws = %d, want 0", dev.draws)
	}
}

func TestOffscreenPass(t *testing.T) {
	ctx, dev := newTestContext(t)
	s := newScene(t, ctx)
	rtDesc := renderTargetDesc(128, 64, PixelFormatRGBA8)
	rtDesc.NumMipmaps = 2
	rt := mustMake[Image](t, "image")(ctx.MakeImage(rtDesc))
	pd := &PassDesc{}
	pd.ColorAttachments[0] = AttachmentDesc{Image: rt, MipLevel: 1}
	pass := mustMake[Pass](t, "pass")(ctx.MakePass(pd))

	var action PassAction
	action.Colors[0] = ColorAttachmentAction{Action: ActionLoad}
	ctx.BeginPass(pass, action)
	ctx.ApplyDrawState(s.drawState())
	ctx.Draw(0, 3, 1)
	ctx.EndPass()

	if dev.passObj == nil {
		t.Fatal("offscreen pass object not passed to device")
	}
	if dev.passW != 64 || dev.passH != 32 {
		t.Errorf("pass size = %dx%d, want 64x32", dev.passW, dev.passH)
	}
	if dev.passAction.Colors[0].Action != ActionLoad {
		t.Errorf("color action = %v, want load", dev.passAction.Colors[0].Action)
	}
	if dev.draws != 1 {
		t.Errorf("device draws = %d, want 1", dev.draws)
	}
}

func TestPassWithDestroyedAttachment(t *testing.T) {
	ctx, dev := newTestContext(t)
	s := newScene(t, ctx)
	rt := mustMake[Image](t, "image")(ctx.MakeImage(renderTargetDesc(16, 16, PixelFormatRGBA8)))
	pd := &PassDesc{}
	pd.ColorAttachments[0].Image = rt
	pass := mustMake[Pass](t, "pass")(ctx.MakePass(pd))
	ctx.DestroyImage(rt)

	if got := ctx.QueryPassState(pass); got != ResourceStateValid {
		t.Fatalf("pass state = %v, want valid", got)
	}

	ctx.BeginPass(pass, PassAction{})
	ctx.ApplyDrawState(s.drawState())
	ctx.Draw(0, 3, 1)
	ctx.EndPass()

	// A fresh pass works afterwards.
	ctx.BeginDefaultPass(PassAction{}, 8, 8)
	ctx.EndPass()

	var begins, ends int
	for _, c := range dev.calls {
		switch c {
		case "begin_pass":
			begins++
		case "end_pass":
			ends++
		}
	}
	if begins != 1 || ends != 1 {
		t.Errorf("begin/end = %d/%d, want 1/1", begins, ends)
	}
	if dev.draws != 0 {
		t.Errorf("device draws = %d, want 0", dev.draws)
	}
	if got := ctx.Stats().DroppedCommands; got != 3 {
		t.Errorf("DroppedCommands = %d, want 3", got)
	}
}

func TestCommitEndsOpenPass(t *testing.T) {
	ctx, dev := newTestContext(t)
	ctx.BeginDefaultPass(PassAction{}, 8, 8)
	ctx.Commit()
	if !slices.Contains(dev.calls, "end_pass") {
		t.Error("Commit did not end the open pass")
	}
	ctx.BeginDefaultPass(PassAction{}, 8, 8)
	ctx.EndPass()
	if ctx.Stats().DroppedCommands != 0 {
		t.Errorf("DroppedCommands = %d, want 0", ctx.Stats().DroppedCommands)
	}
}

func TestCommandsAfterShutdownIgnored(t *testing.T) {
	ctx, dev := newTestContext(t)
	ctx.Shutdown()
	calls := len(dev.calls)
	ctx.BeginDefaultPass(PassAction{}, 8, 8)
	ctx.Draw(0, 3, 1)
	ctx.EndPass()
	ctx.Commit()
	if len(dev.calls) != calls || dev.commits != 0 {
		t.Error("commands after shutdown reached the device")
	}
}
