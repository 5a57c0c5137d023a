// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command gfxdemo renders a few frames through a gfx backend and optionally
// writes the last frame to a PNG file.
//
// Configuration is read from GFX_* environment variables (see Config),
// seeded from a .env file (GFX_ENV_FILE, default ".env"), and overridden
// by flags:
//
//	gfxdemo -backend headless -frames 10 -output frame.png
//	GFX_METRICS_ADDR=:9100 GFX_LINGER=1m gfxdemo
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gfx/backend"
	"github.com/gogpu/gfx/backend/headless"
	"github.com/gogpu/gfx/backend/wgpu"
	"github.com/gogpu/gfx/metrics"
	"github.com/gogpu/gfx/stream"
)

func main() {
	envFile := os.Getenv("GFX_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	cfg, err := LoadConfig(envFile)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	// Flags override the environment.
	flag.StringVar(&cfg.Backend, "backend", cfg.Backend, "backend name (wgpu, headless); empty picks the best available")
	flag.IntVar(&cfg.Width, "width", cfg.Width, "framebuffer width")
	flag.IntVar(&cfg.Height, "height", cfg.Height, "framebuffer height")
	flag.IntVar(&cfg.Frames, "frames", cfg.Frames, "number of frames to render")
	flag.StringVar(&cfg.Output, "output", cfg.Output, "write the last frame to this PNG file")
	flag.StringVar(&cfg.Texture, "texture", cfg.Texture, "image file to texture the quad with")
	flag.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "serve Prometheus metrics on this address")
	flag.DurationVar(&cfg.Linger, "linger", cfg.Linger, "keep serving metrics this long after rendering")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	flag.Parse()

	if err := ValidateConfig(&cfg); err != nil {
		log.Fatalf("config: %v", err)
	}
	gfx.SetLogger(newLogger(cfg.LogLevel))

	if err := run(context.Background(), &cfg); err != nil {
		log.Fatalf("gfxdemo: %v", err)
	}
}

// openDevice returns the device named by cfg.Backend, sized to the
// configured framebuffer where the backend supports it.
func openDevice(cfg *Config) (gfx.Device, error) {
	switch cfg.Backend {
	case backend.BackendHeadless:
		return headless.New(headless.WithFramebuffer(cfg.Width, cfg.Height)), nil
	case backend.BackendWGPU:
		return wgpu.New(wgpu.DefaultConfig())
	case "":
		return backend.Default()
	}
	return backend.Get(cfg.Backend)
}

func run(bg context.Context, cfg *Config) error {
	dev, err := openDevice(cfg)
	if err != nil {
		return err
	}
	ctx, err := gfx.NewContext(dev, gfx.WithPoolSizes(cfg.PoolSizes()), gfx.WithLabel("gfxdemo"))
	if err != nil {
		dev.Shutdown()
		return err
	}
	defer ctx.Shutdown()

	var snap metrics.Snapshot
	reg := prometheus.NewRegistry()
	reg.MustRegister(metrics.NewCollector("gfx", &snap))
	timer := metrics.NewFrameTimer(reg, "gfx")
	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, reg)
		defer srv.Close()
	}

	texture, loader, err := loadTexture(bg, ctx, cfg.Texture)
	if err != nil {
		return err
	}
	if loader != nil {
		defer loader.Close()
	}

	s, err := newScene(ctx, texture, 256)
	if err != nil {
		return err
	}
	defer s.destroy(ctx)

	for n := range cfg.Frames {
		if loader != nil {
			pollTexture(ctx, loader, texture)
		}
		timer.Begin()
		s.frame(ctx, n, cfg.Width, cfg.Height)
		timer.End()
		snap.Publish(ctx.Stats())
	}

	st := ctx.Stats()
	gfx.Logger().Info("rendered",
		"backend", ctx.Backend(), "frames", st.Frame, "draws", st.Draws,
		"dropped", st.DroppedCommands, "failed", st.FailedInits)

	if cfg.Output != "" {
		if err := writeFrame(dev, cfg.Output); err != nil {
			return err
		}
	}
	if cfg.MetricsAddr != "" && cfg.Linger > 0 {
		time.Sleep(cfg.Linger)
	}
	return nil
}

// loadTexture returns the image to texture the quad with. A file is
// decoded in the background; its handle stays in the alloc state until the
// result is applied by pollTexture.
func loadTexture(bg context.Context, ctx *gfx.Context, path string) (gfx.Image, *stream.Loader, error) {
	if path == "" {
		img, err := ctx.MakeImage(checker(64, 8))
		return img, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return gfx.Image{}, nil, err
	}
	img, err := ctx.AllocImage()
	if err != nil {
		f.Close()
		return img, nil, err
	}
	loader := stream.NewLoader(1, stream.WithMipmaps(), stream.WithSampling(gfx.FilterLinear, gfx.WrapClampToEdge))
	if err := loader.Load(bg, uint64(img.ID()), f); err != nil {
		loader.Close()
		return img, nil, err
	}
	return img, loader, nil
}

func pollTexture(ctx *gfx.Context, loader *stream.Loader, img gfx.Image) {
	select {
	case res, ok := <-loader.Results():
		if !ok {
			return
		}
		if err := stream.Apply(ctx, img, res); err != nil {
			gfx.Logger().Warn("texture not loaded", "err", err)
		}
	default:
	}
}

func serveMetrics(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			gfx.Logger().Error("metrics server", "addr", addr, "err", err)
		}
	}()
	gfx.Logger().Info("serving metrics", "addr", addr)
	return srv
}

// writeFrame saves the default framebuffer of dev as a PNG.
func writeFrame(dev gfx.Device, path string) error {
	var (
		img *image.RGBA
		err error
	)
	switch d := dev.(type) {
	case interface{ Framebuffer() *image.RGBA }:
		img = d.Framebuffer()
	case interface{ Snapshot() (*image.RGBA, error) }:
		img, err = d.Snapshot()
	default:
		return fmt.Errorf("backend %s cannot read back frames", dev.Name())
	}
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
