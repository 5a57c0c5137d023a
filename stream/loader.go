// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gfx"
)

// ErrClosed is returned by Load after Close.
var ErrClosed = errors.New("stream: loader closed")

// Result is the outcome of one Load.
type Result struct {
	// ID is the caller's identifier passed to Load, usually the image
	// handle's ID.
	ID     uint64
	Desc   *gfx.ImageDesc
	Format string
	Err    error
}

type job struct {
	ctx context.Context
	id  uint64
	r   io.Reader
}

// Option configures a Loader.
type Option func(*Loader)

// WithMipmaps makes the loader build full mip chains.
func WithMipmaps() Option {
	return func(l *Loader) { l.opts.Mipmaps = true }
}

// WithMaxDimension rejects images larger than n texels on either side.
func WithMaxDimension(n int) Option {
	return func(l *Loader) { l.opts.MaxDimension = n }
}

// WithSampling sets the filter and wrap mode of loaded images.
func WithSampling(f gfx.Filter, w gfx.Wrap) Option {
	return func(l *Loader) {
		l.opts.Filter = f
		l.opts.Wrap = w
	}
}

// WithQueueSize sets how many loads may wait for a worker before Load
// blocks.
func WithQueueSize(n int) Option {
	return func(l *Loader) { l.queueSize = n }
}

// Loader decodes images on a fixed set of worker goroutines.
//
// Thread safety: Load and Close are safe for concurrent use. Results are
// delivered in completion order, not submission order.
type Loader struct {
	workers   int
	queueSize int
	opts      DecodeOptions

	jobs    chan job
	results chan Result

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	// mu is held shared by Load while it queues a job, so Close can wait
	// for in-flight Loads before draining the queue.
	mu sync.RWMutex

	running atomic.Bool
	pending atomic.Int64
}

// NewLoader starts a loader with the given number of workers. If workers
// is 0 or negative, GOMAXPROCS is used.
func NewLoader(workers int, opts ...Option) *Loader {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	l := &Loader{workers: workers, queueSize: workers * 4}
	for _, opt := range opts {
		opt(l)
	}
	l.queueSize = max(l.queueSize, 1)
	l.jobs = make(chan job, l.queueSize)
	l.results = make(chan Result, l.queueSize)
	l.ctx, l.cancel = context.WithCancel(context.Background())
	l.running.Store(true)

	l.wg.Add(workers)
	for range workers {
		go l.worker()
	}
	return l
}

// Workers returns the number of worker goroutines.
func (l *Loader) Workers() int { return l.workers }

// Pending returns the number of loads queued or in progress.
func (l *Loader) Pending() int { return int(l.pending.Load()) }

// Results returns the channel results are delivered on. It is closed by
// Close once all workers have exited.
func (l *Loader) Results() <-chan Result { return l.results }

// Load queues r for decoding under id. It blocks while the queue is full
// and returns ctx's error if ctx ends first. The reader is consumed on a
// worker goroutine; if it is an io.Closer it is closed after decoding.
func (l *Loader) Load(ctx context.Context, id uint64, r io.Reader) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.running.Load() {
		return ErrClosed
	}
	l.pending.Add(1)
	select {
	case l.jobs <- job{ctx: ctx, id: id, r: r}:
		return nil
	case <-ctx.Done():
		l.pending.Add(-1)
		return ctx.Err()
	case <-l.ctx.Done():
		l.pending.Add(-1)
		return ErrClosed
	}
}

func (l *Loader) worker() {
	defer l.wg.Done()
	for {
		select {
		case <-l.ctx.Done():
			return
		case j := <-l.jobs:
			if l.ctx.Err() != nil {
				l.abandon(j)
				return
			}
			res := l.decode(j)
			l.pending.Add(-1)
			select {
			case l.results <- res:
			case <-l.ctx.Done():
				return
			}
		}
	}
}

func (l *Loader) decode(j job) Result {
	if c, ok := j.r.(io.Closer); ok {
		defer c.Close()
	}
	res := Result{ID: j.id}
	if err := j.ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	res.Desc, res.Format, res.Err = Decode(j.r, l.opts)
	if res.Err != nil {
		gfx.Logger().Debug("stream: decode failed", "id", j.id, "err", res.Err)
	}
	return res
}

// abandon drops a job that was never started, closing its reader.
func (l *Loader) abandon(j job) {
	if c, ok := j.r.(io.Closer); ok {
		c.Close()
	}
	l.pending.Add(-1)
}

// Close stops the workers. Queued loads that have not started are
// abandoned without a result and their readers are closed. Close is safe
// to call multiple times.
func (l *Loader) Close() {
	if !l.running.CompareAndSwap(true, false) {
		return
	}
	l.cancel()
	// Wait for Loads blocked on a full queue; they observe the cancel.
	l.mu.Lock()
	l.mu.Unlock() //nolint:staticcheck // barrier only
	l.wg.Wait()
	for {
		select {
		case j := <-l.jobs:
			l.abandon(j)
		default:
			close(l.results)
			return
		}
	}
}

// Apply finishes the image h from res on the goroutine that owns ctx: a
// successful decode initializes it, a failed one marks it failed. The
// decode error is returned in the latter case.
func Apply(ctx *gfx.Context, h gfx.Image, res Result) error {
	if res.Err == nil && res.Desc == nil {
		res.Err = ErrEmptyImage
	}
	if res.Err != nil {
		if err := ctx.FailImage(h); err != nil {
			return err
		}
		gfx.Logger().Warn("stream: image load failed", "image", h, "err", res.Err)
		return fmt.Errorf("stream: load %v: %w", h, res.Err)
	}
	return ctx.InitImage(h, res.Desc)
}
