// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	// Tile decoders.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/gogpu/bigtile"
	"github.com/gogpu/bigtile/eventloop"
	"github.com/gogpu/bigtile/internal/cache"
)

var (
	// ErrStatus is returned when an HTTP fetch answers with a non-200 status.
	ErrStatus = errors.New("loader: unexpected status")

	// ErrDecode is returned when fetched bytes are not a supported image.
	ErrDecode = errors.New("loader: cannot decode image")

	// ErrClosed is returned for loads issued after Close.
	ErrClosed = errors.New("loader: closed")
)

// Options configures an HTTPLoader. Zero fields take their defaults.
type Options struct {
	// Concurrency bounds the number of simultaneous fetches. Default 6.
	Concurrency int

	// Timeout bounds a single fetch, queueing excluded. Default 30s.
	Timeout time.Duration

	// CacheBytes bounds the cache of recently fetched encoded bytes.
	// Default 64 MiB. Negative disables the cache.
	CacheBytes int

	// Client is used for http and https URLs. Default is a client with a
	// pooled transport sized for Concurrency.
	Client *http.Client
}

func (o Options) withDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = 6
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.CacheBytes == 0 {
		o.CacheBytes = 64 << 20
	}
	if o.Client == nil {
		o.Client = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: o.Concurrency * 2,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	return o
}

// Stats is a snapshot of loader activity.
type Stats struct {
	Fetches   uint64 // reads that reached the network or file system
	CacheHits uint64 // reads served from the encoded-bytes cache
	Failures  uint64
}

// HTTPLoader fetches and decodes tile images on background goroutines and
// delivers the results through a Scheduler. It implements tile.Loader.
//
// URLs starting with http:// or https:// are fetched over HTTP; anything
// else is read from the local file system (a file:// prefix is stripped).
type HTTPLoader struct {
	sched   eventloop.Scheduler
	client  *http.Client
	timeout time.Duration
	sem     *semaphore.Weighted
	group   singleflight.Group
	bytes   *cache.Sharded[string, []byte]

	ctx    context.Context
	cancel context.CancelFunc

	// mu orders wg.Add in Load against wg.Wait in Close.
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup

	fetches   atomic.Uint64
	cacheHits atomic.Uint64
	failures  atomic.Uint64
}

// New creates a loader that posts completions to sched.
func New(sched eventloop.Scheduler, opts Options) *HTTPLoader {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	l := &HTTPLoader{
		sched:   sched,
		client:  opts.Client,
		timeout: opts.Timeout,
		sem:     semaphore.NewWeighted(int64(opts.Concurrency)),
		ctx:     ctx,
		cancel:  cancel,
	}
	if opts.CacheBytes > 0 {
		l.bytes = cache.NewSharded[string, []byte](opts.CacheBytes, cache.StringHasher, func(b []byte) int { return len(b) })
	}
	return l
}

// Load fetches and decodes url in the background. done runs on the
// scheduler with the decoded image or an error.
func (l *HTTPLoader) Load(url string, done func(image.Image, error)) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		l.sched.Post(func() { done(nil, ErrClosed) })
		return
	}
	l.wg.Add(1)
	l.mu.Unlock()
	go func() {
		defer l.wg.Done()
		img, err := l.LoadSync(l.ctx, url)
		if err != nil {
			bigtile.Logger().Debug("loader: load failed", "url", url, "err", err)
		}
		l.sched.Post(func() { done(img, err) })
	}()
}

// LoadSync fetches and decodes url on the calling goroutine.
// It is meant for startup resources such as descriptors and posters.
func (l *HTTPLoader) LoadSync(ctx context.Context, url string) (image.Image, error) {
	b, err := l.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		l.failures.Add(1)
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, url, err)
	}
	return img, nil
}

// Fetch returns the raw bytes at url. Concurrent fetches of the same url
// share one read, and recently fetched bytes are served from memory.
func (l *HTTPLoader) Fetch(ctx context.Context, url string) ([]byte, error) {
	if l.bytes != nil {
		if b, ok := l.bytes.Get(url); ok {
			l.cacheHits.Add(1)
			return b, nil
		}
	}

	v, err, _ := l.group.Do(url, func() (any, error) {
		if err := l.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer l.sem.Release(1)

		ctx, cancel := context.WithTimeout(ctx, l.timeout)
		defer cancel()

		l.fetches.Add(1)
		b, err := l.read(ctx, url)
		if err != nil {
			return nil, err
		}
		if l.bytes != nil {
			l.bytes.Set(url, b)
		}
		return b, nil
	})
	if err != nil {
		l.failures.Add(1)
		return nil, err
	}
	return v.([]byte), nil
}

func (l *HTTPLoader) read(ctx context.Context, url string) ([]byte, error) {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := l.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: %s: %s", ErrStatus, url, resp.Status)
		}
		return io.ReadAll(resp.Body)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(strings.TrimPrefix(url, "file://"))
}

// Stats returns a snapshot of loader activity.
func (l *HTTPLoader) Stats() Stats {
	return Stats{
		Fetches:   l.fetches.Load(),
		CacheHits: l.cacheHits.Load(),
		Failures:  l.failures.Load(),
	}
}

// Close cancels outstanding loads and waits for their goroutines to finish.
// Cancelled loads still deliver an error to their callbacks if the
// scheduler keeps running.
func (l *HTTPLoader) Close() error {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	l.cancel()
	l.wg.Wait()
	return nil
}
