package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"sync"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/semaphore"

	"github.com/eak1mov/go-tileview/tile"
	"github.com/eak1mov/go-tileview/viewport"
)

const (
	DefaultConcurrency = 8
	DefaultBufferSize  = 256
)

type options struct {
	logger      *slog.Logger
	client      *http.Client
	concurrency int64
	bufferSize  int
	timeout     time.Duration
}

type Option func(*options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithHTTPClient sets the client used by HTTP mirrors.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.client = client }
}

// WithConcurrency limits the number of fetches in flight.
func WithConcurrency(n int) Option {
	return func(o *options) { o.concurrency = int64(n) }
}

func WithBufferSize(n int) Option {
	return func(o *options) { o.bufferSize = n }
}

// WithTimeout bounds every single fetch. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// Loader implements viewport.Loader interface on top of tile readers, one per mirror.
type Loader struct {
	readers     map[string]tile.Reader
	sem         *semaphore.Weighted
	completions chan viewport.Completion
	logger      *slog.Logger
	timeout     time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewLoader opens every mirror in sources (see Open) and returns a loader
// serving tiles requested from any of them.
func NewLoader(sources []string, ext string, opts ...Option) (*Loader, error) {
	o := options{
		logger:      slog.New(slog.DiscardHandler),
		concurrency: DefaultConcurrency,
		bufferSize:  DefaultBufferSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.concurrency <= 0 {
		return nil, fmt.Errorf("%w: concurrency %d must be positive", viewport.ErrConfiguration, o.concurrency)
	}

	readers := make(map[string]tile.Reader, len(sources))
	for _, base := range sources {
		if _, ok := readers[base]; ok {
			continue
		}
		r, err := Open(base, ext, o.client)
		if err != nil {
			errs := []error{fmt.Errorf("open %v: %w", base, err)}
			for _, opened := range readers {
				errs = append(errs, closeReader(opened))
			}
			return nil, errors.Join(errs...)
		}
		readers[base] = r
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Loader{
		readers:     readers,
		sem:         semaphore.NewWeighted(o.concurrency),
		completions: make(chan viewport.Completion, max(o.bufferSize, 0)),
		logger:      o.logger,
		timeout:     o.timeout,
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

func (l *Loader) Completions() <-chan viewport.Completion {
	return l.completions
}

// Load starts fetching t from the mirror it was requested from. It never blocks.
func (l *Loader) Load(t *viewport.Tile) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		img, err := l.fetch(t)
		if err != nil {
			l.logger.Debug("tileview: tile fetch failed", "tile", t.ID.Key(), "url", t.URL, "error", err)
			err = fmt.Errorf("%w: %v: %w", viewport.ErrTileFetch, t.URL, err)
		}
		select {
		case l.completions <- viewport.Completion{Tile: t, Image: img, Err: err}:
		case <-l.ctx.Done():
		}
	}()
}

func (l *Loader) fetch(t *viewport.Tile) (image.Image, error) {
	r, ok := l.readers[t.Source]
	if !ok {
		return nil, fmt.Errorf("unknown mirror %q", t.Source)
	}
	if err := l.sem.Acquire(l.ctx, 1); err != nil {
		return nil, err
	}
	defer l.sem.Release(1)

	ctx := l.ctx
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	data, err := r.ReadTile(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}

// Close cancels fetches in flight, waits for them and closes the mirrors.
// Completions of cancelled fetches are not delivered.
func (l *Loader) Close() error {
	l.cancel()
	l.wg.Wait()
	var errs []error
	for _, r := range l.readers {
		errs = append(errs, closeReader(r))
	}
	return errors.Join(errs...)
}
