package blobmeta

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"

	// Decoders registered for image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Digester computes a content digest over everything readable from r.
type Digester interface {
	Digest(ctx context.Context, r io.Reader) ([]byte, error)
}

// ImageProber reads the intrinsic pixel dimensions of an image blob.
type ImageProber interface {
	ImageDimensions(ctx context.Context, b *Blob) (width, height int, err error)
}

// MediaProber reads the duration in seconds of an audio or video blob. The
// returned value may be NaN or infinite when the container does not know it.
type MediaProber interface {
	MediaDuration(ctx context.Context, b *Blob) (float64, error)
}

// SHA256Digester is the default Digester.
type SHA256Digester struct{}

// Digest implements Digester.
func (SHA256Digester) Digest(ctx context.Context, r io.Reader) ([]byte, error) {
	h := sha256.New()
	if _, err := io.Copy(h, contextReader{ctx: ctx, r: r}); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

// contextReader stops a long copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// ImageDecoder is the default ImageProber. It reads only as much of the blob
// as the format's header needs. Supported formats are PNG, JPEG, GIF, BMP,
// TIFF and WebP.
type ImageDecoder struct{}

// ImageDimensions implements ImageProber.
func (ImageDecoder) ImageDimensions(_ context.Context, b *Blob) (int, int, error) {
	rc, err := b.Open()
	if err != nil {
		return 0, 0, err
	}
	defer rc.Close()

	cfg, _, err := image.DecodeConfig(rc)
	if err != nil {
		return 0, 0, newError(ErrProbeDecode, "ImageDimensions", err)
	}
	if cfg.Width < 0 || cfg.Height < 0 {
		return 0, 0, newError(ErrProbeDecode, "ImageDimensions", fmt.Errorf("negative dimensions %dx%d", cfg.Width, cfg.Height))
	}
	return cfg.Width, cfg.Height, nil
}

type dimensions struct {
	width, height int
}

// probeFunc is one probe adapter: it either yields a value or an error that
// the orchestrator absorbs.
type probeFunc[T any] func(ctx context.Context, b *Blob) (T, error)

// optional is the terminal state of a probe.
type optional[T any] struct {
	value T
	ok    bool
}

// runProbe executes fn and folds any failure, including a panic inside a
// capability, into an empty result.
func runProbe[T any](ctx context.Context, log *slog.Logger, name string, b *Blob, fn probeFunc[T]) (out optional[T]) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("probe panicked", "probe", name, "panic", fmt.Sprint(r))
			out = optional[T]{}
		}
	}()

	value, err := fn(ctx, b)
	if err != nil {
		log.Debug("probe produced no result", "probe", name, "error", err)
		return optional[T]{}
	}
	log.Debug("probe succeeded", "probe", name)
	return optional[T]{value: value, ok: true}
}

func digestProbe(d Digester) probeFunc[string] {
	return func(ctx context.Context, b *Blob) (string, error) {
		if d == nil {
			return "", newError(ErrProbeUnavailable, "digest", nil)
		}
		rc, err := b.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()

		sum, err := d.Digest(ctx, rc)
		if err != nil {
			return "", newError(ErrProbeDecode, "digest", err)
		}
		return hex.EncodeToString(sum), nil
	}
}

func imageProbe(p ImageProber) probeFunc[dimensions] {
	return func(ctx context.Context, b *Blob) (dimensions, error) {
		if p == nil {
			return dimensions{}, newError(ErrProbeUnavailable, "image", nil)
		}
		w, h, err := p.ImageDimensions(ctx, b)
		if err != nil {
			return dimensions{}, err
		}
		return dimensions{width: w, height: h}, nil
	}
}

func durationProbe(p MediaProber) probeFunc[string] {
	return func(ctx context.Context, b *Blob) (string, error) {
		if p == nil {
			return "", newError(ErrProbeUnavailable, "media", nil)
		}
		seconds, err := p.MediaDuration(ctx, b)
		if err != nil {
			return "", err
		}
		if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
			return "", newError(ErrDurationUnknown, "media", nil)
		}
		return formatFixed(seconds, 2), nil
	}
}
