package blobmeta

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Extractor runs the metadata probes over blobs. It holds only its
// capabilities, never per-blob state, and is safe for concurrent use.
type Extractor struct {
	digester Digester
	images   ImageProber
	media    MediaProber
	logger   *slog.Logger
}

// Option configures an Extractor.
type Option func(e *Extractor)

// WithDigester sets the digest capability. Passing nil disables the digest
// probe, as on a host without a hashing facility.
func WithDigester(d Digester) Option {
	return func(e *Extractor) {
		e.digester = d
	}
}

// WithImageProber sets the image-dimension capability. Passing nil disables
// the image probe.
func WithImageProber(p ImageProber) Option {
	return func(e *Extractor) {
		e.images = p
	}
}

// WithMediaProber sets the media-duration capability. Passing nil disables
// the duration probe.
func WithMediaProber(p MediaProber) Option {
	return func(e *Extractor) {
		e.media = p
	}
}

// WithLogger sets the logger probe outcomes are reported to. By default
// nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExtractor returns an Extractor using SHA-256, the built-in image
// decoders and ffprobe, adjusted by opts.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		digester: SHA256Digester{},
		images:   ImageDecoder{},
		media:    FFProbe{},
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultExtractor = NewExtractor()

// Extract runs the default Extractor over b.
func Extract(ctx context.Context, b *Blob) (*Record, error) {
	return defaultExtractor.Extract(ctx, b)
}

// Extract builds the metadata record for b. Base attributes are always
// present; the digest, image and duration probes that apply to b's declared
// type run concurrently and contribute their fields only if they succeed.
// The only error is ErrInvalidInput for a nil blob.
//
// Extract waits for every probe it started. ctx is passed to the
// capabilities; bounding the total time is up to the caller.
func (e *Extractor) Extract(ctx context.Context, b *Blob) (*Record, error) {
	if b == nil {
		return nil, newError(ErrInvalidInput, "Extract", nil)
	}

	log := e.logger.With("extraction", uuid.NewString(), "blob", b.Name())
	base := NewBaseAttributes(b)

	var (
		wg       sync.WaitGroup
		digest   optional[string]
		dims     optional[dimensions]
		duration optional[string]
	)

	if e.digester != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			digest = runProbe(ctx, log, "digest", b, digestProbe(e.digester))
		}()
	} else {
		log.Debug("probe skipped", "probe", "digest", "error", ErrProbeUnavailable)
	}

	if isImageType(b.Type()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dims = runProbe(ctx, log, "image", b, imageProbe(e.images))
		}()
	}

	if isMediaType(b.Type()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			duration = runProbe(ctx, log, "media", b, durationProbe(e.media))
		}()
	}

	wg.Wait()

	var extra ExtraAttributes
	if digest.ok {
		extra.ContentDigest = &digest.value
	}
	if dims.ok {
		extra.Width = &dims.value.width
		extra.Height = &dims.value.height
	}
	if duration.ok {
		extra.DurationSeconds = &duration.value
	}

	record := newRecord(base, extra)
	log.Debug("extraction complete", "type", base.Type, "fields", record.Len())
	return record, nil
}
