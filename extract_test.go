package blobmeta

import (
	"context"
	"errors"
	"io"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImageProber struct {
	width, height int
	err           error
	delay         time.Duration
	calls         atomic.Int32
}

func (f *fakeImageProber) ImageDimensions(context.Context, *Blob) (int, int, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.width, f.height, f.err
}

type fakeMediaProber struct {
	seconds float64
	err     error
	calls   atomic.Int32
}

func (f *fakeMediaProber) MediaDuration(context.Context, *Blob) (float64, error) {
	f.calls.Add(1)
	return f.seconds, f.err
}

type slowDigester struct {
	delay time.Duration
}

func (s slowDigester) Digest(ctx context.Context, r io.Reader) ([]byte, error) {
	time.Sleep(s.delay)
	return SHA256Digester{}.Digest(ctx, r)
}

type panickingImageProber struct{}

func (panickingImageProber) ImageDimensions(context.Context, *Blob) (int, int, error) {
	panic("corrupt header table")
}

func baseKeys() []string {
	return []string{KeyName, KeyType, KeySizeHuman, KeySizeBytes, KeyLastModified, KeyLastModifiedReadable}
}

func TestExtract_NilBlob(t *testing.T) {
	_, err := NewExtractor().Extract(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Extract(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExtract_PlainText(t *testing.T) {
	images := &fakeImageProber{width: 1, height: 1}
	media := &fakeMediaProber{seconds: 1}
	e := NewExtractor(WithImageProber(images), WithMediaProber(media))

	b := NewFromBytes([]byte("hello"), BlobHint{Name: "a.txt", Type: "text/plain"})
	r, err := e.Extract(context.Background(), b)
	require.NoError(t, err)

	assert.Equal(t, append(baseKeys(), KeyContentDigest), r.Keys())
	assert.Zero(t, images.calls.Load(), "image probe must not run for text")
	assert.Zero(t, media.calls.Load(), "media probe must not run for text")

	digest, _ := r.StringValue(KeyContentDigest)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", digest)
}

func TestExtract_Image(t *testing.T) {
	b := NewFromBytes(encodePNG(t, 32, 24), BlobHint{Name: "dot.png", Type: "image/png"})
	r, err := NewExtractor().Extract(context.Background(), b)
	require.NoError(t, err)

	assert.Equal(t, append(baseKeys(), KeyContentDigest, KeyWidth, KeyHeight), r.Keys())
	w, _ := r.IntValue(KeyWidth)
	h, _ := r.IntValue(KeyHeight)
	assert.Equal(t, int64(32), w)
	assert.Equal(t, int64(24), h)
}

func TestExtract_ImageTypeIsCaseInsensitive(t *testing.T) {
	b := NewFromBytes(encodePNG(t, 2, 2), BlobHint{Name: "dot.png", Type: "IMAGE/PNG"})
	r, err := NewExtractor(WithDigester(nil)).Extract(context.Background(), b)
	require.NoError(t, err)
	assert.True(t, r.Has(KeyWidth))
}

func TestExtract_CorruptImage(t *testing.T) {
	b := NewFromBytes(pngHeader, BlobHint{Name: "broken.png", Type: "image/png"})
	r, err := NewExtractor(WithDigester(nil)).Extract(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, baseKeys(), r.Keys())
}

func TestExtract_Media(t *testing.T) {
	tests := []struct {
		name         string
		typ          string
		prober       *fakeMediaProber
		wantDuration string
	}{
		{"audio", "audio/mpeg", &fakeMediaProber{seconds: 183.456}, "183.46"},
		{"video", "video/mp4", &fakeMediaProber{seconds: 12}, "12.00"},
		{"stored just below half", "audio/wav", &fakeMediaProber{seconds: 1.045}, "1.04"},
		{"unknown duration", "audio/ogg", &fakeMediaProber{seconds: math.NaN()}, ""},
		{"decode failure", "video/webm", &fakeMediaProber{err: errors.New("invalid data")}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExtractor(WithDigester(nil), WithMediaProber(tt.prober))
			r, err := e.Extract(context.Background(), NewFromBytes([]byte("media"), BlobHint{Name: "m", Type: tt.typ}))
			require.NoError(t, err)
			assert.Equal(t, int32(1), tt.prober.calls.Load())

			got, ok := r.StringValue(KeyDurationSeconds)
			if tt.wantDuration == "" {
				assert.False(t, ok, "durationSeconds must be absent")
				assert.Equal(t, baseKeys(), r.Keys())
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.wantDuration, got)
			assert.False(t, r.Has(KeyWidth))
		})
	}
}

func TestExtract_NoDigester(t *testing.T) {
	r, err := NewExtractor(WithDigester(nil)).Extract(context.Background(), NewFromBytes([]byte("x"), BlobHint{Name: "x"}))
	require.NoError(t, err)
	assert.False(t, r.Has(KeyContentDigest))
}

func TestExtract_Undeclared(t *testing.T) {
	r, err := NewExtractor(WithDigester(nil)).Extract(context.Background(), NewFromBytes(make([]byte, 10752), BlobHint{Name: "blob"}))
	require.NoError(t, err)

	typ, _ := r.StringValue(KeyType)
	assert.Equal(t, UndeclaredType, typ)
	human, _ := r.StringValue(KeySizeHuman)
	assert.Equal(t, "11 KB", human)
	v, ok := r.Get(KeyLastModified)
	require.True(t, ok)
	assert.Nil(t, v)
}

func TestExtract_ProbePanicIsContained(t *testing.T) {
	e := NewExtractor(WithImageProber(panickingImageProber{}))
	r, err := e.Extract(context.Background(), NewFromBytes([]byte("x"), BlobHint{Name: "x.png", Type: "image/png"}))
	require.NoError(t, err)
	assert.Equal(t, append(baseKeys(), KeyContentDigest), r.Keys())
}

func TestExtract_OrderIndependentOfCompletion(t *testing.T) {
	data := encodePNG(t, 4, 4)

	// Digest finishes last in the first run and first in the second.
	slowDigest := NewExtractor(WithDigester(slowDigester{delay: 30 * time.Millisecond}))
	slowImage := NewExtractor(WithImageProber(&fakeImageProber{width: 4, height: 4, delay: 30 * time.Millisecond}))

	want := append(baseKeys(), KeyContentDigest, KeyWidth, KeyHeight)
	for _, e := range []*Extractor{slowDigest, slowImage} {
		r, err := e.Extract(context.Background(), NewFromBytes(data, BlobHint{Name: "p.png", Type: "image/png"}))
		require.NoError(t, err)
		assert.Equal(t, want, r.Keys())
	}
}

func TestExtract_IndependentCalls(t *testing.T) {
	e := NewExtractor(WithMediaProber(&fakeMediaProber{seconds: 5}))

	first, err := e.Extract(context.Background(), NewFromBytes([]byte("a"), BlobHint{Name: "a.mp3", Type: "audio/mpeg"}))
	require.NoError(t, err)
	second, err := e.Extract(context.Background(), NewFromBytes([]byte("b"), BlobHint{Name: "b.txt", Type: "text/plain"}))
	require.NoError(t, err)

	assert.True(t, first.Has(KeyDurationSeconds))
	assert.False(t, second.Has(KeyDurationSeconds), "no state may leak between extractions")

	d1, _ := first.StringValue(KeyContentDigest)
	d2, _ := second.StringValue(KeyContentDigest)
	assert.NotEqual(t, d1, d2)
}

func TestExtract_SameContentSameDigest(t *testing.T) {
	e := NewExtractor(WithDigester(SHA256Digester{}))
	a, err := e.Extract(context.Background(), NewFromBytes([]byte("payload"), BlobHint{Name: "a.bin"}))
	require.NoError(t, err)
	b, err := e.Extract(context.Background(), NewFromBytes([]byte("payload"), BlobHint{Name: "b.png", Type: "text/csv"}))
	require.NoError(t, err)

	da, _ := a.StringValue(KeyContentDigest)
	db, _ := b.StringValue(KeyContentDigest)
	assert.Equal(t, da, db)
}

func TestExtract_ConcurrentUse(t *testing.T) {
	e := NewExtractor(WithMediaProber(&fakeMediaProber{seconds: 1}))
	data := encodePNG(t, 1, 1)
	done := make(chan *Record, 8)
	for range 8 {
		go func() {
			r, err := e.Extract(context.Background(), NewFromBytes(data, BlobHint{Name: "x.png", Type: "image/png"}))
			if err != nil {
				done <- nil
				return
			}
			done <- r
		}()
	}
	for range 8 {
		r := <-done
		require.NotNil(t, r)
		assert.True(t, r.Has(KeyWidth))
	}
}
