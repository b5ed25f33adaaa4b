// Package blobmeta extracts descriptive metadata from a blob: identity
// attributes, a content digest, and format-specific properties such as image
// dimensions and media duration. Blobs can be built from bytes, local files,
// streams, URLs and S3 objects; extraction results serialize to JSON and CSV.
package blobmeta

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3ClientFactory creates the S3 client used by NewFromS3. It can be replaced
// in tests to inject a mock client.
var S3ClientFactory = defaultS3ClientFactory

// S3API defines the subset of S3 client methods used by this package.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// HTTPClient performs the requests made by NewFromURL. It can be replaced in
// tests with an httptest server-backed client.
var HTTPClient httpDoer = http.DefaultClient

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

func defaultS3ClientFactory(ctx context.Context) (S3API, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// Blob is the read-only subject of an extraction: a name, a declared type, a
// size, a modification time and a way to reach the content. A Blob is never
// modified after construction; WithType returns a copy.
type Blob struct {
	source       BlobSource
	name         string
	declaredType string
	size         int64
	lastModified time.Time
	data         []byte // in-memory content; nil for file-backed blobs
	path         string // set for file-backed blobs
}

// --- Constructors ---

// NewFromBytes wraps data in a Blob without copying it. The caller must not
// modify data while the blob is in use. Without a hint the declared type is
// derived from the hinted name's extension, if any.
func NewFromBytes(data []byte, hints ...BlobHint) *Blob {
	hint := firstHint(hints)
	b := &Blob{
		source: SourceBytes,
		data:   data,
		size:   int64(len(data)),
	}
	applyHint(b, hint)
	b.fillTypeFromName()
	return b
}

// NewFromStream drains r into memory and returns a Blob over the result.
func NewFromStream(r io.Reader, hints ...BlobHint) (*Blob, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, newError(ErrRead, "NewFromStream", err)
	}
	b := NewFromBytes(data, hints...)
	b.source = SourceStream
	return b, nil
}

// NewFromFile creates a Blob for a local file. Only the file's attributes are
// read here; content is read from disk each time the blob is opened.
func NewFromFile(filePath string, hints ...BlobHint) (*Blob, error) {
	hint := firstHint(hints)

	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, newError(ErrNotFound, "NewFromFile", err)
		}
		return nil, newError(ErrRead, "NewFromFile", err)
	}
	if info.IsDir() {
		return nil, newError(ErrRead, "NewFromFile", fmt.Errorf("%s is a directory", filePath))
	}

	b := &Blob{
		source:       SourceFile,
		path:         filePath,
		name:         filepath.Base(filePath),
		size:         info.Size(),
		lastModified: info.ModTime(),
	}
	applyHint(b, hint)
	b.fillTypeFromName()
	return b, nil
}

// NewFromURL downloads a blob from the given URL.
func NewFromURL(rawURL string, hints ...BlobHint) (*Blob, error) {
	return NewFromURLWithContext(context.Background(), rawURL, hints...)
}

// NewFromURLWithContext downloads a blob from the given URL using ctx.
// Name, type and modification time come from the response headers unless
// hinted.
func NewFromURLWithContext(ctx context.Context, rawURL string, hints ...BlobHint) (*Blob, error) {
	hint := firstHint(hints)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, newError(ErrHTTP, "NewFromURL", err)
	}
	resp, err := HTTPClient.Do(req)
	if err != nil {
		return nil, newError(ErrHTTP, "NewFromURL", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newError(ErrHTTP, "NewFromURL", fmt.Errorf("status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(ErrRead, "NewFromURL", err)
	}

	b := &Blob{
		source: SourceURL,
		data:   data,
		size:   int64(len(data)),
	}
	if name := ParseContentDisposition(resp.Header.Get("Content-Disposition")); name != "" {
		b.name = name
	} else {
		b.name = filenameFromURL(rawURL)
	}
	b.declaredType = NormalizeType(resp.Header.Get("Content-Type"))
	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if t, err := http.ParseTime(lm); err == nil {
			b.lastModified = t
		}
	}

	applyHint(b, hint)
	b.fillTypeFromName()
	return b, nil
}

// NewFromS3 downloads a blob from S3.
func NewFromS3(bucket, key string, hints ...BlobHint) (*Blob, error) {
	return NewFromS3WithContext(context.Background(), bucket, key, hints...)
}

// NewFromS3WithContext downloads a blob from S3 using ctx. Name, type and
// modification time come from the object's metadata unless hinted.
func NewFromS3WithContext(ctx context.Context, bucket, key string, hints ...BlobHint) (*Blob, error) {
	hint := firstHint(hints)

	client, err := S3ClientFactory(ctx)
	if err != nil {
		return nil, newError(ErrS3, "NewFromS3", err)
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, newError(ErrS3, "NewFromS3", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, newError(ErrRead, "NewFromS3", err)
	}

	b := &Blob{
		source: SourceS3,
		name:   path.Base(key),
		data:   data,
		size:   int64(len(data)),
	}
	if cd := aws.ToString(out.ContentDisposition); cd != "" {
		if name := ParseContentDisposition(cd); name != "" {
			b.name = name
		}
	}
	b.declaredType = NormalizeType(aws.ToString(out.ContentType))
	if out.LastModified != nil {
		b.lastModified = *out.LastModified
	}

	applyHint(b, hint)
	b.fillTypeFromName()
	return b, nil
}

// --- Accessors ---

// Source returns where the blob's content came from.
func (b *Blob) Source() BlobSource { return b.source }

// Name returns the blob name (may be empty).
func (b *Blob) Name() string { return b.name }

// Type returns the declared MIME type (may be empty).
func (b *Blob) Type() string { return b.declaredType }

// Size returns the content size in bytes.
func (b *Blob) Size() int64 { return b.size }

// LastModified returns the modification time (zero when unknown).
func (b *Blob) LastModified() time.Time { return b.lastModified }

// Path returns the local filesystem path for file-backed blobs, or "".
func (b *Blob) Path() string { return b.path }

// WithType returns a copy of the blob with the declared type replaced.
// Content is shared, not copied.
func (b *Blob) WithType(declaredType string) *Blob {
	cp := *b
	cp.declaredType = declaredType
	return &cp
}

// Open returns a reader over the blob's content. Every call starts from the
// beginning; the caller must close the reader.
func (b *Blob) Open() (io.ReadCloser, error) {
	if b.source == SourceFile {
		f, err := os.Open(b.path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, newError(ErrNotFound, "Open", err)
			}
			return nil, newError(ErrRead, "Open", err)
		}
		return f, nil
	}
	return io.NopCloser(bytes.NewReader(b.data)), nil
}

// String returns a human-readable representation of the blob.
func (b *Blob) String() string {
	return fmt.Sprintf("Blob{source=%s, name=%q, type=%q, size=%d}",
		b.source, b.name, b.declaredType, b.size)
}

// --- Internal helpers ---

func (b *Blob) fillTypeFromName() {
	if b.declaredType == "" && b.name != "" {
		b.declaredType = TypeFromFilename(b.name)
	}
}

// filenameFromURL extracts the filename from a URL path, returning empty if
// it cannot be determined.
func filenameFromURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	base := path.Base(u.Path)
	if base == "" || base == "/" || base == "." {
		return ""
	}
	return base
}

// ParseS3URI extracts bucket and key from an s3://bucket/key URI.
func ParseS3URI(uri string) (bucket, key string, ok bool) {
	if !strings.HasPrefix(uri, "s3://") {
		return "", "", false
	}
	rest := strings.TrimPrefix(uri, "s3://")
	bucket, key, found := strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}
