package blobmeta

// BlobSource records where a Blob's content came from.
type BlobSource string

const (
	// SourceBytes indicates the blob wraps an in-memory byte slice.
	SourceBytes BlobSource = "Bytes"
	// SourceFile indicates the blob is backed by a local file read on demand.
	SourceFile BlobSource = "File"
	// SourceStream indicates the blob was drained from an io.Reader.
	SourceStream BlobSource = "Stream"
	// SourceURL indicates the blob was downloaded over HTTP(S).
	SourceURL BlobSource = "Url"
	// SourceS3 indicates the blob was downloaded from Amazon S3.
	SourceS3 BlobSource = "S3"
)

// String returns the string representation of a BlobSource.
func (s BlobSource) String() string {
	return string(s)
}

// Valid returns true if the BlobSource is one of the known sources.
func (s BlobSource) Valid() bool {
	switch s {
	case SourceBytes, SourceFile, SourceStream, SourceURL, SourceS3:
		return true
	default:
		return false
	}
}
