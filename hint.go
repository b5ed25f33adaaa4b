package blobmeta

import "time"

// BlobHint carries caller-supplied attributes that take precedence over
// whatever a source constructor can work out on its own. Zero-value fields
// are ignored.
type BlobHint struct {
	// Name overrides the blob name (e.g., "report.pdf").
	Name string
	// Type overrides the declared MIME type (e.g., "image/png").
	Type string
	// LastModified overrides the modification time.
	LastModified time.Time
}

func (h BlobHint) hasName() bool { return h.Name != "" }

func (h BlobHint) hasType() bool { return h.Type != "" }

func (h BlobHint) hasLastModified() bool { return !h.LastModified.IsZero() }

// firstHint returns the first hint, or a zero hint when none were passed.
func firstHint(hints []BlobHint) BlobHint {
	if len(hints) > 0 {
		return hints[0]
	}
	return BlobHint{}
}

// applyHint copies non-zero hint fields onto the blob.
func applyHint(b *Blob, hint BlobHint) {
	if hint.hasName() {
		b.name = hint.Name
	}
	if hint.hasType() {
		b.declaredType = hint.Type
	}
	if hint.hasLastModified() {
		b.lastModified = hint.LastModified
	}
}
