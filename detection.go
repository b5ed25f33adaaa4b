package blobmeta

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Type families that select which probes run.
const (
	familyImage = "image/"
	familyAudio = "audio/"
	familyVideo = "video/"
)

// NormalizeType reduces a Content-Type style value to its lowercased media
// type, dropping parameters such as "; charset=utf-8". Returns an empty string
// for empty input.
func NormalizeType(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return ""
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		return mediaType
	}
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// TypeFromFilename looks up the declared type for a filename's extension the
// way a browser fills in File.type. Returns an empty string if no match is
// found.
func TypeFromFilename(name string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		return ""
	}
	return NormalizeType(mime.TypeByExtension(ext))
}

// DetectType sniffs the blob's leading bytes with magic-byte detection and
// returns the detected media type, or an empty string when nothing better
// than application/octet-stream is found. Extraction never calls this; it is
// for callers that want to fill in a missing declared type.
func DetectType(b *Blob) (string, error) {
	if b == nil {
		return "", newError(ErrInvalidInput, "DetectType", nil)
	}
	rc, err := b.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	mtype, err := mimetype.DetectReader(rc)
	if err != nil {
		return "", newError(ErrRead, "DetectType", err)
	}
	detected := NormalizeType(mtype.String())
	// mimetype falls back to octet-stream when it cannot tell.
	if detected == "application/octet-stream" {
		return "", nil
	}
	return detected, nil
}

func hasFamily(declaredType, family string) bool {
	return strings.HasPrefix(strings.ToLower(declaredType), family)
}

func isImageType(declaredType string) bool {
	return hasFamily(declaredType, familyImage)
}

func isMediaType(declaredType string) bool {
	return hasFamily(declaredType, familyAudio) || hasFamily(declaredType, familyVideo)
}
