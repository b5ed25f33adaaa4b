package blobmeta

import (
	"mime"
	"net/url"
	"path"
	"strings"
)

// ParseContentDisposition extracts the filename from a Content-Disposition
// header value. It accepts the RFC 6266 forms
//
//	attachment; filename="example.txt"
//	attachment; filename=example.txt
//	attachment; filename*=UTF-8''example%20file.txt
//
// and returns only the base name, so a header cannot smuggle a path into a
// blob name. Returns an empty string if no filename is found.
func ParseContentDisposition(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}

	// mime.ParseMediaType folds filename* into filename and decodes it.
	if _, params, err := mime.ParseMediaType(header); err == nil {
		return baseName(params["filename"])
	}
	return baseName(lenientDispositionFilename(header))
}

// lenientDispositionFilename handles headers that mime.ParseMediaType rejects,
// such as unquoted names containing spaces. filename* wins over filename.
func lenientDispositionFilename(header string) string {
	var plain, extended string
	for _, part := range strings.Split(header, ";") {
		key, val, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		val = strings.Trim(strings.TrimSpace(val), `"`)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "filename*":
			// charset'language'value
			if idx := strings.LastIndex(val, "'"); idx >= 0 {
				val = val[idx+1:]
			}
			if decoded, err := url.PathUnescape(val); err == nil {
				val = decoded
			}
			if val != "" {
				extended = val
			}
		case "filename":
			if val != "" {
				plain = val
			}
		}
	}
	if extended != "" {
		return extended
	}
	return plain
}

func baseName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, `\`, "/"))
	if name == "" {
		return ""
	}
	base := path.Base(name)
	if base == "." || base == "/" {
		return ""
	}
	return base
}
