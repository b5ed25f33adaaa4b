package blobmeta

import "testing"

func TestParseContentDisposition(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"empty header", "", ""},
		{"quoted filename", `attachment; filename="example.txt"`, "example.txt"},
		{"unquoted filename", `attachment; filename=example.txt`, "example.txt"},
		{"inline disposition", `inline; filename="report.pdf"`, "report.pdf"},
		{"no filename parameter", `attachment`, ""},
		{"extended UTF-8 filename", `attachment; filename*=UTF-8''example%20file.txt`, "example file.txt"},
		{"extended wins over plain", `attachment; filename="fallback.txt"; filename*=UTF-8''preferred%20name.txt`, "preferred name.txt"},
		{"mixed case parameter", `attachment; Filename="CaseTest.doc"`, "CaseTest.doc"},
		{"directory components stripped", `attachment; filename="../../etc/passwd"`, "passwd"},
		{"windows path stripped", `attachment; filename="C:\\temp\\photo.png"`, "photo.png"},
		{"unquoted name with spaces falls back to lenient parse", `attachment; filename=my song.mp3`, "my song.mp3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseContentDisposition(tt.header)
			if got != tt.want {
				t.Errorf("ParseContentDisposition(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}
