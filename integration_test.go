package blobmeta

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// TestIntegration_URLToJSONRoundTrip downloads an image from an httptest
// server, extracts its metadata, serializes it to JSON and reads it back.
func TestIntegration_URLToJSONRoundTrip(t *testing.T) {
	content := encodePNG(t, 12, 34)
	lastMod := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png; charset=binary")
		w.Header().Set("Content-Disposition", `attachment; filename="chart.png"`)
		w.Header().Set("Last-Modified", lastMod.Format(http.TimeFormat))
		w.Write(content)
	}))
	defer srv.Close()

	cleanup := setMockHTTP(srv.Client())
	defer cleanup()

	// Step 1: Download from URL.
	b, err := NewFromURL(srv.URL + "/download?id=7")
	if err != nil {
		t.Fatalf("NewFromURL error: %v", err)
	}

	// Step 2: Extract.
	record, err := Extract(context.Background(), b)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}

	// Step 3: Serialize and parse back.
	text, err := ToJSON(record)
	if err != nil {
		t.Fatalf("ToJSON error: %v", err)
	}
	parsed, err := ParseJSON(text)
	if err != nil {
		t.Fatalf("ParseJSON error: %v", err)
	}

	// Step 4: Verify.
	checks := map[string]any{
		KeyName:         "chart.png",
		KeyType:         "image/png",
		KeySizeBytes:    int64(len(content)),
		KeyLastModified: lastMod.UnixMilli(),
		KeyWidth:        int64(12),
		KeyHeight:       int64(34),
	}
	for key, want := range checks {
		got, ok := parsed.Get(key)
		if !ok {
			t.Errorf("%s missing from parsed record", key)
			continue
		}
		if got != want {
			t.Errorf("%s = %v (%T), want %v (%T)", key, got, got, want, want)
		}
	}
	if parsed.Has(KeyDurationSeconds) {
		t.Error("image record must not carry durationSeconds")
	}

	again, err := ToJSON(parsed)
	if err != nil {
		t.Fatalf("ToJSON(parsed) error: %v", err)
	}
	if again != text {
		t.Errorf("round trip changed the document:\n%s\nvs\n%s", text, again)
	}
}

// TestIntegration_FileToCSV extracts a file on disk and checks the CSV
// rendering line by line.
func TestIntegration_FileToCSV(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, `notes "draft".txt`)
	if err := os.WriteFile(p, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	mod := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)
	if err := os.Chtimes(p, mod, mod); err != nil {
		t.Fatal(err)
	}

	b, err := NewFromFile(p, BlobHint{Type: "text/plain"})
	if err != nil {
		t.Fatalf("NewFromFile error: %v", err)
	}
	record, err := NewExtractor().Extract(context.Background(), b)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	text, err := ToCSV(record)
	if err != nil {
		t.Fatalf("ToCSV error: %v", err)
	}

	want := []string{
		"key,value",
		`"name","notes ""draft"".txt"`,
		`"type","text/plain"`,
		`"sizeHuman","5 B"`,
		`"sizeBytes","5"`,
		`"lastModified","1700000000000"`,
		`"lastModifiedReadable","` + FormatTimestamp(1700000000000) + `"`,
		`"contentDigest","2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"`,
	}
	if text != strings.Join(want, "\n") {
		t.Errorf("CSV mismatch:\ngot:\n%s\nwant:\n%s", text, strings.Join(want, "\n"))
	}
}

// TestIntegration_S3ToRecord extracts an S3 object through the mock client.
// The media probe is faked so no ffprobe binary is needed.
func TestIntegration_S3ToRecord(t *testing.T) {
	mock := &mockS3Client{
		getObjectFn: func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
			ct := "audio/mpeg"
			return &s3.GetObjectOutput{
				Body:        io.NopCloser(strings.NewReader("ID3")),
				ContentType: &ct,
			}, nil
		},
	}
	cleanup := setMockS3(mock)
	defer cleanup()

	bucket, key, ok := ParseS3URI("s3://media/podcasts/ep1.mp3")
	if !ok {
		t.Fatal("ParseS3URI rejected a valid URI")
	}
	b, err := NewFromS3(bucket, key)
	if err != nil {
		t.Fatalf("NewFromS3 error: %v", err)
	}

	e := NewExtractor(WithDigester(nil), WithMediaProber(&fakeMediaProber{seconds: 2701.5}))
	record, err := e.Extract(context.Background(), b)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}

	if name, _ := record.StringValue(KeyName); name != "ep1.mp3" {
		t.Errorf("name = %q, want ep1.mp3", name)
	}
	if v, _ := record.Get(KeyLastModified); v != nil {
		t.Errorf("lastModified = %v, want nil", v)
	}
	if d, _ := record.StringValue(KeyDurationSeconds); d != "2701.50" {
		t.Errorf("durationSeconds = %q, want 2701.50", d)
	}
}

// TestIntegration_SniffedType fills an empty declared type by sniffing before
// extraction.
func TestIntegration_SniffedType(t *testing.T) {
	b, err := NewFromStream(strings.NewReader(string(encodePNG(t, 5, 6))))
	if err != nil {
		t.Fatalf("NewFromStream error: %v", err)
	}
	if b.Type() != "" {
		t.Fatalf("stream without hint should be undeclared, got %q", b.Type())
	}

	sniffed, err := DetectType(b)
	if err != nil {
		t.Fatalf("DetectType error: %v", err)
	}
	record, err := Extract(context.Background(), b.WithType(sniffed))
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if w, _ := record.IntValue(KeyWidth); w != 5 {
		t.Errorf("width = %d, want 5", w)
	}
}
