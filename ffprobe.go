package blobmeta

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// FFProbe is the default MediaProber. It asks ffprobe for container-level
// format metadata only, so streams are not decoded. File-backed blobs are
// probed by path; in-memory blobs are streamed to ffprobe on stdin.
type FFProbe struct {
	// Binary is the ffprobe executable; "ffprobe" when empty.
	Binary string
}

// ffprobeOutput mirrors the subset of `ffprobe -show_format -of json` used here.
type ffprobeOutput struct {
	Format struct {
		Filename   string `json:"filename"`
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
	} `json:"format"`
}

// MediaDuration implements MediaProber.
func (p FFProbe) MediaDuration(ctx context.Context, b *Blob) (float64, error) {
	binary := strings.TrimSpace(p.Binary)
	if binary == "" {
		binary = "ffprobe"
	}
	if _, err := exec.LookPath(binary); err != nil {
		return 0, newError(ErrProbeUnavailable, "MediaDuration", err)
	}

	input := "pipe:0"
	if b.Path() != "" {
		input = b.Path()
	}
	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-of", "json", "-i", input)

	if input == "pipe:0" {
		rc, err := b.Open()
		if err != nil {
			return 0, err
		}
		defer rc.Close()
		cmd.Stdin = rc
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return 0, newError(ErrProbeDecode, "MediaDuration", fmt.Errorf("ffprobe: %w: %s", err, strings.TrimSpace(stderr.String())))
	}
	return ParseFFProbeDuration(out)
}

// ParseFFProbeDuration extracts the container duration from ffprobe JSON
// output. A missing or non-numeric duration (ffprobe prints "N/A" for live
// streams) yields NaN rather than an error.
func ParseFFProbeDuration(data []byte) (float64, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return 0, newError(ErrProbeDecode, "ParseFFProbeDuration", err)
	}
	return parseDuration(raw.Format.Duration), nil
}

func parseDuration(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return math.NaN()
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return math.NaN()
	}
	return parsed
}
