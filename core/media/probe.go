package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"FrameLoom/model"
)

// ProbeResult is what the decode/metadata capability reports for a raw
// file: the asset kind, its duration in ms (UnboundedDuration for images)
// and pixel dimensions when the file has a visual stream.
type ProbeResult struct {
	Type       model.MediaType
	DurationMs int64
	Width      int
	Height     int
}

// Prober resolves a raw file's metadata asynchronously. The timeline
// store's media import is built on this contract, not on any concrete
// implementation.
type Prober interface {
	Probe(ctx context.Context, path string) (*ProbeResult, error)
}

// imageFormats are ffprobe container names that identify still images.
var imageFormats = map[string]bool{
	"image2":    true,
	"png_pipe":  true,
	"jpeg_pipe": true,
	"mjpeg":     true,
	"gif":       true,
	"webp_pipe": true,
	"bmp_pipe":  true,
	"tiff_pipe": true,
}

// FFProbeProber implements Prober by shelling out to ffprobe.
type FFProbeProber struct {
	ffprobePath string
}

// NewFFProbeProber creates a prober using the given ffprobe binary.
func NewFFProbeProber(ffprobePath string) *FFProbeProber {
	return &FFProbeProber{ffprobePath: ffprobePath}
}

// Probe runs ffprobe over the file and maps its report to a ProbeResult.
func (p *FFProbeProber) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=format_name,duration",
		"-show_entries", "stream=codec_type,width,height",
		"-of", "json",
		path,
	}

	cmd := exec.CommandContext(ctx, p.ffprobePath, args...)
	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe execution failed for %s: %w\nFFprobe Error: %s", path, err, stderr.String())
	}

	var probeData struct {
		Format struct {
			FormatName string `json:"format_name"`
			Duration   string `json:"duration"`
		} `json:"format"`
		Streams []struct {
			CodecType string `json:"codec_type"`
			Width     int    `json:"width"`
			Height    int    `json:"height"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(out.Bytes(), &probeData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ffprobe output: %w", err)
	}

	result := &ProbeResult{}
	hasVideo, hasAudio := false, false
	for _, s := range probeData.Streams {
		switch s.CodecType {
		case "video":
			hasVideo = true
			if result.Width == 0 {
				result.Width = s.Width
				result.Height = s.Height
			}
		case "audio":
			hasAudio = true
		}
	}

	// Container names come comma-separated ("mov,mp4,m4a,...").
	isImage := false
	for _, name := range strings.Split(probeData.Format.FormatName, ",") {
		if imageFormats[name] {
			isImage = true
			break
		}
	}

	switch {
	case isImage:
		result.Type = model.MediaTypeImage
		result.DurationMs = model.UnboundedDuration
	case hasVideo:
		result.Type = model.MediaTypeVideo
	case hasAudio:
		result.Type = model.MediaTypeAudio
	default:
		return nil, fmt.Errorf("no decodable streams found in %s", path)
	}

	if result.Type != model.MediaTypeImage {
		seconds, err := strconv.ParseFloat(probeData.Format.Duration, 64)
		if err != nil {
			return nil, fmt.Errorf("ffprobe reported no duration for %s: %w", path, err)
		}
		result.DurationMs = int64(seconds * 1000)
	}
	return result, nil
}
