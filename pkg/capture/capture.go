// Package capture grabs single still frames from camera streams by invoking
// an external ffmpeg binary. The grab is bounded by the caller's context; a
// hung stream is treated like any other capture failure.
package capture

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

const DefaultFFmpegPath = "/opt/ffmpeg/ffmpeg"

type FFmpeg struct {
	Path string
}

func New(path string) *FFmpeg {
	if path == "" {
		path = DefaultFFmpegPath
	}
	return &FFmpeg{Path: path}
}

func (f *FFmpeg) Capture(ctx context.Context, streamURL string) ([]byte, error) {
	outPath := filepath.Join(os.TempDir(), fmt.Sprintf("snapshot_%d.jpg", time.Now().UnixNano()))
	defer os.Remove(outPath)

	args := []string{
		"-loglevel", "error",
		"-analyzeduration", "50M",
		"-probesize", "50M",
		"-rtsp_transport", "tcp",
		"-i", streamURL,
		"-vframes", "1",
		"-q:v", "2",
		"-f", "image2",
		"-y", outPath,
	}

	cmd := exec.CommandContext(ctx, f.Path, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("ffmpeg capture timed out for %s: %w", streamURL, ctxErr)
		}
		return nil, fmt.Errorf("ffmpeg capture failed for %s: %w (%s)", streamURL, err, output)
	}

	frame, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return frame, nil
}
