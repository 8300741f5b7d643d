package debug

import (
	"fmt"
	"hash/crc32"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/valerio/go-cboy/cboy/video"
)

// SaveFramePNGToDir saves a frame as PNG with a timestamp in a specific
// directory, the current one when directory is empty. It returns the path of
// the written file.
func SaveFramePNGToDir(frame *video.Frame, baseName, directory string) (string, error) {
	if frame == nil {
		return "", fmt.Errorf("no frame data available")
	}

	outputDir := directory
	if outputDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		outputDir = cwd
	}

	timestamp := time.Now().Format("20060102_150405.000")
	filePath := filepath.Join(outputDir, fmt.Sprintf("%s_%s.png", baseName, timestamp))

	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", filePath, err)
	}
	defer file.Close()

	if err := png.Encode(file, frame.Image()); err != nil {
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}

	slog.Info("Snapshot saved", "path", filePath, "size", fmt.Sprintf("%dx%d", video.FramebufferWidth, video.FramebufferHeight), "format", "PNG")
	return filePath, nil
}

// FrameCRC hashes the decoded RGBA pixels of a frame, so DMG and color frames
// that look the same hash the same.
func FrameCRC(frame *video.Frame) uint32 {
	return crc32.ChecksumIEEE(frame.Image().Pix)
}
