// Package export writes console frames, recordings and screenshots to disk
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/rxbook/rxbook-go/internal/session"
)

// Version is written into JSON exports
const Version = "1.0"

// Clock supplies timestamps for filenames and export headers
var Clock = time.Now

// GenerateFilename generates a filename with timestamp
func GenerateFilename(prefix, extension, directory string) string {
	timestamp := Clock().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.%s", prefix, timestamp, extension)
	if directory != "" {
		return filepath.Join(directory, filename)
	}
	return filename
}

// createFile creates filename, making its directory on the first failure
func createFile(filename string) (*os.File, error) {
	file, err := os.Create(filename)
	if err == nil {
		return file, nil
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	file, err = os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return file, nil
}

// Describe returns "name (size)" for a written file, for status messages
func Describe(filename string) string {
	info, err := os.Stat(filename)
	if err != nil {
		return filepath.Base(filename)
	}
	return fmt.Sprintf("%s (%s)", filepath.Base(filename), humanize.Bytes(uint64(info.Size())))
}

// prefix builds a filename prefix naming the receiver of a frame
func prefix(kind string, ev session.FrameEvent) string {
	if !ev.Snapshot.Active {
		return "rxbook_" + kind
	}
	return fmt.Sprintf("rxbook_%s_rx%d", kind, ev.Snapshot.Receiver.ID)
}
