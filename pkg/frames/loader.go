package frames

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// ErrNoValidFrames is returned when every frame file failed to load.
var ErrNoValidFrames = errors.New("frames: no valid frames")

// Frame is one loaded frame image, still in its encoded (JPEG/PNG) form.
// Detectors and the classifier both consume encoded bytes, so frames are
// never decoded here.
type Frame struct {
	Path string
	Data []byte
}

// Load reads the given frame files from disk. Unreadable or empty files
// are skipped with a warning so one corrupt frame does not sink a whole
// video; if nothing survives, ErrNoValidFrames is returned.
func Load(paths []string, logger *slog.Logger) ([]Frame, error) {
	if logger == nil {
		logger = slog.Default()
	}

	loaded := make([]Frame, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("skipping unreadable frame", "path", path, "error", err)
			continue
		}
		if len(data) == 0 {
			logger.Warn("skipping empty frame file", "path", path)
			continue
		}
		loaded = append(loaded, Frame{Path: path, Data: data})
	}

	if len(loaded) == 0 {
		return nil, fmt.Errorf("%w: %d paths given", ErrNoValidFrames, len(paths))
	}

	return loaded, nil
}
