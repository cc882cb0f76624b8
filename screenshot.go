package windowserver

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/fogleman/gg"
)

// Screenshot queues a labeled screenshot of the framebuffer, taken at the
// end of the next tick. The PNG is written to the configured screenshot
// directory with a frame-numbered filename.
func (s *Server) Screenshot(label string) {
	s.screenshotQueue = append(s.screenshotQueue, label)
	s.RequestFrame()
}

// flushScreenshots writes every queued screenshot. Called at the end of Tick.
func (s *Server) flushScreenshots() {
	if len(s.screenshotQueue) == 0 {
		return
	}
	defer func() { s.screenshotQueue = s.screenshotQueue[:0] }()

	dir := s.cfg.ScreenshotDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.log.Error("screenshot: create directory", "dir", dir, "err", err)
		return
	}
	for _, label := range s.screenshotQueue {
		path := filepath.Join(dir, fmt.Sprintf("%06d_%s.png", s.frames, sanitizeLabel(label)))
		if err := SavePNG(path, s.framebuffer); err != nil {
			s.log.Error("screenshot", "err", err)
			continue
		}
		s.log.Info("screenshot written", "path", path)
	}
}

// SavePNG encodes img as a PNG file at path.
func SavePNG(path string, img image.Image) error {
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// sanitizeLabel keeps letters, digits, '-' and '.' and turns everything
// else into '_'. An empty label becomes "unlabeled".
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	return strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '.') {
			return r
		}
		return '_'
	}, label)
}
