package appstats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mediasfu/recordctl/internal/pubsub/events"
	log "github.com/sirupsen/logrus"
)

// SummaryFileWriter writes one JSON summary per stopped recording.
type SummaryFileWriter struct {
	basePath string
	fileMode os.FileMode
}

func NewSummaryFileWriter(basePath string, fileMode os.FileMode) *SummaryFileWriter {
	return &SummaryFileWriter{
		basePath: basePath,
		fileMode: fileMode,
	}
}

func (w *SummaryFileWriter) Path(s *events.RecordingSummary) string {
	room := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, s.RoomName)
	if room == "" {
		room = "room"
	}
	return filepath.Join(w.basePath, fmt.Sprintf("%s-%d-summary.json", room, s.StoppedAt.Unix()))
}

func (w *SummaryFileWriter) WriteSummary(s *events.RecordingSummary) error {
	path := w.Path(s)

	jsonData, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("JSON marshalling failed: %w", err)
	}

	if err := os.WriteFile(path, jsonData, w.fileMode); err != nil {
		return fmt.Errorf("failed to write summary file: %w", err)
	}

	log.WithField("path", path).
		WithField("summary", string(jsonData)).
		Tracef("Wrote recording summary to file")

	return nil
}
