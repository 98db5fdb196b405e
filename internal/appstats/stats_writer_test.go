package appstats

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mediasfu/recordctl/internal/pubsub/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryFileWriter(t *testing.T) {
	tmpDir := t.TempDir()
	writer := NewSummaryFileWriter(tmpDir, 0600)

	summary := &events.RecordingSummary{
		RoomName:       "room-1",
		MediaOptions:   "video",
		ElapsedSeconds: 3661,
		ProgressTime:   "01:01:01",
		PauseCount:     2,
		StoppedAt:      time.Unix(1700000000, 0).UTC(),
	}

	t.Run("WriteSummary_Success", func(t *testing.T) {
		require.NoError(t, writer.WriteSummary(summary))

		path := filepath.Join(tmpDir, "room-1-1700000000-summary.json")
		assert.Equal(t, path, writer.Path(summary))

		content, err := os.ReadFile(path)
		require.NoError(t, err)

		var read events.RecordingSummary
		require.NoError(t, json.Unmarshal(content, &read))
		assert.Equal(t, summary.RoomName, read.RoomName)
		assert.Equal(t, summary.ElapsedSeconds, read.ElapsedSeconds)
		assert.Equal(t, summary.PauseCount, read.PauseCount)
		assert.True(t, summary.StoppedAt.Equal(read.StoppedAt))
	})

	t.Run("WriteSummary_RoomWithSeparator", func(t *testing.T) {
		s := *summary
		s.RoomName = "a/b"
		assert.Equal(t, filepath.Join(tmpDir, "a_b-1700000000-summary.json"), writer.Path(&s))
	})

	t.Run("WriteSummary_InvalidPath", func(t *testing.T) {
		w := NewSummaryFileWriter(filepath.Join(tmpDir, "nonexistent"), 0600)
		assert.Error(t, w.WriteSummary(summary))
	})
}
