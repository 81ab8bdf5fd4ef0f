package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	var content strings.Builder
	var all []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		all = append(all, line)
	}
	require.NoError(t, os.WriteFile(logPath, []byte(content.String()), 0o644))

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{name: "zero", maxLines: 0, expected: nil},
		{name: "negative", maxLines: -1, expected: nil},
		{name: "partial", maxLines: 5, expected: all[5:]},
		{name: "exact", maxLines: 10, expected: all},
		{name: "more than exists", maxLines: 20, expected: all},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "absent.log"), 10)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestParse(t *testing.T) {
	entry, ok := Parse(`{"level":"warn","ts":"2026-03-01T12:00:05.123Z","msg":"objective push failed, requeued","objective_id":"obj-1","error":"status 429"}`)
	require.True(t, ok)
	assert.Equal(t, "WARN", entry.Level)
	assert.Equal(t, "objective push failed, requeued", entry.Message)
	assert.Equal(t, "obj-1", entry.ObjectiveID)
	assert.Equal(t, "status 429", entry.Error)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 5, 123_000_000, time.UTC), entry.Time.UTC())

	for _, line := range []string{"", "plain text", `{"level":"info"}`, `{"msg":`} {
		_, ok := Parse(line)
		assert.False(t, ok, "line %q", line)
	}
}

func TestReadEntries_SkipsNonJSON(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "raidtrack.log")
	content := strings.Join([]string{
		`{"level":"info","ts":"2026-03-01T12:00:00.000Z","msg":"sync coordinator started"}`,
		`panic: something odd`,
		`{"level":"info","ts":"2026-03-01T12:00:01.000Z","msg":"objective synced","objective_id":"obj-2"}`,
	}, "\n")
	require.NoError(t, os.WriteFile(logPath, []byte(content), 0o644))

	entries, err := ReadEntries(logPath, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "objective synced", entries[1].Message)
}

func TestEntryFormat(t *testing.T) {
	e := Entry{Level: "INFO", Message: "objective synced", ObjectiveID: "obj-2"}
	assert.Equal(t, "INFO  objective synced obj-2", e.Format())

	e = Entry{Level: "ERROR", Message: "save failed", Error: "disk full"}
	assert.Equal(t, "ERROR save failed: disk full", e.Format())
}
