package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const iso8601 = "2006-01-02T15:04:05.000Z0700"

// Entry is one decoded line of the JSON application log.
type Entry struct {
	Time        time.Time
	Level       string
	Message     string
	ObjectiveID string
	ItemID      string
	Error       string
}

type rawEntry struct {
	TS          string `json:"ts"`
	Level       string `json:"level"`
	Msg         string `json:"msg"`
	ObjectiveID string `json:"objective_id"`
	ItemID      string `json:"item_id"`
	Error       string `json:"error"`
}

// Read returns at most maxLines from the end of the file at path.
func Read(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count, idx := 0, 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := range count {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// ReadEntries decodes the last maxLines of the log, skipping lines that
// are not JSON log records.
func ReadEntries(path string, maxLines int) ([]Entry, error) {
	lines, err := Read(path, maxLines)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if entry, ok := Parse(line); ok {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// Parse decodes a single log line.
func Parse(line string) (Entry, bool) {
	line = strings.TrimSpace(line)
	if line == "" || line[0] != '{' {
		return Entry{}, false
	}
	var raw rawEntry
	if err := json.Unmarshal([]byte(line), &raw); err != nil || raw.Msg == "" {
		return Entry{}, false
	}
	entry := Entry{
		Level:       strings.ToUpper(raw.Level),
		Message:     raw.Msg,
		ObjectiveID: raw.ObjectiveID,
		ItemID:      raw.ItemID,
		Error:       raw.Error,
	}
	if ts, err := time.Parse(iso8601, raw.TS); err == nil {
		entry.Time = ts
	} else if ts, err := time.Parse(time.RFC3339Nano, raw.TS); err == nil {
		entry.Time = ts
	}
	return entry, true
}

// Format renders an entry as a single activity line.
func (e Entry) Format() string {
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("15:04:05"))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%-5s %s", e.Level, e.Message)
	if e.ObjectiveID != "" {
		b.WriteString(" " + e.ObjectiveID)
	}
	if e.Error != "" {
		b.WriteString(": " + e.Error)
	}
	return b.String()
}
