// Package logtail reads the tail of the application log for the activity
// pane.
//
// Read keeps a ring buffer of the last maxLines so memory stays bounded by
// the requested window, not the file size. ReadEntries decodes those lines
// as zap JSON records and drops anything else.
//
// A missing log file is not an error: Read returns nil, nil.
package logtail
