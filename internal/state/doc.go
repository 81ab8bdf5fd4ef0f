// Package state persists the local progress documents that must survive a
// restart.
//
// # Overview
//
// Two TOML documents live in the data directory:
//
//   - pending-tasks.toml: task objective changes applied locally but not yet
//     confirmed by the remote tracker
//   - hideout.toml: local counts toward hideout item requirements (the
//     remote tracker has no hideout progress, so this is the full state)
//
// Both carry task, station and item names purely for human inspection.
// Loading ignores them, and required_count is only a fallback for
// objectives the current catalog no longer lists.
//
// # Document Layout
//
//	[[objectives]]
//	objective_id = "5a27b7...-obj"
//	item_id = "57347ca924597744596b4e71"
//	required_count = 5
//	current_count = 4
//	task_name = "Farming - Part 4"
//	item_name = "Graphics card"
//
//	[[requirements]]
//	requirement_id = "5d484fcd654e7668ec2ec322"
//	count = 3
//	station_name = "Bitcoin farm"
//	station_level = 1
//
// # Error Handling
//
// A missing file is empty state and not an error. A malformed file, or one
// with unknown keys, is rejected as a whole with a "parse <file>" error; the
// caller logs it and starts empty rather than trusting partial data.
//
// Writes go through a temp file in the same directory followed by a rename,
// so readers never observe a truncated document.
package state
