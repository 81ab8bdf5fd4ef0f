// Package app is the composition root for raidtrack.
//
// Run loads the config, opens the JSON log under data_dir, and builds the
// catalog source, state store, tracker client and progress engine. It then
// starts the catalog watcher and the sync coordinator and blocks in the
// TUI. When the UI exits, the coordinator is stopped, which performs the
// final save.
//
// FlushOnce runs a single flush cycle without the UI.
//
// Tracker sync is enabled only when use_tracker_api is set and a real API
// key is configured. Without it the engine still tracks hideout progress
// locally and never touches the network.
package app
