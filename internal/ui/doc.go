// Package ui implements the raidtrack terminal interface with Bubble Tea.
//
// The item list comes from the catalog snapshot and is filtered by a regex
// search. Local changes call straight into the progress engine, since
// those never touch the network. Change-and-sync and refresh run as
// commands so the event loop never waits on the tracker API. A one-second
// tick refreshes the status header and the activity pane, which tails the
// application's JSON log.
package ui
