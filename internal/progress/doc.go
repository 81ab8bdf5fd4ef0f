// Package progress tracks per-item progress toward task objectives and
// hideout requirements.
//
// Changes apply locally first and are queued for delivery to the remote
// tracker by a background flush loop. A periodic refresh replaces the
// remote snapshot and reapplies every pending change on top of it.
package progress
