// Package tracker provides an HTTP client for the remote progress tracker API.
//
// # Overview
//
// The remote tracker stores per-user task and task-objective completion
// state. It is reached over HTTPS with a bearer token and rate limits
// clients with HTTP 429 responses.
//
// # Endpoints
//
//   - GET  /progress                          full progress document
//   - POST /progress/task/objective/{id}      {"count": n, "state": "completed"|"uncompleted"}
//
// # Client Usage
//
//	client, err := tracker.NewClient(tracker.DefaultBaseURL, apiKey)
//	if err != nil {
//		return err
//	}
//	progress, err := client.FetchProgress(ctx)
//
// # Errors
//
// Non-2xx responses are returned as *StatusError. IsRateLimited reports a
// 429 so callers can apply a cooldown. Transport failures are wrapped with
// "execute request"; malformed bodies with "decode response".
//
// The client holds no retry or cooldown state of its own; that policy lives
// in the progress engine.
package tracker
