// Package catalog exposes the read-only item, task and hideout graph that
// the progress engine selects objectives from.
//
// The graph comes from a cached catalog response on disk written by a
// separate fetcher. Source loads it, keeps the latest Snapshot behind an
// atomic pointer and can watch the file to pick up refreshed data. A
// Snapshot is never mutated after construction; required counts are read
// from it on every selection so refreshed catalog data takes effect
// immediately.
package catalog
