// Package poller drives the fetch→diff→publish cycle.
//
// Run ticks on the configured interval. Each tick fetches the upstream JSON
// document, asks the topic registry which topics changed relative to the
// current snapshot, publishes one wire event per changed topic on the bus,
// and then atomically replaces the snapshot. The first successful fetch only
// seeds the snapshot — nothing is "changed" relative to no previous state.
//
// A failed fetch or decode skips the whole tick: the snapshot is left
// untouched, nothing is published, and the schedule continues. Fetch failures
// are never fatal.
package poller
