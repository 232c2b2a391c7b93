// Package document defines the Document type — one decoded JSON snapshot of
// upstream state — and dot-path access over its nested structure.
//
// A Document is treated as immutable once produced: the poller replaces the
// whole snapshot each cycle rather than mutating it in place. Resolve walks a
// dot-separated path and reports absence via its boolean return; a missing
// intermediate key is absence, never an error. Set is the write-side
// counterpart used when projecting topic payloads.
package document
