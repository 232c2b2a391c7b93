// Package topic defines the configured event topics and the change-detection
// core: which topics fired between two snapshots, and what payload each fires
// with.
//
// A Spec names a group of dot-separated field paths; a topic "fires" when any
// of its fields resolves differently in the new snapshot than in the previous
// one (absent vs present counts as different). Registry holds the static set
// of Specs in declaration order — Changed returns fired topics in that order
// so downstream behaviour is deterministic.
//
// Spec.Project extracts exactly the topic's fields from a snapshot into a
// minimal payload that mirrors the source nesting: a topic over "a.b" yields
// {"a":{"b":<value>}}, never untracked siblings.
package topic
