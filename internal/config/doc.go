// Package config loads and watches the statecast configuration file
// (config.yaml).
//
// Top-level types:
//   - Config{Poll, Listen, Topics, Webhooks} — full config tree parsed from YAML
//   - Poll — upstream url, interval, timeout, optional auth header and TLS
//     dial options; Auth.Key() resolves the key value from the environment
//   - Listen — listener address plus optional cert_file/key_file pair for TLS
//   - Topic — name, emit label (defaults to name), dot-path field list
//   - Webhook — url_env (environment variable holding the target URL) and an
//     optional event name filter
//
// Load(path) reads the YAML file, applies defaults (5s interval, 10s timeout,
// addr :8080), then validates required fields. Validation failures are the
// only startup-fatal errors in the process.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and calls
// onChange with the newly parsed Config. It handles the rename→create pattern
// used by atomic-save editors by re-adding the watch after the event. The
// topic registry is static by design, so callers treat reloads as advisory.
package config
