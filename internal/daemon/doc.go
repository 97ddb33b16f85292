// Package daemon assembles the long-running service: it wires the stage
// adapters, admission queue, orchestrator, store, HTTP API, and keepalive
// pinger, and enforces single-instance execution through a lock file.
package daemon
