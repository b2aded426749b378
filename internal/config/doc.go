// Package config holds the format-agnostic pipeline model produced by the
// loader and consumed by the graph builder and executor.
package config
