// Package app wires the application together: configuration, logger
// construction, and the load -> probe -> plan -> execute -> summarize flow
// of a single pipeline invocation.
package app
