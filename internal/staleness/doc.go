// Package staleness decides whether a step must re-run by comparing the
// modification times of its resolved inputs and outputs. Output-file mtimes
// are the pipeline's only persisted memory of prior runs; there is no state
// store and no content hashing.
package staleness
