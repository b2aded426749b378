// Package hcl provides the concrete HCL implementation for pipeline
// definition loading. It is responsible for file parsing, schema decoding
// and translation into the format-agnostic config model. Step path and
// command expressions are passed through unevaluated; the resolver package
// evaluates them once a run supplies the period and storage root.
package hcl
