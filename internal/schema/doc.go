// Package schema defines the HCL block structures for pipeline definition
// files. These structs are decode targets only; translation into the
// format-agnostic model lives in the hcl package.
package schema
