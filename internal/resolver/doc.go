// Package resolver turns the templated path specs of a pipeline definition
// into concrete filesystem paths for one (period, storage root) pair, and
// selects the storage root itself by probing a candidate list.
package resolver
