// Package dag models a pipeline's steps as an explicit directed acyclic
// graph: nodes plus depends_on edges, with cycle detection and declared-order
// validation. The executor walks steps in declared order today; the explicit
// edge set is what would let independent branches run concurrently.
package dag
