// Package dag provides the dependency graph the executor uses to order
// grid steps. Edges point from a dependency to its dependents; ordering is
// deterministic so repeated runs of the same grid execute identically.
package dag
