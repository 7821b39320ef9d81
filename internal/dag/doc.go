// Package dag holds the package dependency graph. Nodes are package names
// and an edge from A to B records that B needs A to build. The graph is
// safe for concurrent use; all query results are sorted so callers that
// walk it behave the same way on every run.
package dag
