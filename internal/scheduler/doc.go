// Package scheduler partitions a set of source packages into ordered build
// phases. Every package in a phase can be built once all earlier phases
// have been built and their needed artifacts installed.
//
// Scheduling is a layered topological sort over the build requirements
// that name packages of the same set. Requirements on packages outside
// the set become external prerequisites, installed from the package
// manager before the first phase starts.
package scheduler
