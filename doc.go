// Package batchpar evaluates a predicate over a bounded domain of integer
// items in parallel, and collects the items that satisfy it.
//
// The interesting part is not the predicate, a naive primality test, but
// the coordination around it: how the domain is split across workers, how
// the workers publish their matches, and how results cross between
// goroutines that run freely and cooperative tasks that share a small
// number of executor slots.
//
// EvaluateBatch runs one of several aggregation strategies over the domain
// and returns the matching items together with timing information.
// StreamBatch sends the matches of free-running workers through a bridge
// stream to a cooperative consumer. BridgeStream creates such a stream for
// callers that want to build their own producers and consumers.
//
// The module provides the following subpackages:
//
// batchpar/predicate provides the per-item evaluators.
//
// batchpar/partition splits a domain into one chunk per worker.
//
// batchpar/strategy provides the interchangeable aggregation strategies.
//
// batchpar/parallel provides fork-join functions over ranges of indices,
// and batchpar/sequential their sequential counterparts, which define the
// baseline every strategy is checked against.
//
// batchpar/coop provides the cooperative executor and its join sets.
//
// batchpar/bridge provides typed streams between producers and consumers
// in either scheduling domain.
//
// batchpar/sort provides parallel sorting for the collected items.
//
// batchpar/counter and batchpar/stats support the measurements reported
// by the primes command.
package batchpar
