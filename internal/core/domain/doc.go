// Package domain holds the harvester's core types: the Issue/PullRequest
// tagged union, their nested comments and reaction tallies, the sink-ready
// HarvestRecord, and run-level state and counters.
//
// The package has no dependencies beyond the standard library. Types here
// are the contract between the GitHub connector, the orchestrator, and the
// durable sink; adapters convert to and from them at their boundaries.
package domain
