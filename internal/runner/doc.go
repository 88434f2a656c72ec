// Package runner drives a seeding.Producer over a stream of events with a
// pool of workers. Every worker owns a clone of the producer. Results reach
// the sink in input order. The first error from the source, a worker or the
// sink cancels the run and is returned.
package runner
