// Package seeding builds trajectory seeds from simulated tracker hits.
//
// A seed is two or three hits of one simulated track plus an initial
// trajectory state on the surface of the first hit. The Producer runs once
// per event: for every simulated track that left hits it applies the cuts
// of each configured algorithm in order (hit count, pT, impact parameters),
// searches the track's hits for a compatible combination and builds the
// seed. The first algorithm that yields a seed for a track wins.
//
// Geometry and magnetic field are consumed through the GeometryLookup and
// FieldPropagator interfaces. Events are consumed through Event, which joins
// the per-track hit source with the simulated track and vertex tables.
//
// Hits of a track must arrive in non-decreasing sub-detector order. The
// first-hit search stops at the first hit past the requested region and
// relies on that ordering. It is not checked.
//
// A Producer is not safe for concurrent use. Build one per goroutine with
// Clone; the algorithm set is shared read-only.
package seeding
