// Package trajectory holds the track state representations used when a seed
// is built: the surface-independent free state, planar detector surfaces, the
// surface-bound local state and its packed per-detector form.
//
// Units follow the simulation conventions: positions in cm, momenta in GeV/c,
// magnetic field in tesla.
//
// Dependency rule: trajectory is a leaf package. It knows nothing about hits,
// algorithms or events.
package trajectory
