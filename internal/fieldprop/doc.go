// Package fieldprop propagates particles through a uniform solenoidal
// magnetic field. It provides the field-propagation capability consumed by
// the seeding package: beam-cylinder compatibility of hit pairs and impact
// parameters of simulated tracks.
//
// The field map itself is out of scope; UniformField stands in for it with a
// constant Bz, which is what the tracker volume looks like to first order.
package fieldprop
