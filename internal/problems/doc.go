// Package problems provides the vector fields integrated by liesim.
//
// Each problem names the manifold it lives on and returns Lie algebra
// elements from Field:
//
//   - [SphereRotation]: time-dependent rotation of S², field in so(3) matrix form
//   - [HeavyTop]: heavy top in (mu, beta) coordinates, field in se(3)
//   - [SphericalPendulum]: N uncoupled pendula, field in se(3)^N
//
// Problems with a conserved energy implement [Hamiltonian]; the energy drift
// metric uses it to measure how well a method tracks the exact flow.
package problems
