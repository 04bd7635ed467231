// Package lie implements the Lie group and Lie algebra layer used by the
// RKMK integrators.
//
// A [Group] moves points of a representation space with Action. An
// [Algebra] supplies Exp, mapping algebra elements to group elements, and
// Dexpinv, the inverse of the right-trivialized differential of Exp.
//
//   - [SOGroup] with [SO3Algebra]: rotations of the sphere, Rodrigues closed form.
//   - [SE3Group] with [SE3Algebra]: coadjoint action used by the heavy top.
//   - [StackedSE3Group] with [StackedSE3Algebra]: N copies of SE(3) acting
//     on the tangent bundle of the sphere, used by spherical pendulums.
//   - [GeneralAlgebra]: matrix exponential and truncated BCH series, the
//     fallback for matrix algebras without a closed form.
//
// Every closed form handles the small-angle limit explicitly; the zero
// element is mapped exactly (identity for Exp, v itself for Dexpinv).
package lie
