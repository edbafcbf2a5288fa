// Package affinity computes the per-pixel affinity texture feature.
//
// For every pixel the engine samples a small neighbourhood (3x3 in the
// interior, 2x3/3x2/2x2 at the border when windows are shrunk), counts how
// many of the contained 2x2 sub-windows hold each value and each pair of
// distinct values, scores the pairs with a Metric and emits the absolute
// difference of the best-scoring pair.
//
// Frequency tables are derived in closed form from per-shape sub-window
// membership masks (Build); BuildNaive enumerates the sub-windows directly and
// serves as the reference implementation.
package affinity
