/*
Package parallel provides convenience functions for common
divide-and-conquer shapes over a forkjoin.Pool: series of thunks, loops
over integer ranges, reductions, and slice transforms.

Every function takes a grain size, the sequential cutoff below which a
range is processed inline instead of forked further. Choosing it is a
trade-off: too small and fork overhead dominates, too large and the load
does not balance. A few hundred to a few thousand cheap iterations per
grain is a reasonable starting point.

Results are deterministic: scheduling order varies between runs, but the
combine step is applied in range order, so Reduce with a non-commutative
combine function still produces a stable result.
*/
package parallel
