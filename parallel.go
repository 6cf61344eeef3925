package blsfr

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// The Par* kernels are the chunk-level parallel layer over the serial
// vector and NTT routines. Each task writes a disjoint output range, so the
// aliasing rules are the same as for the serial kernels.

// parallelThreshold is the element count below which the Par* kernels fall
// back to their serial counterparts.
const parallelThreshold = 2048

// parallelChunks splits [0, n) into one contiguous range per worker and
// runs fn on each concurrently.
func parallelChunks(n int, fn func(start, end int)) {
	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	var g errgroup.Group
	for start := 0; start < n; start += chunk {
		start, end := start, min(start+chunk, n)
		g.Go(func() error {
			fn(start, end)
			return nil
		})
	}
	// The tasks are pure arithmetic and never fail.
	_ = g.Wait()
}

// ParVecAdd computes out[i] = a[i] + b[i] mod P across all cores.
func ParVecAdd(out, a, b []Scalar) {
	checkVecLen(len(out), len(a), len(b))
	if len(a) < parallelThreshold {
		VecAdd(out, a, b)
		return
	}
	parallelChunks(len(a), func(s, e int) {
		VecAdd(out[s:e], a[s:e], b[s:e])
	})
}

// ParVecSub computes out[i] = a[i] - b[i] mod P across all cores.
func ParVecSub(out, a, b []Scalar) {
	checkVecLen(len(out), len(a), len(b))
	if len(a) < parallelThreshold {
		VecSub(out, a, b)
		return
	}
	parallelChunks(len(a), func(s, e int) {
		VecSub(out[s:e], a[s:e], b[s:e])
	})
}

// ParVecMul computes the elementwise Montgomery product across all cores.
func ParVecMul(out, a, b []Scalar) {
	checkVecLen(len(out), len(a), len(b))
	if len(a) < parallelThreshold {
		VecMul(out, a, b)
		return
	}
	parallelChunks(len(a), func(s, e int) {
		VecMul(out[s:e], a[s:e], b[s:e])
	})
}

// ParNttRound runs one NTT butterfly stage with the blocks spread across
// all cores. Blocks never overlap, so no synchronisation beyond the final
// join is needed.
func ParNttRound(coeffs, twiddles []Scalar, m int) {
	checkNttArgs(len(coeffs), len(twiddles), m)

	blocks := len(coeffs) / m
	if len(coeffs) < parallelThreshold || blocks == 1 {
		NttRound(coeffs, twiddles, m)
		return
	}
	parallelChunks(blocks, func(s, e int) {
		for k := s * m; k < e*m; k += m {
			nttBlock(coeffs[k:k+m], twiddles)
		}
	})
}
