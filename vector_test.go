package blsfr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func randomVec(t *testing.T, n int, mont bool) []Scalar {
	t.Helper()
	out := make([]Scalar, n)
	for i := range out {
		out[i] = randomScalar(t)
		if mont {
			out[i].ToMontgomery(&out[i])
		}
	}
	return out
}

func TestVecKernelsMatchScalarOps(t *testing.T) {
	const n = 37
	a := randomVec(t, n, true)
	b := randomVec(t, n, true)
	out := make([]Scalar, n)

	VecAdd(out, a, b)
	for i := range out {
		var want Scalar
		want.Add(&a[i], &b[i])
		require.True(t, out[i].Equal(&want), "VecAdd mismatch at %d", i)
	}

	VecSub(out, a, b)
	for i := range out {
		var want Scalar
		want.Sub(&a[i], &b[i])
		require.True(t, out[i].Equal(&want), "VecSub mismatch at %d", i)
	}

	VecMul(out, a, b)
	for i := range out {
		var want Scalar
		want.MulMont(&a[i], &b[i])
		require.True(t, out[i].Equal(&want), "VecMul mismatch at %d", i)
	}
}

func TestVecScalarBroadcast(t *testing.T) {
	const n = 29
	a := randomVec(t, n, true)
	s := randomScalar(t)
	s.ToMontgomery(&s)
	out := make([]Scalar, n)

	VecAddScalar(out, a, &s)
	for i := range out {
		var want Scalar
		want.Add(&a[i], &s)
		require.True(t, out[i].Equal(&want), "VecAddScalar mismatch at %d", i)
	}

	VecSubScalar(out, a, &s)
	for i := range out {
		var want Scalar
		want.Sub(&a[i], &s)
		require.True(t, out[i].Equal(&want), "VecSubScalar mismatch at %d", i)
	}

	VecMulScalar(out, a, &s)
	for i := range out {
		var want Scalar
		want.MulMont(&a[i], &s)
		require.True(t, out[i].Equal(&want), "VecMulScalar mismatch at %d", i)
	}
}

func TestVecAliasedOutput(t *testing.T) {
	const n = 16
	a := randomVec(t, n, true)
	b := randomVec(t, n, true)

	want := make([]Scalar, n)
	VecMul(want, a, b)

	got := make([]Scalar, n)
	copy(got, a)
	VecMul(got, got, b)
	for i := range got {
		require.True(t, got[i].Equal(&want[i]), "out == a aliasing broken at %d", i)
	}

	// Broadcast with the scalar taken from the output slice: the value is
	// loaded once, so overwriting its slot mid-run must not change results.
	scalar := b[0]
	wantB := make([]Scalar, n)
	VecMulScalar(wantB, a, &scalar)

	gotB := make([]Scalar, n)
	copy(gotB, b)
	VecMulScalar(gotB, a, &gotB[0])
	for i := range gotB {
		require.True(t, gotB[i].Equal(&wantB[i]), "broadcast snapshot broken at %d", i)
	}
}

func TestParVecKernelsMatchSerial(t *testing.T) {
	// Big enough to cross the parallel threshold.
	const n = 4096
	a := randomVec(t, n, true)
	b := randomVec(t, n, true)

	want := make([]Scalar, n)
	got := make([]Scalar, n)

	VecAdd(want, a, b)
	ParVecAdd(got, a, b)
	for i := range got {
		require.True(t, got[i].Equal(&want[i]), "ParVecAdd mismatch at %d", i)
	}

	VecSub(want, a, b)
	ParVecSub(got, a, b)
	for i := range got {
		require.True(t, got[i].Equal(&want[i]), "ParVecSub mismatch at %d", i)
	}

	VecMul(want, a, b)
	ParVecMul(got, a, b)
	for i := range got {
		require.True(t, got[i].Equal(&want[i]), "ParVecMul mismatch at %d", i)
	}
}

func TestParVecSmallInputFallsBackToSerial(t *testing.T) {
	const n = 8
	a := randomVec(t, n, true)
	b := randomVec(t, n, true)

	want := make([]Scalar, n)
	got := make([]Scalar, n)
	VecMul(want, a, b)
	ParVecMul(got, a, b)
	for i := range got {
		require.True(t, got[i].Equal(&want[i]))
	}
}

func TestVecLengthMismatchPanics(t *testing.T) {
	a := make([]Scalar, 4)
	b := make([]Scalar, 3)
	out := make([]Scalar, 4)

	require.Panics(t, func() { VecAdd(out, a, b) })
	require.Panics(t, func() { VecMul(out[:2], a, a) })
	require.Panics(t, func() { ParVecSub(out, a, b) })
}

func TestVecEmptySlices(t *testing.T) {
	VecAdd(nil, nil, nil)
	VecMulScalar(nil, nil, &ScalarOne)
}
