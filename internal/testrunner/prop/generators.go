package prop

import (
	"math"
	"math/rand"
)

// GenInt64 returns a generator over the whole int64 range that favours the
// values where width arithmetic goes wrong: zero, ±1, and the limits of the
// 8-, 16-, 32- and 64-bit types.
func GenInt64() Generator[int64] {
	edges := []int64{
		0, 1, -1,
		math.MaxInt8, math.MinInt8, math.MaxUint8,
		math.MaxInt16, math.MinInt16, math.MaxUint16,
		math.MaxInt32, math.MinInt32, math.MaxUint32,
		math.MaxInt64, math.MinInt64,
	}
	return func(r *rand.Rand, size int) int64 {
		switch r.Intn(4) {
		case 0:
			return edges[r.Intn(len(edges))] + int64(r.Intn(3)-1)
		case 1:
			if size > 62 {
				size = 62
			}
			return r.Int63n(int64(1)<<uint(size)+1) - int64(1)<<uint(size-1)
		default:
			return int64(r.Uint64())
		}
	}
}

// ShrinkInt64 reduces magnitude toward zero.
func ShrinkInt64() Shrinker[int64] {
	return func(v int64) []int64 {
		if v == 0 {
			return nil
		}
		out := []int64{0, v / 2}
		if v > 0 {
			out = append(out, v-1)
		} else {
			out = append(out, v+1)
		}
		return out
	}
}

// GenBool returns a boolean generator.
func GenBool() Generator[bool] {
	return func(r *rand.Rand, _ int) bool { return r.Intn(2) == 0 }
}

// GenSlice returns a slice generator using the element generator.
func GenSlice[T any](elem Generator[T]) Generator[[]T] {
	return func(r *rand.Rand, size int) []T {
		n := r.Intn(size + 1)
		out := make([]T, n)
		for i := range out {
			out[i] = elem(r, size)
		}
		return out
	}
}

// ShrinkSlice shrinks by removing halves and shrinking the head element.
func ShrinkSlice[T any](elem Shrinker[T]) Shrinker[[]T] {
	return func(v []T) [][]T {
		if len(v) == 0 {
			return nil
		}
		mid := len(v) / 2
		candidates := [][]T{
			append([]T(nil), v[:mid]...),
			append([]T(nil), v[mid:]...),
		}
		if elem != nil {
			for _, s := range elem(v[0]) {
				candidates = append(candidates, append([]T{s}, v[1:]...))
			}
		}
		return candidates
	}
}
