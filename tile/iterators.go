package tile

import (
	"iter"
	"math/bits"

	"github.com/google/hilbert"
)

// IterRange returns an iterator over all tile IDs of the range in row-major order.
func IterRange(r Range) iter.Seq[ID] {
	return func(yield func(ID) bool) {
		if r.Empty() {
			return
		}
		for y := r.MinY; y <= r.MaxY; y++ {
			for x := r.MinX; x <= r.MaxX; x++ {
				if !yield(ID{X: uint32(x), Y: uint32(y), Z: uint32(r.Z)}) {
					return
				}
			}
		}
	}
}

// IterHilbert returns an iterator over all tile IDs of the range ordered along a
// Hilbert curve, so that consecutive tiles are spatial neighbours.
func IterHilbert(r Range) iter.Seq[ID] {
	return func(yield func(ID) bool) {
		if r.Empty() {
			return
		}
		w := r.MaxX - r.MinX + 1
		h := r.MaxY - r.MinY + 1
		side := 1 << bits.Len(uint(max(w, h)-1))

		curve, err := hilbert.NewHilbert(side)
		if err != nil {
			panic(err) // side is always a power of two
		}
		for d := range side * side {
			dx, dy, err := curve.Map(d)
			if err != nil {
				panic(err)
			}
			if dx >= w || dy >= h {
				continue
			}
			tileID := ID{X: uint32(r.MinX + dx), Y: uint32(r.MinY + dy), Z: uint32(r.Z)}
			if !yield(tileID) {
				return
			}
		}
	}
}
