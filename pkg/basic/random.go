package basic

import (
	"math/rand"
	"time"
)

// RANDOMIZE/RND with the classic argument convention: a negative
// argument reseeds deterministically, zero repeats the last draw,
// positive or absent draws the next value. RANDOMIZE with a fixed seed
// reproduces an identical sequence across runs.

func (it *Interp) randomize(seed float64) {
	it.rng = rand.New(rand.NewSource(int64(seed)))
}

func (it *Interp) rnd(arg float64) float64 {
	switch {
	case arg < 0:
		it.rng = rand.New(rand.NewSource(int64(arg)))
		it.lastRnd = it.rng.Float64()
		return it.lastRnd
	case arg == 0:
		return it.lastRnd
	default:
		it.lastRnd = it.rng.Float64()
		return it.lastRnd
	}
}

func (it *Interp) execRandomize(st *RandomizeStmt) error {
	if st.Seed == nil {
		// bare RANDOMIZE reseeds nondeterministically
		it.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		return nil
	}
	v, err := it.evalExpr(st.Seed)
	if err != nil {
		return err
	}
	n, err := toNumber(it, v)
	if err != nil {
		return err
	}
	it.randomize(n)
	return nil
}
