package rubble

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

// Random is the single deterministic generator of a simulation. Every
// fracture draws from it in a fixed order, so reordering draws changes all
// later debris.
type Random struct {
	seed int64
	r    *rand.Rand
}

func NewRandom(seed int64) *Random {
	return &Random{seed: seed, r: rand.New(rand.NewSource(seed))}
}

func (r *Random) Seed() int64 { return r.seed }

// Float returns a uniform value in [lo, hi).
func (r *Random) Float(lo, hi float32) float32 {
	return lo + (hi-lo)*r.r.Float32()
}

// Int returns a uniform value in [lo, hi], both inclusive.
func (r *Random) Int(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.r.Intn(hi-lo+1)
}

// ZeroIn reports whether a uniform draw in [0, n] is zero, a chance of 1/(n+1).
func (r *Random) ZeroIn(n int) bool {
	return r.Int(0, n) == 0
}

func (r *Random) Vec3(lo, hi float32) mgl32.Vec3 {
	return mgl32.Vec3{r.Float(lo, hi), r.Float(lo, hi), r.Float(lo, hi)}
}

// Jitter offsets each axis of p by a uniform amount in [-amount, amount).
func (r *Random) Jitter(p mgl32.Vec3, amount float32) mgl32.Vec3 {
	return p.Add(r.Vec3(-amount, amount))
}

type RandomModule struct {
	Seed int64
}

func (m RandomModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(NewRandom(m.Seed))
}
