package rubble

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// FractureEvent summarises one destroyed block. Pieces is the number of
// seeds drawn; Shards counts emitted shard fragments including both halves of
// every secondary split. Volume is the summed volume of the emitted shards.
type FractureEvent struct {
	ID        uuid.UUID
	Block     int
	Position  mgl32.Vec3
	Pieces    int
	Shards    int
	Discarded int
	Splits    int
	Chips     int
	Dust      int
	Triangles int
	Volume    float32
}

// FractureEngine turns destroyed blocks into shard, chip and dust fragments.
// It keeps a reusable arena for the convex shapes of a single call and is not
// safe for concurrent use.
type FractureEngine struct {
	cfg   FractureConfig
	arena shapeArena
}

func NewFractureEngine(cfg FractureConfig) *FractureEngine {
	return &FractureEngine{cfg: cfg}
}

func (e *FractureEngine) Config() FractureConfig {
	return e.cfg
}

// Eternal reports whether newly spawned fragments are exempt from expiry.
func (e *FractureEngine) Eternal() bool {
	return e.cfg.Eternal
}

// Fracture decomposes block into fragments appended to debris. All
// randomness is drawn from rng in a fixed order.
func (e *FractureEngine) Fracture(index int, block Block, rng *Random, debris *Debris) FractureEvent {
	e.arena.reset()
	defer e.arena.reset()

	ev := FractureEvent{
		ID:       uuid.New(),
		Block:    index,
		Position: block.Position,
	}

	half := BlockSize * 0.5
	center := block.Position

	ev.Pieces = rng.Int(e.cfg.MinPieces, e.cfg.MaxPieces)
	seeds := make([]mgl32.Vec3, ev.Pieces)
	inset := half * e.cfg.SeedInset
	for i := range seeds {
		seeds[i] = rng.Jitter(center, inset)
	}

	// One jittered midpoint per unordered pair; both cells clip against the
	// same plane so neighbouring shards never overlap.
	mids := make([]mgl32.Vec3, ev.Pieces*ev.Pieces)
	for i := 0; i < ev.Pieces; i++ {
		for j := i + 1; j < ev.Pieces; j++ {
			mid := seeds[i].Add(seeds[j]).Mul(0.5)
			mid = rng.Jitter(mid, e.cfg.ClipJitter)
			mids[i*ev.Pieces+j] = mid
			mids[j*ev.Pieces+i] = mid
		}
	}

	for i := 0; i < ev.Pieces; i++ {
		piece := newCubeShape(&e.arena, center, half)
		for j := 0; j < ev.Pieces; j++ {
			if i == j {
				continue
			}
			dir := safeNormalize(seeds[i].Sub(seeds[j]))
			if dir == (mgl32.Vec3{}) {
				// Coincident seeds: the lower index owns the cell.
				if j < i {
					piece = ConvexShape{}
					break
				}
				continue
			}
			piece = piece.clip(&e.arena, mids[i*ev.Pieces+j], dir)
			if piece.Empty() {
				break
			}
		}

		if piece.Empty() {
			ev.Discarded++
			continue
		}
		vol := piece.Volume()
		if vol < e.cfg.MinShardVolume {
			ev.Discarded++
			continue
		}

		pc := piece.Center()
		away := pc.Sub(center)
		if l := away.Len(); l > 0.01 {
			away = away.Mul(1 / l)
		} else {
			away = mgl32.Vec3{rng.Float(-0.5, 0.5), 0, rng.Float(-0.5, 0.5)}
		}

		if rng.ZeroIn(e.cfg.SecondaryChance) && vol > e.cfg.SecondaryMinVol {
			ev.Splits++
			ev.Shards += e.split(piece, center, half, block, rng, debris, &ev)
			continue
		}

		fr := e.shard(piece, pc, away, 0.25, block, rng)
		fr.Source = ev.ID
		ev.Triangles += fr.Mesh.TriangleCount()
		ev.Volume += vol
		debris.Spawn(fr)
		ev.Shards++
	}

	ev.Chips = spawnChips(e.cfg, center, block.Color, rng, debris, ev.ID)
	ev.Dust = spawnDust(e.cfg, center, block.Color, rng, debris, ev.ID)
	return ev
}

// split cuts piece once more along a random plane near its centre and emits
// both halves that survive the volume threshold. A degenerate plane emits the
// piece whole.
func (e *FractureEngine) split(piece ConvexShape, blockCenter mgl32.Vec3, half float32, block Block, rng *Random, debris *Debris, ev *FractureEvent) int {
	pc := piece.Center()
	s1 := rng.Jitter(pc, half*0.3)
	s2 := rng.Jitter(pc, half*0.3)
	mid := s1.Add(s2).Mul(0.5)
	dir := safeNormalize(s1.Sub(s2))

	halves := [2]ConvexShape{piece}
	if dir != (mgl32.Vec3{}) {
		halves[0] = piece.clip(&e.arena, mid, dir)
		halves[1] = piece.clip(&e.arena, mid, dir.Mul(-1))
	}

	emitted := 0
	for _, part := range halves {
		if part.Empty() {
			continue
		}
		vol := part.Volume()
		if vol < e.cfg.MinShardVolume {
			continue
		}
		sc := part.Center()
		away := sc.Sub(blockCenter)
		if l := away.Len(); l > 0.01 {
			away = away.Mul(1 / l)
		}
		fr := e.shard(part, sc, away, 0.2, block, rng)
		fr.Source = ev.ID
		ev.Triangles += fr.Mesh.TriangleCount()
		ev.Volume += vol
		debris.Spawn(fr)
		emitted++
	}
	return emitted
}

func (e *FractureEngine) shard(shape ConvexShape, center, away mgl32.Vec3, spin float32, block Block, rng *Random) Fragment {
	fr := Fragment{
		Kind:     KindShard,
		Position: center,
		Velocity: mgl32.Vec3{
			away.X() + rng.Float(-0.5, 0.5)*0.4,
			rng.Float(-0.5, 0.5) * 0.15,
			away.Z() + rng.Float(-0.5, 0.5)*0.4,
		},
		Spin: mgl32.Vec3{
			rng.Float(-0.5, 0.5) * spin,
			rng.Float(-0.5, 0.5) * spin,
			rng.Float(-0.5, 0.5) * spin,
		},
		Scale:       mgl32.Vec3{1, 1, 1},
		Color:       block.Color,
		MaxLifetime: e.cfg.FragmentTimeout,
		Eternal:     e.cfg.Eternal,
		Active:      true,
	}
	shapeToMesh(&fr.Mesh, shape, center, block.Color, e.cfg.CrackDepthLevels, rng)
	addEdgeCracks(&fr.Mesh, shape, center, block.Color)
	return fr
}

// safeNormalize returns the zero vector for degenerate input instead of NaNs.
func safeNormalize(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l < 1e-8 {
		return mgl32.Vec3{}
	}
	return v.Mul(1 / l)
}
