package rubble

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBlock() Block {
	return Block{
		Position: mgl32.Vec3{2, 3, -1},
		Color:    mgl32.Vec3{0.6, 0.5, 0.4},
		Active:   true,
		Type:     BlockBuilding,
	}
}

func fractureOnce(t *testing.T, cfg FractureConfig, seed int64) (FractureEvent, *Debris) {
	t.Helper()
	engine := NewFractureEngine(cfg)
	debris := &Debris{}
	ev := engine.Fracture(0, testBlock(), NewRandom(seed), debris)
	return ev, debris
}

func TestFracture_Counts(t *testing.T) {
	cfg := DefaultConfig().Fracture

	for seed := int64(1); seed <= 25; seed++ {
		ev, debris := fractureOnce(t, cfg, seed)

		assert.GreaterOrEqual(t, ev.Pieces, cfg.MinPieces, "seed %d", seed)
		assert.LessOrEqual(t, ev.Pieces, cfg.MaxPieces, "seed %d", seed)
		assert.Greater(t, ev.Shards, 0, "seed %d", seed)
		assert.LessOrEqual(t, ev.Shards, ev.Pieces-ev.Discarded+ev.Splits, "seed %d", seed)
		assert.LessOrEqual(t, ev.Splits, ev.Pieces-ev.Discarded, "seed %d", seed)

		assert.Equal(t, cfg.MicroParticles, ev.Chips)
		assert.Equal(t, cfg.DustParticles, ev.Dust)
		assert.Equal(t, ev.Shards, debris.CountKind(KindShard))
		assert.Equal(t, ev.Chips, debris.CountKind(KindChip))
		assert.Equal(t, ev.Dust, debris.CountKind(KindDust))
		assert.Equal(t, ev.Shards+ev.Chips+ev.Dust, debris.Len())
	}
}

func TestFracture_VolumeNeverExceedsBlock(t *testing.T) {
	if testing.Short() {
		t.Skip("fractures thousands of blocks")
	}
	cfg := DefaultConfig().Fracture
	engine := NewFractureEngine(cfg)
	debris := &Debris{}

	for seed := int64(1); seed <= 3000; seed++ {
		ev := engine.Fracture(0, testBlock(), NewRandom(seed), debris)
		debris.Clear()

		if seed <= 25 {
			assert.Greater(t, ev.Volume, float32(0.5), "seed %d", seed)
		}
		if ev.Volume > 1.0+1e-3 {
			t.Fatalf("shards of seed %d overlap: volume %f", seed, ev.Volume)
		}
	}
}

func TestFracture_CoincidentSeeds(t *testing.T) {
	cfg := DefaultConfig().Fracture
	cfg.SeedInset = 0
	cfg.ClipJitter = 0

	for seed := int64(1); seed <= 10; seed++ {
		ev, debris := fractureOnce(t, cfg, seed)

		assert.Equal(t, ev.Pieces-1, ev.Discarded, "seed %d keeps one cell", seed)
		assert.GreaterOrEqual(t, ev.Shards, 1, "seed %d", seed)
		assert.LessOrEqual(t, ev.Shards, 2, "seed %d", seed)
		assert.Greater(t, ev.Volume, float32(0.5), "seed %d", seed)
		assert.LessOrEqual(t, ev.Volume, float32(1.0+1e-3), "seed %d", seed)
		assert.Equal(t, ev.Shards, debris.CountKind(KindShard))
	}
}

func TestFracture_Fragments(t *testing.T) {
	cfg := DefaultConfig().Fracture
	block := testBlock()
	ev, debris := fractureOnce(t, cfg, 7)

	triangles := 0
	for i, fr := range debris.Fragments {
		assert.True(t, fr.Active, "fragment %d", i)
		assert.False(t, fr.Eternal, "fragment %d", i)
		assert.Equal(t, ev.ID, fr.Source, "fragment %d", i)
		assert.Equal(t, mgl32.Vec3{1, 1, 1}, fr.Scale)
		assert.Greater(t, fr.Mesh.TriangleCount(), 0, "fragment %d has geometry", i)
		assert.Zero(t, fr.Lifetime)

		for _, idx := range fr.Mesh.Indices {
			require.Less(t, int(idx), len(fr.Mesh.Vertices))
		}

		switch fr.Kind {
		case KindShard:
			triangles += fr.Mesh.TriangleCount()
			assert.Equal(t, cfg.FragmentTimeout, fr.MaxLifetime)
			assert.Less(t, fr.Position.Sub(block.Position).Len(), float32(0.9), "shard centre inside the block")
		case KindChip:
			assert.Equal(t, cfg.ChipLifetime, fr.MaxLifetime)
			assert.Equal(t, 12, fr.Mesh.TriangleCount())
		case KindDust:
			assert.Equal(t, cfg.DustLifetime, fr.MaxLifetime)
			assert.Equal(t, 12, fr.Mesh.TriangleCount())
			assert.GreaterOrEqual(t, fr.Velocity.Y(), float32(0), "dust rises")
		}
	}
	assert.Equal(t, ev.Triangles, triangles)
	assert.Equal(t, 0, ev.Block)
	assert.Equal(t, block.Position, ev.Position)
}

func TestFracture_Deterministic(t *testing.T) {
	cfg := DefaultConfig().Fracture
	evA, a := fractureOnce(t, cfg, 1234)
	evB, b := fractureOnce(t, cfg, 1234)

	assert.NotEqual(t, evA.ID, evB.ID)
	assert.Equal(t, evA.Pieces, evB.Pieces)
	assert.Equal(t, evA.Shards, evB.Shards)
	assert.Equal(t, evA.Discarded, evB.Discarded)
	assert.Equal(t, evA.Splits, evB.Splits)
	assert.Equal(t, evA.Triangles, evB.Triangles)

	require.Equal(t, a.Len(), b.Len())
	for i := range a.Fragments {
		fa, fb := a.Fragments[i], b.Fragments[i]
		assert.Equal(t, fa.Kind, fb.Kind)
		assert.Equal(t, fa.Position, fb.Position)
		assert.Equal(t, fa.Velocity, fb.Velocity)
		assert.Equal(t, fa.Spin, fb.Spin)
		assert.Equal(t, fa.Mesh, fb.Mesh)
	}

	_, c := fractureOnce(t, cfg, 4321)
	differs := c.Len() != a.Len()
	for i := 0; !differs && i < a.Len(); i++ {
		differs = a.Fragments[i].Position != c.Fragments[i].Position
	}
	assert.True(t, differs, "another seed gives other debris")
}

func TestFracture_EternalAndSingleCell(t *testing.T) {
	cfg := DefaultConfig().Fracture
	cfg.Eternal = true
	cfg.MinPieces = 1
	cfg.MaxPieces = 1
	cfg.SecondaryMinVol = 2

	ev, debris := fractureOnce(t, cfg, 3)

	require.Equal(t, 1, ev.Pieces)
	assert.Equal(t, 1, ev.Shards, "a single cell is the whole block")
	assert.InDelta(t, 1.0, ev.Volume, 1e-4)
	for _, fr := range debris.Fragments {
		assert.True(t, fr.Eternal)
	}
}

func TestFracture_ArenaReusedAcrossCalls(t *testing.T) {
	engine := NewFractureEngine(DefaultConfig().Fracture)
	rng := NewRandom(5)
	debris := &Debris{}

	first := engine.Fracture(0, testBlock(), rng, debris)
	n := debris.Len()
	second := engine.Fracture(1, testBlock(), rng, debris)

	assert.Equal(t, n+second.Shards+second.Chips+second.Dust, debris.Len())
	assert.Empty(t, engine.arena.points)
	assert.Equal(t, 1, second.Block)

	// Earlier fragments keep their own geometry after the arena is reused.
	for i := 0; i < first.Shards; i++ {
		fr := debris.Fragments[i]
		for _, v := range fr.Mesh.Vertices {
			assert.Less(t, v.Pos.Len(), float32(2))
		}
	}
}

func TestSafeNormalize(t *testing.T) {
	assert.Equal(t, mgl32.Vec3{}, safeNormalize(mgl32.Vec3{}))
	assert.True(t, safeNormalize(mgl32.Vec3{0, 3, 4}).ApproxEqual(mgl32.Vec3{0, 0.6, 0.8}))
}
