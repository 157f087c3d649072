package rubble

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDt = float32(1.0 / 60.0)

func flatPhysics() *PhysicsWorld {
	cfg := DefaultConfig().Physics
	cfg.GroundY = 0
	return NewPhysicsWorld(cfg)
}

func testFragment(pos mgl32.Vec3) Fragment {
	return Fragment{
		Kind:        KindShard,
		Position:    pos,
		Scale:       mgl32.Vec3{1, 1, 1},
		MaxLifetime: 10,
		Active:      true,
	}
}

func TestPhysics_FallsUnderGravity(t *testing.T) {
	physics := flatPhysics()
	fr := testFragment(mgl32.Vec3{0, 10, 0})

	for i := 0; i < 10; i++ {
		physics.Integrate(&fr, nil, testDt)
	}

	if fr.Position.Y() >= 10 {
		t.Errorf("Fragment should have fallen, but Y = %f", fr.Position.Y())
	}
	if fr.Velocity.Y() >= 0 {
		t.Errorf("Fragment should have negative velocity, but VY = %f", fr.Velocity.Y())
	}
}

func TestPhysics_TerminalVelocity(t *testing.T) {
	physics := flatPhysics()
	fr := testFragment(mgl32.Vec3{0, 40, 0})
	fr.Eternal = true
	fr.Velocity = mgl32.Vec3{0, -100, 0}

	physics.Integrate(&fr, nil, testDt)
	assert.GreaterOrEqual(t, fr.Velocity.Y(), -physics.Config().TerminalVelocity)
}

func TestPhysics_DragNeverReverses(t *testing.T) {
	cfg := DefaultConfig().Physics
	cfg.AirDrag = 1000
	physics := NewPhysicsWorld(cfg)

	vel := mgl32.Vec3{3, 0, -4}
	physics.applyDrag(&vel, 1)
	assert.True(t, vel.ApproxEqualThreshold(mgl32.Vec3{}, 1e-5))

	slow := mgl32.Vec3{0.0005, 0, 0}
	physics.applyDrag(&slow, 1)
	assert.Equal(t, mgl32.Vec3{0.0005, 0, 0}, slow, "below the drag threshold nothing changes")
}

func TestPhysics_DropSettlesOnGround(t *testing.T) {
	physics := flatPhysics()
	fr := testFragment(mgl32.Vec3{0, 2, 0})
	fr.Eternal = true
	fr.Velocity = mgl32.Vec3{0.5, 0, -0.3}
	fr.Spin = mgl32.Vec3{1, 0.5, -1}

	for i := 0; i < 600; i++ {
		require.Equal(t, RetireNone, physics.Integrate(&fr, nil, testDt))
	}

	assert.InDelta(t, 0.5, fr.Position.Y(), 1e-5, "rests half its size above the ground")
	assert.Equal(t, float32(0), fr.Velocity.Y())
	assert.Equal(t, mgl32.Vec3{}, fr.Velocity)
	assert.Equal(t, mgl32.Vec3{}, fr.Spin)
}

func TestPhysics_RestingFragmentStaysPut(t *testing.T) {
	physics := flatPhysics()
	fr := testFragment(mgl32.Vec3{1, 0.5, 2})
	fr.Eternal = true
	fr.Rotation = mgl32.Vec3{0.1, 0.2, 0.3}

	for i := 0; i < 120; i++ {
		physics.Integrate(&fr, nil, testDt)
		assert.Equal(t, mgl32.Vec3{1, 0.5, 2}, fr.Position)
		assert.Equal(t, mgl32.Vec3{}, fr.Velocity)
		assert.Equal(t, mgl32.Vec3{}, fr.Spin)
	}
	assert.Equal(t, mgl32.Vec3{0.1, 0.2, 0.3}, fr.Rotation)
}

func TestPhysics_HardImpactBounces(t *testing.T) {
	physics := flatPhysics()
	fr := testFragment(mgl32.Vec3{0, 0.4, 0})
	fr.Velocity = mgl32.Vec3{2, -5, 0}

	physics.resolveGround(&fr, fr.Size())

	assert.Equal(t, float32(0.5), fr.Position.Y())
	assert.InDelta(t, 1.0, fr.Velocity.Y(), 1e-5)
	assert.InDelta(t, 1.4, fr.Velocity.X(), 1e-5)
	assert.InDelta(t, -1.4*physics.Config().SpinTransfer, fr.Spin.Z(), 1e-5)
}

func TestPhysics_BlockSideContact(t *testing.T) {
	physics := flatPhysics()
	world := newTestWorld()
	world.AddBlock(mgl32.Vec3{0, 5, 0}, mgl32.Vec3{1, 1, 1}, BlockBuilding)
	world.RebuildGrid()

	fr := testFragment(mgl32.Vec3{0.7, 5, 0})
	fr.Velocity = mgl32.Vec3{2, 1, 0.5}

	landed := physics.resolveBlocks(&fr, world, fr.Size())

	assert.False(t, landed)
	assert.InDelta(t, 0.8, fr.Position.X(), 1e-5)
	assert.Equal(t, float32(5), fr.Position.Y())
	assert.InDelta(t, -0.4, fr.Velocity.X(), 1e-5)
	assert.Equal(t, float32(1), fr.Velocity.Y())
	assert.Equal(t, float32(0.5), fr.Velocity.Z())
}

func TestPhysics_LandsOnBlockTop(t *testing.T) {
	physics := flatPhysics()
	world := newTestWorld()
	world.AddBlock(mgl32.Vec3{0, 5, 0}, mgl32.Vec3{1, 1, 1}, BlockBuilding)
	world.RebuildGrid()

	fr := testFragment(mgl32.Vec3{0, 5.7, 0})
	fr.Velocity = mgl32.Vec3{0, -0.1, 0}

	landed := physics.resolveBlocks(&fr, world, fr.Size())

	assert.True(t, landed)
	assert.InDelta(t, 5.8, fr.Position.Y(), 1e-5)
	assert.Equal(t, float32(0), fr.Velocity.Y())
}

func TestPhysics_HitsBlockFromBelow(t *testing.T) {
	physics := flatPhysics()
	world := newTestWorld()
	world.AddBlock(mgl32.Vec3{0, 5, 0}, mgl32.Vec3{1, 1, 1}, BlockBuilding)
	world.RebuildGrid()

	fr := testFragment(mgl32.Vec3{0, 4.3, 0})
	fr.Velocity = mgl32.Vec3{2, 3, 1}

	landed := physics.resolveBlocks(&fr, world, fr.Size())

	transfer := physics.Config().SpinTransfer
	assert.False(t, landed)
	assert.InDelta(t, 4.2, fr.Position.Y(), 1e-5)
	assert.InDelta(t, -0.6, fr.Velocity.Y(), 1e-5)
	assert.InDelta(t, 1.4, fr.Velocity.X(), 1e-5)
	assert.InDelta(t, 0.7, fr.Velocity.Z(), 1e-5)
	assert.InDelta(t, 0.7*transfer, fr.Spin.X(), 1e-5)
	assert.InDelta(t, -1.4*transfer, fr.Spin.Z(), 1e-5)
}

func TestPhysics_IgnoresDestroyedBlocks(t *testing.T) {
	physics := flatPhysics()
	world := newTestWorld()
	idx := world.AddBlock(mgl32.Vec3{0, 5, 0}, mgl32.Vec3{1, 1, 1}, BlockBuilding)
	world.RebuildGrid()
	world.Deactivate(idx)

	fr := testFragment(mgl32.Vec3{0.7, 5, 0})
	fr.Velocity = mgl32.Vec3{2, 1, 0.5}

	assert.False(t, physics.resolveBlocks(&fr, world, fr.Size()))
	assert.Equal(t, mgl32.Vec3{0.7, 5, 0}, fr.Position, "stale grid cells point at an inactive block")
}

func TestPhysics_Expiry(t *testing.T) {
	physics := flatPhysics()
	fr := testFragment(mgl32.Vec3{0, 0.5, 0})
	fr.MaxLifetime = 1

	assert.Equal(t, RetireNone, physics.Integrate(&fr, nil, 0.5))
	assert.True(t, fr.Active)
	assert.Equal(t, RetireExpired, physics.Integrate(&fr, nil, 0.5))
	assert.False(t, fr.Active)
	assert.Equal(t, RetireNone, physics.Integrate(&fr, nil, 0.5), "inactive fragments are skipped")
}

func TestPhysics_EternalNeverExpires(t *testing.T) {
	physics := flatPhysics()
	fr := testFragment(mgl32.Vec3{0, 0.5, 0})
	fr.MaxLifetime = 0.1
	fr.Eternal = true

	for i := 0; i < 1000; i++ {
		require.Equal(t, RetireNone, physics.Integrate(&fr, nil, testDt))
	}
	assert.True(t, fr.Active)
	assert.Zero(t, fr.Lifetime)
}

func TestPhysics_KillFloor(t *testing.T) {
	cfg := DefaultConfig().Physics
	cfg.GroundY = -1000
	physics := NewPhysicsWorld(cfg)

	fr := testFragment(mgl32.Vec3{0, cfg.KillFloor + 0.1, 0})
	fr.Eternal = true
	fr.Velocity = mgl32.Vec3{0, -10, 0}

	assert.Equal(t, RetireFellOut, physics.Integrate(&fr, nil, 0.1))
	assert.False(t, fr.Active)
}

func TestStepFragments_Compacts(t *testing.T) {
	cfg := DefaultConfig().Physics
	cfg.GroundY = -1000
	physics := NewPhysicsWorld(cfg)
	world := newTestWorld()

	debris := &Debris{}
	expiring := testFragment(mgl32.Vec3{0, 3, 0})
	expiring.MaxLifetime = 0.05
	falling := testFragment(mgl32.Vec3{0, cfg.KillFloor + 0.01, 0})
	falling.Eternal = true
	falling.Velocity = mgl32.Vec3{0, -10, 0}
	keeper := testFragment(mgl32.Vec3{5, 3, 5})
	keeper.Eternal = true

	debris.Spawn(expiring)
	debris.Spawn(falling)
	debris.Spawn(keeper)

	stats := StepFragments(physics, world, debris, 0.1, nil)

	assert.Equal(t, 3, stats.Integrated)
	assert.Equal(t, 1, stats.Expired)
	assert.Equal(t, 1, stats.FellOut)
	assert.Equal(t, 2, stats.Retired())
	require.Equal(t, 1, debris.Len(), "retired fragments are gone in the same step")
	assert.Equal(t, float32(5), debris.Fragments[0].Position.X())
	assert.True(t, debris.Fragments[0].Active)
}

func TestFragmentPhysicsSystem(t *testing.T) {
	app := NewAppBuilder().
		UseModule(
			TimeModule{},
			MetricsModule{},
			SpatialGridModule{Size: 16, Height: 8, Offset: 4},
			LifecycleModule{},
			FragmentPhysicsModule{Config: DefaultConfig().Physics},
		).
		Build()

	debris := Resource[Debris](app)
	require.NotNil(t, debris)
	debris.Spawn(testFragment(mgl32.Vec3{0, 5, 0}))

	app.Step(0)
	assert.Equal(t, float32(5), debris.Fragments[0].Position.Y(), "a zero step leaves fragments alone")

	app.Step(DefaultConfig().Physics.MaxDt)
	assert.Less(t, debris.Fragments[0].Position.Y(), float32(5))
}
