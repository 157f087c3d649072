package rubble

import (
	"time"
)

// StepStats counts what one physics step did to the fragment collection.
type StepStats struct {
	Integrated int
	Expired    int
	FellOut    int
}

func (s StepStats) Retired() int {
	return s.Expired + s.FellOut
}

// StepFragments integrates every active fragment once and then compacts the
// collection. Retired fragments are gone when it returns.
func StepFragments(physics *PhysicsWorld, world *World, debris *Debris, dt float32, metrics *Metrics) StepStats {
	var stats StepStats
	if world != nil {
		world.EnsureGrid()
	}
	for i := range debris.Fragments {
		fr := &debris.Fragments[i]
		if !fr.Active {
			continue
		}
		stats.Integrated++
		switch reason := physics.Integrate(fr, world, dt); reason {
		case RetireExpired:
			stats.Expired++
			metrics.instrumentRetired(reason)
		case RetireFellOut:
			stats.FellOut++
			metrics.instrumentRetired(reason)
		}
	}
	debris.Compact()
	return stats
}

type FragmentPhysicsModule struct {
	Config PhysicsConfig
}

func (mod FragmentPhysicsModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(NewPhysicsWorld(mod.Config))

	app.UseSystem(
		System(FragmentPhysicsSystem).
			InStage(Update),
	)
}

func FragmentPhysicsSystem(t *Time, physics *PhysicsWorld, world *World, debris *Debris, metrics *Metrics, cmd *Commands) {
	dt := t.Seconds()
	if dt <= 0 || debris.Len() == 0 {
		return
	}
	start := time.Now()
	stats := StepFragments(physics, world, debris, dt, metrics)
	metrics.instrumentStep(time.Since(start).Seconds())

	if stats.Retired() > 0 {
		cmd.Logger().Debugf("tick %d: integrated %d fragments, %d expired, %d fell out",
			t.Tick, stats.Integrated, stats.Expired, stats.FellOut)
	}
}
