package rubble

import (
	"time"
)

const defaultMaxDt = 50 * time.Millisecond

// Time is the per-tick clock. Dt is already clamped to MaxDt when systems see it.
type Time struct {
	Time  time.Time
	Dt    time.Duration
	MaxDt time.Duration
	Tick  uint64

	manual  bool
	pending time.Duration
}

// Seconds returns Dt in seconds.
func (t *Time) Seconds() float32 {
	return float32(t.Dt.Seconds())
}

type TimeModule struct {
	MaxDt time.Duration
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	maxDt := mod.MaxDt
	if maxDt <= 0 {
		maxDt = defaultMaxDt
	}
	cmd.AddResources(&Time{
		Time:  time.Now(),
		Dt:    0,
		MaxDt: maxDt,
	})
	app.UseSystem(System(timeSystem).InStage(Prelude))
}

func timeSystem(timeResource *Time) {
	now := time.Now()

	dt := now.Sub(timeResource.Time)
	if timeResource.manual {
		dt = timeResource.pending
	}
	if dt < 0 {
		dt = 0
	}
	if dt > timeResource.MaxDt {
		dt = timeResource.MaxDt
	}

	timeResource.Dt = dt
	timeResource.Time = now
	timeResource.Tick++
}
