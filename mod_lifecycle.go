package rubble

// LifecycleModule owns the live fragment collection. Expiry itself happens in
// the physics step; this module applies the buffered clear and eternal
// commands and keeps the population gauges current.
type LifecycleModule struct {
	FragmentTimeout float32
}

// fragmentTimeout is the lifetime restored when eternal mode is switched off.
type fragmentTimeout struct {
	seconds float32
}

func (mod LifecycleModule) Install(app *App, cmd *Commands) {
	timeout := mod.FragmentTimeout
	if timeout <= 0 {
		timeout = defaultFragmentTimeout
	}
	cmd.AddResources(&Debris{}, &fragmentTimeout{seconds: timeout})

	app.UseSystem(
		System(lifecycleGaugeSystem).
			InStage(PostRender),
	)
}

func lifecycleGaugeSystem(debris *Debris, world *World, metrics *Metrics) {
	metrics.instrumentLive(debris.Len(), world.ActiveCount())
}

// applyFragmentCommands runs the clear and eternal toggles queued through
// Commands. Clear runs first so a toggle in the same tick sees no fragments.
func (app *App) applyFragmentCommands() {
	if !app.pendingClear && app.pendingEternal == nil {
		return
	}
	clearAll, eternal := app.pendingClear, app.pendingEternal
	app.pendingClear = false
	app.pendingEternal = nil

	debris := Resource[Debris](app)
	if debris == nil {
		return
	}

	if clearAll {
		n := debris.Clear()
		app.Logger().Debugf("cleared %d fragments", n)
	}

	if eternal != nil {
		timeout := float32(defaultFragmentTimeout)
		if t := Resource[fragmentTimeout](app); t != nil {
			timeout = t.seconds
		}
		if engine := Resource[FractureEngine](app); engine != nil {
			engine.cfg.Eternal = *eternal
		}
		debris.SetEternal(*eternal, timeout)
		app.Logger().Debugf("eternal fragments %v on %d live fragments", *eternal, debris.Len())
	}
}
