package rubble

// EventLog keeps the most recent fracture events, oldest first.
type EventLog struct {
	limit  int
	events []FractureEvent
}

func NewEventLog(limit int) *EventLog {
	if limit <= 0 {
		limit = 1
	}
	return &EventLog{limit: limit, events: make([]FractureEvent, 0, limit)}
}

func (l *EventLog) Add(ev FractureEvent) {
	if len(l.events) == l.limit {
		copy(l.events, l.events[1:])
		l.events = l.events[:len(l.events)-1]
	}
	l.events = append(l.events, ev)
}

// Events returns a copy of the retained events.
func (l *EventLog) Events() []FractureEvent {
	out := make([]FractureEvent, len(l.events))
	copy(out, l.events)
	return out
}

func (l *EventLog) Last() (FractureEvent, bool) {
	if len(l.events) == 0 {
		return FractureEvent{}, false
	}
	return l.events[len(l.events)-1], true
}

func (l *EventLog) Len() int { return len(l.events) }

type DestructionModule struct {
	Fracture     FractureConfig
	EventLogSize int
}

func (mod DestructionModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(
		NewFractureEngine(mod.Fracture),
		NewEventLog(mod.EventLogSize),
	)

	app.UseSystem(
		System(DestructionSystem).
			InStage(PostUpdate),
	)
}

// DestructionSystem drains the blocks queued with Commands.DestroyBlock.
func DestructionSystem(cmd *Commands, world *World, debris *Debris, engine *FractureEngine, rng *Random, metrics *Metrics, events *EventLog) {
	for _, index := range cmd.takeDestroys() {
		if ev, ok := destroyBlock(world, debris, engine, rng, metrics, cmd.Logger(), index); ok {
			events.Add(ev)
		}
	}
}

// destroyBlock deactivates the block, fractures it into debris and rebuilds
// the grid before returning. Unknown or already destroyed blocks are ignored.
func destroyBlock(world *World, debris *Debris, engine *FractureEngine, rng *Random, metrics *Metrics, logger Logger, index int) (FractureEvent, bool) {
	b, err := world.Block(index)
	if err != nil {
		logger.Debugf("destroy ignored: %v", err)
		return FractureEvent{}, false
	}
	if !b.Active {
		logger.Debugf("destroy ignored: block %d already destroyed", index)
		return FractureEvent{}, false
	}
	block := *b
	world.Deactivate(index)

	ev := engine.Fracture(index, block, rng, debris)
	world.RebuildGrid()
	metrics.instrumentFracture(ev)

	logger.Debugf("fracture %s: block %d at %v, %d pieces -> %d shards (%d discarded, %d split), %d chips, %d dust, %d triangles",
		ev.ID, index, block.Position, ev.Pieces, ev.Shards, ev.Discarded, ev.Splits, ev.Chips, ev.Dust, ev.Triangles)
	return ev, true
}
