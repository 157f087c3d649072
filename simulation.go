package rubble

import (
	"context"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// CoreModules returns the modules of a complete simulation in install order.
// Systems sharing a stage run in this order too.
func CoreModules(cfg Config, logger Logger) []Module {
	return []Module{
		LoggingModule{Debug: cfg.Sim.Debug, Logger: logger},
		TimeModule{MaxDt: cfg.Physics.MaxDt},
		RandomModule{Seed: cfg.Sim.Seed},
		MetricsModule{Namespace: cfg.Metrics.Namespace},
		SpatialGridModule{Size: cfg.Grid.Size, Height: cfg.Grid.Height, Offset: cfg.Grid.Offset},
		LifecycleModule{FragmentTimeout: cfg.Fracture.FragmentTimeout},
		FragmentPhysicsModule{Config: cfg.Physics},
		DestructionModule{Fracture: cfg.Fracture, EventLogSize: cfg.Sim.EventLogSize},
		MeshModule{ViewDistance: cfg.Sim.ViewDistance},
		SnapshotModule{},
	}
}

// Simulation is the single owner of one destructible world: blocks, grid,
// fragments and the random stream. It is driven from one goroutine.
type Simulation struct {
	cfg Config
	app *App
}

// NewSimulation validates cfg and installs every core module. A nil logger
// logs to stdout and stderr.
func NewSimulation(cfg Config, logger Logger) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	app := NewAppBuilder().
		UseModule(CoreModules(cfg, logger)...).
		Build()
	return &Simulation{cfg: cfg, app: app}, nil
}

func (s *Simulation) App() *App         { return s.app }
func (s *Simulation) Config() Config    { return s.cfg }
func (s *Simulation) Logger() Logger    { return s.app.Logger() }
func (s *Simulation) World() *World     { return Resource[World](s.app) }
func (s *Simulation) Debris() *Debris   { return Resource[Debris](s.app) }
func (s *Simulation) Metrics() *Metrics { return Resource[Metrics](s.app) }
func (s *Simulation) Viewer() *Viewer   { return Resource[Viewer](s.app) }
func (s *Simulation) Fragments() []Fragment {
	return s.Debris().Fragments
}

func (s *Simulation) AddBlock(pos, color mgl32.Vec3, typ BlockType) int {
	return s.World().AddBlock(pos, color, typ)
}

// DestroyBlock fractures the block right away: when it returns the block is
// inactive, its debris is live and the grid no longer contains it. It reports
// false for unknown or already destroyed blocks.
func (s *Simulation) DestroyBlock(index int) bool {
	ev, ok := destroyBlock(
		s.World(),
		s.Debris(),
		Resource[FractureEngine](s.app),
		Resource[Random](s.app),
		s.Metrics(),
		s.Logger(),
		index,
	)
	if ok {
		Resource[EventLog](s.app).Add(ev)
	}
	return ok
}

// Step advances the whole simulation by one tick of dt, clamped to the
// configured maximum.
func (s *Simulation) Step(dt time.Duration) {
	s.app.Step(dt)
}

// Run advances the simulation on wall-clock time every interval until ctx is
// cancelled.
func (s *Simulation) Run(ctx context.Context, interval time.Duration) {
	s.app.Run(ctx, interval)
}

func (s *Simulation) QueryOccupancy(x, y, z int) bool {
	w := s.World()
	w.EnsureGrid()
	return w.Grid.Occupied(x, y, z)
}

func (s *Simulation) QueryFaceVisible(pos mgl32.Vec3, face Face) bool {
	w := s.World()
	w.EnsureGrid()
	return w.Grid.FaceVisible(pos, face)
}

func (s *Simulation) Raycast(origin, dir mgl32.Vec3, reach float32) (RaycastHit, bool) {
	w := s.World()
	w.EnsureGrid()
	return w.Raycast(origin, dir, reach)
}

func (s *Simulation) CollidesBody(pos mgl32.Vec3, radius, height float32) bool {
	w := s.World()
	w.EnsureGrid()
	return w.CollidesBody(pos, radius, height)
}

// SetEternal and ClearFragments take effect after the current stage, or
// immediately when called between ticks.
func (s *Simulation) SetEternal(eternal bool) {
	s.app.Commands().SetEternal(eternal)
	s.app.FlushCommands()
}

func (s *Simulation) ClearFragments() {
	s.app.Commands().ClearFragments()
	s.app.FlushCommands()
}

func (s *Simulation) Events() []FractureEvent {
	return Resource[EventLog](s.app).Events()
}

// Meshes returns the frame last published by the Render stage, or nil before
// the first tick.
func (s *Simulation) Meshes() *MeshSnapshot {
	return Resource[MeshSnapshotContainer](s.app).Get()
}
