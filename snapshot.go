package rubble

import (
	"sync/atomic"
)

// MeshSnapshot is one published frame. Its meshes are never written again.
type MeshSnapshot struct {
	Tick      uint64
	Blocks    *Mesh
	Fragments *Mesh
	Live      int
}

// MeshSnapshotContainer hands the latest frame to a renderer running on
// another goroutine.
type MeshSnapshotContainer struct {
	latest atomic.Pointer[MeshSnapshot]
}

func (c *MeshSnapshotContainer) Update(s *MeshSnapshot) {
	c.latest.Store(s)
}

func (c *MeshSnapshotContainer) Get() *MeshSnapshot {
	return c.latest.Load()
}

type SnapshotModule struct{}

func (SnapshotModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&MeshSnapshotContainer{})

	app.UseSystem(
		System(publishSnapshotSystem).
			InStage(Render),
	)
}

func publishSnapshotSystem(t *Time, frame *FrameMesh, debris *Debris, container *MeshSnapshotContainer) {
	container.Update(&MeshSnapshot{
		Tick:      t.Tick,
		Blocks:    frame.Blocks,
		Fragments: frame.Fragments,
		Live:      debris.Len(),
	})
}
