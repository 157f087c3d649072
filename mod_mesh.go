package rubble

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Viewer is the point the host renders from. Blocks farther than
// ViewDistance on the horizontal plane are left out of the block mesh; zero
// disables the cull.
type Viewer struct {
	Position     mgl32.Vec3
	ViewDistance float32
}

// FrameMesh holds the triangle lists handed to the renderer. Both meshes are
// replaced, never mutated, once built, so a published frame stays valid.
type FrameMesh struct {
	Blocks    *Mesh
	Fragments *Mesh

	blockVersion uint64
	blockViewer  Viewer
	built        bool
}

// BuildBlockMesh emits one shaded quad per visible face of every active block
// within view distance of viewer.
func BuildBlockMesh(world *World, viewer Viewer) *Mesh {
	m := &Mesh{}
	maxDistSq := viewer.ViewDistance * viewer.ViewDistance
	for i := range world.Blocks {
		b := &world.Blocks[i]
		if !b.Active {
			continue
		}
		if viewer.ViewDistance > 0 {
			dx := b.Position.X() - viewer.Position.X()
			dz := b.Position.Z() - viewer.Position.Z()
			if dx*dx+dz*dz > maxDistSq {
				continue
			}
		}
		appendBlockCube(m, world, b)
	}
	return m
}

func appendBlockCube(m *Mesh, world *World, b *Block) {
	const h = BlockSize * 0.5
	var corners [8]mgl32.Vec3
	for k, c := range cubeCorners {
		corners[k] = b.Position.Add(c.Mul(h))
	}
	for f, loop := range cubeFaceLoops {
		face := Face(f)
		if world.Grid != nil && !world.Grid.FaceVisible(b.Position, face) {
			continue
		}
		n := face.Normal()
		m.addQuad(corners[loop[0]], corners[loop[1]], corners[loop[2]], corners[loop[3]], n, b.Color.Mul(faceShade(n)))
	}
}

// BuildFragmentMesh transforms every active fragment's local mesh into world
// space.
func BuildFragmentMesh(debris *Debris, sizeHint int) *Mesh {
	m := &Mesh{}
	if sizeHint > 0 {
		m.Vertices = make([]Vertex, 0, sizeHint)
	}
	for i := range debris.Fragments {
		fr := &debris.Fragments[i]
		if !fr.Active {
			continue
		}
		m.appendTransformed(&fr.Mesh, fr.WorldVertex)
	}
	return m
}

type MeshModule struct {
	ViewDistance float32
}

func (mod MeshModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(
		&Viewer{ViewDistance: mod.ViewDistance},
		&FrameMesh{},
	)

	app.UseSystem(
		System(MeshBuildSystem).
			InStage(PreRender),
	)
}

// MeshBuildSystem rebuilds the block mesh only when the world or the viewer
// changed and the fragment mesh every tick.
func MeshBuildSystem(world *World, debris *Debris, viewer *Viewer, frame *FrameMesh, cmd *Commands) {
	world.EnsureGrid()
	if !frame.built || frame.blockVersion != world.Version() || frame.blockViewer != *viewer {
		frame.Blocks = BuildBlockMesh(world, *viewer)
		frame.blockVersion = world.Version()
		frame.blockViewer = *viewer
		frame.built = true
		cmd.Logger().Debugf("block mesh rebuilt: %d triangles", frame.Blocks.TriangleCount())
	}

	hint := 0
	if frame.Fragments != nil {
		hint = len(frame.Fragments.Vertices)
	}
	frame.Fragments = BuildFragmentMesh(debris, hint)
}
