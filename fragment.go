package rubble

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type FragmentKind int

const (
	KindShard FragmentKind = iota
	KindChip
	KindDust
)

func (k FragmentKind) String() string {
	switch k {
	case KindShard:
		return "shard"
	case KindChip:
		return "chip"
	case KindDust:
		return "dust"
	default:
		return "unknown"
	}
}

// Vertex carries an un-lit base colour; lighting and fog are applied by the renderer.
type Vertex struct {
	Pos    mgl32.Vec3
	Normal mgl32.Vec3
	Color  mgl32.Vec3
}

// Mesh is an indexed triangle list.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

func (m *Mesh) Reset() {
	m.Vertices = m.Vertices[:0]
	m.Indices = m.Indices[:0]
}

// addFan triangulates a convex loop as a fan from its first point.
func (m *Mesh) addFan(points []mgl32.Vec3, offset, normal, color mgl32.Vec3) {
	base := uint32(len(m.Vertices))
	for _, p := range points {
		m.Vertices = append(m.Vertices, Vertex{Pos: p.Sub(offset), Normal: normal, Color: color})
	}
	for i := 1; i < len(points)-1; i++ {
		m.Indices = append(m.Indices, base, base+uint32(i), base+uint32(i)+1)
	}
}

func (m *Mesh) addTriangle(a, b, c Vertex) {
	base := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, a, b, c)
	m.Indices = append(m.Indices, base, base+1, base+2)
}

func (m *Mesh) addQuad(a, b, c, d, normal, color mgl32.Vec3) {
	base := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices,
		Vertex{Pos: a, Normal: normal, Color: color},
		Vertex{Pos: b, Normal: normal, Color: color},
		Vertex{Pos: c, Normal: normal, Color: color},
		Vertex{Pos: d, Normal: normal, Color: color},
	)
	m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
}

// appendTransformed appends src with each vertex mapped through fn.
func (m *Mesh) appendTransformed(src *Mesh, fn func(Vertex) Vertex) {
	base := uint32(len(m.Vertices))
	for _, v := range src.Vertices {
		m.Vertices = append(m.Vertices, fn(v))
	}
	for _, idx := range src.Indices {
		m.Indices = append(m.Indices, base+idx)
	}
}

// Fragment is one simulated debris piece. Mesh positions are relative to
// Position. Rotation holds Euler angles in radians applied X, then Y, then Z.
type Fragment struct {
	Kind     FragmentKind
	Source   uuid.UUID
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	Rotation mgl32.Vec3
	Spin     mgl32.Vec3
	Scale    mgl32.Vec3
	Color    mgl32.Vec3
	Mesh     Mesh

	Lifetime    float32
	MaxLifetime float32
	Eternal     bool
	Active      bool
}

// Size approximates the fragment's extent by its mean scale.
func (f *Fragment) Size() float32 {
	return (f.Scale.X() + f.Scale.Y() + f.Scale.Z()) / 3.0
}

// WorldVertex maps a local mesh vertex to world space: scale, rotate about
// X, Y, Z in that order, then translate.
func (f *Fragment) WorldVertex(v Vertex) Vertex {
	p := mgl32.Vec3{v.Pos.X() * f.Scale.X(), v.Pos.Y() * f.Scale.Y(), v.Pos.Z() * f.Scale.Z()}
	rot := f.rotationMatrix()
	v.Pos = rot.Mul3x1(p).Add(f.Position)
	v.Normal = rot.Mul3x1(v.Normal)
	return v
}

func (f *Fragment) rotationMatrix() mgl32.Mat3 {
	return mgl32.Rotate3DZ(f.Rotation.Z()).
		Mul3(mgl32.Rotate3DY(f.Rotation.Y())).
		Mul3(mgl32.Rotate3DX(f.Rotation.X()))
}

// Debris is the live fragment collection. Retired fragments are flagged
// inactive and dropped by Compact; order is not preserved.
type Debris struct {
	Fragments []Fragment
}

func (d *Debris) Spawn(f Fragment) {
	d.Fragments = append(d.Fragments, f)
}

func (d *Debris) Len() int { return len(d.Fragments) }

// Compact swap-removes every inactive fragment and returns how many were removed.
func (d *Debris) Compact() int {
	removed := 0
	i := 0
	for i < len(d.Fragments) {
		if d.Fragments[i].Active {
			i++
			continue
		}
		last := len(d.Fragments) - 1
		d.Fragments[i] = d.Fragments[last]
		d.Fragments[last] = Fragment{}
		d.Fragments = d.Fragments[:last]
		removed++
	}
	return removed
}

// Clear drops every fragment and returns how many there were.
func (d *Debris) Clear() int {
	n := len(d.Fragments)
	clear(d.Fragments)
	d.Fragments = d.Fragments[:0]
	return n
}

// SetEternal flips the eternal flag on every live fragment. Turning it off
// restarts each fragment's lifetime with the given timeout.
func (d *Debris) SetEternal(eternal bool, timeout float32) {
	for i := range d.Fragments {
		f := &d.Fragments[i]
		f.Eternal = eternal
		if !eternal {
			f.Lifetime = 0
			f.MaxLifetime = timeout
		}
	}
}

// CountKind returns how many fragments of the given kind are live.
func (d *Debris) CountKind(kind FragmentKind) int {
	n := 0
	for i := range d.Fragments {
		if d.Fragments[i].Kind == kind {
			n++
		}
	}
	return n
}
