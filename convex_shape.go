package rubble

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	onPlaneEpsilon = 1e-5
	capDedupeSq    = 0.0001
	parallelDenom  = 1e-8
	minNormalSq    = 1e-12
)

// ConvexShape is the scratch polyhedron of one fracture call. Faces are
// closed loops of points; Cut[i] marks faces created by a clipping plane.
// Shapes share the backing storage of the arena that built them and must not
// outlive the fracture call.
type ConvexShape struct {
	Faces [][]mgl32.Vec3
	Cut   []bool
}

// shapeArena hands out point and face slices from buffers that are reused
// between fracture calls. A nil arena falls back to plain allocation.
type shapeArena struct {
	points []mgl32.Vec3
	faces  [][]mgl32.Vec3
	cuts   []bool
}

func (a *shapeArena) reset() {
	if a == nil {
		return
	}
	a.points = a.points[:0]
	a.faces = a.faces[:0]
	a.cuts = a.cuts[:0]
}

// allocPoints returns an empty slice with room for n points. Appending past n
// reallocates instead of overwriting a neighbour.
func (a *shapeArena) allocPoints(n int) []mgl32.Vec3 {
	if a == nil {
		return make([]mgl32.Vec3, 0, n)
	}
	start := len(a.points)
	a.points = append(a.points, make([]mgl32.Vec3, n)...)
	return a.points[start:start:start+n]
}

func (a *shapeArena) allocFaces(n int) ([][]mgl32.Vec3, []bool) {
	if a == nil {
		return make([][]mgl32.Vec3, 0, n), make([]bool, 0, n)
	}
	fs, cs := len(a.faces), len(a.cuts)
	a.faces = append(a.faces, make([][]mgl32.Vec3, n)...)
	a.cuts = append(a.cuts, make([]bool, n)...)
	return a.faces[fs:fs:fs+n], a.cuts[cs:cs:cs+n]
}

var cubeCorners = [8]mgl32.Vec3{
	{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
	{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
}

// cubeFaceLoops wind each face counter-clockwise seen from outside, in the
// order -Z, +Z, -X, +X, -Y, +Y.
var cubeFaceLoops = [6][4]int{
	{0, 3, 2, 1},
	{4, 5, 6, 7},
	{0, 4, 7, 3},
	{1, 2, 6, 5},
	{0, 1, 5, 4},
	{3, 7, 6, 2},
}

// newCubeShape builds an axis-aligned cube with the given half extent.
func newCubeShape(arena *shapeArena, center mgl32.Vec3, half float32) ConvexShape {
	faces, cuts := arena.allocFaces(len(cubeFaceLoops))
	for _, loop := range cubeFaceLoops {
		pts := arena.allocPoints(4)
		for _, c := range loop {
			pts = append(pts, center.Add(cubeCorners[c].Mul(half)))
		}
		faces = append(faces, pts)
		cuts = append(cuts, false)
	}
	return ConvexShape{Faces: faces, Cut: cuts}
}

// NewCubeShape builds a standalone cube shape outside any fracture call.
func NewCubeShape(center mgl32.Vec3, half float32) ConvexShape {
	return newCubeShape(nil, center, half)
}

func (s ConvexShape) Empty() bool {
	return len(s.Faces) == 0
}

// Center is the mean of every face vertex. Shared corners count once per face.
func (s ConvexShape) Center() mgl32.Vec3 {
	var sum mgl32.Vec3
	n := 0
	for _, f := range s.Faces {
		for _, p := range f {
			sum = sum.Add(p)
			n++
		}
	}
	if n == 0 {
		return mgl32.Vec3{}
	}
	return sum.Mul(1 / float32(n))
}

// Volume sums the tetrahedra formed by the interior centre and each fan
// triangle of every face.
func (s ConvexShape) Volume() float32 {
	c := s.Center()
	var vol float32
	for _, f := range s.Faces {
		if len(f) < 3 {
			continue
		}
		a := f[0].Sub(c)
		for i := 1; i < len(f)-1; i++ {
			b := f[i].Sub(c)
			d := f[i+1].Sub(c)
			vol += abs32(a.Dot(b.Cross(d))) / 6
		}
	}
	return vol
}

// Clip keeps the part of the shape on the side of the plane that normal
// points to and caps the opening with a single cut face. A shape entirely on
// the far side comes back empty. A zero normal leaves the shape unchanged.
func (s ConvexShape) Clip(planePoint, normal mgl32.Vec3) ConvexShape {
	return s.clip(nil, planePoint, normal)
}

func (s ConvexShape) clip(arena *shapeArena, planePoint, normal mgl32.Vec3) ConvexShape {
	if normal.LenSqr() < minNormalSq {
		return s
	}
	inside := func(p mgl32.Vec3) bool {
		return p.Sub(planePoint).Dot(normal) >= 0
	}
	if s.allInside(inside) {
		return s
	}

	faces, cuts := arena.allocFaces(len(s.Faces) + 1)
	capPoints := arena.allocPoints(2 * len(s.Faces))

	for fi, face := range s.Faces {
		out := arena.allocPoints(len(face) + 2)
		for i := range face {
			curr := face[i]
			next := face[(i+1)%len(face)]
			currIn, nextIn := inside(curr), inside(next)
			if currIn {
				out = append(out, curr)
				if abs32(curr.Sub(planePoint).Dot(normal)) < onPlaneEpsilon {
					capPoints = append(capPoints, curr)
				}
			}
			if currIn != nextIn {
				hit := intersectPlane(curr, next, planePoint, normal)
				out = append(out, hit)
				capPoints = append(capPoints, hit)
			}
		}
		if len(out) < 3 {
			continue
		}
		faces = append(faces, out)
		cuts = append(cuts, s.Cut[fi])
	}

	if len(faces) == 0 {
		return ConvexShape{}
	}

	if capFace := buildCap(arena, capPoints, normal); capFace != nil {
		faces = append(faces, capFace)
		cuts = append(cuts, true)
	}
	return ConvexShape{Faces: faces, Cut: cuts}
}

func (s ConvexShape) allInside(inside func(mgl32.Vec3) bool) bool {
	for _, f := range s.Faces {
		for _, p := range f {
			if !inside(p) {
				return false
			}
		}
	}
	return true
}

// intersectPlane returns the point where segment a-b crosses the plane,
// clamped to the segment. A segment parallel to the plane yields a.
func intersectPlane(a, b, planePoint, normal mgl32.Vec3) mgl32.Vec3 {
	ab := b.Sub(a)
	denom := ab.Dot(normal)
	if abs32(denom) < parallelDenom {
		return a
	}
	t := planePoint.Sub(a).Dot(normal) / denom
	t = mgl32.Clamp(t, 0, 1)
	return a.Add(ab.Mul(t))
}

// buildCap dedupes the points lying on the cut plane and orders them by
// angle around their centroid. Fewer than three unique points yield nil.
func buildCap(arena *shapeArena, points []mgl32.Vec3, normal mgl32.Vec3) []mgl32.Vec3 {
	unique := arena.allocPoints(len(points))
	for _, p := range points {
		dup := false
		for _, u := range unique {
			if p.Sub(u).LenSqr() < capDedupeSq {
				dup = true
				break
			}
		}
		if !dup {
			unique = append(unique, p)
		}
	}
	if len(unique) < 3 {
		return nil
	}

	var cc mgl32.Vec3
	for _, p := range unique {
		cc = cc.Add(p)
	}
	cc = cc.Mul(1 / float32(len(unique)))

	refDir := safeNormalize(unique[0].Sub(cc))
	rightDir := normal.Cross(refDir)
	if rightDir.LenSqr() < 0.001 {
		alt := mgl32.Vec3{0, 1, 0}
		if abs32(normal.Y()) > 0.9 {
			alt = mgl32.Vec3{1, 0, 0}
		}
		rightDir = normal.Cross(alt)
		refDir = rightDir.Cross(normal)
	}
	rightDir = safeNormalize(rightDir)
	refDir = safeNormalize(refDir)

	sort.SliceStable(unique, func(i, j int) bool {
		di := unique[i].Sub(cc)
		dj := unique[j].Sub(cc)
		ai := math.Atan2(float64(di.Dot(rightDir)), float64(di.Dot(refDir)))
		aj := math.Atan2(float64(dj.Dot(rightDir)), float64(dj.Dot(refDir)))
		return ai < aj
	})
	return unique
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
