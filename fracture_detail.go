package rubble

import (
	"github.com/go-gl/mathgl/mgl32"
)

// faceShade approximates a fixed overhead light: top brightest, bottom
// darkest, X-facing sides darker than Z-facing ones.
func faceShade(n mgl32.Vec3) float32 {
	switch {
	case n.Y() > 0.5:
		return 1.0
	case n.Y() < -0.5:
		return 0.4
	case abs32(n.X()) > 0.5:
		return 0.7
	default:
		return 0.8
	}
}

// varyColor scales c and adds an independent uniform offset in
// [-spread, spread) per channel, clamped to [0,1].
func varyColor(c mgl32.Vec3, scale, spread float32, rng *Random) mgl32.Vec3 {
	return mgl32.Vec3{
		mgl32.Clamp(c.X()*scale+rng.Float(-spread, spread), 0, 1),
		mgl32.Clamp(c.Y()*scale+rng.Float(-spread, spread), 0, 1),
		mgl32.Clamp(c.Z()*scale+rng.Float(-spread, spread), 0, 1),
	}
}

func faceNormal(face []mgl32.Vec3) mgl32.Vec3 {
	return safeNormalize(face[1].Sub(face[0]).Cross(face[2].Sub(face[0])))
}

func faceCentroid(face []mgl32.Vec3) mgl32.Vec3 {
	var c mgl32.Vec3
	for _, p := range face {
		c = c.Add(p)
	}
	return c.Mul(1 / float32(len(face)))
}

// shapeToMesh appends the shaded faces of shape, positioned relative to
// center, plus the damage overlays of each face.
func shapeToMesh(m *Mesh, shape ConvexShape, center, color mgl32.Vec3, crackDepths int, rng *Random) {
	for fi, face := range shape.Faces {
		if len(face) < 3 {
			continue
		}
		cut := fi < len(shape.Cut) && shape.Cut[fi]
		n := faceNormal(face)
		shade := faceShade(n)

		var fc mgl32.Vec3
		if cut {
			fc = varyColor(color, shade*0.55, 0.03, rng)
		} else {
			fc = varyColor(color, shade, 0.015, rng)
		}
		m.addFan(face, center, n, fc)

		if cut {
			addCutSurfaceDetail(m, face, center, n, color, rng)
			for d := 1; d <= crackDepths; d++ {
				addMicroCracks(m, face, center, n, color, d, rng)
			}
		} else if rng.ZeroIn(3) {
			addMicroCracks(m, face, center, n, color, 1, rng)
		}
	}
}

// addCutSurfaceDetail fakes a broken interior with two rough triangles per
// edge, bulged slightly along the normal.
func addCutSurfaceDetail(m *Mesh, face []mgl32.Vec3, center, n, color mgl32.Vec3, rng *Random) {
	fc := faceCentroid(face).Sub(center)
	offset := n.Mul(0.001)

	for i := range face {
		a := face[i].Sub(center)
		b := face[(i+1)%len(face)].Sub(center)
		mid := a.Add(b).Mul(0.5)
		mid = mid.Add(n.Mul(rng.Float(-0.01, 0.01)))

		innerA := a.Add(fc.Sub(a).Mul(0.15))
		innerB := b.Add(fc.Sub(b).Mul(0.15))

		rough := varyColor(color, 0.45, 0.04, rng)
		rough2 := varyColor(color, 0.55, 0.04, rng)

		m.addTriangle(
			Vertex{Pos: a.Add(offset), Normal: n, Color: rough},
			Vertex{Pos: mid.Add(offset), Normal: n, Color: rough2},
			Vertex{Pos: innerA.Add(offset), Normal: n, Color: rough},
		)
		m.addTriangle(
			Vertex{Pos: mid.Add(offset), Normal: n, Color: rough2},
			Vertex{Pos: b.Add(offset), Normal: n, Color: rough},
			Vertex{Pos: innerB.Add(offset), Normal: n, Color: rough2},
		)
	}
}

// addMicroCracks draws 2-4 bent crack strips from random corners towards
// the face centre. Deeper levels get more segments, thinner lines and a
// chance of one side branch per crack.
func addMicroCracks(m *Mesh, face []mgl32.Vec3, center, n, color mgl32.Vec3, depth int, rng *Random) {
	if len(face) < 3 || depth <= 0 {
		return
	}
	dark := color.Mul(0.15)
	end := faceCentroid(face).Sub(center)
	width := 0.006 / float32(depth)
	offset := n.Mul(0.001 * float32(depth))
	segments := 3 + depth

	cracks := rng.Int(2, 4)
	for c := 0; c < cracks; c++ {
		start := face[rng.Int(0, len(face)-1)].Sub(center)
		prev := start

		for s := 1; s <= segments; s++ {
			t := float32(s) / float32(segments)
			curr := mgl32.Vec3{
				start.X() + (end.X()-start.X())*t + rng.Float(-0.08, 0.08),
				start.Y() + (end.Y()-start.Y())*t + rng.Float(-0.08, 0.08),
				start.Z() + (end.Z()-start.Z())*t + rng.Float(-0.08, 0.08),
			}

			side := safeNormalize(safeNormalize(curr.Sub(prev)).Cross(n))
			if side.LenSqr() < 0.001 {
				continue
			}
			col := varyColor(dark, 1, 0.03, rng)
			m.addQuad(
				prev.Sub(side.Mul(width)).Add(offset),
				prev.Add(side.Mul(width)).Add(offset),
				curr.Add(side.Mul(width)).Add(offset),
				curr.Sub(side.Mul(width)).Add(offset),
				n, col,
			)

			if depth > 1 && s == segments/2 && rng.ZeroIn(2) {
				branchEnd := rng.Jitter(curr.Add(side.Mul(0.1)), 0.03)
				bw := width * 0.6
				bn := safeNormalize(safeNormalize(branchEnd.Sub(curr)).Cross(n))
				if bn.LenSqr() > 0.001 {
					m.addQuad(
						curr.Sub(bn.Mul(bw)).Add(offset),
						curr.Add(bn.Mul(bw)).Add(offset),
						branchEnd.Add(bn.Mul(bw)).Add(offset),
						branchEnd.Sub(bn.Mul(bw)).Add(offset),
						n, col,
					)
				}
			}
			prev = curr
		}
	}
}

// addEdgeCracks traces every edge of each cut face with a thin dark quad.
func addEdgeCracks(m *Mesh, shape ConvexShape, center, color mgl32.Vec3) {
	dark := color.Mul(0.12)
	const thickness = 0.005

	for fi, face := range shape.Faces {
		if fi >= len(shape.Cut) || !shape.Cut[fi] || len(face) < 3 {
			continue
		}
		n := faceNormal(face)
		offset := n.Mul(0.002)

		for i := range face {
			a := face[i].Sub(center)
			b := face[(i+1)%len(face)].Sub(center)
			en := safeNormalize(safeNormalize(b.Sub(a)).Cross(n))
			if en.LenSqr() < 0.001 {
				continue
			}
			m.addQuad(
				a.Sub(en.Mul(thickness)).Add(offset),
				a.Add(en.Mul(thickness)).Add(offset),
				b.Add(en.Mul(thickness)).Add(offset),
				b.Sub(en.Mul(thickness)).Add(offset),
				n, dark,
			)
		}
	}
}
