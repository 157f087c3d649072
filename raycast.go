package rubble

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultReach float32 = 8.0
	raymarchStep float32 = 0.15
	slabParallel float32 = 1e-8
	PlayerRadius float32 = 0.3
	PlayerHeight float32 = 1.7
)

type RaycastHit struct {
	Block    int
	Distance float32
	Point    mgl32.Vec3
}

// Raycast marches along dir in fixed steps and slab-tests the active blocks
// around each sample. It returns the nearest block hit within reach, checking
// nothing beyond the first sample that produced a hit.
func (w *World) Raycast(origin, dir mgl32.Vec3, reach float32) (RaycastHit, bool) {
	if w.Grid == nil || dir.LenSqr() == 0 {
		return RaycastHit{}, false
	}
	dir = dir.Normalize()
	best := RaycastHit{Block: EmptyCell, Distance: reach + 1}

	for t := float32(0); t < reach; t += raymarchStep {
		c := VoxelCoord(origin.Add(dir.Mul(t)))
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for dz := -1; dz <= 1; dz++ {
					idx, b := w.activeBlockAt(c[0]+dx, c[1]+dy, c[2]+dz)
					if b == nil {
						continue
					}
					ht, ok := rayBox(origin, dir, b.Position, BlockSize*0.5)
					if ok && ht < best.Distance && ht <= reach {
						best.Block = idx
						best.Distance = ht
					}
				}
			}
		}
		if best.Block != EmptyCell {
			best.Point = origin.Add(dir.Mul(best.Distance))
			return best, true
		}
	}
	return RaycastHit{}, false
}

// rayBox intersects a ray with an axis-aligned cube. A ray starting inside
// reports the exit distance.
func rayBox(origin, dir, center mgl32.Vec3, half float32) (float32, bool) {
	tmin := float32(-math.MaxFloat32)
	tmax := float32(math.MaxFloat32)
	for axis := 0; axis < 3; axis++ {
		lo, hi := center[axis]-half, center[axis]+half
		if abs32(dir[axis]) > slabParallel {
			t1 := (lo - origin[axis]) / dir[axis]
			t2 := (hi - origin[axis]) / dir[axis]
			if t1 > t2 {
				t1, t2 = t2, t1
			}
			tmin = max(tmin, t1)
			tmax = min(tmax, t2)
		} else if origin[axis] < lo || origin[axis] > hi {
			return 0, false
		}
	}
	if tmin > tmax || tmax <= 0 {
		return 0, false
	}
	if tmin > 0 {
		return tmin, true
	}
	return tmax, true
}

// CollidesBody reports whether an upright box with the given horizontal
// radius and height, standing at pos, overlaps any active block.
func (w *World) CollidesBody(pos mgl32.Vec3, radius, height float32) bool {
	if w.Grid == nil {
		return false
	}
	floor := func(v float32) int { return int(math.Floor(float64(v))) }
	minX, maxX := floor(pos.X()-radius-0.5), floor(pos.X()+radius+1.5)
	minY, maxY := floor(pos.Y()-0.5), floor(pos.Y()+height+1.5)
	minZ, maxZ := floor(pos.Z()-radius-0.5), floor(pos.Z()+radius+1.5)

	const h = BlockSize * 0.5
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for z := minZ; z <= maxZ; z++ {
				_, b := w.activeBlockAt(x, y, z)
				if b == nil {
					continue
				}
				bp := b.Position
				if pos.X()+radius > bp.X()-h && pos.X()-radius < bp.X()+h &&
					pos.Y()+height > bp.Y()-h && pos.Y() < bp.Y()+h &&
					pos.Z()+radius > bp.Z()-h && pos.Z()-radius < bp.Z()+h {
					return true
				}
			}
		}
	}
	return false
}
