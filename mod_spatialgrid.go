package rubble

import (
	"github.com/go-gl/mathgl/mgl32"
)

// EmptyCell is returned for empty and out-of-bounds cells.
const EmptyCell = -1

// Face names one of the six axis directions of a voxel.
type Face int

const (
	FaceNegZ Face = iota
	FacePosZ
	FaceNegX
	FacePosX
	FaceNegY
	FacePosY
)

var faceOffsets = [6][3]int{
	FaceNegZ: {0, 0, -1},
	FacePosZ: {0, 0, 1},
	FaceNegX: {-1, 0, 0},
	FacePosX: {1, 0, 0},
	FaceNegY: {0, -1, 0},
	FacePosY: {0, 1, 0},
}

func (f Face) Offset() [3]int {
	if f < FaceNegZ || f > FacePosY {
		return [3]int{}
	}
	return faceOffsets[f]
}

func (f Face) Normal() mgl32.Vec3 {
	o := f.Offset()
	return mgl32.Vec3{float32(o[0]), float32(o[1]), float32(o[2])}
}

// VoxelGrid is a dense bounded index from voxel coordinates to block
// indices. Writes outside the bounds are ignored and reads outside return
// EmptyCell.
type VoxelGrid struct {
	size   int
	height int
	offset int
	cells  []int32
}

func NewVoxelGrid(size, height, offset int) *VoxelGrid {
	grid := &VoxelGrid{
		size:   size,
		height: height,
		offset: offset,
		cells:  make([]int32, size*height*size),
	}
	grid.Clear()
	return grid
}

// cellIndex is the only place voxel coordinates are mapped to storage.
func (grid *VoxelGrid) cellIndex(x, y, z int) (int, bool) {
	x += grid.offset
	z += grid.offset
	if x < 0 || x >= grid.size || y < 0 || y >= grid.height || z < 0 || z >= grid.size {
		return 0, false
	}
	return (x*grid.height+y)*grid.size + z, true
}

func (grid *VoxelGrid) Clear() {
	for i := range grid.cells {
		grid.cells[i] = EmptyCell
	}
}

func (grid *VoxelGrid) Set(x, y, z, index int) {
	if i, ok := grid.cellIndex(x, y, z); ok {
		grid.cells[i] = int32(index)
	}
}

func (grid *VoxelGrid) Get(x, y, z int) int {
	if i, ok := grid.cellIndex(x, y, z); ok {
		return int(grid.cells[i])
	}
	return EmptyCell
}

func (grid *VoxelGrid) Occupied(x, y, z int) bool {
	return grid.Get(x, y, z) != EmptyCell
}

// Contains reports whether the voxel coordinate lies inside the grid bounds.
func (grid *VoxelGrid) Contains(x, y, z int) bool {
	_, ok := grid.cellIndex(x, y, z)
	return ok
}

// Bounds returns the inclusive min and exclusive max voxel coordinates.
func (grid *VoxelGrid) Bounds() (lo, hi [3]int) {
	lo = [3]int{-grid.offset, 0, -grid.offset}
	hi = [3]int{grid.size - grid.offset, grid.height, grid.size - grid.offset}
	return lo, hi
}

// Rebuild clears the grid and inserts every active block at its rounded position.
func (grid *VoxelGrid) Rebuild(blocks []Block) {
	grid.Clear()
	for i := range blocks {
		if !blocks[i].Active {
			continue
		}
		c := VoxelCoord(blocks[i].Position)
		grid.Set(c[0], c[1], c[2], i)
	}
}

// FaceVisible reports whether the neighbour of the voxel at pos across face
// is unoccupied. Used to cull interior faces when meshing blocks.
func (grid *VoxelGrid) FaceVisible(pos mgl32.Vec3, face Face) bool {
	if face < FaceNegZ || face > FacePosY {
		return true
	}
	c := VoxelCoord(pos)
	o := faceOffsets[face]
	return !grid.Occupied(c[0]+o[0], c[1]+o[1], c[2]+o[2])
}

type SpatialGridModule struct {
	Size   int
	Height int
	Offset int
}

func (m SpatialGridModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(NewWorld(NewVoxelGrid(m.Size, m.Height, m.Offset)))

	app.UseSystem(
		System(UpdateSpatialGridSystem).InStage(PostUpdate),
	)
}

// UpdateSpatialGridSystem rebuilds the grid after any structural change made
// during the tick (blocks added or destroyed).
func UpdateSpatialGridSystem(world *World) {
	world.EnsureGrid()
}
