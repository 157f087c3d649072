package rubble

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const BlockSize float32 = 1.0

var ErrBlockIndex = errors.New("block index out of range")

type BlockType int

const (
	BlockGround BlockType = iota
	BlockStreet
	BlockBuilding
	BlockDecoration
)

func (t BlockType) String() string {
	switch t {
	case BlockGround:
		return "ground"
	case BlockStreet:
		return "street"
	case BlockBuilding:
		return "building"
	case BlockDecoration:
		return "decoration"
	default:
		return fmt.Sprintf("BlockType(%d)", int(t))
	}
}

// Block is a unit voxel centred on Position. Destroyed blocks keep their slot
// with Active cleared so grid payloads stay valid.
type Block struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
	Active   bool
	Type     BlockType
}

// World owns the block collection and the grid derived from it.
type World struct {
	Blocks []Block
	Grid   *VoxelGrid

	dirty   bool
	version uint64
}

func NewWorld(grid *VoxelGrid) *World {
	return &World{Grid: grid}
}

// AddBlock appends an active block and returns its index. The grid is stale
// until the next rebuild.
func (w *World) AddBlock(pos, color mgl32.Vec3, typ BlockType) int {
	w.Blocks = append(w.Blocks, Block{Position: pos, Color: color, Active: true, Type: typ})
	w.markDirty()
	return len(w.Blocks) - 1
}

func (w *World) Block(index int) (*Block, error) {
	if index < 0 || index >= len(w.Blocks) {
		return nil, fmt.Errorf("%w: %d (have %d)", ErrBlockIndex, index, len(w.Blocks))
	}
	return &w.Blocks[index], nil
}

// Deactivate clears the active flag. It reports false when the block was
// already inactive or the index is invalid.
func (w *World) Deactivate(index int) bool {
	b, err := w.Block(index)
	if err != nil || !b.Active {
		return false
	}
	b.Active = false
	w.markDirty()
	return true
}

func (w *World) ActiveCount() int {
	n := 0
	for i := range w.Blocks {
		if w.Blocks[i].Active {
			n++
		}
	}
	return n
}

// RebuildGrid clears the grid and reinserts every active block.
func (w *World) RebuildGrid() {
	if w.Grid == nil {
		return
	}
	w.Grid.Rebuild(w.Blocks)
	w.dirty = false
}

// EnsureGrid rebuilds only if the block collection changed since the last rebuild.
func (w *World) EnsureGrid() {
	if w.dirty {
		w.RebuildGrid()
	}
}

func (w *World) Dirty() bool { return w.dirty }

// Version increments on every structural change.
func (w *World) Version() uint64 { return w.version }

func (w *World) markDirty() {
	w.dirty = true
	w.version++
}

// activeBlockAt resolves a grid cell to an active block.
func (w *World) activeBlockAt(x, y, z int) (int, *Block) {
	if w.Grid == nil {
		return EmptyCell, nil
	}
	idx := w.Grid.Get(x, y, z)
	if idx < 0 || idx >= len(w.Blocks) || !w.Blocks[idx].Active {
		return EmptyCell, nil
	}
	return idx, &w.Blocks[idx]
}

// VoxelCoord rounds a continuous position to the nearest voxel, half away
// from zero on each axis.
func VoxelCoord(p mgl32.Vec3) [3]int {
	return [3]int{
		int(math.Round(float64(p.X()))),
		int(math.Round(float64(p.Y()))),
		int(math.Round(float64(p.Z()))),
	}
}
