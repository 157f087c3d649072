package rubble

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/segmentio/encoding/json"
)

type BlockData struct {
	Position mgl32.Vec3 `json:"position"`
	Color    mgl32.Vec3 `json:"color"`
	Type     BlockType  `json:"type"`
	Active   bool       `json:"active"`
}

// PresetData is the on-disk layout of a block world. Inactive blocks are kept
// so block indices survive a round trip.
type PresetData struct {
	Name   string      `json:"name,omitempty"`
	Blocks []BlockData `json:"blocks"`
}

func (t BlockType) MarshalText() ([]byte, error) {
	switch t {
	case BlockGround, BlockStreet, BlockBuilding, BlockDecoration:
		return []byte(t.String()), nil
	}
	return nil, fmt.Errorf("unknown block type %d", int(t))
}

func (t *BlockType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "ground":
		*t = BlockGround
	case "street":
		*t = BlockStreet
	case "building":
		*t = BlockBuilding
	case "decoration":
		*t = BlockDecoration
	default:
		return fmt.Errorf("unknown block type %q", text)
	}
	return nil
}

func SavePreset(world *World, name, filename string) error {
	preset := PresetData{Name: name, Blocks: make([]BlockData, 0, len(world.Blocks))}
	for _, b := range world.Blocks {
		preset.Blocks = append(preset.Blocks, BlockData{
			Position: b.Position,
			Color:    b.Color,
			Type:     b.Type,
			Active:   b.Active,
		})
	}

	bytes, err := json.MarshalIndent(preset, "", "  ")
	if err != nil {
		return fmt.Errorf("encode preset: %w", err)
	}
	if err := os.WriteFile(filename, bytes, 0644); err != nil {
		return fmt.Errorf("write preset %s: %w", filename, err)
	}
	return nil
}

// LoadPreset appends the blocks stored in filename to world and rebuilds the
// grid. It returns the number of blocks added.
func LoadPreset(world *World, filename string) (int, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return 0, fmt.Errorf("read preset %s: %w", filename, err)
	}

	var preset PresetData
	if err := json.Unmarshal(bytes, &preset); err != nil {
		return 0, fmt.Errorf("parse preset %s: %w", filename, err)
	}

	for _, b := range preset.Blocks {
		idx := world.AddBlock(b.Position, b.Color, b.Type)
		if !b.Active {
			world.Blocks[idx].Active = false
		}
	}
	world.RebuildGrid()
	return len(preset.Blocks), nil
}
