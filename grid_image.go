package rubble

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var sliceBackground = color.RGBA{R: 16, G: 16, B: 20, A: 255}

// SliceImage renders one horizontal layer of the grid, one pixel per voxel.
// Occupied cells take their block colour; +X runs right and +Z runs down.
func SliceImage(world *World, y int) *image.RGBA {
	lo, hi := world.Grid.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, hi[0]-lo[0], hi[2]-lo[2]))
	for x := lo[0]; x < hi[0]; x++ {
		for z := lo[2]; z < hi[2]; z++ {
			c := sliceBackground
			if _, b := world.activeBlockAt(x, y, z); b != nil {
				c = color.RGBA{
					R: uint8(clamp01(b.Color.X()) * 255),
					G: uint8(clamp01(b.Color.Y()) * 255),
					B: uint8(clamp01(b.Color.Z()) * 255),
					A: 255,
				}
			}
			img.SetRGBA(x-lo[0], z-lo[2], c)
		}
	}
	return img
}

// ScaleImage enlarges src by an integer factor without smoothing so single
// voxels stay crisp.
func ScaleImage(src image.Image, factor int) *image.RGBA {
	if factor < 1 {
		factor = 1
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

// LabelImage draws text in the top-left corner.
func LabelImage(img *image.RGBA, text string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(4, 13),
	}
	d.DrawString(text)
}

func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
