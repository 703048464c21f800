package render

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/draw"

	"wang-painter/internal/grid"
	"wang-painter/internal/maps"
	"wang-painter/internal/tileset"
	"wang-painter/internal/topology"
)

// slotPx is the side of one slot square in an unscaled image. A cell is
// three slots wide, so half a cell is a whole number of pixels.
const slotPx = 2

const cellPx = 3 * slotPx

// Image draws m as a raster with each cell a 3x3 block of slot colors,
// enlarged scale times with nearest neighbor sampling. Shifted rows or
// columns of staggered layouts move by half a cell.
func Image(m *maps.Map, set *tileset.TileSet, invalid grid.Region, scale int) (image.Image, error) {
	if m == nil || m.Width <= 0 || m.Height <= 0 {
		return nil, errors.New("render: empty map")
	}
	if scale < 1 {
		scale = 1
	}
	oracle, err := m.Oracle()
	if err != nil {
		return nil, err
	}
	stagger, staggered := oracle.(topology.Stagger)

	w, h := m.Width*cellPx, m.Height*cellPx
	if staggered {
		if stagger.Axis == topology.StaggerX {
			h += cellPx / 2
		} else {
			w += cellPx / 2
		}
	}
	src := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(src, src.Bounds(), image.NewUniform(rgba(EmptyColor)), image.Point{}, draw.Src)

	palette := NewPalette(set)
	for _, p := range m.Bounds().Points() {
		var block Block
		id, placed := m.TileAt(p.X, p.Y)
		wid, known := set.WangIDOf(id)
		switch {
		case invalid.Contains(p):
			block = solid(InvalidColor)
		case !placed:
			continue
		case !known:
			block = solid(UnsetColor)
		default:
			block = palette.TileBlock(wid)
		}

		ox, oy := p.X*cellPx, p.Y*cellPx
		if staggered {
			if stagger.Axis == topology.StaggerX && stagger.Shifted(p.X) {
				oy += cellPx / 2
			} else if stagger.Axis != topology.StaggerX && stagger.Shifted(p.Y) {
				ox += cellPx / 2
			}
		}
		for y := 0; y < 3; y++ {
			for x := 0; x < 3; x++ {
				r := image.Rect(ox+x*slotPx, oy+y*slotPx, ox+(x+1)*slotPx, oy+(y+1)*slotPx)
				draw.Draw(src, r, image.NewUniform(rgba(block[y][x])), image.Point{}, draw.Src)
			}
		}
	}

	if scale == 1 {
		return src, nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, w*scale, h*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst, nil
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

func rgba(c RGB) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}
