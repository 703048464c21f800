package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"wang-painter/internal/filler"
	"wang-painter/internal/grid"
	"wang-painter/internal/maps"
	"wang-painter/internal/render"
	"wang-painter/internal/tileset"
)

func runViz(args []string) int {
	fs := flag.NewFlagSet("viz", flag.ExitOnError)
	setPath := fs.String("tileset", "", "tile set file (default: built-in grass and water)")
	pngPath := fs.String("png", "", "write a PNG image instead of printing ANSI blocks")
	scale := fs.Int("scale", 4, "PNG pixels per tile slot")
	fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: wangtool viz [-tileset file] [-png out.png] [-scale N] <map-file>")
		return 1
	}

	m, set, err := loadMapWithSet(fs.Arg(0), *setPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	oracle, err := m.Oracle()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	seams := filler.New(set, oracle).Mismatched(m.Layer)

	if *pngPath != "" {
		img, err := render.Image(m, set, seams, *scale)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		f, err := os.Create(*pngPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		if err := render.WritePNG(f, img); err != nil {
			f.Close()
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		if err := f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stderr, "Wrote %s (%dx%d)\n", *pngPath, img.Bounds().Dx(), img.Bounds().Dy())
		return 0
	}

	fmt.Print(ansiMap(m, set, seams))
	fmt.Printf("%s: %dx%d, %d mismatched\n", m.Name, m.Width, m.Height, seams.Len())
	return 0
}

// ansiMap draws each cell as three rows of three colored blocks. Empty
// cells are left dark and mismatched cells are marked with '!'.
func ansiMap(m *maps.Map, set *tileset.TileSet, marked grid.Region) string {
	pal := render.NewPalette(set)
	var sb strings.Builder
	for y := 0; y < m.Height; y++ {
		for row := 0; row < 3; row++ {
			for x := 0; x < m.Width; x++ {
				p := grid.Pt(x, y)
				id, placed := m.Layer.CellAt(p)
				w, known := set.WangIDOf(id)
				for col := 0; col < 3; col++ {
					c := render.Cell{Ch: ' ', Bg: render.EmptyColor}
					switch {
					case placed && known:
						c.Bg = pal.TileBlock(w)[row][col]
					case placed:
						c.Bg = render.InvalidColor
					}
					if row == 1 && col == 1 && marked.Contains(p) {
						c.Ch, c.Fg, c.Bold = '!', render.InvalidColor.Lighten(), true
					}
					render.WriteCellSGR(&sb, c)
				}
			}
			sb.WriteString(render.Reset)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
