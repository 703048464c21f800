package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"wang-painter/internal/logger"
	"wang-painter/internal/maps"
	"wang-painter/internal/terrain"
	"wang-painter/internal/topology"
)

func runGen(args []string) int {
	fs := flag.NewFlagSet("gen", flag.ExitOnError)
	setPath := fs.String("tileset", "", "tile set file (default: built-in grass and water)")
	size := fs.String("size", "64x32", "map size as WxH")
	seed := fs.Uint64("seed", 0, "random seed (0 = random)")
	name := fs.String("name", "Generated", "map name")
	orientation := fs.String("orientation", string(topology.Orthogonal), "map orientation (orthogonal, staggered)")
	axis := fs.String("stagger-axis", string(topology.StaggerY), "stagger axis for staggered maps (x, y)")
	index := fs.String("stagger-index", string(topology.StaggerOdd), "shifted rows or columns for staggered maps (odd, even)")
	out := fs.String("out", "", "output file, .json or .zst (default: stdout)")
	debug := fs.Bool("debug", false, "log every generated chunk")
	fs.Parse(args)

	w, h, err := parseSize(*size)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	set, err := loadSet(*setPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	layout := topology.Descriptor{
		Orientation:  topology.Orientation(*orientation),
		StaggerAxis:  topology.StaggerAxis(*axis),
		StaggerIndex: topology.StaggerIndex(*index),
	}
	oracle, err := topology.New(layout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if *seed == 0 {
		*seed = uint64(time.Now().UnixNano())
	}

	log, err := logger.New(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer log.Sync()
	ctx := logger.NewContext(context.Background(), log)

	fmt.Fprintf(os.Stderr, "Generating %dx%d map %q from %q (seed %d)...\n", w, h, *name, set.Name, *seed)

	p := terrain.DefaultParams()
	p.Width, p.Height, p.Seed = w, h, *seed
	layer, res, err := terrain.Generate(ctx, set, oracle, p)
	if err != nil {
		log.Error("generate failed", zap.Error(err))
		return 1
	}

	m := maps.New(*name, w, h, set.Name, layout)
	m.Layer = layer

	if *out == "" {
		if err := m.Encode(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	} else {
		if err := maps.SaveMap(*out, m); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", *out)
	}

	total := w * h
	fmt.Fprintf(os.Stderr, "Filled %d/%d cells, %d erased, %d unsatisfiable\n",
		res.Filled, total, res.Erased, res.Invalid.Len())
	return 0
}

func parseSize(s string) (int, int, error) {
	parts := strings.SplitN(s, "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid size %q (expected WxH)", s)
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil || w < 1 {
		return 0, 0, fmt.Errorf("invalid width %q (minimum 1)", parts[0])
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil || h < 1 {
		return 0, 0, fmt.Errorf("invalid height %q (minimum 1)", parts[1])
	}
	if w > maps.MaxCells/h {
		return 0, 0, fmt.Errorf("size %q exceeds %d cells", s, maps.MaxCells)
	}
	return w, h, nil
}
