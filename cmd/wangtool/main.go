package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	get "github.com/hashicorp/go-getter"

	"wang-painter/internal/filler"
	"wang-painter/internal/grid"
	"wang-painter/internal/maps"
	"wang-painter/internal/tileset"
	"wang-painter/internal/wang"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "validate":
		os.Exit(runValidate(args))
	case "gen":
		os.Exit(runGen(args))
	case "viz":
		os.Exit(runViz(args))
	case "stats":
		os.Exit(runStats(args))
	case "fetch":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "Usage: wangtool fetch <url> <dir>")
			os.Exit(1)
		}
		os.Exit(runFetch(args[0], args[1]))
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: wangtool <command> [flags] <path>

Commands:
  validate <tileset-dir> [maps-dir]   Validate tile sets, and maps against them
  gen      [flags]                    Generate a map (see wangtool gen -h)
  viz      [flags] <map-file>         Render a map as ANSI blocks or PNG
  stats    [flags] <map-file>         Show tile and color distribution and seams
  fetch    <url> <dir>                Download tile sets (any go-getter URL) and validate them`)
}

// loadSet reads the tile set file at path, or returns the built-in set
// when path is empty.
func loadSet(path string) (*tileset.TileSet, error) {
	if path == "" {
		return tileset.Default(), nil
	}
	return tileset.Load(path)
}

// loadMapWithSet reads a map and the tile set it is painted with.
func loadMapWithSet(mapPath, setPath string) (*maps.Map, *tileset.TileSet, error) {
	m, err := maps.LoadMap(mapPath)
	if err != nil {
		return nil, nil, err
	}
	set, err := loadSet(setPath)
	if err != nil {
		return nil, nil, err
	}
	if err := m.Validate(set); err != nil {
		return nil, nil, err
	}
	return m, set, nil
}

// --- validate ---

func runValidate(args []string) int {
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(os.Stderr, "Usage: wangtool validate <tileset-dir> [maps-dir]")
		return 1
	}
	sets, err := tileset.LoadDir(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
		return 1
	}
	def := tileset.Default()
	if _, ok := sets[def.Name]; !ok {
		sets[def.Name] = def
	}

	for _, name := range sortedKeys(sets) {
		s := sets[name]
		status := "incomplete"
		if s.IsComplete() {
			status = "complete"
		}
		fmt.Printf("Tile set %q: %d colors, %d tiles (%d of %d, %s)\n",
			name, s.ColorCount(), len(s.Tiles), len(s.Tiles), s.CompleteSetSize(), status)
	}
	if len(args) == 1 {
		fmt.Printf("\nAll %d tile sets valid\n", len(sets))
		return 0
	}

	allMaps, err := maps.LoadMaps(args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
		return 1
	}
	errors := 0
	for _, name := range sortedKeys(allMaps) {
		m := allMaps[name]
		fmt.Printf("Validating %q...\n", name)
		set, ok := sets[m.TileSet]
		if !ok {
			fmt.Printf("  ERROR: unknown tile set %q\n", m.TileSet)
			errors++
			continue
		}
		if err := m.Validate(set); err != nil {
			fmt.Printf("  ERROR: %v\n", err)
			errors++
			continue
		}
		if !m.Bounds().Contains(m.Spawn) {
			fmt.Printf("  ERROR: spawn %v is outside the map\n", m.Spawn)
			errors++
			continue
		}
		oracle, err := m.Oracle()
		if err != nil {
			fmt.Printf("  ERROR: %v\n", err)
			errors++
			continue
		}
		seams := filler.New(set, oracle).Mismatched(m.Layer)
		fmt.Printf("  OK (%dx%d, %d tiles, %d mismatched)\n", m.Width, m.Height, m.Layer.Len(), seams.Len())
	}

	if errors > 0 {
		fmt.Printf("\n%d error(s) found\n", errors)
		return 1
	}
	fmt.Printf("\nAll %d maps valid\n", len(allMaps))
	return 0
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// --- stats ---

func runStats(args []string) int {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	setPath := fs.String("tileset", "", "tile set file (default: built-in grass and water)")
	fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: wangtool stats [-tileset file] <map-file>")
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

	total := m.Width * m.Height
	fmt.Printf("%s (%dx%d = %d cells, %s)\n\n", m.Name, m.Width, m.Height, total, set.Name)

	tiles := make(map[tileset.TileID]int)
	colors := make([]int, set.ColorCount()+1)
	m.Layer.Each(func(_ grid.Point, id tileset.TileID) {
		tiles[id]++
		w, _ := set.WangIDOf(id)
		for i := 0; i < wang.NumSlots; i++ {
			colors[w.IndexColor(i)]++
		}
	})

	type entry struct {
		name  string
		count int
	}
	var sorted []entry
	for id, count := range tiles {
		sorted = append(sorted, entry{tileLabel(set, id), count})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].name < sorted[j].name
	})

	fmt.Println("Tiles:")
	for _, e := range sorted {
		pct := float64(e.count) / float64(total) * 100
		bar := strings.Repeat("█", int(pct/2))
		fmt.Printf("  %-20s %5d (%5.1f%%) %s\n", e.name, e.count, pct, bar)
	}

	slots := 0
	for c := 1; c < len(colors); c++ {
		slots += colors[c]
	}
	fmt.Println("\nColors:")
	for c := 1; c < len(colors); c++ {
		pct := 0.0
		if slots > 0 {
			pct = float64(colors[c]) / float64(slots) * 100
		}
		fmt.Printf("  %-20s %5d slots (%5.1f%%)\n", set.ColorName(c), colors[c], pct)
	}

	empty := total - m.Layer.Len()
	seams := filler.New(set, oracle).Mismatched(m.Layer)
	fmt.Printf("\nEmpty:      %d/%d (%.1f%%)\n", empty, total, float64(empty)/float64(total)*100)
	fmt.Printf("Mismatched: %d\n", seams.Len())
	return 0
}

func tileLabel(set *tileset.TileSet, id tileset.TileID) string {
	if t, ok := set.Tile(id); ok && t.Name != "" {
		return fmt.Sprintf("%d %s", id, t.Name)
	}
	return fmt.Sprintf("tile %d", id)
}

// --- fetch ---

func runFetch(src, dir string) int {
	abs, err := filepath.Abs(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := get.Get(abs, src); err != nil {
		fmt.Fprintf(os.Stderr, "Error: fetch %s: %v\n", src, err)
		return 1
	}
	fmt.Printf("Downloaded %s into %s\n\n", src, abs)
	return runValidate([]string{abs})
}
