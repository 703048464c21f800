// Package noise provides seeded 2D simplex noise and fractal sums of it,
// used to lay out terrain colors before tiles are chosen.
package noise

import (
	"math"

	"wang-painter/internal/random"
)

// Skew factors for two dimensions.
const (
	skew   = 0.3660254037844386  // (sqrt(3) - 1) / 2
	unskew = 0.21132486540518713 // (3 - sqrt(3)) / 6
)

// Simplex is a seeded 2D simplex noise source. It is read-only after
// construction and safe for concurrent use.
type Simplex struct {
	perm [512]uint8
}

// New returns the noise source for seed.
func New(seed uint64) *Simplex {
	var p [256]uint8
	for i := range p {
		p[i] = uint8(i)
	}
	random.New(seed).Shuffle(len(p), func(i, j int) { p[i], p[j] = p[j], p[i] })

	s := &Simplex{}
	for i := range s.perm {
		s.perm[i] = p[i&255]
	}
	return s
}

func (s *Simplex) hash(i, j int) int {
	return int(s.perm[i+int(s.perm[j])])
}

// gradient returns the dot product of one of eight gradient directions
// with (x, y).
func gradient(hash int, x, y float64) float64 {
	h := hash & 7
	if h >= 4 {
		x, y = y, x
	}
	if h&1 != 0 {
		x = -x
	}
	if h&2 != 0 {
		y = -y
	}
	return x + y
}

// corner is the falloff-weighted contribution of one simplex corner.
func corner(hash int, x, y float64) float64 {
	t := 0.5 - x*x - y*y
	if t <= 0 {
		return 0
	}
	t *= t
	return t * t * gradient(hash, x, y)
}

// At returns the noise value at (x, y), in [-1, 1].
func (s *Simplex) At(x, y float64) float64 {
	k := (x + y) * skew
	i := math.Floor(x + k)
	j := math.Floor(y + k)

	u := (i + j) * unskew
	x0, y0 := x-(i-u), y-(j-u)

	// Lower or upper triangle of the skewed cell.
	di, dj := 0, 1
	if x0 > y0 {
		di, dj = 1, 0
	}
	x1, y1 := x0-float64(di)+unskew, y0-float64(dj)+unskew
	x2, y2 := x0-1+2*unskew, y0-1+2*unskew

	ii, jj := int(i)&255, int(j)&255
	n := corner(s.hash(ii, jj), x0, y0) +
		corner(s.hash(ii+di, jj+dj), x1, y1) +
		corner(s.hash(ii+1, jj+1), x2, y2)
	return 70 * n
}

// Fractal configures a sum of noise octaves.
type Fractal struct {
	Frequency   float64 `json:"frequency"`
	Octaves     int     `json:"octaves"`
	Lacunarity  float64 `json:"lacunarity"`
	Persistence float64 `json:"persistence"`
}

// DefaultFractal suits maps a few dozen to a few hundred cells across.
func DefaultFractal() Fractal {
	return Fractal{Frequency: 0.08, Octaves: 4, Lacunarity: 2, Persistence: 0.5}
}

// Sample sums the octaves of f at (x, y) and maps the result to [0, 1].
func (s *Simplex) Sample(f Fractal, x, y float64) float64 {
	if f.Octaves <= 0 {
		f.Octaves = 1
	}
	freq, amp := f.Frequency, 1.0
	var total, maxAmp float64
	for o := 0; o < f.Octaves; o++ {
		total += s.At(x*freq, y*freq) * amp
		maxAmp += amp
		freq *= f.Lacunarity
		amp *= f.Persistence
	}
	v := (total/maxAmp + 1) / 2
	return min(max(v, 0), 1)
}

// Level maps a [0, 1] sample to one of n evenly sized bands, 1 through n.
func Level(v float64, n int) int {
	if n <= 1 {
		return 1
	}
	return min(int(v*float64(n)), n-1) + 1
}
