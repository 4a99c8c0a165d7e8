package gen

import "math"

// Gradient noise over an integer lattice. Gradients come from a hash of the
// lattice coordinates, so there is no permutation table and evaluation is pure.
// Output is in [0, 1].

const (
	hashPrime1 uint64 = 11400714819323199549
	hashPrime2 uint64 = 14029467366897019727
	hashPrime3 uint64 = 1609587929392839161

	// Inputs wrap at noiseWrap, below the 20-bit hash mask.
	noiseWrap = 10000.0
)

// Hash64 mixes 2D lattice coordinates into a 64-bit hash.
// Only the low 20 bits of each coordinate participate.
func Hash64(ix, iy int64) uint64 {
	x := uint64(ix & 0xFFFFF)
	y := uint64(iy & 0xFFFFF)

	h := hashPrime1
	h = (h ^ x) * hashPrime2
	h = (h ^ y) * hashPrime3
	return h
}

// gradient returns the unit gradient vector at lattice point (ix, iy).
func gradient(ix, iy int64) (gx, gy float64) {
	h := Hash64(ix, iy)
	angle := float64(h&0xFFFFFFFF) / float64(math.MaxUint32) * 2 * math.Pi
	return math.Cos(angle), math.Sin(angle)
}

func dotGridGradient(ix, iy int64, x, y float64) float64 {
	gx, gy := gradient(ix, iy)
	return gx*(x-float64(ix)) + gy*(y-float64(iy))
}

// fade is the quintic smoothstep 6t^5 - 15t^4 + 10t^3.
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func interpolate(a0, a1, w float64) float64 {
	return a0 + (a1-a0)*fade(w)
}

// Noise returns 2D gradient noise at (x, y), in the range [0, 1].
func Noise(x, y float64) float64 {
	x = math.Mod(x, noiseWrap)
	y = math.Mod(y, noiseWrap)

	fx := math.Floor(x)
	fy := math.Floor(y)
	x0, y0 := int64(fx), int64(fy)
	x1, y1 := x0+1, y0+1

	sx := x - fx
	sy := y - fy

	n0 := dotGridGradient(x0, y0, x, y)
	n1 := dotGridGradient(x1, y0, x, y)
	ix0 := interpolate(n0, n1, sx)

	n0 = dotGridGradient(x0, y1, x, y)
	n1 = dotGridGradient(x1, y1, x, y)
	ix1 := interpolate(n0, n1, sx)

	v := interpolate(ix0, ix1, sy)
	return clamp01((v + 1) * 0.5)
}

// OctaveNoise layers octaves of Noise with persistence 0.5 and lacunarity 2,
// normalized by the sum of amplitudes. Returns a value in [0, 1].
func OctaveNoise(x, y float64, octaves int) float64 {
	if octaves < 1 {
		octaves = 1
	}

	var total, maxVal float64
	amplitude := 1.0
	frequency := 1.0

	for range octaves {
		total += Noise(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= 0.5
		frequency *= 2.0
	}
	return total / maxVal
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
