package gen

// FlatParams returns params for a flat world whose surface height is base
// everywhere: grass at base-1, dirt from base-4 to base-2, stone below.
func FlatParams(seed int64, base float64) Params {
	return Params{
		Seed:            seed,
		BaseHeight:      base,
		HeightVariation: 0,
		Roughness:       0.02,
		NoiseLayers:     1,
	}
}
