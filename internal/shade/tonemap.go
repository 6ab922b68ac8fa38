package shade

import "scanline-renderer/internal/config"

// ACES applies the ACES filmic tone curve to a linear value.
func ACES(x float32) float32 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}

// ToneMap applies the configured exposure and tone curve to a straight linear
// colour channel.
func ToneMap(cfg *config.RenderConfig, x float32) float32 {
	x *= cfg.Exposure
	if cfg.ToneMap == config.ToneACES && x > 0 {
		return ACES(x)
	}
	return x
}
