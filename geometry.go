package tether

import "math"

// --- Scalar helpers ---

// clampFloat limits v to the range [lo, hi]. When lo > hi (an envelope
// smaller than the node), the result pins to lo.
func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// snapToStep rounds v to the nearest multiple of step. Step must be
// positive; callers handle zero and negative steps before calling.
func snapToStep(v, step float64) float64 {
	return math.Round(v/step) * step
}

// --- Scale normalization ---

// inverseScaleFor derives the multiplier that converts pointer-space deltas
// into layout-space deltas: the node's layout width divided by its rendered
// world width. Degenerate geometry (zero layout or rendered width) yields 1
// so pointer deltas pass through unchanged.
func inverseScaleFor(layoutWidth float64, rendered Rect) float64 {
	if layoutWidth == 0 || rendered.Width == 0 {
		return 1
	}
	return layoutWidth / rendered.Width
}
