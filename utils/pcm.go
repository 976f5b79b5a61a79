// SPDX-License-Identifier: EPL-2.0

package utils

// fullScale returns the magnitude of the most negative sample for a bit depth.
func fullScale(bitDepth int) float64 {
	switch bitDepth {
	case 8:
		return 128.0
	case 24:
		return 8388608.0
	case 32:
		return 2147483648.0
	default:
		return 32768.0
	}
}

// Float32ToPCM converts a normalized sample into a signed integer sample of
// the given bit depth (8, 16, 24 or 32). Unknown depths are treated as 16.
func Float32ToPCM(x float32, bitDepth int) int {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	scale := fullScale(bitDepth) - 1
	return int(float64(x) * scale)
}

// PCMToFloat32 converts a signed integer sample of the given bit depth back
// into the [-1, 1] range.
func PCMToFloat32(v int, bitDepth int) float32 {
	return float32(float64(v) / fullScale(bitDepth))
}
