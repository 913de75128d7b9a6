package framebuffer

import "math"

func cos(a float64) float64 { return math.Cos(a) }
func sin(a float64) float64 { return math.Sin(a) }

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
