// Package format renders simulation values to a bounded decimal precision.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/daviddao/scene_viewer/internal/scene"
)

// DefaultPrecision is the number of decimal digits shown for floats.
const DefaultPrecision = 3

// exactLimit is the magnitude above which float64 has no fractional digits
// left to round.
const exactLimit = 1 << 52

// Round rounds x to precision decimal digits, half away from zero.
// NaN, ±Inf and values too large to carry a fraction are returned unchanged.
// Negative zero is normalised to zero.
func Round(x float64, precision int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	if precision < 0 {
		precision = 0
	}
	scale := math.Pow(10, float64(precision))
	if math.Abs(x)*scale >= exactLimit {
		return x
	}
	r := math.Round(x*scale) / scale
	if r == 0 {
		return 0
	}
	return r
}

// Value applies Round to numeric values, element-wise for vectors. Any other
// value is returned unchanged.
func Value(v scene.Value, precision int) scene.Value {
	switch v.Kind {
	case scene.KindFloat:
		return scene.Float(Round(v.Float, precision))
	case scene.KindVector:
		out := make([]float64, len(v.Vec))
		for i, x := range v.Vec {
			out[i] = Round(x, precision)
		}
		return scene.Vector(out...)
	}
	return v
}

// Vec3 rounds each component of v.
func Vec3(v scene.Vec3, precision int) scene.Vec3 {
	return scene.Vec3{Round(v[0], precision), Round(v[1], precision), Round(v[2], precision)}
}

// Float renders x in fixed-point notation with exactly precision digits.
func Float(x float64, precision int) string {
	if precision < 0 {
		precision = 0
	}
	return strconv.FormatFloat(Round(x, precision), 'f', precision, 64)
}

// Render returns the display text of v. Floats and vectors are rounded;
// integers, text and booleans print as-is.
func Render(v scene.Value, precision int) string {
	switch v.Kind {
	case scene.KindInt:
		return strconv.FormatInt(v.Int, 10)
	case scene.KindFloat:
		return Float(v.Float, precision)
	case scene.KindText:
		return v.Text
	case scene.KindBool:
		return strconv.FormatBool(v.Bool)
	case scene.KindVector:
		parts := make([]string, len(v.Vec))
		for i, x := range v.Vec {
			parts[i] = Float(x, precision)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	}
	if v.Other == nil {
		return ""
	}
	return fmt.Sprint(v.Other)
}

// Axes renders v as "X: x, Y: y, Z: z".
func Axes(v scene.Vec3, precision int) string {
	return fmt.Sprintf("X: %s, Y: %s, Z: %s",
		Float(v[0], precision), Float(v[1], precision), Float(v[2], precision))
}

// Triple renders v as "(x, y, z)".
func Triple(v scene.Vec3, precision int) string {
	return Render(scene.Vector(v[0], v[1], v[2]), precision)
}
