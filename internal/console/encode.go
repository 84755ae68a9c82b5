package console

import (
	"fmt"
	"math"

	"github.com/wrenshall/mixcore/internal/catalog"
)

// faderEpsilon keeps fader values inside the open interval (0, 1): the
// protocol treats exact 0 and 1 as invalid for faders.
const faderEpsilon = 1e-7

// EncodeArgument converts a caller-supplied value into the wire argument for
// the endpoint. The result is a float32, int32, or string — the three typed
// arguments the protocol carries.
//
// Encoding rules:
//   - float: value must be numeric. Fader endpoints are clamped to
//     [faderEpsilon, 1-faderEpsilon]; all other float-bearing kinds are
//     clamped to [0, 1].
//   - integer: value must be numeric; it is rounded to the nearest integer.
//   - string: strings pass through; anything else is formatted with %v.
//
// Clamping produces a new value; the caller's input is never mutated.
//
// Returns ErrReadOnly for endpoints with no argument type and ErrTypeMismatch
// when a numeric argument receives a non-numeric value.
func EncodeArgument(spec catalog.EndpointSpec, value any) (any, error) {
	switch spec.ArgumentType {
	case catalog.ArgFloat:
		f, ok := toFloat(value)
		if !ok {
			return nil, fmt.Errorf("%w: expected a number, got %T", ErrTypeMismatch, value)
		}
		if spec.Kind() == catalog.KindFader {
			f = clamp(f, faderEpsilon, 1-faderEpsilon)
		} else {
			f = clamp(f, 0, 1)
		}
		return float32(f), nil

	case catalog.ArgInteger:
		f, ok := toFloat(value)
		if !ok {
			return nil, fmt.Errorf("%w: expected a number, got %T", ErrTypeMismatch, value)
		}
		return int32(math.Round(f)), nil

	case catalog.ArgString:
		if s, ok := value.(string); ok {
			return s, nil
		}
		return fmt.Sprintf("%v", value), nil

	default:
		return nil, fmt.Errorf("%w: no argument type", ErrReadOnly)
	}
}

// toFloat converts any numeric Go type to float64.
// JSON decoding yields float64, but callers may also pass native ints.
func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}

// clamp bounds f to [lo, hi].
func clamp(f, lo, hi float64) float64 {
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}
