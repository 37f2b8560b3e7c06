package manifest

import (
	"errors"
	"fmt"
	"math"

	"fortio.org/safecast"
)

// splat expands a one-element value to four lanes.
func splat(values []any) ([4]any, error) {
	switch len(values) {
	case 1:
		return [4]any{values[0], values[0], values[0], values[0]}, nil
	case 4:
		return [4]any{values[0], values[1], values[2], values[3]}, nil
	default:
		return [4]any{}, fmt.Errorf("value needs 1 or 4 lanes, got %d", len(values))
	}
}

func convertLanes[T any](lanes [4]any, conv func(any) (T, error)) ([4]T, error) {
	var out [4]T
	for i, v := range lanes {
		x, err := conv(v)
		if err != nil {
			return out, fmt.Errorf("lane %d: %w", i, err)
		}
		out[i] = x
	}
	return out, nil
}

func floatLane(v any) (float32, error) {
	switch x := v.(type) {
	case int64:
		return float32(x), nil
	case float64:
		if !math.IsInf(x, 0) && !math.IsNaN(x) && math.Abs(x) > math.MaxFloat32 {
			return 0, fmt.Errorf("%g overflows float32", x)
		}
		return float32(x), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}

func intLane[T int32 | uint32](v any) (T, error) {
	x, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
	return safecast.Conv[T](x)
}

func boolLane(v any) (bool, error) {
	x, ok := v.(bool)
	if !ok {
		return false, errors.New("expected a boolean")
	}
	return x, nil
}
