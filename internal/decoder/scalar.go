package decoder

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/mcncl/gloss/internal/models"
)

// Scalar is the closed set of leaf types the decoder reads directly.
type Scalar interface {
	bool | int | int64 | float32 | float64 | string
}

// Value decodes the field under key as T.
//
// A value must already have the requested shape: strings are never read as
// booleans or numbers, and integers only accept integral numbers.
func Value[T Scalar](obj models.JSONObject, key string) (T, bool) {
	v, ok := Lookup(obj, key)
	if !ok {
		var zero T
		return zero, false
	}
	return convert[T](v)
}

// Values decodes an array field whose every element is a T. One bad
// element makes the whole field absent.
func Values[T Scalar](obj models.JSONObject, key string) ([]T, bool) {
	arr, ok := lookupArray(obj, key)
	if !ok {
		return nil, false
	}
	return decodeAll(arr, convert[T])
}

func Bool(obj models.JSONObject, key string) (bool, bool)       { return Value[bool](obj, key) }
func Int(obj models.JSONObject, key string) (int, bool)         { return Value[int](obj, key) }
func Int64(obj models.JSONObject, key string) (int64, bool)     { return Value[int64](obj, key) }
func Float32(obj models.JSONObject, key string) (float32, bool) { return Value[float32](obj, key) }
func Float64(obj models.JSONObject, key string) (float64, bool) { return Value[float64](obj, key) }
func String(obj models.JSONObject, key string) (string, bool)   { return Value[string](obj, key) }

func Bools(obj models.JSONObject, key string) ([]bool, bool)       { return Values[bool](obj, key) }
func Ints(obj models.JSONObject, key string) ([]int, bool)         { return Values[int](obj, key) }
func Int64s(obj models.JSONObject, key string) ([]int64, bool)     { return Values[int64](obj, key) }
func Float32s(obj models.JSONObject, key string) ([]float32, bool) { return Values[float32](obj, key) }
func Float64s(obj models.JSONObject, key string) ([]float64, bool) { return Values[float64](obj, key) }
func Strings(obj models.JSONObject, key string) ([]string, bool)   { return Values[string](obj, key) }

func convert[T Scalar](v models.JSONValue) (T, bool) {
	var zero T
	var out interface{}
	var ok bool

	switch any(zero).(type) {
	case bool:
		out, ok = v.(bool)
	case int:
		out, ok = asInt(v)
	case int64:
		out, ok = asInt64(v)
	case float32:
		out, ok = asFloat32(v)
	case float64:
		out, ok = asFloat64(v)
	case string:
		out, ok = v.(string)
	}
	if !ok {
		return zero, false
	}
	return out.(T), true
}

func asInt(v models.JSONValue) (int, bool) {
	i, ok := asInt64(v)
	if !ok || i < math.MinInt || i > math.MaxInt {
		return 0, false
	}
	return int(i), true
}

func asInt64(v models.JSONValue) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		// "1e3" and "2.0" are integral even though Int64 rejects them.
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt64(f)
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return uintToInt64(uint64(n))
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return uintToInt64(n)
	case float32:
		return floatToInt64(float64(n))
	case float64:
		return floatToInt64(n)
	default:
		return 0, false
	}
}

func uintToInt64(u uint64) (int64, bool) {
	if u > math.MaxInt64 {
		return 0, false
	}
	return int64(u), true
}

func floatToInt64(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func asFloat64(v models.JSONValue) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := strconv.ParseFloat(string(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		i, ok := asInt64(n)
		if !ok {
			// uint64 beyond MaxInt64 is still a valid float.
			if u, isUint := n.(uint64); isUint {
				return float64(u), true
			}
			return 0, false
		}
		return float64(i), true
	default:
		return 0, false
	}
}

func asFloat32(v models.JSONValue) (float32, bool) {
	if n, ok := v.(json.Number); ok {
		f, err := strconv.ParseFloat(string(n), 32)
		if err != nil {
			return 0, false
		}
		return float32(f), true
	}
	f, ok := asFloat64(v)
	if !ok || math.Abs(f) > math.MaxFloat32 {
		return 0, false
	}
	return float32(f), true
}
