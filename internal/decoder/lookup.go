// Package decoder pulls typed values out of loosely-typed JSON objects.
//
// Every accessor reports absence with a false second return value: a
// missing key, a null, a value of the wrong shape, an array with one bad
// element, an unknown enum raw value and an unparseable date or URL all
// look the same to the caller. Accessors never mutate the object they read
// and hold no state, so they are safe for concurrent use.
package decoder

import (
	"strings"

	"github.com/mcncl/gloss/internal/models"
)

// KeyPathDelimiter separates the segments of a nested key such as "owner.login".
const KeyPathDelimiter = "."

// Lookup returns the value stored under key. A key that is not present
// verbatim but contains KeyPathDelimiter is resolved through nested
// objects. A JSON null is reported as absent.
func Lookup(obj models.JSONObject, key string) (models.JSONValue, bool) {
	if obj == nil {
		return nil, false
	}
	if v, ok := obj[key]; ok {
		return v, v != nil
	}
	if !strings.Contains(key, KeyPathDelimiter) {
		return nil, false
	}

	var current models.JSONValue = obj
	for _, segment := range strings.Split(key, KeyPathDelimiter) {
		next, ok := asObject(current)
		if !ok {
			return nil, false
		}
		current, ok = next[segment]
		if !ok || current == nil {
			return nil, false
		}
	}
	return current, true
}

// asObject accepts both the parser's JSONObject and plain maps from hand-built trees.
func asObject(v models.JSONValue) (models.JSONObject, bool) {
	switch o := v.(type) {
	case models.JSONObject:
		return o, true
	case map[string]interface{}:
		return models.JSONObject(o), true
	default:
		return nil, false
	}
}

func asArray(v models.JSONValue) (models.JSONArray, bool) {
	switch a := v.(type) {
	case models.JSONArray:
		return a, true
	case []interface{}:
		return models.JSONArray(a), true
	default:
		return nil, false
	}
}

func lookupArray(obj models.JSONObject, key string) (models.JSONArray, bool) {
	v, ok := Lookup(obj, key)
	if !ok {
		return nil, false
	}
	return asArray(v)
}

// decodeAll applies convert to every element and fails if any element fails.
func decodeAll[T any](arr models.JSONArray, convert func(models.JSONValue) (T, bool)) ([]T, bool) {
	out := make([]T, 0, len(arr))
	for _, elem := range arr {
		v, ok := convert(elem)
		if !ok {
			return nil, false
		}
		out = append(out, v)
	}
	return out, true
}
