// Package encoder builds JSON objects from typed fields. It mirrors the
// decoder: every function turns one key and one optional value into a
// single-entry fragment, and Merge combines the fragments of an entity.
//
// An absent value (nil pointer or nil slice) yields an empty fragment, so
// the key is omitted from the merged object rather than written as null.
package encoder

import (
	"net/url"
	"strings"
	"time"

	"github.com/mcncl/gloss/internal/decoder"
	"github.com/mcncl/gloss/internal/models"
)

// EncodeFunc renders a T as a JSON object. A nil result means the value
// has no representation and its field is omitted.
type EncodeFunc[T any] func(T) models.JSONObject

// Encodable is implemented by models that render themselves.
type Encodable interface {
	ToJSON() models.JSONObject
}

// Value encodes a scalar field.
func Value[T decoder.Scalar](key string, v *T) models.JSONObject {
	if v == nil {
		return models.JSONObject{}
	}
	return fragment(key, *v)
}

// Values encodes a scalar array field. A nil slice is absent; an empty
// slice encodes as [].
func Values[T decoder.Scalar](key string, vs []T) models.JSONObject {
	if vs == nil {
		return models.JSONObject{}
	}
	arr := make(models.JSONArray, len(vs))
	for i, v := range vs {
		arr[i] = v
	}
	return fragment(key, arr)
}

// Model encodes a nested model field with encode.
func Model[T any](key string, v *T, encode EncodeFunc[T]) models.JSONObject {
	if v == nil {
		return models.JSONObject{}
	}
	obj := encode(*v)
	if obj == nil {
		return models.JSONObject{}
	}
	return fragment(key, obj)
}

// Models encodes an array of nested models. If any element has no
// representation the field is omitted, matching the decoder's
// all-or-nothing rule.
func Models[T any](key string, vs []T, encode EncodeFunc[T]) models.JSONObject {
	if vs == nil {
		return models.JSONObject{}
	}
	arr := make(models.JSONArray, len(vs))
	for i, v := range vs {
		obj := encode(v)
		if obj == nil {
			return models.JSONObject{}
		}
		arr[i] = obj
	}
	return fragment(key, arr)
}

// Object encodes a nested Encodable. A nil Encodable is absent.
func Object(key string, v Encodable) models.JSONObject {
	if v == nil {
		return models.JSONObject{}
	}
	obj := v.ToJSON()
	if obj == nil {
		return models.JSONObject{}
	}
	return fragment(key, obj)
}

// Objects encodes a slice of Encodables.
func Objects[T Encodable](key string, vs []T) models.JSONObject {
	return Models(key, vs, func(v T) models.JSONObject { return v.ToJSON() })
}

// EnumValue encodes an enum member as its raw value. A member that is not
// declared in enum is treated as absent.
func EnumValue[E comparable, R decoder.Scalar](key string, v *E, enum *decoder.Enum[E, R]) models.JSONObject {
	if v == nil {
		return models.JSONObject{}
	}
	raw, ok := enum.Raw(*v)
	if !ok {
		return models.JSONObject{}
	}
	return fragment(key, raw)
}

// EnumValues encodes enum members as an array of raw values.
func EnumValues[E comparable, R decoder.Scalar](key string, vs []E, enum *decoder.Enum[E, R]) models.JSONObject {
	if vs == nil {
		return models.JSONObject{}
	}
	arr := make(models.JSONArray, len(vs))
	for i, v := range vs {
		raw, ok := enum.Raw(v)
		if !ok {
			return models.JSONObject{}
		}
		arr[i] = raw
	}
	return fragment(key, arr)
}

// Date encodes a timestamp as a string in format.
func Date(key string, v *time.Time, format decoder.DateFormat) models.JSONObject {
	if v == nil {
		return models.JSONObject{}
	}
	return fragment(key, format.Format(*v))
}

// Dates encodes timestamps as an array of strings in format.
func Dates(key string, vs []time.Time, format decoder.DateFormat) models.JSONObject {
	if vs == nil {
		return models.JSONObject{}
	}
	arr := make(models.JSONArray, len(vs))
	for i, v := range vs {
		arr[i] = format.Format(v)
	}
	return fragment(key, arr)
}

// URL encodes a URL as its string form.
func URL(key string, v *url.URL) models.JSONObject {
	if v == nil {
		return models.JSONObject{}
	}
	return fragment(key, v.String())
}

// URLs encodes URLs as an array of strings. A nil element makes the field absent.
func URLs(key string, vs []*url.URL) models.JSONObject {
	if vs == nil {
		return models.JSONObject{}
	}
	arr := make(models.JSONArray, len(vs))
	for i, v := range vs {
		if v == nil {
			return models.JSONObject{}
		}
		arr[i] = v.String()
	}
	return fragment(key, arr)
}

// fragment builds a single-entry object, expanding a key path such as
// "owner.login" into nested objects.
func fragment(key string, v models.JSONValue) models.JSONObject {
	segments := strings.Split(key, decoder.KeyPathDelimiter)
	obj := models.JSONObject{segments[len(segments)-1]: v}
	for i := len(segments) - 2; i >= 0; i-- {
		obj = models.JSONObject{segments[i]: obj}
	}
	return obj
}

// Merge combines fragments into one object. Nested objects that share a
// key are merged recursively; otherwise later fragments win.
// The fragments are not modified.
func Merge(fragments ...models.JSONObject) models.JSONObject {
	out := models.JSONObject{}
	for _, f := range fragments {
		mergeInto(out, f)
	}
	return out
}

func mergeInto(dst, src models.JSONObject) {
	for k, v := range src {
		srcObj, srcIsObj := v.(models.JSONObject)
		dstObj, dstIsObj := dst[k].(models.JSONObject)
		if srcIsObj && dstIsObj {
			merged := models.JSONObject{}
			mergeInto(merged, dstObj)
			mergeInto(merged, srcObj)
			dst[k] = merged
			continue
		}
		dst[k] = v
	}
}
