package decoder

import "github.com/mcncl/gloss/internal/models"

// DecodeFunc constructs a T from a JSON object, reporting false when the
// object does not describe a valid T.
type DecodeFunc[T any] func(models.JSONObject) (T, bool)

// Object returns the nested object stored under key.
func Object(obj models.JSONObject, key string) (models.JSONObject, bool) {
	v, ok := Lookup(obj, key)
	if !ok {
		return nil, false
	}
	return asObject(v)
}

// Objects returns the array of objects stored under key.
func Objects(obj models.JSONObject, key string) ([]models.JSONObject, bool) {
	arr, ok := lookupArray(obj, key)
	if !ok {
		return nil, false
	}
	return decodeAll(arr, asObject)
}

// Model decodes the nested object under key with decode. A nested object
// that decode rejects makes the field absent; it does not affect sibling
// fields of obj.
func Model[T any](obj models.JSONObject, key string, decode DecodeFunc[T]) (T, bool) {
	v, ok := Lookup(obj, key)
	if !ok {
		var zero T
		return zero, false
	}
	return ModelFrom(v, decode)
}

// Models decodes an array of nested objects under key, preserving order.
func Models[T any](obj models.JSONObject, key string, decode DecodeFunc[T]) ([]T, bool) {
	v, ok := Lookup(obj, key)
	if !ok {
		return nil, false
	}
	return ModelsFrom(v, decode)
}

// ModelFrom decodes a bare value, such as a response root, with decode.
func ModelFrom[T any](v models.JSONValue, decode DecodeFunc[T]) (T, bool) {
	nested, ok := asObject(v)
	if !ok {
		var zero T
		return zero, false
	}
	return decode(nested)
}

// ModelsFrom decodes a bare array of objects with decode.
func ModelsFrom[T any](v models.JSONValue, decode DecodeFunc[T]) ([]T, bool) {
	arr, ok := asArray(v)
	if !ok {
		return nil, false
	}
	return decodeAll(arr, func(elem models.JSONValue) (T, bool) {
		return ModelFrom(elem, decode)
	})
}
