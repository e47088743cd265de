package models

// JSONValue is a generic type to represent any JSON value.
// This can be a string, number, boolean, null, object, or array.
// Numbers produced by the parser are json.Number; hand-built trees may
// carry any Go numeric type.
type JSONValue = interface{}

// JSONObject represents a JSON object, which is a map of strings to JSONValues.
type JSONObject map[string]JSONValue

// JSONArray represents a JSON array, which is a slice of JSONValues.
type JSONArray []JSONValue

// IntermediateRepresentation is a structure to hold the parsed JSON data
// before it is handed to the decoder.
type IntermediateRepresentation struct {
	Root        JSONValue
	RootIsArray bool // True if the root of the JSON is an array vs an object
}

// Object returns the root as a JSONObject, if it is one.
func (ir IntermediateRepresentation) Object() (JSONObject, bool) {
	obj, ok := ir.Root.(JSONObject)
	return obj, ok
}

// Array returns the root as a JSONArray, if it is one.
func (ir IntermediateRepresentation) Array() (JSONArray, bool) {
	arr, ok := ir.Root.(JSONArray)
	return arr, ok
}
