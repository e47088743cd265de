package parser

import (
	"bytes"
	stderrors "errors" // Standard errors package
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/mcncl/gloss/internal/errors" // Custom errors package
	"github.com/mcncl/gloss/internal/models"
)

// Parse converts JSON data from an io.Reader into an IntermediateRepresentation
func Parse(reader io.Reader) (models.IntermediateRepresentation, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewParsingError("failed to read input", err)
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber() // Ensure numbers are read as json.Number

	var rootValue models.JSONValue
	if err := decoder.Decode(&rootValue); err != nil {
		if stderrors.Is(err, io.EOF) { // io.EOF means nothing was decoded
			return models.IntermediateRepresentation{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		if stderrors.As(err, &syntaxError) {
			return models.IntermediateRepresentation{}, errors.NewParsingError(
				fmt.Sprintf("JSON syntax error at offset %d", syntaxError.Offset),
				errors.ErrInvalidJSON,
			)
		}
		if stderrors.As(err, &unmarshalTypeError) {
			return models.IntermediateRepresentation{}, errors.NewParsingError(
				fmt.Sprintf("JSON type error at offset %d for type %s", unmarshalTypeError.Offset, unmarshalTypeError.Type),
				errors.ErrInvalidJSON,
			)
		}
		return models.IntermediateRepresentation{}, errors.NewParsingError("failed to decode JSON", err)
	}

	if err := checkTrailing(data, decoder.InputOffset()); err != nil {
		return models.IntermediateRepresentation{}, err
	}

	return newRepresentation(normalizeJSONValue(rootValue)), nil
}

// checkTrailing fails on anything but whitespace after the root value.
func checkTrailing(data []byte, offset int64) error {
	if offset < 0 || offset > int64(len(data)) {
		return nil
	}
	rest := bytes.TrimSpace(data[offset:])
	if len(rest) == 0 {
		return nil
	}
	var trailingValue interface{}
	if json.NewDecoder(bytes.NewReader(rest)).Decode(&trailingValue) == nil {
		return errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
	}
	return errors.NewParsingError("invalid trailing data after first JSON value", errors.ErrInvalidJSON)
}

func newRepresentation(root models.JSONValue) models.IntermediateRepresentation {
	_, isArray := root.(models.JSONArray)
	return models.IntermediateRepresentation{
		Root:        root,
		RootIsArray: isArray,
	}
}

// normalizeJSONValue converts raw JSON types into our model types
func normalizeJSONValue(val models.JSONValue) models.JSONValue {
	switch v := val.(type) {
	case map[string]interface{}:
		obj := make(models.JSONObject, len(v))
		for key, value := range v {
			obj[key] = normalizeJSONValue(value)
		}
		return obj
	case []interface{}:
		arr := make(models.JSONArray, len(v))
		for i, value := range v {
			arr[i] = normalizeJSONValue(value)
		}
		return arr
	default:
		return v // Primitives (string, json.Number, bool, nil) are returned as is
	}
}

// ParseBytes parses JSON from a byte slice
func ParseBytes(data []byte) (models.IntermediateRepresentation, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return models.IntermediateRepresentation{}, errors.NewInputError("input is empty", errors.ErrEmptyInput)
	}
	return Parse(bytes.NewReader(data))
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (models.IntermediateRepresentation, error) {
	// An empty reader gives io.EOF, but whitespace-only input deserves the input error too.
	if strings.TrimSpace(jsonString) == "" {
		return models.IntermediateRepresentation{}, errors.NewInputError("input string is empty or consists only of whitespace", errors.ErrEmptyInput)
	}
	return Parse(strings.NewReader(jsonString))
}

// ParseObject parses JSON bytes whose root must be an object
func ParseObject(data []byte) (models.JSONObject, error) {
	ir, err := ParseBytes(data)
	if err != nil {
		return nil, err
	}
	obj, ok := ir.Object()
	if !ok {
		return nil, errors.NewParsingError(fmt.Sprintf("expected a JSON object at the root, got %s", describe(ir.Root)), errors.ErrNotObject)
	}
	return obj, nil
}

// ParseFile parses a file, choosing the format from its extension.
// Unknown extensions are read as JSON.
func ParseFile(filePath string) (models.IntermediateRepresentation, error) {
	if strings.TrimSpace(filePath) == "" {
		return models.IntermediateRepresentation{}, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return models.IntermediateRepresentation{}, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return models.IntermediateRepresentation{}, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	if len(data) == 0 {
		return models.IntermediateRepresentation{}, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	format, ok := FormatFromPath(filePath)
	if !ok {
		format = FormatJSON
	}
	return ParseAs(format, data)
}

func describe(v models.JSONValue) string {
	switch v.(type) {
	case nil:
		return "null"
	case models.JSONArray:
		return "an array"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	default:
		return "a number"
	}
}
