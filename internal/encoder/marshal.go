package encoder

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/iancoleman/strcase"
	"github.com/mcncl/gloss/internal/errors"
	"github.com/mcncl/gloss/internal/models"
)

// KeyStyle selects how Rekey renames object keys.
type KeyStyle string

const (
	KeyStyleNone       KeyStyle = "none"
	KeyStyleSnake      KeyStyle = "snake"
	KeyStyleCamel      KeyStyle = "camel"
	KeyStyleLowerCamel KeyStyle = "lower_camel"
	KeyStyleKebab      KeyStyle = "kebab"
)

// ParseKeyStyle validates a key style name. The empty string means none.
func ParseKeyStyle(name string) (KeyStyle, error) {
	switch s := KeyStyle(strings.ToLower(strings.TrimSpace(name))); s {
	case "", KeyStyleNone:
		return KeyStyleNone, nil
	case KeyStyleSnake, KeyStyleCamel, KeyStyleLowerCamel, KeyStyleKebab:
		return s, nil
	default:
		return "", fmt.Errorf("unknown key style %q", name)
	}
}

// Apply converts a single key.
func (s KeyStyle) Apply(key string) string {
	switch s {
	case KeyStyleSnake:
		return strcase.ToSnake(key)
	case KeyStyleCamel:
		return strcase.ToCamel(key)
	case KeyStyleLowerCamel:
		return strcase.ToLowerCamel(key)
	case KeyStyleKebab:
		return strcase.ToKebab(key)
	default:
		return key
	}
}

// Rekey returns a copy of obj with every key, at every depth, renamed by style.
func Rekey(obj models.JSONObject, style KeyStyle) models.JSONObject {
	if obj == nil {
		return nil
	}
	return rekeyValue(obj, style).(models.JSONObject)
}

func rekeyValue(v models.JSONValue, style KeyStyle) models.JSONValue {
	switch t := v.(type) {
	case models.JSONObject:
		out := make(models.JSONObject, len(t))
		for k, item := range t {
			out[style.Apply(k)] = rekeyValue(item, style)
		}
		return out
	case models.JSONArray:
		out := make(models.JSONArray, len(t))
		for i, item := range t {
			out[i] = rekeyValue(item, style)
		}
		return out
	default:
		return v
	}
}

// Marshal renders v, normally a JSONObject or JSONArray, as compact JSON.
func Marshal(v models.JSONValue) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.NewEncodeError("failed to marshal JSON value", err)
	}
	return data, nil
}

// MarshalIndent renders v as JSON indented by indent spaces.
// An indent of zero or less is the same as Marshal.
func MarshalIndent(v models.JSONValue, indent int) ([]byte, error) {
	if indent <= 0 {
		return Marshal(v)
	}
	data, err := json.MarshalIndent(v, "", strings.Repeat(" ", indent))
	if err != nil {
		return nil, errors.NewEncodeError("failed to marshal JSON value", err)
	}
	return data, nil
}
