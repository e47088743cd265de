package decoder

import (
	"time"

	"github.com/mcncl/gloss/internal/models"
)

// DateFormat is the caller-supplied layout used to read and write date
// strings. A nil Location means UTC.
type DateFormat struct {
	Layout   string
	Location *time.Location
}

// Common formats.
var (
	ISO8601     = DateFormat{Layout: "2006-01-02T15:04:05Z07:00"}
	RFC3339Nano = DateFormat{Layout: time.RFC3339Nano}
	DateOnly    = DateFormat{Layout: time.DateOnly}
)

func (f DateFormat) layout() string {
	if f.Layout == "" {
		return ISO8601.Layout
	}
	return f.Layout
}

func (f DateFormat) location() *time.Location {
	if f.Location == nil {
		return time.UTC
	}
	return f.Location
}

// Parse reads s with the format's layout.
func (f DateFormat) Parse(s string) (time.Time, bool) {
	t, err := time.ParseInLocation(f.layout(), s, f.location())
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Format renders t with the format's layout in the format's location.
func (f DateFormat) Format(t time.Time) string {
	return t.In(f.location()).Format(f.layout())
}

// Date reads the string under key as a timestamp in format.
func Date(obj models.JSONObject, key string, format DateFormat) (time.Time, bool) {
	s, ok := String(obj, key)
	if !ok {
		return time.Time{}, false
	}
	return format.Parse(s)
}

// Dates reads an array of date strings; one unparseable entry makes the field absent.
func Dates(obj models.JSONObject, key string, format DateFormat) ([]time.Time, bool) {
	arr, ok := lookupArray(obj, key)
	if !ok {
		return nil, false
	}
	return decodeAll(arr, func(v models.JSONValue) (time.Time, bool) {
		s, ok := v.(string)
		if !ok {
			return time.Time{}, false
		}
		return format.Parse(s)
	})
}
