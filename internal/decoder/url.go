package decoder

import (
	"net/url"
	"unicode"

	"github.com/mcncl/gloss/internal/models"
)

// URL reads the string under key as a URL.
func URL(obj models.JSONObject, key string) (*url.URL, bool) {
	s, ok := String(obj, key)
	if !ok {
		return nil, false
	}
	return ParseURL(s)
}

// URLs reads an array of URL strings; one invalid entry makes the field absent.
func URLs(obj models.JSONObject, key string) ([]*url.URL, bool) {
	arr, ok := lookupArray(obj, key)
	if !ok {
		return nil, false
	}
	return decodeAll(arr, func(v models.JSONValue) (*url.URL, bool) {
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		return ParseURL(s)
	})
}

// ParseURL is stricter than url.Parse: empty strings and strings with
// whitespace or control characters are rejected.
func ParseURL(s string) (*url.URL, bool) {
	if s == "" {
		return nil, false
	}
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return nil, false
		}
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, false
	}
	return u, true
}
