package transport

import (
	"fmt"
	"net/http"
	"strings"
)

// Method is an HTTP request method.
type Method string

const (
	MethodConnect Method = http.MethodConnect
	MethodDelete  Method = http.MethodDelete
	MethodGet     Method = http.MethodGet
	MethodHead    Method = http.MethodHead
	MethodOptions Method = http.MethodOptions
	MethodPatch   Method = http.MethodPatch
	MethodPost    Method = http.MethodPost
	MethodPut     Method = http.MethodPut
	MethodTrace   Method = http.MethodTrace
)

func (m Method) String() string { return string(m) }

// ParseMethod accepts a method name in any case.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToUpper(strings.TrimSpace(s))); m {
	case MethodConnect, MethodDelete, MethodGet, MethodHead, MethodOptions,
		MethodPatch, MethodPost, MethodPut, MethodTrace:
		return m, nil
	default:
		return "", fmt.Errorf("unsupported HTTP method %q", s)
	}
}

// paramsInQuery reports whether request parameters belong in the URL query
// rather than a form body.
func (m Method) paramsInQuery() bool {
	switch m {
	case MethodGet, MethodHead, MethodDelete:
		return true
	default:
		return false
	}
}
