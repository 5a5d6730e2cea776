package httpx

import (
	"net/http"
	"strings"
)

// Method identifies the HTTP verb of a dispatched request.
type Method string

const (
	MethodGet     Method = http.MethodGet
	MethodPost    Method = http.MethodPost
	MethodPut     Method = http.MethodPut
	MethodDelete  Method = http.MethodDelete
	MethodHead    Method = http.MethodHead
	MethodOptions Method = http.MethodOptions
	MethodTrace   Method = http.MethodTrace
)

// Methods lists every verb the dispatcher accepts.
var Methods = []Method{MethodGet, MethodPost, MethodPut, MethodDelete, MethodHead, MethodOptions, MethodTrace}

// Valid reports whether m is one of the supported verbs.
func (m Method) Valid() bool {
	for _, known := range Methods {
		if m == known {
			return true
		}
	}
	return false
}

func (m Method) String() string { return string(m) }

// ParseMethod normalises s and returns the matching Method.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", &MethodError{Method: s}
	}
	return m, nil
}
