package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	ErrMissingURL         = errors.New("httpx: request url is required")
	ErrInvalidMethod      = errors.New("httpx: unsupported request method")
	ErrTransport          = errors.New("httpx: transport failure")
	ErrUnclassifiedStatus = errors.New("httpx: unclassified status code")
)

// MethodError reports a verb the dispatcher does not support.
type MethodError struct {
	Method string
}

func (e *MethodError) Error() string { return fmt.Sprintf("httpx: unsupported request method %q", e.Method) }

func (e *MethodError) Unwrap() error { return ErrInvalidMethod }

// TransportError reports a call that never produced a final response.
type TransportError struct {
	Method Method
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("httpx: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() []error { return []error{ErrTransport, e.Err} }

// StatusError reports a completed response whose status falls outside the
// classified ranges.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("httpx: status %d is outside 200-599", e.Code)
}

func (e *StatusError) Unwrap() error { return ErrUnclassifiedStatus }

// Outcome is the normalised result of one completed request.
type Outcome struct {
	Method     Method
	URL        string
	Class      Class
	StatusCode int
	Message    string
	Body       string
	Header     http.Header
	RawHeaders string
}

func newOutcome(method Method, url string, code int, body []byte, header http.Header) *Outcome {
	class := Classify(code)
	return &Outcome{
		Method:     method,
		URL:        url,
		Class:      class,
		StatusCode: code,
		Message:    class.Message(),
		Body:       string(body),
		Header:     header,
		RawHeaders: RawHeaders(header),
	}
}

// RawHeaders renders h as a header block: one "name: value" line per header,
// names lower-cased and sorted, lines terminated by CRLF. Repeated values are
// joined with ", ".
func RawHeaders(h http.Header) string {
	if len(h) == 0 {
		return ""
	}
	names := make([]string, 0, len(h))
	values := make(map[string][]string, len(h))
	for name, vs := range h {
		lower := strings.ToLower(name)
		if _, seen := values[lower]; !seen {
			names = append(names, lower)
		}
		values[lower] = append(values[lower], vs...)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(strings.Join(values[name], ", "))
		b.WriteString("\r\n")
	}
	return b.String()
}
