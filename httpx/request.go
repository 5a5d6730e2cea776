package httpx

import (
	"reflect"
	"strings"
)

// Callback receives the response body, the status code and the class
// message of a completed request.
type Callback func(body string, statusCode int, statusMessage string)

// HeaderCallback receives the raw response header block alongside the status
// code and class message.
type HeaderCallback func(rawHeaders string, statusCode int, statusMessage string)

// Handlers holds the optional continuations of a request. Nil entries are
// skipped without substitution.
type Handlers struct {
	OnSuccess     Callback
	OnRedirect    Callback
	OnClientError Callback
	OnServerError Callback
	OnHeaders     HeaderCallback

	// OnFailure fires for transport failures and unclassified statuses.
	OnFailure func(error)
}

// Request describes one outgoing call.
type Request struct {
	Method Method
	URL    string
	Async  bool

	// Body is sent as-is when non-nil, including an empty string.
	Body        any
	HeaderName  string
	HeaderValue string
	Handlers    Handlers
}

type RequestOption func(*Request)

// NewRequest builds a Request and validates it.
func NewRequest(method Method, url string, opts ...RequestOption) (Request, error) {
	req := Request{Method: method, URL: url}
	for _, opt := range opts {
		if opt != nil {
			opt(&req)
		}
	}
	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}

// Validate checks the required fields. The URL is only checked for presence.
func (r Request) Validate() error {
	if !r.Method.Valid() {
		return &MethodError{Method: string(r.Method)}
	}
	if strings.TrimSpace(r.URL) == "" {
		return ErrMissingURL
	}
	return nil
}

// HasBody reports whether the request takes the send-with-body path. A nil
// slice, map or pointer held in Body counts as no body.
func (r Request) HasBody() bool {
	if r.Body == nil {
		return false
	}
	v := reflect.ValueOf(r.Body)
	switch v.Kind() {
	case reflect.Slice, reflect.Map, reflect.Pointer, reflect.Interface:
		return !v.IsNil()
	}
	return true
}

// HasHeader reports whether the custom header pair is complete.
func (r Request) HasHeader() bool { return r.HeaderName != "" && r.HeaderValue != "" }

// WithAsync selects asynchronous execution.
func WithAsync(async bool) RequestOption {
	return func(r *Request) { r.Async = async }
}

// WithBody attaches a payload. A nil body keeps the send-without-body path.
func WithBody(body any) RequestOption {
	return func(r *Request) { r.Body = body }
}

// WithHeader sets the single custom request header.
func WithHeader(name, value string) RequestOption {
	return func(r *Request) {
		r.HeaderName = strings.TrimSpace(name)
		r.HeaderValue = value
	}
}

// WithHandlers replaces every continuation at once.
func WithHandlers(h Handlers) RequestOption {
	return func(r *Request) { r.Handlers = h }
}

func OnSuccess(cb Callback) RequestOption {
	return func(r *Request) { r.Handlers.OnSuccess = cb }
}

func OnRedirect(cb Callback) RequestOption {
	return func(r *Request) { r.Handlers.OnRedirect = cb }
}

func OnClientError(cb Callback) RequestOption {
	return func(r *Request) { r.Handlers.OnClientError = cb }
}

func OnServerError(cb Callback) RequestOption {
	return func(r *Request) { r.Handlers.OnServerError = cb }
}

func OnHeaders(cb HeaderCallback) RequestOption {
	return func(r *Request) { r.Handlers.OnHeaders = cb }
}

func OnFailure(fn func(error)) RequestOption {
	return func(r *Request) { r.Handlers.OnFailure = fn }
}
