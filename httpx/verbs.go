package httpx

import (
	"context"

	"github.com/adeilh/rakh-rest/auth"
)

func (d *Dispatcher) verb(ctx context.Context, method Method, url string, async bool, body any, h Handlers, opts []RequestOption) *Call {
	return d.Dispatch(ctx, buildRequest(method, url, async, body, h, opts))
}

func buildRequest(method Method, url string, async bool, body any, h Handlers, opts []RequestOption) Request {
	req := Request{Method: method, URL: url, Handlers: h}
	for _, opt := range opts {
		if opt != nil {
			opt(&req)
		}
	}
	req.Method = method
	req.Async = async
	req.Body = body
	return req
}

// Get fetches the resource at url. GET carries no body.
func (d *Dispatcher) Get(ctx context.Context, url string, async bool, h Handlers, opts ...RequestOption) *Call {
	return d.verb(ctx, MethodGet, url, async, nil, h, opts)
}

// Post creates a resource; a successful body conventionally links to it.
func (d *Dispatcher) Post(ctx context.Context, url string, async bool, body any, h Handlers, opts ...RequestOption) *Call {
	return d.verb(ctx, MethodPost, url, async, body, h, opts)
}

// Put creates or replaces the resource at url.
func (d *Dispatcher) Put(ctx context.Context, url string, async bool, body any, h Handlers, opts ...RequestOption) *Call {
	return d.verb(ctx, MethodPut, url, async, body, h, opts)
}

// Delete removes the resource at url. body may be nil.
func (d *Dispatcher) Delete(ctx context.Context, url string, async bool, body any, h Handlers, opts ...RequestOption) *Call {
	return d.verb(ctx, MethodDelete, url, async, body, h, opts)
}

// Head collects the metadata of a resource. A success is reported through
// the header callback only; when h has none, h.OnSuccess is used in its
// place with the raw header block as its first argument. Options are applied
// before the substitution.
func (d *Dispatcher) Head(ctx context.Context, url string, async bool, h Handlers, opts ...RequestOption) *Call {
	req := buildRequest(MethodHead, url, async, nil, h, opts)
	if req.Handlers.OnHeaders == nil && req.Handlers.OnSuccess != nil {
		req.Handlers.OnHeaders = HeaderCallback(req.Handlers.OnSuccess)
	}
	req.Handlers.OnSuccess = nil
	return d.Dispatch(ctx, req)
}

// Options asks the service which capabilities url supports.
func (d *Dispatcher) Options(ctx context.Context, url string, async bool, h Handlers, opts ...RequestOption) *Call {
	return d.verb(ctx, MethodOptions, url, async, nil, h, opts)
}

// Trace asks the service to echo the request back.
func (d *Dispatcher) Trace(ctx context.Context, url string, async bool, body any, h Handlers, opts ...RequestOption) *Call {
	return d.verb(ctx, MethodTrace, url, async, body, h, opts)
}

// Authenticate POSTs body with the auth.HeaderName header set to
// "username:password". The phrase is sent as-is.
func (d *Dispatcher) Authenticate(ctx context.Context, url string, body any, async bool, username, password string, onSuccess Callback, opts ...RequestOption) *Call {
	opts = append(opts[:len(opts):len(opts)], WithHeader(auth.HeaderName, auth.Phrase(username, password)))
	return d.verb(ctx, MethodPost, url, async, body, Handlers{OnSuccess: onSuccess}, opts)
}
