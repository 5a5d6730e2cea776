package httpx

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestClient exposes a minimal subset of resty.Client for customization without importing resty.
type RestClient interface {
	SetHeader(key, value string) RestClient
	SetHeaders(headers map[string]string) RestClient
	SetTimeout(d time.Duration) RestClient
	SetTransport(rt http.RoundTripper) RestClient
}

type restyAdapter struct{ c *resty.Client }

func (r restyAdapter) SetHeader(key, value string) RestClient {
	r.c.SetHeader(key, value)
	return r
}

func (r restyAdapter) SetHeaders(headers map[string]string) RestClient {
	r.c.SetHeaders(headers)
	return r
}

func (r restyAdapter) SetTimeout(d time.Duration) RestClient {
	r.c.SetTimeout(d)
	return r
}

func (r restyAdapter) SetTransport(rt http.RoundTripper) RestClient {
	r.c.SetTransport(rt)
	return r
}

const (
	debugRequestOpened   = "DEBUG: Request was opened."
	debugHeaderSet       = "DEBUG: Request header was set."
	debugSentWithBody    = "DEBUG: Request was sent with body."
	debugSentWithoutBody = "DEBUG: Request was sent without body."
	debugRequestFailed   = "DEBUG: Request failed."
)

// Dispatcher sends requests and routes each response to the callback that
// matches its status class.
type Dispatcher struct {
	resty  *resty.Client
	logger Logger
	debug  atomic.Bool
}

func NewDispatcher(opts ...ClientOption) *Dispatcher {
	cfg := defaultClientOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	rc := resty.New()
	rc.SetLogger(cfg.Logger)
	// Redirects are reported to the caller, never followed.
	rc.SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}))
	if cfg.BaseURL != "" {
		rc.SetBaseURL(cfg.BaseURL)
	}
	if len(cfg.Headers) > 0 {
		rc.SetHeaders(cfg.Headers)
	}
	if cfg.RestyConfig != nil {
		cfg.RestyConfig(restyAdapter{rc})
	}

	d := &Dispatcher{resty: rc, logger: cfg.Logger}
	d.debug.Store(cfg.Debug)
	return d
}

// EnableDebug turns on the lifecycle trace.
func (d *Dispatcher) EnableDebug() { d.debug.Store(true) }

// DisableDebug turns off the lifecycle trace.
func (d *Dispatcher) DisableDebug() { d.debug.Store(false) }

// Debug reports whether the lifecycle trace is enabled.
func (d *Dispatcher) Debug() bool { return d.debug.Load() }

// Call tracks one dispatched request.
type Call struct {
	done    chan struct{}
	outcome *Outcome
	err     error
}

// Done is closed once the call has completed or failed.
func (c *Call) Done() <-chan struct{} { return c.done }

// Wait blocks until the call finishes. The outcome is nil when the request
// never completed.
func (c *Call) Wait() (*Outcome, error) {
	<-c.done
	return c.outcome, c.err
}

// Dispatch sends req. Synchronous requests finish, callbacks included,
// before Dispatch returns; asynchronous requests run on their own goroutine.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) *Call {
	call := &Call{done: make(chan struct{})}
	if !req.Async {
		call.outcome, call.err = d.Do(ctx, req)
		close(call.done)
		return call
	}
	go func() {
		defer close(call.done)
		call.outcome, call.err = d.Do(ctx, req)
	}()
	return call
}

// Do sends req on the calling goroutine regardless of req.Async and invokes
// the matching callback before returning.
func (d *Dispatcher) Do(ctx context.Context, req Request) (*Outcome, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r := d.resty.R().SetContext(ctx)
	d.debugf("%s %s %s", debugRequestOpened, req.Method, req.URL)

	if req.HasHeader() {
		r.SetHeader(req.HeaderName, req.HeaderValue)
		d.debugf("%s %s", debugHeaderSet, req.HeaderName)
	}

	if req.HasBody() {
		r.SetBody(req.Body)
		d.debugf("%s", debugSentWithBody)
	} else {
		d.debugf("%s", debugSentWithoutBody)
	}

	resp, err := r.Execute(req.Method.String(), req.URL)
	if err != nil {
		terr := &TransportError{Method: req.Method, URL: req.URL, Err: err}
		d.debugf("%s %v", debugRequestFailed, err)
		if req.Handlers.OnFailure != nil {
			req.Handlers.OnFailure(terr)
		}
		return nil, terr
	}

	out := newOutcome(req.Method, req.URL, resp.StatusCode(), resp.Body(), resp.Header())
	d.debugf("%s", DebugText(out.StatusCode))
	return out, deliver(req.Handlers, out)
}

func (d *Dispatcher) debugf(format string, args ...interface{}) {
	if d.debug.Load() {
		d.logger.Debugf(format, args...)
	}
}

// deliver routes out to at most one status callback, then to the header
// callback. HEAD responses never reach OnSuccess.
func deliver(h Handlers, out *Outcome) error {
	var primary Callback
	switch out.Class {
	case ClassSuccess:
		if out.Method != MethodHead {
			primary = h.OnSuccess
		}
	case ClassRedirect:
		primary = h.OnRedirect
	case ClassClientError:
		primary = h.OnClientError
	case ClassServerError:
		primary = h.OnServerError
	default:
		err := &StatusError{Code: out.StatusCode}
		if h.OnFailure != nil {
			h.OnFailure(err)
		}
		return err
	}

	if primary != nil {
		primary(out.Body, out.StatusCode, out.Message)
	}
	if h.OnHeaders != nil {
		h.OnHeaders(out.RawHeaders, out.StatusCode, out.Message)
	}
	return nil
}
