// Package mockservice runs a scripted REST service on an httptest listener.
// Every request is recorded so tests can inspect what the client sent.
package mockservice

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/adeilh/rakh-rest/auth"
)

// Context aliases echo.Context so callers can stay within mockservice imports.
type Context = echo.Context

// HandlerFunc aliases echo.HandlerFunc.
type HandlerFunc = echo.HandlerFunc

// MiddlewareFunc aliases echo.MiddlewareFunc.
type MiddlewareFunc = echo.MiddlewareFunc

// Reply scripts the response of a route.
type Reply struct {
	Status   int
	Body     string
	Header   map[string]string
	EchoBody bool // answer with the request body instead of Body
}

// Route represents a single scripted route.
type Route struct {
	Method  string
	Path    string
	Reply   Reply
	Handler HandlerFunc

	// Guarded routes require a valid credential phrase.
	Guarded bool
}

// Recorded is a request as the service received it.
type Recorded struct {
	Method  string
	Path    string
	Header  http.Header
	Body    string
	HasBody bool // false when the request carried no payload
}

type Options struct {
	Middlewares []MiddlewareFunc
	Guard       *auth.Guard
	Logger      echo.Logger
}

type Option func(*Options)

func defaultOptions() Options {
	return Options{Middlewares: []MiddlewareFunc{middleware.Recover()}}
}

func WithMiddlewares(mw ...MiddlewareFunc) Option {
	return func(o *Options) {
		if len(mw) > 0 {
			o.Middlewares = append(o.Middlewares, mw...)
		}
	}
}

// WithGuard checks credential phrases on guarded routes.
func WithGuard(g *auth.Guard) Option {
	return func(o *Options) {
		o.Guard = g
	}
}

func WithLogger(l echo.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// Service is a running mock REST service.
type Service struct {
	echo   *echo.Echo
	server *httptest.Server
	guard  *auth.Guard

	mu       sync.Mutex
	requests []Recorded
}

// New starts a Service with the given routes.
func New(routes []Route, opts ...Option) *Service {
	cfg := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	if cfg.Logger != nil {
		e.Logger = cfg.Logger
	}

	s := &Service{echo: e, guard: cfg.Guard}
	e.Use(s.record)
	for _, mw := range cfg.Middlewares {
		e.Use(mw)
	}
	s.register(routes...)
	s.server = httptest.NewServer(e)
	return s
}

// URL returns the service's base URL.
func (s *Service) URL() string {
	if s == nil || s.server == nil {
		return ""
	}
	return s.server.URL
}

// Close shuts the listener down.
func (s *Service) Close() {
	if s != nil && s.server != nil {
		s.server.Close()
	}
}

// Requests returns a copy of everything received so far.
func (s *Service) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.requests...)
}

// Last returns the most recent request.
func (s *Service) Last() (Recorded, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Recorded{}, false
	}
	return s.requests[len(s.requests)-1], true
}

func (s *Service) register(routes ...Route) {
	for _, r := range routes {
		if r.Path == "" || r.Method == "" {
			continue
		}
		h := r.Handler
		if h == nil {
			h = replyHandler(r.Reply)
		}
		var mw []MiddlewareFunc
		if r.Guarded {
			mw = append(mw, guardMiddleware(s.guard))
		}
		s.echo.Add(strings.ToUpper(r.Method), r.Path, h, mw...)
	}
}

func (s *Service) record(next HandlerFunc) HandlerFunc {
	return func(c Context) error {
		req := c.Request()
		var body []byte
		if req.Body != nil {
			body, _ = io.ReadAll(req.Body)
			req.Body = io.NopCloser(bytes.NewReader(body))
		}
		s.mu.Lock()
		s.requests = append(s.requests, Recorded{
			Method:  req.Method,
			Path:    req.URL.Path,
			Header:  req.Header.Clone(),
			Body:    string(body),
			HasBody: len(body) > 0,
		})
		s.mu.Unlock()
		return next(c)
	}
}

func replyHandler(reply Reply) HandlerFunc {
	return func(c Context) error {
		status := reply.Status
		if status == 0 {
			status = http.StatusOK
		}
		for k, v := range reply.Header {
			c.Response().Header().Set(k, v)
		}
		body := reply.Body
		if reply.EchoBody {
			b, err := io.ReadAll(c.Request().Body)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "unreadable body")
			}
			body = string(b)
		}
		if body == "" {
			return c.NoContent(status)
		}
		return c.String(status, body)
	}
}

func guardMiddleware(g *auth.Guard) MiddlewareFunc {
	if g == nil {
		return func(next HandlerFunc) HandlerFunc {
			return func(c Context) error {
				return echo.NewHTTPError(http.StatusUnauthorized, "guard missing")
			}
		}
	}
	return func(next HandlerFunc) HandlerFunc {
		return func(c Context) error {
			var err error
			downstream := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				c.SetRequest(r)
				err = next(c)
			})
			g.Handler(downstream).ServeHTTP(c.Response(), c.Request())
			return err
		}
	}
}
