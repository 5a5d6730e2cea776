package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/tidwall/gjson"

	"github.com/adeilh/rakh-rest/httpx"
)

var (
	ErrNotJSON      = errors.New("cli: response body is not JSON")
	ErrQueryNoMatch = errors.New("cli: query matched nothing")
)

// ColorScheme defines the colors used for the parts of an outcome.
type ColorScheme struct {
	StatusOK    *color.Color
	StatusWarn  *color.Color
	StatusError *color.Color
	HeaderKey   *color.Color
	HeaderValue *color.Color
	Body        *color.Color
}

func DefaultColorScheme() *ColorScheme {
	return &ColorScheme{
		StatusOK:    color.New(color.FgGreen, color.Bold),
		StatusWarn:  color.New(color.FgYellow, color.Bold),
		StatusError: color.New(color.FgRed, color.Bold),
		HeaderKey:   color.New(color.FgYellow),
		HeaderValue: color.New(color.FgWhite),
		Body:        color.New(color.Reset),
	}
}

// NoColorScheme returns a color scheme with all colors disabled
func NoColorScheme() *ColorScheme {
	scheme := DefaultColorScheme()
	for _, c := range []*color.Color{scheme.StatusOK, scheme.StatusWarn, scheme.StatusError, scheme.HeaderKey, scheme.HeaderValue, scheme.Body} {
		c.DisableColor()
	}
	return scheme
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Printer renders dispatcher callbacks. It is safe to hand its handlers to an
// async call.
type Printer struct {
	w           io.Writer
	scheme      *ColorScheme
	query       string
	showHeaders bool

	mu            sync.Mutex
	statusPrinted bool
	err           error
}

func NewPrinter(w io.Writer, noColor bool, query string, showHeaders bool) *Printer {
	scheme := DefaultColorScheme()
	if noColor {
		scheme = NoColorScheme()
	}
	return &Printer{w: w, scheme: scheme, query: query, showHeaders: showHeaders}
}

// Handlers returns one callback per status class plus the header callback.
func (p *Printer) Handlers() httpx.Handlers {
	return httpx.Handlers{
		OnSuccess:     p.status(p.scheme.StatusOK, true),
		OnRedirect:    p.status(p.scheme.StatusWarn, false),
		OnClientError: p.status(p.scheme.StatusError, false),
		OnServerError: p.status(p.scheme.StatusError, false),
		OnHeaders:     p.headers,
	}
}

// Err reports a failed --query evaluation.
func (p *Printer) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *Printer) status(c *color.Color, queryable bool) httpx.Callback {
	return func(body string, code int, message string) {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.statusLine(c, code, message)
		if queryable && p.query != "" {
			value, err := extract(body, p.query)
			if err != nil {
				p.err = err
				return
			}
			body = value
		}
		if body != "" {
			p.scheme.Body.Fprintln(p.w, body)
		}
	}
}

func (p *Printer) headers(raw string, code int, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.statusPrinted {
		p.statusLine(p.colorFor(code), code, message)
	}
	if !p.showHeaders {
		return
	}
	for _, line := range strings.Split(strings.TrimSuffix(raw, "\r\n"), "\r\n") {
		name, value, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		p.scheme.HeaderKey.Fprint(p.w, name+": ")
		p.scheme.HeaderValue.Fprintln(p.w, value)
	}
}

// statusLine must be called with mu held.
func (p *Printer) statusLine(c *color.Color, code int, message string) {
	c.Fprintf(p.w, "%d %s\n", code, message)
	p.statusPrinted = true
}

func (p *Printer) colorFor(code int) *color.Color {
	switch httpx.Classify(code) {
	case httpx.ClassSuccess:
		return p.scheme.StatusOK
	case httpx.ClassRedirect:
		return p.scheme.StatusWarn
	default:
		return p.scheme.StatusError
	}
}

func extract(body, query string) (string, error) {
	if !gjson.Valid(body) {
		return "", ErrNotJSON
	}
	result := gjson.Get(body, gjsonPath(query))
	if !result.Exists() {
		return "", fmt.Errorf("%w: %s", ErrQueryNoMatch, query)
	}
	if result.Type == gjson.Null {
		return "null", nil
	}
	return result.String(), nil
}

// gjsonPath accepts either a gjson path or a simple JSONPath such as
// $.items[0].id.
func gjsonPath(query string) string {
	if !strings.HasPrefix(query, "$") {
		return query
	}
	path := strings.TrimPrefix(strings.TrimPrefix(query, "$"), ".")
	if path == "" {
		return "@this"
	}
	path = strings.NewReplacer("['", ".", "']", "", `["`, ".", `"]`, "").Replace(path)
	path = strings.ReplaceAll(path, "[", ".")
	path = strings.ReplaceAll(path, "]", "")
	return strings.TrimPrefix(path, ".")
}
