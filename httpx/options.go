package httpx

import (
	"os"

	"github.com/labstack/gommon/log"
)

// Logger is the logging contract shared by gommon, echo.Logger and resty.
type Logger interface {
	Errorf(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Debugf(format string, v ...interface{})
}

type ClientOptions struct {
	BaseURL     string
	Headers     map[string]string
	Debug       bool
	Logger      Logger
	RestyConfig func(RestClient)
}

type ClientOption func(*ClientOptions)

func defaultClientOptions() ClientOptions {
	return ClientOptions{Logger: NewLogger("httpx")}
}

// NewLogger returns a gommon logger at debug level writing to stderr. The
// dispatcher decides on its own whether a debug line is emitted.
func NewLogger(prefix string) *log.Logger {
	l := log.New(prefix)
	l.SetOutput(os.Stderr)
	l.SetHeader("${time_rfc3339} ${level} ${prefix}")
	l.SetLevel(log.DEBUG)
	return l
}

// WithBaseURL resolves relative request URLs against url.
func WithBaseURL(url string) ClientOption {
	return func(o *ClientOptions) {
		if url != "" {
			o.BaseURL = url
		}
	}
}

// WithHeaders sets headers sent on every request, below the per-request
// custom header.
func WithHeaders(headers map[string]string) ClientOption {
	return func(o *ClientOptions) {
		if len(headers) == 0 {
			return
		}
		o.Headers = make(map[string]string, len(headers))
		for k, v := range headers {
			o.Headers[k] = v
		}
	}
}

// WithDebug sets the initial debug state.
func WithDebug(enabled bool) ClientOption {
	return func(o *ClientOptions) {
		o.Debug = enabled
	}
}

func WithLogger(l Logger) ClientOption {
	return func(o *ClientOptions) {
		if l != nil {
			o.Logger = l
		}
	}
}

func WithRestyConfig(fn func(RestClient)) ClientOption {
	return func(o *ClientOptions) {
		o.RestyConfig = fn
	}
}
