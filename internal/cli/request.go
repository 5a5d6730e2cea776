package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adeilh/rakh-rest/httpx"
)

var (
	ErrUnsuccessful    = errors.New("cli: request was not successful")
	ErrHeaderMalformed = errors.New("cli: header must be name:value")
)

type verbDef struct {
	method   httpx.Method
	short    string
	withBody bool
}

var verbCommands = []verbDef{
	{httpx.MethodGet, "Make a GET request to the specified URL", false},
	{httpx.MethodPost, "Make a POST request to the specified URL", true},
	{httpx.MethodPut, "Make a PUT request to the specified URL", true},
	{httpx.MethodDelete, "Make a DELETE request to the specified URL", true},
	{httpx.MethodHead, "Make a HEAD request and print the response headers", false},
	{httpx.MethodOptions, "Make an OPTIONS request to the specified URL", false},
	{httpx.MethodTrace, "Make a TRACE request to the specified URL", true},
}

type requestFlags struct {
	data    string
	header  string
	query   string
	include bool

	username string
	password string
}

func newVerbCommand(g *globalFlags, def verbDef) *cobra.Command {
	rf := &requestFlags{}
	cmd := &cobra.Command{
		Use:   strings.ToLower(def.method.String()) + " URL",
		Short: def.short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, g, rf, def.method, args[0], false)
		},
	}
	addRequestFlags(cmd, rf, def.withBody)
	return cmd
}

func newAuthCommand(g *globalFlags) *cobra.Command {
	rf := &requestFlags{}
	cmd := &cobra.Command{
		Use:   "auth URL",
		Short: "POST with a username:password credential phrase header",
		Long: `auth POSTs to URL with the credential phrase "username:password" in a
single header. The phrase is sent verbatim and is not encrypted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, g, rf, httpx.MethodPost, args[0], true)
		},
	}
	addRequestFlags(cmd, rf, true)
	cmd.Flags().StringVarP(&rf.username, "user", "u", "", "Username")
	cmd.Flags().StringVar(&rf.password, "password", "", "Password")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func addRequestFlags(cmd *cobra.Command, rf *requestFlags, withBody bool) {
	f := cmd.Flags()
	f.StringVarP(&rf.header, "header", "H", "", "Custom header to include, as name:value")
	f.StringVarP(&rf.query, "query", "q", "", "Print only the value at this JSON path of a successful body")
	f.BoolVarP(&rf.include, "include", "i", false, "Print the response headers")
	if withBody {
		f.StringVarP(&rf.data, "data", "d", "", "Data to send in the request body")
	}
}

func run(cmd *cobra.Command, g *globalFlags, rf *requestFlags, method httpx.Method, rawURL string, authenticate bool) error {
	var cfg *Config
	if g.configPath != "" {
		loaded, err := LoadConfig(g.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	profile, err := cfg.Profile(g.profile)
	if err != nil {
		return err
	}
	timeout, err := profile.TimeoutDuration()
	if err != nil {
		return err
	}

	logger := httpx.NewLogger("restcall")
	logger.SetOutput(cmd.ErrOrStderr())
	opts := []httpx.ClientOption{
		httpx.WithLogger(logger),
		httpx.WithDebug(g.debug || profile.Debug),
		httpx.WithBaseURL(profile.BaseURL),
		httpx.WithHeaders(profile.Headers),
	}
	if timeout > 0 {
		opts = append(opts, httpx.WithRestyConfig(func(rc httpx.RestClient) { rc.SetTimeout(timeout) }))
	}
	d := httpx.NewDispatcher(opts...)

	var reqOpts []httpx.RequestOption
	if rf.header != "" {
		name, value, err := parseHeader(rf.header)
		if err != nil {
			return err
		}
		reqOpts = append(reqOpts, httpx.WithHeader(name, value))
	}
	var body any
	if f := cmd.Flags().Lookup("data"); f != nil && f.Changed {
		body = rf.data
	}

	out := cmd.OutOrStdout()
	noColor := g.noColor || !isTerminal(out)
	printer := NewPrinter(out, noColor, rf.query, rf.include || method == httpx.MethodHead)
	h := printer.Handlers()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	target := normalizeURL(rawURL, profile.BaseURL != "")

	var call *httpx.Call
	switch {
	case authenticate:
		reqOpts = append(reqOpts,
			httpx.OnRedirect(h.OnRedirect),
			httpx.OnClientError(h.OnClientError),
			httpx.OnServerError(h.OnServerError),
			httpx.OnHeaders(h.OnHeaders),
		)
		call = d.Authenticate(ctx, target, body, g.async, rf.username, rf.password, h.OnSuccess, reqOpts...)
	case method == httpx.MethodGet:
		call = d.Get(ctx, target, g.async, h, reqOpts...)
	case method == httpx.MethodPost:
		call = d.Post(ctx, target, g.async, body, h, reqOpts...)
	case method == httpx.MethodPut:
		call = d.Put(ctx, target, g.async, body, h, reqOpts...)
	case method == httpx.MethodDelete:
		call = d.Delete(ctx, target, g.async, body, h, reqOpts...)
	case method == httpx.MethodHead:
		call = d.Head(ctx, target, g.async, h, reqOpts...)
	case method == httpx.MethodOptions:
		call = d.Options(ctx, target, g.async, h, reqOpts...)
	case method == httpx.MethodTrace:
		call = d.Trace(ctx, target, g.async, body, h, reqOpts...)
	default:
		return &httpx.MethodError{Method: method.String()}
	}

	outcome, err := call.Wait()
	if err != nil {
		return err
	}
	if err := printer.Err(); err != nil {
		return err
	}
	switch outcome.Class {
	case httpx.ClassClientError, httpx.ClassServerError:
		return fmt.Errorf("%w: %d %s", ErrUnsuccessful, outcome.StatusCode, outcome.Class)
	}
	return nil
}

func parseHeader(raw string) (string, string, error) {
	name, value, ok := strings.Cut(raw, ":")
	name, value = strings.TrimSpace(name), strings.TrimSpace(value)
	if !ok || name == "" || value == "" {
		return "", "", fmt.Errorf("%w: %q", ErrHeaderMalformed, raw)
	}
	return name, value, nil
}

// normalizeURL adds a scheme to absolute targets typed without one. Relative
// targets are left alone when a base URL will resolve them.
func normalizeURL(raw string, hasBase bool) string {
	if raw == "" {
		return raw
	}
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" && u.Host != "" {
		return raw
	}
	if hasBase || strings.HasPrefix(raw, "/") {
		return raw
	}
	return "http://" + raw
}
