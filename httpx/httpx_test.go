package httpx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/labstack/gommon/log"

	"github.com/adeilh/rakh-rest/auth"
	"github.com/adeilh/rakh-rest/internal/testutil/mockservice"
)

func itemRoutes() []mockservice.Route {
	return []mockservice.Route{
		{Method: "GET", Path: "/items/1", Reply: mockservice.Reply{Status: StatusOK, Body: `{"id":1}`, Header: map[string]string{"X-Resource": "1"}}},
		{Method: "HEAD", Path: "/items/1", Reply: mockservice.Reply{Status: StatusOK, Header: map[string]string{"X-Resource": "1"}}},
		{Method: "POST", Path: "/items", Reply: mockservice.Reply{Status: StatusCreated, Body: "/items/2"}},
		{Method: "PUT", Path: "/items/2", Reply: mockservice.Reply{EchoBody: true}},
		{Method: "DELETE", Path: "/items/2", Reply: mockservice.Reply{Status: StatusNoContent}},
		{Method: "OPTIONS", Path: "/items", Reply: mockservice.Reply{Status: StatusNoContent, Header: map[string]string{"Allow": "GET, POST, OPTIONS"}}},
		{Method: "TRACE", Path: "/items", Reply: mockservice.Reply{EchoBody: true}},
		{Method: "GET", Path: "/moved", Reply: mockservice.Reply{Status: StatusFound, Body: "moved", Header: map[string]string{"Location": "/items/1"}}},
		{Method: "GET", Path: "/missing", Reply: mockservice.Reply{Status: StatusNotFound, Body: "not found"}},
		{Method: "GET", Path: "/broken", Reply: mockservice.Reply{Status: StatusServiceUnavailable, Body: "down"}},
		{Method: "GET", Path: "/odd", Reply: mockservice.Reply{Status: 600, Body: "odd"}},
	}
}

func TestAsyncGetDeliversSuccess(t *testing.T) {
	svc := mockservice.New(itemRoutes())
	defer svc.Close()

	d := NewDispatcher()
	rec := &callbackRecorder{}
	call := d.Get(context.Background(), svc.URL()+"/items/1", true, rec.handlers())

	out, err := call.Wait()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []callbackCall{{name: "success", body: `{"id":1}`, code: 200, message: "SUCCESS: successfully requested."}}
	if !reflect.DeepEqual(rec.snapshot(), want) {
		t.Fatalf("unexpected callbacks: %+v", rec.snapshot())
	}
	if out.Class != ClassSuccess || out.Body != `{"id":1}` || out.Header.Get("X-Resource") != "1" {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if !strings.Contains(out.RawHeaders, "x-resource: 1\r\n") {
		t.Fatalf("raw headers missing x-resource: %q", out.RawHeaders)
	}
}

func TestSyncDispatchCompletesBeforeReturn(t *testing.T) {
	svc := mockservice.New(itemRoutes())
	defer svc.Close()

	d := NewDispatcher()
	rec := &callbackRecorder{}
	call := d.Get(context.Background(), svc.URL()+"/items/1", false, rec.handlers())

	select {
	case <-call.Done():
	default:
		t.Fatalf("synchronous call should be complete on return")
	}
	if len(rec.snapshot()) != 1 {
		t.Fatalf("callback should have run before return, got %+v", rec.snapshot())
	}
}

func TestStatusClassesRouteToMatchingCallback(t *testing.T) {
	svc := mockservice.New(itemRoutes())
	defer svc.Close()

	cases := []struct {
		path string
		want callbackCall
	}{
		{"/moved", callbackCall{name: "redirect", body: "moved", code: StatusFound, message: MessageRedirect}},
		{"/missing", callbackCall{name: "client", body: "not found", code: StatusNotFound, message: MessageClientError}},
		{"/broken", callbackCall{name: "server", body: "down", code: StatusServiceUnavailable, message: MessageServerError}},
	}

	d := NewDispatcher()
	for _, tc := range cases {
		rec := &callbackRecorder{}
		if _, err := d.Get(context.Background(), svc.URL()+tc.path, false, rec.handlers()).Wait(); err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.path, err)
		}
		if got := rec.snapshot(); len(got) != 1 || got[0] != tc.want {
			t.Fatalf("%s: unexpected callbacks %+v", tc.path, got)
		}
		if len(rec.headerSnapshot()) != 1 {
			t.Fatalf("%s: header callback should fire once", tc.path)
		}
	}
}

func TestRedirectIsNotFollowed(t *testing.T) {
	svc := mockservice.New(itemRoutes())
	defer svc.Close()

	d := NewDispatcher()
	out, err := d.Get(context.Background(), svc.URL()+"/moved", false, Handlers{}).Wait()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.StatusCode != StatusFound || out.Header.Get("Location") != "/items/1" {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if n := len(svc.Requests()); n != 1 {
		t.Fatalf("expected a single request, service saw %d", n)
	}
}

func TestUnclassifiedStatusIsReported(t *testing.T) {
	svc := mockservice.New(itemRoutes())
	defer svc.Close()

	d := NewDispatcher()
	rec := &callbackRecorder{}
	out, err := d.Get(context.Background(), svc.URL()+"/odd", false, rec.handlers()).Wait()
	if !errors.Is(err, ErrUnclassifiedStatus) {
		t.Fatalf("expected ErrUnclassifiedStatus, got %v", err)
	}
	if out == nil || out.Class != ClassUnclassified || out.StatusCode != 600 || out.Body != "odd" {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if len(rec.snapshot()) != 0 || len(rec.headerSnapshot()) != 0 {
		t.Fatalf("no status callback expected")
	}
	if len(rec.failureSnapshot()) != 1 {
		t.Fatalf("expected one failure notification")
	}
}

func TestTransportFailure(t *testing.T) {
	svc := mockservice.New(itemRoutes())
	url := svc.URL() + "/items/1"
	svc.Close()

	d := NewDispatcher()
	for _, async := range []bool{false, true} {
		rec := &callbackRecorder{}
		out, err := d.Get(context.Background(), url, async, rec.handlers()).Wait()
		if out != nil {
			t.Fatalf("async=%v: outcome should be nil, got %+v", async, out)
		}
		var terr *TransportError
		if !errors.As(err, &terr) || !errors.Is(err, ErrTransport) {
			t.Fatalf("async=%v: expected TransportError, got %v", async, err)
		}
		if terr.Method != MethodGet || terr.URL != url {
			t.Fatalf("async=%v: unexpected error fields %+v", async, terr)
		}
		if len(rec.snapshot()) != 0 || len(rec.headerSnapshot()) != 0 {
			t.Fatalf("async=%v: no status callback expected", async)
		}
		if len(rec.failureSnapshot()) != 1 {
			t.Fatalf("async=%v: expected one failure notification", async)
		}
	}
}

func TestInvalidRequestNeverSends(t *testing.T) {
	svc := mockservice.New(itemRoutes())
	defer svc.Close()

	d := NewDispatcher()
	rec := &callbackRecorder{}
	_, err := d.Dispatch(context.Background(), Request{Method: "PATCH", URL: svc.URL(), Handlers: rec.handlers()}).Wait()
	if !errors.Is(err, ErrInvalidMethod) {
		t.Fatalf("expected ErrInvalidMethod, got %v", err)
	}
	_, err = d.Dispatch(context.Background(), Request{Method: MethodGet, URL: "  ", Handlers: rec.handlers()}).Wait()
	if !errors.Is(err, ErrMissingURL) {
		t.Fatalf("expected ErrMissingURL, got %v", err)
	}
	if len(svc.Requests()) != 0 || len(rec.failureSnapshot()) != 0 {
		t.Fatalf("invalid requests must not reach the network or callbacks")
	}
}

func TestHeadRoutesSuccessThroughHeaderCallback(t *testing.T) {
	svc := mockservice.New(itemRoutes())
	defer svc.Close()

	d := NewDispatcher()
	var (
		mu      sync.Mutex
		gotRaw  string
		gotCode int
		calls   int
	)
	onSuccess := func(raw string, code int, _ string) {
		mu.Lock()
		defer mu.Unlock()
		gotRaw, gotCode = raw, code
		calls++
	}
	if _, err := d.Head(context.Background(), svc.URL()+"/items/1", true, Handlers{OnSuccess: onSuccess}).Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 || gotCode != StatusOK || !strings.Contains(gotRaw, "x-resource: 1") {
		t.Fatalf("expected the header block through the success callback, got calls=%d code=%d raw=%q", calls, gotCode, gotRaw)
	}

	rec := &callbackRecorder{}
	req := Request{Method: MethodHead, URL: svc.URL() + "/items/1", Handlers: rec.handlers()}
	if _, err := d.Do(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.snapshot()) != 0 || len(rec.headerSnapshot()) != 1 {
		t.Fatalf("HEAD must only notify the header callback: %+v %+v", rec.snapshot(), rec.headerSnapshot())
	}
}

func TestHeadPromotesSuccessOption(t *testing.T) {
	svc := mockservice.New(itemRoutes())
	defer svc.Close()

	var calls atomic.Int32
	var gotRaw atomic.Value
	cb := func(raw string, _ int, _ string) {
		calls.Add(1)
		gotRaw.Store(raw)
	}
	d := NewDispatcher()
	if _, err := d.Head(context.Background(), svc.URL()+"/items/1", false, Handlers{}, OnSuccess(cb)).Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, _ := gotRaw.Load().(string)
	if calls.Load() != 1 || !strings.Contains(raw, "x-resource: 1") {
		t.Fatalf("expected the option callback to receive the header block once, got calls=%d raw=%q", calls.Load(), raw)
	}
}

func TestVerbAdapters(t *testing.T) {
	svc := mockservice.New(itemRoutes())
	defer svc.Close()

	d := NewDispatcher(WithBaseURL(svc.URL()))
	ctx := context.Background()
	cases := []struct {
		name       string
		call       func(Handlers) *Call
		wantMethod string
		wantBody   string
		wantCode   int
		wantResp   string
	}{
		{"post", func(h Handlers) *Call { return d.Post(ctx, "/items", false, `{"name":"a"}`, h) }, "POST", `{"name":"a"}`, StatusCreated, "/items/2"},
		{"put", func(h Handlers) *Call { return d.Put(ctx, "/items/2", false, "replacement", h) }, "PUT", "replacement", StatusOK, "replacement"},
		{"delete", func(h Handlers) *Call { return d.Delete(ctx, "/items/2", true, nil, h) }, "DELETE", "", StatusNoContent, ""},
		{"options", func(h Handlers) *Call { return d.Options(ctx, "/items", false, h) }, "OPTIONS", "", StatusNoContent, ""},
		{"trace", func(h Handlers) *Call { return d.Trace(ctx, "/items", true, "echo me", h) }, "TRACE", "echo me", StatusOK, "echo me"},
		{"get ignores body option", func(h Handlers) *Call { return d.Get(ctx, "/items/1", false, h, WithBody("ignored")) }, "GET", "", StatusOK, `{"id":1}`},
	}

	for _, tc := range cases {
		rec := &callbackRecorder{}
		if _, err := tc.call(rec.handlers()).Wait(); err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		got, ok := svc.Last()
		if !ok || got.Method != tc.wantMethod || got.Body != tc.wantBody {
			t.Fatalf("%s: service saw %+v", tc.name, got)
		}
		calls := rec.snapshot()
		if len(calls) != 1 || calls[0].name != "success" || calls[0].code != tc.wantCode || calls[0].body != tc.wantResp {
			t.Fatalf("%s: unexpected callbacks %+v", tc.name, calls)
		}
	}

	rec := &callbackRecorder{}
	if _, err := d.Options(ctx, "/items", false, rec.handlers()).Wait(); err != nil {
		t.Fatalf("options: %v", err)
	}
	if hs := rec.headerSnapshot(); len(hs) != 1 || !strings.Contains(hs[0].body, "allow: GET, POST, OPTIONS") {
		t.Fatalf("options should expose the Allow header, got %+v", hs)
	}
}

func TestCustomHeaderAttachedOnlyWhenComplete(t *testing.T) {
	svc := mockservice.New(itemRoutes())
	defer svc.Close()

	d := NewDispatcher()
	ctx := context.Background()

	if _, err := d.Get(ctx, svc.URL()+"/items/1", false, Handlers{}, WithHeader("X-Trace", "abc")).Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := svc.Last()
	if got.Header.Get("X-Trace") != "abc" {
		t.Fatalf("expected X-Trace header, got %v", got.Header)
	}

	if _, err := d.Get(ctx, svc.URL()+"/items/1", false, Handlers{}, WithHeader("X-Trace", "")).Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ = svc.Last()
	if _, present := got.Header["X-Trace"]; present {
		t.Fatalf("half-set header must not be attached, got %v", got.Header)
	}
}

func TestAuthenticateSendsPhraseVerbatim(t *testing.T) {
	ctx := context.Background()
	store := auth.NewMemoryStore(auth.NewBcryptHasher(auth.WithBcryptCost(4)))
	if err := store.Add(ctx, "alice", "secret"); err != nil {
		t.Fatalf("store: %v", err)
	}
	guard, err := auth.NewGuard(store, store.Hasher())
	if err != nil {
		t.Fatalf("guard: %v", err)
	}
	svc := mockservice.New([]mockservice.Route{
		{Method: "POST", Path: "/login", Reply: mockservice.Reply{Status: StatusOK, Body: "welcome"}, Guarded: true},
	}, mockservice.WithGuard(guard))
	defer svc.Close()

	d := NewDispatcher()
	rec := &callbackRecorder{}
	if _, err := d.Authenticate(ctx, svc.URL()+"/login", "payload", true, "alice", "secret", rec.handlers().OnSuccess).Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := svc.Last()
	if got.Method != "POST" || got.Body != "payload" || got.Header.Get(auth.HeaderName) != "alice:secret" {
		t.Fatalf("unexpected request: %+v", got)
	}
	if calls := rec.snapshot(); len(calls) != 1 || calls[0].body != "welcome" {
		t.Fatalf("unexpected callbacks: %+v", calls)
	}

	rec = &callbackRecorder{}
	h := rec.handlers()
	_, err = d.Authenticate(ctx, svc.URL()+"/login", "payload", false, "alice", "wrong", h.OnSuccess, OnClientError(h.OnClientError)).Wait()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls := rec.snapshot(); len(calls) != 1 || calls[0].name != "client" || calls[0].code != StatusUnauthorized {
		t.Fatalf("expected a 401 client error, got %+v", calls)
	}
}

func TestDebugTraceDistinguishesBodyPaths(t *testing.T) {
	svc := mockservice.New(itemRoutes())
	defer svc.Close()

	logger := &recordingLogger{}
	d := NewDispatcher(WithLogger(logger), WithDebug(true))
	ctx := context.Background()

	if _, err := d.Delete(ctx, svc.URL()+"/items/2", false, nil, Handlers{}).Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !logger.contains(debugSentWithoutBody) || logger.contains(debugSentWithBody) {
		t.Fatalf("nil body should take the send-without-body path: %v", logger.snapshot())
	}

	logger.reset()
	if _, err := d.Delete(ctx, svc.URL()+"/items/2", false, "", Handlers{}, WithHeader("X-Trace", "1")).Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		debugRequestOpened + " DELETE " + svc.URL() + "/items/2",
		debugHeaderSet + " X-Trace",
		debugSentWithBody,
		DebugText(StatusNoContent),
	}
	if got := logger.snapshot(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected trace:\n%v\nwant\n%v", got, want)
	}
}

func TestNilBinaryBodyIsSentWithoutBody(t *testing.T) {
	svc := mockservice.New(itemRoutes())
	defer svc.Close()

	logger := &recordingLogger{}
	d := NewDispatcher(WithLogger(logger), WithDebug(true))
	ctx := context.Background()

	for _, body := range []any{[]byte(nil), map[string]string(nil), (*struct{ ID int })(nil)} {
		logger.reset()
		var failed error
		out, err := d.Put(ctx, svc.URL()+"/items/2", false, body, Handlers{OnFailure: func(err error) { failed = err }}).Wait()
		if err != nil || failed != nil {
			t.Fatalf("%T: unexpected error: %v %v", body, err, failed)
		}
		if out.StatusCode != StatusOK {
			t.Fatalf("%T: unexpected status %d", body, out.StatusCode)
		}
		if !logger.contains(debugSentWithoutBody) || logger.contains(debugSentWithBody) {
			t.Fatalf("%T: nil body should take the send-without-body path: %v", body, logger.snapshot())
		}
		if got, _ := svc.Last(); got.HasBody {
			t.Fatalf("%T: expected no payload, got %q", body, got.Body)
		}
	}

	logger.reset()
	if _, err := d.Put(ctx, svc.URL()+"/items/2", false, []byte{}, Handlers{}).Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !logger.contains(debugSentWithBody) {
		t.Fatalf("an empty non-nil slice is still a body: %v", logger.snapshot())
	}
}

func TestRequestHasBody(t *testing.T) {
	var nilBytes []byte
	cases := []struct {
		name string
		body any
		want bool
	}{
		{"nil", nil, false},
		{"nil bytes", nilBytes, false},
		{"empty bytes", []byte{}, true},
		{"empty string", "", true},
		{"struct", struct{}{}, true},
		{"nil pointer", (*Request)(nil), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := (Request{Body: tc.body}).HasBody(); got != tc.want {
				t.Fatalf("HasBody() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDebugToggleDoesNotChangeDelivery(t *testing.T) {
	svc := mockservice.New(itemRoutes())
	defer svc.Close()

	logger := &recordingLogger{}
	d := NewDispatcher(WithLogger(logger))
	paths := []string{"/items/1", "/moved", "/missing", "/broken"}

	run := func() []callbackCall {
		rec := &callbackRecorder{}
		for _, p := range paths {
			if _, err := d.Get(context.Background(), svc.URL()+p, false, rec.handlers()).Wait(); err != nil {
				t.Fatalf("%s: unexpected error: %v", p, err)
			}
		}
		return rec.snapshot()
	}

	if d.Debug() {
		t.Fatalf("debug should default to disabled")
	}
	quiet := run()
	if n := len(logger.snapshot()); n != 0 {
		t.Fatalf("expected no trace while disabled, got %d lines", n)
	}

	d.EnableDebug()
	loud := run()
	if len(logger.snapshot()) == 0 {
		t.Fatalf("expected trace lines while enabled")
	}
	if !reflect.DeepEqual(quiet, loud) {
		t.Fatalf("callbacks differ with debug enabled:\n%+v\n%+v", quiet, loud)
	}

	d.DisableDebug()
	logger.reset()
	run()
	if n := len(logger.snapshot()); n != 0 {
		t.Fatalf("expected no trace after disabling, got %d lines", n)
	}
}

func TestGommonLoggerReceivesTrace(t *testing.T) {
	svc := mockservice.New(itemRoutes())
	defer svc.Close()

	var buf bytes.Buffer
	l := NewLogger("rest")
	l.SetOutput(&buf)
	l.SetLevel(log.DEBUG)

	d := NewDispatcher(WithLogger(l))
	d.EnableDebug()
	if _, err := d.Get(context.Background(), svc.URL()+"/missing", false, Handlers{}).Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{debugRequestOpened, debugSentWithoutBody, "DEBUG: 404 Not Found. Client error."} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestConcurrentAsyncCallsAreIndependent(t *testing.T) {
	svc := mockservice.New(itemRoutes())
	defer svc.Close()

	d := NewDispatcher()
	rec := &callbackRecorder{}
	calls := make([]*Call, 0, 20)
	for i := 0; i < 20; i++ {
		path := "/items/1"
		if i%2 == 1 {
			path = "/missing"
		}
		calls = append(calls, d.Get(context.Background(), svc.URL()+path, true, rec.handlers()))
	}
	for _, c := range calls {
		if _, err := c.Wait(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	var success, client int
	for _, c := range rec.snapshot() {
		switch c.name {
		case "success":
			success++
		case "client":
			client++
		default:
			t.Fatalf("unexpected callback %+v", c)
		}
	}
	if success != 10 || client != 10 {
		t.Fatalf("unexpected split: success=%d client=%d", success, client)
	}
}

func TestClientDefaultsAndRestyConfigHook(t *testing.T) {
	svc := mockservice.New(itemRoutes())
	defer svc.Close()

	d := NewDispatcher(
		WithHeaders(map[string]string{"X-Default": "on", "X-Trace": "default"}),
		WithRestyConfig(func(rc RestClient) {
			rc.SetHeader("X-Config", "hooked")
		}),
	)
	if _, err := d.Get(context.Background(), svc.URL()+"/items/1", false, Handlers{}, WithHeader("X-Trace", "custom")).Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := svc.Last()
	if got.Header.Get("X-Default") != "on" || got.Header.Get("X-Config") != "hooked" || got.Header.Get("X-Trace") != "custom" {
		t.Fatalf("unexpected headers: %v", got.Header)
	}
}

type countingTransport struct {
	next  http.RoundTripper
	trips atomic.Int32
}

func (c *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	c.trips.Add(1)
	return c.next.RoundTrip(r)
}

func TestRestyConfigTransport(t *testing.T) {
	svc := mockservice.New(itemRoutes())
	defer svc.Close()

	transport := &countingTransport{next: http.DefaultTransport}
	d := NewDispatcher(WithRestyConfig(func(rc RestClient) {
		rc.SetTransport(transport)
	}))
	for _, p := range []string{"/items/1", "/moved"} {
		if _, err := d.Get(context.Background(), svc.URL()+p, false, Handlers{}).Wait(); err != nil {
			t.Fatalf("%s: unexpected error: %v", p, err)
		}
	}
	if n := transport.trips.Load(); n != 2 {
		t.Fatalf("expected 2 round trips through the configured transport, got %d", n)
	}
}

func TestNewRequestOptions(t *testing.T) {
	var fired []string
	req, err := NewRequest(MethodPost, "http://svc/items",
		WithAsync(true),
		WithBody(""),
		WithHeader(" X-Key ", "v"),
		OnSuccess(func(string, int, string) { fired = append(fired, "success") }),
		OnRedirect(func(string, int, string) { fired = append(fired, "redirect") }),
		OnServerError(func(string, int, string) { fired = append(fired, "server") }),
		OnHeaders(func(string, int, string) { fired = append(fired, "headers") }),
		OnFailure(func(error) { fired = append(fired, "failure") }),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !req.Async || !req.HasBody() || !req.HasHeader() || req.HeaderName != "X-Key" {
		t.Fatalf("unexpected request: %+v", req)
	}
	_ = deliver(req.Handlers, newOutcome(MethodPost, req.URL, 201, nil, nil))
	_ = deliver(req.Handlers, newOutcome(MethodPost, req.URL, 502, nil, nil))
	if want := []string{"success", "headers", "server", "headers"}; !reflect.DeepEqual(fired, want) {
		t.Fatalf("unexpected firing order %v", fired)
	}

	if _, err := NewRequest(MethodGet, ""); !errors.Is(err, ErrMissingURL) {
		t.Fatalf("expected ErrMissingURL, got %v", err)
	}
	if _, err := ParseMethod("patch"); !errors.Is(err, ErrInvalidMethod) {
		t.Fatalf("expected ErrInvalidMethod, got %v", err)
	}
	if m, err := ParseMethod(" trace "); err != nil || m != MethodTrace {
		t.Fatalf("ParseMethod(trace) = %v, %v", m, err)
	}
}

type callbackCall struct {
	name    string
	body    string
	code    int
	message string
}

type callbackRecorder struct {
	mu       sync.Mutex
	calls    []callbackCall
	headers  []callbackCall
	failures []error
}

func (r *callbackRecorder) record(name string) Callback {
	return func(body string, code int, message string) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.calls = append(r.calls, callbackCall{name: name, body: body, code: code, message: message})
	}
}

func (r *callbackRecorder) handlers() Handlers {
	return Handlers{
		OnSuccess:     r.record("success"),
		OnRedirect:    r.record("redirect"),
		OnClientError: r.record("client"),
		OnServerError: r.record("server"),
		OnHeaders: func(raw string, code int, message string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.headers = append(r.headers, callbackCall{name: "headers", body: raw, code: code, message: message})
		},
		OnFailure: func(err error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.failures = append(r.failures, err)
		},
	}
}

func (r *callbackRecorder) snapshot() []callbackCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]callbackCall(nil), r.calls...)
}

func (r *callbackRecorder) headerSnapshot() []callbackCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]callbackCall(nil), r.headers...)
}

func (r *callbackRecorder) failureSnapshot() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.failures...)
}

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) Debugf(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

func (l *recordingLogger) Warnf(string, ...interface{})  {}
func (l *recordingLogger) Errorf(string, ...interface{}) {}

func (l *recordingLogger) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

func (l *recordingLogger) contains(s string) bool {
	for _, line := range l.snapshot() {
		if strings.Contains(line, s) {
			return true
		}
	}
	return false
}

func (l *recordingLogger) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = nil
}

var _ Logger = (*log.Logger)(nil)
