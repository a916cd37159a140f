package fakebackend

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/attribution/pkg/logger"
	"github.com/dmitrymomot/attribution/pkg/requestid"
)

// Paths served by the backend.
const (
	PathInit              = "/api/client/init"
	PathTrigger           = "/api/client/trigger"
	PathSignup            = "/api/client/signup"
	PathSetUserData       = "/api/client/set-user-data"
	PathCapturePayment    = "/api/client/capture-payment"
	PathRemovePayment     = "/api/client/remove-captured-payment"
	PathCaptureEvent      = "/api/client/capture-event"
	PathDeeplinkTriggered = "/api/client/deeplink-triggered"
	PathAttributionData   = "/api/client/attribution-data"
	PathSetAdditionalData = "/api/client/set-additional-data"
	PathSetPushToken      = "/api/client/set-push-token"
	PathHealth            = "/healthz"
)

// Paths lists every client endpoint.
var Paths = []string{
	PathInit,
	PathTrigger,
	PathSignup,
	PathSetUserData,
	PathCapturePayment,
	PathRemovePayment,
	PathCaptureEvent,
	PathDeeplinkTriggered,
	PathAttributionData,
	PathSetAdditionalData,
	PathSetPushToken,
}

// Call is one recorded request.
type Call struct {
	Path      string
	RequestID string
	UserAgent string
	Body      map[string]any
	At        time.Time
}

// Response is what an endpoint answers with. HTTPStatus defaults to Status.
type Response struct {
	HTTPStatus int
	Status     int
	Data       any
	Msg        string
}

// Backend is an in-process stand-in for the attribution backend. It records
// every call and answers with configurable envelopes.
type Backend struct {
	mu        sync.RWMutex
	calls     []Call
	responses map[string]Response
	token     string
	log       *slog.Logger
}

// Option configures a Backend.
type Option func(*Backend)

// WithToken makes the backend reject bodies whose token differs.
func WithToken(token string) Option {
	return func(b *Backend) {
		b.token = token
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Backend) {
		b.log = logger.OrDiscard(l).With(logger.Component("fakebackend"))
	}
}

// New creates a backend answering 200 with empty data on every endpoint.
func New(opts ...Option) *Backend {
	b := &Backend{
		responses: make(map[string]Response),
		log:       logger.Discard(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Respond sets the answer for path.
func (b *Backend) Respond(path string, r Response) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.responses[path] = r
}

// Fail makes path answer with a rejected envelope.
func (b *Backend) Fail(path string, status int, msg string) {
	b.Respond(path, Response{HTTPStatus: status, Status: status, Msg: msg})
}

// WithDeeplink makes init, signup and trigger return link, with trigger as
// the auto-activation flag on signup and trigger.
func (b *Backend) WithDeeplink(link string, trigger bool) *Backend {
	b.Respond(PathInit, Response{Status: http.StatusOK, Data: map[string]any{"deeplink": link}})
	for _, p := range []string{PathSignup, PathTrigger} {
		b.Respond(p, Response{Status: http.StatusOK, Data: map[string]any{"deeplink": link, "trigger": trigger}})
	}
	return b
}

// Calls returns a copy of every recorded call.
func (b *Backend) Calls() []Call {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.calls)
}

// CallsTo returns the calls recorded for path.
func (b *Backend) CallsTo(path string) []Call {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []Call
	for _, c := range b.calls {
		if c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets recorded calls. Configured responses are kept.
func (b *Backend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = nil
}

// Handler returns the router.
func (b *Backend) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestid.Middleware)

	r.Get(PathHealth, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ALIVE"))
	})

	r.Route("/api/client", func(api chi.Router) {
		api.Use(middleware.AllowContentType("application/json"))
		for _, p := range Paths {
			api.Post(p[len("/api/client"):], b.handle(p))
		}
	})
	return r
}

func (b *Backend) handle(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			b.log.WarnContext(r.Context(), "malformed request body", logger.Endpoint(path), logger.Error(err))
			writeJSON(w, http.StatusBadRequest, envelope{Status: http.StatusBadRequest, Msg: "malformed JSON body"})
			return
		}

		call := Call{
			Path:      path,
			RequestID: requestid.FromContext(r.Context()),
			UserAgent: r.UserAgent(),
			Body:      body,
			At:        time.Now(),
		}

		b.mu.Lock()
		b.calls = append(b.calls, call)
		resp, ok := b.responses[path]
		token := b.token
		b.mu.Unlock()

		b.log.InfoContext(r.Context(), "request received", logger.Endpoint(path), logger.RequestID(call.RequestID))

		if token != "" && body["token"] != token {
			writeJSON(w, http.StatusUnauthorized, envelope{Status: http.StatusUnauthorized, Msg: "invalid project token"})
			return
		}

		if !ok {
			resp = Response{Status: http.StatusOK, Data: map[string]any{}}
		}
		httpStatus := resp.HTTPStatus
		if httpStatus == 0 {
			httpStatus = resp.Status
		}
		if httpStatus == 0 {
			httpStatus = http.StatusOK
		}
		writeJSON(w, httpStatus, envelope{Status: resp.Status, Data: resp.Data, Msg: resp.Msg})
	}
}

type envelope struct {
	Status int    `json:"status"`
	Data   any    `json:"data,omitempty"`
	Msg    string `json:"msg,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
