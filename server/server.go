// Package server exposes real estates over HTTP.
//
// Routes, relative to the configured prefix:
//
//	POST   /      create              201, Location
//	GET    /      list (?data=...)    200, Link
//	GET    /{id}  fetch               200
//	PUT    /{id}  update              200, Location
//	POST   /{id}  transit or x-action 200, or 204 for bumpup
//	DELETE /{id}  remove              204
//
// Failures are written as {"code": ..., "message": ...} with the status of
// the realestates.Error taxonomy.
package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/nrfta/realestates-go"
	"github.com/nrfta/realestates-go/auth"
	"github.com/nrfta/realestates-go/executor"
	"github.com/nrfta/realestates-go/throttle"
	"github.com/nrfta/realestates-go/workflow"
)

// Route names double as throttle action names.
const (
	routeCreate  = "create"
	routeFind    = "find"
	routeFindOne = "findOne"
	routeUpdate  = "update"
	routeTransit = "transit"
	routeRemove  = "remove"
	routeHealth  = "healthz"
)

const defaultPrefix = "/apis/v/realestates"

// Server is the HTTP handler of the service.
type Server struct {
	exec      *executor.Executor
	flow      *workflow.Workflow
	auth      *auth.Authenticator
	throttle  *throttle.Throttle
	logger    *slog.Logger
	accessLog io.Writer
	prefix    string
	publicURL *url.URL
	maxBody   int64

	execOpts []executor.Option
	flowOpts []workflow.Option

	handler http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithThrottle enables rate limiting.
func WithThrottle(t *throttle.Throttle) Option {
	return func(s *Server) {
		s.throttle = t
	}
}

// WithLogger sets the application logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithAccessLog writes combined-format access logs to w.
func WithAccessLog(w io.Writer) Option {
	return func(s *Server) {
		s.accessLog = w
	}
}

// WithPrefix mounts the routes under prefix.
func WithPrefix(prefix string) Option {
	return func(s *Server) {
		s.prefix = prefix
	}
}

// WithPublicURL sets the origin used in Location and Link headers. Without
// it the request host is used.
func WithPublicURL(u *url.URL) Option {
	return func(s *Server) {
		s.publicURL = u
	}
}

// WithMaxBodyBytes limits request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		s.maxBody = n
	}
}

// WithExecutorOptions configures the list executor.
func WithExecutorOptions(opts ...executor.Option) Option {
	return func(s *Server) {
		s.execOpts = append(s.execOpts, opts...)
	}
}

// WithWorkflowOptions configures the workflow.
func WithWorkflowOptions(opts ...workflow.Option) Option {
	return func(s *Server) {
		s.flowOpts = append(s.flowOpts, opts...)
	}
}

// New creates a Server over store. Requests are authenticated with authn.
func New(store realestates.Store, authn *auth.Authenticator, opts ...Option) *Server {
	s := &Server{
		auth:    authn,
		logger:  slog.Default(),
		prefix:  defaultPrefix,
		maxBody: 1 << 20,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.exec = executor.New(store, s.execOpts...)
	s.flow = workflow.New(store, s.exec, s.flowOpts...)

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, realestates.NotFound("no route for %s %s", r.Method, r.URL.Path))
	})
	router.HandleFunc("/healthz", s.health).Methods(http.MethodGet).Name(routeHealth)

	for _, path := range []string{s.prefix, s.prefix + "/"} {
		router.HandleFunc(path, s.create).Methods(http.MethodPost).Name(routeCreate)
		router.HandleFunc(path, s.find).Methods(http.MethodGet).Name(routeFind)
	}
	item := s.prefix + "/{id}"
	router.HandleFunc(item, s.findOne).Methods(http.MethodGet).Name(routeFindOne)
	router.HandleFunc(item, s.update).Methods(http.MethodPut).Name(routeUpdate)
	router.HandleFunc(item, s.transit).Methods(http.MethodPost).Name(routeTransit)
	router.HandleFunc(item, s.remove).Methods(http.MethodDelete).Name(routeRemove)

	router.Use(s.authenticate, s.limit, s.limitBody)

	var h http.Handler = router
	h = s.requestID(h)
	if s.accessLog != nil {
		h = handlers.CombinedLoggingHandler(s.accessLog, h)
	}
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{s.logger}),
		handlers.PrintRecoveryStack(true),
	)(h)
	s.handler = h

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

// collection is the absolute URL of the collection for r.
func (s *Server) collection(r *http.Request) *url.URL {
	if s.publicURL != nil {
		u := *s.publicURL
		u.Path = u.Path + s.prefix
		return &u
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return &url.URL{Scheme: scheme, Host: r.Host, Path: s.prefix}
}

func (s *Server) location(r *http.Request, id string) string {
	u := s.collection(r)
	u.Path = u.Path + "/" + id
	return u.String()
}
