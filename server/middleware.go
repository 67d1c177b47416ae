package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/nrfta/realestates-go"
	"github.com/nrfta/realestates-go/logging"
	"github.com/nrfta/realestates-go/throttle"
)

const requestIDHeader = "X-Request-Id"

type principalKey struct{}

func principal(ctx context.Context) realestates.Principal {
	if p, ok := ctx.Value(principalKey{}).(realestates.Principal); ok {
		return p
	}
	return realestates.Anonymous()
}

// anonymousRoutes may be called without credentials.
var anonymousRoutes = map[string]bool{
	routeFind:    true,
	routeFindOne: true,
	routeHealth:  true,
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		logger := s.logger.With("request_id", id, "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(logging.WithLogger(r.Context(), logger)))
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := s.auth.Authenticate(r.Header.Get("Authorization"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if p.IsAnonymous() && !anonymousRoutes[routeName(r)] {
			s.writeError(w, r, realestates.Unauthorized("sign in to %s real estates", routeName(r)))
			return
		}

		ctx := context.WithValue(r.Context(), principalKey{}, p)
		if !p.IsAnonymous() {
			ctx = logging.WithLogger(ctx, logging.FromContext(ctx).With("user", p.ID))
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.throttle == nil {
			next.ServeHTTP(w, r)
			return
		}

		action := throttleAction(r)
		ip := clientIP(r)
		p := principal(r.Context())
		apiKey := p.ID
		if p.IsAnonymous() {
			apiKey = "anonymous:" + ip
		}

		if err := s.throttle.Allow(r.Context(), throttle.APIs, action, apiKey); err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := s.throttle.Allow(r.Context(), throttle.IPs, action, ip); err != nil {
			s.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.maxBody > 0 && r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
		}
		next.ServeHTTP(w, r)
	})
}

func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		return route.GetName()
	}
	return ""
}

// requestedAction is the action a POST to an item asks for: the X-Action
// header, or the action query parameter when the header is absent.
func requestedAction(r *http.Request) string {
	if action := r.Header.Get(xActionHeader); action != "" {
		return action
	}
	return r.URL.Query().Get("action")
}

// throttleAction is the requested action of a POST to an item, the route
// name otherwise.
func throttleAction(r *http.Request) string {
	name := routeName(r)
	if name == routeTransit {
		if action := requestedAction(r); action != "" {
			return action
		}
	}
	return name
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type recoveryLogger struct {
	logger *slog.Logger
}

func (l recoveryLogger) Println(v ...any) {
	l.logger.Error("recovered from panic", "panic", fmt.Sprint(v...))
}
