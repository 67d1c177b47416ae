package server

import (
	"io"
	"net/http"

	"github.com/friendsofgo/errors"
	"github.com/gorilla/mux"

	"github.com/nrfta/realestates-go"
	"github.com/nrfta/realestates-go/schemas"
	"github.com/nrfta/realestates-go/workflow"
)

const (
	xActionHeader = "X-Action"
	linkHeader    = "Link"
)

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	re, err := s.payload(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	created, err := s.flow.Create(r.Context(), principal(r.Context()), re)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Location", s.location(r, created.ID))
	s.writeJSON(w, r, http.StatusCreated, created)
}

func (s *Server) find(w http.ResponseWriter, r *http.Request) {
	res, err := s.exec.Find(r.Context(), principal(r.Context()), r.URL.Query().Get("data"), s.collection(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if res.Link != "" {
		w.Header().Set(linkHeader, res.Link)
	}
	nodes := res.Page.Nodes
	if nodes == nil {
		nodes = []map[string]any{}
	}
	s.writeJSON(w, r, http.StatusOK, nodes)
}

func (s *Server) findOne(w http.ResponseWriter, r *http.Request) {
	re, err := s.exec.FindOne(r.Context(), principal(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, re)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	re, err := s.payload(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	updated, err := s.flow.Update(r.Context(), principal(r.Context()), mux.Vars(r)["id"], re)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Location", s.location(r, updated.ID))
	s.writeJSON(w, r, http.StatusOK, updated)
}

// transit runs the bumpup x-action, or the workflow action named by the
// X-Action header or the action query parameter.
func (s *Server) transit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := principal(ctx)
	id := mux.Vars(r)["id"]

	switch action := requestedAction(r); action {
	case "":
		s.writeError(w, r, realestates.UnprocessableEntity("an action is required"))
	case workflow.ActionBumpUp:
		if err := s.flow.BumpUp(ctx, p, id); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		re, err := s.flow.Transit(ctx, p, id, action)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, r, http.StatusOK, re)
	}
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	if err := s.flow.Remove(r.Context(), principal(r.Context()), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// payload reads and validates a create or update body.
func (s *Server) payload(r *http.Request) (*realestates.RealEstate, error) {
	body, err := io.ReadAll(r.Body)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return nil, realestates.UnprocessableEntity("request body exceeds %d bytes", tooLarge.Limit)
	}
	if err != nil {
		return nil, errors.Wrap(err, "read request body")
	}
	return schemas.RealEstate(body)
}
