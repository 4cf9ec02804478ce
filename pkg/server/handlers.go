package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/matzehuels/entitymap/pkg/buildinfo"
	"github.com/matzehuels/entitymap/pkg/errors"
	"github.com/matzehuels/entitymap/pkg/foldertree"
	"github.com/matzehuels/entitymap/pkg/layout"
	"github.com/matzehuels/entitymap/pkg/observability"
	"github.com/matzehuels/entitymap/pkg/pipeline"
	"github.com/matzehuels/entitymap/pkg/render"
)

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
	// Views is the number of views with a layout request in flight.
	Views int `json:"views"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get(), Views: s.tracker.Active()})
}

// fetchOptions reads path, depth and refresh from the query string.
func fetchOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{Root: q.Get("path")}

	if d := q.Get("depth"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidDepth, "depth must be an integer: %q", d)
		}
		opts.MaxDepth = n
	}
	if rf := q.Get("refresh"); rf != "" {
		b, err := strconv.ParseBool(rf)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "refresh must be a boolean: %q", rf)
		}
		opts.Refresh = b
	}
	return opts, nil
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	opts, err := fetchOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tree, hit, err := s.fetchTree(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("X-Cache", cacheHeader(hit))
	writeJSON(w, http.StatusOK, tree)
}

// handleLayout fetches and lays out a folder. With a view id, only the
// newest request for that view gets a layout; older ones get 409.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := fetchOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx := r.Context()
	var ticket *pipeline.Ticket
	if view := r.URL.Query().Get("view"); view != "" {
		ctx, ticket = s.tracker.Begin(ctx, view)
		defer s.tracker.Finish(ticket)
		w.Header().Set("X-Request-Seq", strconv.FormatUint(ticket.Seq, 10))
	}

	l, hit, err := s.layoutFor(ctx, opts)
	if err == nil && ticket != nil {
		err = ticket.Check()
	}
	if err != nil {
		if ticket != nil && errors.Is(err, errors.ErrCodeSuperseded) {
			observability.HTTP().OnSuperseded(r.Context(), ticket.Key)
			s.logger.Debug("superseded", "view", ticket.Key, "seq", ticket.Seq, "latest", s.tracker.Latest(ticket.Key))
		}
		writeError(w, r, err)
		return
	}
	w.Header().Set("X-Cache", cacheHeader(hit))
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) layoutFor(ctx context.Context, opts pipeline.Options) (layout.Layout, bool, error) {
	tree, hit, err := s.fetchTree(ctx, opts)
	if err != nil {
		return layout.Layout{}, false, err
	}
	opts.Layout = s.cfg.Layout
	l, err := s.runner.Layout(ctx, tree, opts)
	if err != nil {
		if cause := context.Cause(ctx); cause != nil {
			return layout.Layout{}, false, cause
		}
		return layout.Layout{}, false, err
	}
	return l, hit, nil
}

func (s *Server) handleLayoutPost(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	tree, err := foldertree.Read(body)
	if err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode tree"))
		return
	}
	l, err := s.runner.Layout(r.Context(), tree, pipeline.Options{Layout: s.cfg.Layout})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := fetchOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = render.FormatSVG
	}
	if err := errors.ValidateFormat(format, render.Formats...); err != nil {
		writeError(w, r, err)
		return
	}

	l, _, err := s.layoutFor(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	opts.Formats = []string{format}
	artifacts, hit, err := s.runner.RenderWithCacheInfo(r.Context(), l, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", render.ContentType(format))
	w.Header().Set("X-Cache", cacheHeader(hit))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

func cacheHeader(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}
