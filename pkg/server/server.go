// Package server exposes the folder-map pipeline over HTTP.
//
// Endpoints:
//
//	GET  /healthz                              liveness and build info
//	GET  /api/tree?path=&depth=&refresh=       folder tree JSON
//	GET  /api/layout?path=&depth=&view=        diagram layout JSON
//	POST /api/layout                           layout of a posted tree JSON
//	GET  /api/render?path=&depth=&format=      rendered svg, dot, png or json
//
// Requests that pass a view id follow "latest request wins": when a newer
// request for the same view arrives, the older one is cancelled and answered
// with 409 SUPERSEDED. Concurrent fetches of the same folder share one walk.
//
// Errors are JSON bodies of the form {"code": "...", "message": "..."} with
// the status given by errors.HTTPStatus.
package server

import (
	"context"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/entitymap/pkg/errors"
	"github.com/matzehuels/entitymap/pkg/foldertree"
	"github.com/matzehuels/entitymap/pkg/layout"
	"github.com/matzehuels/entitymap/pkg/pipeline"
)

// Defaults.
const (
	DefaultAddr         = "127.0.0.1:7878"
	DefaultFetchTimeout = 30 * time.Second
	DefaultMaxBodyBytes = 8 << 20
)

// Config configures a Server.
type Config struct {
	Addr string `toml:"addr"`

	// Roots restricts which folders may be walked. Empty allows any folder.
	Roots []string `toml:"roots"`

	// Layout holds the layout constants used for every request.
	Layout layout.Config `toml:"-"`

	FetchTimeout time.Duration `toml:"-"`
	MaxBodyBytes int64         `toml:"-"`
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	c.Layout = c.Layout.WithDefaults()
	return c
}

type fetchFunc func(ctx context.Context, opts pipeline.Options) (*foldertree.Node, bool, error)

type fetchResult struct {
	tree *foldertree.Node
	hit  bool
}

// Server serves the HTTP API.
type Server struct {
	cfg     Config
	runner  *pipeline.Runner
	tracker *pipeline.Tracker
	logger  *log.Logger
	router  chi.Router

	fetches singleflight.Group
	fetch   fetchFunc
}

// New builds a server around runner. A nil logger uses log.Default().
func New(runner *pipeline.Runner, cfg Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	s := &Server{
		cfg:     cfg.withDefaults(),
		runner:  runner,
		tracker: pipeline.NewTracker(),
		logger:  logger.WithPrefix("http"),
	}
	s.fetch = runner.FetchWithCacheInfo
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.cfg.Addr }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/tree", s.handleTree)
		r.Get("/layout", s.handleLayout)
		r.Post("/layout", s.handleLayoutPost)
		r.Get("/render", s.handleRender)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errors.New(errors.ErrCodeUnsupported, "method %s not allowed on %s", r.Method, r.URL.Path))
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}

// fetchTree walks (or loads from cache) the tree for opts. Identical
// concurrent requests share one walk; the walk itself is detached from any
// single request so one caller giving up does not fail the others.
func (s *Server) fetchTree(ctx context.Context, opts pipeline.Options) (*foldertree.Node, bool, error) {
	if err := opts.ValidateForFetch(); err != nil {
		return nil, false, err
	}
	if err := s.checkRoot(opts.Root); err != nil {
		return nil, false, err
	}

	key := opts.Root + "|" + strconv.Itoa(opts.MaxDepth) + "|" + strconv.FormatBool(opts.Refresh)
	ch := s.fetches.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.FetchTimeout)
		defer cancel()
		tree, hit, err := s.fetch(fctx, opts)
		if err != nil {
			if fctx.Err() == context.DeadlineExceeded {
				return nil, errors.Wrap(errors.ErrCodeTimeout, err, "walking %s took longer than %s", opts.Root, s.cfg.FetchTimeout)
			}
			return nil, err
		}
		return fetchResult{tree: tree, hit: hit}, nil
	})

	select {
	case <-ctx.Done():
		return nil, false, context.Cause(ctx)
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		fr := res.Val.(fetchResult)
		return fr.tree, fr.hit, nil
	}
}

// checkRoot enforces Config.Roots.
func (s *Server) checkRoot(root string) error {
	if len(s.cfg.Roots) == 0 {
		return nil
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", root)
	}
	for _, allowed := range s.cfg.Roots {
		a, err := filepath.Abs(allowed)
		if err != nil {
			continue
		}
		if abs == a || strings.HasPrefix(abs, a+string(filepath.Separator)) {
			return nil
		}
	}
	return errors.New(errors.ErrCodeInvalidPath, "%s is outside the served roots", root)
}
