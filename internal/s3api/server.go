// Package s3api implements the HTTP dispatcher: it resolves the target
// bucket, matches method/query/header shape to an operation, drives the
// object store, listing, CORS, and website components, and renders XML
// responses.
package s3api

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-mizu/blueprints/s3emu/config"
	"github.com/go-mizu/blueprints/s3emu/internal/corsengine"
	"github.com/go-mizu/blueprints/s3emu/internal/events"
	"github.com/go-mizu/blueprints/s3emu/internal/objstore"
	"github.com/go-mizu/blueprints/s3emu/internal/website"
	"github.com/go-mizu/mizu"
)

// Server is the S3-compatible HTTP dispatcher. It is built on mizu.App's
// router and graceful-shutdown lifecycle.
type Server struct {
	*mizu.App

	cfg   config.Options
	store *objstore.Store
	bus   *events.Bus
	log   *slog.Logger

	// defaultCORS is applied to buckets with no explicit PutBucketCors
	// call. nil means CORS is disabled entirely.
	defaultCORS *corsengine.Configuration

	bucketMu sync.RWMutex
	cors     map[string]*corsengine.Configuration
	website  map[string]*website.Config
}

// New builds a Server over cfg's data directory. Routes are registered
// immediately; callers still choose how to bind (Listen, ListenTLS, Serve).
func New(cfg config.Options, log *slog.Logger) (*Server, error) {
	if log == nil {
		log = slog.Default()
	}
	store, err := objstore.New(cfg.Directory)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:     cfg,
		store:   store,
		bus:     events.New(),
		log:     log,
		cors:    make(map[string]*corsengine.Configuration),
		website: make(map[string]*website.Config),
	}

	if !cfg.CORSDisabled {
		if cfg.CORSDocument != "" {
			if parsed, perr := corsengine.Parse([]byte(cfg.CORSDocument)); perr == nil {
				s.defaultCORS = parsed
			} else {
				s.defaultCORS = corsengine.Wildcard()
			}
		} else {
			s.defaultCORS = corsengine.Wildcard()
		}
	}

	if cfg.WebsiteEnabled() {
		s.website[""] = &website.Config{IndexDocument: cfg.IndexDocument, ErrorDocument: cfg.ErrorDocument}
	}

	app := mizu.New(mizu.WithLogger(log))
	s.App = app

	if !cfg.Silent {
		app.Use(mizu.Logger(mizu.LoggerOptions{Logger: log, Mode: mizu.Auto}))
	}
	app.ErrorHandler(func(c *mizu.Ctx, err error) {
		writeErr(c.Writer(), c.Request().URL.Path, s.requestID(), err)
	})

	app.Get("/{rest...}", s.handleGET)
	app.Head("/{rest...}", s.handleHEAD)
	app.Put("/{rest...}", s.handlePUT)
	app.Post("/{rest...}", s.handlePOST)
	app.Delete("/{rest...}", s.handleDELETE)
	app.Options("/{rest...}", s.handleOPTIONS)

	return s, nil
}

// Subscribe exposes the event bus to embedders (the s3Event stream of the
// server lifecycle contract).
func (s *Server) Subscribe(h events.Handler) events.Cancel {
	return s.bus.Subscribe(h)
}

// Close detaches event subscribers and applies the removeBucketsOnClose
// policy (emptying the data root). It does not stop a listener started with
// Listen or ListenTLS, and it does not wait for in-flight requests.
func (s *Server) Close() error {
	s.bus.Close()
	if s.cfg.RemoveBucketsOnClose {
		return s.store.Wipe()
	}
	return nil
}

func resourceName(t target) string {
	if t.Key == "" {
		return "/" + t.Bucket
	}
	return "/" + t.Bucket + "/" + t.Key
}

// writeErr renders err as an <Error> XML document, translating objstore
// sentinel errors into their wire code when the handler didn't already
// produce an *APIError.
func writeErr(w http.ResponseWriter, resource, requestID string, err error) {
	apiErr, ok := err.(*APIError)
	if !ok {
		apiErr = translateStoreErr(err)
		if apiErr == errInternal {
			slog.Error("s3api: internal error", "resource", resource, "request_id", requestID, "err", err)
		}
	}
	writeAPIError(w, resource, requestID, apiErr)
}

// websiteConfigFor returns the effective website config for bucket: a
// per-bucket PutBucketWebsite call if any, else the server-wide default.
func (s *Server) websiteConfigFor(bucket string) (*website.Config, bool) {
	s.bucketMu.RLock()
	defer s.bucketMu.RUnlock()
	if c, ok := s.website[bucket]; ok {
		return c, true
	}
	if c, ok := s.website[""]; ok {
		return c, true
	}
	return nil, false
}

func (s *Server) corsConfigFor(bucket string) *corsengine.Configuration {
	s.bucketMu.RLock()
	defer s.bucketMu.RUnlock()
	if c, ok := s.cors[bucket]; ok {
		return c
	}
	return s.defaultCORS
}
