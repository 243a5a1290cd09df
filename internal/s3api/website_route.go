package s3api

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-mizu/blueprints/s3emu/internal/website"
	"github.com/go-mizu/mizu"
)

// storeResolver adapts objstore.Store to website.Resolver.
type storeResolver struct{ s *Server }

func (r storeResolver) Exists(bucket, key string) bool {
	_, err := r.s.store.HeadObject(bucket, key)
	return err == nil
}

// requestPathAfterBucket returns the URL path with the bucket's own
// segment removed, preserving a trailing slash; "/bucket" and "/bucket/"
// both yield "/" (resolveTarget gives both an empty Key).
func requestPathAfterBucket(c *mizu.Ctx, bucket string) string {
	p := c.Request().URL.Path
	trimmed := strings.TrimPrefix(p, "/"+bucket)
	if trimmed == "" {
		return "/"
	}
	return trimmed
}

// serveWebsite renders the static-website response for a GET that either
// targets the bucket root, a key prefix ending in "/", or a key that
// turned out not to exist.
func (s *Server) serveWebsite(c *mizu.Ctx, t target, rid string, cfg *website.Config) error {
	reqPath := requestPathAfterBucket(c, t.Bucket)
	key, isIndex := cfg.Route(t.Bucket, reqPath, storeResolver{s})
	if isIndex {
		res, err := s.store.GetObject(t.Bucket, key)
		if err != nil {
			return s.serveWebsiteNotFound(c, t, cfg)
		}
		defer res.Body.Close()
		setObjectHeaders(c, res)
		c.Writer().WriteHeader(http.StatusOK)
		_, _ = io.Copy(c.Writer(), res.Body)
		return nil
	}
	return s.serveWebsiteNotFound(c, t, cfg)
}

func (s *Server) serveWebsiteNotFound(c *mizu.Ctx, t target, cfg *website.Config) error {
	if errDoc := cfg.ErrorDocumentKey(); errDoc != "" {
		if res, err := s.store.GetObject(t.Bucket, errDoc); err == nil {
			defer res.Body.Close()
			c.Header().Set("Content-Type", res.ContentType)
			c.Writer().WriteHeader(http.StatusNotFound)
			_, _ = io.Copy(c.Writer(), res.Body)
			return nil
		}
	}
	c.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.Writer().WriteHeader(http.StatusNotFound)
	_, _ = c.Writer().Write([]byte(website.NotFoundBody))
	return nil
}
