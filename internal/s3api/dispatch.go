package s3api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-mizu/mizu"
)

// handleGET dispatches every GET: list-buckets at the root, bucket
// subresources and listings, or object reads.
func (s *Server) handleGET(c *mizu.Ctx) error {
	t := s.resolveTarget(c.Request())
	rid := s.requestID()

	if t.Bucket == "" {
		return s.listBuckets(c, rid)
	}

	q := c.QueryValues()
	if t.Key == "" {
		switch {
		case q.Has("location"):
			return s.getBucketLocation(c, t, rid)
		case q.Has("cors"):
			return s.getBucketCORS(c, t, rid)
		case q.Has("website"):
			return s.getBucketWebsite(c, t, rid)
		case q.Has("acl"):
			return s.getBucketACL(c, t, rid)
		case q.Has("policy"):
			return s.getBucketPolicy(c, t, rid)
		case q.Has("versioning"):
			return s.getBucketVersioning(c, t, rid)
		case q.Has("uploads"):
			return s.listMultipartUploads(c, t, rid)
		default:
			if cfg, ok := s.websiteConfigFor(t.Bucket); ok {
				return s.serveWebsite(c, t, rid, cfg)
			}
			return s.listObjects(c, t, rid)
		}
	}

	if q.Has("uploadId") {
		return s.listParts(c, t, rid)
	}
	if q.Has("acl") {
		return s.getObjectACL(c, t, rid)
	}
	if cfg, ok := s.websiteConfigFor(t.Bucket); ok {
		if strings.HasSuffix(t.Key, "/") || !s.store.BucketExists(t.Bucket) {
			return s.serveWebsite(c, t, rid, cfg)
		}
		if _, err := s.store.HeadObject(t.Bucket, t.Key); err != nil {
			return s.serveWebsiteNotFound(c, t, cfg)
		}
	}
	return s.getObject(c, t, rid)
}

func (s *Server) handleHEAD(c *mizu.Ctx) error {
	t := s.resolveTarget(c.Request())
	rid := s.requestID()

	if t.Bucket == "" {
		return writeErrCtx(c, "/", rid, errInvalidRequest("bucket required"))
	}
	if t.Key == "" {
		return s.headBucket(c, t, rid)
	}
	return s.headObject(c, t, rid)
}

func (s *Server) handlePUT(c *mizu.Ctx) error {
	t := s.resolveTarget(c.Request())
	rid := s.requestID()
	q := c.QueryValues()

	if t.Bucket == "" {
		return writeErrCtx(c, "/", rid, errInvalidRequest("bucket required"))
	}

	if t.Key == "" {
		switch {
		case q.Has("cors"):
			return s.putBucketCORS(c, t, rid)
		case q.Has("website"):
			return s.putBucketWebsite(c, t, rid)
		case q.Has("acl"):
			return s.putBucketACL(c, t, rid)
		default:
			return s.createBucket(c, t, rid)
		}
	}

	if uploadID := q.Get("uploadId"); uploadID != "" && q.Has("partNumber") {
		return s.uploadPart(c, t, rid, uploadID)
	}
	if copySrc := c.Request().Header.Get("x-amz-copy-source"); copySrc != "" {
		return s.copyObject(c, t, rid, copySrc)
	}
	return s.putObject(c, t, rid)
}

func (s *Server) handlePOST(c *mizu.Ctx) error {
	t := s.resolveTarget(c.Request())
	rid := s.requestID()
	q := c.QueryValues()

	if t.Key == "" {
		if q.Has("delete") {
			return s.deleteObjects(c, t, rid)
		}
		return writeErrCtx(c, resourceName(t), rid, errInvalidRequest("unsupported bucket POST"))
	}

	switch {
	case q.Has("uploads"):
		return s.initiateMultipartUpload(c, t, rid)
	case q.Has("uploadId"):
		return s.completeMultipartUpload(c, t, rid, q.Get("uploadId"))
	default:
		return writeErrCtx(c, resourceName(t), rid, errInvalidRequest("unsupported object POST"))
	}
}

func (s *Server) handleDELETE(c *mizu.Ctx) error {
	t := s.resolveTarget(c.Request())
	rid := s.requestID()
	q := c.QueryValues()

	if t.Bucket == "" {
		return writeErrCtx(c, "/", rid, errInvalidRequest("bucket required"))
	}

	if t.Key == "" {
		switch {
		case q.Has("cors"):
			return s.deleteBucketCORS(c, t, rid)
		case q.Has("website"):
			return s.deleteBucketWebsite(c, t, rid)
		default:
			return s.deleteBucket(c, t, rid)
		}
	}

	if uploadID := q.Get("uploadId"); uploadID != "" {
		return s.abortMultipartUpload(c, t, rid, uploadID)
	}
	return s.deleteObject(c, t, rid)
}

// handleOPTIONS serves CORS preflight. It is the one request shape where an
// unmatched rule yields an empty 403 instead of an <Error> document.
func (s *Server) handleOPTIONS(c *mizu.Ctx) error {
	t := s.resolveTarget(c.Request())
	r := c.Request()
	origin := r.Header.Get("Origin")
	reqMethod := r.Header.Get("Access-Control-Request-Method")

	cfg := s.corsConfigFor(t.Bucket)
	if cfg == nil || origin == "" || reqMethod == "" {
		c.Writer().WriteHeader(http.StatusForbidden)
		return nil
	}

	var reqHeaders []string
	if raw := r.Header.Get("Access-Control-Request-Headers"); raw != "" {
		for _, h := range strings.Split(raw, ",") {
			reqHeaders = append(reqHeaders, strings.TrimSpace(h))
		}
	}

	d := cfg.Preflight(origin, reqMethod, reqHeaders)
	if !d.Matched {
		c.Writer().WriteHeader(http.StatusForbidden)
		return nil
	}

	h := c.Header()
	h.Set("Access-Control-Allow-Origin", d.AllowOrigin)
	h.Set("Access-Control-Allow-Methods", strings.Join(d.AllowMethods, ", "))
	if len(d.AllowHeaders) > 0 {
		h.Set("Access-Control-Allow-Headers", strings.Join(d.AllowHeaders, ", "))
	}
	if d.MaxAgeSet() {
		h.Set("Access-Control-Max-Age", strconv.Itoa(d.MaxAgeSeconds))
	}
	c.Writer().WriteHeader(http.StatusOK)
	return nil
}

// applyCORSHeaders decorates a normal (non-preflight) response with CORS
// headers when the configured rules match the request's origin and method.
// extraExpose appends headers to the configured expose-list without
// mutating it, e.g. Accept-Ranges/Content-Range on a range response.
func (s *Server) applyCORSHeaders(c *mizu.Ctx, bucket string, extraExpose ...string) {
	origin := c.Request().Header.Get("Origin")
	if origin == "" {
		return
	}
	cfg := s.corsConfigFor(bucket)
	d := cfg.Evaluate(origin, c.Request().Method)
	if !d.Matched {
		return
	}
	c.Header().Set("Access-Control-Allow-Origin", d.AllowOrigin)

	expose := append([]string(nil), d.ExposeHeaders...)
	for _, h := range extraExpose {
		dup := false
		for _, e := range expose {
			if strings.EqualFold(e, h) {
				dup = true
				break
			}
		}
		if !dup {
			expose = append(expose, h)
		}
	}
	if len(expose) > 0 {
		c.Header().Set("Access-Control-Expose-Headers", strings.Join(expose, ", "))
	}
}

func writeErrCtx(c *mizu.Ctx, resource, requestID string, err error) error {
	writeErr(c.Writer(), resource, requestID, err)
	return nil
}
