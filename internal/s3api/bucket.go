package s3api

import (
	"encoding/xml"
	"io"
	"net/http"

	"github.com/go-mizu/blueprints/s3emu/internal/corsengine"
	"github.com/go-mizu/blueprints/s3emu/internal/objstore"
	"github.com/go-mizu/blueprints/s3emu/internal/validate"
	"github.com/go-mizu/blueprints/s3emu/internal/website"
	"github.com/go-mizu/mizu"
)

func (s *Server) listBuckets(c *mizu.Ctx, rid string) error {
	buckets, err := s.store.ListBuckets()
	if err != nil {
		return writeErrCtx(c, "/", rid, err)
	}
	entries := make([]bucketEntry, 0, len(buckets))
	for _, b := range buckets {
		entries = append(entries, bucketEntry{Name: b.Name, CreationDate: b.CreationTime.UTC().Format(iso8601)})
	}
	doc := listAllMyBucketsResult{
		Xmlns:   xmlNamespace,
		Owner:   cannedOwner,
		Buckets: bucketListWrap{Bucket: entries},
	}
	return writeXML(c, http.StatusOK, doc)
}

func (s *Server) headBucket(c *mizu.Ctx, t target, rid string) error {
	if !s.store.BucketExists(t.Bucket) {
		return writeErrCtx(c, resourceName(t), rid, objstore.ErrNoSuchBucket)
	}
	c.Writer().WriteHeader(http.StatusOK)
	return nil
}

func (s *Server) createBucket(c *mizu.Ctx, t target, rid string) error {
	if !validate.BucketName(t.Bucket) {
		return writeErrCtx(c, resourceName(t), rid, errInvalidBucketName)
	}
	if err := s.store.CreateBucket(t.Bucket); err != nil {
		return writeErrCtx(c, resourceName(t), rid, err)
	}
	c.Header().Set("Location", "/"+t.Bucket)
	c.Writer().WriteHeader(http.StatusOK)
	return nil
}

func (s *Server) deleteBucket(c *mizu.Ctx, t target, rid string) error {
	if err := s.store.DeleteBucket(t.Bucket); err != nil {
		return writeErrCtx(c, resourceName(t), rid, err)
	}
	s.bucketMu.Lock()
	delete(s.cors, t.Bucket)
	delete(s.website, t.Bucket)
	s.bucketMu.Unlock()
	c.Writer().WriteHeader(http.StatusNoContent)
	return nil
}

func (s *Server) getBucketLocation(c *mizu.Ctx, t target, rid string) error {
	if !s.store.BucketExists(t.Bucket) {
		return writeErrCtx(c, resourceName(t), rid, objstore.ErrNoSuchBucket)
	}
	return writeXML(c, http.StatusOK, locationConstraint{Value: ""})
}

func (s *Server) getBucketACL(c *mizu.Ctx, t target, rid string) error {
	if !s.store.BucketExists(t.Bucket) {
		return writeErrCtx(c, resourceName(t), rid, objstore.ErrNoSuchBucket)
	}
	return writeXML(c, http.StatusOK, cannedACL())
}

func (s *Server) putBucketACL(c *mizu.Ctx, t target, rid string) error {
	if !s.store.BucketExists(t.Bucket) {
		return writeErrCtx(c, resourceName(t), rid, objstore.ErrNoSuchBucket)
	}
	c.Writer().WriteHeader(http.StatusOK)
	return nil
}

func (s *Server) getObjectACL(c *mizu.Ctx, t target, rid string) error {
	if _, err := s.store.HeadObject(t.Bucket, t.Key); err != nil {
		return writeErrCtx(c, resourceName(t), rid, err)
	}
	return writeXML(c, http.StatusOK, cannedACL())
}

// getBucketPolicy and getBucketVersioning are canned responses: this
// emulator has no policy language or versioning state.
func (s *Server) getBucketPolicy(c *mizu.Ctx, t target, rid string) error {
	if !s.store.BucketExists(t.Bucket) {
		return writeErrCtx(c, resourceName(t), rid, objstore.ErrNoSuchBucket)
	}
	return writeErrCtx(c, resourceName(t), rid, newError(http.StatusNotFound, "NoSuchBucketPolicy", "The bucket policy does not exist."))
}

func (s *Server) getBucketVersioning(c *mizu.Ctx, t target, rid string) error {
	if !s.store.BucketExists(t.Bucket) {
		return writeErrCtx(c, resourceName(t), rid, objstore.ErrNoSuchBucket)
	}
	type versioningConfiguration struct {
		XMLName xml.Name `xml:"VersioningConfiguration"`
		Xmlns   string   `xml:"xmlns,attr"`
	}
	return writeXML(c, http.StatusOK, versioningConfiguration{Xmlns: xmlNamespace})
}

func (s *Server) getBucketCORS(c *mizu.Ctx, t target, rid string) error {
	if !s.store.BucketExists(t.Bucket) {
		return writeErrCtx(c, resourceName(t), rid, objstore.ErrNoSuchBucket)
	}
	s.bucketMu.RLock()
	cfg, ok := s.cors[t.Bucket]
	s.bucketMu.RUnlock()
	if !ok {
		return writeErrCtx(c, resourceName(t), rid, newError(http.StatusNotFound, "NoSuchCORSConfiguration", "The CORS configuration does not exist."))
	}
	return writeXML(c, http.StatusOK, cfg)
}

func (s *Server) putBucketCORS(c *mizu.Ctx, t target, rid string) error {
	if !s.store.BucketExists(t.Bucket) {
		return writeErrCtx(c, resourceName(t), rid, objstore.ErrNoSuchBucket)
	}
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return writeErrCtx(c, resourceName(t), rid, errInternal)
	}
	cfg, err := corsengine.Parse(body)
	if err != nil {
		return writeErrCtx(c, resourceName(t), rid, errMalformedXML)
	}
	s.bucketMu.Lock()
	s.cors[t.Bucket] = cfg
	s.bucketMu.Unlock()
	c.Writer().WriteHeader(http.StatusOK)
	return nil
}

func (s *Server) deleteBucketCORS(c *mizu.Ctx, t target, rid string) error {
	if !s.store.BucketExists(t.Bucket) {
		return writeErrCtx(c, resourceName(t), rid, objstore.ErrNoSuchBucket)
	}
	s.bucketMu.Lock()
	delete(s.cors, t.Bucket)
	s.bucketMu.Unlock()
	c.Writer().WriteHeader(http.StatusNoContent)
	return nil
}

func (s *Server) getBucketWebsite(c *mizu.Ctx, t target, rid string) error {
	if !s.store.BucketExists(t.Bucket) {
		return writeErrCtx(c, resourceName(t), rid, objstore.ErrNoSuchBucket)
	}
	s.bucketMu.RLock()
	cfg, ok := s.website[t.Bucket]
	s.bucketMu.RUnlock()
	if !ok {
		return writeErrCtx(c, resourceName(t), rid, newError(http.StatusNotFound, "NoSuchWebsiteConfiguration", "The website configuration does not exist."))
	}
	doc := websiteConfiguration{Xmlns: xmlNamespace}
	if cfg.IndexDocument != "" {
		doc.IndexDocument = &suffixDoc{Suffix: cfg.IndexDocument}
	}
	if cfg.ErrorDocument != "" {
		doc.ErrorDocument = &keyDoc{Key: cfg.ErrorDocument}
	}
	return writeXML(c, http.StatusOK, doc)
}

func (s *Server) putBucketWebsite(c *mizu.Ctx, t target, rid string) error {
	if !s.store.BucketExists(t.Bucket) {
		return writeErrCtx(c, resourceName(t), rid, objstore.ErrNoSuchBucket)
	}
	var doc websiteConfiguration
	if err := xml.NewDecoder(c.Request().Body).Decode(&doc); err != nil {
		return writeErrCtx(c, resourceName(t), rid, errMalformedXML)
	}
	cfg := &website.Config{}
	if doc.IndexDocument != nil {
		cfg.IndexDocument = doc.IndexDocument.Suffix
	}
	if doc.ErrorDocument != nil {
		cfg.ErrorDocument = doc.ErrorDocument.Key
	}
	s.bucketMu.Lock()
	s.website[t.Bucket] = cfg
	s.bucketMu.Unlock()
	c.Writer().WriteHeader(http.StatusOK)
	return nil
}

func (s *Server) deleteBucketWebsite(c *mizu.Ctx, t target, rid string) error {
	if !s.store.BucketExists(t.Bucket) {
		return writeErrCtx(c, resourceName(t), rid, objstore.ErrNoSuchBucket)
	}
	s.bucketMu.Lock()
	delete(s.website, t.Bucket)
	s.bucketMu.Unlock()
	c.Writer().WriteHeader(http.StatusNoContent)
	return nil
}

const iso8601 = "2006-01-02T15:04:05.000Z"

func writeXML(c *mizu.Ctx, status int, v any) error {
	c.Header().Set("Content-Type", "application/xml")
	c.Writer().WriteHeader(status)
	_, err := io.WriteString(c.Writer(), xml.Header)
	if err != nil {
		return nil
	}
	return xml.NewEncoder(c.Writer()).Encode(v)
}
