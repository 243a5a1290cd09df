package s3api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-mizu/blueprints/s3emu/internal/events"
	"github.com/go-mizu/blueprints/s3emu/internal/objstore"
	"github.com/go-mizu/blueprints/s3emu/internal/validate"
	"github.com/go-mizu/mizu"
)

const metaHeaderPrefix = "X-Amz-Meta-"

func userMetadataFromHeaders(h http.Header) map[string]string {
	out := map[string]string{}
	for name, vals := range h {
		if len(vals) == 0 {
			continue
		}
		if strings.HasPrefix(strings.ToLower(name), strings.ToLower(metaHeaderPrefix)) {
			key := strings.ToLower(strings.TrimPrefix(strings.ToLower(name), strings.ToLower(metaHeaderPrefix)))
			out[key] = vals[0]
		}
	}
	return out
}

func (s *Server) putObject(c *mizu.Ctx, t target, rid string) error {
	if !validate.Key(t.Key) {
		return writeErrCtx(c, resourceName(t), rid, errInvalidRequest("invalid key"))
	}
	r := c.Request()
	h := objstore.PutHeaders{
		ContentType:        r.Header.Get("Content-Type"),
		ContentEncoding:    r.Header.Get("Content-Encoding"),
		ContentDisposition: r.Header.Get("Content-Disposition"),
		CacheControl:       r.Header.Get("Cache-Control"),
		Expires:            r.Header.Get("Expires"),
		ContentMD5:         r.Header.Get("Content-MD5"),
		UserMetadata:       userMetadataFromHeaders(r.Header),
	}

	info, err := s.store.PutObject(t.Bucket, t.Key, r.Body, h)
	if err != nil {
		return writeErrCtx(c, resourceName(t), rid, err)
	}

	s.bus.Publish(events.Event{
		Name: events.ObjectCreatedPut, Bucket: t.Bucket, Key: t.Key,
		Size: info.Size, ETag: info.ETag,
	})

	c.Header().Set("ETag", `"`+info.ETag+`"`)
	s.applyCORSHeaders(c, t.Bucket)
	c.Writer().WriteHeader(http.StatusOK)
	return nil
}

func (s *Server) getObject(c *mizu.Ctx, t target, rid string) error {
	res, err := s.store.GetObject(t.Bucket, t.Key)
	if err != nil {
		return writeErrCtx(c, resourceName(t), rid, err)
	}
	defer res.Body.Close()

	setObjectHeaders(c, res)

	rangeHeader := c.Request().Header.Get("Range")
	if rangeHeader == "" {
		s.applyCORSHeaders(c, t.Bucket)
		c.Writer().WriteHeader(http.StatusOK)
		_, _ = io.Copy(c.Writer(), res.Body)
		return nil
	}

	start, end, ok := parseRange(rangeHeader, res.Size)
	if !ok {
		s.applyCORSHeaders(c, t.Bucket)
		c.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", res.Size))
		return writeErrCtx(c, resourceName(t), rid, newError(http.StatusRequestedRangeNotSatisfiable, "InvalidRange", "The requested range cannot be satisfied."))
	}

	seeker, canSeek := res.Body.(io.Seeker)
	if canSeek {
		if _, err := seeker.Seek(start, io.SeekStart); err != nil {
			return writeErrCtx(c, resourceName(t), rid, errInternal)
		}
	}

	length := end - start + 1
	c.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, res.Size))
	c.Header().Set("Accept-Ranges", "bytes")
	c.Header().Set("Content-Length", strconv.FormatInt(length, 10))
	s.applyCORSHeaders(c, t.Bucket, "Accept-Ranges", "Content-Range")
	c.Writer().WriteHeader(http.StatusPartialContent)
	_, _ = io.CopyN(c.Writer(), res.Body, length)
	return nil
}

func (s *Server) headObject(c *mizu.Ctx, t target, rid string) error {
	res, err := s.store.HeadObject(t.Bucket, t.Key)
	if err != nil {
		return writeErrCtx(c, resourceName(t), rid, err)
	}
	setObjectHeaders(c, res)
	s.applyCORSHeaders(c, t.Bucket)
	c.Writer().WriteHeader(http.StatusOK)
	return nil
}

func setObjectHeaders(c *mizu.Ctx, res *objstore.GetResult) {
	h := c.Header()
	h.Set("ETag", `"`+res.ETag+`"`)
	h.Set("Last-Modified", res.LastModified.Format(http.TimeFormat))
	h.Set("Content-Type", res.ContentType)
	h.Set("Content-Length", strconv.FormatInt(res.Size, 10))
	h.Set("Accept-Ranges", "bytes")
	if res.Headers.ContentEncoding != "" {
		h.Set("Content-Encoding", res.Headers.ContentEncoding)
	}
	if res.Headers.ContentDisposition != "" {
		h.Set("Content-Disposition", res.Headers.ContentDisposition)
	}
	if res.Headers.CacheControl != "" {
		h.Set("Cache-Control", res.Headers.CacheControl)
	}
	if res.Headers.Expires != "" {
		h.Set("Expires", res.Headers.Expires)
	}
	for k, v := range res.UserMetadata {
		h.Set(metaHeaderPrefix+k, v)
	}
}

// parseRange parses a single "bytes=start-end" Range header against size,
// returning ok=false for anything unsatisfiable or malformed.
func parseRange(header string, size int64) (start, end int64, ok bool) {
	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return 0, 0, false
	}
	spec := strings.TrimPrefix(header, prefix)
	spec, _, _ = strings.Cut(spec, ",")

	a, b, found := strings.Cut(spec, "-")
	if !found {
		return 0, 0, false
	}

	if a == "" {
		// suffix range: last N bytes
		n, err := strconv.ParseInt(b, 10, 64)
		if err != nil || n <= 0 {
			return 0, 0, false
		}
		if n > size {
			n = size
		}
		return size - n, size - 1, size > 0
	}

	start, err := strconv.ParseInt(a, 10, 64)
	if err != nil || start < 0 || start >= size {
		return 0, 0, false
	}
	if b == "" {
		return start, size - 1, true
	}
	end, err = strconv.ParseInt(b, 10, 64)
	if err != nil || end < start {
		return 0, 0, false
	}
	if end >= size {
		end = size - 1
	}
	return start, end, true
}

func (s *Server) deleteObject(c *mizu.Ctx, t target, rid string) error {
	removed, err := s.store.DeleteObject(t.Bucket, t.Key)
	if err != nil {
		return writeErrCtx(c, resourceName(t), rid, err)
	}
	if removed {
		s.bus.Publish(events.Event{Name: events.ObjectRemovedDelete, Bucket: t.Bucket, Key: t.Key})
	}
	c.Writer().WriteHeader(http.StatusNoContent)
	return nil
}

func (s *Server) copyObject(c *mizu.Ctx, t target, rid, copySourceHeader string) error {
	srcBucket, srcKey, ok := validate.CopySource(copySourceHeader)
	if !ok {
		return writeErrCtx(c, resourceName(t), rid, errInvalidRequest("invalid x-amz-copy-source"))
	}

	r := c.Request()
	directive := objstore.CopyDirectiveCopy
	if strings.EqualFold(r.Header.Get("x-amz-metadata-directive"), "REPLACE") {
		directive = objstore.CopyDirectiveReplace
	}

	var newMeta map[string]string
	if directive == objstore.CopyDirectiveReplace {
		newMeta = userMetadataFromHeaders(r.Header)
	}

	info, err := s.store.CopyObject(t.Bucket, t.Key, srcBucket, srcKey, directive, newMeta, r.Header.Get("Content-Type"))
	if err != nil {
		return writeErrCtx(c, resourceName(t), rid, err)
	}

	s.bus.Publish(events.Event{
		Name: events.ObjectCreatedCopy, Bucket: t.Bucket, Key: t.Key,
		Size: info.Size, ETag: info.ETag,
	})

	return writeXML(c, http.StatusOK, copyObjectResult{
		ETag:         `"` + info.ETag + `"`,
		LastModified: info.LastModified.Format(http.TimeFormat),
	})
}
