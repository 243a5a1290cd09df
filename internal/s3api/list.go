package s3api

import (
	"encoding/xml"
	"io"
	"net/http"
	"strconv"

	"github.com/go-mizu/blueprints/s3emu/internal/events"
	"github.com/go-mizu/blueprints/s3emu/internal/objstore"
	"github.com/go-mizu/mizu"
)

func (s *Server) listObjects(c *mizu.Ctx, t target, rid string) error {
	q := c.QueryValues()
	v2 := q.Get("list-type") == "2"

	prefix := q.Get("prefix")
	delimiter := q.Get("delimiter")
	maxKeys := 1000
	if raw := q.Get("max-keys"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			maxKeys = n
		}
	}

	marker := q.Get("marker")
	continuationToken := q.Get("continuation-token")
	if v2 {
		marker = continuationToken
		if startAfter := q.Get("start-after"); marker == "" && startAfter != "" {
			marker = startAfter
		}
	}

	result, err := s.store.ListObjects(t.Bucket, objstore.ListParams{
		Prefix:    prefix,
		Marker:    marker,
		Delimiter: delimiter,
		MaxKeys:   maxKeys,
	})
	if err != nil {
		return writeErrCtx(c, resourceName(t), rid, err)
	}

	doc := listBucketResult{
		Xmlns:       xmlNamespace,
		Name:        t.Bucket,
		Prefix:      prefix,
		MaxKeys:     maxKeys,
		Delimiter:   delimiter,
		IsTruncated: result.IsTruncated,
	}
	for _, e := range result.Contents {
		doc.Contents = append(doc.Contents, contentsEntry{
			Key:          e.Key,
			LastModified: e.LastModified,
			ETag:         `"` + e.ETag + `"`,
			Size:         e.Size,
			StorageClass: "STANDARD",
			Owner:        cannedOwner,
		})
	}
	for _, p := range result.CommonPrefixes {
		doc.CommonPrefixes = append(doc.CommonPrefixes, commonPrefixEntry{Prefix: p})
	}

	if v2 {
		doc.KeyCount = len(result.Contents) + len(result.CommonPrefixes)
		if result.IsTruncated {
			doc.NextContinuationToken = result.NextMarker
		}
		doc.ContinuationToken = continuationToken
	} else {
		doc.Marker = marker
		if result.IsTruncated {
			doc.NextMarker = result.NextMarker
		}
	}

	s.applyCORSHeaders(c, t.Bucket)
	return writeXML(c, http.StatusOK, doc)
}

func (s *Server) deleteObjects(c *mizu.Ctx, t target, rid string) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return writeErrCtx(c, resourceName(t), rid, errInternal)
	}
	var req deleteObjectsRequest
	if err := xml.Unmarshal(body, &req); err != nil {
		return writeErrCtx(c, resourceName(t), rid, errMalformedXML)
	}

	keys := make([]string, 0, len(req.Objects))
	for _, o := range req.Objects {
		keys = append(keys, o.Key)
	}

	results := s.store.DeleteObjects(t.Bucket, keys)

	doc := deleteResult{}
	for _, r := range results {
		if r.Deleted {
			if !req.Quiet {
				doc.Deleted = append(doc.Deleted, deletedEntry{Key: r.Key})
			}
			if r.Removed {
				s.bus.Publish(events.Event{Name: events.ObjectRemovedDelete, Bucket: t.Bucket, Key: r.Key})
			}
			continue
		}
		doc.Errors = append(doc.Errors, deleteErrorEntry{Key: r.Key, Code: "InternalError", Message: r.Err.Error()})
	}

	return writeXML(c, http.StatusOK, doc)
}
