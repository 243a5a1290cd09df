package s3api

import (
	"encoding/xml"
	"io"
	"net/http"
	"strconv"

	"github.com/go-mizu/blueprints/s3emu/internal/events"
	"github.com/go-mizu/mizu"
)

func (s *Server) initiateMultipartUpload(c *mizu.Ctx, t target, rid string) error {
	r := c.Request()
	uploadID, err := s.store.InitiateMultipartUpload(t.Bucket, t.Key, r.Header.Get("Content-Type"), userMetadataFromHeaders(r.Header))
	if err != nil {
		return writeErrCtx(c, resourceName(t), rid, err)
	}
	return writeXML(c, http.StatusOK, initiateMultipartUploadResult{
		Xmlns:    xmlNamespace,
		Bucket:   t.Bucket,
		Key:      t.Key,
		UploadID: uploadID,
	})
}

func (s *Server) uploadPart(c *mizu.Ctx, t target, rid, uploadID string) error {
	partNumber, err := strconv.Atoi(c.Query("partNumber"))
	if err != nil || partNumber < 1 {
		return writeErrCtx(c, resourceName(t), rid, errInvalidRequest("invalid partNumber"))
	}

	info, err := s.store.UploadPart(t.Bucket, uploadID, partNumber, c.Request().Body)
	if err != nil {
		return writeErrCtx(c, resourceName(t), rid, err)
	}

	c.Header().Set("ETag", `"`+info.ETag+`"`)
	c.Writer().WriteHeader(http.StatusOK)
	return nil
}

func (s *Server) listParts(c *mizu.Ctx, t target, rid string) error {
	uploadID := c.Query("uploadId")
	parts, err := s.store.ListParts(t.Bucket, uploadID)
	if err != nil {
		return writeErrCtx(c, resourceName(t), rid, err)
	}

	doc := listPartsResult{
		Xmlns:        xmlNamespace,
		Bucket:       t.Bucket,
		Key:          t.Key,
		UploadID:     uploadID,
		Initiator:    cannedOwner,
		Owner:        cannedOwner,
		StorageClass: "STANDARD",
		MaxParts:     1000,
	}
	for _, p := range parts {
		doc.Parts = append(doc.Parts, partEntry{
			PartNumber:   p.PartNumber,
			LastModified: p.LastModified.Format(http.TimeFormat),
			ETag:         `"` + p.ETag + `"`,
			Size:         p.Size,
			StorageClass: "STANDARD",
		})
	}
	return writeXML(c, http.StatusOK, doc)
}

func (s *Server) completeMultipartUpload(c *mizu.Ctx, t target, rid, uploadID string) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return writeErrCtx(c, resourceName(t), rid, errInternal)
	}
	var req completeMultipartUploadRequest
	if err := xml.Unmarshal(body, &req); err != nil {
		return writeErrCtx(c, resourceName(t), rid, errMalformedXML)
	}

	nums := make([]int, 0, len(req.Parts))
	for _, p := range req.Parts {
		nums = append(nums, p.PartNumber)
	}

	info, err := s.store.CompleteMultipartUpload(t.Bucket, t.Key, uploadID, nums)
	if err != nil {
		return writeErrCtx(c, resourceName(t), rid, err)
	}

	s.bus.Publish(events.Event{
		Name: events.ObjectCreatedPut, Bucket: t.Bucket, Key: t.Key,
		Size: info.Size, ETag: info.ETag,
	})

	return writeXML(c, http.StatusOK, completeMultipartUploadResult{
		Xmlns:    xmlNamespace,
		Location: "/" + t.Bucket + "/" + t.Key,
		Bucket:   t.Bucket,
		Key:      t.Key,
		ETag:     `"` + info.ETag + `"`,
	})
}

func (s *Server) abortMultipartUpload(c *mizu.Ctx, t target, rid, uploadID string) error {
	if err := s.store.AbortMultipartUpload(t.Bucket, uploadID); err != nil {
		return writeErrCtx(c, resourceName(t), rid, err)
	}
	c.Writer().WriteHeader(http.StatusNoContent)
	return nil
}

// listMultipartUploads returns a canned empty listing: this emulator keeps
// in-progress uploads as scratch directories, not a queryable index.
func (s *Server) listMultipartUploads(c *mizu.Ctx, t target, rid string) error {
	if !s.store.BucketExists(t.Bucket) {
		return writeErrCtx(c, resourceName(t), rid, errNoSuchBucket)
	}
	type listMultipartUploadsResult struct {
		XMLName    xml.Name `xml:"ListMultipartUploadsResult"`
		Xmlns      string   `xml:"xmlns,attr"`
		Bucket     string   `xml:"Bucket"`
		MaxUploads int      `xml:"MaxUploads"`
	}
	return writeXML(c, http.StatusOK, listMultipartUploadsResult{Xmlns: xmlNamespace, Bucket: t.Bucket, MaxUploads: 1000})
}
