package objstore

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestPutThenGet(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateBucket("b"); err != nil {
		t.Fatalf("CreateBucket: %v", err)
	}

	info, err := s.PutObject("b", "text", bytes.NewBufferString("Hello!"), PutHeaders{})
	if err != nil {
		t.Fatalf("PutObject: %v", err)
	}
	if info.ETag != "952d2c56d0485958336747bcdd98590d" {
		t.Fatalf("unexpected etag: %s", info.ETag)
	}

	res, err := s.HeadObject("b", "text")
	if err != nil {
		t.Fatalf("HeadObject: %v", err)
	}
	if res.Size != 6 || res.ContentType != "binary/octet-stream" {
		t.Fatalf("unexpected head result: %+v", res)
	}

	get, err := s.GetObject("b", "text")
	if err != nil {
		t.Fatalf("GetObject: %v", err)
	}
	defer get.Body.Close()
	body, _ := io.ReadAll(get.Body)
	if string(body) != "Hello!" {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestCreateDeleteBucket(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateBucket("b"); err != nil {
		t.Fatalf("CreateBucket: %v", err)
	}
	if err := s.CreateBucket("b"); err != nil {
		t.Fatalf("idempotent CreateBucket: %v", err)
	}
	if err := s.DeleteBucket("b"); err != nil {
		t.Fatalf("DeleteBucket: %v", err)
	}
	if _, err := s.ListObjects("b", ListParams{}); !errors.Is(err, ErrNoSuchBucket) {
		t.Fatalf("want ErrNoSuchBucket, got %v", err)
	}
}

func TestDeleteBucketNotEmpty(t *testing.T) {
	s := newTestStore(t)
	_ = s.CreateBucket("b")
	for i := 0; i < 20; i++ {
		if _, err := s.PutObject("b", "k"+string(rune('a'+i)), bytes.NewBufferString("x"), PutHeaders{}); err != nil {
			t.Fatalf("PutObject: %v", err)
		}
	}
	if err := s.DeleteBucket("b"); !errors.Is(err, ErrBucketNotEmpty) {
		t.Fatalf("want ErrBucketNotEmpty, got %v", err)
	}
}

func TestDeleteObjectPrunesEmptyDirs(t *testing.T) {
	s := newTestStore(t)
	_ = s.CreateBucket("b")
	if _, err := s.PutObject("b", "dir/nested/key", bytes.NewBufferString("x"), PutHeaders{}); err != nil {
		t.Fatalf("PutObject: %v", err)
	}
	if _, err := s.DeleteObject("b", "dir/nested/key"); err != nil {
		t.Fatalf("DeleteObject: %v", err)
	}
	if err := s.DeleteBucket("b"); err != nil {
		t.Fatalf("expected bucket empty after prune, got %v", err)
	}
}

func TestDeleteObjectsIdempotent(t *testing.T) {
	s := newTestStore(t)
	_ = s.CreateBucket("b")
	results := s.DeleteObjects("b", []string{"missing-key"})
	if len(results) != 1 || !results[0].Deleted || results[0].Err != nil {
		t.Fatalf("expected missing key reported deleted, got %+v", results)
	}
}

func TestCopyObjectPreservesMetadata(t *testing.T) {
	s := newTestStore(t)
	_ = s.CreateBucket("b")
	_, err := s.PutObject("b", "src", bytes.NewBufferString("data"), PutHeaders{
		ContentType:  "image/jpeg",
		UserMetadata: map[string]string{"somekey": "value"},
	})
	if err != nil {
		t.Fatalf("PutObject: %v", err)
	}

	_, err = s.CopyObject("b", "dst", "b", "src", CopyDirectiveCopy, nil, "")
	if err != nil {
		t.Fatalf("CopyObject: %v", err)
	}

	head, err := s.HeadObject("b", "dst")
	if err != nil {
		t.Fatalf("HeadObject: %v", err)
	}
	if head.ContentType != "image/jpeg" || head.UserMetadata["somekey"] != "value" {
		t.Fatalf("metadata not preserved: %+v", head)
	}
}

func TestCopyObjectReplaceDefaultsContentType(t *testing.T) {
	s := newTestStore(t)
	_ = s.CreateBucket("b")
	_, _ = s.PutObject("b", "src", bytes.NewBufferString("data"), PutHeaders{ContentType: "image/jpeg"})

	_, err := s.CopyObject("b", "dst", "b", "src", CopyDirectiveReplace, map[string]string{"a": "b"}, "")
	if err != nil {
		t.Fatalf("CopyObject: %v", err)
	}
	head, err := s.HeadObject("b", "dst")
	if err != nil {
		t.Fatalf("HeadObject: %v", err)
	}
	if head.ContentType != "application/octet-stream" {
		t.Fatalf("want default content-type, got %q", head.ContentType)
	}
}

func TestCopyObjectSameKeyRejectedWithoutReplace(t *testing.T) {
	s := newTestStore(t)
	_ = s.CreateBucket("b")
	_, _ = s.PutObject("b", "k", bytes.NewBufferString("data"), PutHeaders{})
	_, err := s.CopyObject("b", "k", "b", "k", CopyDirectiveCopy, nil, "")
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("want ErrInvalidRequest, got %v", err)
	}
}

func TestListWithDelimiter(t *testing.T) {
	s := newTestStore(t)
	_ = s.CreateBucket("b")
	keys := []string{"akey1", "akey2", "akey3", "key/key1", "key1", "key2", "key3"}
	for _, k := range keys {
		if _, err := s.PutObject("b", k, bytes.NewBufferString("x"), PutHeaders{}); err != nil {
			t.Fatalf("PutObject(%s): %v", k, err)
		}
	}

	res, err := s.ListObjects("b", ListParams{Delimiter: "/"})
	if err != nil {
		t.Fatalf("ListObjects: %v", err)
	}
	if len(res.Contents) != 6 {
		t.Fatalf("want 6 contents, got %d: %+v", len(res.Contents), res.Contents)
	}
	found := false
	for _, cp := range res.CommonPrefixes {
		if cp == "key/" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected common prefix key/, got %v", res.CommonPrefixes)
	}
}

func TestMultipartUploadLifecycle(t *testing.T) {
	s := newTestStore(t)
	_ = s.CreateBucket("b")

	uploadID, err := s.InitiateMultipartUpload("b", "big", "text/plain", nil)
	if err != nil {
		t.Fatalf("InitiateMultipartUpload: %v", err)
	}

	if _, err := s.UploadPart("b", uploadID, 1, bytes.NewBufferString("hello ")); err != nil {
		t.Fatalf("UploadPart 1: %v", err)
	}
	if _, err := s.UploadPart("b", uploadID, 2, bytes.NewBufferString("world")); err != nil {
		t.Fatalf("UploadPart 2: %v", err)
	}

	parts, err := s.ListParts("b", uploadID)
	if err != nil || len(parts) != 2 {
		t.Fatalf("ListParts: %v parts=%+v", err, parts)
	}

	info, err := s.CompleteMultipartUpload("b", "big", uploadID, []int{1, 2})
	if err != nil {
		t.Fatalf("CompleteMultipartUpload: %v", err)
	}
	if info.Size != int64(len("hello world")) {
		t.Fatalf("unexpected size: %d", info.Size)
	}

	get, err := s.GetObject("b", "big")
	if err != nil {
		t.Fatalf("GetObject: %v", err)
	}
	defer get.Body.Close()
	body, _ := io.ReadAll(get.Body)
	if string(body) != "hello world" {
		t.Fatalf("unexpected assembled body: %q", body)
	}
}

func TestAbortMultipartUploadIdempotent(t *testing.T) {
	s := newTestStore(t)
	_ = s.CreateBucket("b")
	if err := s.AbortMultipartUpload("b", "nonexistent"); err != nil {
		t.Fatalf("AbortMultipartUpload on missing upload should succeed, got %v", err)
	}
}

func TestCompleteMultipartUploadRejectsOutOfOrderParts(t *testing.T) {
	s := newTestStore(t)
	_ = s.CreateBucket("b")
	uploadID, _ := s.InitiateMultipartUpload("b", "k", "", nil)
	_, _ = s.UploadPart("b", uploadID, 1, bytes.NewBufferString("a"))
	_, _ = s.UploadPart("b", uploadID, 2, bytes.NewBufferString("b"))

	_, err := s.CompleteMultipartUpload("b", "k", uploadID, []int{2, 1})
	if !errors.Is(err, ErrInvalidPartOrder) {
		t.Fatalf("want ErrInvalidPartOrder, got %v", err)
	}
}
