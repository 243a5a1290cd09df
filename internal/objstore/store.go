// Package objstore owns the on-disk bucket/object tree: directory layout,
// metadata sidecars, streaming reads/writes, and etag computation.
package objstore

import (
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// uploadsDirName holds in-progress multipart scratch state for a bucket,
// kept out of the object namespace by a prefix no valid key normally uses.
const uploadsDirName = ".s3emu-uploads"

// Bucket describes a top-level container as exposed by ListBuckets.
type Bucket struct {
	Name         string
	CreationTime time.Time
}

// ObjectInfo is returned by Put/Copy and carries the fields callers need to
// render response headers without a second sidecar read.
type ObjectInfo struct {
	ETag         string
	Size         int64
	LastModified time.Time
}

// PutHeaders carries the subset of request headers PutObject persists.
type PutHeaders struct {
	ContentType        string
	ContentEncoding    string
	ContentDisposition string
	CacheControl       string
	Expires            string
	ContentMD5         string // base64, as received; empty if absent
	UserMetadata       map[string]string
}

// CopyDirective selects how CopyObject treats metadata and system headers.
type CopyDirective int

const (
	// CopyDirectiveCopy carries source metadata and system headers verbatim.
	CopyDirectiveCopy CopyDirective = iota
	// CopyDirectiveReplace takes metadata and content-type from the request.
	CopyDirectiveReplace
)

// Store owns a single root directory and implements every on-disk
// operation named in the bucket/object data model.
type Store struct {
	root string
}

// New opens a Store rooted at dir, creating it if absent.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	return &Store{root: abs}, nil
}

// Root returns the store's data root directory.
func (s *Store) Root() string { return s.root }

func (s *Store) bucketPath(bucket string) string {
	return filepath.Join(s.root, bucket)
}

func (s *Store) objectPath(bucket, key string) string {
	return filepath.Join(s.bucketPath(bucket), filepath.FromSlash(key))
}

// BucketExists reports whether bucket has a directory under the root.
func (s *Store) BucketExists(bucket string) bool {
	fi, err := os.Stat(s.bucketPath(bucket))
	return err == nil && fi.IsDir()
}

// CreateBucket creates the bucket directory. It is idempotent: an existing
// directory is always treated as success, so fresh creation and re-creation
// are not distinguished.
func (s *Store) CreateBucket(bucket string) error {
	path := s.bucketPath(bucket)
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		return nil
	}
	if err := os.Mkdir(path, 0o755); err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil
		}
		return err
	}
	return nil
}

// DeleteBucket removes the bucket directory if it holds no persisted
// objects. Empty intermediate key-directories never block deletion.
func (s *Store) DeleteBucket(bucket string) error {
	path := s.bucketPath(bucket)
	if !s.BucketExists(bucket) {
		return ErrNoSuchBucket
	}
	empty, err := s.bucketIsEmpty(bucket)
	if err != nil {
		return err
	}
	if !empty {
		return ErrBucketNotEmpty
	}
	return os.RemoveAll(path)
}

func (s *Store) bucketIsEmpty(bucket string) (bool, error) {
	root := s.bucketPath(bucket)
	empty := true
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}
		rel, _ := filepath.Rel(root, p)
		if d.IsDir() {
			if rel == uploadsDirName {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(p, sidecarSuffix) {
			return nil
		}
		empty = false
		return nil
	})
	if err != nil {
		return false, err
	}
	return empty, nil
}

// ListBuckets enumerates bucket directories under the root.
func (s *Store) ListBuckets() ([]Bucket, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, err
	}
	var out []Bucket
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Bucket{Name: e.Name(), CreationTime: fi.ModTime()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// PutObject streams body into bucket/key, computing its MD5 as it writes.
// The blob is written to a temp file and renamed into place, followed by
// the sidecar, so a concurrent reader never observes a partial write.
func (s *Store) PutObject(bucket, key string, body io.Reader, h PutHeaders) (ObjectInfo, error) {
	if !s.BucketExists(bucket) {
		return ObjectInfo{}, ErrNoSuchBucket
	}
	dest := s.objectPath(bucket, key)
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ObjectInfo{}, err
	}

	tmp, err := os.CreateTemp(dir, ".tmp-obj-*")
	if err != nil {
		return ObjectInfo{}, err
	}
	tmpName := tmp.Name()
	removeTemp := true
	defer func() {
		if removeTemp {
			os.Remove(tmpName)
		}
	}()

	hasher := md5.New()
	size, err := io.Copy(io.MultiWriter(tmp, hasher), body)
	if err != nil {
		tmp.Close()
		return ObjectInfo{}, err
	}
	if err := tmp.Close(); err != nil {
		return ObjectInfo{}, err
	}

	sum := hasher.Sum(nil)
	etag := hex.EncodeToString(sum)

	if h.ContentMD5 != "" {
		decoded, decErr := decodeContentMD5(h.ContentMD5)
		if decErr != nil || !bytesEqual(decoded, sum) {
			return ObjectInfo{}, ErrInvalidDigest
		}
	}

	contentType := h.ContentType
	if contentType == "" {
		contentType = "binary/octet-stream"
	}

	now := time.Now().UTC()
	md := Metadata{
		ContentType:        contentType,
		ContentEncoding:    h.ContentEncoding,
		ContentDisposition: h.ContentDisposition,
		CacheControl:       h.CacheControl,
		Expires:            h.Expires,
		ETag:               etag,
		LastModified:       now,
		UserMetadata:       h.UserMetadata,
	}

	if err := os.Rename(tmpName, dest); err != nil {
		return ObjectInfo{}, err
	}
	removeTemp = false

	if err := writeSidecar(dest, md); err != nil {
		return ObjectInfo{}, err
	}

	return ObjectInfo{ETag: etag, Size: size, LastModified: now}, nil
}

// GetResult carries an opened blob plus its metadata for a read operation.
type GetResult struct {
	Body         io.ReadCloser
	Size         int64
	ContentType  string
	ETag         string
	LastModified time.Time
	UserMetadata map[string]string
	Headers      Metadata
}

// GetObject opens bucket/key, reading its sidecar for headers. Callers
// wanting a range must slice Body/Size themselves via RangeReader.
func (s *Store) GetObject(bucket, key string) (*GetResult, error) {
	if !s.BucketExists(bucket) {
		return nil, ErrNoSuchBucket
	}
	path := s.objectPath(bucket, key)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSuchKey
		}
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	md, err := readSidecar(path)
	if err != nil {
		// One retry: a reader observing blob-without-sidecar mid-rename
		// should not immediately fail.
		md, err = readSidecar(path)
		if err != nil {
			f.Close()
			return nil, ErrInternal
		}
	}

	return &GetResult{
		Body:         f,
		Size:         fi.Size(),
		ContentType:  md.ContentType,
		ETag:         md.ETag,
		LastModified: md.LastModified,
		UserMetadata: md.UserMetadata,
		Headers:      md,
	}, nil
}

// HeadObject returns the same metadata as GetObject. It opens the blob via
// GetObject and closes it again, returning a nil Body; Size reflects the
// current on-disk length.
func (s *Store) HeadObject(bucket, key string) (*GetResult, error) {
	res, err := s.GetObject(bucket, key)
	if err != nil {
		return nil, err
	}
	res.Body.Close()
	res.Body = nil
	return res, nil
}

// CopyObject reads the source sidecar+blob and writes a new destination
// object, applying directive semantics for metadata and system headers.
func (s *Store) CopyObject(destBucket, destKey, srcBucket, srcKey string, directive CopyDirective, newMeta map[string]string, requestContentType string) (ObjectInfo, error) {
	if destBucket == srcBucket && destKey == srcKey && directive != CopyDirectiveReplace {
		return ObjectInfo{}, ErrInvalidRequest
	}
	if !s.BucketExists(destBucket) {
		return ObjectInfo{}, ErrNoSuchBucket
	}

	src, err := s.GetObject(srcBucket, srcKey)
	if err != nil {
		return ObjectInfo{}, err
	}
	defer src.Body.Close()

	h := PutHeaders{}
	switch directive {
	case CopyDirectiveReplace:
		h.ContentType = requestContentType
		if h.ContentType == "" {
			h.ContentType = "application/octet-stream"
		}
		h.UserMetadata = newMeta
	default:
		h.ContentType = src.ContentType
		h.ContentEncoding = src.Headers.ContentEncoding
		h.ContentDisposition = src.Headers.ContentDisposition
		h.CacheControl = src.Headers.CacheControl
		h.Expires = src.Headers.Expires
		h.UserMetadata = src.UserMetadata
	}

	return s.PutObject(destBucket, destKey, src.Body, h)
}

// DeleteObject removes blob and sidecar if present, then walks ancestor
// directories upward removing any that became empty (never the bucket
// directory itself). Absence of the key is not an error.
func (s *Store) DeleteObject(bucket, key string) (removed bool, err error) {
	if !s.BucketExists(bucket) {
		return false, ErrNoSuchBucket
	}
	path := s.objectPath(bucket, key)

	_, statErr := os.Stat(path)
	existed := statErr == nil

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return false, err
	}
	if err := removeSidecar(path); err != nil {
		return false, err
	}

	s.pruneEmptyDirs(bucket, filepath.Dir(path))
	return existed, nil
}

func (s *Store) pruneEmptyDirs(bucket, dir string) {
	root := s.bucketPath(bucket)
	for {
		if dir == root || !strings.HasPrefix(dir, root) {
			return
		}
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}

// DeleteResult is one entry in a bulk-delete response.
type DeleteResult struct {
	Key string
	// Deleted reports the API-level outcome: true for every key without a
	// genuine I/O failure, including keys that never existed.
	Deleted bool
	// Removed reports whether an object actually existed and was removed,
	// the condition under which a caller should emit ObjectRemoved:Delete.
	Removed bool
	Err     error
}

// DeleteObjects deletes each key, reporting every requested key as Deleted
// (including keys that never existed) and surfacing only genuine I/O
// failures as errors.
func (s *Store) DeleteObjects(bucket string, keys []string) []DeleteResult {
	out := make([]DeleteResult, 0, len(keys))
	for _, k := range keys {
		removed, err := s.DeleteObject(bucket, k)
		if err != nil && !errors.Is(err, ErrNoSuchBucket) {
			out = append(out, DeleteResult{Key: k, Deleted: false, Err: err})
			continue
		}
		out = append(out, DeleteResult{Key: k, Deleted: true, Removed: removed})
	}
	return out
}

// Wipe removes every bucket directory under the root while preserving the
// root itself, for the removeBucketsOnClose shutdown policy.
func (s *Store) Wipe() error {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(s.root, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func decodeContentMD5(b64 string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(b64)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
