package objstore

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

// multipartMeta is the sidecar persisted for one in-progress upload.
type multipartMeta struct {
	Bucket       string            `json:"bucket"`
	Key          string            `json:"key"`
	ContentType  string            `json:"content-type"`
	UserMetadata map[string]string `json:"metadata"`
	Initiated    time.Time         `json:"initiated"`
}

// PartInfo describes one uploaded part.
type PartInfo struct {
	PartNumber   int
	ETag         string
	Size         int64
	LastModified time.Time
}

func (s *Store) uploadDir(bucket, uploadID string) string {
	return filepath.Join(s.bucketPath(bucket), uploadsDirName, uploadID)
}

func (s *Store) partPath(bucket, uploadID string, partNumber int) string {
	return filepath.Join(s.uploadDir(bucket, uploadID), fmt.Sprintf("part-%05d", partNumber))
}

func (s *Store) uploadMetaPath(bucket, uploadID string) string {
	return filepath.Join(s.uploadDir(bucket, uploadID), "meta.json")
}

// InitiateMultipartUpload creates scratch state for a new upload and
// returns its id.
func (s *Store) InitiateMultipartUpload(bucket, key, contentType string, userMeta map[string]string) (string, error) {
	if !s.BucketExists(bucket) {
		return "", ErrNoSuchBucket
	}
	uploadID := uuid.NewString()
	dir := s.uploadDir(bucket, uploadID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	meta := multipartMeta{
		Bucket:       bucket,
		Key:          key,
		ContentType:  contentType,
		UserMetadata: userMeta,
		Initiated:    time.Now().UTC(),
	}
	f, err := os.Create(s.uploadMetaPath(bucket, uploadID))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(meta); err != nil {
		return "", err
	}
	return uploadID, nil
}

func (s *Store) readUploadMeta(bucket, uploadID string) (multipartMeta, error) {
	var meta multipartMeta
	f, err := os.Open(s.uploadMetaPath(bucket, uploadID))
	if err != nil {
		if os.IsNotExist(err) {
			return meta, ErrNoSuchUpload
		}
		return meta, err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&meta); err != nil {
		return meta, err
	}
	return meta, nil
}

// UploadPart streams body into the given part slot, validating the bucket
// and upload exist first.
func (s *Store) UploadPart(bucket, uploadID string, partNumber int, body io.Reader) (PartInfo, error) {
	if _, err := s.readUploadMeta(bucket, uploadID); err != nil {
		return PartInfo{}, err
	}
	path := s.partPath(bucket, uploadID, partNumber)

	tmp, err := os.CreateTemp(s.uploadDir(bucket, uploadID), ".tmp-part-*")
	if err != nil {
		return PartInfo{}, err
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
		return PartInfo{}, err
	}
	if err := tmp.Close(); err != nil {
		return PartInfo{}, err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return PartInfo{}, err
	}
	removeTemp = false

	return PartInfo{
		PartNumber:   partNumber,
		ETag:         hex.EncodeToString(hasher.Sum(nil)),
		Size:         size,
		LastModified: time.Now().UTC(),
	}, nil
}

// ListParts returns every uploaded part in ascending part-number order.
func (s *Store) ListParts(bucket, uploadID string) ([]PartInfo, error) {
	if _, err := s.readUploadMeta(bucket, uploadID); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.uploadDir(bucket, uploadID))
	if err != nil {
		return nil, err
	}

	var parts []PartInfo
	for _, e := range entries {
		var n int
		if _, err := fmt.Sscanf(e.Name(), "part-%05d", &n); err != nil {
			continue
		}
		path := s.partPath(bucket, uploadID, n)
		fi, err := os.Stat(path)
		if err != nil {
			continue
		}
		etag, err := fileMD5(path)
		if err != nil {
			continue
		}
		parts = append(parts, PartInfo{PartNumber: n, ETag: etag, Size: fi.Size(), LastModified: fi.ModTime()})
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].PartNumber < parts[j].PartNumber })
	return parts, nil
}

// CompleteMultipartUpload validates the requested part numbers are present,
// strictly ascending, and duplicate-free, then concatenates the parts (in
// ascending order) into the final object before removing upload scratch
// state.
func (s *Store) CompleteMultipartUpload(bucket, key, uploadID string, partNumbers []int) (ObjectInfo, error) {
	meta, err := s.readUploadMeta(bucket, uploadID)
	if err != nil {
		return ObjectInfo{}, err
	}

	for i := 1; i < len(partNumbers); i++ {
		if partNumbers[i] <= partNumbers[i-1] {
			return ObjectInfo{}, ErrInvalidPartOrder
		}
	}
	for _, n := range partNumbers {
		if _, err := os.Stat(s.partPath(bucket, uploadID, n)); err != nil {
			return ObjectInfo{}, ErrInvalidRequest
		}
	}

	pr, pw := io.Pipe()
	errCh := make(chan error, 1)
	go func() {
		defer pw.Close()
		for _, n := range partNumbers {
			f, err := os.Open(s.partPath(bucket, uploadID, n))
			if err != nil {
				errCh <- err
				return
			}
			_, err = io.Copy(pw, f)
			f.Close()
			if err != nil {
				errCh <- err
				return
			}
		}
		errCh <- nil
	}()

	info, putErr := s.PutObject(bucket, key, pr, PutHeaders{
		ContentType:  meta.ContentType,
		UserMetadata: meta.UserMetadata,
	})
	if assembleErr := <-errCh; assembleErr != nil && putErr == nil {
		putErr = assembleErr
	}
	if putErr != nil {
		return ObjectInfo{}, putErr
	}

	os.RemoveAll(s.uploadDir(bucket, uploadID))
	return info, nil
}

// AbortMultipartUpload discards scratch state for uploadID. A missing
// upload is treated as success.
func (s *Store) AbortMultipartUpload(bucket, uploadID string) error {
	err := os.RemoveAll(s.uploadDir(bucket, uploadID))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func fileMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
