package objstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// sidecarSuffix names the metadata document persisted alongside a content
// blob, following the upstream service's own on-disk convention.
const sidecarSuffix = ".s3rver_metadata.json"

// Metadata is the sidecar document for one object: everything GetObject and
// HeadObject need beyond the raw bytes on disk.
type Metadata struct {
	ContentType        string            `json:"content-type"`
	ContentEncoding    string            `json:"content-encoding,omitempty"`
	ContentDisposition string            `json:"content-disposition,omitempty"`
	CacheControl       string            `json:"cache-control,omitempty"`
	Expires            string            `json:"expires,omitempty"`
	ETag               string            `json:"etag"`
	LastModified       time.Time         `json:"last-modified"`
	UserMetadata       map[string]string `json:"metadata"`
}

func sidecarPath(blobPath string) string {
	return blobPath + sidecarSuffix
}

// writeSidecar atomically persists md next to blobPath via write-temp +
// rename, matching the on-disk write order used for the blob itself.
func writeSidecar(blobPath string, md Metadata) error {
	path := sidecarPath(blobPath)
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".tmp-sidecar-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	enc := json.NewEncoder(tmp)
	if err := enc.Encode(md); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func readSidecar(blobPath string) (Metadata, error) {
	var md Metadata
	f, err := os.Open(sidecarPath(blobPath))
	if err != nil {
		return md, err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&md); err != nil {
		return md, err
	}
	if md.UserMetadata == nil {
		md.UserMetadata = map[string]string{}
	}
	return md, nil
}

func removeSidecar(blobPath string) error {
	err := os.Remove(sidecarPath(blobPath))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
