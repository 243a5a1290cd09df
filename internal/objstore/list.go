package objstore

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ListParams are the inputs to ListObjects (see s3api for query-string
// parsing). ListObjects itself replaces a MaxKeys of 0 or less, or above
// 1000, with 1000.
type ListParams struct {
	Prefix    string
	Marker    string
	Delimiter string
	MaxKeys   int
}

// ListEntry describes one object surfaced by a listing.
type ListEntry struct {
	Key          string
	Size         int64
	ETag         string
	LastModified string // RFC3339, as persisted in the sidecar
}

// ListResult is the listing engine's output, independent of XML rendering.
type ListResult struct {
	Contents       []ListEntry
	CommonPrefixes []string
	IsTruncated    bool
	NextMarker     string
}

// ListObjects walks the bucket directory, collecting keys starting with
// Prefix, filtering out keys <= Marker, sorting, grouping by Delimiter into
// common prefixes, and truncating to MaxKeys.
func (s *Store) ListObjects(bucket string, p ListParams) (*ListResult, error) {
	if !s.BucketExists(bucket) {
		return nil, ErrNoSuchBucket
	}
	root := s.bucketPath(bucket)
	maxKeys := p.MaxKeys
	if maxKeys <= 0 || maxKeys > 1000 {
		maxKeys = 1000
	}

	var keys []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if d.IsDir() {
			rel, _ := filepath.Rel(root, path)
			if rel == uploadsDirName {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, sidecarSuffix) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, p.Prefix) && key > p.Marker {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(keys)

	type candidate struct {
		key          string
		commonPrefix string // non-empty if this key collapses into a common prefix
	}

	cands := make([]candidate, 0, len(keys))
	seenPrefix := map[string]bool{}
	for _, k := range keys {
		if p.Delimiter != "" {
			rest := strings.TrimPrefix(k, p.Prefix)
			if idx := strings.Index(rest, p.Delimiter); idx >= 0 {
				cp := p.Prefix + rest[:idx+len(p.Delimiter)]
				if !seenPrefix[cp] {
					seenPrefix[cp] = true
					cands = append(cands, candidate{commonPrefix: cp})
				}
				continue
			}
		}
		cands = append(cands, candidate{key: k})
	}

	res := &ListResult{}
	truncated := false
	count := 0
	for _, c := range cands {
		if count >= maxKeys {
			truncated = true
			break
		}
		if c.commonPrefix != "" {
			res.CommonPrefixes = append(res.CommonPrefixes, c.commonPrefix)
			res.NextMarker = c.commonPrefix
		} else {
			entry, err := s.listEntry(bucket, c.key)
			if err != nil {
				continue
			}
			res.Contents = append(res.Contents, entry)
			res.NextMarker = c.key
		}
		count++
	}

	res.IsTruncated = truncated
	if !truncated {
		res.NextMarker = ""
	}
	return res, nil
}

func (s *Store) listEntry(bucket, key string) (ListEntry, error) {
	path := s.objectPath(bucket, key)
	fi, err := os.Stat(path)
	if err != nil {
		return ListEntry{}, err
	}
	md, err := readSidecar(path)
	if err != nil {
		return ListEntry{}, err
	}
	return ListEntry{
		Key:          key,
		Size:         fi.Size(),
		ETag:         md.ETag,
		LastModified: md.LastModified.Format("2006-01-02T15:04:05.000Z"),
	}, nil
}
