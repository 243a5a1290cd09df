// Package validate implements pure functions checking bucket name grammar
// and normalising object keys and copy-source headers.
package validate

import (
	"net"
	"net/url"
	"strings"
)

// BucketName reports whether name satisfies the bucket naming grammar:
// 3-63 characters, lowercase letters/digits/hyphens/dots, starting with a
// letter or digit, each dot-separated label a valid label, and not
// IP-address shaped.
func BucketName(name string) bool {
	if len(name) < 3 || len(name) > 63 {
		return false
	}
	if net.ParseIP(name) != nil {
		return false
	}

	labels := strings.Split(name, ".")
	for _, label := range labels {
		if !validLabel(label) {
			return false
		}
	}

	first := name[0]
	if !isLower(first) && !isDigit(first) {
		return false
	}
	return true
}

func validLabel(label string) bool {
	if label == "" {
		return false
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	for i := 0; i < len(label); i++ {
		c := label[i]
		if !isLower(c) && !isDigit(c) && c != '-' {
			return false
		}
	}
	return true
}

func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// Key reports whether an object key is acceptable: any UTF-8 string that,
// once normalised, contains no ".." path segment.
func Key(key string) bool {
	if key == "" {
		return false
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." {
			return false
		}
	}
	return true
}

// CopySource splits an x-amz-copy-source header value into bucket and key,
// stripping a leading slash and percent-decoding the key. It returns
// ok=false if the header has no bucket/key separator or decodes to an
// invalid key.
func CopySource(header string) (bucket, key string, ok bool) {
	h := strings.TrimPrefix(header, "/")
	idx := strings.IndexByte(h, '/')
	if idx < 0 {
		return "", "", false
	}
	bucket = h[:idx]
	rawKey := h[idx+1:]

	decoded, err := url.PathUnescape(rawKey)
	if err != nil {
		decoded = rawKey
	}
	if bucket == "" || !Key(decoded) {
		return "", "", false
	}
	return bucket, decoded, true
}
