// Package website implements the static-website routing mode: mapping a
// request path against a bucket to an index document or an error page.
package website

import "strings"

// Config is a bucket's website configuration, or a server-wide default when
// no per-bucket configuration exists.
type Config struct {
	IndexDocument string
	ErrorDocument string
}

// Resolver abstracts the object lookups the router needs without coupling
// this package to objstore.
type Resolver interface {
	// Exists reports whether key is a persisted object in the bucket.
	Exists(bucket, key string) bool
}

// Route decides which key to serve for a website request and whether this
// is an index response (true) or an error response (false).
func (c Config) Route(bucket, requestPath string, r Resolver) (key string, isIndex bool) {
	key = strings.TrimPrefix(requestPath, "/")

	if key == "" || strings.HasSuffix(key, "/") {
		candidate := key + c.IndexDocument
		if r.Exists(bucket, candidate) {
			return candidate, true
		}
		return "", false
	}

	if r.Exists(bucket, key) {
		return key, true
	}
	return "", false
}

// ErrorDocumentKey returns the configured error document key, or "" if none
// is set.
func (c Config) ErrorDocumentKey() string {
	return c.ErrorDocument
}

// NotFoundBody is the minimal HTML body served when no error document is
// configured or the error document itself is missing.
const NotFoundBody = `<html><head><title>404 Not Found</title></head><body><h1>404 Not Found</h1></body></html>`
