package s3api

import (
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// target is the resolved (bucket, key) pair for a request, lifted once at
// the top of dispatch so every handler downstream works with plain strings
// instead of re-deriving them from the request.
type target struct {
	Bucket string
	Key    string
}

// resolveTarget decides whether the request addresses its bucket via the
// Host header (virtual-host style) or via the first path segment
// (path style), per the rule in the dispatcher design.
func (s *Server) resolveTarget(r *http.Request) target {
	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	if host != "" && host != s.cfg.Hostname {
		if label, ok := s.matchVirtualHost(host); ok {
			return target{Bucket: label, Key: strings.TrimPrefix(r.URL.Path, "/")}
		}
	}

	path := strings.TrimPrefix(r.URL.Path, "/")
	if path == "" {
		return target{}
	}
	bucket, rest, _ := strings.Cut(path, "/")
	return target{Bucket: bucket, Key: rest}
}

// matchVirtualHost reports whether host addresses a bucket via a configured
// virtual-host suffix, or because its leading label names a bucket that
// already exists on this server.
func (s *Server) matchVirtualHost(host string) (bucket string, ok bool) {
	for _, suffix := range s.cfg.VirtualHostSuffixes {
		if suffix != "" && strings.HasSuffix(host, suffix) {
			label := strings.TrimSuffix(host, suffix)
			label = strings.TrimSuffix(label, ".")
			if label != "" {
				return label, true
			}
		}
	}

	label, _, _ := strings.Cut(host, ".")
	if label != "" && s.store.BucketExists(label) {
		return label, true
	}
	return "", false
}

// requestID generates a unique identifier for error payloads and the
// x-amz-request-id response header.
func (s *Server) requestID() string {
	return uuid.NewString()
}
