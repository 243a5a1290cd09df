// Package corsengine parses a CORS configuration document and evaluates
// cross-origin preflight and response headers against it.
package corsengine

import (
	"encoding/xml"
	"sort"
	"strings"
)

// Rule is one ordered CORS rule.
type Rule struct {
	AllowedOrigins []string `xml:"AllowedOrigin"`
	AllowedMethods []string `xml:"AllowedMethod"`
	AllowedHeaders []string `xml:"AllowedHeader"`
	ExposeHeaders  []string `xml:"ExposeHeader"`
	MaxAgeSeconds  int      `xml:"MaxAgeSeconds,omitempty"`
}

// Configuration is an ordered list of CORS rules, as persisted per bucket.
type Configuration struct {
	XMLName xml.Name `xml:"CORSConfiguration"`
	Rules   []Rule   `xml:"CORSRule"`
}

// Parse decodes a CORSConfiguration XML document.
func Parse(doc []byte) (*Configuration, error) {
	var cfg Configuration
	if err := xml.Unmarshal(doc, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Wildcard returns the default permissive configuration: one rule allowing
// any origin and any header for the GET, PUT, POST, DELETE and HEAD methods.
func Wildcard() *Configuration {
	return &Configuration{
		Rules: []Rule{{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "PUT", "POST", "DELETE", "HEAD"},
			AllowedHeaders: []string{"*"},
		}},
	}
}

// Decision is the outcome of evaluating a request against a Configuration.
type Decision struct {
	Matched        bool
	AllowOrigin    string
	AllowMethods   []string
	AllowHeaders   []string
	ExposeHeaders  []string
	MaxAgeSeconds  int
	maxAgeSet      bool
}

// Evaluate finds the first rule matching origin+method, for use on a normal
// (non-preflight) request.
func (c *Configuration) Evaluate(origin, method string) Decision {
	if c == nil {
		return Decision{}
	}
	for _, r := range c.Rules {
		if matchAny(r.AllowedOrigins, origin) && containsFold(r.AllowedMethods, method) {
			return Decision{
				Matched:       true,
				AllowOrigin:   allowOriginValue(r.AllowedOrigins, origin),
				ExposeHeaders: r.ExposeHeaders,
			}
		}
	}
	return Decision{}
}

// Preflight evaluates an OPTIONS request carrying
// Access-Control-Request-Method/-Headers.
func (c *Configuration) Preflight(origin, requestMethod string, requestHeaders []string) Decision {
	if c == nil {
		return Decision{}
	}
	for _, r := range c.Rules {
		if !matchAny(r.AllowedOrigins, origin) || !containsFold(r.AllowedMethods, requestMethod) {
			continue
		}
		d := Decision{
			Matched:      true,
			AllowOrigin:  allowOriginValue(r.AllowedOrigins, origin),
			AllowMethods: r.AllowedMethods,
			AllowHeaders: intersectHeaders(requestHeaders, r.AllowedHeaders),
		}
		if r.MaxAgeSeconds > 0 {
			d.MaxAgeSeconds = r.MaxAgeSeconds
			d.maxAgeSet = true
		}
		return d
	}
	return Decision{}
}

// MaxAgeSet reports whether the rule configured an explicit max-age.
func (d Decision) MaxAgeSet() bool { return d.maxAgeSet }

func allowOriginValue(patterns []string, origin string) string {
	for _, p := range patterns {
		if p == "*" {
			return "*"
		}
	}
	return origin
}

func matchAny(patterns []string, origin string) bool {
	for _, p := range patterns {
		if globMatch(p, origin) {
			return true
		}
	}
	return false
}

// globMatch implements single-wildcard glob matching where '*' matches any
// sequence of characters.
func globMatch(pattern, s string) bool {
	if pattern == "*" {
		return true
	}
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == s
	}

	if !strings.HasPrefix(s, parts[0]) {
		return false
	}
	s = s[len(parts[0]):]

	for i := 1; i < len(parts)-1; i++ {
		idx := strings.Index(s, parts[i])
		if idx < 0 {
			return false
		}
		s = s[idx+len(parts[i]):]
	}

	return strings.HasSuffix(s, parts[len(parts)-1])
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// intersectHeaders lowercases and returns the requested headers that match
// (possibly via wildcard) an allowed-header pattern, sorted for a stable
// comma-joined rendering.
func intersectHeaders(requested, allowed []string) []string {
	var out []string
	for _, h := range requested {
		lh := strings.ToLower(strings.TrimSpace(h))
		if lh == "" {
			continue
		}
		if matchAny(allowed, lh) {
			out = append(out, lh)
		}
	}
	sort.Strings(out)
	return out
}
