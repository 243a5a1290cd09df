package corsengine

import "testing"

func TestWildcardEvaluate(t *testing.T) {
	cfg := Wildcard()
	d := cfg.Evaluate("https://example.com", "GET")
	if !d.Matched || d.AllowOrigin != "*" {
		t.Fatalf("unexpected decision: %+v", d)
	}
}

func TestEvaluateUnmatchedOrigin(t *testing.T) {
	cfg := &Configuration{Rules: []Rule{{
		AllowedOrigins: []string{"https://allowed.example.com"},
		AllowedMethods: []string{"GET"},
	}}}
	d := cfg.Evaluate("https://other.example.com", "GET")
	if d.Matched {
		t.Fatalf("expected no match, got %+v", d)
	}
}

func TestEvaluateGlobOrigin(t *testing.T) {
	cfg := &Configuration{Rules: []Rule{{
		AllowedOrigins: []string{"https://*.example.com"},
		AllowedMethods: []string{"GET"},
	}}}
	d := cfg.Evaluate("https://foo.example.com", "GET")
	if !d.Matched || d.AllowOrigin != "https://foo.example.com" {
		t.Fatalf("unexpected decision: %+v", d)
	}
}

func TestPreflightUnmatchedYields403(t *testing.T) {
	cfg := &Configuration{Rules: []Rule{{
		AllowedOrigins: []string{"https://allowed.example.com"},
		AllowedMethods: []string{"GET"},
	}}}
	d := cfg.Preflight("https://other.example.com", "GET", nil)
	if d.Matched {
		t.Fatalf("expected no match")
	}
}

func TestPreflightMatchedHeaders(t *testing.T) {
	cfg := &Configuration{Rules: []Rule{{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"PUT"},
		AllowedHeaders: []string{"x-amz-*", "content-type"},
		MaxAgeSeconds:  600,
	}}}
	d := cfg.Preflight("https://example.com", "PUT", []string{"X-Amz-Meta-Foo", "Content-Type", "X-Other"})
	if !d.Matched {
		t.Fatalf("expected match")
	}
	if len(d.AllowHeaders) != 2 {
		t.Fatalf("want 2 allowed headers, got %v", d.AllowHeaders)
	}
	if !d.MaxAgeSet() || d.MaxAgeSeconds != 600 {
		t.Fatalf("expected max-age 600, got %+v", d)
	}
}

func TestGlobMatch(t *testing.T) {
	cases := []struct {
		pattern, s string
		want       bool
	}{
		{"*", "anything", true},
		{"https://example.com", "https://example.com", true},
		{"https://*.example.com", "https://a.example.com", true},
		{"https://*.example.com", "https://example.com", false},
		{"x-amz-*", "x-amz-meta-foo", true},
		{"x-amz-*", "content-type", false},
	}
	for _, c := range cases {
		if got := globMatch(c.pattern, c.s); got != c.want {
			t.Errorf("globMatch(%q,%q) = %v, want %v", c.pattern, c.s, got, c.want)
		}
	}
}
