package website

import "testing"

type fakeResolver map[string]bool

func (f fakeResolver) Exists(bucket, key string) bool {
	return f[bucket+"/"+key]
}

func TestRouteIndexAtRoot(t *testing.T) {
	cfg := Config{IndexDocument: "index.html"}
	r := fakeResolver{"site/index.html": true}

	key, isIndex := cfg.Route("site", "/", r)
	if !isIndex || key != "index.html" {
		t.Fatalf("got key=%q isIndex=%v", key, isIndex)
	}
}

func TestRouteMissingYieldsNotFound(t *testing.T) {
	cfg := Config{IndexDocument: "index.html"}
	r := fakeResolver{}

	_, isIndex := cfg.Route("site", "/missing", r)
	if isIndex {
		t.Fatalf("expected not-found routing")
	}
}

func TestRouteDirectoryPrefix(t *testing.T) {
	cfg := Config{IndexDocument: "index.html"}
	r := fakeResolver{"site/docs/index.html": true}

	key, isIndex := cfg.Route("site", "/docs/", r)
	if !isIndex || key != "docs/index.html" {
		t.Fatalf("got key=%q isIndex=%v", key, isIndex)
	}
}
