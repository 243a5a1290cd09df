package config

import "testing"

func TestResolveOverridesWin(t *testing.T) {
	defaults := Defaults()
	overrides := Options{Hostname: "example.test", Port: 9000}

	got := Resolve(defaults, overrides)

	if got.Hostname != "example.test" || got.Port != 9000 {
		t.Fatalf("got %+v", got)
	}
	if got.Directory != defaults.Directory {
		t.Fatalf("expected default directory to survive, got %q", got.Directory)
	}
}

func TestResolveKeepsDefaultsWhenZero(t *testing.T) {
	defaults := Defaults()
	got := Resolve(defaults, Options{})

	if got.Hostname != defaults.Hostname {
		t.Fatalf("expected default hostname, got %q", got.Hostname)
	}
	if len(got.VirtualHostSuffixes) != len(defaults.VirtualHostSuffixes) {
		t.Fatalf("expected default suffixes to survive")
	}
}

func TestHasTLSRequiresBoth(t *testing.T) {
	o := Options{Key: []byte("k")}
	if o.HasTLS() {
		t.Fatalf("expected HasTLS false with only a key")
	}
	o.Cert = []byte("c")
	if !o.HasTLS() {
		t.Fatalf("expected HasTLS true with both")
	}
}

func TestWebsiteEnabled(t *testing.T) {
	var o Options
	if o.WebsiteEnabled() {
		t.Fatalf("expected disabled by default")
	}
	o.IndexDocument = "index.html"
	if !o.WebsiteEnabled() {
		t.Fatalf("expected enabled once IndexDocument is set")
	}
}
