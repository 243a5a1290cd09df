package cli

import (
	"os"
	"testing"
)

func TestVersionStringFromEnv(t *testing.T) {
	old := os.Getenv("S3EMU_VERSION")
	defer os.Setenv("S3EMU_VERSION", old)

	os.Setenv("S3EMU_VERSION", "1.2.3")
	if v := versionString(); v != "1.2.3" {
		t.Errorf("versionString: got %q, want %q", v, "1.2.3")
	}
}

func TestVersionStringFallsBackWhenUnset(t *testing.T) {
	old := os.Getenv("S3EMU_VERSION")
	defer os.Setenv("S3EMU_VERSION", old)

	os.Unsetenv("S3EMU_VERSION")
	if v := versionString(); v == "" {
		t.Error("versionString should never return an empty string")
	}
}

func TestDisplayAddr(t *testing.T) {
	cases := map[string]string{
		":9000":           "http://localhost:9000",
		"127.0.0.1:9000":  "http://127.0.0.1:9000",
		"not-a-valid-addr": "not-a-valid-addr",
	}
	for in, want := range cases {
		if got := displayAddr(in); got != want {
			t.Errorf("displayAddr(%q) = %q, want %q", in, got, want)
		}
	}
}
