// Package config holds the resolved options record for an s3emu server and
// the pure merge function that builds one from defaults plus overrides.
package config

import "os"

// Options is the full configuration surface exposed to external
// collaborators: CLI flags, environment, or programmatic embedding.
type Options struct {
	// Hostname is the server's own name, used to tell virtual-host-style
	// requests (Host != Hostname) from path-style ones.
	Hostname string
	// Port to listen on. 0 means unset: Resolve keeps the default, and the
	// CLI then listens on its --addr address instead.
	Port int
	// Silent suppresses request logging.
	Silent bool
	// Directory is the data root. Defaults to an OS temp subpath.
	Directory string

	// Key and Cert are PEM-encoded TLS material. When both are set the
	// server listens with TLS.
	Key  []byte
	Cert []byte

	// CORSDocument is raw CORSConfiguration XML applied at startup. Empty
	// with CORSDisabled false means the permissive wildcard default.
	CORSDocument string
	CORSDisabled bool

	// IndexDocument and ErrorDocument put the whole server into
	// server-wide static website mode when IndexDocument is non-empty.
	IndexDocument string
	ErrorDocument string

	// RemoveBucketsOnClose empties (but does not remove) the data root
	// when the server shuts down.
	RemoveBucketsOnClose bool

	// VirtualHostSuffixes are Host-header suffixes (e.g. ".s3.amazonaws.com")
	// whose leading label is taken as the bucket name.
	VirtualHostSuffixes []string
}

// Defaults returns the baseline merged under any overrides: hostname
// "localhost", a fresh temp data directory, and the built-in virtual-host
// suffixes.
func Defaults() Options {
	return Options{
		Hostname:            "localhost",
		Port:                0,
		Directory:           defaultDirectory(),
		VirtualHostSuffixes: []string{".s3.amazonaws.com", ".s3emu.local"},
	}
}

func defaultDirectory() string {
	dir, err := os.MkdirTemp("", "s3emu-")
	if err != nil {
		return os.TempDir()
	}
	return dir
}

// Resolve merges overrides into defaults: any non-zero field on overrides
// wins, otherwise the default is kept. The server holds only the result.
func Resolve(defaults, overrides Options) Options {
	out := defaults

	if overrides.Hostname != "" {
		out.Hostname = overrides.Hostname
	}
	if overrides.Port != 0 {
		out.Port = overrides.Port
	}
	if overrides.Silent {
		out.Silent = true
	}
	if overrides.Directory != "" {
		out.Directory = overrides.Directory
	}
	if len(overrides.Key) > 0 {
		out.Key = overrides.Key
	}
	if len(overrides.Cert) > 0 {
		out.Cert = overrides.Cert
	}
	if overrides.CORSDocument != "" {
		out.CORSDocument = overrides.CORSDocument
	}
	if overrides.CORSDisabled {
		out.CORSDisabled = true
	}
	if overrides.IndexDocument != "" {
		out.IndexDocument = overrides.IndexDocument
	}
	if overrides.ErrorDocument != "" {
		out.ErrorDocument = overrides.ErrorDocument
	}
	if overrides.RemoveBucketsOnClose {
		out.RemoveBucketsOnClose = true
	}
	if len(overrides.VirtualHostSuffixes) > 0 {
		out.VirtualHostSuffixes = overrides.VirtualHostSuffixes
	}

	return out
}

// HasTLS reports whether both TLS materials are present.
func (o Options) HasTLS() bool {
	return len(o.Key) > 0 && len(o.Cert) > 0
}

// WebsiteEnabled reports whether server-wide static website mode is active.
func (o Options) WebsiteEnabled() bool {
	return o.IndexDocument != ""
}
