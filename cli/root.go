// Package cli provides the command-line interface for s3emu.
package cli

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	flagAddr                 string
	flagPort                 int
	flagHostname             string
	flagDirectory            string
	flagSilent               bool
	flagCertFile             string
	flagKeyFile              string
	flagCORSDocument         string
	flagCORSDisabled         bool
	flagIndexDocument        string
	flagErrorDocument        string
	flagRemoveBucketsOnClose bool
	flagVirtualHostSuffixes  []string
)

// Execute runs the CLI.
func Execute(ctx context.Context) error {
	root := &cobra.Command{
		Use:   "s3emu",
		Short: "s3emu: a local, filesystem-backed object-storage emulator",
		Long: `s3emu serves an S3-compatible HTTP API backed by a plain directory tree.

Usage:
  s3emu serve             Start the HTTP server
  s3emu version           Print the version

Examples:
  s3emu serve --addr :9000 --dir ./data
  s3emu serve --index-document index.html --error-document error.html`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate("s3emu {{.Version}}\n")
	root.Version = versionString()

	root.PersistentFlags().StringVar(&flagAddr, "addr", ":9000", "HTTP listen address")
	root.PersistentFlags().IntVar(&flagPort, "port", 0, "HTTP listen port, overriding the port in --addr when non-zero")
	root.PersistentFlags().StringVar(&flagHostname, "hostname", "localhost", "Server hostname, used to resolve virtual-host-style requests")
	root.PersistentFlags().StringVar(&flagDirectory, "dir", "", "Data directory (defaults to a fresh temp directory)")
	root.PersistentFlags().BoolVar(&flagSilent, "silent", false, "Suppress request logging")
	root.PersistentFlags().StringVar(&flagCertFile, "cert", "", "TLS certificate file (enables HTTPS with --key)")
	root.PersistentFlags().StringVar(&flagKeyFile, "key", "", "TLS private key file (enables HTTPS with --cert)")
	root.PersistentFlags().StringVar(&flagCORSDocument, "cors-document", "", "Path to a CORSConfiguration XML file applied at startup")
	root.PersistentFlags().BoolVar(&flagCORSDisabled, "cors-disabled", false, "Disable CORS handling entirely")
	root.PersistentFlags().StringVar(&flagIndexDocument, "index-document", "", "Server-wide static-website index document (enables website mode)")
	root.PersistentFlags().StringVar(&flagErrorDocument, "error-document", "", "Server-wide static-website error document")
	root.PersistentFlags().BoolVar(&flagRemoveBucketsOnClose, "remove-buckets-on-close", false, "Wipe the data directory on shutdown")
	root.PersistentFlags().StringSliceVar(&flagVirtualHostSuffixes, "virtual-host-suffix", nil, "Host header suffix that addresses a bucket by its leading label (repeatable)")

	root.AddCommand(
		newServeCmd(),
		newVersionCmd(),
		newPresignCmd(),
	)

	if err := fang.Execute(ctx, root); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return err
	}
	return nil
}

func versionString() string {
	if v := strings.TrimSpace(os.Getenv("S3EMU_VERSION")); v != "" {
		return v
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		if bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			return bi.Main.Version
		}
	}
	return "dev"
}
