package cli

import (
	"fmt"
	"net"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-mizu/blueprints/s3emu/config"
	"github.com/go-mizu/blueprints/s3emu/internal/s3api"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	overrides := config.Options{
		Hostname:             flagHostname,
		Port:                 flagPort,
		Directory:            flagDirectory,
		Silent:               flagSilent,
		CORSDisabled:         flagCORSDisabled,
		IndexDocument:        flagIndexDocument,
		ErrorDocument:        flagErrorDocument,
		RemoveBucketsOnClose: flagRemoveBucketsOnClose,
		VirtualHostSuffixes:  flagVirtualHostSuffixes,
	}

	if flagCORSDocument != "" {
		doc, err := os.ReadFile(flagCORSDocument)
		if err != nil {
			return fmt.Errorf("read cors document: %w", err)
		}
		overrides.CORSDocument = string(doc)
	}
	if flagCertFile != "" && flagKeyFile != "" {
		cert, err := os.ReadFile(flagCertFile)
		if err != nil {
			return fmt.Errorf("read cert file: %w", err)
		}
		key, err := os.ReadFile(flagKeyFile)
		if err != nil {
			return fmt.Errorf("read key file: %w", err)
		}
		overrides.Cert = cert
		overrides.Key = key
	}

	cfg := config.Resolve(config.Defaults(), overrides)

	addr := flagAddr
	if cfg.Port != 0 {
		host, _, err := net.SplitHostPort(flagAddr)
		if err != nil {
			host = ""
		}
		addr = net.JoinHostPort(host, fmt.Sprint(cfg.Port))
	}

	srv, err := s3api.New(cfg, nil)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	defer srv.Close()

	if !cfg.Silent {
		Blank()
		Header("◆", "s3emu")
		Blank()
		Summary(
			"Address", addr,
			"Directory", cfg.Directory,
			"Hostname", cfg.Hostname,
			"TLS", tlsString(cfg.HasTLS()),
			"Website", websiteString(cfg.WebsiteEnabled()),
			"Version", versionString(),
		)
		Blank()
		Step("→", fmt.Sprintf("listening on %s", displayAddr(addr)))
	}

	if cfg.HasTLS() {
		return srv.ListenTLS(addr, flagCertFile, flagKeyFile)
	}
	return srv.Listen(addr)
}

func tlsString(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}

func websiteString(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}

func displayAddr(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%s", host, port)
}
