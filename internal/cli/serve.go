package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	httpserver "github.com/0xcro3dile/docguard/internal/infrastructure/http"
)

// NewServeCmd creates the 'serve' command running the HTTP API.
func NewServeCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  `Serve /chat, /audit, /health and /routes on the configured host and port.`,
		Example: `  docguard serve
  docguard serve --addr 127.0.0.1:9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, *configPath, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.host and server.port)")

	return cmd
}

func runServe(ctx context.Context, configPath, addr string) error {
	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	if addr == "" {
		addr = a.cfg.Addr()
	}
	srv := httpserver.NewServer(a.chat, addr, a.cfg.Server.DevOrigins, a.cfg.Cloud.DefaultAllow)
	return srv.Start(ctx)
}
