package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/HartBrook/folio/internal/server"
	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command.
func NewServeCmd(g *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve activity snapshots over HTTP",
		Long: `Starts an HTTP server for a portfolio page.

  GET  /api/activity?account=NAME   one refresh for NAME
  GET  /api/widget                  the widget's current snapshot
  PUT  /api/widget/account          switch the widget to another account
  GET  /metrics                     Prometheus metrics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(g, runtimeOptions{service: true})
			if err != nil {
				return err
			}
			defer rt.Close()

			if addr == "" {
				addr = rt.cfg.Server.Addr
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(rt.aggregator(), rt.cfg.Account, rt.log)
			printInfo("auth", rt.tokenSource)
			printInfo("listening", addr)
			if err := srv.Run(ctx, addr); err != nil {
				rt.log.Error().Stack().Err(err).Str("addr", addr).Msg("server stopped")
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	return cmd
}
