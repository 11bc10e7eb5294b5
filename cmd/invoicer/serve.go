package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	httpapi "github.com/gdnc/invoice-automation/internal/interfaces/http"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the local invoice form API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(root, "serve", true)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			handlers := httpapi.NewHandlers(a.generator, a.catalogs, a.deliverer(), a.cfg.ToComposer(), a.logger)
			server := httpapi.NewServer(httpapi.ServerConfig{
				Host:         a.cfg.Server.Host,
				Port:         a.cfg.Server.Port,
				ReadTimeout:  a.cfg.Server.ReadTimeout,
				WriteTimeout: a.cfg.Server.WriteTimeout,
			}, handlers, a.logger)
			return server.Start(ctx)
		},
	}
}
