package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"lectern/internal/httpapi"
	"lectern/internal/vectorstore"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return ctx.withStore(runCtx, func(store *vectorstore.Store) error {
				p, err := ctx.buildPipeline(store)
				if err != nil {
					return err
				}
				asm, err := ctx.buildAssembler(store)
				if err != nil {
					return err
				}

				uploadDir := cfg.Paths.DownloadDir
				server, err := httpapi.New(cfg.Paths.APIBind, uploadDir, p, asm, store, ctx.ensureLogger())
				if err != nil {
					return err
				}
				if err := server.Start(runCtx); err != nil {
					return err
				}
				defer server.Stop()

				fmt.Fprintf(cmd.OutOrStdout(), "Serving on %s (collection %q)\n", server.Addr(), store.Collection())
				<-runCtx.Done()
				return nil
			})
		},
	}
}
