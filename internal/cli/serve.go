package cli

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/medicle/internal/game"
	"github.com/robalobadob/medicle/internal/httpserver"
)

func (a *app) serveCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the game and library screens over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if port != "" {
				a.cfg.Port = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			lib, kv, err := a.openLibrary(ctx)
			if err != nil {
				return err
			}
			defer kv.Close()

			session := game.NewSession(lib)
			if _, err := session.Start(ctx); err != nil && !errors.Is(err, game.ErrEmptyLibrary) {
				return err
			}

			log.Info().
				Str("storage", a.cfg.Storage.Backend).
				Int("records", lib.Len()).
				Int("score", lib.Score()).
				Msg("starting medicle")
			return httpserver.New(session, lib, a.cfg.ClientOrigin).Start(ctx, a.cfg.Addr())
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "Listen port (default: $PORT or 5175)")
	return cmd
}
