// Package cli implements the medicle commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/medicle/internal/config"
	"github.com/robalobadob/medicle/internal/library"
	"github.com/robalobadob/medicle/internal/store"
)

// app carries flag values and the loaded config between commands.
type app struct {
	configPath string
	dbPath     string
	storage    string
	cfg        *config.Config
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:               "medicle",
		Short:             "Diagnose the illness from its symptoms",
		Long:              "A symptom guessing game. Play in the terminal or serve the web screens, and keep the illness library up to date.",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML config file (env vars still override)")
	root.PersistentFlags().StringVarP(&a.dbPath, "db", "d", "", "SQLite database path (default: $MEDICLE_DB or ./data/medicle.db)")
	root.PersistentFlags().StringVar(&a.storage, "storage", "", "Storage backend: sqlite, redis or memory (default: $MEDICLE_STORAGE or sqlite)")

	root.AddCommand(a.serveCmd(), a.playCmd(), a.libraryCmd(), a.scoreCmd())
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.Storage.DBPath = a.dbPath
	}
	if a.storage != "" {
		cfg.Storage.Backend = a.storage
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	setupLogger(cfg.LogLevel, cmd.ErrOrStderr())
	return nil
}

// setupLogger writes human-readable logs to a terminal and JSON otherwise.
func setupLogger(level string, w io.Writer) {
	if lvl, err := zerolog.ParseLevel(level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: f, TimeFormat: time.Kitchen})
		return
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

// openKV opens the configured key-value backend.
func (a *app) openKV(ctx context.Context) (store.Store, error) {
	switch a.cfg.Storage.Backend {
	case config.StorageMemory:
		return store.NewMemoryStore(), nil
	case config.StorageRedis:
		kv, err := store.NewRedisStore(ctx, a.cfg.Redis.GetRedisAddr(), a.cfg.Redis.Prefix)
		if err != nil {
			return nil, err
		}
		return kv, nil
	default:
		kv, err := store.NewSQLiteStore(a.cfg.Storage.DBPath)
		if err != nil {
			return nil, err
		}
		return kv, nil
	}
}

// openLibrary opens storage and loads the record store. The caller closes
// the returned key-value store.
func (a *app) openLibrary(ctx context.Context) (*library.Store, store.Store, error) {
	kv, err := a.openKV(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s storage: %w", a.cfg.Storage.Backend, err)
	}
	lib, err := library.New(ctx, kv, library.WithSeedFile(a.cfg.Storage.SeedFile))
	if err != nil {
		_ = kv.Close()
		return nil, nil, err
	}
	return lib, kv, nil
}
