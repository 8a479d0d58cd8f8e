////////////////////////////////////////////////////////////////////////////////
// Okinoko IDO: a token launchpad contract with its own host and gateway
////////////////////////////////////////////////////////////////////////////////

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"okinoko_ido/config"
	"okinoko_ido/contract"
	"okinoko_ido/store"
)

var (
	cfgPath string
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "okinoko-ido",
	Short: "Okinoko IDO launchpad node",
	Long: `Runs the Okinoko IDO launchpad contract against a local state database.

Auctions sell a fixed token allotment to whitelisted bidders inside a time
window. Bought tokens unlock over a vesting schedule and are claimed per
schedule entry.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		logger, err = buildLogger(cfg.Logging, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func buildLogger(lc config.LoggingConfig, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if lc.Development {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// openHost opens the configured backend. The returned func closes it.
func openHost() (*contract.Host, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	var backend store.Backend
	if cfg.InMemory() {
		logger.Warn("state kept in memory, nothing survives a restart")
		backend = store.NewMemoryBackend()
	} else {
		db, err := store.OpenSQLite(cfg.Database.Path)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("state database opened", zap.String("path", db.Path()))
		backend = db
	}
	closeFn := func() {
		if err := backend.Close(); err != nil {
			logger.Warn("failed to close state database", zap.Error(err))
		}
	}
	return contract.NewHost(backend, logger.Named("host")), closeFn, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "okinoko_ido.yaml", "config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		serveCmd,
		callCmd,
		auctionCmd,
		entryPointsCmd,
		balanceCmd,
		seedCmd,
		initConfigCmd,
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
