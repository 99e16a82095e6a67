// Command trackjournal serves and manages a vehicle garage.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-trackjournal/internal/logging"
	"github.com/goliatone/go-trackjournal/pkg/config"
)

var (
	cfgPath     string
	sessionPath string
	verbose     bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "trackjournal",
	Short: "Keep track of the vehicles in your garage",
	Long: `trackjournal stores your vehicles and serves them over HTTP.

Run "trackjournal serve" to start the web server, or use the vehicle and
auth commands to manage the garage from the terminal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		if verbose {
			loaded.Log.Level = "debug"
		}
		built, err := logging.New(loaded.Log.Level, loaded.Log.Development)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		cfg, logger = loaded, built
		logger.Debug("config loaded", zap.String("path", cfgPath), zap.String("driver", cfg.Store.Driver))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "trackjournal.yaml", "configuration file")
	rootCmd.PersistentFlags().StringVar(&sessionPath, "session", defaultSessionPath(), "file holding the signed-in session")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		newServeCmd(),
		newVehicleCmd(),
		newCatalogCmd(),
		newAuthCmd(),
		newConfigCmd(),
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
