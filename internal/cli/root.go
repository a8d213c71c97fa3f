// Package cli implements the notedeck commands.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/conorfennell/notedeck/internal/config"
	"github.com/conorfennell/notedeck/internal/logging"
	"github.com/conorfennell/notedeck/internal/storage"
	"github.com/spf13/cobra"
)

var (
	configPath string
	cfg        *config.Config
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:           "notedeck",
	Short:         "Notes with spaced-repetition review",
	Long:          "notedeck imports notes from local directories and git repositories and schedules them for review.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath, cmd.Flags())
		if err != nil {
			return err
		}
		cfg = loaded
		logging.New(cfg.Log, os.Stderr)
		return nil
	},
}

func init() {
	flags := RootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", os.Getenv("NOTEDECK_CONFIG"), "Path to a YAML config file")
	config.RegisterFlags(flags)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func openStore() (*storage.DB, error) {
	return storage.Open(cfg.Database.Driver, cfg.Database.DSN)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}
