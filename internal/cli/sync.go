package cli

import (
	"github.com/conorfennell/notedeck/internal/sync"
	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(&cobra.Command{
		Use:   "sync",
		Short: "Import entries from every source once",
		Args:  cobra.NoArgs,
		RunE:  runSync,
	})
}

func runSync(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	report, err := sync.NewSyncer(db, cfg.Sync.ReposDir).Run(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(cmd, report)
}
