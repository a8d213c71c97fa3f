package cli

import (
	"fmt"

	"github.com/conorfennell/notedeck/internal/gitsource"
	"github.com/conorfennell/notedeck/internal/storage"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "source",
		Short: "Manage note sources",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <path|git-url>",
			Short: "Add a local directory or git repository",
			Args:  cobra.ExactArgs(1),
			RunE:  runSourceAdd,
		},
		&cobra.Command{
			Use:   "list",
			Short: "List sources",
			Args:  cobra.NoArgs,
			RunE:  runSourceList,
		},
		&cobra.Command{
			Use:   "rm <id>",
			Short: "Remove a source and its entries",
			Args:  cobra.ExactArgs(1),
			RunE:  runSourceRm,
		},
	)
	RootCmd.AddCommand(cmd)
}

func runSourceAdd(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	path := args[0]
	existing, err := db.FindSourceByPath(cmd.Context(), path)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("source %s already exists with id %s", path, existing.ID)
	}

	sourceType := storage.SourceLocal
	if gitsource.IsGitURL(path) {
		sourceType = storage.SourceGit
	}
	id, err := db.InsertSource(cmd.Context(), path, sourceType)
	if err != nil {
		return err
	}
	return printJSON(cmd, map[string]string{"id": id, "path": path, "type": sourceType})
}

func runSourceList(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	sources, err := db.GetAllSources(cmd.Context())
	if err != nil {
		return err
	}
	for _, src := range sources {
		scanned := "never"
		if at := src.LastScannedAt(); at != nil {
			scanned = at.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", src.ID, src.Type, src.Path, scanned)
	}
	return nil
}

func runSourceRm(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	deleted, err := db.DeleteSource(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("no source with id %s", args[0])
	}
	return nil
}
