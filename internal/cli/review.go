package cli

import (
	"fmt"
	"time"

	"github.com/conorfennell/notedeck/internal/review"
	"github.com/spf13/cobra"
)

var (
	tzOffset int
	listTag  string
)

func init() {
	RootCmd.AddCommand(&cobra.Command{
		Use:   "review <entry-id> <again|hard|good|easy>",
		Short: "Rate an entry and print its new schedule",
		Args:  cobra.ExactArgs(2),
		RunE:  runReview,
	})

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show due counts, streak and today's reviews",
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}
	stats.Flags().IntVar(&tzOffset, "tz-offset", 0, "UTC offset in minutes (default: review.default_tz_offset)")
	RootCmd.AddCommand(stats)

	list := &cobra.Command{
		Use:   "list",
		Short: "List entries",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
	list.Flags().StringVarP(&listTag, "tag", "t", "", "Only entries with this tag")
	RootCmd.AddCommand(list)
}

func runReview(cmd *cobra.Command, args []string) error {
	rating, err := review.ParseRating(args[1])
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	state, err := db.ApplyReview(cmd.Context(), args[0], rating, time.Now())
	if err != nil {
		return err
	}
	return printJSON(cmd, state)
}

func runStats(cmd *cobra.Command, args []string) error {
	offset := cfg.Review.DefaultTZOffset
	if cmd.Flags().Changed("tz-offset") {
		offset = tzOffset
	}
	if !review.ValidOffset(offset) {
		return fmt.Errorf("tz offset %d is outside %d..%d", offset, review.MinOffsetMinutes, review.MaxOffsetMinutes)
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := db.ReviewStats(cmd.Context(), time.Now(), offset, cfg.Review.StreakHorizonDays)
	if err != nil {
		return err
	}
	return printJSON(cmd, stats)
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	entries, err := db.ListEntries(cmd.Context(), listTag)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", e.ID, e.Title)
	}
	return nil
}
