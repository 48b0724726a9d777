package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/oscillatelabsllc/sidequest/internal/db"
	"github.com/oscillatelabsllc/sidequest/internal/recommend"
	"github.com/spf13/cobra"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <group>",
	Short: "Recommend activities for a group",
	Long: `Recommend activities for a group of friends. The group key is matched
against pair labels such as "Amit-Rahul", so "Amit" matches every pair
Amit appears in first.

The model is trained on first use and reused afterwards. Run
"sidequest rebuild" to pick up adventures logged since.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecommend,
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Retrain the recommendation model from the current ledger",
	Args:  cobra.NoArgs,
	RunE:  runRebuild,
}

var importCmd = &cobra.Command{
	Use:   "import <legacy.json>",
	Short: "Merge a legacy adventure_tracker.json into the ledger",
	Long: `Import adventures from the legacy flat JSON format, where each day maps
"A-B-Category" keys to counts. Keys whose names contain '-' cannot be split
unambiguously and are rejected.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(recommendCmd, rebuildCmd, importCmd)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	t, closeFn, err := openTracker(cmd.Context(), spinnerOption())
	if err != nil {
		return err
	}
	defer closeFn()

	group := args[0]
	recs, err := t.RecommendActivities(cmd.Context(), group)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), recommend.NoDataMessage)
		return nil
	}

	labels := make([]string, len(recs))
	for i, c := range recs {
		labels[i] = c.String()
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Recommended activities for %s: %s\n", group, strings.Join(labels, ", "))
	return nil
}

func runRebuild(cmd *cobra.Command, args []string) error {
	t, closeFn, err := openTracker(cmd.Context(), spinnerOption())
	if err != nil {
		return err
	}
	defer closeFn()

	m, err := t.RebuildModel(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Model %s trained on %d records.\n", m.ID, len(m.Records))
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open legacy file: %w", err)
	}
	defer f.Close()

	src, err := db.ReadLegacyJSON(f)
	if err != nil {
		return err
	}

	t, closeFn, err := openTracker(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	if err := t.Import(cmd.Context(), src); err != nil {
		return err
	}

	entries := 0
	for _, day := range src {
		entries += len(day)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries across %d dates.\n", entries, len(src))
	return nil
}
