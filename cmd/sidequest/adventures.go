package main

import (
	"fmt"
	"strings"

	"github.com/oscillatelabsllc/sidequest/internal/models"
	"github.com/oscillatelabsllc/sidequest/internal/stats"
	"github.com/oscillatelabsllc/sidequest/internal/tracker"
	"github.com/spf13/cobra"
)

var (
	logDate      string
	buddiesLimit int
)

var logCmd = &cobra.Command{
	Use:   "log <category> <friend> <friend> [friend...]",
	Short: "Log a new adventure",
	Long: `Log an adventure shared by two or more friends. Every pair of
participants is credited in both directions.

Example:
  sidequest log Hiking Amit Rahul Sara --date 2024-06-01`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLog,
}

var buddiesCmd = &cobra.Command{
	Use:   "buddies <user>",
	Short: "View top adventure buddies",
	Args:  cobra.ExactArgs(1),
	RunE:  runBuddies,
}

var historyCmd = &cobra.Command{
	Use:   "history <date>",
	Short: "View adventure history for a date (YYYY-MM-DD)",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

var trendCmd = &cobra.Command{
	Use:   "trend <user>",
	Short: "Visualize adventure trends per category",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrend,
}

var badgesCmd = &cobra.Command{
	Use:   "badges <user>",
	Short: "Show unlocked achievements",
	Args:  cobra.ExactArgs(1),
	RunE:  runBadges,
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List adventure categories",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, c := range models.Categories() {
			fmt.Fprintln(cmd.OutOrStdout(), c)
		}
	},
}

func init() {
	logCmd.Flags().StringVar(&logDate, "date", "", "Adventure date as YYYY-MM-DD (default: today)")
	buddiesCmd.Flags().IntVar(&buddiesLimit, "limit", 0, "Number of buddies to show (default: recommend.top_n)")

	rootCmd.AddCommand(logCmd, buddiesCmd, historyCmd, trendCmd, badgesCmd, categoriesCmd)
}

func runLog(cmd *cobra.Command, args []string) error {
	t, closeFn, err := openTracker(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	date := tracker.DefaultDate(logDate)

	category, participants := args[0], args[1:]
	if err := t.LogAdventure(cmd.Context(), participants, category, date); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Adventure '%s' logged for %s!\n", category, date)
	return nil
}

func runBuddies(cmd *cobra.Command, args []string) error {
	t, closeFn, err := openTracker(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	limit := t.TopN()
	if cmd.Flags().Changed("limit") {
		limit = buddiesLimit
	}

	user := args[0]
	buddies := t.TopPartners(user, limit)
	if len(buddies) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No adventures found for %s.\n", user)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Top %d adventure buddies for %s: %s\n",
		len(buddies), user, strings.Join(models.Names(buddies), ", "))
	for _, b := range buddies {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-20s %d\n", b.Name, b.Count)
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	t, closeFn, err := openTracker(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	date := args[0]
	entries := t.AdventureHistory(date)
	if len(entries) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No adventures found on %s.\n", date)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Adventures on %s:\n", date)
	for _, e := range entries {
		fmt.Fprintf(cmd.OutOrStdout(), "%s and %s went for a '%s' %d times.\n", e.A, e.B, e.Category, e.Count)
	}
	return nil
}

func runTrend(cmd *cobra.Command, args []string) error {
	t, closeFn, err := openTracker(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	user := args[0]
	points := stats.Trend(t.CategoryTrend(user))
	if len(points) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No adventure data available for %s.\n", user)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Adventure trends for %s\n", user)
	peak := points[0].Count
	for _, p := range points {
		width := p.Count * 40 / peak
		if width == 0 {
			width = 1
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %-16s %s %d\n", p.Category, strings.Repeat("█", width), p.Count)
	}
	return nil
}

func runBadges(cmd *cobra.Command, args []string) error {
	t, closeFn, err := openTracker(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	user := args[0]
	tier := t.BadgeTier(user)
	out := cmd.OutOrStdout()
	for _, b := range tier.Unlocked() {
		switch b {
		case models.BadgeAdventurer:
			fmt.Fprintf(out, "🎖️ Congrats %s, you've earned the 'Adventurer' badge!\n", user)
		case models.BadgeExplorer:
			fmt.Fprintf(out, "🏆 Wow %s, you're an 'Explorer' now!\n", user)
		case models.BadgeUltimateTraveler:
			fmt.Fprintln(out, "🌍 Ultimate Traveler Badge Unlocked!")
		}
	}
	if tier == models.BadgeNone {
		fmt.Fprintf(out, "%s has %d adventures. %d more to the 'Adventurer' badge.\n",
			user, t.TotalAdventures(user), models.AdventurerThreshold-t.TotalAdventures(user))
	}
	return nil
}
