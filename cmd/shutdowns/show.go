package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"shutdowns-bot/internal/locale"
	"shutdowns-bot/internal/schedule"
)

var (
	showNext  bool
	showGroup int
	showLang  string
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Fetch the schedule and print outage intervals",
	RunE:  runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showNext, "next", false, "show tomorrow's schedule")
	showCmd.Flags().IntVarP(&showGroup, "group", "g", 0, "only this group")
	showCmd.Flags().StringVar(&showLang, "lang", locale.Ukrainian, "message language (uk or en)")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.FetchTimeout)
	defer cancel()

	fetcher := schedule.NewFetcher(cfg.ScheduleURL, cfg.ScheduleNextQuery, cfg.FetchTimeout)
	table, err := schedule.NewCache(fetcher, cfg.Freshness).GetTable(ctx, schedule.Options{Next: showNext})
	if err != nil {
		return err
	}
	return printSchedule(cmd, table, showGroup, locale.Normalize(showLang), showNext)
}

func printSchedule(cmd *cobra.Command, table schedule.Table, group int, lang string, tomorrow bool) error {
	groups := []int{group}
	if group == 0 {
		groups = groups[:0]
		for g := 1; g <= len(table); g++ {
			groups = append(groups, g)
		}
	}
	for _, g := range groups {
		intervals, err := table.Intervals(g)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), locale.FormatSchedule(lang, g, intervals, tomorrow)); err != nil {
			return err
		}
	}
	return nil
}
