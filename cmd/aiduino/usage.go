package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/NikolaiRadke/AI.duino-sub001/pkg/i18n"
	"github.com/NikolaiRadke/AI.duino-sub001/pkg/usage"
)

var usageFlags struct {
	days int
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Inspect token usage and cost",
}

var usageShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show today's usage per provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		rec := a.tracker.Snapshot()
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, i18n.T("usage.today_header", rec.Date))

		if len(rec.Providers) == 0 {
			fmt.Fprintln(out, i18n.T("usage.empty"))
			return nil
		}

		ids := make([]string, 0, len(rec.Providers))
		for id := range rec.Providers {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			c := rec.Providers[id]
			fmt.Fprintln(out, i18n.T("usage.provider_line", id, c.InputTokens, c.OutputTokens, c.Cost))
		}

		total := a.tracker.Totals()
		fmt.Fprintln(out, i18n.T("usage.totals", total.InputTokens, total.OutputTokens, total.Cost))
		return nil
	},
}

var usageHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show archived daily usage",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if a.history == nil {
			return fmt.Errorf("usage history is unavailable")
		}

		days, err := a.history.Days(cmd.Context(), usageFlags.days)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(days) == 0 {
			fmt.Fprintln(out, i18n.T("usage.empty"))
			return nil
		}
		fmt.Fprintln(out, i18n.T("usage.history_header"))
		for _, day := range days {
			fmt.Fprintln(out, i18n.T("usage.provider_line", day.Day, day.InputTokens, day.OutputTokens, day.Cost))
		}
		return nil
	},
}

var usageResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset today's usage counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		a.tracker.ResetAll()
		a.tracker.Flush()
		fmt.Fprintln(cmd.OutOrStdout(), i18n.T("usage.reset_done"))
		return nil
	},
}

var usagePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Prune archived usage older than the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if a.history == nil {
			return fmt.Errorf("usage history is unavailable")
		}

		sched, err := usage.NewRetentionScheduler(a.history, usage.RetentionConfig{
			RetentionDays: a.cfg.Usage.RetentionDays,
			Schedule:      a.cfg.Usage.RetentionSchedule,
		})
		if err != nil {
			return err
		}
		return sched.RunOnce(cmd.Context())
	},
}

func init() {
	usageHistoryCmd.Flags().IntVar(&usageFlags.days, "days", 30, "number of archived days to show")

	usageCmd.AddCommand(usageShowCmd)
	usageCmd.AddCommand(usageHistoryCmd)
	usageCmd.AddCommand(usageResetCmd)
	usageCmd.AddCommand(usagePruneCmd)
	rootCmd.AddCommand(usageCmd)
}
