// Package main provides a command-line caller for the consistency tracker.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fardannozami/consistency-tracker/internal/app/usecase"
	"github.com/fardannozami/consistency-tracker/internal/config"
	"github.com/fardannozami/consistency-tracker/internal/domain"
	"github.com/fardannozami/consistency-tracker/internal/infra/clock"
	"github.com/fardannozami/consistency-tracker/internal/infra/storage"
)

var (
	storeBackend string
	stateDir     string
	stateDBPath  string
	timezone     string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "consistency",
		Short:         "Track daily activity streaks",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&storeBackend, "store", "", "state backend: file or sqlite (default from config)")
	rootCmd.PersistentFlags().StringVar(&stateDir, "data-dir", "", "directory for JSON state files")
	rootCmd.PersistentFlags().StringVar(&stateDBPath, "db", "", "SQLite state database path")
	rootCmd.PersistentFlags().StringVar(&timezone, "tz", "", "IANA time zone used to decide \"today\"")

	rootCmd.AddCommand(newTrackCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newWeeklyCmd())
	rootCmd.AddCommand(newMonthCmd())
	rootCmd.AddCommand(newUsersCmd())

	return rootCmd
}

type env struct {
	store   storage.Store
	clock   domain.Clock
	closeFn func() error
	cfg     config.Config
}

// openEnv merges flags over the loaded config and opens the store.
func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	applyStringFlag(cmd, "store", &cfg.StoreBackend, storeBackend)
	applyStringFlag(cmd, "data-dir", &cfg.StateDir, stateDir)
	applyStringFlag(cmd, "db", &cfg.StateDBPath, stateDBPath)
	if cmd.Flags().Changed("tz") {
		cfg.Location, err = config.LoadLocation(timezone)
		if err != nil {
			return nil, err
		}
	}

	store, closeFn, err := storage.Open(cmd.Context(), cfg.StoreBackend, cfg.StateDir, cfg.StateDBPath)
	if err != nil {
		return nil, err
	}

	return &env{
		store:   store,
		clock:   clock.System{Location: cfg.Location},
		closeFn: closeFn,
		cfg:     cfg,
	}, nil
}

func applyStringFlag(cmd *cobra.Command, name string, target *string, value string) {
	if cmd.Flags().Changed(name) {
		*target = value
	}
}

// close releases the store, reporting its error unless the command already failed.
func (e *env) close(err *error) {
	if cerr := e.closeFn(); cerr != nil && *err == nil {
		*err = fmt.Errorf("failed to close store: %w", cerr)
	}
}

func (e *env) tracker(ctx context.Context, userID string) (*usecase.ConsistencyTracker, error) {
	return usecase.NewConsistencyTracker(ctx, userID, e.store, e.clock)
}

func newTrackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "track <user> [activity]",
		Short: "Record one activity for today",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close(&err)

			activity := e.cfg.DefaultActivity
			if len(args) == 2 {
				activity = args[1]
			}

			t, err := e.tracker(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load state: %w", err)
			}
			res, err := t.TrackActivity(cmd.Context(), activity)
			if err != nil {
				return fmt.Errorf("failed to track activity: %w", err)
			}

			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <user>",
		Short: "Print the stored state as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close(&err)

			t, err := e.tracker(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load state: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), t.GetStats())
		},
	}
}

func newWeeklyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "weekly <user>",
		Short: "Show visits for the last seven days",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close(&err)

			t, err := e.tracker(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load state: %w", err)
			}
			printWeekly(cmd.OutOrStdout(), t.GetWeeklyActivity())
			return nil
		},
	}
}

func newMonthCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "month <user> [YYYY-MM]",
		Short: "Show a calendar of visits for one month (default: current month)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close(&err)

			now := e.clock.Now()
			year, month := now.Year(), now.Month()
			if len(args) == 2 {
				year, month, err = domain.ParseMonth(args[1])
				if err != nil {
					return fmt.Errorf("invalid month %q, expected YYYY-MM", args[1])
				}
			}

			t, err := e.tracker(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load state: %w", err)
			}
			cal := t.GetMonthlyActivity(year, month)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), cal)
			}
			printMonth(cmd.OutOrStdout(), cal)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the calendar cells as JSON")
	return cmd
}

func newUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List users with stored state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close(&err)

			keys, err := e.store.Keys(cmd.Context())
			if err != nil {
				return err
			}
			users := make([]string, 0, len(keys))
			for _, k := range keys {
				if id, ok := strings.CutPrefix(k, usecase.StorageKey("")); ok {
					users = append(users, id)
				}
			}
			sort.Strings(users)
			for _, u := range users {
				fmt.Fprintln(cmd.OutOrStdout(), u)
			}
			return nil
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printWeekly(w io.Writer, week domain.WeeklyActivity) {
	maxVisits := 0
	for _, d := range week {
		if d.Visits > maxVisits {
			maxVisits = d.Visits
		}
	}

	for _, d := range week {
		day, err := domain.ParseDate(d.Date)
		label := d.Date
		if err == nil {
			label = fmt.Sprintf("%s %s", day.Weekday().String()[:3], d.Date)
		}
		bar := ""
		if maxVisits > 0 {
			bar = strings.Repeat("#", (d.Visits*20+maxVisits-1)/maxVisits)
		}
		fmt.Fprintf(w, "%s %4d %s\n", label, d.Visits, bar)
	}
}

func printMonth(w io.Writer, cal domain.MonthlyActivity) {
	fmt.Fprintf(w, "%s %d\n", cal.Month, cal.Year)
	fmt.Fprint(w, usecase.FormatCalendarGrid(cal))
	fmt.Fprintf(w, "%d active days, %d visits\n", cal.ActiveDays(), cal.MonthVisits())
}
