package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-cms/jobs"
)

func newJobsCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and trigger background jobs",
	}

	warmup := &cobra.Command{
		Use:   "warmup [table]",
		Short: "Enqueue a list warmup for one table or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table := jobs.AllTables
			if len(args) == 1 {
				table = args[0]
			}
			c, err := NewJobsCLI(opts.RedisAddr)
			if err != nil {
				return err
			}
			defer c.Close()
			info, err := c.Warmup(cmd.Context(), table)
			if err != nil {
				return fmt.Errorf("enqueue warmup: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s task %s on queue %s\n", jobs.TaskListWarmup, info.ID, info.Queue)
			return nil
		},
	}

	var asJSON bool
	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show the default queue counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := NewJobsCLI(opts.RedisAddr)
			if err != nil {
				return err
			}
			defer c.Close()
			s, err := c.InspectQueue(cmd.Context())
			if err != nil {
				return fmt.Errorf("inspect queue: %w", err)
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return json.NewEncoder(out).Encode(s)
			}
			_, _ = fmt.Fprintf(out, "queue=%s pending=%d active=%d scheduled=%d retry=%d\n", s.Queue, s.Pending, s.Active, s.Scheduled, s.Retry)
			return nil
		},
	}
	stats.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	var size int
	scheduled := &cobra.Command{
		Use:   "scheduled",
		Short: "List scheduled tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := NewJobsCLI(opts.RedisAddr)
			if err != nil {
				return err
			}
			defer c.Close()
			tasks, err := c.ListScheduled(cmd.Context(), size)
			if err != nil {
				return fmt.Errorf("list scheduled: %w", err)
			}
			for _, t := range tasks {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", t.ID, t.Type, t.NextProcessAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
	scheduled.Flags().IntVar(&size, "size", 10, "number of tasks to list")

	cmd.AddCommand(warmup, stats, scheduled)
	return cmd
}
