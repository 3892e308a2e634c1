// Package cli holds the operator commands of the odysseyctl binary.
package cli

import (
	"github.com/spf13/cobra"
)

// Options carry the connection settings shared by the commands.
type Options struct {
	RedisAddr string
	PGDSN     string
}

// NewRootCommand builds the odysseyctl command tree.
func NewRootCommand(opts *Options) *cobra.Command {
	root := &cobra.Command{
		Use:           "odysseyctl",
		Short:         "Operator tools for the Odyssey CMS admin",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.RedisAddr, "redis", opts.RedisAddr, "redis address used by the job queue")
	root.PersistentFlags().StringVar(&opts.PGDSN, "pg-dsn", opts.PGDSN, "postgres connection string")

	root.AddCommand(newJobsCommand(opts), newTablesCommand(), newAdminCommand(opts))
	return root
}
