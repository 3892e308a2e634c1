package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-cms/internal/auth"
	"github.com/odyssey-erp/odyssey-cms/internal/platform/db"
)

// AdminStore persists admin accounts.
type AdminStore interface {
	CreateUser(ctx context.Context, email, name, passwordHash string) (int64, error)
}

// CreateAdmin hashes password and stores the account.
func CreateAdmin(ctx context.Context, store AdminStore, email, name, password string) (int64, error) {
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") {
		return 0, errors.New("admin: a valid email is required")
	}
	if len(password) < 8 {
		return 0, errors.New("admin: password must be at least 8 characters")
	}
	if strings.TrimSpace(name) == "" {
		name = email[:strings.IndexByte(email, '@')]
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return 0, fmt.Errorf("admin: hash password: %w", err)
	}
	return store.CreateUser(ctx, email, strings.TrimSpace(name), hash)
}

func newAdminCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts",
	}
	var email, name, password string
	create := &cobra.Command{
		Use:   "create-user",
		Short: "Create an admin account or reset its password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := db.New(cmd.Context(), opts.PGDSN)
			if err != nil {
				return err
			}
			defer pool.Close()
			id, err := CreateAdmin(cmd.Context(), auth.NewRepository(pool), email, name, password)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "admin user %d ready: %s\n", id, email)
			return nil
		},
	}
	create.Flags().StringVar(&email, "email", "", "login email")
	create.Flags().StringVar(&name, "name", "", "display name")
	create.Flags().StringVar(&password, "password", "", "login password (min 8 characters)")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("password")
	cmd.AddCommand(create)
	return cmd
}
