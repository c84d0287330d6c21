package main

import (
	"fmt"
	"log/slog"
	"strings"

	"cloud-drive/internal/database"
	"cloud-drive/internal/models"

	"github.com/spf13/cobra"
)

var (
	promoteEmail string
	promoteRole  string
)

var promoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Change an account's role",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		role := models.Role(strings.ToUpper(promoteRole))
		if !role.Valid() {
			return fmt.Errorf("invalid role %q", promoteRole)
		}

		pool, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer pool.Close()

		user, err := database.NewStore(pool).SetUserRole(cmd.Context(), strings.ToLower(strings.TrimSpace(promoteEmail)), role)
		if err != nil {
			return err
		}
		slog.Info("role updated", "user_id", user.ID, "email", user.Email, "role", user.Role)
		return nil
	},
}

func init() {
	promoteCmd.Flags().StringVar(&promoteEmail, "email", "", "account email")
	promoteCmd.Flags().StringVar(&promoteRole, "role", string(models.RoleAdmin), "role to assign: ADMIN or USER")
	_ = promoteCmd.MarkFlagRequired("email")
}
