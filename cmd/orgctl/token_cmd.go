package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"orghierarchy-backend/shared/utils/auth"
	"orghierarchy-backend/shared/utils/permission"
)

var knownRoles = []string{
	permission.RoleSuperAdmin,
	permission.RoleOwner,
	permission.RoleAdmin,
	permission.RoleManager,
	permission.RoleMember,
	permission.RoleViewer,
}

func newTokenCmd() *cobra.Command {
	var (
		userIDStr string
		orgIDStr  string
		email     string
		role      string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a session token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(strings.TrimSpace(userIDStr))
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
			orgID := uuid.Nil
			if orgIDStr != "" {
				if orgID, err = uuid.Parse(strings.TrimSpace(orgIDStr)); err != nil {
					return fmt.Errorf("invalid --org: %w", err)
				}
			}

			role = strings.ToUpper(strings.TrimSpace(role))
			if !isKnownRole(role) {
				return fmt.Errorf("unsupported --role %q (expected one of %s)", role, strings.Join(knownRoles, "|"))
			}

			token, err := auth.GenerateJWT(userID, email, orgID, role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userIDStr, "user", "", "user id (required)")
	cmd.Flags().StringVar(&orgIDStr, "org", "", "organization id")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().StringVar(&role, "role", permission.RoleOwner, "role claim")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func isKnownRole(role string) bool {
	for _, r := range knownRoles {
		if r == role {
			return true
		}
	}
	return false
}
