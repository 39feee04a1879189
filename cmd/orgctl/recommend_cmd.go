package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"orghierarchy-backend/shared/database/models"
	"orghierarchy-backend/shared/hierarchy"
)

func newRecommendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recommend <ORG_TYPE>",
		Short: "List the child types suggested under an organization type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orgType := models.OrgType(strings.ToUpper(strings.TrimSpace(args[0])))
			if !orgType.IsValid() {
				return fmt.Errorf("unknown organization type %q", args[0])
			}

			out := cmd.OutOrStdout()
			types := hierarchy.GetRecommendedChildTypes(orgType)
			if len(types) == 0 {
				fmt.Fprintf(out, "%s: no child types recommended\n", orgType)
				return nil
			}
			for i, t := range types {
				fmt.Fprintf(out, "%d. %s\n", i+1, t)
			}
			return nil
		},
	}
}
