package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"orghierarchy-backend/shared/config"
	"orghierarchy-backend/shared/database"
	"orghierarchy-backend/shared/hierarchy"
	"orghierarchy-backend/shared/logger"
)

func newTreeCmd() *cobra.Command {
	var (
		rootIDStr string
		depth     int
	)

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the hierarchy below an organization",
		RunE: func(cmd *cobra.Command, args []string) error {
			rootID, err := uuid.Parse(strings.TrimSpace(rootIDStr))
			if err != nil {
				return fmt.Errorf("invalid --root: %w", err)
			}
			if depth < 0 {
				return fmt.Errorf("--depth must not be negative")
			}

			config.LoadConfig()
			cfg := config.GetConfig()
			log := logger.Init(cfg.LogLevel, cfg.LogFormat)

			if err := database.InitDatabase(); err != nil {
				return err
			}
			defer database.CloseDatabase()

			resolver := hierarchy.NewResolver(hierarchy.NewGormStore(database.GetDB()), cfg.GetHierarchyMaxDepth(), hierarchy.WithLogger(log))
			tree, err := resolver.GetDescendantsRecursive(cmd.Context(), rootID, depth)
			if err != nil {
				return err
			}
			printTree(cmd.OutOrStdout(), tree, 0)
			return nil
		},
	}

	cmd.Flags().StringVar(&rootIDStr, "root", "", "root organization id (required)")
	cmd.Flags().IntVar(&depth, "depth", 0, "levels to print below the root (0 = configured maximum)")
	_ = cmd.MarkFlagRequired("root")
	return cmd
}

func printTree(w io.Writer, node *hierarchy.TreeNode, indent int) {
	fmt.Fprintf(w, "%s%s (%s, %s, level %d) %s\n",
		strings.Repeat("  ", indent), node.Name, node.Slug, node.OrgType, node.HierarchyLevel, node.ID)
	for _, child := range node.Children {
		printTree(w, child, indent+1)
	}
}
