package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "orgctl",
		Short:         "Organization hierarchy admin tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newTreeCmd())
	cmd.AddCommand(newRecommendCmd())
	cmd.AddCommand(newTokenCmd())
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
