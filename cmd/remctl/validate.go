package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/airbreather/reminiscence/snapshot"
)

func init() {
	rootCmd.AddCommand(newValidateCmd())
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <snapshot>",
		Short: "Check that a snapshot loads cleanly",
		Long: `Loading a snapshot verifies the header, the payload checksum, every
pointer's bounds and the UTF-8 validity of every string, so a successful
load is a full validation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := snapshot.Load(args[0])
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
			defer a.Close()
			fmt.Printf("OK: %d strings, %d data bytes\n", a.Len(), a.DataLen())
			return nil
		},
	}
}
