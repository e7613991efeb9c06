package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/airbreather/reminiscence/snapshot"
)

func init() {
	rootCmd.AddCommand(newGetCmd())
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <snapshot> <index>",
		Short: "Print one string from a snapshot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid index %q: %w", args[1], err)
			}
			a, err := snapshot.Load(args[0])
			if err != nil {
				return err
			}
			defer a.Close()

			s, err := a.Get(idx)
			if err != nil {
				return err
			}
			fmt.Println(s)
			return nil
		},
	}
}
