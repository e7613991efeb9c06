package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/airbreather/reminiscence/snapshot"
)

func init() {
	rootCmd.AddCommand(newDumpCmd())
}

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <snapshot>",
		Short: "Print every string in a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := snapshot.Load(args[0])
			if err != nil {
				return err
			}
			defer a.Close()

			for i := 0; i < a.Len(); i++ {
				s, err := a.Get(i)
				if err != nil {
					return err
				}
				fmt.Printf("%d\t%q\n", i, s)
			}
			return nil
		},
	}
}
