package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/airbreather/reminiscence/snapshot"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <snapshot>",
		Short: "Show statistics about a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := snapshot.Load(args[0])
			if err != nil {
				return err
			}
			defer a.Close()
			slog.Debug("snapshot loaded", "path", args[0])

			var packed int64
			for i := 0; i < a.Len(); i++ {
				s, err := a.Get(i)
				if err != nil {
					return err
				}
				packed += int64(len(s))
			}

			fmt.Printf("Strings:     %d\n", a.Len())
			fmt.Printf("Data bytes:  %d\n", a.DataLen())
			fmt.Printf("Live bytes:  %d\n", packed)
			fmt.Printf("Fragmented:  %v\n", a.Fragmented())
			return nil
		},
	}
}
