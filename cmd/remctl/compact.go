package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/airbreather/reminiscence/snapshot"
)

func init() {
	rootCmd.AddCommand(newCompactCmd())
}

func newCompactCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compact <snapshot>",
		Short: "Rewrite a snapshot with all gaps eliminated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := snapshot.Load(args[0])
			if err != nil {
				return err
			}
			defer a.Close()

			before := a.DataLen()
			packed, err := a.Compact()
			if err != nil {
				return err
			}
			slog.Debug("compacted", "before", before, "after", packed)

			if err := snapshot.Save(args[0], a, snapshot.SaveOptions{Compress: compress}); err != nil {
				return err
			}
			fmt.Printf("Compacted: %d -> %d data bytes\n", before, packed)
			return nil
		},
	}
}
