package main

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/airbreather/reminiscence/snapshot"
)

var setGrow bool

func init() {
	cmd := newSetCmd()
	cmd.Flags().BoolVar(&setGrow, "grow", false, "Grow the array when the index is past the end")
	rootCmd.AddCommand(cmd)
}

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <snapshot> <index> <value>",
		Short: "Replace one string and rewrite the snapshot",
		Args:  cobra.ExactArgs(3),
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

			if setGrow && idx >= a.Len() {
				slog.Debug("growing array", "from", a.Len(), "to", idx+1)
				if err := a.Resize(idx + 1); err != nil {
					return err
				}
			}
			if err := a.Set(idx, args[2]); err != nil {
				return err
			}
			return snapshot.Save(args[0], a, snapshot.SaveOptions{Compress: compress})
		},
	}
}
