package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newCleanCmd())
}

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove transient sync state (cookies, archive, changed-files listing)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := newSyncClient(cmd)
			if err != nil {
				return err
			}

			if err := c.Clean(); err != nil {
				return err
			}

			fmt.Printf("Cleaned %s\n", green(c.StateDir()))
			return nil
		},
	}
}
