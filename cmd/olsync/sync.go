package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newSyncCmd())
}

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Download then upload in one session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cfg, err := newSyncClient(cmd)
			if err != nil {
				return err
			}

			if err := c.Login(cmd.Context()); err != nil {
				return err
			}
			if err := c.Sync(cmd.Context()); err != nil {
				return err
			}

			fmt.Printf("Project %s in sync with %s\n", cyan(cfg.ProjectID), green(cfg.DataDir))
			return nil
		},
	}
}
