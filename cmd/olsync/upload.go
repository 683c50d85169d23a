package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newUploadCmd())
}

func newUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload",
		Short: "Upload files changed since the last synced revision",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cfg, err := newSyncClient(cmd)
			if err != nil {
				return err
			}

			if err := c.Login(cmd.Context()); err != nil {
				return err
			}
			if err := c.Upload(cmd.Context()); err != nil {
				return err
			}

			fmt.Printf("Uploaded changes to project %s\n", cyan(cfg.ProjectID))
			return nil
		},
	}
}
