package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newDownloadCmd())
}

func newDownloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download",
		Short: "Download the project and extract it over the working directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cfg, err := newSyncClient(cmd)
			if err != nil {
				return err
			}

			if err := c.Login(cmd.Context()); err != nil {
				return err
			}
			if err := c.Download(cmd.Context()); err != nil {
				return err
			}

			fmt.Printf("Downloaded project %s into %s\n", cyan(cfg.ProjectID), green(cfg.DataDir))
			return nil
		},
	}
}
