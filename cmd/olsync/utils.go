package main

import (
	"github.com/olsync/olsync/internal/client"
	"github.com/olsync/olsync/internal/config"
	"github.com/spf13/cobra"
)

// newSyncClient builds the validated config and a sync client for a
// subcommand run. Usage is silenced once the config checks out, so op
// failures print as plain errors.
func newSyncClient(cmd *cobra.Command) (*client.SyncClient, *config.Config, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, nil, err
	}
	cmd.SilenceUsage = true

	c, err := client.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return c, cfg, nil
}
