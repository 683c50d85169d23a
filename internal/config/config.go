package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/olsync/olsync/internal/utils"
)

var (
	home, _           = os.UserHomeDir()
	DefaultConfigPath = filepath.Join(home, ".olsync", "config.json")
	DefaultServerURL  = "https://www.overleaf.com"
)

var (
	ErrNoPassword  = errors.New("config: password missing")
	ErrNoProjectID = errors.New("config: project id missing")
)

// Config holds everything needed to talk to one Overleaf project. It is
// read-only to the sync client; credentials come from the config file or
// the OLSYNC_* environment, never from source.
type Config struct {
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
	ServerURL string `json:"server_url"`
	ProjectID string `json:"project_id"`
	FolderID  string `json:"folder_id"`
	DataDir   string `json:"data_dir"`
	Path      string `json:"-"`
}

func (c *Config) Validate() error {
	if err := utils.ValidateEmail(c.Email); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if c.Password == "" {
		return ErrNoPassword
	}

	if c.ServerURL == "" {
		c.ServerURL = DefaultServerURL
	}
	if err := utils.ValidateURL(c.ServerURL); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if c.ProjectID == "" {
		return ErrNoProjectID
	}

	if c.DataDir == "" {
		c.DataDir = "."
	}
	dataDir, err := utils.ResolvePath(c.DataDir)
	if err != nil {
		return fmt.Errorf("config: resolve data dir: %w", err)
	}
	c.DataDir = dataDir

	return nil
}

// Save writes the config to c.Path. The password is written as-is, so the
// file is chmod 0600 unlike the rest of the state files.
func (c *Config) Save() error {
	if c.Path == "" {
		c.Path = DefaultConfigPath
	}

	if err := utils.EnsureParent(c.Path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.Path, data, 0o600)
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config parse %q: %w", path, err)
	}

	cfg.Path = path
	return &cfg, nil
}
