package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/olsync/olsync/internal/config"
	"github.com/olsync/olsync/internal/utils"
	"github.com/olsync/olsync/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	home, _        = os.UserHomeDir()
	defaultLogFile = filepath.Join(home, ".olsync", "logs", "olsync.log")
	configFileName = "config"
)

var (
	red   = color.New(color.FgHiRed, color.Bold).SprintFunc()
	green = color.New(color.FgHiGreen).SprintFunc()
	cyan  = color.New(color.FgHiCyan).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:     "olsync",
	Short:   "Sync a git-tracked working directory with an Overleaf project",
	Version: version.Detailed(),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return errors.New("expected one of: download, upload, sync, clean")
	},
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
}

func init() {
	rootCmd.PersistentFlags().SortFlags = false
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultConfigPath, "Config file")
	rootCmd.PersistentFlags().StringP("email", "e", "", "Overleaf account email")
	rootCmd.PersistentFlags().StringP("server", "s", config.DefaultServerURL, "Overleaf server URL")
	rootCmd.PersistentFlags().StringP("project", "p", "", "Overleaf project id")
	rootCmd.PersistentFlags().String("folder", "", "Target folder id inside the project")
	rootCmd.PersistentFlags().StringP("dir", "d", ".", "Working directory to sync")
}

func main() {
	// .env is optional; it feeds the OLSYNC_* variables picked up below
	godotenv.Load()

	setupLogging()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd.SilenceErrors = true
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("ERROR"), err)
		os.Exit(1)
	}
}

func setupLogging() {
	stderrHandler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: "15:04:05",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})

	handlers := []slog.Handler{stderrHandler}
	if file := openLogFile(); file != nil {
		handlers = append(handlers, slog.NewTextHandler(file, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}

	slog.SetDefault(slog.New(utils.NewMultiLogHandler(handlers...)))
}

// openLogFile opens a fresh logfile for this run. Logging stays
// stderr-only if the file cannot be created.
func openLogFile() *os.File {
	if err := os.MkdirAll(filepath.Dir(defaultLogFile), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create log directory: %v\n", err)
		return nil
	}

	file, err := os.OpenFile(defaultLogFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
		return nil
	}
	return file
}

func loadConfig(cmd *cobra.Command) error {
	if cmd.Flags().Changed("config") {
		configFilePath, _ := cmd.Flags().GetString("config")
		viper.SetConfigFile(configFilePath)
	} else {
		viper.AddConfigPath(filepath.Join(home, ".olsync"))
		viper.SetConfigName(configFileName)
		viper.SetConfigType("json")
	}

	if err := viper.ReadInConfig(); err != nil {
		enoent := errors.Is(err, os.ErrNotExist)
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !enoent && !notFound {
			return fmt.Errorf("config read %q: %w", viper.ConfigFileUsed(), err)
		}
	}

	viper.BindPFlag("email", cmd.Flags().Lookup("email"))
	viper.BindPFlag("server_url", cmd.Flags().Lookup("server"))
	viper.BindPFlag("project_id", cmd.Flags().Lookup("project"))
	viper.BindPFlag("folder_id", cmd.Flags().Lookup("folder"))
	viper.BindPFlag("data_dir", cmd.Flags().Lookup("dir"))

	// OLSYNC_PASSWORD, OLSYNC_EMAIL, ...
	viper.SetEnvPrefix("OLSYNC")
	viper.AutomaticEnv()

	return nil
}

// buildConfig assembles the effective config from the file, flags and
// environment, and validates it.
func buildConfig() (*config.Config, error) {
	cfg := &config.Config{
		Path:      viper.ConfigFileUsed(),
		Email:     viper.GetString("email"),
		Password:  viper.GetString("password"),
		ServerURL: viper.GetString("server_url"),
		ProjectID: viper.GetString("project_id"),
		FolderID:  viper.GetString("folder_id"),
		DataDir:   viper.GetString("data_dir"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
