// Package client implements the sync operations between a local
// git-tracked working directory and a remote Overleaf project.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/olsync/olsync/internal/config"
	"github.com/olsync/olsync/internal/overleaf"
	"github.com/olsync/olsync/internal/utils"
)

// All local sync state lives in a dot-directory inside the working
// directory. The revision marker is the only file that survives clean.
const (
	StateDirName = ".overleaf-sync"

	cookieFileName   = "cookies.json"
	archiveFileName  = "project.zip"
	revisionFileName = "revision"
	changedFileName  = "changed-files"
)

// SyncClient performs the four operations (download, upload, sync,
// clean) against one configured Overleaf project.
type SyncClient struct {
	config *config.Config
	sdk    *overleaf.SDK
}

func New(cfg *config.Config) (*SyncClient, error) {
	sdk, err := overleaf.New(cfg.ServerURL)
	if err != nil {
		return nil, err
	}

	return &SyncClient{
		config: cfg,
		sdk:    sdk,
	}, nil
}

// Login authenticates the session and persists the cookie store.
// Sessions are per invocation; nothing is reused across runs.
func (c *SyncClient) Login(ctx context.Context) error {
	slog.Info("logging in", "server", c.config.ServerURL, "email", c.config.Email)

	if err := c.sdk.Auth.Login(ctx, c.config.Email, c.config.Password); err != nil {
		return err
	}

	if err := c.sdk.SaveCookies(c.cookiePath()); err != nil {
		return fmt.Errorf("save cookie store: %w", err)
	}

	return nil
}

// Download fetches the project archive, extracts it over the working
// directory and records the current local revision as the new sync
// base. The marker is overwritten unconditionally.
func (c *SyncClient) Download(ctx context.Context) error {
	slog.Info("downloading project archive", "project", c.config.ProjectID)
	if err := c.sdk.Project.DownloadZip(ctx, c.config.ProjectID, c.archivePath()); err != nil {
		return err
	}

	slog.Info("extracting archive", "dir", c.config.DataDir)
	if err := extractZip(c.archivePath(), c.config.DataDir); err != nil {
		return err
	}

	repo, err := OpenRepo(c.config.DataDir)
	if err != nil {
		return err
	}

	rev, err := repo.Head()
	if err != nil {
		return err
	}

	if err := c.writeRevision(rev); err != nil {
		return fmt.Errorf("record revision marker: %w", err)
	}

	slog.Info("download complete", "revision", rev)
	return nil
}

// Upload posts every changed file to the project. The first failing file
// aborts the run; files already uploaded stay uploaded. The revision
// marker is not touched, only Download moves it.
func (c *SyncClient) Upload(ctx context.Context) error {
	files, err := c.ChangedFiles()
	if err != nil {
		return err
	}

	if err := c.writeChangedList(files); err != nil {
		return fmt.Errorf("write changed-files listing: %w", err)
	}

	if len(files) == 0 {
		slog.Info("working directory in sync, nothing to upload")
		return nil
	}

	for _, file := range files {
		slog.Info("uploading", "file", file)
		err := c.sdk.Project.UploadFile(ctx, &overleaf.UploadParams{
			ProjectID: c.config.ProjectID,
			FolderID:  c.config.FolderID,
			FilePath:  filepath.Join(c.config.DataDir, filepath.FromSlash(file)),
			Name:      path.Base(file),
		})
		if err != nil {
			return err
		}
	}

	slog.Info("upload complete", "files", len(files))
	return nil
}

// Sync is download followed by upload, sharing one login.
func (c *SyncClient) Sync(ctx context.Context) error {
	if err := c.Download(ctx); err != nil {
		return err
	}
	return c.Upload(ctx)
}

// Clean removes the transient artifacts: cookie store, downloaded
// archive and the changed-files listing. It never touches the working
// directory or the revision marker, and is a no-op when the files are
// already gone.
func (c *SyncClient) Clean() error {
	for _, p := range []string{c.cookiePath(), c.archivePath(), c.changedPath()} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("clean %q: %w", p, err)
		}
	}
	return nil
}

// ChangedFiles computes the upload candidates: the full tracked set when
// no revision marker exists (first sync), otherwise the files that
// differ between the marker revision and the working tree.
func (c *SyncClient) ChangedFiles() ([]string, error) {
	repo, err := OpenRepo(c.config.DataDir)
	if err != nil {
		return nil, err
	}

	rev, ok, err := c.readRevision()
	if err != nil {
		return nil, err
	}

	var files []string
	if !ok {
		files, err = repo.TrackedFiles()
	} else {
		files, err = repo.ChangedSince(rev)
	}
	if err != nil {
		return nil, err
	}

	return dropBlank(files), nil
}

// StateDir returns the directory holding the sync state files.
func (c *SyncClient) StateDir() string {
	return filepath.Join(c.config.DataDir, StateDirName)
}

func (c *SyncClient) cookiePath() string {
	return filepath.Join(c.StateDir(), cookieFileName)
}

func (c *SyncClient) archivePath() string {
	return filepath.Join(c.StateDir(), archiveFileName)
}

func (c *SyncClient) revisionPath() string {
	return filepath.Join(c.StateDir(), revisionFileName)
}

func (c *SyncClient) changedPath() string {
	return filepath.Join(c.StateDir(), changedFileName)
}

// readRevision reads the last synced revision marker. A missing marker
// is not an error: it means no download recorded one yet. The marker is
// never validated against the live repository here.
func (c *SyncClient) readRevision() (string, bool, error) {
	data, err := os.ReadFile(c.revisionPath())
	if os.IsNotExist(err) {
		return "", false, nil
	} else if err != nil {
		return "", false, fmt.Errorf("read revision marker: %w", err)
	}

	rev := strings.TrimSpace(string(data))
	if rev == "" {
		return "", false, nil
	}
	return rev, true, nil
}

func (c *SyncClient) writeRevision(rev string) error {
	if err := utils.EnsureDir(c.StateDir()); err != nil {
		return err
	}
	return os.WriteFile(c.revisionPath(), []byte(rev+"\n"), 0o644)
}

func (c *SyncClient) writeChangedList(files []string) error {
	if err := utils.EnsureDir(c.StateDir()); err != nil {
		return err
	}

	var sb strings.Builder
	for _, f := range files {
		sb.WriteString(f)
		sb.WriteByte('\n')
	}
	return os.WriteFile(c.changedPath(), []byte(sb.String()), 0o644)
}

// dropBlank removes empty entries from a path list.
func dropBlank(paths []string) []string {
	out := paths[:0]
	for _, p := range paths {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}
