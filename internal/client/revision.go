package client

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repo answers the two version-control questions the sync flow has:
// what is the current revision, and which tracked files under the
// working directory changed since a given revision.
type Repo struct {
	repo   *git.Repository
	root   string // worktree root
	prefix string // working dir relative to root, slash-terminated, "" when equal
}

// OpenRepo opens the git repository enclosing workDir. workDir must be
// an absolute path.
func OpenRepo(workDir string) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(workDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository at %q: %w", workDir, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}

	root := wt.Filesystem.Root()
	rel, err := filepath.Rel(root, workDir)
	if err != nil {
		return nil, fmt.Errorf("working dir %q outside repository %q: %w", workDir, root, err)
	}

	prefix := ""
	if rel != "." {
		prefix = filepath.ToSlash(rel) + "/"
	}

	return &Repo{
		repo:   repo,
		root:   root,
		prefix: prefix,
	}, nil
}

// Head returns the current revision identifier.
func (r *Repo) Head() (string, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve head: %w", err)
	}
	return ref.Hash().String(), nil
}

// TrackedFiles returns every tracked file under the working directory,
// relative to it, in index order.
func (r *Repo) TrackedFiles() ([]string, error) {
	idx, err := r.repo.Storer.Index()
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}

	var files []string
	for _, entry := range idx.Entries {
		if rel, ok := r.relToWorkDir(entry.Name); ok {
			files = append(files, rel)
		}
	}
	return files, nil
}

// ChangedSince returns the tracked files under the working directory
// whose content differs between rev and the current working tree.
// Files deleted from the working tree are not reported: deletions are
// not upload candidates.
func (r *Repo) ChangedSince(rev string) ([]string, error) {
	commit, err := r.repo.CommitObject(plumbing.NewHash(rev))
	if err != nil {
		return nil, fmt.Errorf("resolve revision %q: %w", rev, err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("revision %q tree: %w", rev, err)
	}

	idx, err := r.repo.Storer.Index()
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}

	var changed []string
	for _, entry := range idx.Entries {
		rel, ok := r.relToWorkDir(entry.Name)
		if !ok {
			continue
		}

		data, err := os.ReadFile(filepath.Join(r.root, filepath.FromSlash(entry.Name)))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		} else if err != nil {
			return nil, fmt.Errorf("read %q: %w", entry.Name, err)
		}

		base, err := tree.File(entry.Name)
		if errors.Is(err, object.ErrFileNotFound) {
			changed = append(changed, rel)
			continue
		} else if err != nil {
			return nil, fmt.Errorf("lookup %q in revision %q: %w", entry.Name, rev, err)
		}

		if base.Hash != plumbing.ComputeHash(plumbing.BlobObject, data) {
			changed = append(changed, rel)
		}
	}
	return changed, nil
}

func (r *Repo) relToWorkDir(name string) (string, bool) {
	if r.prefix == "" {
		return name, true
	}
	if strings.HasPrefix(name, r.prefix) {
		return strings.TrimPrefix(name, r.prefix), true
	}
	return "", false
}
