// Package vcs reads revision information from the mod project's git repository.
package vcs

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
)

// Head describes the checked-out revision of a repository.
type Head struct {
	Commit string
	Branch string
	Dirty  bool
}

// Short returns the abbreviated commit hash, with a "+dirty" suffix when the
// worktree has uncommitted changes.
func (h Head) Short() string {
	if h.Commit == "" {
		return ""
	}
	s := h.Commit
	if len(s) > 12 {
		s = s[:12]
	}
	if h.Dirty {
		s += "+dirty"
	}
	return s
}

// ReadHead opens the repository containing dir (walking up to find .git) and
// returns its HEAD. A directory outside any repository yields a zero Head and
// no error.
func ReadHead(dir string) (Head, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return Head{}, nil
	}
	if err != nil {
		return Head{}, fmt.Errorf("open repository: %w", err)
	}

	ref, err := repo.Head()
	if err != nil {
		// Fresh repository without commits.
		return Head{}, nil //nolint:nilerr // an unborn HEAD is not an error for stamping
	}

	h := Head{Commit: ref.Hash().String()}
	if ref.Name().IsBranch() {
		h.Branch = ref.Name().Short()
	}

	wt, err := repo.Worktree()
	if err != nil {
		return h, nil //nolint:nilerr // bare repositories have no worktree to inspect
	}
	status, err := wt.Status()
	if err != nil {
		return h, fmt.Errorf("worktree status: %w", err)
	}
	h.Dirty = !status.IsClean()
	return h, nil
}
