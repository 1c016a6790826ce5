package vcs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadHead_NotARepository(t *testing.T) {
	h, err := ReadHead(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, h.Commit)
	assert.Empty(t, h.Short())
}

func TestReadHead_Commit(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte("[package]\nname = \"live\"\n"), 0o644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("Cargo.toml")
	require.NoError(t, err)
	hash, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "dev", Email: "dev@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	sub := filepath.Join(dir, "src")
	require.NoError(t, os.Mkdir(sub, 0o755))

	h, err := ReadHead(sub)
	require.NoError(t, err)
	assert.Equal(t, hash.String(), h.Commit)
	assert.Equal(t, "master", h.Branch)
	assert.False(t, h.Dirty)
	assert.Equal(t, hash.String()[:12], h.Short())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte("changed"), 0o644))
	h, err = ReadHead(dir)
	require.NoError(t, err)
	assert.True(t, h.Dirty)
	assert.Equal(t, hash.String()[:12]+"+dirty", h.Short())
}
