package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/filesync/pkg/testutil"
)

func TestRootCmd_SyncsSources(t *testing.T) {
	src := t.TempDir()
	dest := filepath.Join(t.TempDir(), "merged")
	testutil.CreateFile(t, src, "a.txt", "X")
	testutil.CreateFile(t, src, filepath.Join("sub", "b.txt"), "Y")

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--source", src, "--destination", dest})

	require.NoError(t, cmd.Execute())

	assert.Equal(t, "X", testutil.ReadFile(t, filepath.Join(dest, "a.txt")))
	assert.Equal(t, "Y", testutil.ReadFile(t, filepath.Join(dest, "sub", "b.txt")))
}

func TestRootCmd_NoSourcesFails(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--destination", t.TempDir()})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source")
}

func TestRootCmd_NoDestinationFails(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--source", t.TempDir()})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "destination")
}

// chdir moves the process into dir for the duration of the test so
// the command picks up the .filesync.toml written there.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestRootCmd_ConfigFileOverridesDefaults(t *testing.T) {
	work := t.TempDir()
	testutil.CreateFile(t, work, ".filesync.toml", "[database]\nkeep = true\n")
	chdir(t, work)

	src := t.TempDir()
	dest := t.TempDir()
	dbPath := filepath.Join(t.TempDir(), "files.db")
	testutil.CreateFile(t, src, "a.txt", "X")

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--source", src, "--destination", dest, "--db", dbPath})

	require.NoError(t, cmd.Execute())

	assert.True(t, testutil.FileExists(t, dbPath),
		"database.keep from the config file must override the default")
}

func TestRootCmd_FlagOverridesConfigFile(t *testing.T) {
	work := t.TempDir()
	testutil.CreateFile(t, work, ".filesync.toml", "[database]\nkeep = true\n")
	chdir(t, work)

	src := t.TempDir()
	dest := t.TempDir()
	dbPath := filepath.Join(t.TempDir(), "files.db")
	testutil.CreateFile(t, src, "a.txt", "X")

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--source", src, "--destination", dest, "--db", dbPath, "--keep-db=false"})

	require.NoError(t, cmd.Execute())

	_, statErr := os.Stat(dbPath)
	assert.True(t, os.IsNotExist(statErr),
		"an explicit --keep-db=false must beat the config file")
}

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
}
