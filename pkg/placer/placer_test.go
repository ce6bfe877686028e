package placer_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/filesync/pkg/errors"
	"github.com/arthur-debert/filesync/pkg/fingerprint"
	"github.com/arthur-debert/filesync/pkg/placer"
	"github.com/arthur-debert/filesync/pkg/testutil"
	"github.com/arthur-debert/filesync/pkg/types"
)

// makeRecord creates a source file and its collected record
func makeRecord(t *testing.T, root, relPath, content string) types.FileRecord {
	t.Helper()
	testutil.CreateFile(t, root, relPath, content)
	return types.FileRecord{Root: root, RelPath: relPath, Hash: fingerprint.Sum([]byte(content))}
}

func TestPlace_FreshCopy(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	rec := makeRecord(t, src, "a.txt", "X")

	p := placer.New(dest, placer.Options{})
	placement, err := p.Place(rec)
	require.NoError(t, err)

	assert.Equal(t, placer.OutcomeCopied, placement.Outcome)
	assert.Equal(t, filepath.Join(dest, "a.txt"), placement.Path)
	assert.Equal(t, "X", testutil.ReadFile(t, placement.Path))
}

func TestPlace_CreatesSubdirectories(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	rec := makeRecord(t, src, filepath.Join("sub", "dir", "d.txt"), "deep")

	p := placer.New(dest, placer.Options{})
	placement, err := p.Place(rec)
	require.NoError(t, err)

	assert.Equal(t, placer.OutcomeCopied, placement.Outcome)
	assert.Equal(t, "deep", testutil.ReadFile(t, filepath.Join(dest, "sub", "dir", "d.txt")))
}

func TestPlace_IdempotentOnEqualContent(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	rec := makeRecord(t, src, "a.txt", "X")
	existing := testutil.CreateFile(t, dest, "a.txt", "X")

	info, err := os.Stat(existing)
	require.NoError(t, err)

	p := placer.New(dest, placer.Options{})
	placement, err := p.Place(rec)
	require.NoError(t, err)

	assert.Equal(t, placer.OutcomeSatisfied, placement.Outcome)
	assert.Equal(t, existing, placement.Path)

	after, err := os.Stat(existing)
	require.NoError(t, err)
	assert.Equal(t, info.ModTime(), after.ModTime(), "satisfied placement must not rewrite")

	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no suffixed variant may appear")
}

func TestPlace_CollisionRenames(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	rec := makeRecord(t, src, "a.txt", "X")
	testutil.CreateFile(t, dest, "a.txt", "Different")

	p := placer.New(dest, placer.Options{})
	placement, err := p.Place(rec)
	require.NoError(t, err)

	assert.Equal(t, placer.OutcomeRenamed, placement.Outcome)
	assert.Equal(t, filepath.Join(dest, "a_1.txt"), placement.Path)
	assert.Equal(t, "X", testutil.ReadFile(t, placement.Path))
	assert.Equal(t, "Different", testutil.ReadFile(t, filepath.Join(dest, "a.txt")),
		"existing destination content must never be overwritten")
}

func TestPlace_CollisionSatisfiedByEarlierVariant(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	rec := makeRecord(t, src, "a.txt", "X")
	testutil.CreateFile(t, dest, "a.txt", "Different")
	testutil.CreateFile(t, dest, "a_1.txt", "AlsoDifferent")
	testutil.CreateFile(t, dest, "a_2.txt", "X")

	p := placer.New(dest, placer.Options{})
	placement, err := p.Place(rec)
	require.NoError(t, err)

	assert.Equal(t, placer.OutcomeSatisfied, placement.Outcome)
	assert.Equal(t, filepath.Join(dest, "a_2.txt"), placement.Path)
}

func TestPlace_CollisionSkipsOccupiedVariants(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	rec := makeRecord(t, src, "a.txt", "X")
	testutil.CreateFile(t, dest, "a.txt", "one")
	testutil.CreateFile(t, dest, "a_1.txt", "two")

	p := placer.New(dest, placer.Options{})
	placement, err := p.Place(rec)
	require.NoError(t, err)

	assert.Equal(t, placer.OutcomeRenamed, placement.Outcome)
	assert.Equal(t, filepath.Join(dest, "a_2.txt"), placement.Path)
	assert.Equal(t, "X", testutil.ReadFile(t, placement.Path))
}

func TestPlace_CollisionExhausted(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	rec := makeRecord(t, src, "a.txt", "X")
	testutil.CreateFile(t, dest, "a.txt", "zero")
	testutil.CreateFile(t, dest, "a_1.txt", "one")
	testutil.CreateFile(t, dest, "a_2.txt", "two")

	p := placer.New(dest, placer.Options{MaxAttempts: 2})
	_, err := p.Place(rec)

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCollisionExhausted))
}

func TestPlace_SuffixKeepsExtension(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	rec := makeRecord(t, src, filepath.Join("pics", "img.jpeg"), "new bytes")
	testutil.CreateFile(t, dest, filepath.Join("pics", "img.jpeg"), "old bytes")

	p := placer.New(dest, placer.Options{})
	placement, err := p.Place(rec)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dest, "pics", "img_1.jpeg"), placement.Path)
}

func TestPlace_DotfileCollisionStaysHidden(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	rec := makeRecord(t, src, ".bashrc", "export EDITOR=vim")
	testutil.CreateFile(t, dest, ".bashrc", "export EDITOR=emacs")

	p := placer.New(dest, placer.Options{})
	placement, err := p.Place(rec)
	require.NoError(t, err)

	// The leading dot is part of the name, not an extension: the
	// variant must stay a hidden file.
	assert.Equal(t, placer.OutcomeRenamed, placement.Outcome)
	assert.Equal(t, filepath.Join(dest, ".bashrc_1"), placement.Path)
	assert.Equal(t, "export EDITOR=vim", testutil.ReadFile(t, placement.Path))
	assert.False(t, testutil.FileExists(t, filepath.Join(dest, "_1.bashrc")))
}

func TestPlace_HiddenFileWithExtensionKeepsIt(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	rec := makeRecord(t, src, ".config.toml", "a = 1")
	testutil.CreateFile(t, dest, ".config.toml", "a = 2")

	p := placer.New(dest, placer.Options{})
	placement, err := p.Place(rec)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dest, ".config_1.toml"), placement.Path)
}

func TestPlace_PreservesPermissions(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	rec := makeRecord(t, src, "loose.txt", "world writable")
	// 0666 would be clipped to 0644 by a typical umask
	require.NoError(t, os.Chmod(rec.SourcePath(), 0666))

	p := placer.New(dest, placer.Options{})
	placement, err := p.Place(rec)
	require.NoError(t, err)

	info, err := os.Stat(placement.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0666), info.Mode().Perm())
}

func TestPlace_PreservesModTime(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	rec := makeRecord(t, src, "old.txt", "aged")

	mtime := time.Date(2020, 3, 14, 9, 26, 53, 0, time.UTC)
	require.NoError(t, os.Chtimes(rec.SourcePath(), mtime, mtime))

	p := placer.New(dest, placer.Options{})
	placement, err := p.Place(rec)
	require.NoError(t, err)

	info, err := os.Stat(placement.Path)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(mtime))
}

func TestPlace_MissingSource(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	rec := types.FileRecord{Root: src, RelPath: "gone.txt", Hash: fingerprint.Sum([]byte("gone"))}

	p := placer.New(dest, placer.Options{})
	_, err := p.Place(rec)

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileCopy))
}
