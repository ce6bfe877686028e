// Package placer materializes representative records in the
// destination tree without ever overwriting or deleting existing
// content. Name collisions against different content are resolved by
// numeric-suffixed variants, bounded by a configurable attempt cap.
package placer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/filesync/pkg/errors"
	"github.com/arthur-debert/filesync/pkg/fingerprint"
	"github.com/arthur-debert/filesync/pkg/logging"
	"github.com/arthur-debert/filesync/pkg/types"
)

// DefaultMaxAttempts bounds the collision-resolution loop. The cap is
// a deliberate policy to guarantee termination, not an incidental
// limit.
const DefaultMaxAttempts = 999

// Outcome describes how a record was placed
type Outcome string

const (
	// OutcomeCopied means the file was copied to its original relative path
	OutcomeCopied Outcome = "copied"
	// OutcomeSatisfied means equivalent content already existed at the
	// chosen path and nothing was written
	OutcomeSatisfied Outcome = "satisfied"
	// OutcomeRenamed means the file was copied under a numeric-suffixed
	// variant of its relative path
	OutcomeRenamed Outcome = "renamed"
)

// Placement is the result of placing one record
type Placement struct {
	Outcome Outcome
	// Path is the destination path holding the record's content
	Path string
}

// Options tunes placement behavior
type Options struct {
	// MaxAttempts caps the number of suffixed candidate paths tried on
	// a collision. Zero picks DefaultMaxAttempts.
	MaxAttempts int
}

// Placer writes representative records into a destination tree
type Placer struct {
	dest        string
	maxAttempts int
	logger      zerolog.Logger
}

// New creates a placer writing under dest
func New(dest string, opts Options) *Placer {
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Placer{
		dest:        dest,
		maxAttempts: maxAttempts,
		logger:      logging.GetLogger("placer"),
	}
}

// Place ensures a file with the record's content exists under the
// destination, creating parent directories as needed:
//
//  1. Nothing at the target path: copy the source bytes there.
//  2. Target exists with equal digest: already satisfied, no write.
//  3. Target exists with different content: try <stem>_1<ext>,
//     <stem>_2<ext>, ... — an empty slot takes the copy, an equal
//     digest satisfies, anything else moves on. The first match is
//     authoritative; earlier candidates are never re-scanned.
//
// Exhausting the attempt cap yields a COLLISION_EXHAUSTED error.
// All failures are per-record; the destination is never mutated
// except by writing new files.
func (p *Placer) Place(rec types.FileRecord) (Placement, error) {
	target := filepath.Join(p.dest, rec.RelPath)

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return Placement{}, errors.Wrapf(err, errors.ErrDirCreate,
			"cannot create directory for %s", rec.RelPath)
	}

	if _, err := os.Lstat(target); err != nil {
		if !os.IsNotExist(err) {
			return Placement{}, errors.Wrapf(err, errors.ErrFileCopy,
				"cannot stat %s", target)
		}
		if err := copyFile(rec.SourcePath(), target); err != nil {
			return Placement{}, err
		}
		p.logger.Debug().Str("path", target).Msg("file copied")
		return Placement{Outcome: OutcomeCopied, Path: target}, nil
	}

	if p.contentMatches(target, rec.Hash) {
		p.logger.Debug().Str("path", target).Msg("already satisfied")
		return Placement{Outcome: OutcomeSatisfied, Path: target}, nil
	}

	return p.resolveCollision(rec, target)
}

// resolveCollision walks the bounded candidate sequence for a target
// whose existing content differs from the record's.
func (p *Placer) resolveCollision(rec types.FileRecord, target string) (Placement, error) {
	stem, ext := splitSuffix(target)

	for i := 1; i <= p.maxAttempts; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)

		if _, err := os.Lstat(candidate); err != nil {
			if !os.IsNotExist(err) {
				return Placement{}, errors.Wrapf(err, errors.ErrFileCopy,
					"cannot stat %s", candidate)
			}
			if err := copyFile(rec.SourcePath(), candidate); err != nil {
				return Placement{}, err
			}
			p.logger.Info().
				Str("path", target).
				Str("renamed", candidate).
				Msg("name collision resolved")
			return Placement{Outcome: OutcomeRenamed, Path: candidate}, nil
		}

		if p.contentMatches(candidate, rec.Hash) {
			p.logger.Debug().Str("path", candidate).Msg("already satisfied by earlier collision copy")
			return Placement{Outcome: OutcomeSatisfied, Path: candidate}, nil
		}
	}

	return Placement{}, errors.Newf(errors.ErrCollisionExhausted,
		"no free name for %s after %d attempts", rec.RelPath, p.maxAttempts).
		WithDetail("relPath", rec.RelPath)
}

// splitSuffix splits a path into the stem the numeric suffix attaches
// to and the extension that follows it. Leading dots of the basename
// are part of the stem, never an extension, so a hidden file's
// variants stay hidden (.bashrc becomes .bashrc_1, not _1.bashrc).
func splitSuffix(path string) (stem, ext string) {
	base := filepath.Base(path)
	trimmed := strings.TrimLeft(base, ".")
	if dot := strings.LastIndexByte(trimmed, '.'); dot > 0 {
		ext = trimmed[dot:]
	}
	return strings.TrimSuffix(path, ext), ext
}

// contentMatches reports whether the file at path digests to want. An
// unreadable file counts as a mismatch: the placer then moves to the
// next candidate rather than risking an overwrite.
func (p *Placer) contentMatches(path string, want fingerprint.Digest) bool {
	got, err := fingerprint.File(path)
	if err != nil {
		p.logger.Warn().Str("path", path).Err(err).Msg("cannot digest existing destination file")
		return false
	}
	return got == want
}

// copyFile copies src to dst, preserving the source's permission bits
// and modification time where the filesystem allows. dst must not
// exist: O_EXCL keeps the no-overwrite guarantee even if the earlier
// existence check raced.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "cannot open source %s", src)
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "cannot stat source %s", src)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "cannot create %s", dst)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return errors.Wrapf(err, errors.ErrFileCopy, "cannot copy %s to %s", src, dst)
	}
	if err := out.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "cannot finish %s", dst)
	}

	// OpenFile's mode is subject to the umask; restore the exact
	// source permission bits.
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "cannot set permissions on %s", dst)
	}

	// Best effort: some filesystems cannot represent the source times
	if err := os.Chtimes(dst, time.Now(), info.ModTime()); err != nil {
		logger := logging.GetLogger("placer")
		logger.Debug().Str("path", dst).Err(err).Msg("cannot preserve mtime")
	}

	return nil
}
