package filehandler

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"github.com/philipp01105/fanlog/handler"
)

// Rotation decides when a file rolls over and renames its backups.
// The zero value is disabled.
type Rotation struct {
	// Path is the primary log file
	Path string
	// MaxBytes is the size threshold (0 = disabled)
	MaxBytes int64
	// BackupCount is the number of numbered backups kept (0 = disabled)
	BackupCount int
}

// Validate checks that MaxBytes and BackupCount are both set or both zero.
func (r Rotation) Validate() error {
	if r.MaxBytes < 0 || r.BackupCount < 0 {
		return fmt.Errorf("%w: negative rotation limits", handler.ErrInvalidConfig)
	}
	if (r.MaxBytes == 0) != (r.BackupCount == 0) {
		return fmt.Errorf("%w: max bytes and backup count must both be set or both be zero", handler.ErrInvalidConfig)
	}
	return nil
}

// Enabled reports whether rotation is configured.
func (r Rotation) Enabled() bool {
	return r.MaxBytes > 0 && r.BackupCount > 0
}

// ShouldRotate reports whether writing n more bytes to a file that
// currently holds size bytes (written or buffered) crosses MaxBytes. An
// empty file never rotates, so a single oversized record is still written.
func (r Rotation) ShouldRotate(size, n int64) bool {
	return r.Enabled() && size > 0 && size+n > r.MaxBytes
}

// BackupName returns the name of the i-th backup.
func (r Rotation) BackupName(i int) string {
	return r.Path + "." + strconv.Itoa(i)
}

// Rotate shifts path.i to path.i+1 from the highest index down, moves the
// primary file to path.1 and removes any backup above BackupCount. The
// primary file must be closed by the caller.
func (r Rotation) Rotate() error {
	if err := removeIfExists(r.BackupName(r.BackupCount)); err != nil {
		return err
	}
	for i := r.BackupCount - 1; i >= 1; i-- {
		src := r.BackupName(i)
		if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := os.Rename(src, r.BackupName(i+1)); err != nil {
			return err
		}
	}
	if err := os.Rename(r.Path, r.BackupName(1)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return r.prune()
}

// prune removes numbered backups beyond BackupCount left behind by an
// earlier configuration.
func (r Rotation) prune() error {
	matches, err := filepath.Glob(r.Path + ".*")
	if err != nil {
		return err
	}
	var errs error
	prefix := filepath.Base(r.Path) + "."
	for _, m := range matches {
		n, err := strconv.Atoi(strings.TrimPrefix(filepath.Base(m), prefix))
		if err != nil || n <= r.BackupCount {
			continue
		}
		errs = multierr.Append(errs, removeIfExists(m))
	}
	return errs
}

func removeIfExists(name string) error {
	if err := os.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
