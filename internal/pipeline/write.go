package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docweave/internal/foundation/errors"
)

const outputMode = 0o644

// writeAtomic writes content to a temporary file next to dest and renames it
// into place. The temporary file is removed on every failure path, including
// cancellation before the rename.
func writeAtomic(ctx context.Context, dest, content string) (err error) {
	fail := func(msg string, cause error) error {
		return errors.FileSystemError(msg).WithCause(cause).WithContext("path", dest).Build()
	}

	if err := ctx.Err(); err != nil {
		return fail("output write canceled", err)
	}
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fail("failed to create output directory", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return fail("failed to create temporary output file", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.WriteString(content); err != nil {
		return fail("failed to write temporary output file", err)
	}
	if err = tmp.Sync(); err != nil {
		return fail("failed to sync temporary output file", err)
	}
	if err = tmp.Close(); err != nil {
		return fail("failed to close temporary output file", err)
	}
	if err = os.Chmod(tmpPath, outputMode); err != nil {
		return fail("failed to set output file mode", err)
	}
	if err = ctx.Err(); err != nil {
		return fail("output write canceled", err)
	}
	if err = os.Rename(tmpPath, dest); err != nil {
		return fail("failed to move output file into place", err)
	}
	return nil
}
