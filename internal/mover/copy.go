package mover

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
)

// copyFile copies src to dst without ever replacing an existing dst.
// Permission bits and modification time are carried over when the
// filesystem allows it. On failure the partially written dst is removed.
func copyFile(fs afero.Fs, src, dst string) (err error) {
	info, err := fs.Stat(src)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("cannot copy non-regular file %s", src)
	}

	in, err := fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			fs.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err = out.Sync(); err != nil {
		out.Close()
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}

	// Metadata is best effort; the content is already safe at dst
	_ = fs.Chmod(dst, info.Mode().Perm())
	_ = fs.Chtimes(dst, info.ModTime(), info.ModTime())
	return nil
}
