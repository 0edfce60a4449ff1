package utils

import (
	"io/fs"
	"os"
	"path/filepath"
)

// AtomicWrite replaces name with data so that readers observe either the old
// or the new content
func AtomicWrite(name string, data []byte, perm fs.FileMode) (err error) {
	dir := filepath.Dir(name)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	fd, err := os.CreateTemp(dir, "."+filepath.Base(name)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			fd.Close()
			os.Remove(fd.Name())
		}
	}()

	if _, err := fd.Write(data); err != nil {
		return err
	}
	// os.CreateTemp always creates file with 0600
	if perm != 0600 {
		if err := fd.Chmod(perm); err != nil {
			return err
		}
	}
	if err := fd.Sync(); err != nil {
		return err
	}
	if err := fd.Close(); err != nil {
		return err
	}
	return os.Rename(fd.Name(), name)
}
