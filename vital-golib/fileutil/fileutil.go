package fileutil

import (
	"io"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/vitalwatch/vitalwatch/vital-golib/errors"
)

// OS is the filesystem used by the binaries; tests substitute afero.NewMemMapFs().
var OS afero.Fs = afero.NewOsFs()

// EnsureDir creates dir and any missing parents. It is safe to call concurrently and repeatedly:
// a directory that already exists, or that another goroutine creates first, is not an error.
func EnsureDir(fs afero.Fs, dir string) error {
	if err := fs.MkdirAll(dir, 0755); err != nil {
		// lost a race against another creator
		if ok, statErr := afero.DirExists(fs, dir); statErr == nil && ok {
			return nil
		}
		return errors.Wrapf(err, "unable to create %s", dir)
	}
	return nil
}

// WriteAtomic writes path through a temporary file in the same directory and renames it into place once
// write succeeds, so readers never observe a partially written file.
func WriteAtomic(fs afero.Fs, path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := EnsureDir(fs, dir); err != nil {
		return err
	}

	tmp, err := afero.TempFile(fs, dir, filepath.Base(path)+".tmp")
	if err != nil {
		return errors.Wrapf(err, "unable to create temp file for %s", path)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			fs.Remove(tmpName)
		}
	}()

	if err := write(tmp); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "error writing %s", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "error closing %s", tmpName)
	}
	if err := fs.Rename(tmpName, path); err != nil {
		return errors.Wrapf(err, "unable to rename %s -> %s", tmpName, path)
	}
	return nil
}

// Exists reports whether path exists.
func Exists(fs afero.Fs, path string) (bool, error) {
	return afero.Exists(fs, path)
}

// Size returns the size in bytes of path.
func Size(fs afero.Fs, path string) (int64, error) {
	fi, err := fs.Stat(path)
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

// NewReader opens path for reading.
func NewReader(fs afero.Fs, path string) (io.ReadCloser, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	if fi, err := f.Stat(); err == nil && fi.IsDir() {
		f.Close()
		return nil, errors.Errorf("%s is a directory", path)
	}
	return f, nil
}
