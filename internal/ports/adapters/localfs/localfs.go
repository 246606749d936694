package localfs

import (
	"errors"
	"io"
	"io/fs"
	"os"
)

// Adapter is the operating system filesystem.
type Adapter struct{}

func New() *Adapter { return &Adapter{} }

func (a *Adapter) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (a *Adapter) MkdirAll(path string) error {
	return os.MkdirAll(path, 0o755)
}

func (a *Adapter) Create(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

func (a *Adapter) ReadDir(path string) ([]fs.DirEntry, error) {
	return os.ReadDir(path)
}
