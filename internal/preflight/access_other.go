//go:build !unix

package preflight

import (
	"os"
	"path/filepath"
)

// access probes writability by creating a temporary file.
func access(path string) error {
	f, err := os.CreateTemp(path, ".splyt-preflight-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(filepath.Clean(name))
}
