// Package preflight checks the host before a run: the output directory must
// be writable and the transcoder must be on PATH.
package preflight

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/forPelevin/splyt/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	return []Result{
		CheckOutputDir("Output directory", cfg.Paths.OutputDir),
		CheckBinary("FFmpeg", cfg.FFmpeg.Binary),
	}
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := access(path); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckOutputDir accepts a missing directory when its closest existing
// ancestor is writable, since the pipeline creates it on demand.
func CheckOutputDir(name, path string) Result {
	if path == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	if _, err := os.Stat(path); err == nil || !errors.Is(err, fs.ErrNotExist) {
		return CheckDirectoryAccess(name, path)
	}
	parent := path
	for {
		next := filepath.Dir(parent)
		if next == parent {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: no existing ancestor)", path)}
		}
		parent = next
		if _, err := os.Stat(parent); err == nil {
			break
		}
	}
	res := CheckDirectoryAccess(name, parent)
	if res.Passed {
		res.Detail = fmt.Sprintf("%s (will be created under %s)", path, parent)
	}
	return res
}

// CheckBinary verifies that command resolves to an executable.
func CheckBinary(name, command string) Result {
	if command == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	resolved, err := exec.LookPath(command)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", command, err)}
	}
	return Result{Name: name, Passed: true, Detail: resolved}
}
