package transcode

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/forPelevin/splyt/internal/diag"
	"github.com/forPelevin/splyt/internal/domain/clips"
	"github.com/forPelevin/splyt/internal/observer"
	"github.com/forPelevin/splyt/internal/ports"
	"github.com/forPelevin/splyt/internal/types"
)

type Cutter struct {
	tc          ports.Transcoder
	fs          ports.FileSystem
	obs         observer.Observer
	concurrency int
}

// NewCutter returns a cutter running at most concurrency clips at once.
// Values below 1 mean sequential.
func NewCutter(tc ports.Transcoder, fsys ports.FileSystem, obs observer.Observer, concurrency int) *Cutter {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Cutter{tc: tc, fs: fsys, obs: observer.OrNop(obs), concurrency: concurrency}
}

type clipJob struct {
	sel  types.ClipSelection
	name string
	path string
}

// Cut writes one file per range into outDir. The returned results follow
// the order of ranges; a failed clip is recorded in its entry and does not
// stop the others. The error is non-nil only when no clip could be
// attempted at all.
func (c *Cutter) Cut(ctx context.Context, source string, ranges []types.ClipSelection, outDir string) (types.ClipResults, error) {
	ok, err := c.fs.Exists(source)
	if err != nil {
		return nil, diag.Wrap(diag.CutError, fmt.Errorf("stat source %s: %w", source, err))
	}
	if !ok {
		return nil, diag.Wrap(diag.CutError, fmt.Errorf("source %s does not exist", source))
	}
	if err := c.fs.MkdirAll(outDir); err != nil {
		return nil, diag.Wrap(diag.CutError, fmt.Errorf("create %s: %w", outDir, err))
	}
	entries, err := c.fs.ReadDir(outDir)
	if err != nil {
		return nil, diag.Wrap(diag.CutError, fmt.Errorf("list %s: %w", outDir, err))
	}
	existing := make([]string, 0, len(entries))
	for _, e := range entries {
		existing = append(existing, e.Name())
	}
	namer := clips.NewNamer(existing, types.TargetContainer)

	jobs := make([]clipJob, len(ranges))
	for i, r := range ranges {
		name := namer.Name(r.Name)
		jobs[i] = clipJob{sel: r, name: name, path: filepath.Join(outDir, name)}
	}

	results := make(types.ClipResults, len(jobs))
	sem := make(chan struct{}, c.concurrency)
	var wg sync.WaitGroup
	for i, j := range jobs {
		results[i].Path = j.path
		if err := clips.Validate(j.sel); err != nil {
			err = diag.Wrap(diag.CutError, err)
			c.obs.ClipFailed(j.name, err)
			results[i].Err = err
			continue
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(i int, j clipJob) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i].Err = c.cutOne(ctx, source, j)
		}(i, j)
	}
	wg.Wait()
	return results, nil
}

func (c *Cutter) cutOne(ctx context.Context, source string, j clipJob) error {
	c.obs.ClipStart(j.name, j.sel.Duration())
	err := run(ctx, c.tc, CutCommand(source, j.sel, j.path), func(encoded time.Duration) {
		c.obs.ClipProgress(j.name, encoded)
	})
	if err != nil {
		err = diag.Wrap(diag.CutError, fmt.Errorf("clip %s: %w", j.name, err))
		c.obs.ClipFailed(j.name, err)
		return err
	}
	c.obs.ClipSaved(j.name)
	return nil
}

// CutCommand seeks the input to sel.Start and limits the output to the
// clip's duration.
func CutCommand(source string, sel types.ClipSelection, outPath string) types.TranscodeCommand {
	return types.TranscodeCommand{
		Inputs: []types.TranscodeInput{{
			Path:    source,
			Options: []types.TranscodeOption{opt("ss", clips.FormatSeconds(sel.Start))},
		}},
		Outputs: []types.TranscodeOutput{{
			Path:    outPath,
			Options: []types.TranscodeOption{opt("t", clips.FormatSeconds(sel.Duration()))},
		}},
		Overwrite: true,
	}
}
