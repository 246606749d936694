// Package transfer downloads selected streams to local files.
//
// A single-stream selection is written straight to its destination. A
// video+audio pair is fetched concurrently and the two progress feeds are
// folded into one logical feed by Aggregator. Failures surface as
// diag.DownloadError; a pair always lets both sides settle before returning.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/forPelevin/splyt/internal/diag"
	"github.com/forPelevin/splyt/internal/ports"
	"github.com/forPelevin/splyt/internal/types"
)

// ProgressFunc receives cumulative bytes written and the expected total
// (0 when unknown).
type ProgressFunc func(transferred, total int64)

type Engine struct {
	src ports.StreamSource
	fs  ports.FileSystem
}

func New(src ports.StreamSource, fsys ports.FileSystem) *Engine {
	return &Engine{src: src, fs: fsys}
}

func (e *Engine) Download(ctx context.Context, meta types.VideoMetadata, desc types.StreamDescriptor, dest string, onProgress ProgressFunc) error {
	if err := e.fetch(ctx, meta, desc, dest, onProgress); err != nil {
		return diag.Wrap(diag.DownloadError, err)
	}
	return nil
}

// DownloadPair fetches sel.Video and sel.Audio concurrently.
func (e *Engine) DownloadPair(ctx context.Context, meta types.VideoMetadata, sel types.FormatSelection, videoDest, audioDest string, onProgress ProgressFunc) error {
	if !sel.IsPair() {
		return diag.Wrap(diag.DownloadError, errors.New("selection has no audio stream"))
	}
	agg := NewAggregator(onProgress)

	var wg sync.WaitGroup
	var videoErr, audioErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		videoErr = e.fetch(ctx, meta, sel.Video, videoDest, agg.Side(0))
	}()
	go func() {
		defer wg.Done()
		audioErr = e.fetch(ctx, meta, *sel.Audio, audioDest, agg.Side(1))
	}()
	wg.Wait()

	if videoErr != nil || audioErr != nil {
		return diag.Wrap(diag.DownloadError, errors.Join(videoErr, audioErr))
	}
	return nil
}

func (e *Engine) fetch(ctx context.Context, meta types.VideoMetadata, desc types.StreamDescriptor, dest string, onProgress ProgressFunc) error {
	rc, total, err := e.src.Open(ctx, meta, desc)
	if err != nil {
		return fmt.Errorf("open stream itag %d: %w", desc.Itag, err)
	}
	defer rc.Close()
	if total <= 0 {
		total = desc.ContentLength
	}

	w, err := e.fs.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	pw := &progressWriter{w: w, total: total, onProgress: onProgress}
	_, copyErr := io.Copy(pw, &ctxReader{ctx: ctx, r: rc})
	closeErr := w.Close()
	if copyErr != nil {
		return fmt.Errorf("stream itag %d to %s: %w", desc.Itag, dest, copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", dest, closeErr)
	}
	return nil
}

type progressWriter struct {
	w          io.Writer
	written    int64
	total      int64
	onProgress ProgressFunc
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.written += int64(n)
	if p.onProgress != nil && n > 0 {
		p.onProgress(p.written, p.total)
	}
	return n, err
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(b []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(b)
}
