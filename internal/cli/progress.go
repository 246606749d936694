package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/forPelevin/splyt/internal/observer"
	"github.com/forPelevin/splyt/internal/types"
)

// newTerminalObserver returns progress bars drawn on w, or nil when w is not
// a terminal.
func newTerminalObserver(w io.Writer) observer.Observer {
	f, ok := w.(*os.File)
	if !ok || !(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return nil
	}
	return &terminalObserver{w: w, clips: map[string]*clipState{}}
}

type clipState struct {
	total   time.Duration
	encoded time.Duration
	done    bool
}

// terminalObserver draws one bar per phase. Concurrent clips share a single
// bar measured in encoded milliseconds.
type terminalObserver struct {
	observer.Nop

	mu    sync.Mutex
	w     io.Writer
	bar   *progressbar.ProgressBar
	clips map[string]*clipState
}

// newBar starts a bar; a non-positive max draws a spinner until it is known.
func (t *terminalObserver) newBar(max int64, desc string, bytes bool) *progressbar.ProgressBar {
	if max <= 0 {
		max = -1
	}
	return progressbar.NewOptions64(max,
		progressbar.OptionSetWriter(t.w),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionShowBytes(bytes),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(t.w) }),
	)
}

func (t *terminalObserver) finish() {
	if t.bar != nil {
		_ = t.bar.Finish()
		t.bar = nil
	}
}

func (t *terminalObserver) Info(meta types.VideoMetadata, _ types.FormatSelection) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "%s by %s\n", meta.Title, meta.Author)
}

func (t *terminalObserver) DownloadProgress(transferred, total int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.bar == nil {
		t.bar = t.newBar(total, "Downloading", true)
	}
	if total > 0 {
		t.bar.ChangeMax64(total)
	}
	_ = t.bar.Set64(transferred)
}

func (t *terminalObserver) Downloaded() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.finish()
}

func (t *terminalObserver) MergeStart(expected time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.finish()
	t.bar = t.newBar(expected.Milliseconds(), "Merging", false)
}

func (t *terminalObserver) MergeProgress(encoded time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.bar != nil {
		_ = t.bar.Set64(encoded.Milliseconds())
	}
}

func (t *terminalObserver) Merged() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.finish()
}

func (t *terminalObserver) ClipStart(name string, total time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clips[name] = &clipState{total: total}
	sum, _ := t.clipTotals()
	if t.bar == nil {
		t.bar = t.newBar(sum.Milliseconds(), "Clipping", false)
	} else {
		t.bar.ChangeMax64(sum.Milliseconds())
	}
	t.bar.Describe("Clipping " + name)
}

func (t *terminalObserver) ClipProgress(name string, encoded time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if c, ok := t.clips[name]; ok && !c.done {
		c.encoded = min(encoded, c.total)
		t.updateClips()
	}
}

func (t *terminalObserver) ClipSaved(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clipDone(name)
}

func (t *terminalObserver) ClipFailed(name string, _ error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clipDone(name)
}

func (t *terminalObserver) clipDone(name string) {
	c, ok := t.clips[name]
	if !ok {
		return
	}
	c.done = true
	c.encoded = c.total
	t.updateClips()
	for _, c := range t.clips {
		if !c.done {
			return
		}
	}
	t.finish()
	t.clips = map[string]*clipState{}
}

func (t *terminalObserver) updateClips() {
	if t.bar == nil {
		return
	}
	_, encoded := t.clipTotals()
	_ = t.bar.Set64(encoded.Milliseconds())
}

func (t *terminalObserver) clipTotals() (total, encoded time.Duration) {
	for _, c := range t.clips {
		total += c.total
		encoded += c.encoded
	}
	return total, encoded
}
