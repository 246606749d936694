package transcode

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/forPelevin/splyt/internal/diag"
	"github.com/forPelevin/splyt/internal/observer"
	"github.com/forPelevin/splyt/internal/ports"
	"github.com/forPelevin/splyt/internal/types"
)

type fakeExecution struct {
	progress chan types.TranscodeProgress
	err      error
}

func (e *fakeExecution) Progress() <-chan types.TranscodeProgress { return e.progress }
func (e *fakeExecution) Wait() error                              { return e.err }

type fakeTranscoder struct {
	mu       sync.Mutex
	cmds     []types.TranscodeCommand
	updates  []time.Duration
	failFor  map[string]error
	startErr error
}

func (f *fakeTranscoder) Start(_ context.Context, cmd types.TranscodeCommand) (ports.Execution, error) {
	f.mu.Lock()
	f.cmds = append(f.cmds, cmd)
	f.mu.Unlock()
	if f.startErr != nil {
		return nil, f.startErr
	}
	ch := make(chan types.TranscodeProgress, len(f.updates))
	for _, u := range f.updates {
		ch <- types.TranscodeProgress{OutTime: u}
	}
	close(ch)
	return &fakeExecution{progress: ch, err: f.failFor[cmd.Outputs[0].Path]}, nil
}

type osFS struct{}

func (osFS) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}
func (osFS) MkdirAll(path string) error                 { return os.MkdirAll(path, 0o755) }
func (osFS) Create(path string) (io.WriteCloser, error) { return os.Create(path) }
func (osFS) ReadDir(path string) ([]fs.DirEntry, error) { return os.ReadDir(path) }

type recorder struct {
	observer.Nop
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	r.events = append(r.events, s)
	r.mu.Unlock()
}

func (r *recorder) MergeStart(time.Duration)               { r.add("merge-start") }
func (r *recorder) MergeProgress(time.Duration)            { r.add("merge-progress") }
func (r *recorder) Merged()                                { r.add("merged") }
func (r *recorder) ClipStart(name string, _ time.Duration) { r.add("start:" + name) }
func (r *recorder) ClipSaved(name string)                  { r.add("saved:" + name) }
func (r *recorder) ClipFailed(name string, _ error)        { r.add("failed:" + name) }

func optionValue(opts []types.TranscodeOption, name string) (string, bool) {
	for _, o := range opts {
		if o.Name == name {
			return o.Value, true
		}
	}
	return "", false
}

func TestMergeCommand_AudioCodec(t *testing.T) {
	tests := []struct {
		audio string
		want  string
	}{
		{audio: "abc-audio.mp4", want: "copy"},
		{audio: "abc-audio.MP4", want: "copy"},
		{audio: "abc-audio.webm", want: "aac"},
	}
	for _, tt := range tests {
		cmd := MergeCommand("abc-video.mp4", tt.audio, "abc.mp4")
		if len(cmd.Inputs) != 2 || len(cmd.Outputs) != 1 || !cmd.Overwrite {
			t.Fatalf("unexpected command shape %+v", cmd)
		}
		if v, _ := optionValue(cmd.Outputs[0].Options, "c:v"); v != "copy" {
			t.Fatalf("video codec should be copy, got %q", v)
		}
		if v, _ := optionValue(cmd.Outputs[0].Options, "c:a"); v != tt.want {
			t.Fatalf("%s: expected audio codec %q, got %q", tt.audio, tt.want, v)
		}
	}
}

func TestMerge_ReportsProgressAndFinishes(t *testing.T) {
	rec := &recorder{}
	tc := &fakeTranscoder{updates: []time.Duration{time.Second, 2 * time.Second}}
	if err := NewMerger(tc, rec).Merge(context.Background(), "v.mp4", "a.webm", "out.mp4", 213*time.Second); err != nil {
		t.Fatalf("merge: %v", err)
	}
	want := []string{"merge-start", "merge-progress", "merge-progress", "merged"}
	if len(rec.events) != len(want) {
		t.Fatalf("events %v, want %v", rec.events, want)
	}
	for i := range want {
		if rec.events[i] != want[i] {
			t.Fatalf("events %v, want %v", rec.events, want)
		}
	}
}

func TestMerge_FailureIsMergeError(t *testing.T) {
	rec := &recorder{}
	cause := errors.New("exit status 1")
	tc := &fakeTranscoder{failFor: map[string]error{"out.mp4": cause}}
	err := NewMerger(tc, rec).Merge(context.Background(), "v.mp4", "a.mp4", "out.mp4", 0)
	if !errors.Is(err, diag.ErrMerge) || !errors.Is(err, cause) {
		t.Fatalf("expected merge error wrapping cause, got %v", err)
	}
	if rec.events[len(rec.events)-1] != "merged" {
		t.Fatalf("expected merged event even on failure, got %v", rec.events)
	}

	err = NewMerger(&fakeTranscoder{startErr: errors.New("not found")}, nil).Merge(context.Background(), "v", "a", "o", 0)
	if !errors.Is(err, diag.ErrMerge) {
		t.Fatalf("expected merge error on start failure, got %v", err)
	}
}

func writeSource(t *testing.T, dir string) string {
	t.Helper()
	p := filepath.Join(dir, "abc.mp4")
	if err := os.WriteFile(p, []byte("media"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return p
}

func TestCut_SeekAndDuration(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir)
	outDir := filepath.Join(dir, "clips")
	tc := &fakeTranscoder{}

	res, err := NewCutter(tc, osFS{}, nil, 1).Cut(context.Background(), src,
		[]types.ClipSelection{{Start: 83 * time.Second, End: 97 * time.Second}}, outDir)
	if err != nil {
		t.Fatalf("cut: %v", err)
	}
	if len(res) != 1 || res[0].Path != filepath.Join(outDir, "clip1.mp4") || !res[0].OK() {
		t.Fatalf("unexpected results %+v", res)
	}
	cmd := tc.cmds[0]
	if v, _ := optionValue(cmd.Inputs[0].Options, "ss"); v != "83.000" {
		t.Fatalf("expected ss=83.000, got %q", v)
	}
	if v, _ := optionValue(cmd.Outputs[0].Options, "t"); v != "14.000" {
		t.Fatalf("expected t=14.000, got %q", v)
	}
	if cmd.Inputs[0].Path != src {
		t.Fatalf("unexpected input %s", cmd.Inputs[0].Path)
	}
}

func TestCut_NumbersAfterExistingClips(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir)
	for _, name := range []string{"clip1.mp4", "clip3.mp4"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	res, err := NewCutter(&fakeTranscoder{}, osFS{}, nil, 1).Cut(context.Background(), src, []types.ClipSelection{
		{Start: 0, End: time.Second},
		{Start: time.Second, End: 2 * time.Second, Name: "intro"},
		{Start: 2 * time.Second, End: 3 * time.Second},
	}, dir)
	if err != nil {
		t.Fatalf("cut: %v", err)
	}
	want := []string{"clip4.mp4", "intro.mp4", "clip5.mp4"}
	for i, w := range want {
		if filepath.Base(res[i].Path) != w {
			t.Fatalf("result %d: expected %s, got %s", i, w, res[i].Path)
		}
	}
}

func TestCut_PartialFailureKeepsSiblings(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir)
	cause := errors.New("boom")
	tc := &fakeTranscoder{failFor: map[string]error{filepath.Join(dir, "b.mp4"): cause}}
	rec := &recorder{}

	res, err := NewCutter(tc, osFS{}, rec, 2).Cut(context.Background(), src, []types.ClipSelection{
		{Start: 0, End: time.Second, Name: "a"},
		{Start: time.Second, End: 2 * time.Second, Name: "b"},
		{Start: 2 * time.Second, End: 3 * time.Second, Name: "c"},
	}, dir)
	if err != nil {
		t.Fatalf("cut: %v", err)
	}
	if len(res) != 3 || res.Failed() != 1 {
		t.Fatalf("expected 3 entries with 1 failure, got %+v", res)
	}
	byPath := res.ByPath()
	if e := byPath[filepath.Join(dir, "b.mp4")]; !errors.Is(e, diag.ErrCut) || !errors.Is(e, cause) {
		t.Fatalf("expected cut error for b, got %v", e)
	}
	for _, name := range []string{"a.mp4", "c.mp4"} {
		if e := byPath[filepath.Join(dir, name)]; e != nil {
			t.Fatalf("%s should succeed, got %v", name, e)
		}
	}
	if len(tc.cmds) != 3 {
		t.Fatalf("expected 3 transcodes, got %d", len(tc.cmds))
	}

	saw := map[string]bool{}
	for _, e := range rec.events {
		saw[e] = true
	}
	for _, e := range []string{"saved:a.mp4", "failed:b.mp4", "saved:c.mp4"} {
		if !saw[e] {
			t.Fatalf("missing event %s in %v", e, rec.events)
		}
	}
}

func TestCut_InvalidRangeIsRecorded(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir)
	tc := &fakeTranscoder{}
	res, err := NewCutter(tc, osFS{}, nil, 1).Cut(context.Background(), src, []types.ClipSelection{
		{Start: 5 * time.Second, End: time.Second},
		{Start: 0, End: time.Second},
	}, dir)
	if err != nil {
		t.Fatalf("cut: %v", err)
	}
	if !errors.Is(res[0].Err, diag.ErrCut) || res[1].Err != nil {
		t.Fatalf("unexpected results %+v", res)
	}
	if len(tc.cmds) != 1 {
		t.Fatalf("invalid range must not reach the transcoder, got %d commands", len(tc.cmds))
	}
}

func TestCut_MissingSource(t *testing.T) {
	_, err := NewCutter(&fakeTranscoder{}, osFS{}, nil, 1).Cut(context.Background(), filepath.Join(t.TempDir(), "nope.mp4"),
		[]types.ClipSelection{{Start: 0, End: time.Second}}, t.TempDir())
	if !errors.Is(err, diag.ErrCut) {
		t.Fatalf("expected cut error, got %v", err)
	}
}
