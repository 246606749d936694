package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/forPelevin/splyt/internal/ports"
	"github.com/forPelevin/splyt/internal/types"
)

// stderrTail bounds how much ffmpeg diagnostic output is kept for errors.
const stderrTail = 4 << 10

type Adapter struct {
	ffmpeg string
}

func New(ffmpegPath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Adapter{ffmpeg: ffmpegPath}
}

func (a *Adapter) Binary() string { return a.ffmpeg }

func (a *Adapter) Start(ctx context.Context, cmd types.TranscodeCommand) (ports.Execution, error) {
	if len(cmd.Inputs) == 0 || len(cmd.Outputs) == 0 {
		return nil, fmt.Errorf("ffmpeg: command needs at least one input and one output")
	}
	c := exec.CommandContext(ctx, a.ffmpeg, BuildArgs(cmd)...)
	stdout, err := c.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdout: %w", err)
	}
	tail := &tailBuffer{max: stderrTail}
	c.Stderr = tail
	if err := c.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	ex := &execution{
		progress: make(chan types.TranscodeProgress, 16),
		done:     make(chan struct{}),
	}
	go func() {
		parseProgress(stdout, func(p types.TranscodeProgress) {
			select {
			case ex.progress <- p:
			default:
				// Slow consumer; a later update supersedes this one.
			}
		})
		close(ex.progress)

		err := c.Wait()
		if err != nil {
			if cerr := ctx.Err(); cerr != nil {
				err = fmt.Errorf("ffmpeg: %w: %w", cerr, err)
			} else {
				err = fmt.Errorf("ffmpeg: %w\n%s", err, strings.TrimSpace(tail.String()))
			}
		}
		ex.err = err
		close(ex.done)
	}()
	return ex, nil
}

type execution struct {
	progress chan types.TranscodeProgress
	done     chan struct{}
	err      error
}

func (e *execution) Progress() <-chan types.TranscodeProgress { return e.progress }

func (e *execution) Wait() error {
	<-e.done
	return e.err
}

// BuildArgs renders cmd as an ffmpeg argument list. Progress is reported as
// key=value blocks on stdout.
func BuildArgs(cmd types.TranscodeCommand) []string {
	args := []string{"-hide_banner", "-nostats", "-loglevel", "error", "-progress", "pipe:1"}
	if cmd.Overwrite {
		args = append(args, "-y")
	} else {
		args = append(args, "-n")
	}
	for _, in := range cmd.Inputs {
		args = appendOptions(args, in.Options)
		args = append(args, "-i", in.Path)
	}
	for _, out := range cmd.Outputs {
		args = appendOptions(args, out.Options)
		args = append(args, out.Path)
	}
	return args
}

func appendOptions(args []string, opts []types.TranscodeOption) []string {
	for _, o := range opts {
		args = append(args, "-"+strings.TrimPrefix(o.Name, "-"))
		if o.Value != "" {
			args = append(args, o.Value)
		}
	}
	return args
}

// parseProgress reads -progress output. Each block ends with a progress=
// line; the block's out_time_us is emitted when it is known.
func parseProgress(r io.Reader, emit func(types.TranscodeProgress)) {
	sc := bufio.NewScanner(r)
	var (
		cur   time.Duration
		known bool
	)
	for sc.Scan() {
		key, val, ok := strings.Cut(strings.TrimSpace(sc.Text()), "=")
		if !ok {
			continue
		}
		switch key {
		case "out_time_us":
			us, err := strconv.ParseInt(val, 10, 64)
			if err != nil || us < 0 {
				continue
			}
			cur = time.Duration(us) * time.Microsecond
			known = true
		case "progress":
			if known {
				emit(types.TranscodeProgress{OutTime: cur})
			}
		}
	}
	// Drain so ffmpeg never blocks on a full pipe after a scan error.
	_, _ = io.Copy(io.Discard, r)
}

type tailBuffer struct {
	max int
	buf []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string { return string(t.buf) }
