package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/forPelevin/splyt/internal/config"
	"github.com/forPelevin/splyt/internal/diag"
	"github.com/forPelevin/splyt/internal/domain/clips"
	"github.com/forPelevin/splyt/internal/logging"
	"github.com/forPelevin/splyt/internal/metrics"
	"github.com/forPelevin/splyt/internal/observer"
	"github.com/forPelevin/splyt/internal/pipeline"
	"github.com/forPelevin/splyt/internal/ports/adapters/youtube"
	"github.com/forPelevin/splyt/internal/preflight"
)

const lockFileName = ".splyt.lock"

// session is the per-invocation state shared by the commands.
type session struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Recorder
	stdout  io.Writer
	stderr  io.Writer
}

func newSession(cmd *cobra.Command) (*session, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, _, _, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		if !logging.ValidLevel(lvl) {
			return nil, fmt.Errorf("invalid --log-level %q", lvl)
		}
		cfg.Logging.Level = lvl
	}
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		if cfg.Paths.OutputDir, err = config.ExpandPath(out); err != nil {
			return nil, fmt.Errorf("--out: %w", err)
		}
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logger, _ = logging.WithRunID(logger)

	return &session{
		cfg:     cfg,
		logger:  logger.With(slog.String("command", cmd.Name())),
		metrics: metrics.New(),
		stdout:  cmd.OutOrStdout(),
		stderr:  cmd.ErrOrStderr(),
	}, nil
}

func (s *session) pipeline() (*pipeline.Pipeline, error) {
	return pipeline.New(pipeline.Config{
		OutDir:          s.cfg.Paths.OutputDir,
		FFmpegPath:      s.cfg.FFmpeg.Binary,
		ClipConcurrency: s.cfg.Clip.Concurrency,
		Logger:          s.logger,
		Observer:        observer.NewMulti(s.metrics, newTerminalObserver(s.stderr)),
	})
}

// finish records the run outcome and flushes metrics when configured.
func (s *session) finish(command string, err error) {
	s.metrics.Run(command, err)
	if s.cfg.Metrics.Textfile == "" {
		return
	}
	if werr := s.metrics.WriteTextfile(s.cfg.Metrics.Textfile); werr != nil {
		s.logger.Warn("write metrics textfile", slog.String("path", s.cfg.Metrics.Textfile), slog.Any("error", werr))
	}
}

func runDownload(cmd *cobra.Command, link string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	overwrite, _ := cmd.Flags().GetBool("overwrite")

	err = s.download(cmd.Context(), link, overwrite)
	s.finish("download", err)
	return err
}

func (s *session) download(ctx context.Context, link string, overwrite bool) error {
	if _, err := youtube.ValidateURL(link); err != nil {
		return err
	}
	unlock, err := lockDirs(s.cfg.Paths.OutputDir)
	if err != nil {
		return err
	}
	defer unlock()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := s.pipeline()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	path, err := p.Download(ctx, link, overwrite)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.stdout, "Saved %s\n", displayPath(path))
	return nil
}

func runClip(cmd *cobra.Command, link, rangesArg string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	overwrite, _ := cmd.Flags().GetBool("overwrite")
	clipDir, _ := cmd.Flags().GetString("clip-dir")

	err = s.clip(cmd.Context(), link, rangesArg, clipDir, overwrite)
	s.finish("clip", err)
	return err
}

func (s *session) clip(ctx context.Context, link, rangesArg, clipDir string, overwrite bool) error {
	ranges, err := clips.ParseRanges(rangesArg)
	if err != nil {
		return err
	}
	if _, err := youtube.ValidateURL(link); err != nil {
		return err
	}
	if clipDir != "" {
		if clipDir, err = config.ExpandPath(clipDir); err != nil {
			return fmt.Errorf("--clip-dir: %w", err)
		}
	}
	unlock, err := lockDirs(s.cfg.Paths.OutputDir, clipDir)
	if err != nil {
		return err
	}
	defer unlock()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := s.pipeline()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	res, err := p.Clip(ctx, link, ranges, overwrite, clipDir)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.stdout, renderClipResults(res))
	if n := res.Failed(); n > 0 {
		return diag.Wrap(diag.CutError, fmt.Errorf("%d of %d clips failed", n, len(res)))
	}
	return nil
}

func runConfigInit(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	force, _ := cmd.Flags().GetBool("force")

	var err error
	if path == "" {
		path, err = config.DefaultConfigPath()
	} else {
		path, err = config.ExpandPath(path)
	}
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := config.CreateSample(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample config to %s\n", displayPath(path))
	return nil
}

func runDoctor(cmd *cobra.Command) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	results := preflight.RunAll(s.cfg)
	fmt.Fprintln(s.stdout, renderPreflight(results))
	if failed := preflight.Failed(results); len(failed) > 0 {
		return fmt.Errorf("%d of %d checks failed", len(failed), len(results))
	}
	return nil
}

// lockDirs takes an exclusive lock on every distinct non-empty dir, creating
// them as needed. A directory locked by another process fails immediately.
func lockDirs(dirs ...string) (func(), error) {
	var held []*flock.Flock
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			_ = held[i].Unlock()
		}
	}
	seen := map[string]bool{}
	for _, dir := range dirs {
		if dir == "" || seen[dir] {
			continue
		}
		seen[dir] = true
		if err := os.MkdirAll(dir, 0o755); err != nil {
			release()
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
		lock := flock.New(filepath.Join(dir, lockFileName))
		ok, err := lock.TryLock()
		if err != nil {
			release()
			return nil, fmt.Errorf("lock %s: %w", dir, err)
		}
		if !ok {
			release()
			return nil, fmt.Errorf("%s is in use by another splyt run", dir)
		}
		held = append(held, lock)
	}
	return release, nil
}

// displayPath shortens p for humans: relative to the working directory or
// with the home directory folded to ~, whichever is shorter.
func displayPath(p string) string {
	best := p
	if wd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(wd, p); err == nil && len(rel) < len(best) {
			best = rel
		}
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" && strings.HasPrefix(p, home+string(filepath.Separator)) {
		if tilde := "~" + p[len(home):]; len(tilde) < len(best) {
			best = tilde
		}
	}
	return best
}
