package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/forPelevin/splyt/internal/logging"
	"github.com/forPelevin/splyt/internal/observer"
	"github.com/forPelevin/splyt/internal/ports"
	"github.com/forPelevin/splyt/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/splyt/internal/ports/adapters/localfs"
	"github.com/forPelevin/splyt/internal/ports/adapters/youtube"
	"github.com/forPelevin/splyt/internal/transcode"
	"github.com/forPelevin/splyt/internal/transfer"
	"github.com/forPelevin/splyt/internal/types"
	"github.com/forPelevin/splyt/internal/usecase"
)

type Config struct {
	// OutDir receives acquired videos and, unless a clip directory is
	// given, their clips.
	OutDir          string
	FFmpegPath      string
	ClipConcurrency int

	// HTTPClient is used for metadata and stream requests. Nil means
	// http.DefaultClient.
	HTTPClient *http.Client
	Logger     *slog.Logger
	// Observer receives pipeline events next to the logger.
	Observer observer.Observer
	// ProgressLogInterval throttles progress log lines; 0 means 5s.
	ProgressLogInterval time.Duration
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.OutDir) == "" {
		return errors.New("output dir is empty")
	}
	if c.ClipConcurrency < 0 {
		return fmt.Errorf("clip concurrency must be >= 0")
	}
	return nil
}

type Pipeline struct {
	cfg    Config
	logger *slog.Logger
	uc     usecase.Usecase
}

func New(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	obs := observer.NewMulti(observer.NewLog(logger, cfg.ProgressLogInterval), cfg.Observer)

	// adapters
	yt := youtube.New(cfg.HTTPClient)
	fsys := localfs.New()
	tc := ffmpeg.New(cfg.FFmpegPath)

	uc := usecase.New(usecase.Deps{
		Provider: yt,
		Transfer: transfer.New(yt, fsys),
		Merger:   transcode.NewMerger(tc, obs),
		Cutter:   transcode.NewCutter(tc, fsys, obs, cfg.ClipConcurrency),
		FS:       fsys,
		Observer: obs,
	})
	return &Pipeline{cfg: cfg, logger: logger, uc: uc}, nil
}

// Download acquires the video behind link (a URL or a bare video ID) and
// returns the local path.
func (p *Pipeline) Download(ctx context.Context, link string, overwrite bool) (string, error) {
	id, err := VideoID(link)
	if err != nil {
		return "", err
	}
	p.logger.Info("acquire", slog.String("video_id", id), slog.String("out_dir", p.cfg.OutDir), slog.Bool("overwrite", overwrite))
	path, err := p.uc.Acquire(ctx, usecase.AcquireInput{VideoID: id, OutDir: p.cfg.OutDir, Overwrite: overwrite})
	if err != nil {
		return "", err
	}
	p.logger.Info("video ready", slog.String("path", path))
	return path, nil
}

// Clip acquires the video behind link and cuts ranges out of it into
// clipDir, or the output dir when clipDir is empty.
func (p *Pipeline) Clip(ctx context.Context, link string, ranges []types.ClipSelection, overwrite bool, clipDir string) (types.ClipResults, error) {
	id, err := VideoID(link)
	if err != nil {
		return nil, err
	}
	p.logger.Info("clip", slog.String("video_id", id), slog.Int("ranges", len(ranges)))
	res, err := p.uc.Clip(ctx, usecase.ClipInput{
		AcquireInput: usecase.AcquireInput{VideoID: id, OutDir: p.cfg.OutDir, Overwrite: overwrite},
		Ranges:       ranges,
		ClipDir:      clipDir,
	})
	if err != nil {
		return nil, err
	}
	p.logger.Info("clips done", slog.Int("total", len(res)), slog.Int("failed", res.Failed()))
	return res, nil
}

var bareID = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)

// VideoID accepts a full link or a bare 11 character identifier.
func VideoID(link string) (string, error) {
	link = strings.TrimSpace(link)
	if bareID.MatchString(link) {
		return link, nil
	}
	return youtube.ExtractVideoID(link)
}

// OutputPath is where Download places the video behind link.
func OutputPath(link, outDir string) (string, error) {
	id, err := VideoID(link)
	if err != nil {
		return "", err
	}
	return usecase.OutputPath(outDir, id), nil
}

// ensure adapters implement ports
var _ ports.MetadataProvider = (*youtube.Adapter)(nil)
var _ ports.StreamSource = (*youtube.Adapter)(nil)
var _ ports.FileSystem = (*localfs.Adapter)(nil)
var _ ports.Transcoder = (*ffmpeg.Adapter)(nil)
