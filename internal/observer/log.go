package observer

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/forPelevin/splyt/internal/types"
)

const defaultProgressInterval = 5 * time.Second

// Log writes pipeline events to a slog logger. Progress events are sampled
// so long transfers do not flood the log.
type Log struct {
	logger   *slog.Logger
	interval time.Duration

	download rate.Sometimes
	merge    rate.Sometimes

	mu    sync.Mutex
	clips map[string]*rate.Sometimes
}

func NewLog(logger *slog.Logger, interval time.Duration) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = defaultProgressInterval
	}
	return &Log{
		logger:   logger,
		interval: interval,
		download: rate.Sometimes{First: 1, Interval: interval},
		merge:    rate.Sometimes{First: 1, Interval: interval},
		clips:    make(map[string]*rate.Sometimes),
	}
}

func (l *Log) Info(meta types.VideoMetadata, sel types.FormatSelection) {
	attrs := []any{
		slog.String("video_id", meta.ID),
		slog.String("title", meta.Title),
		slog.Duration("duration", meta.Duration),
		slog.Int("video_itag", sel.Video.Itag),
		slog.String("quality", sel.Video.QualityLabel),
	}
	if sel.IsPair() {
		attrs = append(attrs,
			slog.Int("audio_itag", sel.Audio.Itag),
			slog.String("audio_container", sel.Audio.Container),
		)
	}
	l.logger.Info("formats selected", attrs...)
}

func (l *Log) DownloadProgress(transferred, total int64) {
	l.download.Do(func() {
		l.logger.Debug("download progress",
			slog.Int64("transferred", transferred),
			slog.Int64("total", total),
			slog.Float64("percent", percent(float64(transferred), float64(total))),
		)
	})
}

func (l *Log) Downloaded() {
	l.logger.Info("download finished")
}

func (l *Log) MergeStart(expected time.Duration) {
	l.logger.Info("merging audio and video streams", slog.Duration("expected", expected))
}

func (l *Log) MergeProgress(encoded time.Duration) {
	l.merge.Do(func() {
		l.logger.Debug("merge progress", slog.Duration("encoded", encoded))
	})
}

func (l *Log) Merged() {
	l.logger.Info("merge finished")
}

func (l *Log) ClipStart(name string, total time.Duration) {
	l.logger.Info("cutting clip", slog.String("clip", name), slog.Duration("duration", total))
}

func (l *Log) ClipProgress(name string, encoded time.Duration) {
	l.sampler(name).Do(func() {
		l.logger.Debug("clip progress", slog.String("clip", name), slog.Duration("encoded", encoded))
	})
}

func (l *Log) ClipSaved(name string) {
	l.logger.Info("clip saved", slog.String("clip", name))
}

func (l *Log) ClipFailed(name string, err error) {
	l.logger.Error("clip failed", slog.String("clip", name), slog.Any("error", err))
}

func (l *Log) sampler(name string) *rate.Sometimes {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.clips[name]
	if !ok {
		s = &rate.Sometimes{First: 1, Interval: l.interval}
		l.clips[name] = s
	}
	return s
}

func percent(done, total float64) float64 {
	if total <= 0 {
		return 0
	}
	p := done / total * 100
	if p > 100 {
		return 100
	}
	return p
}
