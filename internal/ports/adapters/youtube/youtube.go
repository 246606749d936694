// Package youtube resolves video metadata and opens stream bodies through
// github.com/kkdai/youtube/v2.
package youtube

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kkdai/youtube/v2"

	"github.com/forPelevin/splyt/internal/types"
)

// client is the subset of *youtube.Client the adapter needs.
type client interface {
	GetVideoContext(ctx context.Context, url string) (*youtube.Video, error)
	GetStreamContext(ctx context.Context, video *youtube.Video, format *youtube.Format) (io.ReadCloser, int64, error)
}

type Adapter struct {
	c client
}

// New returns an adapter using httpClient for every request. A nil client
// falls back to http.DefaultClient.
func New(httpClient *http.Client) *Adapter {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Adapter{c: &youtube.Client{HTTPClient: httpClient}}
}

func (a *Adapter) Resolve(ctx context.Context, videoID string) (types.VideoMetadata, []types.StreamDescriptor, error) {
	v, err := a.c.GetVideoContext(ctx, videoID)
	if err != nil {
		return types.VideoMetadata{}, nil, fmt.Errorf("youtube resolve %s: %w", videoID, err)
	}
	meta := types.VideoMetadata{
		ID:       v.ID,
		Title:    v.Title,
		Author:   v.Author,
		Duration: v.Duration,
		Raw:      v,
	}
	descs := make([]types.StreamDescriptor, 0, len(v.Formats))
	for i := range v.Formats {
		descs = append(descs, describe(&v.Formats[i]))
	}
	return meta, descs, nil
}

func (a *Adapter) Open(ctx context.Context, meta types.VideoMetadata, desc types.StreamDescriptor) (io.ReadCloser, int64, error) {
	v, ok := meta.Raw.(*youtube.Video)
	if !ok || v == nil {
		var err error
		if v, err = a.c.GetVideoContext(ctx, meta.ID); err != nil {
			return nil, 0, fmt.Errorf("youtube resolve %s: %w", meta.ID, err)
		}
	}
	for i := range v.Formats {
		f := &v.Formats[i]
		if f.ItagNo != desc.Itag {
			continue
		}
		rc, size, err := a.c.GetStreamContext(ctx, v, f)
		if err != nil {
			return nil, 0, fmt.Errorf("youtube stream itag %d: %w", desc.Itag, err)
		}
		return rc, size, nil
	}
	return nil, 0, fmt.Errorf("youtube: itag %d not offered for %s", desc.Itag, v.ID)
}

func describe(f *youtube.Format) types.StreamDescriptor {
	major, container := splitMime(f.MimeType)
	d := types.StreamDescriptor{
		Itag:          f.ItagNo,
		Container:     container,
		MimeType:      f.MimeType,
		HasVideo:      f.QualityLabel != "" || (major == "video" && f.Width > 0),
		HasAudio:      f.AudioChannels > 0 || major == "audio",
		QualityLabel:  f.QualityLabel,
		ContentLength: f.ContentLength,
	}
	if d.HasAudio {
		d.AudioQuality = types.AudioQuality(f.AudioQuality)
		if !d.HasVideo {
			d.AudioBitrate = bitrate(f) / 1000
		}
	}
	return d
}

func bitrate(f *youtube.Format) int {
	if f.Bitrate > 0 {
		return f.Bitrate
	}
	return f.AverageBitrate
}

// splitMime turns `video/mp4; codecs="avc1.640028"` into ("video", "mp4").
func splitMime(mimeType string) (major, sub string) {
	base, _, _ := strings.Cut(mimeType, ";")
	major, sub, _ = strings.Cut(strings.ToLower(strings.TrimSpace(base)), "/")
	return major, sub
}
