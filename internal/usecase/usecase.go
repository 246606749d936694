package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/forPelevin/splyt/internal/diag"
	"github.com/forPelevin/splyt/internal/domain/formats"
	"github.com/forPelevin/splyt/internal/observer"
	"github.com/forPelevin/splyt/internal/ports"
	"github.com/forPelevin/splyt/internal/transfer"
	"github.com/forPelevin/splyt/internal/types"
)

type Downloader interface {
	Download(ctx context.Context, meta types.VideoMetadata, desc types.StreamDescriptor, dest string, onProgress transfer.ProgressFunc) error
	DownloadPair(ctx context.Context, meta types.VideoMetadata, sel types.FormatSelection, videoDest, audioDest string, onProgress transfer.ProgressFunc) error
}

type Merger interface {
	Merge(ctx context.Context, videoPath, audioPath, outPath string, expected time.Duration) error
}

type Cutter interface {
	Cut(ctx context.Context, source string, ranges []types.ClipSelection, outDir string) (types.ClipResults, error)
}

type Deps struct {
	Provider ports.MetadataProvider
	Transfer Downloader
	Merger   Merger
	Cutter   Cutter
	FS       ports.FileSystem
	Observer observer.Observer
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase {
	d.Observer = observer.OrNop(d.Observer)
	return Usecase{d: d}
}

type AcquireInput struct {
	VideoID   string
	OutDir    string
	Overwrite bool
}

type ClipInput struct {
	AcquireInput
	Ranges []types.ClipSelection
	// ClipDir receives the clips; empty means OutDir.
	ClipDir string
}

// OutputPath is the canonical location of an acquired video.
func OutputPath(outDir, videoID string) string {
	return filepath.Join(outDir, videoID+"."+types.TargetContainer)
}

// TempPaths are the intermediate files of a video+audio acquisition. They
// are left in place after the merge.
func TempPaths(outDir, videoID, audioContainer string) (video, audio string) {
	if audioContainer == "" {
		audioContainer = types.TargetContainer
	}
	return filepath.Join(outDir, videoID+"-video."+types.TargetContainer),
		filepath.Join(outDir, videoID+"-audio."+audioContainer)
}

// Acquire makes sure the video is available locally and returns its path.
// An existing file is reused unless in.Overwrite is set.
func (u Usecase) Acquire(ctx context.Context, in AcquireInput) (string, error) {
	if err := u.d.FS.MkdirAll(in.OutDir); err != nil {
		return "", diag.Wrap(diag.DownloadError, fmt.Errorf("create %s: %w", in.OutDir, err))
	}
	out := OutputPath(in.OutDir, in.VideoID)
	if !in.Overwrite {
		exists, err := u.d.FS.Exists(out)
		if err != nil {
			return "", diag.Wrap(diag.DownloadError, fmt.Errorf("stat %s: %w", out, err))
		}
		if exists {
			return out, nil
		}
	}

	meta, descs, err := u.d.Provider.Resolve(ctx, in.VideoID)
	if err != nil {
		return "", diag.Wrap(diag.DownloadError, err)
	}
	sel, ok := formats.Select(descs, types.TargetContainer)
	if !ok {
		return "", diag.Wrap(diag.NoVideoFormat, fmt.Errorf("%d formats offered for %s", len(descs), in.VideoID))
	}
	obs := u.d.Observer
	obs.Info(meta, sel)

	if !sel.IsPair() {
		if err := u.d.Transfer.Download(ctx, meta, sel.Video, out, obs.DownloadProgress); err != nil {
			return "", err
		}
		obs.Downloaded()
		return out, nil
	}

	videoTmp, audioTmp := TempPaths(in.OutDir, in.VideoID, sel.Audio.Container)
	if err := u.d.Transfer.DownloadPair(ctx, meta, sel, videoTmp, audioTmp, obs.DownloadProgress); err != nil {
		return "", err
	}
	obs.Downloaded()

	if err := u.d.Merger.Merge(ctx, videoTmp, audioTmp, out, meta.Duration.Truncate(time.Second)); err != nil {
		return "", err
	}
	return out, nil
}

// Clip acquires the video and then cuts in.Ranges out of it.
func (u Usecase) Clip(ctx context.Context, in ClipInput) (types.ClipResults, error) {
	src, err := u.Acquire(ctx, in.AcquireInput)
	if err != nil {
		return nil, err
	}
	dir := in.ClipDir
	if dir == "" {
		dir = in.OutDir
	}
	return u.d.Cutter.Cut(ctx, src, in.Ranges, dir)
}
