package transcode

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/forPelevin/splyt/internal/diag"
	"github.com/forPelevin/splyt/internal/observer"
	"github.com/forPelevin/splyt/internal/ports"
	"github.com/forPelevin/splyt/internal/types"
)

type Merger struct {
	tc  ports.Transcoder
	obs observer.Observer
}

func NewMerger(tc ports.Transcoder, obs observer.Observer) *Merger {
	return &Merger{tc: tc, obs: observer.OrNop(obs)}
}

// Merge muxes videoPath and audioPath into outPath, replacing it if present.
// Video is always stream-copied; audio is copied only when it already sits
// in an mp4 container and is re-encoded to AAC otherwise.
func (m *Merger) Merge(ctx context.Context, videoPath, audioPath, outPath string, expected time.Duration) error {
	m.obs.MergeStart(expected)
	err := run(ctx, m.tc, MergeCommand(videoPath, audioPath, outPath), m.obs.MergeProgress)
	m.obs.Merged()
	if err != nil {
		return diag.Wrap(diag.MergeError, err)
	}
	return nil
}

func MergeCommand(videoPath, audioPath, outPath string) types.TranscodeCommand {
	audioCodec := "aac"
	if strings.EqualFold(filepath.Ext(audioPath), "."+types.TargetContainer) {
		audioCodec = "copy"
	}
	return types.TranscodeCommand{
		Inputs: []types.TranscodeInput{{Path: videoPath}, {Path: audioPath}},
		Outputs: []types.TranscodeOutput{{
			Path:    outPath,
			Options: []types.TranscodeOption{opt("c:v", "copy"), opt("c:a", audioCodec)},
		}},
		Overwrite: true,
	}
}
