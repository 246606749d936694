// Package transcode drives the external transcoder for the two media steps
// of the pipeline: muxing a downloaded video+audio pair into one file, and
// cutting clips out of an acquired file.
package transcode

import (
	"context"
	"time"

	"github.com/forPelevin/splyt/internal/ports"
	"github.com/forPelevin/splyt/internal/types"
)

// run starts cmd, forwards every progress update and waits for the result.
func run(ctx context.Context, tc ports.Transcoder, cmd types.TranscodeCommand, onProgress func(time.Duration)) error {
	ex, err := tc.Start(ctx, cmd)
	if err != nil {
		return err
	}
	for p := range ex.Progress() {
		onProgress(p.OutTime)
	}
	return ex.Wait()
}

func opt(name, value string) types.TranscodeOption {
	return types.TranscodeOption{Name: name, Value: value}
}
