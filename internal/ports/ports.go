package ports

import (
	"context"
	"io"
	"io/fs"

	"github.com/forPelevin/splyt/internal/types"
)

type MetadataProvider interface {
	Resolve(ctx context.Context, videoID string) (types.VideoMetadata, []types.StreamDescriptor, error)
}

// StreamSource opens the byte stream of a descriptor returned by Resolve.
// total is the expected size in bytes, or 0 when unknown.
type StreamSource interface {
	Open(ctx context.Context, meta types.VideoMetadata, desc types.StreamDescriptor) (rc io.ReadCloser, total int64, err error)
}

type FileSystem interface {
	Exists(path string) (bool, error)
	MkdirAll(path string) error
	Create(path string) (io.WriteCloser, error)
	ReadDir(path string) ([]fs.DirEntry, error)
}

type Transcoder interface {
	Start(ctx context.Context, cmd types.TranscodeCommand) (Execution, error)
}

// Execution is a running transcode. Progress is closed before Wait returns;
// Wait blocks until the process reaches a terminal state.
type Execution interface {
	Progress() <-chan types.TranscodeProgress
	Wait() error
}
