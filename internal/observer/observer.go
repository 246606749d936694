// Package observer carries pipeline events to interested parties.
//
// Every stage reports through an Observer unconditionally; implementations
// embed Nop and override only the events they care about.
package observer

import (
	"time"

	"github.com/forPelevin/splyt/internal/types"
)

type Observer interface {
	Info(meta types.VideoMetadata, sel types.FormatSelection)
	DownloadProgress(transferred, total int64)
	Downloaded()

	MergeStart(expected time.Duration)
	MergeProgress(encoded time.Duration)
	Merged()

	ClipStart(name string, total time.Duration)
	ClipProgress(name string, encoded time.Duration)
	ClipSaved(name string)
	ClipFailed(name string, err error)
}

// Nop ignores every event.
type Nop struct{}

func (Nop) Info(types.VideoMetadata, types.FormatSelection) {}
func (Nop) DownloadProgress(int64, int64)                   {}
func (Nop) Downloaded()                                     {}
func (Nop) MergeStart(time.Duration)                        {}
func (Nop) MergeProgress(time.Duration)                     {}
func (Nop) Merged()                                         {}
func (Nop) ClipStart(string, time.Duration)                 {}
func (Nop) ClipProgress(string, time.Duration)              {}
func (Nop) ClipSaved(string)                                {}
func (Nop) ClipFailed(string, error)                        {}

// OrNop returns o, or Nop when o is nil.
func OrNop(o Observer) Observer {
	if o == nil {
		return Nop{}
	}
	return o
}

// Multi fans every event out to each observer in order.
type Multi []Observer

func NewMulti(obs ...Observer) Multi {
	out := make(Multi, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

func (m Multi) Info(meta types.VideoMetadata, sel types.FormatSelection) {
	for _, o := range m {
		o.Info(meta, sel)
	}
}

func (m Multi) DownloadProgress(transferred, total int64) {
	for _, o := range m {
		o.DownloadProgress(transferred, total)
	}
}

func (m Multi) Downloaded() {
	for _, o := range m {
		o.Downloaded()
	}
}

func (m Multi) MergeStart(expected time.Duration) {
	for _, o := range m {
		o.MergeStart(expected)
	}
}

func (m Multi) MergeProgress(encoded time.Duration) {
	for _, o := range m {
		o.MergeProgress(encoded)
	}
}

func (m Multi) Merged() {
	for _, o := range m {
		o.Merged()
	}
}

func (m Multi) ClipStart(name string, total time.Duration) {
	for _, o := range m {
		o.ClipStart(name, total)
	}
}

func (m Multi) ClipProgress(name string, encoded time.Duration) {
	for _, o := range m {
		o.ClipProgress(name, encoded)
	}
}

func (m Multi) ClipSaved(name string) {
	for _, o := range m {
		o.ClipSaved(name)
	}
}

func (m Multi) ClipFailed(name string, err error) {
	for _, o := range m {
		o.ClipFailed(name, err)
	}
}
