package types

import "time"

// TargetContainer is the container of every file the pipeline writes.
const TargetContainer = "mp4"

type AudioQuality string

const (
	AudioQualityLow    AudioQuality = "AUDIO_QUALITY_LOW"
	AudioQualityMedium AudioQuality = "AUDIO_QUALITY_MEDIUM"
	AudioQualityHigh   AudioQuality = "AUDIO_QUALITY_HIGH"
)

// StreamDescriptor describes one independently downloadable stream.
// Zero values stand for "unknown": an empty QualityLabel, an AudioBitrate
// of 0 and an empty AudioQuality.
type StreamDescriptor struct {
	Itag          int          `json:"itag"`
	Container     string       `json:"container"`
	MimeType      string       `json:"mime_type"`
	HasVideo      bool         `json:"has_video"`
	HasAudio      bool         `json:"has_audio"`
	QualityLabel  string       `json:"quality_label,omitempty"`
	AudioBitrate  int          `json:"audio_bitrate,omitempty"` // kbps
	AudioQuality  AudioQuality `json:"audio_quality,omitempty"`
	ContentLength int64        `json:"content_length,omitempty"`
}

type VideoMetadata struct {
	ID       string
	Title    string
	Author   string
	Duration time.Duration

	// Raw is the provider payload handed back to the stream source.
	Raw any
}

// FormatSelection is either a single stream or a video+audio pair.
type FormatSelection struct {
	Video StreamDescriptor
	Audio *StreamDescriptor
}

func (s FormatSelection) IsPair() bool { return s.Audio != nil }

func (s FormatSelection) Descriptors() []StreamDescriptor {
	if s.Audio == nil {
		return []StreamDescriptor{s.Video}
	}
	return []StreamDescriptor{s.Video, *s.Audio}
}

type ClipSelection struct {
	Start time.Duration
	End   time.Duration
	Name  string
}

func (c ClipSelection) Duration() time.Duration { return c.End - c.Start }

type ClipOutcome struct {
	Path string
	Err  error
}

func (o ClipOutcome) OK() bool { return o.Err == nil }

// ClipResults keeps outcomes in the order the ranges were requested.
type ClipResults []ClipOutcome

func (r ClipResults) ByPath() map[string]error {
	out := make(map[string]error, len(r))
	for _, o := range r {
		out[o.Path] = o.Err
	}
	return out
}

func (r ClipResults) Failed() int {
	n := 0
	for _, o := range r {
		if o.Err != nil {
			n++
		}
	}
	return n
}

type TranscodeOption struct {
	Name  string
	Value string // empty for flag-only options
}

type TranscodeInput struct {
	Path    string
	Options []TranscodeOption
}

type TranscodeOutput struct {
	Path    string
	Options []TranscodeOption
}

type TranscodeCommand struct {
	Inputs    []TranscodeInput
	Outputs   []TranscodeOutput
	Overwrite bool
}

type TranscodeProgress struct {
	OutTime time.Duration
}
