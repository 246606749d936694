package formats

import (
	"testing"

	"github.com/forPelevin/splyt/internal/types"
)

func video(itag int, container, label string, withAudio bool) types.StreamDescriptor {
	return types.StreamDescriptor{Itag: itag, Container: container, HasVideo: true, HasAudio: withAudio, QualityLabel: label}
}

func audio(itag int, container string, kbps int, q types.AudioQuality) types.StreamDescriptor {
	return types.StreamDescriptor{Itag: itag, Container: container, HasAudio: true, AudioBitrate: kbps, AudioQuality: q}
}

func TestSelect_Empty(t *testing.T) {
	if _, ok := Select(nil, "mp4"); ok {
		t.Fatalf("expected no selection for empty catalog")
	}
}

func TestSelect_NoVideoInContainer(t *testing.T) {
	descs := []types.StreamDescriptor{
		video(248, "webm", "1080p", false),
		audio(140, "mp4", 128, ""),
	}
	if _, ok := Select(descs, "mp4"); ok {
		t.Fatalf("expected no selection without mp4 video")
	}
}

func TestSelect_CombinedBeatsSplitAtHigherQuality(t *testing.T) {
	descs := []types.StreamDescriptor{
		video(22, "mp4", "1080p", true),
		video(136, "mp4", "720p", false),
		audio(140, "mp4", 128, types.AudioQualityMedium),
	}
	sel, ok := Select(descs, "mp4")
	if !ok {
		t.Fatalf("expected a selection")
	}
	if sel.IsPair() {
		t.Fatalf("expected single combined stream, got pair")
	}
	if sel.Video.Itag != 22 {
		t.Fatalf("expected itag 22, got %d", sel.Video.Itag)
	}
}

func TestSelect_CombinedPreferredOnEqualQuality(t *testing.T) {
	for _, order := range [][]int{{0, 1}, {1, 0}} {
		all := []types.StreamDescriptor{
			video(137, "mp4", "1080p", false),
			video(37, "mp4", "1080p", true),
		}
		descs := []types.StreamDescriptor{all[order[0]], all[order[1]], audio(140, "mp4", 128, "")}
		sel, ok := Select(descs, "mp4")
		if !ok || sel.IsPair() || sel.Video.Itag != 37 {
			t.Fatalf("order %v: expected combined itag 37 alone, got %+v ok=%v", order, sel, ok)
		}
	}
}

func TestSelect_SplitStreamsPairHighestVideo(t *testing.T) {
	descs := []types.StreamDescriptor{
		video(134, "mp4", "360p", false),
		video(137, "mp4", "1080p", false),
		video(136, "mp4", "720p60", false),
		audio(140, "mp4", 128, types.AudioQualityMedium),
	}
	sel, ok := Select(descs, "mp4")
	if !ok || !sel.IsPair() {
		t.Fatalf("expected a pair, got %+v ok=%v", sel, ok)
	}
	got, _ := ParseQuality(sel.Video.QualityLabel)
	for _, d := range descs {
		if !d.HasVideo {
			continue
		}
		if q, ok := ParseQuality(d.QualityLabel); ok && q > got {
			t.Fatalf("selected %dp but %dp is available", got, q)
		}
	}
	if !sel.Video.HasVideo || !sel.Audio.HasAudio {
		t.Fatalf("pair must be [video, audio], got %+v", sel.Descriptors())
	}
}

func TestSelect_ParsableQualityWins(t *testing.T) {
	descs := []types.StreamDescriptor{
		video(1, "mp4", "", false),
		video(2, "mp4", "480p", false),
		video(3, "mp4", "garbage", false),
	}
	sel, _ := Select(descs, "mp4")
	if sel.Video.Itag != 2 {
		t.Fatalf("expected parsable 480p to win, got itag %d", sel.Video.Itag)
	}
}

func TestSelect_NeitherParsableKeepsRunningBest(t *testing.T) {
	descs := []types.StreamDescriptor{
		video(1, "mp4", "", false),
		video(2, "mp4", "hd", false),
	}
	sel, ok := Select(descs, "mp4")
	if !ok {
		t.Fatalf("expected a selection")
	}
	if sel.Video.Itag != 1 {
		t.Fatalf("expected first candidate to be kept, got itag %d", sel.Video.Itag)
	}
}

func TestSelect_NoAudioFallsBackToSilentVideo(t *testing.T) {
	sel, ok := Select([]types.StreamDescriptor{video(137, "mp4", "1080p", false)}, "mp4")
	if !ok {
		t.Fatalf("expected a selection")
	}
	if sel.IsPair() {
		t.Fatalf("expected video-only selection")
	}
	if len(sel.Descriptors()) != 1 {
		t.Fatalf("expected one descriptor, got %d", len(sel.Descriptors()))
	}
}

func TestSelect_AudioPass(t *testing.T) {
	v := video(137, "mp4", "1080p", false)
	combined := types.StreamDescriptor{Itag: 18, Container: "mp4", HasVideo: true, HasAudio: true, QualityLabel: "360p", AudioBitrate: 96}

	tests := []struct {
		name     string
		audios   []types.StreamDescriptor
		wantItag int
	}{
		{
			name:     "audio-only beats combined",
			audios:   []types.StreamDescriptor{combined, audio(249, "webm", 50, "")},
			wantItag: 249,
		},
		{
			name:     "higher bitrate wins",
			audios:   []types.StreamDescriptor{audio(140, "mp4", 128, ""), audio(251, "webm", 160, "")},
			wantItag: 251,
		},
		{
			name:     "bitrate beats no bitrate",
			audios:   []types.StreamDescriptor{audio(140, "mp4", 128, ""), audio(999, "mp4", 0, types.AudioQualityHigh)},
			wantItag: 140,
		},
		{
			name:     "no bitrate loses to later bitrate",
			audios:   []types.StreamDescriptor{audio(999, "mp4", 0, types.AudioQualityHigh), audio(140, "mp4", 64, "")},
			wantItag: 140,
		},
		{
			name:     "medium tier preferred without bitrates",
			audios:   []types.StreamDescriptor{audio(1, "mp4", 0, types.AudioQualityLow), audio(2, "mp4", 0, types.AudioQualityMedium), audio(3, "mp4", 0, types.AudioQualityHigh)},
			wantItag: 2,
		},
		{
			name:     "bitrate tie goes to later stream",
			audios:   []types.StreamDescriptor{audio(1, "mp4", 128, ""), audio(2, "webm", 128, "")},
			wantItag: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			descs := append([]types.StreamDescriptor{v}, tt.audios...)
			sel, ok := Select(descs, "mp4")
			if !ok || !sel.IsPair() {
				t.Fatalf("expected a pair, got %+v ok=%v", sel, ok)
			}
			if sel.Audio.Itag != tt.wantItag {
				t.Fatalf("expected audio itag %d, got %d", tt.wantItag, sel.Audio.Itag)
			}
		})
	}
}

func TestParseQuality(t *testing.T) {
	tests := map[string]int{
		"1080p":   1080,
		"1080p60": 1080,
		"720p":    720,
		"144p":    144,
		"2160p":   2160,
	}
	for in, want := range tests {
		got, ok := ParseQuality(in)
		if !ok || got != want {
			t.Fatalf("ParseQuality(%q) = %d,%v want %d", in, got, ok, want)
		}
	}
	for _, bad := range []string{"", "p", "0p", "hd720", "tiny"} {
		if _, ok := ParseQuality(bad); ok {
			t.Fatalf("ParseQuality(%q) should be unparsable", bad)
		}
	}
}
