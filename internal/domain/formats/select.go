package formats

import (
	"github.com/forPelevin/splyt/internal/types"
)

// Select picks the stream(s) to download. It prefers one combined stream
// because that skips the merge step; otherwise it pairs the best video with
// the best audio. Missing or malformed metadata never fails selection.
// ok is false only when no video stream in container exists.
func Select(descs []types.StreamDescriptor, container string) (types.FormatSelection, bool) {
	video, ok := bestVideo(descs, container)
	if !ok {
		return types.FormatSelection{}, false
	}
	if video.HasAudio {
		return types.FormatSelection{Video: video}, true
	}
	audio, ok := bestAudio(descs)
	if !ok {
		// Silent output beats no output.
		return types.FormatSelection{Video: video}, true
	}
	return types.FormatSelection{Video: video, Audio: &audio}, true
}

func bestVideo(descs []types.StreamDescriptor, container string) (types.StreamDescriptor, bool) {
	var best *types.StreamDescriptor
	for i := range descs {
		d := &descs[i]
		if !d.HasVideo || d.Container != container {
			continue
		}
		if best == nil {
			best = d
			continue
		}
		if betterVideo(d, best) {
			best = d
		}
	}
	if best == nil {
		return types.StreamDescriptor{}, false
	}
	return *best, true
}

func betterVideo(cand, best *types.StreamDescriptor) bool {
	p, pOK := ParseQuality(cand.QualityLabel)
	pb, pbOK := ParseQuality(best.QualityLabel)
	switch {
	case !pOK && !pbOK:
		return false
	case !pbOK:
		return true
	case !pOK:
		return false
	}
	if p != pb {
		return p > pb
	}
	return cand.HasAudio && !best.HasAudio
}

func bestAudio(descs []types.StreamDescriptor) (types.StreamDescriptor, bool) {
	var best *types.StreamDescriptor
	for i := range descs {
		d := &descs[i]
		if !d.HasAudio {
			continue
		}
		if best == nil || betterAudio(d, best) {
			best = d
		}
	}
	if best == nil {
		return types.StreamDescriptor{}, false
	}
	return *best, true
}

func betterAudio(cand, best *types.StreamDescriptor) bool {
	switch {
	case best.HasVideo && !cand.HasVideo:
		return true
	case cand.HasVideo && !best.HasVideo:
		return false
	case best.AudioBitrate > 0 && cand.AudioBitrate > 0:
		// Ties go to the newcomer.
		return best.AudioBitrate <= cand.AudioBitrate
	case best.AudioBitrate > 0:
		return false
	case cand.AudioBitrate > 0:
		return true
	case best.AudioQuality != "" && cand.AudioQuality != "":
		return cand.AudioQuality == types.AudioQualityMedium
	}
	return false
}

// ParseQuality reads the leading vertical resolution of a quality label,
// e.g. "1080p60" -> 1080. Labels without a positive number are unparsable.
func ParseQuality(label string) (int, bool) {
	n := 0
	digits := 0
	for _, r := range label {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		digits++
		if digits > 6 {
			break
		}
	}
	if digits == 0 || n == 0 {
		return 0, false
	}
	return n, true
}
