package clips

import (
	"errors"
	"testing"
	"time"

	"github.com/forPelevin/splyt/internal/diag"
)

func TestNamer_ContinuesAfterHighestExisting(t *testing.T) {
	n := NewNamer([]string{"clip1.mp4", "clip3.mp4", "video.mp4", "clip9.webm", "clipx.mp4"}, "mp4")
	if got := n.Name(""); got != "clip4.mp4" {
		t.Fatalf("expected clip4.mp4, got %s", got)
	}
	if got := n.Name(""); got != "clip5.mp4" {
		t.Fatalf("expected clip5.mp4 for the next unnamed clip, got %s", got)
	}
}

func TestNamer_EmptyDirectory(t *testing.T) {
	if got := NewNamer(nil, "mp4").Name(""); got != "clip1.mp4" {
		t.Fatalf("expected clip1.mp4, got %s", got)
	}
}

func TestNamer_RequestedNames(t *testing.T) {
	n := NewNamer(nil, "mp4")
	tests := map[string]string{
		"intro":       "intro.mp4",
		"outro.mp4":   "outro.mp4",
		"LOUD.MP4":    "LOUD.MP4",
		"  spaced  ":  "spaced.mp4",
		"a/b":         "a_b.mp4",
		"\u00e9clair": "\u00e9clair.mp4",
		"e\u0301te":   "\u00e9te.mp4",
	}
	for in, want := range tests {
		if got := n.Name(in); got != want {
			t.Fatalf("Name(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNamer_RequestedAutoNameBumpsCounter(t *testing.T) {
	n := NewNamer(nil, "mp4")
	if got := n.Name("clip7"); got != "clip7.mp4" {
		t.Fatalf("unexpected name %s", got)
	}
	if got := n.Name(""); got != "clip8.mp4" {
		t.Fatalf("expected clip8.mp4 after explicit clip7, got %s", got)
	}
}

func TestParseTimestamp(t *testing.T) {
	valid := map[string]time.Duration{
		"00:01:23": 83 * time.Second,
		"01:23":    83 * time.Second,
		"1:23":     83 * time.Second,
		"1:32:48":  time.Hour + 32*time.Minute + 48*time.Second,
		"90:00":    90 * time.Minute,
		" 0:05 ":   5 * time.Second,
	}
	for in, want := range valid {
		got, err := ParseTimestamp(in)
		if err != nil {
			t.Fatalf("ParseTimestamp(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseTimestamp(%q) = %s, want %s", in, got, want)
		}
	}
	for _, in := range []string{"", "83", "1:60", "1:2:3:4", "a:01", "1:234", "-1:00"} {
		_, err := ParseTimestamp(in)
		if !errors.Is(err, diag.ErrInvalidTimestamp) {
			t.Fatalf("ParseTimestamp(%q) err = %v, want invalid timestamp", in, err)
		}
	}
}

func TestParseDuration(t *testing.T) {
	got, err := ParseDuration("14")
	if err != nil || got != 14*time.Second {
		t.Fatalf("ParseDuration(14) = %s, %v", got, err)
	}
	for _, in := range []string{"", "1.5", "-3", "1:00"} {
		if _, err := ParseDuration(in); !errors.Is(err, diag.ErrInvalidDuration) {
			t.Fatalf("ParseDuration(%q) err = %v", in, err)
		}
	}
}

func TestParseRanges(t *testing.T) {
	got, err := ParseRanges("1:23-1:37, 23:42-30@outro")
	if err != nil {
		t.Fatalf("ParseRanges: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 ranges, got %d", len(got))
	}
	if got[0].Start != 83*time.Second || got[0].End != 97*time.Second || got[0].Name != "" {
		t.Fatalf("unexpected first range %+v", got[0])
	}
	if got[0].Duration() != 14*time.Second {
		t.Fatalf("expected 14s clip, got %s", got[0].Duration())
	}
	wantStart := 23*time.Minute + 42*time.Second
	if got[1].Start != wantStart || got[1].End != wantStart+30*time.Second || got[1].Name != "outro" {
		t.Fatalf("unexpected second range %+v", got[1])
	}
}

func TestParseRanges_Invalid(t *testing.T) {
	for _, in := range []string{"", ",", "1:00", "2:00-1:00", "1:00-1:00", "x-1:00", "1:00-y"} {
		if _, err := ParseRanges(in); err == nil {
			t.Fatalf("ParseRanges(%q) expected error", in)
		}
	}
}

func TestFormatSeconds(t *testing.T) {
	if got := FormatSeconds(83*time.Second + 250*time.Millisecond); got != "83.250" {
		t.Fatalf("unexpected %s", got)
	}
}
