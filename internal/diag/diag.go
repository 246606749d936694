// Package diag defines the stable diagnostics every pipeline stage reports.
//
// A Diagnostic is a (code, message) pair identifying a failure class. Stage
// boundaries translate collaborator errors into *Error values carrying one
// diagnostic plus the optional cause, so callers can branch with errors.Is
// against the exported sentinels and hosts can map Code to an exit status.
package diag

import (
	"errors"
	"fmt"
)

type Diagnostic struct {
	Code    int
	Message string
}

var (
	NoIDInURL = Diagnostic{Code: 1, Message: "Could not find video ID in YouTube link."}

	DownloadError = Diagnostic{Code: 2, Message: "Encountered an error downloading video."}

	InvalidTimestampInput = Diagnostic{
		Code:    3,
		Message: "Invalid format for timestamp. (Valid formats for a timestamp at one minute and twenty-three seconds are '00:01:23', '01:23', and '1:23'.)",
	}
	InvalidDurationInput = Diagnostic{Code: 3, Message: "Invalid duration. Should be a positive integer."}

	NoURLProtocol = Diagnostic{Code: 4, Message: "Invalid URL: missing protocol (https://)."}
	NoYouTubeID   = Diagnostic{Code: 5, Message: "Invalid URL: could not find video ID."}
	NotYouTubeURL = Diagnostic{Code: 6, Message: "Only YouTube URLs are supported."}

	NoVideoFormat = Diagnostic{Code: 7, Message: "Could not find a video format to download."}
	MergeError    = Diagnostic{Code: 8, Message: "An error occurred while merging downloaded video and audio."}
	CutError      = Diagnostic{Code: 9, Message: "An error occurred while cutting a clip."}
)

// Sentinels for errors.Is. Matching compares diagnostic codes and messages,
// never causes.
var (
	ErrNoIDInURL        = &Error{Diagnostic: NoIDInURL}
	ErrDownload         = &Error{Diagnostic: DownloadError}
	ErrInvalidTimestamp = &Error{Diagnostic: InvalidTimestampInput}
	ErrInvalidDuration  = &Error{Diagnostic: InvalidDurationInput}
	ErrNoURLProtocol    = &Error{Diagnostic: NoURLProtocol}
	ErrNoYouTubeID      = &Error{Diagnostic: NoYouTubeID}
	ErrNotYouTubeURL    = &Error{Diagnostic: NotYouTubeURL}
	ErrNoVideoFormat    = &Error{Diagnostic: NoVideoFormat}
	ErrMerge            = &Error{Diagnostic: MergeError}
	ErrCut              = &Error{Diagnostic: CutError}
)

type Error struct {
	Diagnostic Diagnostic
	Err        error
}

func Wrap(d Diagnostic, cause error) error {
	return &Error{Diagnostic: d, Err: cause}
}

func New(d Diagnostic) error {
	return &Error{Diagnostic: d}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Diagnostic.Message
	}
	return fmt.Sprintf("%s: %v", e.Diagnostic.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Diagnostic == e.Diagnostic
}

// From returns the outermost diagnostic in err's chain.
func From(err error) (Diagnostic, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Diagnostic, true
	}
	return Diagnostic{}, false
}

// Code returns the diagnostic code for err, 0 for nil and fallback when err
// carries no diagnostic.
func Code(err error, fallback int) int {
	if err == nil {
		return 0
	}
	if d, ok := From(err); ok {
		return d.Code
	}
	return fallback
}
