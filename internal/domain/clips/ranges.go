package clips

import (
	"fmt"
	"strings"

	"github.com/forPelevin/splyt/internal/diag"
	"github.com/forPelevin/splyt/internal/types"
)

// ParseRanges reads a comma-separated list such as
// "23:42-23:57,32:08-33:17@outro". An end given as a plain integer is a
// length in seconds; "@name" names the clip.
func ParseRanges(input string) ([]types.ClipSelection, error) {
	var out []types.ClipSelection
	for _, raw := range strings.Split(input, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		sel, err := parseRange(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, sel)
	}
	if len(out) == 0 {
		return nil, diag.Wrap(diag.InvalidTimestampInput, fmt.Errorf("no clip ranges in %q", input))
	}
	return out, nil
}

func parseRange(raw string) (types.ClipSelection, error) {
	bounds, name, _ := strings.Cut(raw, "@")
	startRaw, endRaw, ok := strings.Cut(bounds, "-")
	if !ok {
		return types.ClipSelection{}, diag.Wrap(diag.InvalidTimestampInput, fmt.Errorf("range %q: expected start-end", raw))
	}

	start, err := ParseTimestamp(startRaw)
	if err != nil {
		return types.ClipSelection{}, err
	}

	endRaw = strings.TrimSpace(endRaw)
	end, err := ParseTimestamp(endRaw)
	if err != nil {
		length, derr := ParseDuration(endRaw)
		if derr != nil {
			return types.ClipSelection{}, err
		}
		end = start + length
	}

	sel := types.ClipSelection{Start: start, End: end, Name: strings.TrimSpace(name)}
	if err := Validate(sel); err != nil {
		return types.ClipSelection{}, err
	}
	return sel, nil
}

// Validate checks the invariants the clip engine relies on.
func Validate(sel types.ClipSelection) error {
	if sel.Start < 0 {
		return diag.Wrap(diag.InvalidTimestampInput, fmt.Errorf("start %s is negative", sel.Start))
	}
	if sel.End <= sel.Start {
		return diag.Wrap(diag.InvalidTimestampInput, fmt.Errorf("end %s must be after start %s", sel.End, sel.Start))
	}
	return nil
}
