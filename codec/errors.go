package codec

import "fmt"

// Stage names the part of the container that failed to decode.
type Stage string

const (
	StageHeader  Stage = "header"
	StageInflate Stage = "inflate"
	StageLimit   Stage = "limit"
	StageMarkup  Stage = "markup"
)

// FormatError is returned when bytes are not a valid layout container:
// a bad compression header, a truncated or corrupt stream, an oversized
// payload or malformed markup. It is always fatal to the decode.
type FormatError struct {
	Stage  Stage
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tosc format (%s): %s: %v", e.Stage, e.Reason, e.Err)
	}
	return fmt.Sprintf("tosc format (%s): %s", e.Stage, e.Reason)
}

func (e *FormatError) Unwrap() error { return e.Err }
