package editor

import "errors"

// User-level failures. Operations returning one of these leave the state
// untouched and do not notify listeners.
var (
	ErrEmptySelection  = errors.New("no frames selected")
	ErrEmptyClipboard  = errors.New("clipboard is empty")
	ErrInvalidDuration = errors.New("duration must be between 50 and 2000 ms")
	ErrIndexOutOfRange = errors.New("frame index out of range")
	ErrNothingToUndo   = errors.New("nothing to undo")
	ErrNoMove          = errors.New("frame is already at the drop position")
	ErrNoItems         = errors.New("no frames given")
	ErrNoTarget        = errors.New("no paste position under the cursor")
)

// IsUserError reports whether err is one of the recoverable, user-reported
// editing failures.
func IsUserError(err error) bool {
	for _, target := range []error{
		ErrEmptySelection, ErrEmptyClipboard, ErrInvalidDuration, ErrIndexOutOfRange,
		ErrNothingToUndo, ErrNoMove, ErrNoItems, ErrNoTarget,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
