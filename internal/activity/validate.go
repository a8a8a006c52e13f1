package activity

import "errors"

var (
	ErrMissingProof      = errors.New("activity log has no image attachment")
	ErrTotalTimeNotFound = errors.New("activity log has no valid total time line")
	ErrMinutesOutOfRange = errors.New("total time minutes must be between 0 and 59")
)

// Validate checks a forum post before it can be approved. Checks run in order:
// proof image, total time line, minutes range.
func Validate(content string, images int) error {
	if images == 0 {
		return ErrMissingProof
	}

	t, ok := ParseTotalTime(content)
	if !ok {
		return ErrTotalTimeNotFound
	}

	return checkMinutes(t)
}

func checkMinutes(t TotalTime) error {
	if t.Minutes < 0 || t.Minutes > 59 {
		return ErrMinutesOutOfRange
	}

	return nil
}
