package notify

import (
	"fmt"
	"io"
)

// Chime plays the short audio cue that accompanies every reminder.
type Chime interface {
	Play() error
}

// Bell rings the terminal bell.
type Bell struct {
	Out io.Writer
}

func (b Bell) Play() error {
	if b.Out == nil {
		return fmt.Errorf("notify: bell has no output")
	}
	_, err := io.WriteString(b.Out, "\a")
	return err
}

type Silent struct{}

func (Silent) Play() error { return nil }

// playCue never lets a broken audio path get in the way of the notification.
func playCue(c Chime) (err error) {
	if c == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notify: chime panic: %v", r)
		}
	}()
	return c.Play()
}
