package notify

import "fmt"

// Action is what a user can do from a reminder notification. The set is
// closed: MarkDone and Snooze are the only implementations.
type Action interface {
	fmt.Stringer
	isAction()
}

type MarkDone struct{}

func (MarkDone) isAction()      {}
func (MarkDone) String() string { return "mark done" }

type Snooze struct {
	Minutes int
}

func (Snooze) isAction() {}
func (s Snooze) String() string {
	return fmt.Sprintf("snooze %d min", s.Minutes)
}

// ActionHandler applies a notification action to the task it was raised for.
type ActionHandler interface {
	HandleAction(taskID string, action Action) error
}

type ActionHandlerFunc func(taskID string, action Action) error

func (f ActionHandlerFunc) HandleAction(taskID string, action Action) error {
	return f(taskID, action)
}
