package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add     func(TaskArgs) (Result, error)
	Edit    func(TaskArgs) (Result, error)
	Remind  func(MinutesArgs) (Result, error)
	Snooze  func(MinutesArgs) (Result, error)
	Share   func(ShareArgs) (Result, error)
	Show    func(ShowArgs) (Result, error)
	Respond func(RespondArgs) (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		return run(cmd.Type, handlers.Add, cmd.Task)
	case TypeEdit:
		return run(cmd.Type, handlers.Edit, cmd.Task)
	case TypeRemind:
		return run(cmd.Type, handlers.Remind, cmd.Minutes)
	case TypeSnooze:
		return run(cmd.Type, handlers.Snooze, cmd.Minutes)
	case TypeShare:
		return run(cmd.Type, handlers.Share, cmd.Share)
	case TypeShow:
		return run(cmd.Type, handlers.Show, cmd.Show)
	case TypeAccept, TypeDecline:
		return run(cmd.Type, handlers.Respond, cmd.Respond)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func run[A any](typ Type, handler func(A) (Result, error), args *A) (Result, error) {
	if handler == nil {
		return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", typ)}
	}
	if args == nil {
		return Result{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s is missing its arguments", typ)}
	}
	return handler(*args)
}
