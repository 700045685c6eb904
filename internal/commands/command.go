package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/model"
)

type Type string

const (
	TypeAdd     Type = "add"
	TypeEdit    Type = "edit"
	TypeRemind  Type = "remind"
	TypeSnooze  Type = "snooze"
	TypeShare   Type = "share"
	TypeShow    Type = "show"
	TypeAccept  Type = "accept"
	TypeDecline Type = "decline"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// TaskArgs carries a title and an unparsed due time, written as
// "<title> @ <when>".
type TaskArgs struct {
	Title string
	When  string
}

type MinutesArgs struct {
	Minutes int
}

type ShareArgs struct {
	Email string
}

type ShowArgs struct {
	Subject string
}

type RespondArgs struct {
	ShareID string
	Accept  bool
}

type Command struct {
	Type    Type
	Raw     string
	Task    *TaskArgs
	Minutes *MinutesArgs
	Share   *ShareArgs
	Show    *ShowArgs
	Respond *RespondArgs
}

var showSubjects = map[string]bool{
	"all":       true,
	"pending":   true,
	"completed": true,
	"received":  true,
	"sent":      true,
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	rest := strings.TrimSpace(strings.TrimPrefix(raw, parts[0]))

	switch Type(head) {
	case TypeAdd, TypeEdit:
		return parseTask(input, Type(head), rest)
	case TypeRemind, TypeSnooze:
		return parseMinutes(input, Type(head), parts[1:])
	case TypeShare:
		return parseShare(input, parts[1:])
	case TypeShow:
		return parseShow(input, parts[1:])
	case TypeAccept, TypeDecline:
		return parseRespond(input, Type(head), parts[1:])
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseTask(raw string, typ Type, rest string) (Command, error) {
	// The due time follows the last " @ " so titles may contain "@".
	sep := " @ "
	i := strings.LastIndex(rest, sep)
	if i < 0 && strings.Count(rest, "@") == 1 {
		sep, i = "@", strings.Index(rest, "@")
	}
	title, when, found := rest, "", i >= 0
	if found {
		title, when = rest[:i], rest[i+len(sep):]
	}
	title = strings.TrimSpace(title)
	when = strings.TrimSpace(when)
	if title == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires a title", typ)}
	}
	if !found || when == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires a due time after @", typ)}
	}
	return Command{Type: typ, Raw: raw, Task: &TaskArgs{Title: title, When: when}}, nil
}

func parseMinutes(raw string, typ Type, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires a number of minutes", typ)}
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.ToLower(args[0]), "m"))
	if err != nil || n <= 0 || n > model.MaxMinutes {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid minutes: %s", args[0])}
	}
	return Command{Type: typ, Raw: raw, Minutes: &MinutesArgs{Minutes: n}}, nil
}

func parseShare(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "share requires an email"}
	}
	return Command{Type: TypeShare, Raw: raw, Share: &ShareArgs{Email: args[0]}}, nil
}

func parseShow(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "show requires a subject"}
	}
	subject := strings.ToLower(args[0])
	if !showSubjects[subject] {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown subject: %s", subject)}
	}
	return Command{Type: TypeShow, Raw: raw, Show: &ShowArgs{Subject: subject}}, nil
}

func parseRespond(raw string, typ Type, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires a share id", typ)}
	}
	return Command{Type: typ, Raw: raw, Respond: &RespondArgs{ShareID: args[0], Accept: typ == TypeAccept}}, nil
}
