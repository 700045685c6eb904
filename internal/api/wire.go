package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/model"
)

// dueLayout is the datetime-local format the backend stores due dates in.
const dueLayout = "2006-01-02T15:04"

const (
	statusPending   = "pendente"
	statusCompleted = "concluida"

	shareAccepted = "aceita"
	shareDeclined = "recusada"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	dueLayout,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// flexID accepts both numeric and string ids.
type flexID string

func (id *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("api: invalid id %s: %w", data, err)
	}
	*id = flexID(n.String())
	return nil
}

type taskPayload struct {
	ID          flexID  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	DueDate     string  `json:"due_date"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`

	ShareID       flexID `json:"share_id"`
	ShareStatus   string `json:"share_status"`
	FromUserName  string `json:"from_user_name"`
	FromUserEmail string `json:"from_user_email"`
	ToUserName    string `json:"to_user_name"`
	ToUserEmail   string `json:"to_user_email"`
}

type draftPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	Status      string `json:"status,omitempty"`
}

type sharePayload struct {
	ToEmail string `json:"to_email"`
}

type respondPayload struct {
	Response string `json:"response"`
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    flexID `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

type errorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func encodeDraft(d model.Draft, withStatus bool) draftPayload {
	out := draftPayload{
		Title:       d.Title,
		Description: d.Description,
		DueDate:     d.DueAt.In(time.Local).Format(dueLayout),
	}
	if withStatus {
		out.Status = statusPending
		if d.Completed {
			out.Status = statusCompleted
		}
	}
	return out
}

func (p taskPayload) toModel() (model.Task, error) {
	if p.ID == "" {
		return model.Task{}, fmt.Errorf("api: task without id")
	}
	due, err := parseTime(p.DueDate, time.Local)
	if err != nil {
		return model.Task{}, fmt.Errorf("api: task %s due_date: %w", p.ID, err)
	}
	out := model.Task{
		ID:        string(p.ID),
		Title:     p.Title,
		DueAt:     due,
		Completed: strings.EqualFold(p.Status, statusCompleted),
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	// CURRENT_TIMESTAMP columns are written in UTC.
	if created, err := parseTime(p.CreatedAt, time.UTC); err == nil {
		out.CreatedAt = created
	}
	if updated, err := parseTime(p.UpdatedAt, time.UTC); err == nil && !updated.IsZero() {
		out.UpdatedAt = &updated
	}
	return out, nil
}

func (p taskPayload) toShare(received bool) (model.Share, error) {
	task, err := p.toModel()
	if err != nil {
		return model.Share{}, err
	}
	id := p.ShareID
	if id == "" {
		id = p.ID
	}
	out := model.Share{ID: string(id), Task: task, Status: shareStatus(p.ShareStatus)}
	if received {
		out.PeerName, out.PeerEmail = p.FromUserName, p.FromUserEmail
	} else {
		out.PeerName, out.PeerEmail = p.ToUserName, p.ToUserEmail
	}
	return out, nil
}

func shareStatus(s string) model.ShareStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case shareAccepted:
		return model.ShareAccepted
	case shareDeclined:
		return model.ShareDeclined
	default:
		return model.SharePending
	}
}

func parseTime(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, nil
		}
	}
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.UnixMilli(ms), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", v)
}
