package api

import (
	"context"
	"encoding/json"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/model"
)

// fakeBackend mimics the task routes of the REST backend.
type fakeBackend struct {
	mu        sync.Mutex
	token     string
	nextID    int
	tasks     map[int]map[string]any
	shares    []map[string]string
	responses map[string]string
	bodies    []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{token: "secret", nextID: 1, tasks: map[int]map[string]any{}, responses: map[string]string{}}
}

func (b *fakeBackend) handle(ctx *fasthttp.RequestCtx) {
	b.mu.Lock()
	defer b.mu.Unlock()

	path := string(ctx.Path())
	method := string(ctx.Method())
	b.bodies = append(b.bodies, string(ctx.PostBody()))

	if path == loginPath {
		var in loginPayload
		_ = json.Unmarshal(ctx.PostBody(), &in)
		if in.Password != "pw" {
			b.fail(ctx, fasthttp.StatusBadRequest, "Senha incorreta.")
			return
		}
		b.json(ctx, map[string]any{"token": b.token, "user": map[string]any{"id": 9, "name": "Ana", "email": in.Email}})
		return
	}

	if string(ctx.Request.Header.Peek("Authorization")) != "Bearer "+b.token {
		b.fail(ctx, fasthttp.StatusUnauthorized, "Token inválido.")
		return
	}

	rest := strings.TrimPrefix(path, tasksPath)
	switch {
	case rest == "" && method == fasthttp.MethodGet:
		out := make([]map[string]any, 0, len(b.tasks))
		for id := 1; id < b.nextID; id++ {
			if t, ok := b.tasks[id]; ok {
				out = append(out, t)
			}
		}
		b.json(ctx, out)
	case rest == "" && method == fasthttp.MethodPost:
		var in map[string]any
		_ = json.Unmarshal(ctx.PostBody(), &in)
		if in["title"] == "" || in["title"] == nil {
			b.fail(ctx, fasthttp.StatusBadRequest, "Título obrigatório.")
			return
		}
		id := b.nextID
		b.nextID++
		t := map[string]any{
			"id": id, "title": in["title"], "description": in["description"],
			"due_date": in["due_date"], "status": "pendente", "created_at": "2026-02-09 12:00:00", "updated_at": "2026-02-09 12:00:00",
		}
		b.tasks[id] = t
		b.json(ctx, map[string]any{"id": id, "title": in["title"], "description": in["description"], "due_date": in["due_date"], "status": "pendente"})
	case rest == "/shared/received":
		b.json(ctx, []map[string]any{{
			"id": 1, "title": "Shared", "description": nil, "due_date": "2026-03-01T10:00",
			"status": "pendente", "share_status": "aceita", "from_user_name": "Bia", "from_user_email": "bia@example.com",
		}})
	case rest == "/shared/sent":
		b.json(ctx, []map[string]any{{
			"id": "1", "title": "Mine", "due_date": "2026-03-01T10:00", "status": "concluida",
			"share_status": "pendente", "to_user_name": "", "to_user_email": "caio@example.com",
		}})
	case strings.HasPrefix(rest, "/shared/") && strings.HasSuffix(rest, "/respond"):
		var in respondPayload
		_ = json.Unmarshal(ctx.PostBody(), &in)
		b.responses[strings.TrimSuffix(strings.TrimPrefix(rest, "/shared/"), "/respond")] = in.Response
		b.json(ctx, map[string]string{"message": "ok"})
	case strings.HasSuffix(rest, "/share"):
		var in sharePayload
		_ = json.Unmarshal(ctx.PostBody(), &in)
		if in.ToEmail == "ghost@example.com" {
			b.fail(ctx, fasthttp.StatusNotFound, "Usuário destinatário não encontrado.")
			return
		}
		b.shares = append(b.shares, map[string]string{"task": strings.TrimSuffix(strings.TrimPrefix(rest, "/"), "/share"), "email": in.ToEmail})
		b.json(ctx, map[string]string{"message": "Tarefa compartilhada!"})
	default:
		id, err := strconv.Atoi(strings.TrimPrefix(rest, "/"))
		if err != nil {
			b.fail(ctx, fasthttp.StatusNotFound, "not found")
			return
		}
		switch method {
		case fasthttp.MethodPut:
			var in map[string]any
			_ = json.Unmarshal(ctx.PostBody(), &in)
			if t, ok := b.tasks[id]; ok {
				for _, k := range []string{"title", "description", "due_date", "status"} {
					t[k] = in[k]
				}
				t["updated_at"] = "2026-02-09 12:30:00"
			}
			b.json(ctx, map[string]string{"message": "Tarefa atualizada."})
		case fasthttp.MethodDelete:
			delete(b.tasks, id)
			b.json(ctx, map[string]string{"message": "Tarefa excluída."})
		}
	}
}

func (b *fakeBackend) json(ctx *fasthttp.RequestCtx, v any) {
	ctx.SetContentType("application/json")
	body, _ := json.Marshal(v)
	ctx.SetBody(body)
}

func (b *fakeBackend) fail(ctx *fasthttp.RequestCtx, status int, msg string) {
	ctx.SetStatusCode(status)
	b.json(ctx, map[string]string{"error": msg})
}

func newTestClient(t *testing.T) (*Client, *fakeBackend) {
	t.Helper()
	backend := newFakeBackend()
	ln := fasthttputil.NewInmemoryListener()
	server := &fasthttp.Server{Handler: backend.handle}
	go func() { _ = server.Serve(ln) }()
	t.Cleanup(func() {
		_ = server.Shutdown()
		_ = ln.Close()
	})

	client, err := New(Config{
		BaseURL: "http://tarefas.test/",
		Timeout: 2 * time.Second,
		Dial:    func(string) (net.Conn, error) { return ln.Dial() },
	}, nil)
	require.NoError(t, err)
	return client, backend
}

func TestNewValidatesBaseURL(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.Error(t, err)
	_, err = New(Config{BaseURL: "ftp://x"}, nil)
	assert.Error(t, err)
}

func TestTaskLifecycle(t *testing.T) {
	client, backend := newTestClient(t)
	ctx := context.Background()
	due := time.Date(2026, 3, 1, 9, 30, 0, 0, time.Local)

	created, err := client.Create(ctx, "secret", model.Draft{Title: "Dentist", Description: "x-rays", DueAt: due})
	require.NoError(t, err)
	assert.Equal(t, "1", created.ID)
	assert.True(t, created.DueAt.Equal(due))
	assert.False(t, created.Completed)
	assert.Contains(t, backend.bodies[len(backend.bodies)-1], `"due_date":"2026-03-01T09:30"`)

	updated, err := client.Update(ctx, "secret", "1", model.Draft{Title: "Dentist", DueAt: due.Add(time.Hour), Completed: true})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.True(t, updated.DueAt.Equal(due.Add(time.Hour)))
	require.NotNil(t, updated.UpdatedAt)
	assert.Equal(t, time.Date(2026, 2, 9, 12, 30, 0, 0, time.UTC), *updated.UpdatedAt)
	assert.Equal(t, time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC), updated.CreatedAt)

	list, err := client.List(ctx, "secret")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Dentist", list[0].Title)
	assert.Empty(t, list[0].Description)

	require.NoError(t, client.Delete(ctx, "secret", "1"))
	list, err = client.List(ctx, "secret")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = client.Update(ctx, "secret", "1", model.Draft{Title: "gone", DueAt: due})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatusErrorsCarryBackendMessage(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.List(context.Background(), "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	var serr *StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, fasthttp.StatusUnauthorized, serr.Code)
	assert.Equal(t, "Token inválido.", serr.Message)

	_, err = client.Create(context.Background(), "secret", model.Draft{DueAt: time.Now()})
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, fasthttp.StatusBadRequest, serr.Code)
}

func TestLogin(t *testing.T) {
	client, _ := newTestClient(t)

	token, err := client.Login(context.Background(), "ana@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "secret", token)

	_, err = client.Login(context.Background(), "ana@example.com", "nope")
	var serr *StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "Senha incorreta.", serr.Message)
}

func TestSharing(t *testing.T) {
	client, backend := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Share(ctx, "secret", "4", "caio@example.com"))
	assert.Equal(t, []map[string]string{{"task": "4", "email": "caio@example.com"}}, backend.shares)
	assert.ErrorIs(t, client.Share(ctx, "secret", "4", "ghost@example.com"), ErrNotFound)

	received, err := client.Received(ctx, "secret")
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, "1", received[0].ID)
	assert.Equal(t, model.ShareAccepted, received[0].Status)
	assert.Equal(t, "Bia", received[0].Peer())

	sent, err := client.Sent(ctx, "secret")
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, model.SharePending, sent[0].Status)
	assert.True(t, sent[0].Task.Completed)
	assert.Equal(t, "caio@example.com", sent[0].Peer())

	require.NoError(t, client.Respond(ctx, "secret", "3", true))
	require.NoError(t, client.Respond(ctx, "secret", "5", false))
	assert.Equal(t, map[string]string{"3": "aceita", "5": "recusada"}, backend.responses)
}

func TestCanceledContext(t *testing.T) {
	client, _ := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.List(ctx, "secret")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFlexIDAndTimeParsing(t *testing.T) {
	var p taskPayload
	require.NoError(t, json.Unmarshal([]byte(`{"id": 42, "share_id": "7", "due_date": "2026-03-01T10:00:00.000Z"}`), &p))
	assert.Equal(t, flexID("42"), p.ID)
	assert.Equal(t, flexID("7"), p.ShareID)

	task, err := p.toModel()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), task.DueAt.UTC())

	_, err = taskPayload{ID: "1", DueDate: "tomorrow"}.toModel()
	assert.Error(t, err)
	_, err = taskPayload{DueDate: "2026-03-01T10:00"}.toModel()
	assert.Error(t, err)
}
