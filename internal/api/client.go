package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/model"
)

const (
	tasksPath = "/api/tasks"
	loginPath = "/api/auth/login"

	DefaultTimeout = 10 * time.Second
)

var (
	ErrUnauthorized = errors.New("api: unauthorized")
	ErrNotFound     = errors.New("api: not found")
)

// StatusError is a non-2xx response from the backend.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Code)
	}
	return fmt.Sprintf("api: status %d: %s", e.Code, e.Message)
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Code == http.StatusUnauthorized
	case ErrNotFound:
		return e.Code == http.StatusNotFound
	}
	return false
}

type Config struct {
	BaseURL string
	Timeout time.Duration
	// Dial overrides the transport, mainly for in-memory tests.
	Dial fasthttp.DialFunc
}

// Client talks to the task REST backend. It implements store.Persistence
// and store.Sharer.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *fasthttp.Client
	logger  *zap.Logger
}

func New(cfg Config, logger *zap.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("api: base url is required")
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return nil, fmt.Errorf("api: base url must be http(s): %q", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: base,
		timeout: cfg.Timeout,
		http: &fasthttp.Client{
			Name:                "tarefas",
			Dial:                cfg.Dial,
			ReadTimeout:         cfg.Timeout,
			WriteTimeout:        cfg.Timeout,
			MaxIdleConnDuration: time.Minute,
		},
		logger: logger,
	}, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out loginResponse
	if err := c.do(ctx, fasthttp.MethodPost, loginPath, "", loginPayload{Email: email, Password: password}, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", errors.New("api: login response without token")
	}
	c.logger.Info("logged in", zap.String("user_id", string(out.User.ID)))
	return out.Token, nil
}

func (c *Client) List(ctx context.Context, token string) ([]model.Task, error) {
	var rows []taskPayload
	if err := c.do(ctx, fasthttp.MethodGet, tasksPath, token, nil, &rows); err != nil {
		return nil, err
	}
	out := make([]model.Task, 0, len(rows))
	for _, row := range rows {
		task, err := row.toModel()
		if err != nil {
			c.logger.Warn("skipping malformed task", zap.Error(err))
			continue
		}
		out = append(out, task)
	}
	return out, nil
}

func (c *Client) Create(ctx context.Context, token string, d model.Draft) (model.Task, error) {
	var row taskPayload
	if err := c.do(ctx, fasthttp.MethodPost, tasksPath, token, encodeDraft(d, false), &row); err != nil {
		return model.Task{}, err
	}
	return row.toModel()
}

// Update sends the draft and reads the task back, since the backend only
// acknowledges the write.
func (c *Client) Update(ctx context.Context, token, id string, d model.Draft) (model.Task, error) {
	if err := c.do(ctx, fasthttp.MethodPut, tasksPath+"/"+id, token, encodeDraft(d, true), nil); err != nil {
		return model.Task{}, err
	}
	tasks, err := c.List(ctx, token)
	if err != nil {
		return model.Task{}, err
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return model.Task{}, &StatusError{Code: http.StatusNotFound, Message: "task " + id + " missing after update"}
}

func (c *Client) Delete(ctx context.Context, token, id string) error {
	return c.do(ctx, fasthttp.MethodDelete, tasksPath+"/"+id, token, nil, nil)
}

func (c *Client) Share(ctx context.Context, token, taskID, email string) error {
	return c.do(ctx, fasthttp.MethodPost, tasksPath+"/"+taskID+"/share", token, sharePayload{ToEmail: email}, nil)
}

func (c *Client) Received(ctx context.Context, token string) ([]model.Share, error) {
	return c.shares(ctx, token, "/shared/received", true)
}

func (c *Client) Sent(ctx context.Context, token string) ([]model.Share, error) {
	return c.shares(ctx, token, "/shared/sent", false)
}

func (c *Client) Respond(ctx context.Context, token, shareID string, accept bool) error {
	answer := shareDeclined
	if accept {
		answer = shareAccepted
	}
	return c.do(ctx, fasthttp.MethodPost, tasksPath+"/shared/"+shareID+"/respond", token, respondPayload{Response: answer}, nil)
}

func (c *Client) shares(ctx context.Context, token, path string, received bool) ([]model.Share, error) {
	var rows []taskPayload
	if err := c.do(ctx, fasthttp.MethodGet, tasksPath+path, token, nil, &rows); err != nil {
		return nil, err
	}
	out := make([]model.Share, 0, len(rows))
	for _, row := range rows {
		share, err := row.toShare(received)
		if err != nil {
			c.logger.Warn("skipping malformed share", zap.Error(err))
			continue
		}
		out = append(out, share)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if token != "" {
		req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+token)
	}
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode %s %s: %w", method, path, err)
		}
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	start := time.Now()
	err := c.http.DoDeadline(req, resp, deadline)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		c.logger.Warn("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}

	status := resp.StatusCode()
	c.logger.Debug("request done",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("elapsed", time.Since(start)),
	)
	if status < 200 || status >= 300 {
		return statusError(status, resp.Body())
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("api: decode %s %s: %w", method, path, err)
	}
	return nil
}

func statusError(code int, body []byte) *StatusError {
	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err == nil {
		msg := payload.Error
		if msg == "" {
			msg = payload.Message
		}
		return &StatusError{Code: code, Message: msg}
	}
	return &StatusError{Code: code, Message: strings.TrimSpace(string(body))}
}
