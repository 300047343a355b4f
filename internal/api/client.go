package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"tumundo_admin/internal/config"
	"tumundo_admin/internal/store"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

var (
	ErrUnauthorized = errors.New("api unauthorized")
	ErrNotFound     = errors.New("api resource not found")
	ErrBadBaseURL   = errors.New("api base url is invalid")
)

type APIError struct {
	StatusCode int
	Status     string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("api error: %s: %s", e.Status, e.Message)
	case e.Body != "":
		return fmt.Sprintf("api error: %s: %s", e.Status, e.Body)
	default:
		return fmt.Sprintf("api error: %s", e.Status)
	}
}

type Client struct {
	http         *resty.Client
	store        store.Store
	fallbackAuth string
	logger       *zap.Logger
}

func NewClient(cfg config.Config, st store.Store, logger *zap.Logger) (*Client, error) {
	baseURL, err := ResolveBaseURL(cfg.APIBaseURL, cfg.HTTPSHosts())
	if err != nil {
		return nil, err
	}

	c := &Client{
		store:        st,
		fallbackAuth: strings.TrimSpace(cfg.APIToken),
		logger:       logger.Named("api"),
	}
	c.http = resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout).
		OnBeforeRequest(c.injectToken)

	return c, nil
}

// ResolveBaseURL trims the configured base URL and upgrades it to https
// when its host ends with one of httpsHosts.
func ResolveBaseURL(raw string, httpsHosts []string) (string, error) {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	if raw == "" {
		return "", ErrBadBaseURL
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrBadBaseURL, raw)
	}
	host := strings.ToLower(u.Hostname())
	for _, suffix := range httpsHosts {
		suffix = strings.ToLower(strings.TrimPrefix(suffix, "."))
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			u.Scheme = "https"
			break
		}
	}
	return u.String(), nil
}

func (c *Client) BaseURL() string {
	return c.http.BaseURL
}

func (c *Client) injectToken(_ *resty.Client, req *resty.Request) error {
	token := c.Token(req.Context())
	if token != "" {
		req.SetAuthScheme("Bearer")
		req.SetAuthToken(token)
	}
	return nil
}

// Token returns the stored access token, falling back to the configured one.
func (c *Client) Token(ctx context.Context) string {
	if c.store != nil {
		token, found, err := store.Load[string](ctx, c.store, store.KeyAccessToken)
		if err != nil {
			c.logger.Warn("read access token", zap.Error(err))
		}
		if found && strings.TrimSpace(token) != "" {
			return strings.TrimSpace(token)
		}
	}
	return c.fallbackAuth
}

func (c *Client) SetToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token is empty")
	}
	return store.Save(ctx, c.store, store.KeyAccessToken, token)
}

func (c *Client) ClearToken(ctx context.Context) error {
	return c.store.Delete(ctx, store.KeyAccessToken)
}

func (c *Client) Get(ctx context.Context, path string, query map[string]string, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, out)
}

// PostIdempotent sends a POST carrying an Idempotency-Key header.
func (c *Client) PostIdempotent(ctx context.Context, path, key string, body, out any) error {
	req := c.http.R().SetContext(ctx).SetHeader("Idempotency-Key", key).SetBody(body)
	return c.execute(req, http.MethodPost, path, out)
}

// Upload PUTs raw bytes to an absolute URL such as a presigned storage link.
// The bearer token is not sent to third party hosts.
func (c *Client) Upload(ctx context.Context, target, contentType string, data []byte) error {
	resp, err := resty.New().SetTimeout(c.http.GetClient().Timeout).R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(bytes.NewReader(data)).
		Put(target)
	if err != nil {
		return fmt.Errorf("upload request: %w", err)
	}
	if resp.IsError() {
		return apiErrorFromResponse(resp)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query map[string]string, body, out any) error {
	req := c.http.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if body != nil {
		req.SetBody(body)
	}
	return c.execute(req, method, path, out)
}

func (c *Client) execute(req *resty.Request, method, path string, out any) error {
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("api request %s %s: %w", method, path, err)
	}
	c.logger.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("elapsed", resp.Time()),
	)
	if resp.IsError() {
		return apiErrorFromResponse(resp)
	}
	if out == nil || len(bytes.TrimSpace(resp.Body())) == 0 {
		return nil
	}
	// resty only decodes results served with a JSON content type.
	if resty.IsJSONType(resp.Header().Get("Content-Type")) {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func apiErrorFromResponse(resp *resty.Response) error {
	body := strings.TrimSpace(resp.String())
	apiErr := &APIError{
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
		Message:    extractMessage(resp.Body()),
		Body:       body,
	}

	switch resp.StatusCode() {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %w", ErrUnauthorized, apiErr)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", ErrNotFound, apiErr)
	default:
		return apiErr
	}
}

func extractMessage(body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"message", "detail", "error"} {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		var text string
		if err := json.Unmarshal(raw, &text); err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
		// FastAPI style validation errors carry a list under detail.
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(raw, &items); err == nil && len(items) > 0 {
			msgs := make([]string, 0, len(items))
			for _, item := range items {
				if item.Msg != "" {
					msgs = append(msgs, item.Msg)
				}
			}
			return strings.Join(msgs, "; ")
		}
	}
	return ""
}

// Message returns the human readable part of err for display.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if apiErr.Body != "" {
			return apiErr.Body
		}
		return apiErr.Status
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
