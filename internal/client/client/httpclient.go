package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/goalkeeper/internal/client/models"
)

// HTTPClient is the Client implementation over the JSON API.
type HTTPClient struct {
	baseURL string
	origin  *url.URL
	http    *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		origin:  &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"},
		http:    &http.Client{Jar: jar, Timeout: timeout},
	}, nil
}

// Session returns the cookies the jar holds for the server.
func (c *HTTPClient) Session() []SessionCookie {
	var out []SessionCookie
	for _, ck := range c.http.Jar.Cookies(c.origin) {
		out = append(out, SessionCookie{Name: ck.Name, Value: ck.Value})
	}
	return out
}

// RestoreSession puts previously saved cookies back into the jar. An empty
// list drops nothing; cookies the server later clears are removed as usual.
func (c *HTTPClient) RestoreSession(cookies []SessionCookie) {
	if len(cookies) == 0 {
		return
	}
	hc := make([]*http.Cookie, 0, len(cookies))
	for _, ck := range cookies {
		hc = append(hc, &http.Cookie{Name: ck.Name, Value: ck.Value, Path: "/"})
	}
	c.http.Jar.SetCookies(c.origin, hc)
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

func (c *HTTPClient) Register(ctx context.Context, username, password, email string) (*models.User, error) {
	body := map[string]string{"username": username, "password": password}
	if email != "" {
		body["email"] = email
	}
	var u models.User
	if err := c.do(ctx, http.MethodPost, "/register", body, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodPost, "/login", map[string]string{"username": username, "password": password}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) ConvertGuest(ctx context.Context, username, password string) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodPost, "/api/user/convert-guest", map[string]string{"username": username, "password": password}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/logout", nil, nil)
}

func (c *HTTPClient) Current(ctx context.Context) (*models.User, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/user/current", nil, &raw); err != nil {
		return nil, err
	}

	var anon struct {
		IsAnonymous bool `json:"is_anonymous"`
	}
	if err := json.Unmarshal(raw, &anon); err == nil && anon.IsAnonymous {
		return nil, nil
	}

	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &u, nil
}

func (c *HTTPClient) ListGoals(ctx context.Context, period string) ([]*models.Goal, error) {
	path := "/api/goals"
	if period != "" {
		path += "?type=" + url.QueryEscape(period)
	}
	var goals []*models.Goal
	if err := c.do(ctx, http.MethodGet, path, nil, &goals); err != nil {
		return nil, err
	}
	return goals, nil
}

func (c *HTTPClient) CreateGoal(ctx context.Context, text, period string) (*models.Goal, error) {
	var g models.Goal
	if err := c.do(ctx, http.MethodPost, "/api/goals", map[string]string{"text": text, "goal_type": period}, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (c *HTTPClient) UpdateGoal(ctx context.Context, id string, patch GoalPatch) (*models.Goal, error) {
	var g models.Goal
	if err := c.do(ctx, http.MethodPut, "/api/goals/"+url.PathEscape(id), patch, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (c *HTTPClient) DeleteGoal(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/goals/"+url.PathEscape(id), nil, nil)
}

func (c *HTTPClient) Cleanup(ctx context.Context) (int64, error) {
	var out struct {
		Deleted int64 `json:"deleted"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/goals/cleanup", nil, &out); err != nil {
		return 0, err
	}
	return out.Deleted, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return mapStatus(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func mapStatus(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&payload)
	if payload.Error == "" {
		payload.Error = resp.Status
	}

	e := &APIError{Status: resp.StatusCode, Message: payload.Error}
	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		e.kind = ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		e.kind = ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		e.kind = ErrConflict
	case resp.StatusCode == http.StatusServiceUnavailable, resp.StatusCode == http.StatusTooManyRequests:
		e.kind = ErrUnavailable
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		e.kind = ErrInvalid
	default:
		e.kind = fmt.Errorf("server error %d", resp.StatusCode)
	}
	return e
}
