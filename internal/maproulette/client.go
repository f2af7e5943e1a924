// 包 maproulette：MapRoulette v2 REST 客户端与标记上传
package maproulette

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"atlas-checks/internal/config"
	"atlas-checks/internal/logger"
	"atlas-checks/internal/metrics"
)

// DefaultServer 未配置 MAPROULETTE_SERVER 时的服务地址
const DefaultServer = "https://maproulette.org"

var (
	// ErrUnauthorized 401/403
	ErrUnauthorized = errors.New("maproulette: unauthorized")
	// ErrNotFound 按名称查询无结果
	ErrNotFound = errors.New("maproulette: not found")
	// ErrMissingKey 未配置 API key
	ErrMissingKey = errors.New("maproulette: missing api key")
)

// Client：BaseURL 不带结尾斜杠
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// NewFromEnv 读取 MAPROULETTE_SERVER / MAPROULETTE_API_KEY
func NewFromEnv() (*Client, error) {
	key := config.Getenv("MAPROULETTE_API_KEY", "")
	if key == "" {
		return nil, ErrMissingKey
	}
	return &Client{
		BaseURL: strings.TrimRight(config.Getenv("MAPROULETTE_SERVER", DefaultServer), "/"),
		APIKey:  key,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Project 只解析需要的字段
type Project struct {
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Description string `json:"description,omitempty"`
	Enabled     bool   `json:"enabled"`
}

// ChallengePayload：创建挑战的请求体
type ChallengePayload struct {
	ID                 int64  `json:"id,omitempty"`
	Name               string `json:"name"`
	Parent             int64  `json:"parent"`
	Description        string `json:"description,omitempty"`
	Blurb              string `json:"blurb,omitempty"`
	Instruction        string `json:"instruction,omitempty"`
	Difficulty         int    `json:"difficulty"`
	DefaultPriority    int    `json:"defaultPriority"`
	HighPriorityRule   string `json:"highPriorityRule,omitempty"`
	MediumPriorityRule string `json:"mediumPriorityRule,omitempty"`
	LowPriorityRule    string `json:"lowPriorityRule,omitempty"`
	Tags               string `json:"tags,omitempty"`
	Enabled            bool   `json:"enabled"`
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP == nil {
		return &http.Client{Timeout: 30 * time.Second}
	}
	return c.HTTP
}

// do：发送 JSON 请求并解码响应；out 为空时丢弃响应体
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("apiKey", c.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	t0 := time.Now()
	metrics.MapRouletteRequestsTotal.Inc()
	logger.L().Debug("maproulette_req", "method", method, "path", path)
	resp, err := c.httpClient().Do(req)
	if err != nil {
		metrics.MapRouletteFailTotal.Inc()
		logger.L().Error("maproulette_http_error", "path", path, "err", err)
		return err
	}
	defer resp.Body.Close()
	dur := time.Since(t0).Milliseconds()
	metrics.MapRouletteDurationMs.Observe(float64(dur))
	logger.L().Debug("maproulette_resp", "path", path, "status", resp.StatusCode, "duration_ms", dur)
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		metrics.MapRouletteFailTotal.Inc()
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		metrics.MapRouletteFailTotal.Inc()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("maproulette: %s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.MapRouletteFailTotal.Inc()
		logger.L().Error("maproulette_decode_error", "path", path, "err", err)
		return err
	}
	return nil
}

// ProjectByName 不存在时返回 ErrNotFound
func (c *Client) ProjectByName(ctx context.Context, name string) (Project, error) {
	var p Project
	err := c.do(ctx, http.MethodGet, "/api/v2/projectByName/"+url.PathEscape(name), nil, &p)
	return p, err
}

// CreateProject 返回带 id 的项目
func (c *Client) CreateProject(ctx context.Context, p Project) (Project, error) {
	if p.DisplayName == "" {
		p.DisplayName = p.Name
	}
	var out Project
	err := c.do(ctx, http.MethodPost, "/api/v2/project", p, &out)
	return out, err
}

// EnsureProject 先按名称查询，不存在则创建
func (c *Client) EnsureProject(ctx context.Context, name string) (Project, error) {
	p, err := c.ProjectByName(ctx, name)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Project{}, err
	}
	return c.CreateProject(ctx, Project{Name: name, Enabled: true})
}

// ChallengeByName 项目内按名称查询
func (c *Client) ChallengeByName(ctx context.Context, projectID int64, name string) (ChallengePayload, error) {
	var ch ChallengePayload
	path := fmt.Sprintf("/api/v2/project/%d/challenge/%s", projectID, url.PathEscape(name))
	err := c.do(ctx, http.MethodGet, path, nil, &ch)
	return ch, err
}

// CreateChallenge 返回带 id 的挑战
func (c *Client) CreateChallenge(ctx context.Context, ch ChallengePayload) (ChallengePayload, error) {
	var out ChallengePayload
	err := c.do(ctx, http.MethodPost, "/api/v2/challenge", ch, &out)
	return out, err
}
