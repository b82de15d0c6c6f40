/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-15 14:02:17
 * @FilePath: \health-companion-app\internal\infra\healthapi\client.go
 * @LastEditTime: 2025-10-15 14:02:22
 */
package healthapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// defaultTimeout 控制 HTTP 请求的默认超时时间。
	defaultTimeout = 15 * time.Second
)

// Client 封装与远端健康数据存储的 HTTP 交互。
// 鉴权令牌始终以查询参数形式附加到每个请求上。
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option 用于自定义 Client 行为。
type Option func(*Client)

// WithHTTPClient 允许传入调用方自定义的 http.Client。
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// NewClient 构造远端存储客户端，默认使用 15 秒超时。
func NewClient(baseURL, token string, opts ...Option) *Client {
	client := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   strings.TrimSpace(token),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return client
}

// endpoint 拼接最终请求路径，并附加令牌与额外查询参数。
func (c *Client) endpoint(path string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	query.Set("token", c.token)
	return c.baseURL + path + "?" + query.Encode()
}

// APIError 封装远端存储返回的错误响应，便于上层识别。
type APIError struct {
	StatusCode int             `json:"-"`
	Message    string          `json:"message"`
	Raw        json.RawMessage `json:"raw,omitempty"`
}

// Error 实现 error 接口。
func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// do 发起请求并统一处理状态码与响应体解析。out 为 nil 时仅校验状态码。
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any, out any) error {
	if c == nil {
		return fmt.Errorf("healthapi client is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return parseAPIError(resp.StatusCode, rawBody)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(rawBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// CreateEntry 新建一条日级记录，返回带服务端标识的完整记录。
func (c *Client) CreateEntry(ctx context.Context, entry Entry) (Entry, error) {
	var created Entry
	if err := c.do(ctx, http.MethodPost, "/api/health", nil, entry, &created); err != nil {
		return Entry{}, err
	}
	return created, nil
}

// UpdateEntry 按服务端标识更新记录。
func (c *Client) UpdateEntry(ctx context.Context, id uint, entry Entry) (Entry, error) {
	var updated Entry
	path := fmt.Sprintf("/api/health/%d", id)
	if err := c.do(ctx, http.MethodPut, path, nil, entry, &updated); err != nil {
		return Entry{}, err
	}
	return updated, nil
}

// Latest 返回最近一条记录，远端为空时返回 nil。
func (c *Client) Latest(ctx context.Context) (*Entry, error) {
	var entry *Entry
	if err := c.do(ctx, http.MethodGet, "/api/health/latest", nil, nil, &entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// EntryByDate 返回指定日期的记录，不存在时返回 nil。
func (c *Client) EntryByDate(ctx context.Context, date string) (*Entry, error) {
	var entry *Entry
	path := "/api/health/date/" + url.PathEscape(date)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Entries 返回记录列表。limit <= 0 时不限定数量，startDate 为空时不限定起始日期。
func (c *Client) Entries(ctx context.Context, limit int, startDate string) ([]Entry, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", fmt.Sprintf("%d", limit))
	}
	if startDate != "" {
		query.Set("start_date", startDate)
	}

	var entries []Entry
	if err := c.do(ctx, http.MethodGet, "/api/health", query, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Stats 返回最近 days 天的聚合统计。
func (c *Client) Stats(ctx context.Context, days int) (Stats, error) {
	query := url.Values{}
	query.Set("days", fmt.Sprintf("%d", days))

	var stats Stats
	if err := c.do(ctx, http.MethodGet, "/api/health/stats", query, nil, &stats); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

// Chart 返回指定线上字段最近 days 天的时间序列。
func (c *Client) Chart(ctx context.Context, field string, days int) (ChartData, error) {
	query := url.Values{}
	query.Set("days", fmt.Sprintf("%d", days))

	var chart ChartData
	path := "/api/health/chart/" + url.PathEscape(field)
	if err := c.do(ctx, http.MethodGet, path, query, nil, &chart); err != nil {
		return ChartData{}, err
	}
	return chart, nil
}

// Me 返回当前令牌对应的用户身份。
func (c *Client) Me(ctx context.Context) (UserInfo, error) {
	var info UserInfo
	if err := c.do(ctx, http.MethodGet, "/api/user/me", nil, nil, &info); err != nil {
		return UserInfo{}, err
	}
	return info, nil
}

// Probe 访问轻量配置接口作为存活探测，任意 2xx 即视为在线。
func (c *Client) Probe(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/user/config", nil, nil, nil)
}

// parseAPIError 将远端的错误包裹解析为 *APIError，方便上层做类型化处理。
func parseAPIError(status int, payload []byte) error {
	if len(payload) == 0 {
		return &APIError{
			StatusCode: status,
			Message:    fmt.Sprintf("health api error: status %d", status),
		}
	}

	var env struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(payload, &env); err != nil || env.Detail == "" {
		return &APIError{
			StatusCode: status,
			Message:    fmt.Sprintf("health api error: status %d, body: %s", status, string(payload)),
			Raw:        payload,
		}
	}
	return &APIError{
		StatusCode: status,
		Message:    env.Detail,
		Raw:        payload,
	}
}
