/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-14 11:40:52
 * @FilePath: \health-companion-app\internal\infra\provider\bridge.go
 * @LastEditTime: 2025-10-14 11:40:57
 */
package provider

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
	// defaultBridgeTimeout 控制到设备侧 Bridge 的 HTTP 请求超时。
	defaultBridgeTimeout = 10 * time.Second
)

// Bridge 通过设备本地的 Health Bridge 服务读取平台健康数据。
// Bridge 进程持有真正的平台 SDK 会话，这里只做 HTTP 转译。
type Bridge struct {
	baseURL    string
	httpClient *http.Client
}

// BridgeOption 用于自定义 Bridge 行为。
type BridgeOption func(*Bridge)

// WithBridgeHTTPClient 允许传入调用方自定义的 http.Client。
func WithBridgeHTTPClient(client *http.Client) BridgeOption {
	return func(b *Bridge) {
		b.httpClient = client
	}
}

// NewBridge 构造 Bridge 数据源，默认使用 10 秒超时。
func NewBridge(baseURL string, opts ...BridgeOption) *Bridge {
	bridge := &Bridge{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultBridgeTimeout,
		},
	}
	for _, opt := range opts {
		opt(bridge)
	}
	if bridge.httpClient == nil {
		bridge.httpClient = &http.Client{Timeout: defaultBridgeTimeout}
	}
	return bridge
}

// permissionRequest 是授权申请的请求体。
type permissionRequest struct {
	Read []Metric `json:"read"`
}

// Initialize 向 Bridge 申请只读授权，非 2xx 状态视为授权失败。
func (b *Bridge) Initialize(ctx context.Context) error {
	if b == nil {
		return fmt.Errorf("bridge provider is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	body, err := json.Marshal(permissionRequest{Read: ReadCapabilities})
	if err != nil {
		return fmt.Errorf("marshal permission request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/permissions", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build permission request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request permissions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("permissions denied: status %d, body: %s", resp.StatusCode, string(payload))
	}
	return nil
}

// bridgeSample 是 Bridge 返回的样本线上格式。
// 数值指标填 value/unit，睡眠指标以 state 表达阶段。
type bridgeSample struct {
	Value     float64 `json:"value"`
	Unit      string  `json:"unit,omitempty"`
	StartDate string  `json:"startDate"`
	EndDate   string  `json:"endDate"`
	State     string  `json:"state,omitempty"`
}

// Query 查询指标样本。from 为零值时不携带 start 参数，表示不限定下界。
func (b *Bridge) Query(ctx context.Context, metric Metric, from, to time.Time) ([]Sample, error) {
	if b == nil {
		return nil, fmt.Errorf("bridge provider is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	query := url.Values{}
	if !from.IsZero() {
		query.Set("start", from.Format(time.RFC3339))
	}
	if !to.IsZero() {
		query.Set("end", to.Format(time.RFC3339))
	}

	endpoint := fmt.Sprintf("%s/samples/%s", b.baseURL, url.PathEscape(string(metric)))
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build sample request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query %s samples: %w", metric, err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read sample response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("query %s samples: status %d, body: %s", metric, resp.StatusCode, string(rawBody))
	}

	var raw []bridgeSample
	if err := json.Unmarshal(rawBody, &raw); err != nil {
		return nil, fmt.Errorf("decode sample response: %w", err)
	}

	samples := make([]Sample, 0, len(raw))
	for _, item := range raw {
		sample := Sample{
			Value: item.Value,
			Unit:  item.Unit,
			State: SleepState(item.State),
		}
		if item.StartDate != "" {
			if parsed, err := time.Parse(time.RFC3339, item.StartDate); err == nil {
				sample.Start = parsed
			}
		}
		if item.EndDate != "" {
			if parsed, err := time.Parse(time.RFC3339, item.EndDate); err == nil {
				sample.End = parsed
			}
		}
		samples = append(samples, sample)
	}
	return samples, nil
}
