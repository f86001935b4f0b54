// Package client 检测审核服务的 HTTP 客户端，供命令行与终端审核界面使用
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// Client 检测审核 API 客户端
// 统一处理 {code, message, data} 响应信封
// =============================================================================

// APIError 服务端返回的业务错误
type APIError struct {
	Status  int    // HTTP 状态码
	Code    int    // 业务错误码
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error [%d/%d]: %s", e.Status, e.Code, e.Message)
}

// IsNotFound 是否为 404 类错误
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client API客户端
type Client struct {
	baseURL    string       // 服务地址，如 http://localhost:5000
	httpClient *http.Client // HTTP客户端
}

// NewClient 创建客户端实例
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithHTTPClient 替换底层 HTTP 客户端
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// doRequest 发送请求并解析信封
// 非 0 业务码返回 *APIError；result 非 nil 时即使出错也会尝试解析 data
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}

	if result != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	if env.Code != 0 || resp.StatusCode >= 400 {
		return &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Message}
	}
	return nil
}

// ListImages 参考号下的图片及损伤框
func (c *Client) ListImages(ctx context.Context, referenceNo string) ([]AnnotatedImage, error) {
	var images []AnnotatedImage
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/images/"+url.PathEscape(referenceNo), nil, &images); err != nil {
		return nil, err
	}
	return images, nil
}

// ListCarParts 部件列表
func (c *Client) ListCarParts(ctx context.Context) ([]CarPart, error) {
	var parts []CarPart
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/carparts", nil, &parts); err != nil {
		return nil, err
	}
	return parts, nil
}

// CostOfRepair 估算费用
func (c *Client) CostOfRepair(ctx context.Context, carPartID, damageTypeID, repairReplaceID int) (*Estimate, error) {
	q := url.Values{}
	q.Set("carPartMasterId", strconv.Itoa(carPartID))
	q.Set("damageTypeId", strconv.Itoa(damageTypeID))
	q.Set("repairReplaceId", strconv.Itoa(repairReplaceID))

	var est Estimate
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/carparts/costofrepair?"+q.Encode(), nil, &est); err != nil {
		return nil, err
	}
	return &est, nil
}

// ListAnnotations 某张图片已保存的损伤评估
func (c *Client) ListAnnotations(ctx context.Context, referenceNo, imageName string) ([]Annotation, error) {
	path := fmt.Sprintf("/api/v1/damageannotations/%s/%s", url.PathEscape(referenceNo), url.PathEscape(imageName))
	var items []Annotation
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CreateAnnotation 新增损伤评估，返回新记录ID
func (c *Client) CreateAnnotation(ctx context.Context, in AnnotationInput) (uint, error) {
	var created struct {
		ID uint `json:"id"`
	}
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/damageannotations", in, &created); err != nil {
		return 0, err
	}
	return created.ID, nil
}

// UpdateAnnotation 整体更新损伤评估
func (c *Client) UpdateAnnotation(ctx context.Context, id uint, in AnnotationUpdate) error {
	return c.doRequest(ctx, http.MethodPut, "/api/v1/damageannotations/"+strconv.FormatUint(uint64(id), 10), in, nil)
}

// DeleteAnnotation 删除损伤评估
func (c *Client) DeleteAnnotation(ctx context.Context, id uint) error {
	return c.doRequest(ctx, http.MethodDelete, "/api/v1/damageannotations/"+strconv.FormatUint(uint64(id), 10), nil, nil)
}

// SaveAll 批量保存；部分失败时同时返回逐行结果和 *APIError
func (c *Client) SaveAll(ctx context.Context, items []AnnotationInput, atomic bool) (*BatchResult, error) {
	path := "/api/v1/damageannotations/save"
	if atomic {
		path += "?atomic=true"
	}
	var result BatchResult
	err := c.doRequest(ctx, http.MethodPost, path, items, &result)
	return &result, err
}

// ImageReports 参考号汇总报告
func (c *Client) ImageReports(ctx context.Context, referenceNo string) (*Report, error) {
	var report Report
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/imageReports/"+url.PathEscape(referenceNo), nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// ExportReport 下载 xlsx 报告写入 w
func (c *Client) ExportReport(ctx context.Context, referenceNo string, w io.Writer) error {
	path := "/api/v1/imageReports/" + url.PathEscape(referenceNo) + "/export"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var env envelope
		_ = json.NewDecoder(resp.Body).Decode(&env)
		return &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Message}
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
