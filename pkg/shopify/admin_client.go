// Package shopify 封装用到的 Shopify Admin REST 接口（承运商服务）。
package shopify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultAPIVersion = "2024-04"

// CarrierService 平台侧承运商服务记录
type CarrierService struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	CallbackURL      string `json:"callback_url"`
	ServiceDiscovery bool   `json:"service_discovery"`
}

// APIError Admin API 的非 2xx 响应
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("shopify admin api 返回 %d: %s", e.StatusCode, e.Body)
}

// IsAlreadyConfigured 判断创建承运商服务时的 422 already configured 冲突
func IsAlreadyConfigured(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.StatusCode == 422 && strings.Contains(apiErr.Body, "already configured")
}

// AdminClient Admin REST 客户端，按店铺域名 + 访问令牌调用
type AdminClient struct {
	client     *resty.Client
	apiVersion string
}

func NewAdminClient() *AdminClient {
	client := resty.New()
	client.SetTimeout(15 * time.Second)
	client.SetRetryCount(2)

	return &AdminClient{
		client:     client,
		apiVersion: defaultAPIVersion,
	}
}

func (c *AdminClient) url(shop, path string) string {
	return fmt.Sprintf("https://%s/admin/api/%s/%s", shop, c.apiVersion, path)
}

func (c *AdminClient) request(ctx context.Context, token string) *resty.Request {
	return c.client.R().
		SetContext(ctx).
		SetHeader("X-Shopify-Access-Token", token).
		SetHeader("Content-Type", "application/json")
}

// ListCarrierServices 列出店铺的承运商服务
func (c *AdminClient) ListCarrierServices(ctx context.Context, shop, token string) ([]CarrierService, error) {
	var result struct {
		CarrierServices []CarrierService `json:"carrier_services"`
	}

	resp, err := c.request(ctx, token).
		SetResult(&result).
		Get(c.url(shop, "carrier_services.json"))
	if err != nil {
		return nil, fmt.Errorf("请求承运商服务列表失败: %w", err)
	}
	if resp.IsError() {
		return nil, &APIError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	return result.CarrierServices, nil
}

// CreateCarrierService 注册承运商服务
func (c *AdminClient) CreateCarrierService(ctx context.Context, shop, token string, svc CarrierService) (*CarrierService, error) {
	var result struct {
		CarrierService CarrierService `json:"carrier_service"`
	}

	resp, err := c.request(ctx, token).
		SetBody(map[string]CarrierService{"carrier_service": svc}).
		SetResult(&result).
		Post(c.url(shop, "carrier_services.json"))
	if err != nil {
		return nil, fmt.Errorf("创建承运商服务失败: %w", err)
	}
	if resp.IsError() {
		return nil, &APIError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	return &result.CarrierService, nil
}

// UpdateCarrierService 更新承运商服务（名称 / 回调地址）
func (c *AdminClient) UpdateCarrierService(ctx context.Context, shop, token string, id int64, svc CarrierService) error {
	resp, err := c.request(ctx, token).
		SetBody(map[string]CarrierService{"carrier_service": svc}).
		Put(c.url(shop, fmt.Sprintf("carrier_services/%d.json", id)))
	if err != nil {
		return fmt.Errorf("更新承运商服务失败: %w", err)
	}
	if resp.IsError() {
		return &APIError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	return nil
}

// DeleteCarrierService 删除承运商服务
func (c *AdminClient) DeleteCarrierService(ctx context.Context, shop, token string, id int64) error {
	resp, err := c.request(ctx, token).
		Delete(c.url(shop, fmt.Sprintf("carrier_services/%d.json", id)))
	if err != nil {
		return fmt.Errorf("删除承运商服务失败: %w", err)
	}
	if resp.IsError() {
		return &APIError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	return nil
}
