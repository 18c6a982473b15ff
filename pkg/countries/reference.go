package countries

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// restcountries 公共接口，只取名称与 ISO2
const referenceURL = "https://restcountries.com/v3.1/all?fields=name,cca2"

// Option 后台下拉用的国家选项
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// 第三方接口不可用时的常用国家回退列表
var fallbackOptions = []Option{
	{Label: "United States", Value: "US"},
	{Label: "China", Value: "CN"},
	{Label: "Canada", Value: "CA"},
	{Label: "United Kingdom", Value: "GB"},
	{Label: "Australia", Value: "AU"},
	{Label: "Germany", Value: "DE"},
	{Label: "France", Value: "FR"},
	{Label: "Japan", Value: "JP"},
}

// Service 国家参考列表服务。
// 列表仅用于后台选择国家，允许在 TTL 内返回旧数据；过期后懒刷新。
// 报价计算不依赖该列表。
type Service struct {
	client *resty.Client
	ttl    time.Duration

	mu      sync.Mutex
	cached  []Option
	expires time.Time
}

func NewService(ttl time.Duration) *Service {
	client := resty.New()
	client.SetTimeout(10 * time.Second)
	client.SetRetryCount(2)

	return &Service{
		client: client,
		ttl:    ttl,
	}
}

// List 返回国家选项列表；缓存命中直接返回，过期则尝试刷新。
// 刷新失败时优先沿用旧缓存，其次退回内置列表，从不报错。
func (s *Service) List(ctx context.Context) []Option {
	s.mu.Lock()
	if len(s.cached) > 0 && time.Now().Before(s.expires) {
		cached := s.cached
		s.mu.Unlock()
		return cached
	}
	s.mu.Unlock()

	if err := s.Refresh(ctx); err != nil {
		log.Printf("[Countries] 国家列表刷新失败，使用回退数据: %v", err)
		s.mu.Lock()
		defer s.mu.Unlock()
		if len(s.cached) > 0 {
			return s.cached
		}
		return fallbackOptions
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cached
}

// Refresh 拉取 restcountries 并重建缓存
func (s *Service) Refresh(ctx context.Context) error {
	var result []struct {
		Name struct {
			Common string `json:"common"`
		} `json:"name"`
		CCA2 string `json:"cca2"`
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(&result).
		Get(referenceURL)
	if err != nil {
		return fmt.Errorf("请求国家列表失败: %w", err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("国家列表接口返回状态码 %d", resp.StatusCode())
	}

	options := make([]Option, 0, len(result))
	for _, c := range result {
		if c.CCA2 == "" {
			continue
		}
		label := c.Name.Common
		if label == "" {
			label = c.CCA2
		}
		options = append(options, Option{Label: label, Value: c.CCA2})
	}
	if len(options) == 0 {
		return fmt.Errorf("国家列表接口返回空数据")
	}
	sort.Slice(options, func(i, j int) bool {
		return options[i].Label < options[j].Label
	})

	s.mu.Lock()
	s.cached = options
	s.expires = time.Now().Add(s.ttl)
	s.mu.Unlock()

	return nil
}
