package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/xiaozhang0801/ost/internal/api/dto"
	"github.com/xiaozhang0801/ost/internal/repository"
	"github.com/xiaozhang0801/ost/pkg/shopify"
)

// ErrShopNotInstalled 店铺没有可用的离线会话，无法调用 Admin API
var ErrShopNotInstalled = errors.New("店铺未安装或会话已失效")

// CarrierConfig 承运商服务配置
type CarrierConfig struct {
	AppURL      string // 应用公网地址（必须为 https）
	ServiceName string // 平台侧展示的服务名称
}

// CarrierService 承运商服务注册与诊断
type CarrierService struct {
	cfg         CarrierConfig
	admin       *shopify.AdminClient
	sessionRepo repository.ShopSessionRepository
	ruleRepo    repository.ShippingRuleRepository
}

func NewCarrierService(
	cfg CarrierConfig,
	admin *shopify.AdminClient,
	sessionRepo repository.ShopSessionRepository,
	ruleRepo repository.ShippingRuleRepository,
) *CarrierService {
	return &CarrierService{
		cfg:         cfg,
		admin:       admin,
		sessionRepo: sessionRepo,
		ruleRepo:    ruleRepo,
	}
}

// CallbackURL 期望的询价回调地址
func (s *CarrierService) CallbackURL() string {
	return strings.TrimRight(s.cfg.AppURL, "/") + "/api/carrier/callback"
}

func (s *CarrierService) token(ctx context.Context, shop string) (string, error) {
	session, err := s.sessionRepo.GetByShop(ctx, shop)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrShopNotInstalled
		}
		return "", err
	}
	return session.AccessToken, nil
}

// List 列出店铺当前的承运商服务
func (s *CarrierService) List(ctx context.Context, shop string) ([]dto.CarrierServiceBrief, error) {
	token, err := s.token(ctx, shop)
	if err != nil {
		return nil, err
	}

	services, err := s.admin.ListCarrierServices(ctx, shop, token)
	if err != nil {
		return nil, err
	}
	return toBriefs(services), nil
}

// Ensure 确保承运商服务已注册且回调地址正确：
// 不存在则创建，存在则把回调地址纠正到当前应用地址。
// 平台返回 already configured 视为已存在，继续返回当前列表。
func (s *CarrierService) Ensure(ctx context.Context, shop, nameOverride string) (*dto.CarrierEnsureResp, error) {
	token, err := s.token(ctx, shop)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(nameOverride)
	if name == "" {
		name = s.cfg.ServiceName
	}
	callbackURL := s.CallbackURL()
	desired := shopify.CarrierService{
		Name:             name,
		CallbackURL:      callbackURL,
		ServiceDiscovery: true,
	}

	services, err := s.admin.ListCarrierServices(ctx, shop, token)
	if err != nil {
		return nil, err
	}

	var existing *shopify.CarrierService
	for i := range services {
		if services[i].Name == name {
			existing = &services[i]
			break
		}
	}

	if existing == nil {
		if _, err := s.admin.CreateCarrierService(ctx, shop, token, desired); err != nil {
			if !shopify.IsAlreadyConfigured(err) {
				return nil, err
			}
			log.Printf("[Carrier] 店铺 %s 的承运商服务已配置，跳过创建", shop)
		}
	} else {
		if err := s.admin.UpdateCarrierService(ctx, shop, token, existing.ID, desired); err != nil {
			log.Printf("[Carrier] 更新承运商服务失败（继续返回当前列表）: %v", err)
		}
	}

	after, err := s.admin.ListCarrierServices(ctx, shop, token)
	if err != nil {
		return nil, err
	}

	return &dto.CarrierEnsureResp{
		OK:          true,
		Shop:        shop,
		NameUsed:    name,
		CallbackURL: callbackURL,
		Services:    toBriefs(after),
	}, nil
}

// Diagnose 检查回调配置、重复服务与规则覆盖情况
func (s *CarrierService) Diagnose(ctx context.Context, shop string) (*dto.CarrierDiagnoseResp, error) {
	resp := &dto.CarrierDiagnoseResp{
		OK:                  true,
		Shop:                shop,
		ExpectedOrigin:      s.cfg.AppURL,
		HTTPSRequired:       true,
		HTTPSOK:             strings.HasPrefix(s.cfg.AppURL, "https://"),
		ExpectedCallbackURL: s.CallbackURL(),
		Services:            []dto.CarrierServiceBrief{},
		Duplicates:          []dto.CarrierDuplicate{},
		RulesBrief:          []dto.RuleBrief{},
	}

	token, err := s.token(ctx, shop)
	if err != nil {
		return nil, err
	}

	services, err := s.admin.ListCarrierServices(ctx, shop, token)
	if err != nil {
		return nil, err
	}
	resp.Services = toBriefs(services)

	// 同名服务分组，条数大于 1 视为重复
	groups := map[string][]dto.CarrierServiceBrief{}
	order := []string{}
	for _, b := range resp.Services {
		key := strings.TrimSpace(b.Name)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], b)
	}
	for _, key := range order {
		if items := groups[key]; len(items) > 1 {
			resp.Duplicates = append(resp.Duplicates, dto.CarrierDuplicate{
				Name:  key,
				Count: len(items),
				Items: items,
			})
		}
	}

	rules, err := s.ruleRepo.ListByShop(ctx, shop)
	if err != nil {
		return nil, fmt.Errorf("读取规则失败: %w", err)
	}
	resp.RulesCount = len(rules)
	for i := range rules {
		rule := &rules[i]
		SortRanges(rule.Ranges)

		brief := dto.RuleBrief{
			ID:             rule.ID,
			Name:           rule.Name,
			ChargeBy:       rule.ChargeBy,
			CountriesCount: len(rule.Countries),
			RangesCount:    len(rule.Ranges),
		}
		if len(rule.Ranges) > 0 {
			first := rule.Ranges[0]
			brief.ExampleRange = &dto.RangeBrief{
				From: first.FromVal.String(),
				To:   first.ToVal.String(),
				Unit: first.Unit,
			}
		}
		resp.RulesBrief = append(resp.RulesBrief, brief)
	}

	return resp, nil
}

func toBriefs(services []shopify.CarrierService) []dto.CarrierServiceBrief {
	briefs := make([]dto.CarrierServiceBrief, 0, len(services))
	for _, s := range services {
		briefs = append(briefs, dto.CarrierServiceBrief{
			ID:               s.ID,
			Name:             s.Name,
			CallbackURL:      s.CallbackURL,
			ServiceDiscovery: s.ServiceDiscovery,
		})
	}
	return briefs
}
