package service

import (
	"context"
	"errors"
	"testing"

	"github.com/xiaozhang0801/ost/internal/model"
	"github.com/xiaozhang0801/ost/internal/repository"
	"github.com/xiaozhang0801/ost/pkg/shopify"
)

// ==================== 测试辅助 ====================

func newCarrierService(t *testing.T, cfg CarrierConfig) (*CarrierService, repository.ShopSessionRepository) {
	db := setupRuleTestDB(t)
	if err := db.AutoMigrate(&model.ShopSession{}); err != nil {
		t.Fatalf("建表失败: %v", err)
	}

	sessionRepo := repository.NewShopSessionRepository(db)
	ruleRepo := repository.NewShippingRuleRepository(db)
	return NewCarrierService(cfg, shopify.NewAdminClient(), sessionRepo, ruleRepo), sessionRepo
}

// ==================== 单元测试 ====================

func TestCarrierService_CallbackURL(t *testing.T) {
	cases := []struct {
		appURL string
		want   string
	}{
		{"https://app.example.com", "https://app.example.com/api/carrier/callback"},
		{"https://app.example.com/", "https://app.example.com/api/carrier/callback"},
	}
	for _, c := range cases {
		svc, _ := newCarrierService(t, CarrierConfig{AppURL: c.appURL, ServiceName: "自定义运费"})
		if got := svc.CallbackURL(); got != c.want {
			t.Errorf("CallbackURL(%q) = %q, want %q", c.appURL, got, c.want)
		}
	}
}

func TestCarrierService_NotInstalledShop(t *testing.T) {
	svc, _ := newCarrierService(t, CarrierConfig{AppURL: "https://app.example.com", ServiceName: "自定义运费"})
	ctx := context.Background()

	// 没有会话记录的店铺在发起任何平台请求前就被拦下
	if _, err := svc.List(ctx, "ghost.myshopify.com"); !errors.Is(err, ErrShopNotInstalled) {
		t.Errorf("List 应返回未安装: %v", err)
	}
	if _, err := svc.Ensure(ctx, "ghost.myshopify.com", ""); !errors.Is(err, ErrShopNotInstalled) {
		t.Errorf("Ensure 应返回未安装: %v", err)
	}
	if _, err := svc.Diagnose(ctx, "ghost.myshopify.com"); !errors.Is(err, ErrShopNotInstalled) {
		t.Errorf("Diagnose 应返回未安装: %v", err)
	}
}

func TestSessionRepo_Upsert(t *testing.T) {
	_, sessionRepo := newCarrierService(t, CarrierConfig{})
	ctx := context.Background()

	if err := sessionRepo.Upsert(ctx, &model.ShopSession{
		Shop:        "demo.myshopify.com",
		AccessToken: "token-v1",
		Scope:       "write_shipping",
	}); err != nil {
		t.Fatalf("写入会话失败: %v", err)
	}

	// 同店铺再次写入应覆盖令牌而不是新增记录
	if err := sessionRepo.Upsert(ctx, &model.ShopSession{
		Shop:        "demo.myshopify.com",
		AccessToken: "token-v2",
		Scope:       "write_shipping",
	}); err != nil {
		t.Fatalf("二次写入失败: %v", err)
	}

	session, err := sessionRepo.GetByShop(ctx, "demo.myshopify.com")
	if err != nil {
		t.Fatalf("查询会话失败: %v", err)
	}
	if session.AccessToken != "token-v2" {
		t.Errorf("令牌应被覆盖: %s", session.AccessToken)
	}
}
