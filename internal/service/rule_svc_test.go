package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiaozhang0801/ost/internal/api/dto"
	"github.com/xiaozhang0801/ost/internal/model"
	"github.com/xiaozhang0801/ost/internal/repository"
)

// ==================== 测试辅助 ====================

func setupRuleTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	if err := db.AutoMigrate(&model.ShippingRule{}, &model.ShippingRange{}); err != nil {
		t.Fatalf("建表失败: %v", err)
	}
	return db
}

func newRuleService(t *testing.T) (*ShippingRuleService, repository.ShippingRuleRepository) {
	repo := repository.NewShippingRuleRepository(setupRuleTestDB(t))
	return NewShippingRuleService(repo), repo
}

// saveReq 从 JSON 构造保存请求，顺带覆盖宽松字段的解析路径
func saveReq(t *testing.T, payload string) *dto.ShippingRuleSaveReq {
	var req dto.ShippingRuleSaveReq
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		t.Fatalf("构造请求失败: %v", err)
	}
	return &req
}

const basicRulePayload = `{
	"name": "欧美专线",
	"chargeBy": "weight",
	"countries": ["us", {"code": "CA"}, "英国"],
	"ranges": [
		{"from": 1, "to": 3, "pricePer": "8", "fee": 5, "feeUnit": "USD"},
		{"from": "0", "to": "1", "pricePer": 10, "fee": "5"}
	]
}`

// ==================== 单元测试 ====================

func TestRuleService_Create(t *testing.T) {
	svc, repo := newRuleService(t)
	ctx := context.Background()

	result, err := svc.Save(ctx, "demo.myshopify.com", saveReq(t, basicRulePayload))
	if err != nil {
		t.Fatalf("创建规则失败: %v", err)
	}
	if !result.Created || result.Rule.ID == "" {
		t.Error("创建结果应带 created 标记与生成的 id")
	}

	// 国家在写入前就标准化
	if got := []string(result.Rule.Countries); len(got) != 3 || got[0] != "US" || got[1] != "CA" || got[2] != "GB" {
		t.Errorf("国家未标准化: %v", got)
	}

	// 区间落库前按 (fromVal, toVal) 排序
	saved, err := repo.GetForShop(ctx, result.Rule.ID, "demo.myshopify.com")
	if err != nil {
		t.Fatalf("回读失败: %v", err)
	}
	if len(saved.Ranges) != 2 || !saved.Ranges[0].FromVal.Equal(dec("0")) {
		t.Errorf("区间未按升序保存: %v", saved.Ranges)
	}
	if saved.Ranges[0].Unit != model.UnitKG {
		t.Errorf("缺省单位应按计费方式补齐: %s", saved.Ranges[0].Unit)
	}
}

func TestRuleService_SaveRejectsIncompleteParams(t *testing.T) {
	svc, _ := newRuleService(t)
	ctx := context.Background()

	cases := []string{
		`{"name": "  ", "ranges": [{"from": 0, "to": 1, "pricePer": 1, "fee": 0}]}`,
		`{"name": "规则A", "ranges": []}`,
	}
	for _, payload := range cases {
		if _, err := svc.Save(ctx, "demo.myshopify.com", saveReq(t, payload)); !errors.Is(err, ErrIncompleteParams) {
			t.Errorf("应返回参数不完整: got %v", err)
		}
	}
}

func TestRuleService_SaveRejectsInvalidRanges(t *testing.T) {
	svc, _ := newRuleService(t)
	ctx := context.Background()

	// 重叠 + 非数字 + 负费用，全部违规一次返回
	payload := `{
		"name": "坏规则",
		"chargeBy": "weight",
		"countries": ["US"],
		"ranges": [
			{"from": 0, "to": 3, "pricePer": 10, "fee": 0},
			{"from": 2, "to": 5, "pricePer": "abc", "fee": -1}
		]
	}`
	_, err := svc.Save(ctx, "demo.myshopify.com", saveReq(t, payload))

	var validationErr *RangeValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("应返回区间校验错误: got %v", err)
	}
	if len(validationErr.Errors) < 3 {
		t.Errorf("应收集全部违规项: %v", validationErr.Errors)
	}
}

func TestRuleService_NameDuplicate(t *testing.T) {
	svc, _ := newRuleService(t)
	ctx := context.Background()
	shop := "demo.myshopify.com"

	if _, err := svc.Save(ctx, shop, saveReq(t, basicRulePayload)); err != nil {
		t.Fatalf("首次创建失败: %v", err)
	}

	// 同店同名拒绝
	if _, err := svc.Save(ctx, shop, saveReq(t, basicRulePayload)); !errors.Is(err, ErrNameDuplicate) {
		t.Errorf("同名规则应拒绝: got %v", err)
	}

	// 其他店铺不受影响
	if _, err := svc.Save(ctx, "other.myshopify.com", saveReq(t, basicRulePayload)); err != nil {
		t.Errorf("跨店同名应允许: %v", err)
	}
}

func TestRuleService_UpdateReplacesRanges(t *testing.T) {
	svc, repo := newRuleService(t)
	ctx := context.Background()
	shop := "demo.myshopify.com"

	created, err := svc.Save(ctx, shop, saveReq(t, basicRulePayload))
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}

	update := saveReq(t, `{
		"id": "`+created.Rule.ID+`",
		"name": "欧美专线v2",
		"chargeBy": "quantity",
		"countries": ["JP"],
		"ranges": [{"from": 1, "to": 10, "pricePer": 2, "fee": 0, "feeUnit": "JPY"}]
	}`)
	result, err := svc.Save(ctx, shop, update)
	if err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	if !result.Updated {
		t.Error("更新结果应带 updated 标记")
	}

	saved, err := repo.GetForShop(ctx, created.Rule.ID, shop)
	if err != nil {
		t.Fatalf("回读失败: %v", err)
	}
	if saved.Name != "欧美专线v2" || saved.ChargeBy != model.ChargeByQuantity {
		t.Errorf("标量字段未更新: %+v", saved)
	}
	// 区间整体替换，旧区间不残留
	if len(saved.Ranges) != 1 || !saved.Ranges[0].ToVal.Equal(dec("10")) {
		t.Errorf("区间应整体替换: %v", saved.Ranges)
	}
	if saved.Ranges[0].Unit != model.UnitPiece {
		t.Errorf("单位应随计费方式切换: %s", saved.Ranges[0].Unit)
	}
}

func TestRuleService_UpdateUniform404(t *testing.T) {
	svc, _ := newRuleService(t)
	ctx := context.Background()

	created, err := svc.Save(ctx, "demo.myshopify.com", saveReq(t, basicRulePayload))
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}

	// 不存在的 id 与他店的 id 返回同一个错误，不泄露归属信息
	missing := saveReq(t, `{"id": "no-such-id", "name": "x", "ranges": [{"from": 0, "to": 1, "pricePer": 1, "fee": 0}]}`)
	if _, err := svc.Save(ctx, "demo.myshopify.com", missing); !errors.Is(err, ErrRuleNotFound) {
		t.Errorf("不存在的 id 应 404: got %v", err)
	}

	foreign := saveReq(t, `{"id": "`+created.Rule.ID+`", "name": "x", "ranges": [{"from": 0, "to": 1, "pricePer": 1, "fee": 0}]}`)
	if _, err := svc.Save(ctx, "other.myshopify.com", foreign); !errors.Is(err, ErrRuleNotFound) {
		t.Errorf("他店的 id 应 404: got %v", err)
	}
}

func TestRuleService_ListNormalizesAndSorts(t *testing.T) {
	svc, repo := newRuleService(t)
	ctx := context.Background()
	shop := "demo.myshopify.com"

	// 直接写入未标准化的历史数据
	rule := &model.ShippingRule{
		Shop:      shop,
		Name:      "历史规则",
		ChargeBy:  model.ChargeByWeight,
		Countries: []string{"usa", "中国"},
		Ranges: []model.ShippingRange{
			{FromVal: dec("3"), ToVal: dec("5"), PricePer: dec("6"), Fee: dec("0"), Unit: model.UnitKG},
			{FromVal: dec("0"), ToVal: dec("3"), PricePer: dec("8"), Fee: dec("0"), Unit: model.UnitKG},
		},
	}
	if err := repo.Create(ctx, rule); err != nil {
		t.Fatalf("写入失败: %v", err)
	}

	rules, err := svc.List(ctx, shop)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("规则数不符: %d", len(rules))
	}
	if got := []string(rules[0].Countries); got[0] != "US" || got[1] != "CN" {
		t.Errorf("读取时国家未标准化: %v", got)
	}
	if !rules[0].Ranges[0].FromVal.Equal(dec("0")) {
		t.Errorf("读取时区间未排序: %v", rules[0].Ranges)
	}
}

func TestRuleService_Delete(t *testing.T) {
	svc, _ := newRuleService(t)
	ctx := context.Background()
	shop := "demo.myshopify.com"

	created, err := svc.Save(ctx, shop, saveReq(t, basicRulePayload))
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}

	// 他店删除不可见
	if err := svc.Delete(ctx, "other.myshopify.com", created.Rule.ID); !errors.Is(err, ErrRuleNotFound) {
		t.Errorf("他店删除应 404: got %v", err)
	}

	if err := svc.Delete(ctx, shop, created.Rule.ID); err != nil {
		t.Fatalf("删除失败: %v", err)
	}
	if err := svc.Delete(ctx, shop, created.Rule.ID); !errors.Is(err, ErrRuleNotFound) {
		t.Errorf("重复删除应 404: got %v", err)
	}
}

func TestRuleService_BatchDeleteSkipsForeign(t *testing.T) {
	svc, _ := newRuleService(t)
	ctx := context.Background()

	mine, err := svc.Save(ctx, "demo.myshopify.com", saveReq(t, basicRulePayload))
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	other, err := svc.Save(ctx, "other.myshopify.com", saveReq(t, basicRulePayload))
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}

	deleted, err := svc.BatchDelete(ctx, "demo.myshopify.com",
		[]string{mine.Rule.ID, other.Rule.ID, "no-such-id"})
	if err != nil {
		t.Fatalf("批量删除失败: %v", err)
	}
	if deleted != 1 {
		t.Errorf("只应删除本店规则: deleted=%d", deleted)
	}

	// 他店规则不受影响
	rules, err := svc.List(ctx, "other.myshopify.com")
	if err != nil || len(rules) != 1 {
		t.Errorf("他店规则被误删: rules=%d err=%v", len(rules), err)
	}
}
