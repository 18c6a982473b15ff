package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiaozhang0801/ost/internal/model"
)

// ==================== ShippingRule 接口定义 ====================

// ShippingRuleRepository 运费规则仓储接口。
// 报价引擎只消费 ListByShop；后台写路径使用其余方法。
type ShippingRuleRepository interface {
	// 查询
	ListByShop(ctx context.Context, shop string) ([]model.ShippingRule, error)
	GetForShop(ctx context.Context, id, shop string) (*model.ShippingRule, error)
	NameExists(ctx context.Context, shop, name, excludeID string) (bool, error)

	// 写入（区间整体替换，单事务）
	Create(ctx context.Context, rule *model.ShippingRule) error
	UpdateWithRanges(ctx context.Context, rule *model.ShippingRule) error

	// 删除（级联删除区间）
	DeleteForShop(ctx context.Context, id, shop string) error
	BatchDeleteForShop(ctx context.Context, ids []string, shop string) (int64, error)
}

// ==================== ShippingRule 实现 ====================

type shippingRuleRepo struct {
	db *gorm.DB
}

// NewShippingRuleRepository 创建运费规则仓储
func NewShippingRuleRepository(db *gorm.DB) ShippingRuleRepository {
	return &shippingRuleRepo{db: db}
}

func (r *shippingRuleRepo) ListByShop(ctx context.Context, shop string) ([]model.ShippingRule, error) {
	var list []model.ShippingRule
	err := r.db.WithContext(ctx).
		Preload("Ranges").
		Where("shop = ?", shop).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *shippingRuleRepo) GetForShop(ctx context.Context, id, shop string) (*model.ShippingRule, error) {
	var rule model.ShippingRule
	err := r.db.WithContext(ctx).
		Preload("Ranges").
		Where("id = ? AND shop = ?", id, shop).
		First(&rule).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *shippingRuleRepo) NameExists(ctx context.Context, shop, name, excludeID string) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&model.ShippingRule{}).
		Where("shop = ? AND name = ?", shop, name)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *shippingRuleRepo) Create(ctx context.Context, rule *model.ShippingRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

// UpdateWithRanges 更新规则标量字段并整体重建区间。
// 单事务执行，读侧不会观察到旧标量 + 新区间的混合状态。
func (r *shippingRuleRepo) UpdateWithRanges(ctx context.Context, rule *model.ShippingRule) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fields := map[string]interface{}{
			"name":        rule.Name,
			"charge_by":   rule.ChargeBy,
			"countries":   rule.Countries,
			"description": rule.Description,
		}
		if err := tx.Model(&model.ShippingRule{}).
			Where("id = ?", rule.ID).
			Updates(fields).Error; err != nil {
			return err
		}

		if err := tx.Where("rule_id = ?", rule.ID).
			Delete(&model.ShippingRange{}).Error; err != nil {
			return err
		}

		for i := range rule.Ranges {
			rule.Ranges[i].ID = 0
			rule.Ranges[i].RuleID = rule.ID
		}
		if len(rule.Ranges) > 0 {
			if err := tx.Create(&rule.Ranges).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *shippingRuleRepo) DeleteForShop(ctx context.Context, id, shop string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND shop = ?", id, shop).
			Delete(&model.ShippingRule{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("rule_id = ?", id).
			Delete(&model.ShippingRange{}).Error
	})
}

func (r *shippingRuleRepo) BatchDeleteForShop(ctx context.Context, ids []string, shop string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 只删除归属本店铺的规则
		var owned []string
		if err := tx.Model(&model.ShippingRule{}).
			Where("shop = ? AND id IN ?", shop, ids).
			Pluck("id", &owned).Error; err != nil {
			return err
		}
		if len(owned) == 0 {
			return nil
		}

		result := tx.Where("id IN ?", owned).Delete(&model.ShippingRule{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected

		return tx.Where("rule_id IN ?", owned).
			Delete(&model.ShippingRange{}).Error
	})
	return deleted, err
}
