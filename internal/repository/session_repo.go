package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiaozhang0801/ost/internal/model"
)

// ShopSessionRepository 店铺会话仓储接口
type ShopSessionRepository interface {
	GetByShop(ctx context.Context, shop string) (*model.ShopSession, error)
	Upsert(ctx context.Context, session *model.ShopSession) error
}

type shopSessionRepo struct {
	db *gorm.DB
}

// NewShopSessionRepository 创建店铺会话仓储
func NewShopSessionRepository(db *gorm.DB) ShopSessionRepository {
	return &shopSessionRepo{db: db}
}

func (r *shopSessionRepo) GetByShop(ctx context.Context, shop string) (*model.ShopSession, error) {
	var session model.ShopSession
	err := r.db.WithContext(ctx).
		Where("shop = ?", shop).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *shopSessionRepo) Upsert(ctx context.Context, session *model.ShopSession) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.ShopSession
		err := tx.Where("shop = ?", session.Shop).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(session).Error
		}
		if err != nil {
			return err
		}
		session.ID = existing.ID
		return tx.Save(session).Error
	})
}
