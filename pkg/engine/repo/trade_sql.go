package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/joripage/matching-engine/pkg/engine/model"
)

type TradeSQLRepo struct {
	db *gorm.DB
}

func NewTradeSQLRepo(db *gorm.DB) *TradeSQLRepo {
	return &TradeSQLRepo{db: db}
}

func (r *TradeSQLRepo) dbWithContext(ctx context.Context) *gorm.DB {
	// trade id is the idempotency key: a replayed write is a no-op
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true})
}

func (r *TradeSQLRepo) Create(ctx context.Context, record *model.Trade) error {
	return r.dbWithContext(ctx).Create(record).Error
}

func (r *TradeSQLRepo) BulkCreate(ctx context.Context, records []*model.Trade) error {
	if len(records) == 0 {
		return nil
	}
	return r.dbWithContext(ctx).Create(records).Error
}
