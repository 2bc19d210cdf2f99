package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/joripage/matching-engine/pkg/engine/model"
)

type OrderEventSQLRepo struct {
	db *gorm.DB
}

func NewOrderEventSQLRepo(db *gorm.DB) *OrderEventSQLRepo {
	return &OrderEventSQLRepo{db: db}
}

func (r *OrderEventSQLRepo) dbWithContext(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true})
}

func (r *OrderEventSQLRepo) Create(ctx context.Context, record *model.OrderEvent) error {
	return r.dbWithContext(ctx).Create(record).Error
}

func (r *OrderEventSQLRepo) BulkCreate(ctx context.Context, records []*model.OrderEvent) error {
	if len(records) == 0 {
		return nil
	}
	return r.dbWithContext(ctx).Create(records).Error
}
