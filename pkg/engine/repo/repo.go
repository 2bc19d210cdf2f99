package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/joripage/matching-engine/pkg/engine/model"
)

type ITrade interface {
	Create(ctx context.Context, record *model.Trade) error
	BulkCreate(ctx context.Context, records []*model.Trade) error
}

type IOrderEvent interface {
	Create(ctx context.Context, record *model.OrderEvent) error
	BulkCreate(ctx context.Context, records []*model.OrderEvent) error
}

type IRepo interface {
	Trade() ITrade
	OrderEvent() IOrderEvent
}

type Repo struct {
	engineDB *gorm.DB
}

func NewRepo(engineDB *gorm.DB) IRepo {
	return &Repo{engineDB: engineDB}
}

func (r *Repo) Trade() ITrade {
	return NewTradeSQLRepo(r.engineDB)
}

func (r *Repo) OrderEvent() IOrderEvent {
	return NewOrderEventSQLRepo(r.engineDB)
}
