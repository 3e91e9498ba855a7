package sqlstore

import (
	"context"

	"gorm.io/gorm"

	"ict-ticketing/internal/domain/request"
	"ict-ticketing/internal/domain/uow"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func reposFor(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Users:    &UserRepository{db: tx},
		Devices:  &DeviceRepository{db: tx},
		Requests: &RequestRepository{db: tx},
	}
}

func (u *GormUoW) WithinRequestTx(ctx context.Context, requestID uint64, fn func(r uow.Repos, req *request.Request) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		// lock the request row up-front so concurrent deciders serialise
		req, err := r.Requests.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		return fn(r, req)
	})
}
