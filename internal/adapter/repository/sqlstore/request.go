package sqlstore

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ict-ticketing/internal/domain/request"
)

type RequestRepository struct{ db *gorm.DB }

func NewRequestRepository(db *gorm.DB) *RequestRepository { return &RequestRepository{db: db} }

func (r *RequestRepository) Create(ctx context.Context, req *request.Request) error {
	err := r.db.WithContext(ctx).Omit("Requester").Create(req).Error
	if _, ok := uniqueViolation(err); ok {
		return request.ErrCodeCollision
	}
	return err
}

func (r *RequestRepository) GetByID(ctx context.Context, id uint64) (*request.Request, error) {
	var out request.Request
	if err := r.db.WithContext(ctx).First(&out, "id = ?", id).Error; err != nil {
		return nil, notFound(err, request.ErrNotFound)
	}
	return &out, nil
}

// GetByIDForUpdate issues SELECT ... FOR UPDATE; sqlite drops the locking clause.
func (r *RequestRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*request.Request, error) {
	var out request.Request
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&out, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, request.ErrNotFound)
	}
	return &out, nil
}

func (r *RequestRepository) ListByRequester(ctx context.Context, requesterID uint64) ([]request.Request, error) {
	out := make([]request.Request, 0)
	err := r.db.WithContext(ctx).
		Where("requester_id = ?", requesterID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

func (r *RequestRepository) ListByStatus(ctx context.Context, status request.Status) ([]request.Request, error) {
	out := make([]request.Request, 0)
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

// Save persists the mutable columns only. The row is expected to be locked by the caller.
func (r *RequestRepository) Save(ctx context.Context, req *request.Request) error {
	return r.db.WithContext(ctx).
		Model(req).
		Select("status", "reject_reason").
		Updates(req).Error
}
