package request

import "context"

type Repository interface {
	// Create inserts r; a request_code clash is reported as ErrCodeCollision.
	Create(ctx context.Context, r *Request) error
	GetByID(ctx context.Context, id uint64) (*Request, error)
	// GetByIDForUpdate locks the row; only meaningful inside a transaction.
	GetByIDForUpdate(ctx context.Context, id uint64) (*Request, error)
	// Listings order by created_at DESC, id DESC.
	ListByRequester(ctx context.Context, requesterID uint64) ([]Request, error)
	ListByStatus(ctx context.Context, status Status) ([]Request, error)
	Save(ctx context.Context, r *Request) error
}
