package requestmock

import (
	"context"
	"errors"

	"ict-ticketing/internal/domain/request"
)

var _ request.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("requestmock: method not implemented")

// Repo is a function-backed request.Repository.
// Only Create and Save succeed by default.
type Repo struct {
	CreateFn           func(ctx context.Context, r *request.Request) error
	GetByIDFn          func(ctx context.Context, id uint64) (*request.Request, error)
	GetByIDForUpdateFn func(ctx context.Context, id uint64) (*request.Request, error)
	ListByRequesterFn  func(ctx context.Context, requesterID uint64) ([]request.Request, error)
	ListByStatusFn     func(ctx context.Context, status request.Status) ([]request.Request, error)
	SaveFn             func(ctx context.Context, r *request.Request) error
}

func (m *Repo) Create(ctx context.Context, r *request.Request) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*request.Request, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*request.Request, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, errUnimplemented
}

func (m *Repo) ListByRequester(ctx context.Context, requesterID uint64) ([]request.Request, error) {
	if m.ListByRequesterFn != nil {
		return m.ListByRequesterFn(ctx, requesterID)
	}
	return nil, errUnimplemented
}

func (m *Repo) ListByStatus(ctx context.Context, status request.Status) ([]request.Request, error) {
	if m.ListByStatusFn != nil {
		return m.ListByStatusFn(ctx, status)
	}
	return nil, errUnimplemented
}

func (m *Repo) Save(ctx context.Context, r *request.Request) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, r)
	}
	return nil
}
