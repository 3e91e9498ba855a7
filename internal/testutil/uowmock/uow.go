package uowmock

import (
	"context"
	"errors"

	"ict-ticketing/internal/domain/request"
	"ict-ticketing/internal/domain/uow"
)

var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinRequestTxFn func(ctx context.Context, requestID uint64, fn func(r uow.Repos, req *request.Request) error) error
}

func New() *UoW { return &UoW{} }

func (m *UoW) WithWithinRequestTx(fn func(context.Context, uint64, func(uow.Repos, *request.Request) error) error) *UoW {
	m.WithinRequestTxFn = fn
	return m
}

// Passthrough runs callbacks against repos, locking via repos.Requests.GetByIDForUpdate.
func Passthrough(repos uow.Repos) *UoW {
	return New().
		WithWithinRequestTx(func(ctx context.Context, id uint64, fn func(uow.Repos, *request.Request) error) error {
			req, err := repos.Requests.GetByIDForUpdate(ctx, id)
			if err != nil {
				return err
			}
			return fn(repos, req)
		})
}

func (m *UoW) Reset() { *m = UoW{} }

func (m *UoW) WithinRequestTx(ctx context.Context, requestID uint64, fn func(r uow.Repos, req *request.Request) error) error {
	if m.WithinRequestTxFn != nil {
		return m.WithinRequestTxFn(ctx, requestID, fn)
	}
	return errUnimplemented
}
