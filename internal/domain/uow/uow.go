package uow

import (
	"context"

	"ict-ticketing/internal/domain/device"
	"ict-ticketing/internal/domain/request"
	"ict-ticketing/internal/domain/user"
)

// Repos are bound to the same transaction.
type Repos struct {
	Users    user.Repository
	Devices  device.Repository
	Requests request.Repository
}

// UnitOfWork runs a transition in one transaction: the request row is
// locked first, then handed to fn together with tx-bound repos.
type UnitOfWork interface {
	WithinRequestTx(ctx context.Context, requestID uint64, fn func(r Repos, req *request.Request) error) error
}
