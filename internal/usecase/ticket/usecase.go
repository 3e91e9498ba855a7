package ticket

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"ict-ticketing/internal/domain/apperr"
	"ict-ticketing/internal/domain/request"
	"ict-ticketing/internal/domain/uow"
	"ict-ticketing/internal/domain/user"
	"ict-ticketing/internal/usecase/auth"
	"ict-ticketing/pkg/id"
)

var (
	ErrMissingDevice   = apperr.New(apperr.KindValidation, "device is required")
	ErrInvalidQuantity = apperr.New(apperr.KindValidation, "quantity must be at least 1")
)

type Usecase struct {
	requests request.Repository
	uow      uow.UnitOfWork

	strict   bool
	newCode  func() string
	observer Observer
	log      *zap.Logger
}

type Option func(*Usecase)

// WithStrictTransitions only lets pending requests be approved or rejected.
func WithStrictTransitions(strict bool) Option { return func(u *Usecase) { u.strict = strict } }

func WithCodeGenerator(gen func() string) Option { return func(u *Usecase) { u.newCode = gen } }

func WithObserver(o Observer) Option { return func(u *Usecase) { u.observer = o } }

func WithLogger(l *zap.Logger) Option { return func(u *Usecase) { u.log = l } }

func NewUsecase(requests request.Repository, tx uow.UnitOfWork, opts ...Option) *Usecase {
	u := &Usecase{
		requests: requests,
		uow:      tx,
		newCode:  id.NewRequestCode,
		observer: nopObserver{},
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *Usecase) Submit(ctx context.Context, actor *user.User, in SubmitInput) (*request.Request, error) {
	if err := auth.Authorize(actor, user.RoleUser); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Device) == "" {
		return nil, ErrMissingDevice
	}
	qty := in.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}

	r := &request.Request{
		RequestCode: u.newCode(),
		Device:      in.Device,
		Quantity:    qty,
		Purpose:     in.Purpose,
		Duration:    in.Duration,
		NeededBy:    in.NeededBy,
		Status:      request.StatusPending,
		RequesterID: actor.ID,
	}
	// a code clash comes back as ErrCodeCollision; the client resubmits
	if err := u.requests.Create(ctx, r); err != nil {
		return nil, err
	}
	u.observer.RequestSubmitted()
	u.log.Info("request submitted",
		zap.String("request_code", r.RequestCode),
		zap.Uint64("requester_id", actor.ID),
	)
	return r, nil
}

func (u *Usecase) ListMine(ctx context.Context, actor *user.User) ([]request.Request, error) {
	if err := auth.Authorize(actor, user.RoleUser); err != nil {
		return nil, err
	}
	return u.requests.ListByRequester(ctx, actor.ID)
}

func (u *Usecase) ListPending(ctx context.Context, actor *user.User) ([]request.Request, error) {
	if err := auth.Authorize(actor, user.RoleApprover); err != nil {
		return nil, err
	}
	return u.requests.ListByStatus(ctx, request.StatusPending)
}

func (u *Usecase) Approve(ctx context.Context, actor *user.User, requestID uint64) (*request.Request, error) {
	return u.transition(ctx, actor, user.RoleApprover, requestID, func(r *request.Request) error {
		return r.Approve(u.strict)
	})
}

// Reject stores reason as given, empty included.
func (u *Usecase) Reject(ctx context.Context, actor *user.User, requestID uint64, reason string) (*request.Request, error) {
	return u.transition(ctx, actor, user.RoleApprover, requestID, func(r *request.Request) error {
		return r.Reject(reason, u.strict)
	})
}

func (u *Usecase) Issue(ctx context.Context, actor *user.User, requestID uint64) (*request.Request, error) {
	return u.transition(ctx, actor, user.RoleAdmin, requestID, func(r *request.Request) error {
		return r.Issue()
	})
}

// transition is one locked read-modify-write; the last committed writer wins.
func (u *Usecase) transition(ctx context.Context, actor *user.User, min user.Role, requestID uint64, apply func(*request.Request) error) (*request.Request, error) {
	if err := auth.Authorize(actor, min); err != nil {
		return nil, err
	}
	var out *request.Request
	err := u.uow.WithinRequestTx(ctx, requestID, func(r uow.Repos, req *request.Request) error {
		from := req.Status
		if err := apply(req); err != nil {
			return err
		}
		if err := r.Requests.Save(ctx, req); err != nil {
			return err
		}
		u.log.Info("request transitioned",
			zap.String("request_code", req.RequestCode),
			zap.String("from", string(from)),
			zap.String("to", string(req.Status)),
			zap.Uint64("by", actor.ID),
		)
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.observer.RequestTransitioned(string(out.Status))
	return out, nil
}
