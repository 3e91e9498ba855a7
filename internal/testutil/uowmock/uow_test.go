package uowmock

import (
	"context"
	"errors"
	"testing"

	"ict-ticketing/internal/domain/request"
	"ict-ticketing/internal/domain/uow"
	"ict-ticketing/internal/testutil/devicemock"
	"ict-ticketing/internal/testutil/requestmock"
	"ict-ticketing/internal/testutil/usermock"
)

func TestUoW_WithinRequestTx_Forwards(t *testing.T) {
	ctx := context.Background()
	repos := uow.Repos{Users: &usermock.Repo{}, Devices: &devicemock.Repo{}, Requests: &requestmock.Repo{}}
	row := &request.Request{ID: 3}

	called := false
	m := New().WithWithinRequestTx(func(gotCtx context.Context, id uint64, fn func(uow.Repos, *request.Request) error) error {
		if gotCtx != ctx || id != 3 {
			t.Fatalf("ctx or id not forwarded: %d", id)
		}
		return fn(repos, row)
	})
	err := m.WithinRequestTx(ctx, 3, func(r uow.Repos, req *request.Request) error {
		called = true
		if r.Users != repos.Users || r.Requests != repos.Requests || req != row {
			t.Fatalf("repos not forwarded")
		}
		return nil
	})
	if err != nil || !called {
		t.Fatalf("WithinRequestTx: err=%v called=%v", err, called)
	}
}

func TestUoW_Defaults_Unimplemented(t *testing.T) {
	ctx := context.Background()
	m := New()
	if err := m.WithinRequestTx(ctx, 1, func(uow.Repos, *request.Request) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinRequestTx default: %v", err)
	}
}

func TestPassthrough_LocksThenCalls(t *testing.T) {
	ctx := context.Background()
	locked := &request.Request{ID: 7, Status: request.StatusPending}
	reqs := &requestmock.Repo{GetByIDForUpdateFn: func(_ context.Context, id uint64) (*request.Request, error) {
		if id != 7 {
			return nil, request.ErrNotFound
		}
		return locked, nil
	}}
	m := Passthrough(uow.Repos{Requests: reqs})

	var got *request.Request
	if err := m.WithinRequestTx(ctx, 7, func(_ uow.Repos, r *request.Request) error {
		got = r
		return nil
	}); err != nil {
		t.Fatalf("WithinRequestTx: %v", err)
	}
	if got != locked {
		t.Fatalf("locked row not forwarded")
	}

	if err := m.WithinRequestTx(ctx, 8, func(uow.Repos, *request.Request) error {
		t.Fatalf("callback must not run for a missing row")
		return nil
	}); !errors.Is(err, request.ErrNotFound) {
		t.Fatalf("missing: %v", err)
	}
}

func TestUoW_Reset(t *testing.T) {
	m := Passthrough(uow.Repos{})
	m.Reset()
	if m.WithinRequestTxFn != nil {
		t.Fatalf("Reset should clear function fields")
	}
}
