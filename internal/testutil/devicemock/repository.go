package devicemock

import (
	"context"
	"errors"

	"ict-ticketing/internal/domain/device"
)

var _ device.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("devicemock: method not implemented")

type Repo struct {
	CreateFn        func(ctx context.Context, d *device.Device) error
	GetByDeviceIDFn func(ctx context.Context, deviceID string) (*device.Device, error)
	ListFn          func(ctx context.Context) ([]device.Device, error)
	UpdateStatusFn  func(ctx context.Context, deviceID, status string) (*device.Device, error)
	DeleteFn        func(ctx context.Context, deviceID string) error
}

func (m *Repo) Create(ctx context.Context, d *device.Device) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, d)
	}
	return nil
}

func (m *Repo) GetByDeviceID(ctx context.Context, deviceID string) (*device.Device, error) {
	if m.GetByDeviceIDFn != nil {
		return m.GetByDeviceIDFn(ctx, deviceID)
	}
	return nil, errUnimplemented
}

func (m *Repo) List(ctx context.Context) ([]device.Device, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, errUnimplemented
}

func (m *Repo) UpdateStatus(ctx context.Context, deviceID, status string) (*device.Device, error) {
	if m.UpdateStatusFn != nil {
		return m.UpdateStatusFn(ctx, deviceID, status)
	}
	return nil, errUnimplemented
}

func (m *Repo) Delete(ctx context.Context, deviceID string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, deviceID)
	}
	return errUnimplemented
}
