package inventory

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"ict-ticketing/internal/domain/apperr"
	"ict-ticketing/internal/domain/device"
	"ict-ticketing/internal/domain/user"
	"ict-ticketing/internal/usecase/auth"
)

var (
	ErrMissingDeviceFields = apperr.New(apperr.KindValidation, "device_id and type are required")
	ErrMissingStatus       = apperr.New(apperr.KindValidation, "status is required")
)

type Usecase struct {
	devices device.Repository
	log     *zap.Logger
}

func NewUsecase(devices device.Repository, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{devices: devices, log: log}
}

func (u *Usecase) AddDevice(ctx context.Context, actor *user.User, in AddDeviceInput) (*device.Device, error) {
	if err := auth.Authorize(actor, user.RoleAdmin); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.DeviceID) == "" || strings.TrimSpace(in.Type) == "" {
		return nil, ErrMissingDeviceFields
	}
	status := in.Status
	if status == "" {
		status = device.DefaultStatus
	}

	// advisory; the unique index is what actually rejects a racing insert
	_, err := u.devices.GetByDeviceID(ctx, in.DeviceID)
	switch {
	case err == nil:
		return nil, device.ErrDuplicateDeviceID
	case !errors.Is(err, device.ErrNotFound):
		return nil, err
	}

	d := &device.Device{
		DeviceID: in.DeviceID,
		Type:     in.Type,
		Model:    in.Model,
		Status:   status,
	}
	if err := u.devices.Create(ctx, d); err != nil {
		return nil, err
	}
	u.log.Info("device added", zap.String("device_id", d.DeviceID), zap.Uint64("by", actor.ID))
	return d, nil
}

// ListDevices is open to any authenticated caller.
func (u *Usecase) ListDevices(ctx context.Context, actor *user.User) ([]device.Device, error) {
	if err := auth.Authorize(actor, user.RoleUser); err != nil {
		return nil, err
	}
	return u.devices.List(ctx)
}

func (u *Usecase) SetDeviceStatus(ctx context.Context, actor *user.User, deviceID, status string) (*device.Device, error) {
	if err := auth.Authorize(actor, user.RoleAdmin); err != nil {
		return nil, err
	}
	if status == "" {
		return nil, ErrMissingStatus
	}
	d, err := u.devices.UpdateStatus(ctx, deviceID, status)
	if err != nil {
		return nil, err
	}
	u.log.Info("device status changed", zap.String("device_id", deviceID), zap.String("status", status))
	return d, nil
}

func (u *Usecase) RemoveDevice(ctx context.Context, actor *user.User, deviceID string) error {
	if err := auth.Authorize(actor, user.RoleAdmin); err != nil {
		return err
	}
	if err := u.devices.Delete(ctx, deviceID); err != nil {
		return err
	}
	u.log.Info("device removed", zap.String("device_id", deviceID), zap.Uint64("by", actor.ID))
	return nil
}
