package sqlstore

import (
	"context"

	"gorm.io/gorm"

	"ict-ticketing/internal/domain/device"
)

type DeviceRepository struct{ db *gorm.DB }

func NewDeviceRepository(db *gorm.DB) *DeviceRepository { return &DeviceRepository{db: db} }

func (r *DeviceRepository) Create(ctx context.Context, d *device.Device) error {
	err := r.db.WithContext(ctx).Create(d).Error
	if _, ok := uniqueViolation(err); ok {
		return device.ErrDuplicateDeviceID
	}
	return err
}

func (r *DeviceRepository) GetByDeviceID(ctx context.Context, deviceID string) (*device.Device, error) {
	var out device.Device
	if err := r.db.WithContext(ctx).Where("device_id = ?", deviceID).First(&out).Error; err != nil {
		return nil, notFound(err, device.ErrNotFound)
	}
	return &out, nil
}

func (r *DeviceRepository) List(ctx context.Context) ([]device.Device, error) {
	out := make([]device.Device, 0)
	err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&out).Error
	return out, err
}

// UpdateStatus writes with one UPDATE and reads the row back. RowsAffected is
// not trusted for existence: MySQL reports 0 when the value is unchanged.
func (r *DeviceRepository) UpdateStatus(ctx context.Context, deviceID, status string) (*device.Device, error) {
	err := r.db.WithContext(ctx).
		Model(&device.Device{}).
		Where("device_id = ?", deviceID).
		Update("status", status).Error
	if err != nil {
		return nil, err
	}
	return r.GetByDeviceID(ctx, deviceID)
}

func (r *DeviceRepository) Delete(ctx context.Context, deviceID string) error {
	res := r.db.WithContext(ctx).Where("device_id = ?", deviceID).Delete(&device.Device{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return device.ErrNotFound
	}
	return nil
}
