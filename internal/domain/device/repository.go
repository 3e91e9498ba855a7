package device

import "context"

type Repository interface {
	Create(ctx context.Context, d *Device) error
	GetByDeviceID(ctx context.Context, deviceID string) (*Device, error)
	// List returns every device, newest first.
	List(ctx context.Context) ([]Device, error)
	// UpdateStatus is a single UPDATE; ErrNotFound when no row matched.
	UpdateStatus(ctx context.Context, deviceID, status string) (*Device, error)
	Delete(ctx context.Context, deviceID string) error
}
