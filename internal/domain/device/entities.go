package device

import (
	"time"

	"ict-ticketing/internal/domain/apperr"
)

const DefaultStatus = "Available"

var (
	ErrNotFound          = apperr.New(apperr.KindNotFound, "device not found")
	ErrDuplicateDeviceID = apperr.New(apperr.KindConflict, "device id already exists")
)

// Table: devices. Status is free text ("Available", "Issued", "Maintenance", ...).
type Device struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	DeviceID  string    `gorm:"column:device_id;size:50;not null;uniqueIndex:ux_devices_device_id" json:"device_id"`
	Type      string    `gorm:"column:type;size:80;not null" json:"type"`
	Model     *string   `gorm:"column:model;size:120" json:"model"`
	Status    string    `gorm:"column:status;size:40;not null;default:'Available'" json:"status"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Device) TableName() string { return "devices" }
