package inventory

type AddDeviceInput struct {
	DeviceID string
	Type     string
	Model    *string
	// empty means device.DefaultStatus
	Status string
}
