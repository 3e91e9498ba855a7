package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"ict-ticketing/internal/adapter/middleware"
	"ict-ticketing/internal/usecase/inventory"
)

type InventoryHandler struct {
	uc  *inventory.Usecase
	log *zap.Logger
}

func NewInventoryHandler(uc *inventory.Usecase, log *zap.Logger) *InventoryHandler {
	return &InventoryHandler{uc: uc, log: log}
}

type addDeviceReq struct {
	DeviceID string  `json:"device_id" validate:"required,notblank,max=50"`
	Type     string  `json:"type" validate:"required,notblank,max=80"`
	Model    *string `json:"model" validate:"omitempty,max=120"`
	Status   string  `json:"status" validate:"omitempty,max=40"`
}

type deviceStatusReq struct {
	Status string `json:"status" validate:"required,max=40"`
}

func (h *InventoryHandler) List(c echo.Context) error {
	devices, err := h.uc.ListDevices(c.Request().Context(), middleware.CurrentUser(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, devices)
}

func (h *InventoryHandler) Add(c echo.Context) error {
	var req addDeviceReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	d, err := h.uc.AddDevice(c.Request().Context(), middleware.CurrentUser(c), inventory.AddDeviceInput{
		DeviceID: req.DeviceID,
		Type:     req.Type,
		Model:    req.Model,
		Status:   req.Status,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *InventoryHandler) SetStatus(c echo.Context) error {
	var req deviceStatusReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	if _, err := h.uc.SetDeviceStatus(c.Request().Context(), middleware.CurrentUser(c), c.Param("device_id"), req.Status); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Updated"})
}

func (h *InventoryHandler) Delete(c echo.Context) error {
	if err := h.uc.RemoveDevice(c.Request().Context(), middleware.CurrentUser(c), c.Param("device_id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Deleted"})
}
