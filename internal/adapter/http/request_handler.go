package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"ict-ticketing/internal/adapter/middleware"
	"ict-ticketing/internal/domain/apperr"
	"ict-ticketing/internal/domain/request"
	"ict-ticketing/internal/usecase/ticket"
)

type RequestHandler struct {
	uc  *ticket.Usecase
	log *zap.Logger
}

func NewRequestHandler(uc *ticket.Usecase, log *zap.Logger) *RequestHandler {
	return &RequestHandler{uc: uc, log: log}
}

// submitReq has no status field: a client-sent status is dropped.
type submitReq struct {
	Device   string     `json:"device" validate:"required,notblank,max=80"`
	Quantity *int       `json:"quantity" validate:"omitempty,min=1"`
	Purpose  *string    `json:"purpose"`
	Duration *string    `json:"duration" validate:"omitempty,max=60"`
	NeededBy *time.Time `json:"needed_by"`
}

type rejectReq struct {
	Reason string `json:"reason"`
}

func (h *RequestHandler) Submit(c echo.Context) error {
	var req submitReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	in := ticket.SubmitInput{
		Device:   req.Device,
		Quantity: 1,
		Purpose:  req.Purpose,
		Duration: req.Duration,
		NeededBy: req.NeededBy,
	}
	if req.Quantity != nil {
		in.Quantity = *req.Quantity
	}
	r, err := h.uc.Submit(c.Request().Context(), middleware.CurrentUser(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *RequestHandler) ListMine(c echo.Context) error {
	list, err := h.uc.ListMine(c.Request().Context(), middleware.CurrentUser(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *RequestHandler) ListPending(c echo.Context) error {
	list, err := h.uc.ListPending(c.Request().Context(), middleware.CurrentUser(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *RequestHandler) Approve(c echo.Context) error {
	return h.decide(c, func(id uint64) (*request.Request, error) {
		return h.uc.Approve(c.Request().Context(), middleware.CurrentUser(c), id)
	})
}

func (h *RequestHandler) Reject(c echo.Context) error {
	var req rejectReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	return h.decide(c, func(id uint64) (*request.Request, error) {
		return h.uc.Reject(c.Request().Context(), middleware.CurrentUser(c), id, req.Reason)
	})
}

func (h *RequestHandler) Issue(c echo.Context) error {
	return h.decide(c, func(id uint64) (*request.Request, error) {
		return h.uc.Issue(c.Request().Context(), middleware.CurrentUser(c), id)
	})
}

func (h *RequestHandler) decide(c echo.Context, apply func(id uint64) (*request.Request, error)) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Kind:    string(apperr.KindValidation),
			Details: []FieldError{{Field: "id", Message: "must be a positive integer"}},
		})
	}
	r, err := apply(id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: fmt.Sprintf("Request %s %s", r.RequestCode, r.Status)})
}
