package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"ict-ticketing/internal/adapter/middleware"
	"ict-ticketing/internal/usecase/auth"
)

type AuthHandler struct {
	uc  *auth.Usecase
	log *zap.Logger
}

func NewAuthHandler(uc *auth.Usecase, log *zap.Logger) *AuthHandler {
	return &AuthHandler{uc: uc, log: log}
}

type signupReq struct {
	Username string  `json:"username" validate:"required,notblank,max=50"`
	Email    string  `json:"email" validate:"required,email,max=120"`
	Password string  `json:"password" validate:"required"`
	Name     *string `json:"name" validate:"omitempty,max=120"`
	Role     string  `json:"role" validate:"omitempty,role"`
}

// tokenReq binds from JSON or a form post.
type tokenReq struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	u, err := h.uc.Register(c.Request().Context(), auth.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *AuthHandler) Token(c echo.Context) error {
	var req tokenReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	tok, err := h.uc.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, tok)
}

func (h *AuthHandler) Me(c echo.Context) error {
	u := middleware.CurrentUser(c)
	if u == nil {
		return writeError(c, h.log, auth.ErrUnauthenticated)
	}
	return c.JSON(http.StatusOK, u)
}
