package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-table-reservation/internal/api/middleware"
	"github.com/sanosuguru/go-table-reservation/internal/application"
	"github.com/sanosuguru/go-table-reservation/internal/domain/user"
)

type UserHandler struct {
	service UserServiceInterface
}

func NewUserHandler(s UserServiceInterface) *UserHandler {
	return &UserHandler{service: s}
}

type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email,max=255" example:"guest@example.com"`
	Name     string `json:"name" validate:"required,max=255" example:"山田太郎"`
	Password string `json:"password" validate:"required,min=8,max=72" example:"password123"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required" example:"guest@example.com"`
	Password string `json:"password" validate:"required" example:"password123"`
}

type UserResponse struct {
	ID        string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Email     string    `json:"email" example:"guest@example.com"`
	Name      string    `json:"name" example:"山田太郎"`
	Roles     []string  `json:"roles" example:"guest"`
	CreatedAt time.Time `json:"created_at"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

func toUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID: u.ID, Email: u.Email, Name: u.Name,
		Roles: u.Identity().RoleStrings(), CreatedAt: u.CreatedAt,
	}
}

func (h *UserHandler) bindSignUp(c echo.Context) (application.SignUpInput, error) {
	var req SignUpRequest
	if err := c.Bind(&req); err != nil {
		return application.SignUpInput{}, echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return application.SignUpInput{}, err
	}
	return application.SignUpInput{Email: req.Email, Name: req.Name, Password: req.Password}, nil
}

// SignUp godoc
// @Summary ゲストとして登録
// @Tags users
// @Accept json
// @Produce json
// @Param request body SignUpRequest true "登録情報"
// @Success 201 {object} UserResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "メールアドレスが登録済み"
// @Failure 429 {object} api.ErrorResponse
// @Router /users/signup [post]
func (h *UserHandler) SignUp(c echo.Context) error {
	input, err := h.bindSignUp(c)
	if err != nil {
		return err
	}
	u, err := h.service.SignUp(c.Request().Context(), input)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toUserResponse(u))
}

// SignUpEmployee godoc
// @Summary 従業員を登録
// @Description 管理者のみ実行できます
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SignUpRequest true "登録情報"
// @Success 201 {object} UserResponse
// @Failure 401 {object} api.ErrorResponse
// @Failure 403 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Router /users/employees [post]
func (h *UserHandler) SignUpEmployee(c echo.Context) error {
	input, err := h.bindSignUp(c)
	if err != nil {
		return err
	}
	u, err := h.service.SignUpEmployee(c.Request().Context(), middleware.CurrentIdentity(c), input)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toUserResponse(u))
}

// Login godoc
// @Summary ログイン
// @Description 認証に成功するとベアラートークンを返します
// @Tags users
// @Accept json
// @Produce json
// @Param request body LoginRequest true "資格情報"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} api.ErrorResponse
// @Failure 429 {object} api.ErrorResponse
// @Router /users/login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	res, err := h.service.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, LoginResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      toUserResponse(res.User),
	})
}

// Me godoc
// @Summary ログイン中のユーザー情報
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} api.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	u, err := h.service.Me(c.Request().Context(), middleware.CurrentIdentity(c))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}
