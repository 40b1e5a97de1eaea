package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-table-reservation/internal/domain/identity"
	"github.com/sanosuguru/go-table-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-table-reservation/internal/domain/user"
)

// toHTTPError はドメインエラーをHTTPステータスに変換する
// 想定外のエラーは内部情報を隠して500にする
func toHTTPError(err error) *echo.HTTPError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}

	code := statusOf(err)
	if code == http.StatusInternalServerError {
		return echo.NewHTTPError(code, "内部サーバーエラー").SetInternal(err)
	}
	return echo.NewHTTPError(code, err.Error())
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, identity.ErrUnauthenticated),
		errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, identity.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, reservation.ErrReservationNotFound),
		errors.Is(err, user.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, reservation.ErrValidation),
		errors.Is(err, user.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, reservation.ErrInvalidStateTransition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, reservation.ErrReservationConflict),
		errors.Is(err, user.ErrEmailAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
