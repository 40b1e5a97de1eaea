package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-table-reservation/internal/api/middleware"
	"github.com/sanosuguru/go-table-reservation/internal/application"
	"github.com/sanosuguru/go-table-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-table-reservation/internal/pkg/logger"
)

type ReservationHandler struct {
	service ReservationServiceInterface
	names   NameResolver
}

// NewReservationHandler は予約ハンドラーを作成する（names が nil なら guest_name は空）
func NewReservationHandler(s ReservationServiceInterface, names NameResolver) *ReservationHandler {
	return &ReservationHandler{service: s, names: names}
}

type CreateReservationRequest struct {
	// UserID は従業員が代理で予約する場合のみ指定する
	UserID                string    `json:"user_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	ContactInfo           string    `json:"contact_info" validate:"max=255" example:"13011111111"`
	ExpectedArrivalTime   time.Time `json:"expected_arrival_time" example:"2023-10-24T12:00:00Z"`
	ReservedTableSizeInfo string    `json:"reserved_table_size_info" validate:"max=255" example:"2"`
}

type UpdateReservationRequest struct {
	ContactInfo           string    `json:"contact_info" validate:"max=255" example:"13011111111"`
	ExpectedArrivalTime   time.Time `json:"expected_arrival_time" example:"2023-10-24T19:00:00Z"`
	ReservedTableSizeInfo string    `json:"reserved_table_size_info" validate:"max=255" example:"4"`
}

type ReservationResponse struct {
	ID                    string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	UserID                string    `json:"user_id" example:"550e8400-e29b-41d4-a716-446655440001"`
	GuestName             string    `json:"guest_name" example:"山田太郎"`
	ContactInfo           string    `json:"contact_info" example:"13011111111"`
	ExpectedArrivalTime   time.Time `json:"expected_arrival_time"`
	ReservedTableSizeInfo string    `json:"reserved_table_size_info" example:"2"`
	Status                string    `json:"status" example:"reserved"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func toReservationResponse(r *reservation.Reservation, guestName string) ReservationResponse {
	return ReservationResponse{
		ID: r.ID, UserID: r.UserID, GuestName: guestName,
		ContactInfo: r.ContactInfo, ExpectedArrivalTime: r.ExpectedArrivalTime,
		ReservedTableSizeInfo: r.ReservedTableSizeInfo, Status: string(r.Status),
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

// respond は所有者の表示名を付けて予約を返す
// 表示名の解決に失敗しても予約自体は返す
func (h *ReservationHandler) respond(c echo.Context, list ...*reservation.Reservation) []ReservationResponse {
	names := h.resolveNames(c.Request().Context(), list)
	resp := make([]ReservationResponse, len(list))
	for i, r := range list {
		resp[i] = toReservationResponse(r, names[r.UserID])
	}
	return resp
}

func (h *ReservationHandler) resolveNames(ctx context.Context, list []*reservation.Reservation) map[string]string {
	if h.names == nil || len(list) == 0 {
		return nil
	}
	ids := make([]string, len(list))
	for i, r := range list {
		ids[i] = r.UserID
	}
	names, err := h.names.DisplayNames(ctx, ids)
	if err != nil {
		logger.Warn("表示名の解決に失敗", zap.Error(err))
		return nil
	}
	return names
}

func (h *ReservationHandler) one(c echo.Context, code int, r *reservation.Reservation) error {
	return c.JSON(code, h.respond(c, r)[0])
}

// Create godoc
// @Summary 予約を作成
// @Description ゲストは自分の予約を、従業員は user_id を指定して代理で予約を作成します
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateReservationRequest true "予約情報"
// @Success 201 {object} ReservationResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 401 {object} api.ErrorResponse
// @Failure 403 {object} api.ErrorResponse
// @Router /reservations [post]
func (h *ReservationHandler) Create(c echo.Context) error {
	var req CreateReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	r, err := h.service.CreateReservation(c.Request().Context(), middleware.CurrentIdentity(c), application.CreateReservationInput{
		UserID:                req.UserID,
		ContactInfo:           req.ContactInfo,
		ExpectedArrivalTime:   req.ExpectedArrivalTime,
		ReservedTableSizeInfo: req.ReservedTableSizeInfo,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return h.one(c, http.StatusCreated, r)
}

// GetByID godoc
// @Summary 予約を取得
// @Description 所有者または従業員のみ取得できます
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "予約ID"
// @Success 200 {object} ReservationResponse
// @Failure 403 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /reservations/{id} [get]
func (h *ReservationHandler) GetByID(c echo.Context) error {
	r, err := h.service.GetReservation(c.Request().Context(), middleware.CurrentIdentity(c), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return h.one(c, http.StatusOK, r)
}

// List godoc
// @Summary 予約一覧を取得
// @Description 従業員は全予約、それ以外は自分の予約のみ（登録順）
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param from_time query string false "到着予定時刻の下限（RFC3339、含む）"
// @Param to_time query string false "到着予定時刻の上限（RFC3339、含む）"
// @Param status query string false "reserved / completed / canceled"
// @Param user_id query string false "所有者ID（従業員のみ有効）"
// @Param limit query int false "取得件数" default(10)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} ReservationResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 401 {object} api.ErrorResponse
// @Router /reservations [get]
func (h *ReservationHandler) List(c echo.Context) error {
	filter, err := parseFilter(c)
	if err != nil {
		return err
	}
	list, err := h.service.ListReservations(c.Request().Context(), middleware.CurrentIdentity(c), filter)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, h.respond(c, list...))
}

func parseFilter(c echo.Context) (reservation.Filter, error) {
	var f reservation.Filter
	f.UserID = c.QueryParam("user_id")

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"from_time", &f.FromTime}, {"to_time", &f.ToTime}} {
		raw := c.QueryParam(p.name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, p.name+" はRFC3339形式で指定してください")
		}
		*p.dst = &t
	}

	if raw := c.QueryParam("status"); raw != "" {
		st, err := reservation.ParseStatus(raw)
		if err != nil {
			return f, toHTTPError(err)
		}
		f.Status = &st
	}

	for _, p := range []struct {
		name string
		dst  *int
	}{{"limit", &f.Limit}, {"offset", &f.Offset}} {
		raw := c.QueryParam(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, p.name+" は整数で指定してください")
		}
		*p.dst = n
	}
	return f, nil
}

// Update godoc
// @Summary 予約を変更
// @Description 予約済みの予約の連絡先・到着予定時刻・テーブルサイズを変更します（所有者または従業員）
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "予約ID"
// @Param request body UpdateReservationRequest true "変更内容"
// @Success 200 {object} ReservationResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 403 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Failure 422 {object} api.ErrorResponse "予約済み以外の状態"
// @Router /reservations/{id} [put]
func (h *ReservationHandler) Update(c echo.Context) error {
	var req UpdateReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	r, err := h.service.UpdateReservation(c.Request().Context(), middleware.CurrentIdentity(c), application.UpdateReservationInput{
		ID:                    c.Param("id"),
		ContactInfo:           req.ContactInfo,
		ExpectedArrivalTime:   req.ExpectedArrivalTime,
		ReservedTableSizeInfo: req.ReservedTableSizeInfo,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return h.one(c, http.StatusOK, r)
}

// Cancel godoc
// @Summary 予約をキャンセル
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "予約ID"
// @Success 200 {object} ReservationResponse
// @Failure 403 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 422 {object} api.ErrorResponse
// @Router /reservations/{id}/cancel [post]
func (h *ReservationHandler) Cancel(c echo.Context) error {
	r, err := h.service.CancelReservation(c.Request().Context(), middleware.CurrentIdentity(c), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return h.one(c, http.StatusOK, r)
}

// Complete godoc
// @Summary 予約を完了にする
// @Description 来店済みとして予約を完了にします（従業員のみ）
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "予約ID"
// @Success 200 {object} ReservationResponse
// @Failure 403 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 422 {object} api.ErrorResponse
// @Router /reservations/{id}/complete [post]
func (h *ReservationHandler) Complete(c echo.Context) error {
	r, err := h.service.CompleteReservation(c.Request().Context(), middleware.CurrentIdentity(c), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return h.one(c, http.StatusOK, r)
}
