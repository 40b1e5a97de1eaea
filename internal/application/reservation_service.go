package application

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-table-reservation/internal/domain/identity"
	"github.com/sanosuguru/go-table-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-table-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-table-reservation/internal/pkg/metrics"
)

const (
	opCreate   = "create"
	opGet      = "get"
	opList     = "list"
	opUpdate   = "update"
	opCancel   = "cancel"
	opComplete = "complete"
)

type ReservationService struct {
	reservationRepo reservation.Repository
	guard           Authorizer
	page            reservation.Page
	metrics         *metrics.Metrics
}

// NewReservationService は予約のライフサイクルを扱うサービスを作成する（m は nil 可）
func NewReservationService(rr reservation.Repository, guard Authorizer, page reservation.Page, m *metrics.Metrics) *ReservationService {
	return &ReservationService{reservationRepo: rr, guard: guard, page: page, metrics: m}
}

type CreateReservationInput struct {
	// UserID は従業員がゲストの代理で作成する場合のみ指定する
	UserID                string
	ContactInfo           string
	ExpectedArrivalTime   time.Time
	ReservedTableSizeInfo string
}

type UpdateReservationInput struct {
	ID                    string
	ContactInfo           string
	ExpectedArrivalTime   time.Time
	ReservedTableSizeInfo string
}

func (s *ReservationService) CreateReservation(ctx context.Context, caller *identity.Identity, input CreateReservationInput) (res *reservation.Reservation, err error) {
	defer func() { s.record(opCreate, err) }()

	if err := s.guard.Permit(caller, AnyOf(identity.RoleGuest, identity.RoleEmployee), ""); err != nil {
		return nil, err
	}
	ownerID, err := s.resolveOwner(caller, input.UserID)
	if err != nil {
		return nil, err
	}

	res = reservation.NewReservation(ownerID, reservation.Details{
		ContactInfo:           input.ContactInfo,
		ExpectedArrivalTime:   input.ExpectedArrivalTime,
		ReservedTableSizeInfo: input.ReservedTableSizeInfo,
	})
	if err := res.Validate(); err != nil {
		return nil, err
	}
	if err := s.reservationRepo.Create(ctx, res); err != nil {
		return nil, err
	}

	fields := []zap.Field{
		zap.String("reservation_id", res.ID),
		zap.String("user_id", res.UserID),
		zap.Time("expected_arrival_time", res.ExpectedArrivalTime),
	}
	if ownerID != caller.UserID {
		// 従業員による代理予約は監査のため実行者も残す
		fields = append(fields, zap.String("created_by", caller.UserID))
		logger.Info("代理予約を作成しました", fields...)
	} else {
		logger.Info("予約を作成しました", fields...)
	}
	return res, nil
}

// resolveOwner は予約の所有者を決める
// 従業員は任意のゲストを所有者に指定できる（代理予約）
func (s *ReservationService) resolveOwner(caller *identity.Identity, requested string) (string, error) {
	if requested == "" || requested == caller.UserID {
		if caller.HasRole(identity.RoleGuest) {
			return caller.UserID, nil
		}
		return "", reservation.ErrUserIDRequired
	}
	if caller.IsEmployee() {
		return requested, nil
	}
	return "", identity.ErrForbidden
}

func (s *ReservationService) GetReservation(ctx context.Context, caller *identity.Identity, id string) (res *reservation.Reservation, err error) {
	defer func() { s.record(opGet, err) }()

	if err := s.guard.Permit(caller, Authenticated(), ""); err != nil {
		return nil, err
	}
	res, err = s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Permit(caller, OwnerOr(identity.RoleEmployee), res.UserID); err != nil {
		return nil, err
	}
	return res, nil
}

// ListReservations は呼び出し元のロールに応じて絞り込んだ予約一覧を返す
// 従業員以外は、指定した検索条件に関わらず自分の予約のみ取得できる
func (s *ReservationService) ListReservations(ctx context.Context, caller *identity.Identity, filter reservation.Filter) (list []*reservation.Reservation, err error) {
	defer func() { s.record(opList, err) }()

	if err := s.guard.Permit(caller, Authenticated(), ""); err != nil {
		return nil, err
	}
	if !caller.IsEmployee() {
		filter.UserID = caller.UserID
	}
	filter, err = filter.Normalize(s.page)
	if err != nil {
		return nil, err
	}
	return s.reservationRepo.List(ctx, filter)
}

func (s *ReservationService) UpdateReservation(ctx context.Context, caller *identity.Identity, input UpdateReservationInput) (*reservation.Reservation, error) {
	d := reservation.Details{
		ContactInfo:           input.ContactInfo,
		ExpectedArrivalTime:   input.ExpectedArrivalTime,
		ReservedTableSizeInfo: input.ReservedTableSizeInfo,
	}
	return s.mutate(ctx, opUpdate, caller, input.ID, Authenticated(), OwnerOr(identity.RoleEmployee), func(r *reservation.Reservation) error {
		return r.Update(d)
	})
}

func (s *ReservationService) CancelReservation(ctx context.Context, caller *identity.Identity, id string) (*reservation.Reservation, error) {
	return s.mutate(ctx, opCancel, caller, id, Authenticated(), OwnerOr(identity.RoleEmployee), (*reservation.Reservation).Cancel)
}

// CompleteReservation は従業員のみ実行できる（所有者であっても不可）
func (s *ReservationService) CompleteReservation(ctx context.Context, caller *identity.Identity, id string) (*reservation.Reservation, error) {
	employeeOnly := AnyOf(identity.RoleEmployee)
	return s.mutate(ctx, opComplete, caller, id, employeeOnly, employeeOnly, (*reservation.Reservation).Complete)
}

// mutate は1件の予約に対する read-modify-write を行う
// pre は読み込み前、post は読み込んだ予約の所有者に対して判定する
func (s *ReservationService) mutate(
	ctx context.Context,
	op string,
	caller *identity.Identity,
	id string,
	pre, post Requirement,
	apply func(*reservation.Reservation) error,
) (res *reservation.Reservation, err error) {
	defer func() { s.record(op, err) }()

	if err := s.guard.Permit(caller, pre, ""); err != nil {
		return nil, err
	}
	res, err = s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Permit(caller, post, res.UserID); err != nil {
		return nil, err
	}

	expected := res.Status
	if err := apply(res); err != nil {
		return nil, err
	}
	if err := s.reservationRepo.Update(ctx, res, expected); err != nil {
		return nil, err
	}

	logger.Info("予約を更新しました",
		zap.String("operation", op),
		zap.String("reservation_id", res.ID),
		zap.String("user_id", caller.UserID),
		zap.String("status", string(res.Status)),
	)
	return res, nil
}

func (s *ReservationService) record(op string, err error) {
	s.metrics.RecordReservationOperation(op, outcome(err))
}

// outcome はエラーの種類をメトリクスのラベルに変換する
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, identity.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, identity.ErrForbidden):
		return "forbidden"
	case errors.Is(err, reservation.ErrReservationNotFound):
		return "not_found"
	case errors.Is(err, reservation.ErrInvalidStateTransition):
		return "invalid_transition"
	case errors.Is(err, reservation.ErrValidation):
		return "validation"
	case errors.Is(err, reservation.ErrReservationConflict):
		return "conflict"
	default:
		return "error"
	}
}
