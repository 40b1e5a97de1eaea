package handler

import (
	"context"

	"github.com/sanosuguru/go-table-reservation/internal/application"
	"github.com/sanosuguru/go-table-reservation/internal/domain/identity"
	"github.com/sanosuguru/go-table-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-table-reservation/internal/domain/user"
)

// ReservationServiceInterface は予約サービスのインターフェース
type ReservationServiceInterface interface {
	CreateReservation(ctx context.Context, caller *identity.Identity, input application.CreateReservationInput) (*reservation.Reservation, error)
	GetReservation(ctx context.Context, caller *identity.Identity, id string) (*reservation.Reservation, error)
	ListReservations(ctx context.Context, caller *identity.Identity, filter reservation.Filter) ([]*reservation.Reservation, error)
	UpdateReservation(ctx context.Context, caller *identity.Identity, input application.UpdateReservationInput) (*reservation.Reservation, error)
	CancelReservation(ctx context.Context, caller *identity.Identity, id string) (*reservation.Reservation, error)
	CompleteReservation(ctx context.Context, caller *identity.Identity, id string) (*reservation.Reservation, error)
}

// UserServiceInterface はユーザーサービスのインターフェース
type UserServiceInterface interface {
	SignUp(ctx context.Context, input application.SignUpInput) (*user.User, error)
	SignUpEmployee(ctx context.Context, caller *identity.Identity, input application.SignUpInput) (*user.User, error)
	Login(ctx context.Context, email, password string) (*application.LoginResult, error)
	Me(ctx context.Context, caller *identity.Identity) (*user.User, error)
}

// NameResolver は予約の所有者IDを表示名に解決する
type NameResolver interface {
	DisplayNames(ctx context.Context, userIDs []string) (map[string]string, error)
}
