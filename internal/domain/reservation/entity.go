package reservation

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status は予約の状態を表す
type Status string

const (
	StatusReserved  Status = "reserved"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
)

// ParseStatus は文字列を Status に変換する
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusReserved, StatusCompleted, StatusCanceled:
		return st, nil
	default:
		return "", ErrInvalidStatus
	}
}

// IsTerminal は終端状態かを返す
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// Reservation はテーブル予約エンティティを表す
type Reservation struct {
	ID                    string
	UserID                string
	ContactInfo           string
	ExpectedArrivalTime   time.Time
	ReservedTableSizeInfo string
	Status                Status
	CreatedAt             time.Time
	UpdatedAt             time.Time
	Version               int
}

// Details は予約の変更可能な項目
type Details struct {
	ContactInfo           string
	ExpectedArrivalTime   time.Time
	ReservedTableSizeInfo string
}

// NewReservation は Reserved 状態の新しい予約を作成する
func NewReservation(userID string, d Details) *Reservation {
	now := time.Now().UTC()
	return &Reservation{
		ID:                    uuid.NewString(),
		UserID:                userID,
		ContactInfo:           d.ContactInfo,
		ExpectedArrivalTime:   d.ExpectedArrivalTime.UTC(),
		ReservedTableSizeInfo: d.ReservedTableSizeInfo,
		Status:                StatusReserved,
		CreatedAt:             now,
		UpdatedAt:             now,
		Version:               1,
	}
}

// IsReserved は予約が変更可能な状態かを返す
func (r *Reservation) IsReserved() bool {
	return r.Status == StatusReserved
}

// Update は変更可能な3項目をまとめて上書きする
func (r *Reservation) Update(d Details) error {
	if !r.IsReserved() {
		return ErrInvalidStateTransition
	}
	if err := d.Validate(); err != nil {
		return err
	}
	r.ContactInfo = d.ContactInfo
	r.ExpectedArrivalTime = d.ExpectedArrivalTime.UTC()
	r.ReservedTableSizeInfo = d.ReservedTableSizeInfo
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// Cancel は予約をキャンセルする
func (r *Reservation) Cancel() error {
	return r.transition(StatusCanceled)
}

// Complete は予約を完了にする
func (r *Reservation) Complete() error {
	return r.transition(StatusCompleted)
}

func (r *Reservation) transition(to Status) error {
	if !r.IsReserved() {
		return ErrInvalidStateTransition
	}
	r.Status = to
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// Validate は予約の検証を行う
func (r *Reservation) Validate() error {
	if r.UserID == "" {
		return ErrUserIDRequired
	}
	return r.details().Validate()
}

func (r *Reservation) details() Details {
	return Details{
		ContactInfo:           r.ContactInfo,
		ExpectedArrivalTime:   r.ExpectedArrivalTime,
		ReservedTableSizeInfo: r.ReservedTableSizeInfo,
	}
}

// Validate は変更可能項目の検証を行う
func (d Details) Validate() error {
	if d.ExpectedArrivalTime.IsZero() {
		return ErrArrivalTimeRequired
	}
	if strings.TrimSpace(d.ReservedTableSizeInfo) == "" {
		return ErrTableSizeRequired
	}
	return nil
}
