package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-table-reservation/internal/domain/reservation"
)

const reservationColumns = `id, user_id, contact_info, expected_arrival_time, reserved_table_size_info, status, version, created_at, updated_at`

type reservationRow struct {
	ID                    string    `db:"id"`
	UserID                string    `db:"user_id"`
	ContactInfo           string    `db:"contact_info"`
	ExpectedArrivalTime   time.Time `db:"expected_arrival_time"`
	ReservedTableSizeInfo string    `db:"reserved_table_size_info"`
	Status                string    `db:"status"`
	Version               int       `db:"version"`
	CreatedAt             time.Time `db:"created_at"`
	UpdatedAt             time.Time `db:"updated_at"`
}

type ReservationRepository struct{ db *sqlx.DB }

func NewReservationRepository(db *sqlx.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	if !isUUID(res.UserID) {
		return reservation.ErrInvalidUserID
	}
	query := `INSERT INTO reservations (` + reservationColumns + `)
		VALUES (:id, :user_id, :contact_info, :expected_arrival_time, :reserved_table_size_info, :status, :version, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, toRow(res)); err != nil {
		return fmt.Errorf("予約作成に失敗: %w", err)
	}
	return nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*reservation.Reservation, error) {
	if !isUUID(id) {
		return nil, reservation.ErrReservationNotFound
	}
	var row reservationRow
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *ReservationRepository) List(ctx context.Context, filter reservation.Filter) ([]*reservation.Reservation, error) {
	if filter.UserID != "" && !isUUID(filter.UserID) {
		return []*reservation.Reservation{}, nil
	}
	query, args := buildListQuery(filter)
	var rows []reservationRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}
	result := make([]*reservation.Reservation, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

// buildListQuery は検索条件から SELECT 文と引数を組み立てる
func buildListQuery(f reservation.Filter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	if f.UserID != "" {
		conds = append(conds, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Status != nil {
		conds = append(conds, "status = ?")
		args = append(args, string(*f.Status))
	}
	if f.FromTime != nil {
		conds = append(conds, "expected_arrival_time >= ?")
		args = append(args, f.FromTime.UTC())
	}
	if f.ToTime != nil {
		conds = append(conds, "expected_arrival_time <= ?")
		args = append(args, f.ToTime.UTC())
	}

	var b strings.Builder
	b.WriteString("SELECT " + reservationColumns + " FROM reservations")
	if len(conds) > 0 {
		b.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	b.WriteString(" ORDER BY created_at ASC, id ASC LIMIT ? OFFSET ?")
	args = append(args, f.Limit, f.Offset)

	return sqlx.Rebind(sqlx.DOLLAR, b.String()), args
}

// Update は version と status が読み込み時と一致する場合のみ更新する
func (r *ReservationRepository) Update(ctx context.Context, res *reservation.Reservation, expected reservation.Status) error {
	query := `UPDATE reservations
		SET contact_info = $1, expected_arrival_time = $2, reserved_table_size_info = $3,
			status = $4, updated_at = $5, version = version + 1
		WHERE id = $6 AND version = $7 AND status = $8
		RETURNING version`
	var version int
	err := r.db.QueryRowxContext(ctx, query,
		res.ContactInfo, res.ExpectedArrivalTime, res.ReservedTableSizeInfo,
		string(res.Status), res.UpdatedAt,
		res.ID, res.Version, string(expected),
	).Scan(&version)
	if err == nil {
		res.Version = version
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("予約更新に失敗: %w", err)
	}

	// 0件更新: 削除済みか、他の更新に先を越されたか
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM reservations WHERE id = $1)`, res.ID); err != nil {
		return fmt.Errorf("予約存在確認に失敗: %w", err)
	}
	if !exists {
		return reservation.ErrReservationNotFound
	}
	return reservation.ErrReservationConflict
}

func (r *ReservationRepository) CountByStatus(ctx context.Context) (map[reservation.Status]int, error) {
	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows, `SELECT status, COUNT(*) AS count FROM reservations GROUP BY status`); err != nil {
		return nil, fmt.Errorf("ステータス別件数取得に失敗: %w", err)
	}
	counts := map[reservation.Status]int{
		reservation.StatusReserved:  0,
		reservation.StatusCompleted: 0,
		reservation.StatusCanceled:  0,
	}
	for _, row := range rows {
		counts[reservation.Status(row.Status)] = row.Count
	}
	return counts, nil
}

func toRow(res *reservation.Reservation) *reservationRow {
	return &reservationRow{
		ID: res.ID, UserID: res.UserID, ContactInfo: res.ContactInfo,
		ExpectedArrivalTime: res.ExpectedArrivalTime, ReservedTableSizeInfo: res.ReservedTableSizeInfo,
		Status: string(res.Status), Version: res.Version,
		CreatedAt: res.CreatedAt, UpdatedAt: res.UpdatedAt,
	}
}

func (row *reservationRow) toEntity() *reservation.Reservation {
	return &reservation.Reservation{
		ID: row.ID, UserID: row.UserID, ContactInfo: row.ContactInfo,
		ExpectedArrivalTime: row.ExpectedArrivalTime.UTC(), ReservedTableSizeInfo: row.ReservedTableSizeInfo,
		Status: reservation.Status(row.Status), Version: row.Version,
		CreatedAt: row.CreatedAt.UTC(), UpdatedAt: row.UpdatedAt.UTC(),
	}
}

var _ reservation.Repository = (*ReservationRepository)(nil)

// isUUID は id 列の UUID 型にキャストできるかを返す
func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
