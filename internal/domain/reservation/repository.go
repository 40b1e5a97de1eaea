package reservation

import "context"

// Repository は予約リポジトリのインターフェース
type Repository interface {
	// Create は新しい予約を保存する
	Create(ctx context.Context, reservation *Reservation) error

	// GetByID はIDから予約を取得する
	GetByID(ctx context.Context, id string) (*Reservation, error)

	// List は検索条件に一致する予約を登録順に取得する（Filter は正規化済み）
	List(ctx context.Context, filter Filter) ([]*Reservation, error)

	// Update は読み込み時の version と status が一致する場合のみ予約を更新する
	// 一致しない場合は ErrReservationConflict を返す
	Update(ctx context.Context, reservation *Reservation, expected Status) error

	// CountByStatus はステータスごとの予約数を返す
	CountByStatus(ctx context.Context) (map[Status]int, error)
}
