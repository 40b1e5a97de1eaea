package reservation

import (
	"errors"
	"fmt"
)

// Reservation ドメインのエラー定義
var (
	ErrReservationNotFound    = errors.New("予約が見つかりません")
	ErrInvalidStateTransition = errors.New("予約済み状態の予約のみ変更できます")
	ErrReservationConflict    = errors.New("予約が同時に更新されました")
	ErrValidation             = errors.New("入力値が不正です")
)

// 入力検証エラー（すべて ErrValidation をラップする）
var (
	ErrUserIDRequired      = fmt.Errorf("%w: ユーザーIDは必須です", ErrValidation)
	ErrInvalidUserID       = fmt.Errorf("%w: ユーザーIDの形式が不正です", ErrValidation)
	ErrArrivalTimeRequired = fmt.Errorf("%w: 到着予定時刻は必須です", ErrValidation)
	ErrTableSizeRequired   = fmt.Errorf("%w: テーブルサイズ情報は必須です", ErrValidation)
	ErrInvalidStatus       = fmt.Errorf("%w: 不明なステータスです", ErrValidation)
	ErrInvalidOffset       = fmt.Errorf("%w: offset は0以上で指定してください", ErrValidation)
	ErrInvalidTimeRange    = fmt.Errorf("%w: fromTime は toTime 以前で指定してください", ErrValidation)
)
