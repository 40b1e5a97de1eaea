package identity

import "errors"

var (
	ErrUnauthenticated = errors.New("認証が必要です")
	ErrForbidden       = errors.New("この操作を行う権限がありません")
)
