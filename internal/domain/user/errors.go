package user

import (
	"errors"
	"fmt"
)

// User ドメインのエラー定義
var (
	ErrUserNotFound       = errors.New("ユーザーが見つかりません")
	ErrEmailAlreadyExists = errors.New("ユーザーは既に存在します")
	ErrInvalidCredentials = errors.New("メールアドレスまたはパスワードが正しくありません")
	ErrValidation         = errors.New("入力値が不正です")
)

var (
	ErrEmailRequired    = fmt.Errorf("%w: メールアドレスは必須です", ErrValidation)
	ErrInvalidEmail     = fmt.Errorf("%w: メールアドレスの形式が不正です", ErrValidation)
	ErrNameRequired     = fmt.Errorf("%w: 名前は必須です", ErrValidation)
	ErrRolesRequired    = fmt.Errorf("%w: ロールは必須です", ErrValidation)
	ErrPasswordTooShort = fmt.Errorf("%w: パスワードは%d文字以上で指定してください", ErrValidation, MinPasswordLength)
)
