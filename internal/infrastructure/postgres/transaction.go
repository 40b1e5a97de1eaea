package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-table-reservation/internal/domain/transaction"
)

// sqlTx は sqlx.Tx を transaction.Tx として扱う
// Commit / Rollback は埋め込んだ sql.Tx のものを使う
type sqlTx struct {
	*sqlx.Tx
}

// TxManager は sqlx.DB を使用したトランザクションマネージャー
type TxManager struct {
	db *sqlx.DB
}

func NewTxManager(db *sqlx.DB) *TxManager {
	return &TxManager{db: db}
}

// Begin はユーザー登録などで使うトランザクションを開始する
func (m *TxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlTx{Tx: tx}, nil
}

// UnwrapTx は TxManager が開始したトランザクションから sqlx.Tx を取り出す
// それ以外の Tx 実装なら nil を返す
func UnwrapTx(tx transaction.Tx) *sqlx.Tx {
	if t, ok := tx.(*sqlTx); ok {
		return t.Tx
	}
	return nil
}

var _ transaction.Manager = (*TxManager)(nil)
