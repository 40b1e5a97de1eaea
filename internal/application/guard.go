package application

import (
	"github.com/sanosuguru/go-table-reservation/internal/domain/identity"
)

type requirementKind int

const (
	requireAuthenticated requirementKind = iota
	requireAnyOf
	requireOwnerOr
)

// Requirement は操作に必要な権限を表す
type Requirement struct {
	kind  requirementKind
	roles []identity.Role
}

// Authenticated は認証済みであれば誰でも許可する
func Authenticated() Requirement {
	return Requirement{kind: requireAuthenticated}
}

// AnyOf は指定ロールのいずれかを要求する（空なら認証済みのみ）
func AnyOf(roles ...identity.Role) Requirement {
	return Requirement{kind: requireAnyOf, roles: roles}
}

// OwnerOr はリソース所有者か、指定ロールのいずれかを要求する
func OwnerOr(roles ...identity.Role) Requirement {
	return Requirement{kind: requireOwnerOr, roles: roles}
}

// Authorizer は操作の可否を判定する
type Authorizer interface {
	Permit(caller *identity.Identity, req Requirement, resourceOwnerID string) error
}

// Guard は状態を持たない権限判定
type Guard struct{}

// NewGuard はGuardを作成する
func NewGuard() *Guard {
	return &Guard{}
}

// Permit は許可なら nil、未認証なら identity.ErrUnauthenticated、
// 権限不足なら identity.ErrForbidden を返す
func (g *Guard) Permit(caller *identity.Identity, req Requirement, resourceOwnerID string) error {
	if !caller.IsAuthenticated() {
		return identity.ErrUnauthenticated
	}
	switch req.kind {
	case requireAuthenticated:
		return nil
	case requireAnyOf:
		if len(req.roles) == 0 || caller.HasAnyRole(req.roles...) {
			return nil
		}
	case requireOwnerOr:
		if caller.HasAnyRole(req.roles...) {
			return nil
		}
		if resourceOwnerID != "" && caller.UserID == resourceOwnerID {
			return nil
		}
	}
	return identity.ErrForbidden
}

var _ Authorizer = (*Guard)(nil)
