package identity

import "strings"

// Role は呼び出し元のロールを表す
type Role string

const (
	RoleGuest    Role = "guest"
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

// ParseRoles は文字列のロール一覧を Role に変換する（未知のロールは捨てる）
func ParseRoles(values []string) []Role {
	roles := make([]Role, 0, len(values))
	for _, v := range values {
		switch r := Role(strings.ToLower(strings.TrimSpace(v))); r {
		case RoleGuest, RoleEmployee, RoleAdmin:
			roles = append(roles, r)
		}
	}
	return roles
}

// Identity はリクエストごとに検証済みの資格情報から得られる呼び出し元
type Identity struct {
	UserID string
	Name   string
	Roles  []Role
}

// IsAuthenticated はユーザーIDとロールを1つ以上持つかを返す
func (i *Identity) IsAuthenticated() bool {
	return i != nil && i.UserID != "" && len(i.Roles) > 0
}

// HasRole は指定ロールを持つかを返す
func (i *Identity) HasRole(role Role) bool {
	if i == nil {
		return false
	}
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole は指定ロールのいずれかを持つかを返す
func (i *Identity) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if i.HasRole(r) {
			return true
		}
	}
	return false
}

// IsEmployee は従業員ロールを持つかを返す
func (i *Identity) IsEmployee() bool {
	return i.HasRole(RoleEmployee)
}

// RoleStrings はロールを文字列スライスで返す
func (i *Identity) RoleStrings() []string {
	if i == nil {
		return nil
	}
	out := make([]string, len(i.Roles))
	for n, r := range i.Roles {
		out[n] = string(r)
	}
	return out
}
