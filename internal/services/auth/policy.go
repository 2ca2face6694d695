package auth

import (
	"strings"

	"github.com/warrenposo/cloudmining-backend/internal/models"
)

// RolePolicy назначает роль профиля по email при регистрации и
// самовосстановлении. Единственное место, где вычисляется роль: все
// остальные слои доверяют полю role.
type RolePolicy interface {
	RoleFor(email string) string
}

// AllowlistPolicy выдаёт admin только при точном совпадении email со
// списком привилегированных адресов из конфига.
type AllowlistPolicy struct {
	admins map[string]struct{}
}

// NewAllowlistPolicy создает политику по списку email администраторов.
func NewAllowlistPolicy(adminEmails []string) *AllowlistPolicy {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		admins[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	return &AllowlistPolicy{admins: admins}
}

// RoleFor возвращает admin для адресов из списка, иначе user.
func (p *AllowlistPolicy) RoleFor(email string) string {
	if _, ok := p.admins[strings.ToLower(strings.TrimSpace(email))]; ok {
		return models.RoleAdmin
	}
	return models.RoleUser
}
