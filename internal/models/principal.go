package models

// Principal — аутентифицированный субъект запроса.
//
// Формируется мидлваром аутентификации из claims проверенного
// access-токена и передаётся дальше только через context запроса —
// никакого глобального per-request состояния.
type Principal struct {
	// Subject — идентификатор пользователя (email из claim "sub").
	Subject string
	// Role — роль из claim "role".
	Role int
}

// IsAdmin сообщает, имеет ли субъект административную роль.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
