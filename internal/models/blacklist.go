package models

import "time"

// BlacklistEntry — запись о заблокированном субъекте.
// Создаётся при удалении пользователя и живёт, пока мог бы жить
// последний выданный ему access-токен.
type BlacklistEntry struct {
	// Email — субъект, чьи сессии аннулированы.
	Email string
	// RevokedAt — момент блокировки (UTC).
	RevokedAt time.Time
}
