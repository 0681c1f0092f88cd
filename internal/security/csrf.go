package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// csrfTokenBytes — энтропия anti-CSRF токена.
const csrfTokenBytes = 32

// NewCSRFToken возвращает криптографически случайный anti-CSRF токен.
// Токен нигде не хранится на сервере: валидность — это строгое равенство
// значения в cookie и одноимённом заголовке запроса (double-submit).
func NewCSRFToken() (string, error) {
	const op = "security.NewCSRFToken"

	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
