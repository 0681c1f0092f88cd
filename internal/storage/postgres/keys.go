package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pribylovaa/go-user-api/internal/storage"
)

// SigningKey возвращает DER-блоб ключа по имени.
func (s *Storage) SigningKey(ctx context.Context, name string) ([]byte, error) {
	const op = "storage.postgres.SigningKey"

	query := `
		SELECT value
		FROM signing_keys
		WHERE name = $1
	`

	var der []byte
	err := s.db.QueryRow(ctx, query, name).Scan(&der)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return der, nil
}

// SaveSigningKey сохраняет DER-блоб ключа под именем.
// Повторное сохранение под тем же именем перезаписывает блоб —
// ключевая пара генерируется один раз, но upsert делает операцию идемпотентной.
func (s *Storage) SaveSigningKey(ctx context.Context, name string, der []byte) error {
	const op = "storage.postgres.SaveSigningKey"

	query := `
		INSERT INTO signing_keys(name, value, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value
	`

	if _, err := s.db.Exec(ctx, query, name, der); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
