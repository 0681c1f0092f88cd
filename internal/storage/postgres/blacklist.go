package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/pribylovaa/go-user-api/internal/models"
)

// BlacklistEntries возвращает все записи блэклиста.
// Используется один раз на старте для прогрева in-memory индекса.
func (s *Storage) BlacklistEntries(ctx context.Context) ([]models.BlacklistEntry, error) {
	const op = "storage.postgres.BlacklistEntries"

	query := `
		SELECT email, revoked_at
		FROM user_blacklist
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var entries []models.BlacklistEntry
	for rows.Next() {
		var e models.BlacklistEntry
		if err := rows.Scan(&e.Email, &e.RevokedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return entries, nil
}

// SaveBlacklistEntry сохраняет запись блэклиста.
// Повторная блокировка того же email перезаписывает отметку времени.
func (s *Storage) SaveBlacklistEntry(ctx context.Context, email string, revokedAt time.Time) error {
	const op = "storage.postgres.SaveBlacklistEntry"

	query := `
		INSERT INTO user_blacklist(email, revoked_at)
		VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE SET revoked_at = EXCLUDED.revoked_at
	`

	if _, err := s.db.Exec(ctx, query, email, revokedAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// DeleteBlacklistEntry удаляет запись блэклиста.
// Отсутствие записи не считается ошибкой: удаление идемпотентно,
// что упрощает разблокировку при повторной регистрации и фоновую очистку.
func (s *Storage) DeleteBlacklistEntry(ctx context.Context, email string) error {
	const op = "storage.postgres.DeleteBlacklistEntry"

	query := `
		DELETE FROM user_blacklist
		WHERE email = $1
	`

	if _, err := s.db.Exec(ctx, query, email); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
