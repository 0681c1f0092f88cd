// cache содержит in-memory блэклист субъектов с отозванными сессиями.
//
// Блэклист решает проблему stateless-токенов: access-токен удалённого
// пользователя остаётся криптографически валидным до истечения exp,
// поэтому мидлвар аутентификации дополнительно проверяет субъект
// по этому индексу. Индекс живёт в памяти процесса (O(1) на горячем
// пути, без обращений к БД) и дублируется в долговременное хранилище,
// из которого восстанавливается при рестарте.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pribylovaa/go-user-api/internal/pkg/log"
	"github.com/pribylovaa/go-user-api/internal/storage"
)

// Blacklist — потокобезопасный индекс отозванных субъектов.
//
// Мутации пишут сначала в память (read-your-write внутри процесса),
// затем в хранилище. Падение между двумя записями допустимо: после
// рестарта индекс перечитывается из хранилища, которое остаётся
// источником истины.
type Blacklist struct {
	// entries: email -> время блокировки (UTC).
	// sync.Map: чтения не блокируются на записях других ключей.
	entries sync.Map
	store   storage.BlacklistStorage
}

// New создаёт блэклист поверх долговременного хранилища.
// До начала обслуживания запросов необходимо вызвать Load.
func New(store storage.BlacklistStorage) *Blacklist {
	return &Blacklist{store: store}
}

// Load прогревает индекс из хранилища. Вызывается один раз на старте.
func (b *Blacklist) Load(ctx context.Context) error {
	const op = "cache.Blacklist.Load"

	entries, err := b.store.BlacklistEntries(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, e := range entries {
		b.entries.Store(e.Email, e.RevokedAt)
	}

	log.From(ctx).Info("blacklist_loaded", slog.Int("entries", len(entries)))

	return nil
}

// IsRevoked проверяет субъект по in-memory индексу.
// Хранилище на горячем пути не трогается.
func (b *Blacklist) IsRevoked(email string) bool {
	_, ok := b.entries.Load(email)
	return ok
}

// Revoke помечает субъект отозванным. Повторный вызов перезаписывает
// отметку времени. Вызывается при удалении пользователя.
func (b *Blacklist) Revoke(ctx context.Context, email string) error {
	const op = "cache.Blacklist.Revoke"

	now := time.Now().UTC()
	b.entries.Store(email, now)

	if err := b.store.SaveBlacklistEntry(ctx, email, now); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Unrevoke снимает блокировку. Вызывается при повторной регистрации
// ранее удалённого субъекта — доступ должен восстановиться сразу.
func (b *Blacklist) Unrevoke(ctx context.Context, email string) error {
	const op = "cache.Blacklist.Unrevoke"

	b.entries.Delete(email)

	if err := b.store.DeleteBlacklistEntry(ctx, email); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// EvictExpired удаляет записи старше olderThan из памяти и хранилища.
// Запись, пережившая максимальный срок жизни access-токена, больше
// ничего не защищает: все токены субъекта уже истекли сами.
// Ошибка удаления одной записи логируется, очистка продолжается.
func (b *Blacklist) EvictExpired(ctx context.Context, olderThan time.Duration) {
	lg := log.From(ctx)
	cutoff := time.Now().UTC().Add(-olderThan)

	var expired []string
	b.entries.Range(func(key, value any) bool {
		if revokedAt, ok := value.(time.Time); ok && revokedAt.Before(cutoff) {
			expired = append(expired, key.(string))
		}
		return true
	})

	for _, email := range expired {
		b.entries.Delete(email)

		if err := b.store.DeleteBlacklistEntry(ctx, email); err != nil {
			lg.Error("blacklist_evict_failed",
				slog.String("subject", email),
				slog.String("err", err.Error()),
			)
			continue
		}
	}

	if len(expired) > 0 {
		lg.Info("blacklist_evicted", slog.Int("entries", len(expired)))
	}
}

// Len возвращает текущий размер индекса. Используется в тестах и логах.
func (b *Blacklist) Len() int {
	n := 0
	b.entries.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}
