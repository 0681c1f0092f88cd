package postgres

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-user-api/internal/models"
	"github.com/pribylovaa/go-user-api/internal/storage"
)

func testUser(email string) *models.User {
	now := time.Now().UTC()
	return &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "hash",
		Role:         models.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// TestIntegration_SaveUser_And_GetByEmail_And_ByID_OK — happy-path:
// сохранение пользователя и последующий поиск по email и ID; проверка CITEXT (регистронезависимо) и таймстемпов.
func TestIntegration_SaveUser_And_GetByEmail_And_ByID_OK(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	u := testUser("User@Example.Com")
	require.NoError(t, st.SaveUser(context.Background(), u))

	gotByEmail, err := st.UserByEmail(context.Background(), strings.ToLower(u.Email))
	require.NoError(t, err)
	require.Equal(t, strings.ToLower(u.Email), strings.ToLower(gotByEmail.Email))
	require.Equal(t, u.Role, gotByEmail.Role)
	require.WithinDuration(t, u.CreatedAt, gotByEmail.CreatedAt, time.Second)
	require.WithinDuration(t, u.UpdatedAt, gotByEmail.UpdatedAt, time.Second)

	gotByID, err := st.UserByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.Equal(t, u.ID, gotByID.ID)
}

// TestIntegration_SaveUser_UniqueEmail_CaseInsensitive_Violation — конфликт уникальности по email
// при различии только в регистре, ожидаем storage.ErrAlreadyExists.
func TestIntegration_SaveUser_UniqueEmail_CaseInsensitive_Violation(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	a := testUser("user@example.com")
	require.NoError(t, st.SaveUser(context.Background(), a))

	b := testUser("USER@EXAMPLE.COM") // тот же email, другой регистр
	err := st.SaveUser(context.Background(), b)
	require.Error(t, err)
	require.ErrorIs(t, err, storage.ErrAlreadyExists)
}

// TestIntegration_UserByEmail_NotFound — поиск несуществующего email, ожидаем storage.ErrNotFound.
func TestIntegration_UserByEmail_NotFound(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	_, err := st.UserByEmail(context.Background(), "absent@example.com")
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = st.UserByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, storage.ErrNotFound)
}

// TestIntegration_UpdateUser_OK — обновление hash-а пароля и updated_at.
func TestIntegration_UpdateUser_OK(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	u := testUser("user@example.com")
	require.NoError(t, st.SaveUser(context.Background(), u))

	u.PasswordHash = "new-hash"
	u.UpdatedAt = time.Now().UTC()
	require.NoError(t, st.UpdateUser(context.Background(), u))

	got, err := st.UserByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.Equal(t, "new-hash", got.PasswordHash)
}

// TestIntegration_UpdateUser_Absent — обновление несуществующего пользователя, ожидаем storage.ErrNotFound.
func TestIntegration_UpdateUser_Absent(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	u := testUser("ghost@example.com")
	err := st.UpdateUser(context.Background(), u)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

// TestIntegration_DeleteUser_OK — удаление; повторное удаление возвращает storage.ErrNotFound.
func TestIntegration_DeleteUser_OK(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	u := testUser("user@example.com")
	require.NoError(t, st.SaveUser(context.Background(), u))

	require.NoError(t, st.DeleteUser(context.Background(), u.ID))

	_, err := st.UserByID(context.Background(), u.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)

	err = st.DeleteUser(context.Background(), u.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

// TestIntegration_ListUsers — выборка всех пользователей.
func TestIntegration_ListUsers(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	require.NoError(t, st.SaveUser(context.Background(), testUser("a@example.com")))
	require.NoError(t, st.SaveUser(context.Background(), testUser("b@example.com")))

	users, err := st.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
}

// TestIntegration_SaveUser_ContextDeadlineExceeded — SaveUser с мгновенным дедлайном
// должен завершиться ошибкой context.DeadlineExceeded.
func TestIntegration_SaveUser_ContextDeadlineExceeded(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()

	err := st.SaveUser(ctx, testUser("user@example.com"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
