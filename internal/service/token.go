package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pribylovaa/go-user-api/internal/models"
	"github.com/pribylovaa/go-user-api/internal/pkg/log"
	"github.com/pribylovaa/go-user-api/internal/storage"
)

// sessionClaims — состав подписанного токена: {sub, iss, exp, role}.
// Access- и refresh-токены различаются только TTL и именем cookie.
type sessionClaims struct {
	Role int `json:"role"`
	jwt.RegisteredClaims
}

// IssueAccessToken выпускает короткоживущий access-токен.
func (s *Service) IssueAccessToken(ctx context.Context, subject string, role int) (string, error) {
	return s.issueToken(ctx, subject, role, s.cfg.AccessTokenTTL)
}

// IssueRefreshToken выпускает долгоживущий refresh-токен.
func (s *Service) IssueRefreshToken(ctx context.Context, subject string, role int) (string, error) {
	return s.issueToken(ctx, subject, role, s.cfg.RefreshTokenTTL)
}

// issueToken подписывает claims приватным ключом (RS256) и сериализует
// в компактную форму.
func (s *Service) issueToken(ctx context.Context, subject string, role int, ttl time.Duration) (string, error) {
	const op = "service.token.issueToken"

	now := time.Now().UTC()

	claims := sessionClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(s.keys.Private())
	if err != nil {
		log.From(ctx).Error("token_sign_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// parseToken выполняет общие для обоих видов токенов проверки:
// подпись, срок действия, issuer.
//
// Принимаются ТОЛЬКО RSA-подписанные токены: allow-list методов плюс
// явная проверка в keyfunc закрывают unsigned ("none"), HMAC и любые
// прочие варианты единым отказом — никакого fallthrough по типам.
// Наружу любая причина схлопывается в ErrInvalidToken/ErrTokenExpired.
func (s *Service) parseToken(raw string) (*sessionClaims, error) {
	const op = "service.token.parseToken"

	token, err := jwt.ParseWithClaims(raw, &sessionClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodRS256 {
				return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
			}

			return s.keys.Public(), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithLeeway(5*time.Second),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return claims, nil
}

// VerifyAccessToken проверяет access-токен и возвращает субъект запроса.
// Блэклист здесь сознательно не трогается: отзыв — ответственность
// мидлвара, так TokenService остаётся тестируемым в изоляции.
func (s *Service) VerifyAccessToken(raw string) (*models.Principal, error) {
	const op = "service.token.VerifyAccessToken"

	claims, err := s.parseToken(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.Principal{
		Subject: claims.Subject,
		Role:    claims.Role,
	}, nil
}

// VerifyRefreshToken проверяет refresh-токен и дополнительно убеждается,
// что субъект всё ещё существует. Это закрывает пользователей, удалённых
// между выпуском и refresh, которых уже (или ещё) нет в блэклисте.
// Отсутствие пользователя маскируется под ErrInvalidToken, чтобы не
// подтверждать неаутентифицированному вызывающему существование аккаунта.
func (s *Service) VerifyRefreshToken(ctx context.Context, raw string) (*models.User, error) {
	const op = "service.token.VerifyRefreshToken"

	lg := log.From(ctx)

	claims, err := s.parseToken(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.storage.UserByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("refresh_subject_absent", slog.String("op", op))
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		lg.Error("refresh_user_lookup_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}
