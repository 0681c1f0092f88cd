// security содержит криптографические примитивы сессионной подсистемы:
// процессную RSA-пару для подписи токенов и генератор anti-CSRF токенов.
package security

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pribylovaa/go-user-api/internal/pkg/log"
	"github.com/pribylovaa/go-user-api/internal/storage"
)

// Логические имена блобов в хранилище ключей.
const (
	privateKeyName = "private"
	publicKeyName  = "public"
)

// MinKeyBits — нижняя граница размера RSA-ключа.
const MinKeyBits = 1024

// KeyPair — единственная на процесс RSA-пара для подписи и проверки токенов.
// Неизменяема после инициализации; безопасна для конкурентного чтения.
type KeyPair struct {
	private *rsa.PrivateKey
	public  *rsa.PublicKey
}

// NewKeyPair загружает пару из хранилища или, если хотя бы одной половины нет,
// генерирует новую и сохраняет обе половины (PKCS#8 для приватной, PKIX/X.509
// для публичной). Любая ошибка фатальна для старта: без доверенного ключа
// сессионная подсистема не имеет деградированного режима.
func NewKeyPair(ctx context.Context, keys storage.KeyStorage, bits int) (*KeyPair, error) {
	const op = "security.NewKeyPair"

	if bits < MinKeyBits {
		return nil, fmt.Errorf("%s: key size %d below minimum %d", op, bits, MinKeyBits)
	}

	lg := log.From(ctx)

	kp, err := load(ctx, keys)
	if err == nil {
		lg.Info("signing_keys_loaded")
		return kp, nil
	}

	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("signing_keys_absent_generating", slog.Int("bits", bits))

	private, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	privDER, err := x509.MarshalPKCS8PrivateKey(private)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pubDER, err := x509.MarshalPKIXPublicKey(&private.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := keys.SaveSigningKey(ctx, privateKeyName, privDER); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := keys.SaveSigningKey(ctx, publicKeyName, pubDER); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("signing_keys_generated")

	return &KeyPair{private: private, public: &private.PublicKey}, nil
}

// load читает и декодирует обе половины пары из хранилища.
func load(ctx context.Context, keys storage.KeyStorage) (*KeyPair, error) {
	const op = "security.load"

	privDER, err := keys.SigningKey(ctx, privateKeyName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pubDER, err := keys.SigningKey(ctx, publicKeyName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	priv, err := x509.ParsePKCS8PrivateKey(privDER)
	if err != nil {
		return nil, fmt.Errorf("%s: parse private key: %w", op, err)
	}

	private, ok := priv.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%s: stored private key is not RSA", op)
	}

	pub, err := x509.ParsePKIXPublicKey(pubDER)
	if err != nil {
		return nil, fmt.Errorf("%s: parse public key: %w", op, err)
	}

	public, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%s: stored public key is not RSA", op)
	}

	return &KeyPair{private: private, public: public}, nil
}

// Private возвращает приватный ключ для подписи.
func (kp *KeyPair) Private() *rsa.PrivateKey {
	return kp.private
}

// Public возвращает публичный ключ для проверки подписи.
func (kp *KeyPair) Public() *rsa.PublicKey {
	return kp.public
}
