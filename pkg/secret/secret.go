// Package secret шифрует учётные данные поставщиков перед записью в хранилище.
package secret

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"golang.org/x/crypto/chacha20poly1305"
)

// Mask возвращается вызывающему вместо любого секрета.
const Mask = "***"

var ErrMalformedCiphertext = fmt.Errorf("malformed sealed secret")

// Sealer шифрует строки XChaCha20-Poly1305 с ключом из конфигурации.
type Sealer struct {
	key []byte
}

// NewSealer принимает ключ длиной chacha20poly1305.KeySize (32 байта).
func NewSealer(key []byte) (*Sealer, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("secret key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}

	k := make([]byte, len(key))
	copy(k, key)
	return &Sealer{key: k}, nil
}

// NewSealerFromBase64 разбирает ключ из base64 (переменная DROPSHIP_ENCRYPTION_KEY).
func NewSealerFromBase64(encoded string) (*Sealer, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, e.Wrap("decode secrets key", err)
	}
	return NewSealer(key)
}

// GenerateKey возвращает случайный ключ. Подходит только для in-memory режима:
// после перезапуска ранее зашифрованные значения не расшифровать.
func GenerateKey() []byte {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		panic(err)
	}
	return key
}

// Seal шифрует plain, результат: base64(nonce || ciphertext).
func (s *Sealer) Seal(plain string) (string, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", e.Wrap("Sealer.Seal", err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plain)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", e.Wrap("Sealer.Seal", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open расшифровывает значение, полученное из Seal.
func (s *Sealer) Open(sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", ErrMalformedCiphertext
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", e.Wrap("Sealer.Open", err)
	}

	if len(raw) < aead.NonceSize()+aead.Overhead() {
		return "", ErrMalformedCiphertext
	}

	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrMalformedCiphertext
	}

	return string(plain), nil
}
