package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/novapay/pkg/domain"
	"github.com/aretw0/novapay/pkg/ports"
)

const envelopeKey = "__encrypted__"

// ErrKeySize is returned for keys that are not 32 bytes long.
var ErrKeySize = errors.New("encryption key must be 32 bytes (AES-256)")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey encrypts new data. Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys are tried in order when the active key cannot decrypt,
	// so keys can be rotated without invalidating live sessions.
	FallbackKeys [][]byte
}

// ParseKey decodes a base64 encoded AES-256 key.
func ParseKey(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode key: %w", err)
	}
	if len(key) != 32 {
		return nil, ErrKeySize
	}
	return key, nil
}

type encryptionMiddleware struct {
	next   ports.StateStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that seals the whole wizard
// state with AES-GCM. Only the session ID, flow and status stay readable in
// the underlying store; payload (MPIN, OTP, passwords) and history do not.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, ErrKeySize
	}
	for _, k := range config.FallbackKeys {
		if len(k) != 32 {
			return nil, ErrKeySize
		}
	}
	return func(next ports.StateStore) ports.StateStore {
		return &encryptionMiddleware{next: next, config: config}
	}, nil
}

func (m *encryptionMiddleware) Save(ctx context.Context, sessionID string, state *domain.State) error {
	plainText, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt state: %w", err)
	}

	envelope := &domain.State{
		SessionID: state.SessionID,
		Flow:      state.Flow,
		Status:    state.Status,
		UpdatedAt: state.UpdatedAt,
		Payload: map[string]any{
			envelopeKey: base64.StdEncoding.EncodeToString(ciphertext),
		},
	}
	return m.next.Save(ctx, sessionID, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	envelope, err := m.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// Plain states are refused: once encryption is on, everything must be sealed.
	encoded, ok := envelope.Payload[envelopeKey].(string)
	if !ok {
		return nil, errors.New("state is missing encrypted data envelope")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt state: %w", err)
	}

	var state domain.State
	if err := json.Unmarshal(plainText, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted state: %w", err)
	}
	if state.Payload == nil {
		state.Payload = make(map[string]any)
	}
	return &state, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, sealed, nil)
}
