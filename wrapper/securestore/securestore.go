// Package securestore wraps an httpcache.Manager to add SHA-256 key hashing
// (always enabled) and optional AES-256-GCM encryption of cached entries.
package securestore

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"

	"github.com/arcbridge/httpcache"
)

const (
	scryptN   = 32768
	scryptR   = 8
	scryptP   = 1
	keyLength = 32
	nonceSize = 12
)

// Config holds the configuration for a Manager.
type Config struct {
	// Manager is the underlying storage backend to wrap (required).
	Manager httpcache.Manager

	// Passphrase is the secret used to encrypt/decrypt cached entries. If
	// empty, only key hashing is performed and entries are stored as-is.
	Passphrase string
}

// Manager wraps an httpcache.Manager, always hashing keys with SHA-256 and
// optionally encrypting entries with AES-256-GCM when a passphrase is set.
type Manager struct {
	next       httpcache.Manager
	gcm        cipher.AEAD
	passphrase string
}

// New wraps config.Manager per Config.
func New(config Config) (*Manager, error) {
	if config.Manager == nil {
		return nil, fmt.Errorf("manager cannot be nil")
	}

	m := &Manager{next: config.Manager, passphrase: config.Passphrase}

	if config.Passphrase != "" {
		if err := m.initEncryption(); err != nil {
			return nil, fmt.Errorf("failed to initialize encryption: %w", err)
		}
	}

	return m, nil
}

func (m *Manager) initEncryption() error {
	salt := sha256.Sum256([]byte("httpcache-securestore-salt-v1"))
	key, err := scrypt.Key([]byte(m.passphrase), salt[:], scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return fmt.Errorf("failed to derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("failed to create GCM: %w", err)
	}

	m.gcm = gcm
	return nil
}

func (m *Manager) hashKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}

// encrypt encrypts data with AES-256-GCM, prepending the nonce.
func (m *Manager) encrypt(data []byte) ([]byte, error) {
	if m.gcm == nil {
		return data, nil
	}

	nonce := make([]byte, m.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return m.gcm.Seal(nonce, nonce, data, nil), nil
}

// decrypt decrypts data previously produced by encrypt.
func (m *Manager) decrypt(data []byte) ([]byte, error) {
	if m.gcm == nil {
		return data, nil
	}

	if len(data) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}

	nonce := data[:nonceSize]
	ciphertext := data[nonceSize:]

	plaintext, err := m.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}

	return plaintext, nil
}

// Get implements httpcache.Manager.
func (m *Manager) Get(ctx context.Context, key string) ([]byte, bool, error) {
	hashedKey := m.hashKey(key)

	data, ok, err := m.next.Get(ctx, hashedKey)
	if err != nil || !ok {
		return nil, ok, err
	}

	plaintext, err := m.decrypt(data)
	if err != nil {
		httpcache.GetLogger().Warn("failed to decrypt cached entry", "key", hashedKey, "error", err)
		return nil, false, err
	}
	return plaintext, true, nil
}

// Put implements httpcache.Manager.
func (m *Manager) Put(ctx context.Context, key string, entry []byte) error {
	hashedKey := m.hashKey(key)

	toStore, err := m.encrypt(entry)
	if err != nil {
		httpcache.GetLogger().Warn("failed to encrypt entry", "key", hashedKey, "error", err)
		return err
	}

	return m.next.Put(ctx, hashedKey, toStore)
}

// Delete implements httpcache.Manager.
func (m *Manager) Delete(ctx context.Context, key string) error {
	return m.next.Delete(ctx, m.hashKey(key))
}

// IsEncrypted reports whether this Manager is configured with encryption.
func (m *Manager) IsEncrypted() bool {
	return m.gcm != nil
}

var _ httpcache.Manager = (*Manager)(nil)
