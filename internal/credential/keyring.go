package credential

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/99designs/keyring"

	"github.com/nhle/taskapp/internal/store"
)

const serviceName = "taskapp"

// Keyring is a store.KV backed by the operating system keyring.
type Keyring struct {
	ring keyring.Keyring
}

var _ store.KV = (*Keyring)(nil)

// Open returns a Keyring using the first available system backend. fileDir
// is used by the encrypted file fallback when no native keyring exists.
func Open(fileDir string) (*Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  filepath.Join(fileDir, "credentials"),
		FilePasswordFunc:         keyring.FixedStringPrompt("taskapp-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return &Keyring{ring: ring}, nil
}

// New wraps an already opened keyring.
func New(ring keyring.Keyring) *Keyring {
	return &Keyring{ring: ring}
}

// Get retrieves a credential value by key from the keyring.
func (k *Keyring) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	item, err := k.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("getting credential %q: %w", key, store.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

// Set stores a credential value by key in the keyring.
func (k *Keyring) Set(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := k.ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: "taskapp " + key,
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}

// Delete removes a credential by key. Missing keys are ignored.
func (k *Keyring) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := k.ring.Remove(key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}

	return nil
}

// Clear removes every credential stored under the application's
// service name.
func (k *Keyring) Clear(ctx context.Context) error {
	keys, err := k.ring.Keys()
	if err != nil {
		return fmt.Errorf("listing credentials: %w", err)
	}

	for _, key := range keys {
		if err := k.Delete(ctx, key); err != nil {
			return err
		}
	}

	return nil
}
