package config

import (
	"errors"

	"github.com/zalando/go-keyring"
)

// Keyring coordinates of the object storage key
const (
	KeyringService    = "shiptrack"
	KeyringStorageKey = "storage-key"
)

// StorageKey returns the storage key from the OS keyring, or "" when none is
// stored.
func StorageKey() (string, error) {
	v, err := keyring.Get(KeyringService, KeyringStorageKey)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return v, err
}

// SetStorageKey saves key in the OS keyring
func SetStorageKey(key string) error {
	if key == "" {
		return errors.New("storage key is empty")
	}
	return keyring.Set(KeyringService, KeyringStorageKey, key)
}

// DeleteStorageKey removes the stored key. Deleting a missing key is not an
// error.
func DeleteStorageKey() error {
	err := keyring.Delete(KeyringService, KeyringStorageKey)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
