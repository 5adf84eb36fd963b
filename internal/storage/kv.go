// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by Get when the key has never been written or
	// was deleted.
	ErrNotFound = errors.New("storage: key not found")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("storage: closed")

	// ErrInvalidKey is returned for keys that cannot be stored.
	ErrInvalidKey = errors.New("storage: invalid key")
)

// Driver names accepted by Open.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// KV is a string-keyed, string-valued durable store. Implementations are
// safe for concurrent use.
type KV interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}

// Open returns the backend named by driver rooted at path. The memory driver
// ignores path.
func Open(driver, path string) (KV, error) {
	switch strings.ToLower(driver) {
	case DriverFile, "":
		return NewFileKV(path)
	case DriverSQLite:
		return NewSQLiteKV(path)
	case DriverMemory:
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", driver)
	}
}

func checkKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
