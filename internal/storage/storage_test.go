// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backends returns a fresh instance of every driver.
func backends(t *testing.T) map[string]KV {
	t.Helper()
	fkv, err := NewFileKV(filepath.Join(t.TempDir(), "state"))
	require.NoError(t, err)
	skv, err := NewSQLiteKV(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	return map[string]KV{
		"file":   fkv,
		"sqlite": skv,
		"memory": NewMemoryKV(),
	}
}

func TestKV_Contract(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer kv.Close()

			_, err := kv.Get("selectedProducts")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, kv.Set("selectedProducts", `[{"name":"A"}]`))
			got, err := kv.Get("selectedProducts")
			require.NoError(t, err)
			assert.Equal(t, `[{"name":"A"}]`, got)

			require.NoError(t, kv.Set("selectedProducts", `[]`))
			got, err = kv.Get("selectedProducts")
			require.NoError(t, err)
			assert.Equal(t, `[]`, got)

			require.NoError(t, kv.Delete("selectedProducts"))
			_, err = kv.Get("selectedProducts")
			assert.ErrorIs(t, err, ErrNotFound)

			assert.NoError(t, kv.Delete("never-written"))
		})
	}
}

func TestKV_ClosedStore(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, kv.Close())
			assert.ErrorIs(t, kv.Set("k", "v"), ErrClosed)
			_, err := kv.Get("k")
			assert.ErrorIs(t, err, ErrClosed)
			assert.ErrorIs(t, kv.Delete("k"), ErrClosed)
			assert.NoError(t, kv.Close())
		})
	}
}

func TestKV_Concurrent(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer kv.Close()
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < 20; j++ {
						assert.NoError(t, kv.Set("k", "v"))
						_, _ = kv.Get("k")
					}
				}()
			}
			wg.Wait()
			got, err := kv.Get("k")
			require.NoError(t, err)
			assert.Equal(t, "v", got)
		})
	}
}

func TestFileKV_Persists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	kv, err := NewFileKV(dir)
	require.NoError(t, err)
	require.NoError(t, kv.Set("selectedProducts", "[]"))
	require.NoError(t, kv.Close())

	_, err = os.Stat(filepath.Join(dir, "selectedProducts.json"))
	require.NoError(t, err)

	reopened, err := NewFileKV(dir)
	require.NoError(t, err)
	got, err := reopened.Get("selectedProducts")
	require.NoError(t, err)
	assert.Equal(t, "[]", got)
}

func TestFileKV_RejectsTraversal(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	require.NoError(t, err)
	for _, key := range []string{"", "../x", `a\b`, "..", "a/b"} {
		err := kv.Set(key, "v")
		assert.True(t, errors.Is(err, ErrInvalidKey), "key %q", key)
	}
}

func TestSQLiteKV_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.db")
	kv, err := NewSQLiteKV(path)
	require.NoError(t, err)
	require.NoError(t, kv.Set("selectedProducts", `[{"name":"B"}]`))
	require.NoError(t, kv.Close())

	reopened, err := NewSQLiteKV(path)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.Get("selectedProducts")
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"B"}]`, got)
}

func TestMemoryKV_FailWrites(t *testing.T) {
	kv := NewMemoryKV()
	boom := errors.New("quota exceeded")
	kv.FailWrites = boom
	assert.ErrorIs(t, kv.Set("k", "v"), boom)
	_, err := kv.Get("k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	kv, err := Open(DriverFile, filepath.Join(dir, "state"))
	require.NoError(t, err)
	assert.IsType(t, &FileKV{}, kv)

	kv, err = Open("SQLite", filepath.Join(dir, "state.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteKV{}, kv)
	kv.Close()

	kv, err = Open(DriverMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryKV{}, kv)

	_, err = Open("redis", "")
	assert.Error(t, err)
}

func TestSQLiteKV_FullSync(t *testing.T) {
	kv, err := NewSQLiteKV(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer kv.Close()

	// 2 is FULL.
	var level int
	require.NoError(t, kv.db.QueryRow("PRAGMA synchronous").Scan(&level))
	assert.Equal(t, 2, level)
}
