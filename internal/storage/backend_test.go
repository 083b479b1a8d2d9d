// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackends_GetSetRemove(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := backend.Get("missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, backend.Set("k", []byte(`[1,2]`)))
			got, ok, err := backend.Get("k")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, `[1,2]`, string(got))

			require.NoError(t, backend.Set("k", []byte(`[3]`)))
			got, _, _ = backend.Get("k")
			assert.Equal(t, `[3]`, string(got))

			require.NoError(t, backend.Remove("k"))
			_, ok, err = backend.Get("k")
			require.NoError(t, err)
			assert.False(t, ok)

			assert.NoError(t, backend.Remove("k"), "removing an absent key is not an error")
		})
	}
}

func TestBackends_InvalidKeys(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"", "../escape", `a\b`, "a/b", ".."} {
				_, _, err := backend.Get(key)
				assert.ErrorIs(t, err, ErrInvalidKey, "Get(%q)", key)
				assert.ErrorIs(t, backend.Set(key, nil), ErrInvalidKey, "Set(%q)", key)
				assert.ErrorIs(t, backend.Remove(key), ErrInvalidKey, "Remove(%q)", key)
			}
		})
	}
}

func TestMemoryBackend_CopiesValues(t *testing.T) {
	b := NewMemoryBackend()
	value := []byte("abc")
	require.NoError(t, b.Set("k", value))
	value[0] = 'X'

	got, _, _ := b.Get("k")
	assert.Equal(t, "abc", string(got))
	got[1] = 'Y'

	again, _, _ := b.Get("k")
	assert.Equal(t, "abc", string(again))
}

func TestMemoryBackend_Closed(t *testing.T) {
	b := NewMemoryBackend()
	require.NoError(t, b.Close())
	_, _, err := b.Get("k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, b.Set("k", nil), ErrClosed)
}

func TestFileBackend_Path(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ns_chat_sessions.json"), b.Path("ns_chat_sessions"))
	assert.Equal(t, dir, b.Dir())

	_, err = NewFileBackend("")
	assert.Error(t, err)
}

func TestSQLiteBackend_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), SQLiteFileName)

	b, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, b.Set("k", []byte("kept")))
	require.NoError(t, b.Close())

	b, err = OpenSQLite(path)
	require.NoError(t, err)
	defer b.Close()
	got, ok, err := b.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "kept", string(got))
	assert.Equal(t, path, b.Path())
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	b, err := Open(KindFile, filepath.Join(dir, "f"))
	require.NoError(t, err)
	assert.IsType(t, &FileBackend{}, b)

	b, err = Open(KindSQLite, filepath.Join(dir, "s"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteBackend{}, b)
	require.NoError(t, b.Close())
	_, err = os.Stat(filepath.Join(dir, "s", SQLiteFileName))
	assert.NoError(t, err)

	b, err = Open(KindMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryBackend{}, b)

	_, err = Open("redis", dir)
	assert.Error(t, err)

	assert.True(t, ValidKind("sqlite"))
	assert.False(t, ValidKind("redis"))
}
