// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/askdesk/internal/model"
)

// =============================================================================
// HELPERS
// =============================================================================

var base = time.Date(2025, 3, 1, 10, 30, 0, 123456789, time.UTC)

func sampleSession(id string, updated time.Time) model.ChatSession {
	return model.ChatSession{
		ID:    id,
		Title: "What are the hostel facilities?",
		Messages: []model.Message{
			{ID: "msg_u", Role: model.RoleUser, Content: "What are the hostel facilities?", Timestamp: updated.Add(-time.Second)},
			{
				ID: "msg_a", Role: model.RoleAssistant, Content: "Hostels are...", Timestamp: updated,
				Sources: []model.Source{{SourceFile: "hostel.pdf", TextChunk: "Rooms are air-conditioned"}},
			},
		},
		CreatedAt: updated.Add(-time.Second),
		UpdatedAt: updated,
	}
}

// backends returns a fresh instance of every backend kind.
func backends(t *testing.T) map[string]Backend {
	t.Helper()
	dir := t.TempDir()

	fb, err := NewFileBackend(filepath.Join(dir, "files"))
	require.NoError(t, err)
	sb, err := OpenSQLite(filepath.Join(dir, "db", SQLiteFileName))
	require.NoError(t, err)
	t.Cleanup(func() { sb.Close() })

	return map[string]Backend{
		KindFile:   fb,
		KindSQLite: sb,
		KindMemory: NewMemoryBackend(),
	}
}

func assertSessionEqual(t *testing.T, want, got model.ChatSession) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Title, got.Title)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "createdAt %v != %v", want.CreatedAt, got.CreatedAt)
	assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt), "updatedAt %v != %v", want.UpdatedAt, got.UpdatedAt)
	require.Len(t, got.Messages, len(want.Messages))
	for i := range want.Messages {
		w, g := want.Messages[i], got.Messages[i]
		assert.Equal(t, w.ID, g.ID)
		assert.Equal(t, w.Role, g.Role)
		assert.Equal(t, w.Content, g.Content)
		assert.Equal(t, w.Sources, g.Sources)
		assert.True(t, w.Timestamp.Equal(g.Timestamp), "message %d timestamp %v != %v", i, w.Timestamp, g.Timestamp)
	}
}

// =============================================================================
// ROUND TRIP
// =============================================================================

func TestSessionStore_SaveThenList(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := NewSessionStore(backend, StoreOptions{})
			want := sampleSession("session_1", base)

			require.NoError(t, store.Save(want))

			got := store.List()
			require.Len(t, got, 1)
			assertSessionEqual(t, want, got[0])

			byID, ok := store.Get("session_1")
			require.True(t, ok)
			assertSessionEqual(t, want, byID)
		})
	}
}

func TestSessionStore_LocalTimesRoundTrip(t *testing.T) {
	store := NewSessionStore(NewMemoryBackend(), StoreOptions{})
	loc := time.FixedZone("IST", 5*3600+1800)
	want := sampleSession("session_tz", base.In(loc))

	require.NoError(t, store.Save(want))
	got, ok := store.Get("session_tz")
	require.True(t, ok)
	assertSessionEqual(t, want, got)
}

func TestSessionStore_SaveReplacesByID(t *testing.T) {
	store := NewSessionStore(NewMemoryBackend(), StoreOptions{})

	first := sampleSession("session_1", base)
	require.NoError(t, store.Save(first))
	require.NoError(t, store.Save(sampleSession("session_2", base.Add(time.Minute))))

	updated := first
	updated.Messages = append(append([]model.Message(nil), first.Messages...),
		model.Message{ID: "msg_u2", Role: model.RoleUser, Content: "And fees?", Timestamp: base.Add(2 * time.Minute)},
		model.Message{ID: "msg_a2", Role: model.RoleAssistant, Content: "Fees are...", Timestamp: base.Add(3 * time.Minute)},
	)
	updated.UpdatedAt = base.Add(3 * time.Minute)
	require.NoError(t, store.Save(updated))

	got := store.List()
	require.Len(t, got, 2)
	// Storage order is kept: replaced in place.
	assert.Equal(t, "session_1", got[0].ID)
	assert.Len(t, got[0].Messages, 4)
	assert.Equal(t, "session_2", got[1].ID)
}

func TestSessionStore_ListEmpty(t *testing.T) {
	store := NewSessionStore(NewMemoryBackend(), StoreOptions{})
	got := store.List()
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSessionStore_SaveRejectsEmptyID(t *testing.T) {
	store := NewSessionStore(NewMemoryBackend(), StoreOptions{})
	assert.Error(t, store.Save(model.ChatSession{}))
}

// =============================================================================
// DELETE / CLEAR
// =============================================================================

func TestSessionStore_Delete(t *testing.T) {
	store := NewSessionStore(NewMemoryBackend(), StoreOptions{})
	require.NoError(t, store.Save(sampleSession("session_1", base)))
	require.NoError(t, store.Save(sampleSession("session_2", base)))

	require.NoError(t, store.Delete("session_1"))

	got := store.List()
	require.Len(t, got, 1)
	assert.Equal(t, "session_2", got[0].ID)
	_, ok := store.Get("session_1")
	assert.False(t, ok)
}

func TestSessionStore_DeleteMissingIsNoop(t *testing.T) {
	backend := NewMemoryBackend()
	store := NewSessionStore(backend, StoreOptions{})
	require.NoError(t, store.Save(sampleSession("session_1", base)))
	before, _, _ := backend.Get(store.Key())

	require.NoError(t, store.Delete("session_missing"))

	after, _, _ := backend.Get(store.Key())
	assert.Equal(t, before, after)
	assert.Len(t, store.List(), 1)

	// Also fine on an empty store.
	empty := NewSessionStore(NewMemoryBackend(), StoreOptions{})
	assert.NoError(t, empty.Delete("anything"))
}

func TestSessionStore_Clear(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := NewSessionStore(backend, StoreOptions{})
			require.NoError(t, store.Save(sampleSession("session_1", base)))
			require.NoError(t, store.Clear())

			assert.Empty(t, store.List())
			_, ok, err := backend.Get(store.Key())
			require.NoError(t, err)
			assert.False(t, ok, "key should be removed")

			// Clearing twice is fine.
			assert.NoError(t, store.Clear())
		})
	}
}

// =============================================================================
// NAMESPACES
// =============================================================================

func TestSessionStore_NamespacesDoNotCollide(t *testing.T) {
	backend := NewMemoryBackend()
	a := NewSessionStore(backend, StoreOptions{Namespace: "campus_a"})
	b := NewSessionStore(backend, StoreOptions{Namespace: "campus_b"})

	require.NoError(t, a.Save(sampleSession("session_a", base)))
	require.NoError(t, b.Save(sampleSession("session_b", base)))

	require.Len(t, a.List(), 1)
	assert.Equal(t, "session_a", a.List()[0].ID)
	require.Len(t, b.List(), 1)
	assert.Equal(t, "session_b", b.List()[0].ID)

	require.NoError(t, a.Clear())
	assert.Len(t, b.List(), 1)
}

func TestSessionStore_DefaultKey(t *testing.T) {
	store := NewSessionStore(NewMemoryBackend(), StoreOptions{})
	assert.Equal(t, "vit_chennai_chat_sessions", store.Key())
	assert.Equal(t, "x_chat_sessions", KeyFor("x"))
}

// =============================================================================
// FAIL-CLOSED DECODE
// =============================================================================

func TestSessionStore_CorruptDataListsEmpty(t *testing.T) {
	valid := `{"id":"s1","title":"t","messages":[{"id":"m1","role":"user","content":"hi","timestamp":"2025-03-01T10:30:00.000Z"}],"createdAt":"2025-03-01T10:30:00.000Z","updatedAt":"2025-03-01T10:30:00.000Z"}`

	tests := []struct {
		name string
		data string
	}{
		{"not json", `{{{`},
		{"object not array", `{"id":"s1"}`},
		{"wrong field type", `[{"id":1}]`},
		{"missing id", `[{"title":"t","messages":[],"createdAt":"2025-03-01T10:30:00Z","updatedAt":"2025-03-01T10:30:00Z"}]`},
		{"missing messages", `[{"id":"s1","createdAt":"2025-03-01T10:30:00Z","updatedAt":"2025-03-01T10:30:00Z"}]`},
		{"bad createdAt", `[{"id":"s1","messages":[],"createdAt":"yesterday","updatedAt":"2025-03-01T10:30:00Z"}]`},
		{"bad role", `[{"id":"s1","messages":[{"id":"m1","role":"system","content":"x","timestamp":"2025-03-01T10:30:00Z"}],"createdAt":"2025-03-01T10:30:00Z","updatedAt":"2025-03-01T10:30:00Z"}]`},
		{"bad timestamp", `[{"id":"s1","messages":[{"id":"m1","role":"user","content":"x","timestamp":"Invalid Date"}],"createdAt":"2025-03-01T10:30:00Z","updatedAt":"2025-03-01T10:30:00Z"}]`},
		{"one bad among good", `[` + valid + `,{"id":""}]`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			backend := NewMemoryBackend()
			store := NewSessionStore(backend, StoreOptions{})
			require.NoError(t, backend.Set(store.Key(), []byte(tc.data)))

			got := store.List()
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestSessionStore_AcceptsBrowserTimestamps(t *testing.T) {
	data := `[{"id":"session_1700000000000","title":"Library timings","messages":[
		{"id":"msg_1","role":"user","content":"Library timings?","timestamp":"2025-03-01T10:30:00.000Z"},
		{"id":"msg_1_assistant","role":"assistant","content":"8am-8pm","timestamp":"2025-03-01T10:30:02.512Z",
		 "sources":[{"text_chunk":"The library opens","source_file":"library.pdf"}]}],
		"createdAt":"2025-03-01T10:30:02.513Z","updatedAt":"2025-03-01T10:30:02.513Z"}]`

	backend := NewMemoryBackend()
	store := NewSessionStore(backend, StoreOptions{})
	require.NoError(t, backend.Set(store.Key(), []byte(data)))

	got := store.List()
	require.Len(t, got, 1)
	require.Len(t, got[0].Messages, 2)
	assert.Equal(t, 512*time.Millisecond, time.Duration(got[0].Messages[1].Timestamp.Nanosecond()))
	assert.Equal(t, "library.pdf", got[0].Messages[1].Sources[0].SourceFile)
}

func TestSessionStore_SaveOverwritesCorruptData(t *testing.T) {
	backend := NewMemoryBackend()
	store := NewSessionStore(backend, StoreOptions{})
	require.NoError(t, backend.Set(store.Key(), []byte("garbage")))

	require.NoError(t, store.Save(sampleSession("session_1", base)))
	assert.Len(t, store.List(), 1)
}

type failingBackend struct {
	Backend
	err error
}

func (f failingBackend) Get(string) ([]byte, bool, error) { return nil, false, f.err }
func (f failingBackend) Set(string, []byte) error         { return f.err }
func (f failingBackend) Remove(string) error              { return f.err }

func TestSessionStore_BackendFailures(t *testing.T) {
	boom := errors.New("disk full")
	store := NewSessionStore(failingBackend{Backend: NewMemoryBackend(), err: boom}, StoreOptions{})

	assert.Empty(t, store.List())
	assert.ErrorIs(t, store.Save(sampleSession("session_1", base)), boom)
	assert.ErrorIs(t, store.Clear(), boom)
	assert.ErrorIs(t, store.Delete("session_1"), boom)
}

// flakyReadBackend fails reads while readErr is set and writes normally.
type flakyReadBackend struct {
	Backend
	mu      sync.Mutex
	readErr error
	writes  int
}

func (f *flakyReadBackend) setReadErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readErr = err
}

func (f *flakyReadBackend) Get(key string) ([]byte, bool, error) {
	f.mu.Lock()
	err := f.readErr
	f.mu.Unlock()
	if err != nil {
		return nil, false, err
	}
	return f.Backend.Get(key)
}

func (f *flakyReadBackend) Set(key string, value []byte) error {
	f.mu.Lock()
	f.writes++
	f.mu.Unlock()
	return f.Backend.Set(key, value)
}

func TestSessionStore_ReadFailureDoesNotOverwrite(t *testing.T) {
	backend := &flakyReadBackend{Backend: NewMemoryBackend()}
	store := NewSessionStore(backend, StoreOptions{})

	for i := 1; i <= 3; i++ {
		require.NoError(t, store.Save(sampleSession(fmt.Sprintf("session_%d", i), base.Add(time.Duration(i)*time.Minute))))
	}
	writes := backend.writes

	boom := errors.New("read timeout")
	backend.setReadErr(boom)
	assert.ErrorIs(t, store.Save(sampleSession("session_4", base.Add(time.Hour))), boom)
	assert.ErrorIs(t, store.Delete("session_1"), boom)
	assert.Empty(t, store.List())
	assert.Equal(t, writes, backend.writes, "no write may follow a failed read")

	backend.setReadErr(nil)
	sessions := store.List()
	require.Len(t, sessions, 3)
	for i, s := range sessions {
		assert.Equal(t, fmt.Sprintf("session_%d", i+1), s.ID)
	}
}

// =============================================================================
// LIMITS
// =============================================================================

func TestSessionStore_MaxSessionsDropsOldest(t *testing.T) {
	store := NewSessionStore(NewMemoryBackend(), StoreOptions{MaxSessions: 2})

	require.NoError(t, store.Save(sampleSession("session_old", base)))
	require.NoError(t, store.Save(sampleSession("session_mid", base.Add(time.Hour))))
	require.NoError(t, store.Save(sampleSession("session_new", base.Add(2*time.Hour))))

	got := store.List()
	require.Len(t, got, 2)
	assert.Equal(t, "session_mid", got[0].ID)
	assert.Equal(t, "session_new", got[1].ID)
}

func TestSessionStore_MaxSessionsKeepsJustSaved(t *testing.T) {
	store := NewSessionStore(NewMemoryBackend(), StoreOptions{MaxSessions: 1})
	require.NoError(t, store.Save(sampleSession("session_future", base.Add(time.Hour))))
	// Older updatedAt, but it is the session being saved.
	require.NoError(t, store.Save(sampleSession("session_now", base)))

	got := store.List()
	require.Len(t, got, 1)
	assert.Equal(t, "session_now", got[0].ID)
}

func TestSessionStore_Unlimited(t *testing.T) {
	store := NewSessionStore(NewMemoryBackend(), StoreOptions{MaxSessions: 0})
	for i := 0; i < 10; i++ {
		require.NoError(t, store.Save(sampleSession(fmt.Sprintf("session_%d", i), base)))
	}
	assert.Len(t, store.List(), 10)
}

// =============================================================================
// LOOKUP / ORDERING
// =============================================================================

func TestSessionStore_Lookup(t *testing.T) {
	store := NewSessionStore(NewMemoryBackend(), StoreOptions{})
	require.NoError(t, store.Save(sampleSession("session_abc1", base)))
	require.NoError(t, store.Save(sampleSession("session_abc2", base)))
	require.NoError(t, store.Save(sampleSession("session_xyz", base)))

	got, err := store.Lookup("session_xyz")
	require.NoError(t, err)
	assert.Equal(t, "session_xyz", got.ID)

	got, err = store.Lookup("session_x")
	require.NoError(t, err)
	assert.Equal(t, "session_xyz", got.ID)

	_, err = store.Lookup("session_abc")
	assert.ErrorIs(t, err, ErrAmbiguousID)

	_, err = store.Lookup("nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = store.Lookup("")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_Recent(t *testing.T) {
	store := NewSessionStore(NewMemoryBackend(), StoreOptions{})
	require.NoError(t, store.Save(sampleSession("session_old", base)))
	require.NoError(t, store.Save(sampleSession("session_new", base.Add(time.Hour))))

	got := store.Recent()
	require.Len(t, got, 2)
	assert.Equal(t, "session_new", got[0].ID)
	// List itself keeps storage order.
	assert.Equal(t, "session_old", store.List()[0].ID)
}

// =============================================================================
// CONCURRENCY
// =============================================================================

func TestSessionStore_ConcurrentSaves(t *testing.T) {
	store := NewSessionStore(NewMemoryBackend(), StoreOptions{})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Save(sampleSession(fmt.Sprintf("session_%d", n), base))
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.List(), 20)
}

// =============================================================================
// FILE LAYOUT
// =============================================================================

func TestSessionStore_FileLayout(t *testing.T) {
	dir := t.TempDir()
	fb, err := NewFileBackend(dir)
	require.NoError(t, err)
	store := NewSessionStore(fb, StoreOptions{Namespace: "vit_chennai"})

	require.NoError(t, store.Save(sampleSession("session_1", base)))

	data, err := os.ReadFile(filepath.Join(dir, "vit_chennai_chat_sessions.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"createdAt":"2025-03-01T10:29:59.123456789Z"`)
	assert.Contains(t, string(data), `"source_file":"hostel.pdf"`)
	assert.Contains(t, string(data), `"text_chunk":"Rooms are air-conditioned"`)
}
