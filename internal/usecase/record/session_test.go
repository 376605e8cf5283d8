package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionStore_EvictsIdleSessions(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := newSessionStore(time.Hour)
	store.now = func() time.Time { return now }

	idle := store.get("idle")
	idle.page = 3
	store.get("active")

	now = now.Add(45 * time.Minute)
	store.get("active")

	// A new session triggers eviction of the ones idle past the ttl
	now = now.Add(30 * time.Minute)
	store.get("new")

	var ids []string
	for id := range store.items {
		ids = append(ids, id)
	}
	assert.ElementsMatch(t, []string{"active", "new"}, ids)

	// A returning idle session starts over
	assert.Equal(t, int64(1), store.get("idle").page)
}

func TestSessionStore_ForEachShiftsEditing(t *testing.T) {
	store := newSessionStore(0)
	for id, idx := range map[string]int{"a": 0, "b": 2, "c": 5} {
		store.get(id).openModal(titleEditUser, &idx)
	}
	store.get("d")

	store.forEach(func(s *session) { s.shiftAfterDelete(2) })

	assert.Equal(t, 0, *store.get("a").editing)
	assert.Nil(t, store.get("b").editing)
	assert.False(t, store.get("b").modal)
	assert.Equal(t, 4, *store.get("c").editing)
	assert.Nil(t, store.get("d").editing)
}
