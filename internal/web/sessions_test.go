package web

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/proposals/internal/core"
)

func newTestStore(ttl time.Duration, max int) (*SessionStore, *time.Time, *[]int) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	var counts []int
	s := NewSessionStore(ttl, max,
		func(id uuid.UUID) *core.Controller { return core.NewController(nil, core.WithID(id)) },
		func(n int) { counts = append(counts, n) },
	)
	s.now = func() time.Time { return now }
	return s, &now, &counts
}

func TestSessionStore_CreateGetDelete(t *testing.T) {
	s, _, counts := newTestStore(time.Hour, 0)

	ctrl, err := s.Create()
	require.NoError(t, err)

	got, err := s.Get(ctrl.ID())
	require.NoError(t, err)
	assert.Same(t, ctrl, got)

	require.NoError(t, s.Delete(ctrl.ID()))
	_, err = s.Get(ctrl.ID())
	assert.ErrorIs(t, err, ErrFormNotFound)
	assert.ErrorIs(t, s.Delete(ctrl.ID()), ErrFormNotFound)

	assert.Equal(t, []int{1, 0}, *counts)
}

func TestSessionStore_Max(t *testing.T) {
	s, _, _ := newTestStore(time.Hour, 2)

	_, err := s.Create()
	require.NoError(t, err)
	_, err = s.Create()
	require.NoError(t, err)

	_, err = s.Create()
	assert.ErrorIs(t, err, ErrTooManyForms)
	assert.Equal(t, 2, s.Len())
}

func TestSessionStore_Sweep(t *testing.T) {
	s, now, counts := newTestStore(time.Hour, 0)

	idle, err := s.Create()
	require.NoError(t, err)
	active, err := s.Create()
	require.NoError(t, err)

	*now = now.Add(50 * time.Minute)
	_, err = s.Get(active.ID())
	require.NoError(t, err)

	*now = now.Add(20 * time.Minute)
	assert.Equal(t, 1, s.Sweep())

	_, err = s.Get(idle.ID())
	assert.ErrorIs(t, err, ErrFormNotFound)
	_, err = s.Get(active.ID())
	assert.NoError(t, err)
	assert.Equal(t, 1, (*counts)[len(*counts)-1])
}

func TestSessionStore_SweepDisabled(t *testing.T) {
	s, now, _ := newTestStore(0, 0)
	_, err := s.Create()
	require.NoError(t, err)

	*now = now.Add(24 * time.Hour)
	assert.Equal(t, 0, s.Sweep())
	assert.Equal(t, 1, s.Len())
}
