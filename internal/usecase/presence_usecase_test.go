package usecase

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentranbao-ct/community-realtime/internal/models"
)

type eventLog struct {
	mu     sync.Mutex
	events []models.PresenceEvent
}

func (l *eventLog) record(ev models.PresenceEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) all() []models.PresenceEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.PresenceEvent(nil), l.events...)
}

func newRegistry(t *testing.T) (*PresenceRegistry, *clock.Mock, *eventLog) {
	t.Helper()
	mock := clock.NewMock()
	r := NewPresenceRegistry(mock, time.Second)
	log := &eventLog{}
	r.OnChange(log.record)
	t.Cleanup(r.Close)
	return r, mock, log
}

func TestPresenceRegistry_SetStatus(t *testing.T) {
	t.Parallel()
	r, _, log := newRegistry(t)

	u, err := r.SetStatus("alice", models.StatusAway)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAway, u.Status)
	assert.Equal(t, models.RoleMember, u.Role)

	_, err = r.SetStatus("alice", models.StatusAway)
	require.NoError(t, err)
	assert.Len(t, log.all(), 1, "unchanged status emits nothing")

	_, err = r.SetStatus("alice", "sleeping")
	assert.True(t, models.IsValidation(err))

	got, ok := r.User("alice")
	require.True(t, ok)
	assert.Equal(t, models.StatusAway, got.Status)

	_, ok = r.User("nobody")
	assert.False(t, ok)
}

func TestPresenceRegistry_Typing(t *testing.T) {
	t.Parallel()

	t.Run("auto clears after the quiet period", func(t *testing.T) {
		r, mock, log := newRegistry(t)
		r.SetTyping("bob", "room", true)

		u, ok := r.User("bob")
		require.True(t, ok)
		assert.True(t, u.Typing)
		assert.Len(t, r.TypingUsers("room"), 1)

		mock.Add(500 * time.Millisecond)
		r.SetTyping("bob", "room", true)
		mock.Add(700 * time.Millisecond)
		assert.Len(t, r.TypingUsers("room"), 1, "refresh re-arms the timer")

		mock.Add(400 * time.Millisecond)
		assert.Eventually(t, func() bool { return len(r.TypingUsers("room")) == 0 }, time.Second, 5*time.Millisecond)
		u, _ = r.User("bob")
		assert.False(t, u.Typing)

		events := log.all()
		require.Len(t, events, 2)
		assert.True(t, events[0].Typing)
		assert.False(t, events[1].Typing)
		assert.Equal(t, "room", events[1].RoomID)
	})

	t.Run("explicit stop", func(t *testing.T) {
		r, mock, log := newRegistry(t)
		r.SetTyping("bob", "room", true)
		r.SetTyping("bob", "room", false)
		r.SetTyping("bob", "room", false)
		mock.Add(2 * time.Second)
		time.Sleep(20 * time.Millisecond)
		assert.Len(t, log.all(), 2)
	})

	t.Run("offline clears typing everywhere", func(t *testing.T) {
		r, _, log := newRegistry(t)
		r.SetTyping("bob", "a", true)
		r.SetTyping("bob", "b", true)
		_, err := r.SetStatus("bob", models.StatusOffline)
		require.NoError(t, err)

		assert.Empty(t, r.TypingUsers("a"))
		assert.Empty(t, r.TypingUsers("b"))
		events := log.all()
		require.Len(t, events, 5)
		assert.Equal(t, models.PresenceEventStatus, events[4].Type)
	})
}

func TestPresenceRegistry_UpsertProfile(t *testing.T) {
	t.Parallel()
	r, _, _ := newRegistry(t)

	u := r.UpsertProfile("carol", models.UserProfile{Name: "Carol", Role: models.RoleModerator, Badges: []string{"early"}})
	assert.Equal(t, "Carol", u.Name)
	assert.Equal(t, models.RoleModerator, u.Role)

	u = r.UpsertProfile("carol", models.UserProfile{Avatar: "c.png"})
	assert.Equal(t, "Carol", u.Name)
	assert.Equal(t, "c.png", u.Avatar)
	assert.Equal(t, []string{"early"}, u.Badges)

	r.UpsertProfile("adam", models.UserProfile{})
	users := r.Users()
	require.Len(t, users, 2)
	assert.Equal(t, "adam", users[0].ID)
}

func TestPresenceRegistry_ShortQuietPeriodOnRealClock(t *testing.T) {
	t.Parallel()
	r := NewPresenceRegistry(clock.New(), time.Millisecond)
	t.Cleanup(r.Close)

	const rooms = 500
	for i := 0; i < rooms; i++ {
		r.SetTyping("bob", "room-"+strconv.Itoa(i), true)
	}

	assert.Eventually(t, func() bool {
		for i := 0; i < rooms; i++ {
			if len(r.TypingUsers("room-"+strconv.Itoa(i))) > 0 {
				return false
			}
		}
		return true
	}, 5*time.Second, 10*time.Millisecond)
	u, ok := r.User("bob")
	require.True(t, ok)
	assert.False(t, u.Typing)
}
