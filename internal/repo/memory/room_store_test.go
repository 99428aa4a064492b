package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentranbao-ct/community-realtime/internal/config"
	"github.com/nguyentranbao-ct/community-realtime/internal/models"
)

type fakePresence map[string]models.User

func (f fakePresence) User(userID string) (models.User, bool) {
	u, ok := f[userID]
	return u, ok
}

var t0 = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func newStore(t *testing.T) *RoomStore {
	t.Helper()
	cfg := &config.Config{Chat: config.ChatConfig{MaxMessageLength: 20, PageSize: 50}}
	return NewRoomStore(cfg, fakePresence{
		"alice": {ID: "alice", Name: "Alice", Status: models.StatusOnline},
	})
}

func createRoom(t *testing.T, s *RoomStore, id string, kind models.RoomKind, settings *models.RoomSettings, participants ...string) {
	t.Helper()
	_, err := s.CreateRoom(context.Background(), models.CreateRoomParams{
		ID:           id,
		Name:         id,
		Kind:         kind,
		Participants: participants,
		Settings:     settings,
	})
	require.NoError(t, err)
}

func send(s *RoomStore, roomID, sender, body string, at time.Time) (models.Message, error) {
	return s.AppendMessage(context.Background(), roomID, models.Message{
		SenderID:  sender,
		Body:      body,
		CreatedAt: at,
	})
}

func TestRoomStore_AppendMessage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("appends in order and decorates sender", func(t *testing.T) {
		s := newStore(t)
		createRoom(t, s, "r", models.RoomPublic, nil, "alice", "bob")

		var ids []string
		for i, body := range []string{"one", "two", "three"} {
			m, err := send(s, "r", "alice", body, t0.Add(time.Duration(i)*time.Second))
			require.NoError(t, err)
			assert.Equal(t, int64(i+1), m.Seq)
			require.NotNil(t, m.Sender)
			assert.Equal(t, "Alice", m.Sender.Name)
			ids = append(ids, m.ID)
		}

		msgs, err := s.Messages(ctx, "r", models.MessageQuery{})
		require.NoError(t, err)
		require.Len(t, msgs, 3)
		for i, m := range msgs {
			assert.Equal(t, ids[i], m.ID)
		}

		room, err := s.Room(ctx, "r", "bob")
		require.NoError(t, err)
		assert.Equal(t, 3, room.Unread)
		require.NotNil(t, room.LastMessage)
		assert.Equal(t, "three", room.LastMessage.Body)

		room, err = s.Room(ctx, "r", "alice")
		require.NoError(t, err)
		assert.Equal(t, 0, room.Unread)
	})

	t.Run("rejects too long body without mutation", func(t *testing.T) {
		s := newStore(t)
		createRoom(t, s, "r", models.RoomPublic, nil, "alice", "bob")

		_, err := send(s, "r", "alice", "this body is longer than twenty", t0)
		require.Error(t, err)
		assert.Equal(t, models.ReasonTooLong, models.ValidationReasonOf(err))

		room, err := s.Room(ctx, "r", "bob")
		require.NoError(t, err)
		assert.Equal(t, 0, room.MessageCount)
		assert.Equal(t, 0, room.Unread)
		assert.Nil(t, room.LastMessage)
	})

	t.Run("slow mode", func(t *testing.T) {
		s := newStore(t)
		settings := models.DefaultRoomSettings(100)
		settings.SlowMode = true
		settings.SlowModeDelayMs = 5000
		createRoom(t, s, "r", models.RoomPublic, &settings, "u", "v")

		_, err := send(s, "r", "u", "first", t0)
		require.NoError(t, err)

		_, err = send(s, "r", "u", "too soon", t0.Add(2000*time.Millisecond))
		require.Error(t, err)
		assert.Equal(t, models.ReasonSlowMode, models.ValidationReasonOf(err))

		_, err = send(s, "r", "v", "other sender", t0.Add(2000*time.Millisecond))
		require.NoError(t, err)

		_, err = send(s, "r", "u", "later", t0.Add(6000*time.Millisecond))
		require.NoError(t, err)

		msgs, err := s.Messages(ctx, "r", models.MessageQuery{})
		require.NoError(t, err)
		assert.Len(t, msgs, 3)
	})

	t.Run("membership", func(t *testing.T) {
		s := newStore(t)
		createRoom(t, s, "pub", models.RoomPublic, nil, "alice")
		createRoom(t, s, "priv", models.RoomPrivate, nil, "alice")

		_, err := send(s, "priv", "mallory", "hi", t0)
		assert.True(t, models.IsPermission(err))

		_, err = send(s, "pub", "carol", "hi", t0)
		require.NoError(t, err)
		parts, err := s.Participants(ctx, "pub")
		require.NoError(t, err)
		assert.Equal(t, []string{"alice", "carol"}, parts)
	})

	t.Run("reply and uploads", func(t *testing.T) {
		s := newStore(t)
		settings := models.DefaultRoomSettings(100)
		settings.AllowFileUpload = false
		createRoom(t, s, "r", models.RoomPublic, &settings, "alice")

		_, err := s.AppendMessage(ctx, "r", models.Message{SenderID: "alice", Body: "x", ReplyTo: "missing"})
		assert.True(t, models.IsNotFound(err))

		_, err = s.AppendMessage(ctx, "r", models.Message{SenderID: "alice", Body: "pic.png", Type: models.MessageTypeImage})
		assert.Equal(t, models.ReasonUploadsDisabled, models.ValidationReasonOf(err))

		_, err = send(s, "missing", "alice", "x", t0)
		assert.True(t, models.IsNotFound(err))
	})

	t.Run("active room does not accumulate unread", func(t *testing.T) {
		s := newStore(t)
		createRoom(t, s, "r", models.RoomPublic, nil, "alice", "bob")
		require.NoError(t, s.SetActiveRoom(ctx, "bob", "r"))

		_, err := send(s, "r", "alice", "hi", t0)
		require.NoError(t, err)
		room, err := s.Room(ctx, "r", "bob")
		require.NoError(t, err)
		assert.Equal(t, 0, room.Unread)

		require.NoError(t, s.SetActiveRoom(ctx, "bob", ""))
		_, err = send(s, "r", "alice", "again", t0.Add(time.Second))
		require.NoError(t, err)
		room, err = s.Room(ctx, "r", "bob")
		require.NoError(t, err)
		assert.Equal(t, 1, room.Unread)

		require.NoError(t, s.MarkRoomSeen(ctx, "r", "bob"))
		require.NoError(t, s.MarkRoomSeen(ctx, "r", "bob"))
		room, err = s.Room(ctx, "r", "bob")
		require.NoError(t, err)
		assert.Equal(t, 0, room.Unread)
	})
}

func TestRoomStore_ToggleReaction(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("two users then one toggles off", func(t *testing.T) {
		s := newStore(t)
		createRoom(t, s, "r", models.RoomPublic, nil, "a", "b")
		m, err := send(s, "r", "a", "hello", t0)
		require.NoError(t, err)

		_, err = s.ToggleReaction(ctx, "r", m.ID, "👍", "a")
		require.NoError(t, err)
		got, err := s.ToggleReaction(ctx, "r", m.ID, "👍", "b")
		require.NoError(t, err)
		r, ok := got.Reaction("👍")
		require.True(t, ok)
		assert.Equal(t, 2, r.Count)

		got, err = s.ToggleReaction(ctx, "r", m.ID, "👍", "a")
		require.NoError(t, err)
		r, ok = got.Reaction("👍")
		require.True(t, ok)
		assert.Equal(t, 1, r.Count)
		assert.Equal(t, []string{"b"}, r.UserIDs)
	})

	t.Run("double toggle restores original state", func(t *testing.T) {
		s := newStore(t)
		createRoom(t, s, "r", models.RoomPublic, nil, "a", "b")
		m, err := send(s, "r", "a", "hello", t0)
		require.NoError(t, err)
		before, err := s.ToggleReaction(ctx, "r", m.ID, "🎉", "b")
		require.NoError(t, err)

		for _, emoji := range []string{"🎉", "❤️"} {
			_, err = s.ToggleReaction(ctx, "r", m.ID, emoji, "a")
			require.NoError(t, err)
			after, err := s.ToggleReaction(ctx, "r", m.ID, emoji, "a")
			require.NoError(t, err)
			assert.Equal(t, before.Reactions, after.Reactions)
		}
	})

	t.Run("not found cases", func(t *testing.T) {
		s := newStore(t)
		settings := models.DefaultRoomSettings(100)
		settings.AllowReactions = false
		createRoom(t, s, "open", models.RoomPublic, nil, "a")
		createRoom(t, s, "closed", models.RoomPublic, &settings, "a")
		m, err := send(s, "closed", "a", "hello", t0)
		require.NoError(t, err)

		_, err = s.ToggleReaction(ctx, "closed", m.ID, "👍", "a")
		assert.True(t, models.IsNotFound(err))
		_, err = s.ToggleReaction(ctx, "open", "nope", "👍", "a")
		assert.True(t, models.IsNotFound(err))
		_, err = s.ToggleReaction(ctx, "nope", m.ID, "👍", "a")
		assert.True(t, models.IsNotFound(err))
	})
}

func TestRoomStore_EditDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t)
	_, err := s.CreateRoom(ctx, models.CreateRoomParams{
		ID:           "r",
		Name:         "r",
		Kind:         models.RoomPublic,
		Participants: []string{"a", "b", "m"},
		Moderators:   []string{"m"},
	})
	require.NoError(t, err)

	orig, err := send(s, "r", "a", "hello", t0)
	require.NoError(t, err)
	reply, err := s.AppendMessage(ctx, "r", models.Message{SenderID: "b", Body: "re", ReplyTo: orig.ID})
	require.NoError(t, err)

	_, err = s.EditMessage(ctx, "r", orig.ID, models.Actor{ID: "b", Role: models.RoleMember}, "hacked", t0)
	assert.True(t, models.IsPermission(err))

	edited, err := s.EditMessage(ctx, "r", orig.ID, models.Actor{ID: "a", Role: models.RoleMember}, "hello!", t0.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, edited.Edited)
	assert.Equal(t, "hello!", edited.Body)

	deleted, err := s.DeleteMessage(ctx, "r", orig.ID, models.Actor{ID: "m", Role: models.RoleMember}, t0.Add(2*time.Minute))
	require.NoError(t, err)
	assert.True(t, deleted.Deleted)
	assert.Empty(t, deleted.Body)

	// the tombstone keeps its slot so replies still resolve
	msgs, err := s.Messages(ctx, "r", models.MessageQuery{})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, orig.ID, msgs[0].ID)
	assert.True(t, msgs[0].Deleted)
	assert.Equal(t, reply.ID, msgs[1].ID)
	target, err := s.Message(ctx, "r", msgs[1].ReplyTo)
	require.NoError(t, err)
	assert.True(t, target.Deleted)

	_, err = s.EditMessage(ctx, "r", orig.ID, models.Actor{ID: "a"}, "again", t0)
	assert.True(t, models.IsNotFound(err))

	_, err = s.DeleteMessage(ctx, "r", reply.ID, models.Actor{ID: "x", Role: models.RoleAdmin}, t0)
	require.NoError(t, err)
}

func TestRoomStore_Paging(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t)
	createRoom(t, s, "r", models.RoomPublic, nil, "a")
	for i := 0; i < 10; i++ {
		_, err := send(s, "r", "a", "m", t0.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
	}

	page, err := s.Messages(ctx, "r", models.MessageQuery{Limit: 3})
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, int64(8), page[0].Seq)
	assert.Equal(t, int64(10), page[2].Seq)

	page, err = s.Messages(ctx, "r", models.MessageQuery{Limit: 3, Before: 8})
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, int64(5), page[0].Seq)

	page, err = s.Messages(ctx, "r", models.MessageQuery{Before: 1})
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestRoomStore_Rooms(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t)
	createRoom(t, s, "pub", models.RoomPublic, nil, "a")
	createRoom(t, s, "priv", models.RoomPrivate, nil, "a")
	createRoom(t, s, "dm", models.RoomDirect, nil, "a", "b")

	rooms, err := s.Rooms(ctx, "b")
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "pub", rooms[0].ID)
	assert.Equal(t, "dm", rooms[1].ID)

	_, err = s.Join(ctx, "priv", "b")
	assert.True(t, models.IsPermission(err))

	_, err = s.CreateRoom(ctx, models.CreateRoomParams{ID: "dm2", Name: "dm", Kind: models.RoomDirect, Participants: []string{"a"}})
	assert.True(t, models.IsValidation(err))

	_, err = s.CreateRoom(ctx, models.CreateRoomParams{ID: "pub", Name: "dup", Kind: models.RoomPublic})
	assert.True(t, models.IsValidation(err))

	room, err := s.Join(ctx, "pub", "b")
	require.NoError(t, err)
	assert.True(t, room.HasParticipant("b"))
	require.NoError(t, s.Leave(ctx, "pub", "b"))
	parts, err := s.Participants(ctx, "pub")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, parts)
}
